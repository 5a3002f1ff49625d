package promoter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdraley/xsdtools/resolver"
	"github.com/mdraley/xsdtools/scanner"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

func (r *run) warn(w *Warning) {
	r.res.Warnings = append(r.res.Warnings, w)
	switch w.Category {
	case WarnFileFailed:
		r.log.Error(w.Message, "category", string(w.Category))
	case WarnDeclarationPromoted, WarnSelfReferenceRemoved:
		r.log.Info(w.Message, "category", string(w.Category))
	default:
		r.log.Warn(w.Message, "category", string(w.Category))
	}
}

func (r *run) fail(path string, err error) {
	r.res.Failures = append(r.res.Failures, Failure{Path: path, Err: err})
	r.warn(NewFileFailedWarning(path, err))
}

// load discovers and parses the input documents.
func (r *run) load(ctx context.Context) error {
	paths, errs := Discover(r.cfg.Roots, r.cfg.Files, []string{r.cfg.CommonSchema})
	for _, err := range errs {
		var ioErr *xsderrors.IOError
		path := ""
		if errors.As(err, &ioErr) {
			path = ioErr.Path
		}
		r.fail(path, err)
	}
	r.log.Debug("discovered schema files", "count", len(paths))

	docs, err := loadAll(ctx, r.store, paths, r.cfg.Workers)
	if err != nil {
		return err
	}
	for _, l := range docs {
		if l.err != nil {
			r.fail(l.path, l.err)
			continue
		}
		r.docs = append(r.docs, l.doc)
	}
	return nil
}

// scan builds the index of this run.
func (r *run) scan() {
	opts := scanner.Options{SelfNamespaces: []string{r.cfg.Namespace}}
	r.index = scanner.NewIndex()
	for _, doc := range r.docs {
		res := scanner.Scan(doc, opts)
		r.index.Add(res)
		r.reportProblems(res)
	}
	common := scanner.Scan(r.common, opts)
	r.index.SetCommon(common)
	r.reportProblems(common)
}

func (r *run) reportProblems(res *scanner.Result) {
	for _, err := range res.Problems {
		var nc *xsderrors.NamingCollisionError
		if !errors.As(err, &nc) {
			continue
		}
		kind := ""
		if len(nc.Kinds) > 0 {
			kind = nc.Kinds[0]
		}
		w := NewDuplicateInDocumentWarning(kind, nc.Name, res.Doc.Path, 0)
		w.Message += ": " + nc.Message
		r.warn(w)
	}
}

// recordPlan turns the resolver's unpromotable candidates and decisions
// into report rows and warnings.
func (r *run) recordPlan(plan *resolver.Plan) {
	for _, c := range plan.Conflicts {
		rec := ConflictRecord{
			Name:       c.Name(),
			Kind:       string(c.Kind),
			Variants:   len(c.Variants),
			Others:     c.Paths(),
			Resolution: ReportManualSkip,
		}
		if c.Err != nil {
			rec.Detail = c.Err.Error()
		}
		r.report.Records = append(r.report.Records, rec)
		r.warn(NewConflictSkippedWarning(string(c.Kind), c.Name(), len(c.Variants), c.Paths()))
	}
	for _, c := range plan.Collisions {
		kinds := candidateKinds(c)
		rec := ConflictRecord{
			Name:       c.Name(),
			Kind:       strings.Join(kinds, "/"),
			Variants:   len(c.Variants),
			Others:     c.Paths(),
			Resolution: ReportNamingCollision,
		}
		if c.Err != nil {
			rec.Detail = c.Err.Error()
		}
		r.report.Records = append(r.report.Records, rec)
		r.warn(NewNamingCollisionWarning(c.Name(), kinds, c.Paths()))
	}
	for _, c := range plan.Blocked {
		r.report.Records = append(r.report.Records, ConflictRecord{
			Name:       c.Name(),
			Kind:       string(c.Kind),
			Variants:   len(c.Variants),
			Others:     c.Paths(),
			Resolution: ReportBlockedDependency,
			Detail:     errString(c.Err),
		})
		r.warn(NewBlockedDependencyWarning(string(c.Kind), c.Name(), c.Err))
	}
	for _, c := range plan.Promote {
		var resolution string
		switch c.Resolution {
		case resolver.ResolutionAutoPick:
			resolution = ReportAutoPick
		case resolver.ResolutionOverride:
			resolution = ReportOverride
		default:
			continue
		}
		r.report.Records = append(r.report.Records, ConflictRecord{
			Name:       c.Name(),
			Kind:       string(c.Kind),
			Variants:   len(c.Variants),
			Chosen:     c.Chosen.Path(),
			Others:     c.Others(),
			Resolution: resolution,
		})
		r.warn(NewConflictResolvedWarning(string(c.Kind), c.Name(), resolution, c.Chosen.Path(), c.Others()))
	}
}

func candidateKinds(c *resolver.Candidate) []string {
	var kinds []string
	for _, d := range c.Occurrences {
		if !slices.Contains(kinds, string(d.Kind)) {
			kinds = append(kinds, string(d.Kind))
		}
	}
	return kinds
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// promote writes the chosen copies into the common schema and returns the
// candidates that made it.
func (r *run) promote(plan *resolver.Plan) []*resolver.Candidate {
	var ok []*resolver.Candidate
	for _, c := range plan.Promote {
		if err := r.writer.check(c.Chosen); err != nil {
			r.report.Records = append(r.report.Records, ConflictRecord{
				Name:       c.Name(),
				Kind:       string(c.Kind),
				Variants:   len(c.Variants),
				Others:     c.Paths(),
				Resolution: ReportNamingCollision,
				Detail:     err.Error(),
			})
			r.warn(NewNamingCollisionWarning(c.Name(), []string{string(c.Kind)}, c.Paths()))
			continue
		}
		ok = append(ok, c)
		for _, d := range c.Locals() {
			r.writer.moved[d.Key()] = true
		}
	}

	for _, c := range ok {
		if c.Chosen.InCommon {
			r.res.Promotions = append(r.res.Promotions, Promotion{
				Name: c.Name(), Kind: c.Kind, Source: c.Chosen.Path(), Line: c.Chosen.Line,
				Resolution: c.Resolution,
			})
			continue
		}
		previous, changed := r.writer.ensureHeader()
		if changed {
			r.warn(NewNamespaceChangedWarning(r.common.Path, previous, r.cfg.Namespace))
		}
		added := r.writer.promote(c.Chosen)
		r.res.Promotions = append(r.res.Promotions, Promotion{
			Name: c.Name(), Kind: c.Kind, Source: c.Chosen.Path(), Line: c.Chosen.Line,
			Resolution: c.Resolution, Added: added,
		})
		if added {
			r.warn(NewDeclarationPromotedWarning(string(c.Kind), c.Name(), string(c.Resolution), c.Chosen.Path(), c.Chosen.Line))
		}
	}
	return ok
}

// demote removes every local copy of the promoted candidates.
func (r *run) demote(promoted []*resolver.Candidate) {
	for _, c := range promoted {
		for _, d := range c.Locals() {
			r.demotedOwners[d] = true
			if Demote(d.Doc, d.Kind, d.Name) == 0 {
				continue
			}
			r.touched[d.Doc] = true
			r.res.Demotions = append(r.res.Demotions, Demotion{
				Path: d.Path(), Kind: d.Kind, Name: d.Name, Line: d.Line,
			})
			r.log.Info("declaration demoted", "path", d.Path(), "kind", string(d.Kind), "name", d.Name)
		}
	}
}

// rewrite points references to moved declarations at the common namespace.
// In documents that changed, bare built-in type names and bare names of
// common declarations are qualified too.
func (r *run) rewrite() {
	for _, res := range r.index.Results {
		for _, ref := range res.References {
			if r.demotedOwners[ref.Owner] || !ref.Bound {
				continue
			}
			key := scanner.Key{Space: ref.Space, Namespace: ref.Target.Namespace, Name: ref.Target.Local}
			if !r.writer.moved[key] {
				continue
			}
			r.point(res.Doc, ref)
		}
	}

	for _, res := range r.index.Results {
		if !r.touched[res.Doc] {
			continue
		}
		for _, ref := range res.References {
			if r.demotedOwners[ref.Owner] || !ref.Bound || ref.Prefix != "" {
				continue
			}
			if current, _ := schema.LocalAttr(ref.Element, ref.Attr); !containsToken(current, ref.Value, ref.Attr == "memberTypes") {
				continue
			}
			if len(r.index.Lookup(ref.Space, ref.Target)) > 0 {
				continue
			}
			switch {
			case ref.Space == schema.SpaceType && ref.Target.Namespace != schema.XSDNamespace && schema.IsBuiltin(ref.Target.Local):
				if setReference(res.Doc, ref, qualify(res.Doc.XSDPrefix(), ref.Target.Local)) {
					r.log.Debug("qualified built-in type", "path", res.Doc.Path, "name", ref.Target.Local)
				}
			case r.writer.existing(ref.Space, ref.Target.Local) != nil:
				r.point(res.Doc, ref)
			}
		}
	}
}

// point rewrites ref to the common declaration of the same local name.
func (r *run) point(doc *schema.Document, ref *scanner.Reference) {
	prefix := referencePrefix(doc, r.cfg.Namespace, r.cfg.Prefix)
	if setReference(doc, ref, qualify(prefix, ref.Target.Local)) {
		r.touched[doc] = true
		r.log.Debug("reference rewritten", "path", doc.Path, "attr", ref.Attr, "value", ref.Value, "line", ref.Line)
	}
}

func containsToken(value, token string, list bool) bool {
	if !list {
		return strings.TrimSpace(value) == token
	}
	return slices.Contains(strings.Fields(value), token)
}

// ensureImports makes every changed consumer import the common schema.
func (r *run) ensureImports() {
	for _, doc := range r.docs {
		if !r.touched[doc] {
			continue
		}
		loc := relativeLocation(doc.Path, r.common.Path)
		if EnsureImport(doc, r.cfg.Namespace, loc) {
			r.log.Debug("import ensured", "path", doc.Path, "location", loc)
		}
	}
}

// checkReferences rescans every document and reports references that
// resolve nowhere. References into namespaces that were not scanned are
// assumed to be satisfied by imports outside the run.
func (r *run) checkReferences() {
	opts := scanner.Options{SelfNamespaces: []string{r.cfg.Namespace}}
	idx := scanner.NewIndex()
	scanned := map[string]bool{r.cfg.Namespace: true}
	for _, doc := range r.docs {
		idx.Add(scanner.Scan(doc, opts))
		scanned[doc.TargetNamespace()] = true
	}
	idx.SetCommon(scanner.Scan(r.common, opts))

	results := append(slices.Clone(idx.Results), idx.Common)
	for _, res := range results {
		for _, ref := range res.References {
			if resolves(idx, scanned, ref) {
				continue
			}
			r.warn(NewUnresolvedReferenceWarning(ref.Attr, ref.Value, res.Doc.Path, ref.Line))
			r.res.Summary.Unresolved++
			if !r.cfg.Strict {
				continue
			}
			r.res.Unresolved = append(r.res.Unresolved, Unresolved{
				Path: res.Doc.Path, Line: ref.Line, Attr: ref.Attr, Value: ref.Value,
			})
			r.report.Records = append(r.report.Records, ConflictRecord{
				Name:       ref.Target.Local,
				Kind:       string(ref.Space),
				Others:     []string{res.Doc.Path},
				Resolution: ReportUnresolvedReference,
				Detail:     (&xsderrors.UnresolvedReferenceError{Path: res.Doc.Path, Line: ref.Line, Attr: ref.Attr, Value: ref.Value}).Error(),
			})
		}
	}
}

func resolves(idx *scanner.Index, scanned map[string]bool, ref *scanner.Reference) bool {
	builtin := ref.Space == schema.SpaceType && schema.IsBuiltin(ref.Target.Local)
	switch {
	case !ref.Bound:
		return false
	case ref.Target.Namespace == schema.XSDNamespace:
		return builtin
	case len(idx.Lookup(ref.Space, ref.Target)) > 0:
		return true
	case ref.Prefix == "":
		return builtin
	case scanned[ref.Target.Namespace]:
		return false
	default:
		return true
	}
}

// save writes consumers first and the common schema last.
func (r *run) save() {
	for _, doc := range append(slices.Clone(r.docs), r.common) {
		sr, err := r.store.Save(doc)
		if err != nil {
			r.fail(doc.Path, err)
			continue
		}
		if sr.Written {
			r.res.Written = append(r.res.Written, doc.Path)
			r.log.Info("schema written", "path", doc.Path, "dry_run", r.cfg.DryRun)
		}
		if sr.BackupPath != "" {
			r.res.Backups = append(r.res.Backups, sr.BackupPath)
		}
	}
}

// finish fills the summary and writes the report.
func (r *run) finish() {
	plan := r.res.Plan
	s := &r.res.Summary
	s.FilesScanned = len(r.docs)
	s.Declarations = len(r.index.Declarations())
	s.Candidates = len(plan.Candidates)
	for _, p := range r.res.Promotions {
		if p.Added {
			s.Promoted++
		}
	}
	s.Demoted = len(r.res.Demotions)
	s.Conflicts = len(plan.Conflicts)
	s.Collisions = len(plan.Collisions)
	s.Blocked = len(plan.Blocked)
	s.FilesWritten = len(r.res.Written)
	s.Backups = len(r.res.Backups)

	s.FilesFailed = len(r.res.Failures)

	r.report.Summary = *s
	r.res.Records = r.report.Records
	if r.cfg.SkipReport {
		r.log.Info("promotion finished", "run_id", r.res.RunID, "summary", s.String())
		return
	}
	path := r.cfg.ReportPath
	if path == "" {
		path = DefaultReportPath(r.cfg.CommonSchema, r.cfg.ReportFormat)
	}
	if r.cfg.DryRun {
		// A dry run creates no directories.
		if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
			r.log.Info("dry run: report directory does not exist, report not written", "path", path)
			r.log.Info("promotion finished", "run_id", r.res.RunID, "summary", s.String())
			return
		}
	}
	if err := r.report.Write(path, r.cfg.ReportFormat); err != nil {
		r.fail(path, err)
		s.FilesFailed = len(r.res.Failures)
	} else {
		r.res.ReportPath = path
	}
	r.log.Info("promotion finished", "run_id", r.res.RunID, "summary", s.String())
}
