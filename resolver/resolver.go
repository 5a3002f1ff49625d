package resolver

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mdraley/xsdtools/scanner"
	"github.com/mdraley/xsdtools/schema"
	"github.com/mdraley/xsdtools/xsderrors"
)

// Class is the classification of a candidate.
type Class string

const (
	ClassUnique    Class = "unique"
	ClassDuplicate Class = "duplicate-identical"
	ClassConflict  Class = "conflicting-variant"
	ClassCollision Class = "naming-collision"
)

// Resolution records how the canonical copy of a promoted candidate was
// chosen.
type Resolution string

const (
	// ResolutionIdentical means every copy was identical.
	ResolutionIdentical Resolution = "identical"
	// ResolutionExisting means the common schema already held the copy.
	ResolutionExisting Resolution = "existing"
	// ResolutionRequested means a single declaration was requested by name.
	ResolutionRequested Resolution = "requested"
	// ResolutionAutoPick means a conflict was resolved by ranking.
	ResolutionAutoPick Resolution = "auto-pick"
	// ResolutionOverride means a conflict was resolved by a per-name override.
	ResolutionOverride Resolution = "override"
	// ResolutionDependency means the candidate is promoted because a promoted
	// declaration references it.
	ResolutionDependency Resolution = "dependency"
)

// DefaultKinds are promoted when Config.Kinds is empty. Global elements and
// attributes are left out because moving them changes instance documents.
var DefaultKinds = []schema.Kind{
	schema.KindComplexType,
	schema.KindSimpleType,
	schema.KindGroup,
	schema.KindAttributeGroup,
}

// Config controls candidate selection.
type Config struct {
	// Include restricts promotion to these names and allows promoting names
	// that occur only once. Empty means every duplicated name.
	Include []string
	// Kinds are the declaration kinds eligible for promotion.
	Kinds []schema.Kind
	// AutoPick resolves conflicting variants by ranking instead of skipping.
	AutoPick bool
	// TierRoots ranks documents: a document under an earlier root outranks
	// one under a later root or under none. An entry without a path
	// separator matches any directory of that name.
	TierRoots []string
	// Overrides maps a name to the path (or path suffix) of the copy to keep.
	Overrides map[string]string
}

// Candidate is every declaration sharing a symbol space and name. When the
// name is also declared under another kind, the candidate is a naming
// collision and carries those declarations too.
type Candidate struct {
	Key  scanner.NameKey
	Kind schema.Kind
	// Occurrences are in scan order; a common schema copy comes last.
	Occurrences []*scanner.Declaration
	// Variants groups occurrences by canonical content, in first-seen order.
	Variants [][]*scanner.Declaration
	Class    Class
	// Requested is true when the name was explicitly included.
	Requested bool

	// Chosen is the canonical copy of a promoted candidate.
	Chosen     *scanner.Declaration
	Resolution Resolution
	// Err explains why an eligible candidate was not promoted.
	Err error
}

// Name returns the declaration name.
func (c *Candidate) Name() string {
	return c.Key.Name
}

// Locals returns the occurrences outside the common schema.
func (c *Candidate) Locals() []*scanner.Declaration {
	var out []*scanner.Declaration
	for _, d := range c.Occurrences {
		if !d.InCommon {
			out = append(out, d)
		}
	}
	return out
}

// Common returns the common schema copy, if any.
func (c *Candidate) Common() *scanner.Declaration {
	for _, d := range c.Occurrences {
		if d.InCommon {
			return d
		}
	}
	return nil
}

// Paths returns the distinct paths of all occurrences in order.
func (c *Candidate) Paths() []string {
	var out []string
	for _, d := range c.Occurrences {
		if !slices.Contains(out, d.Path()) {
			out = append(out, d.Path())
		}
	}
	return out
}

// Others returns the paths of occurrences other than the chosen one.
func (c *Candidate) Others() []string {
	var out []string
	for _, d := range c.Occurrences {
		if d == c.Chosen || slices.Contains(out, d.Path()) {
			continue
		}
		out = append(out, d.Path())
	}
	return out
}

// Plan is the resolver output.
type Plan struct {
	// Candidates are all groups that were considered, sorted by name.
	Candidates []*Candidate
	// Promote lists candidates to promote, sorted by name.
	Promote []*Candidate
	// Conflicts lists conflicting candidates that were skipped.
	Conflicts []*Candidate
	// Collisions lists naming collisions.
	Collisions []*Candidate
	// Blocked lists eligible candidates held back by a dependency.
	Blocked []*Candidate
}

// Resolve classifies every name in idx and chooses canonical copies.
func Resolve(idx *scanner.Index, cfg Config) *Plan {
	r := &resolution{
		idx:   idx,
		cfg:   cfg,
		kinds: cfg.Kinds,
		cands: make(map[scanner.NameKey]*Candidate),
	}
	if len(r.kinds) == 0 {
		r.kinds = DefaultKinds
	}
	include := make(map[string]bool, len(cfg.Include))
	for _, n := range cfg.Include {
		include[n] = true
	}

	plan := &Plan{}
	var eligible []*Candidate
	collided := make(map[string]bool)
	for _, key := range idx.NameKeys() {
		c := r.candidate(key)
		if c == nil || len(c.Locals()) == 0 {
			continue
		}
		if len(include) > 0 && !include[key.Name] {
			continue
		}
		if !r.selected(c) {
			continue
		}
		if c.Class == ClassCollision {
			// A name spanning several symbol spaces is reported once.
			if collided[key.Name] {
				continue
			}
			collided[key.Name] = true
		}
		c.Requested = include[key.Name]
		if c.Class == ClassUnique && !c.Requested {
			continue
		}
		plan.Candidates = append(plan.Candidates, c)
		switch c.Class {
		case ClassCollision:
			plan.Collisions = append(plan.Collisions, c)
		case ClassConflict:
			if c.Chosen == nil {
				plan.Conflicts = append(plan.Conflicts, c)
			} else {
				eligible = append(eligible, c)
			}
		default:
			eligible = append(eligible, c)
		}
	}

	promote := make(map[scanner.NameKey]*Candidate)
	for _, c := range eligible {
		closure, err := r.closure(c)
		if err != nil {
			c.Err = err
			plan.Blocked = append(plan.Blocked, c)
			continue
		}
		for _, dep := range closure {
			if _, ok := promote[dep.Key]; !ok {
				promote[dep.Key] = dep
			}
		}
	}
	for _, c := range promote {
		plan.Promote = append(plan.Promote, c)
	}
	slices.SortFunc(plan.Promote, compareCandidates)
	return plan
}

func compareCandidates(a, b *Candidate) int {
	if c := strings.Compare(a.Key.Name, b.Key.Name); c != 0 {
		return c
	}
	return strings.Compare(string(a.Key.Space), string(b.Key.Space))
}

// selected reports whether c has a kind being promoted. A naming collision
// is selected when any of its kinds is.
func (r *resolution) selected(c *Candidate) bool {
	if c.Class != ClassCollision {
		return slices.Contains(r.kinds, c.Kind)
	}
	return slices.ContainsFunc(c.Occurrences, func(d *scanner.Declaration) bool {
		return slices.Contains(r.kinds, d.Kind)
	})
}

type resolution struct {
	idx   *scanner.Index
	cfg   Config
	kinds []schema.Kind
	cands map[scanner.NameKey]*Candidate
}

// candidate builds and classifies the group for key, memoized.
func (r *resolution) candidate(key scanner.NameKey) *Candidate {
	if c, ok := r.cands[key]; ok {
		return c
	}
	occ := r.idx.ByName(key)
	if len(occ) == 0 {
		r.cands[key] = nil
		return nil
	}
	c := &Candidate{Key: key, Kind: occ[0].Kind, Occurrences: occ}
	if len(r.idx.Kinds(key.Name)) > 1 {
		c.Occurrences = r.idx.Named(key.Name)
	}
	for _, d := range c.Occurrences {
		i := slices.IndexFunc(c.Variants, func(v []*scanner.Declaration) bool {
			return v[0].Hash == d.Hash && v[0].Canonical == d.Canonical
		})
		if i < 0 {
			c.Variants = append(c.Variants, []*scanner.Declaration{d})
		} else {
			c.Variants[i] = append(c.Variants[i], d)
		}
	}
	r.classify(c)
	r.cands[key] = c
	return c
}

func (r *resolution) classify(c *Candidate) {
	var kinds []string
	for _, d := range c.Occurrences {
		if !slices.Contains(kinds, string(d.Kind)) {
			kinds = append(kinds, string(d.Kind))
		}
	}
	if len(kinds) > 1 {
		slices.Sort(kinds)
		c.Class = ClassCollision
		c.Err = &xsderrors.NamingCollisionError{Name: c.Name(), Kinds: kinds, Paths: c.Paths()}
		return
	}
	if r.idx.HasInDocumentDuplicate(c.Key) {
		c.Class = ClassCollision
		c.Err = &xsderrors.NamingCollisionError{
			Name:    c.Name(),
			Kinds:   kinds,
			Paths:   c.Paths(),
			Message: "declared more than once in one document",
		}
		return
	}

	common := c.Common()
	switch {
	case len(c.Variants) > 1:
		c.Class = ClassConflict
		c.Err = &xsderrors.ConflictingVariantError{
			Name:     c.Name(),
			Kind:     string(c.Kind),
			Variants: len(c.Variants),
			Paths:    c.Paths(),
		}
		r.pickConflict(c)
	case len(c.Occurrences) == 1:
		c.Class = ClassUnique
		c.Chosen = c.Occurrences[0]
		c.Resolution = ResolutionRequested
	default:
		c.Class = ClassDuplicate
		if common != nil {
			c.Chosen = common
			c.Resolution = ResolutionExisting
		} else {
			c.Chosen = Rank(c.Occurrences, r.cfg.TierRoots)[0]
			c.Resolution = ResolutionIdentical
		}
	}
}

// pickConflict applies an override or auto-pick to a conflicting candidate.
func (r *resolution) pickConflict(c *Candidate) {
	if want, ok := r.cfg.Overrides[c.Name()]; ok {
		for _, d := range c.Occurrences {
			if pathMatches(d.Path(), want) {
				c.Chosen = d
				c.Resolution = ResolutionOverride
				return
			}
		}
		c.Err = fmt.Errorf("%w: override %q matches no occurrence", c.Err, want)
		return
	}
	if !r.cfg.AutoPick {
		return
	}
	if common := c.Common(); common != nil {
		c.Chosen = common
	} else {
		c.Chosen = Rank(c.Occurrences, r.cfg.TierRoots)[0]
	}
	c.Resolution = ResolutionAutoPick
}

// closure returns c and every declaration it depends on that must move with
// it. It fails when a dependency cannot be promoted.
func (r *resolution) closure(c *Candidate) ([]*Candidate, error) {
	var out []*Candidate
	seen := make(map[scanner.NameKey]bool)
	var visit func(c *Candidate) error
	visit = func(c *Candidate) error {
		if seen[c.Key] {
			return nil
		}
		seen[c.Key] = true
		out = append(out, c)
		if c.Chosen.InCommon {
			return nil
		}
		for _, ref := range c.Chosen.Refs {
			if ref.Target.Namespace != c.Chosen.Namespace || !ref.Bound {
				continue
			}
			if len(r.idx.Lookup(ref.Space, ref.Target)) == 0 {
				// Unresolved; reported by the rewriter.
				continue
			}
			key := scanner.NameKey{Space: ref.Space, Name: ref.Target.Local}
			if key == c.Key {
				continue
			}
			dep := r.candidate(key)
			if err := r.promotable(dep); err != nil {
				return fmt.Errorf("depends on %s %q: %w", dep.Kind, dep.Name(), err)
			}
			if dep.Resolution == ResolutionRequested && !dep.Requested {
				dep.Resolution = ResolutionDependency
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(c); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resolution) promotable(c *Candidate) error {
	if !slices.Contains(r.kinds, c.Kind) {
		return fmt.Errorf("kind %s is not promoted", c.Kind)
	}
	if c.Chosen == nil {
		return c.Err
	}
	return nil
}

// Rank orders declarations best first: higher score, earlier tier root,
// shorter path, then lexical path. The input is not modified.
func Rank(decls []*scanner.Declaration, tierRoots []string) []*scanner.Declaration {
	out := slices.Clone(decls)
	slices.SortStableFunc(out, func(a, b *scanner.Declaration) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if ta, tb := tier(a.Path(), tierRoots), tier(b.Path(), tierRoots); ta != tb {
			return ta - tb
		}
		if len(a.Path()) != len(b.Path()) {
			return len(a.Path()) - len(b.Path())
		}
		return strings.Compare(a.Path(), b.Path())
	})
	return out
}

// tier returns the index of the first root containing path, or len(roots).
func tier(path string, roots []string) int {
	p := filepath.ToSlash(filepath.Clean(path))
	segments := strings.Split(p, "/")
	for i, root := range roots {
		r := filepath.ToSlash(filepath.Clean(root))
		if !strings.Contains(r, "/") {
			if slices.Contains(segments[:len(segments)-1], r) {
				return i
			}
			continue
		}
		if strings.HasPrefix(p, strings.TrimSuffix(r, "/")+"/") {
			return i
		}
	}
	return len(roots)
}

func pathMatches(path, want string) bool {
	p := filepath.ToSlash(filepath.Clean(path))
	w := filepath.ToSlash(filepath.Clean(want))
	return p == w || strings.HasSuffix(p, "/"+strings.TrimPrefix(w, "/"))
}
