package promoter

import (
	"strings"

	"github.com/beevik/etree"
)

const defaultIndent = "\n  "

// precedingSpace returns the whitespace token directly before e, if any.
func precedingSpace(e *etree.Element) *etree.CharData {
	parent := e.Parent()
	if parent == nil {
		return nil
	}
	i := e.Index()
	if i <= 0 {
		return nil
	}
	if cd, ok := parent.Child[i-1].(*etree.CharData); ok && isBlank(cd) {
		return cd
	}
	return nil
}

// isBlank reports whether cd holds only whitespace. etree's IsWhitespace
// only knows about tokens it parsed itself.
func isBlank(cd *etree.CharData) bool {
	return !cd.IsCData() && strings.TrimSpace(cd.Data) == ""
}

// childIndent returns the whitespace used before the first child element of
// parent.
func childIndent(parent *etree.Element) string {
	for _, c := range parent.ChildElements() {
		if ws := precedingSpace(c); ws != nil {
			return ws.Data
		}
		break
	}
	return defaultIndent
}

// insertBefore inserts e before sibling, repeating sibling's indentation.
func insertBefore(sibling, e *etree.Element) {
	parent := sibling.Parent()
	i := sibling.Index()
	parent.InsertChildAt(i, e)
	if ws := precedingSpace(e); ws != nil {
		parent.InsertChildAt(i+1, etree.NewText(ws.Data))
		return
	}
	parent.InsertChildAt(i+1, etree.NewText(childIndent(parent)))
}

// insertAfter inserts e after sibling, repeating sibling's indentation.
func insertAfter(sibling, e *etree.Element) {
	parent := sibling.Parent()
	indent := childIndent(parent)
	if ws := precedingSpace(sibling); ws != nil {
		indent = ws.Data
	}
	i := sibling.Index()
	parent.InsertChildAt(i+1, etree.NewText(indent))
	parent.InsertChildAt(i+2, e)
}

// appendElement adds e as the last child element of parent, keeping the
// closing tag on its own line when it was.
func appendElement(parent, e *etree.Element) {
	indent := childIndent(parent)
	n := len(parent.Child)
	if n > 0 {
		if cd, ok := parent.Child[n-1].(*etree.CharData); ok && isBlank(cd) {
			parent.InsertChildAt(n-1, etree.NewText(indent))
			parent.InsertChildAt(n, e)
			return
		}
	}
	parent.AddChild(etree.NewText(indent))
	parent.AddChild(e)
	parent.AddChild(etree.NewText("\n"))
}

// removeElement detaches e together with the whitespace that precedes it.
func removeElement(e *etree.Element) {
	parent := e.Parent()
	if parent == nil {
		return
	}
	if ws := precedingSpace(e); ws != nil {
		parent.RemoveChild(ws)
	}
	parent.RemoveChild(e)
}

// qualify joins prefix and local into a lexical QName.
func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
