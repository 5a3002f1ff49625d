package schema

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"
)

// charsetReader decodes non-UTF-8 documents using the IANA charset registry.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("schema: unknown charset %q: %w", label, err)
	}
	if enc == nil {
		// ASCII-compatible labels without a decoder pass through.
		return input, nil
	}
	return enc.NewDecoder().Reader(input), nil
}

// elementLines maps every element of tree to the line its start tag begins
// on. etree keeps no positions, so the raw bytes are tokenized a second time
// and start tags are matched to elements in document order.
func elementLines(tree *etree.Document, data []byte) map[*etree.Element]int {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var starts []int
	for {
		line, _ := dec.InputPos()
		tok, err := dec.RawToken()
		if err != nil {
			break
		}
		if _, ok := tok.(xml.StartElement); ok {
			starts = append(starts, line)
		}
	}

	lines := make(map[*etree.Element]int, len(starts))
	i := 0
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if i < len(starts) {
			lines[e] = starts[i]
		}
		i++
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	if root := tree.Root(); root != nil {
		walk(root)
	}
	if i != len(starts) {
		// Token streams disagree; positions would be misleading.
		return map[*etree.Element]int{}
	}
	return lines
}
