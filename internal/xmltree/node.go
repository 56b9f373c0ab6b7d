// Package xmltree builds an in-memory element tree from XML text and
// answers the small set of path queries the extractor needs.
package xmltree

import (
	"strings"
)

// Node is an XML element. Character data is kept interleaved with child
// elements so InnerText can reproduce document order.
type Node struct {
	Name  string
	Attrs map[string]string

	// Text is the character data before the first child element.
	Text string
	// Tail is the character data following this element's end tag,
	// up to the next sibling.
	Tail string

	Children []*Node
	Parent   *Node
}

// Attr returns the value of the named attribute, or "" if absent.
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// InnerText concatenates the element's own text and the text of all
// descendant elements in document order, with no separator.
func (n *Node) InnerText() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	b.WriteString(n.Text)
	for _, c := range n.Children {
		c.writeText(b)
		b.WriteString(c.Tail)
	}
}

// Find returns the first element matching path, or nil.
func (n *Node) Find(path string) *Node {
	if n == nil {
		return nil
	}
	steps, err := compile(path)
	if err != nil {
		return nil
	}
	var found *Node
	walk(n, steps, func(m *Node) bool {
		found = m
		return false
	})
	return found
}

// FindAll returns every element matching path in document order.
func (n *Node) FindAll(path string) []*Node {
	if n == nil {
		return nil
	}
	steps, err := compile(path)
	if err != nil {
		return nil
	}
	var out []*Node
	walk(n, steps, func(m *Node) bool {
		out = append(out, m)
		return true
	})
	return out
}

// FindText returns the leading text of the first element matching path,
// or "" when nothing matches.
func (n *Node) FindText(path string) string {
	m := n.Find(path)
	if m == nil {
		return ""
	}
	return m.Text
}

// FindTexts returns the leading text of every element matching path,
// skipping elements whose text is empty.
func (n *Node) FindTexts(path string) []string {
	var out []string
	for _, m := range n.FindAll(path) {
		if m.Text != "" {
			out = append(out, m.Text)
		}
	}
	return out
}

// walk visits matches depth-first in document order. visit returns false
// to stop the traversal.
func walk(n *Node, steps []step, visit func(*Node) bool) bool {
	if len(steps) == 0 {
		return visit(n)
	}
	for _, c := range n.Children {
		if !steps[0].matches(c) {
			continue
		}
		if !walk(c, steps[1:], visit) {
			return false
		}
	}
	return true
}
