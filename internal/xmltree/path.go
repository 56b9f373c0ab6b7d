package xmltree

import (
	"fmt"
	"strings"
	"sync"
)

// step is one segment of a slash-separated path: an element name (or "*")
// with an optional attribute-equality predicate, e.g. ISSN[@IssnType="Print"].
type step struct {
	name      string
	attr      string
	attrValue string
	hasPred   bool
}

func (s step) matches(n *Node) bool {
	if s.name != "*" && s.name != n.Name {
		return false
	}
	if s.hasPred {
		v, ok := n.Attrs[s.attr]
		return ok && v == s.attrValue
	}
	return true
}

// compiled paths are shared across goroutines.
var pathCache sync.Map // string -> []step

func compile(path string) ([]step, error) {
	if cached, ok := pathCache.Load(path); ok {
		return cached.([]step), nil
	}
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	pathCache.Store(path, steps)
	return steps, nil
}

// parsePath splits on '/' outside of predicate brackets.
func parsePath(path string) ([]step, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}

	var segments []string
	depth := 0
	start := 0
	for i, r := range path {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case '/':
			if depth == 0 {
				segments = append(segments, path[start:i])
				start = i + 1
			}
		}
	}
	segments = append(segments, path[start:])

	steps := make([]step, 0, len(segments))
	for _, seg := range segments {
		s, err := parseStep(seg)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func parseStep(seg string) (step, error) {
	if seg == "" {
		return step{}, fmt.Errorf("empty segment")
	}
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return step{name: seg}, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return step{}, fmt.Errorf("unterminated predicate in %q", seg)
	}

	s := step{name: seg[:open], hasPred: true}
	pred := seg[open+1 : len(seg)-1]
	if !strings.HasPrefix(pred, "@") {
		return step{}, fmt.Errorf("unsupported predicate %q", pred)
	}
	attr, value, ok := strings.Cut(pred[1:], "=")
	if !ok {
		return step{}, fmt.Errorf("predicate %q has no value", pred)
	}
	value = strings.TrimSpace(value)
	if len(value) < 2 || (value[0] != '"' && value[0] != '\'') || value[len(value)-1] != value[0] {
		return step{}, fmt.Errorf("predicate value %s must be quoted", value)
	}
	s.attr = strings.TrimSpace(attr)
	s.attrValue = value[1 : len(value)-1]
	if s.name == "" {
		return step{}, fmt.Errorf("predicate without element name in %q", seg)
	}
	return s, nil
}
