package xml

import "strings"

// ============================================================================
// TREE QUERIES
// ============================================================================
// A small set of traversal helpers in the spirit of the package's original
// QueryAll: name-addressed lookup instead of a full path language, since the
// tagged-union tree already gives exhaustive type-switch traversal for
// anything more elaborate than "find me elements called X".

// FindAll returns every descendant Element of n named name, visited in
// document order. n itself is not considered a candidate.
func FindAll(n Node, name string) []*Element {
	var results []*Element
	var children []Node
	switch v := n.(type) {
	case *Document:
		children = v.Children
	case *Element:
		children = v.Children
	default:
		return nil
	}
	for _, c := range children {
		if el, ok := c.(*Element); ok {
			if el.Name == name {
				results = append(results, el)
			}
			results = append(results, FindAll(el, name)...)
		}
	}
	return results
}

// Find returns the first descendant Element of n named name, in document
// order, or nil if there is none.
func Find(n Node, name string) *Element {
	matches := FindAll(n, name)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// Text concatenates e's direct Text and CDATA children, in document order,
// ignoring any element, comment or processing-instruction children. This is
// the flattened view most callers want for a leaf element like <id>42</id>.
func Text(e *Element) string {
	var sb strings.Builder
	for _, c := range e.Children {
		switch v := c.(type) {
		case *Text:
			sb.WriteString(v.Value)
		case *CDATA:
			sb.WriteString(v.Value)
		}
	}
	return sb.String()
}

// Walk calls fn for n and every descendant, in document order (pre-order),
// stopping early if fn returns false.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	var children []Node
	switch v := n.(type) {
	case *Document:
		children = v.Children
	case *Element:
		children = v.Children
	}
	for _, c := range children {
		Walk(c, fn)
	}
}
