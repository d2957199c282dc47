package xml

// ============================================================================
// TREE MODEL
// ============================================================================
// A closed, tagged union of node kinds, dispatched with type switches at
// every traversal site rather than through open polymorphism — the set of
// XML node kinds is fixed by the spec, so there is nothing to gain from an
// extensible interface.

// NodeType identifies which of the fixed node kinds a Node is.
type NodeType int

const (
	NodeDocument NodeType = iota
	NodeElement
	NodeText
	NodeCDATA
	NodeComment
	NodeProcessingInstruction
)

func (t NodeType) String() string {
	switch t {
	case NodeDocument:
		return "Document"
	case NodeElement:
		return "Element"
	case NodeText:
		return "Text"
	case NodeCDATA:
		return "CDATA"
	case NodeComment:
		return "Comment"
	case NodeProcessingInstruction:
		return "ProcessingInstruction"
	}
	return "Unknown"
}

// Node is implemented by every tree node. Parent is a non-owning
// back-reference: it must never be traversed to imply ownership, and it is
// always nil for a Document and never nil for anything else.
type Node interface {
	Type() NodeType
	Parent() Node
}

// Document is the root of a parsed tree. Exactly one of its children is the
// root Element; the rest are Comment, ProcessingInstruction, or
// whitespace-only Text nodes found outside the root element.
type Document struct {
	Children []Node
}

func (d *Document) Type() NodeType { return NodeDocument }
func (d *Document) Parent() Node   { return nil }

// Root returns the document's unique root Element.
func (d *Document) Root() *Element {
	for _, c := range d.Children {
		if el, ok := c.(*Element); ok {
			return el
		}
	}
	return nil
}

// Element is a tagged, possibly-attributed, possibly-nested node.
type Element struct {
	Name       string
	Attributes *Attributes
	Children   []Node
	IsRootNode bool
	parent     Node
}

func (e *Element) Type() NodeType { return NodeElement }
func (e *Element) Parent() Node   { return e.parent }

func newElement(name string, parent Node) *Element {
	return &Element{Name: name, Attributes: newAttributes(), parent: parent}
}

// Text is a run of character data, with entities and character references
// already expanded and line endings already normalized.
type Text struct {
	Value  string
	parent Node
}

func (t *Text) Type() NodeType { return NodeText }
func (t *Text) Parent() Node   { return t.parent }

// CDATA is the distinct node kind used for CDATA sections when the
// PreserveCDATA option is set; otherwise CDATA content is folded into Text.
type CDATA struct {
	Value  string
	parent Node
}

func (c *CDATA) Type() NodeType { return NodeCDATA }
func (c *CDATA) Parent() Node   { return c.parent }

// Comment holds a comment's body, which by construction never contains "--"
// and never ends in "-".
type Comment struct {
	Content string
	parent  Node
}

func (c *Comment) Type() NodeType { return NodeComment }
func (c *Comment) Parent() Node   { return c.parent }

// ProcessingInstruction holds a PI's target and content. Its target is
// never "xml" case-insensitively; that position is reserved for the XML
// declaration, which is never itself emitted as a node.
type ProcessingInstruction struct {
	Target  string
	Content string
	parent  Node
}

func (p *ProcessingInstruction) Type() NodeType { return NodeProcessingInstruction }
func (p *ProcessingInstruction) Parent() Node   { return p.parent }

// appendText appends text to children, coalescing it into a trailing Text
// sibling if one is present. A no-op for empty text.
func appendText(children *[]Node, parent Node, text string) {
	if text == "" {
		return
	}
	if n := len(*children); n > 0 {
		if t, ok := (*children)[n-1].(*Text); ok {
			t.Value += text
			return
		}
	}
	*children = append(*children, &Text{Value: text, parent: parent})
}
