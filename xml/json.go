package xml

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errUnknownNodeType = errors.New("xml: unrecognized node type during JSON marshaling")

// ============================================================================
// JSON PROJECTION
// ============================================================================
// A deep, parent-link-omitting, key-ordered view of the tree: "type" first,
// then type-specific fields in a stable order. Each node type implements
// json.Marshaler directly with a small buffer, the same technique the
// attribute map uses, rather than relying on map[string]any (whose key order
// encoding/json does not preserve).

func (d *Document) MarshalJSON() ([]byte, error) {
	children, err := marshalChildren(d.Children)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":"Document","children":`)
	buf.Write(children)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e *Element) MarshalJSON() ([]byte, error) {
	name, err := json.Marshal(e.Name)
	if err != nil {
		return nil, err
	}
	attrs, err := e.Attributes.MarshalJSON()
	if err != nil {
		return nil, err
	}
	children, err := marshalChildren(e.Children)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":"Element","name":`)
	buf.Write(name)
	buf.WriteString(`,"attributes":`)
	buf.Write(attrs)
	buf.WriteString(`,"children":`)
	buf.Write(children)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *Text) MarshalJSON() ([]byte, error) {
	text, err := json.Marshal(t.Value)
	if err != nil {
		return nil, err
	}
	return append([]byte(`{"type":"Text","text":`), append(text, '}')...), nil
}

func (c *CDATA) MarshalJSON() ([]byte, error) {
	text, err := json.Marshal(c.Value)
	if err != nil {
		return nil, err
	}
	return append([]byte(`{"type":"CDATA","text":`), append(text, '}')...), nil
}

func (c *Comment) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(c.Content)
	if err != nil {
		return nil, err
	}
	return append([]byte(`{"type":"Comment","content":`), append(content, '}')...), nil
}

func (p *ProcessingInstruction) MarshalJSON() ([]byte, error) {
	target, err := json.Marshal(p.Target)
	if err != nil {
		return nil, err
	}
	content, err := json.Marshal(p.Content)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":"ProcessingInstruction","name":`)
	buf.Write(target)
	buf.WriteString(`,"content":`)
	buf.Write(content)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalChildren marshals a child slice by dispatching to each node's own
// Marshaler, preserving document order.
func marshalChildren(children []Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, c := range children {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalNode(c)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalNode(n Node) ([]byte, error) {
	switch v := n.(type) {
	case *Element:
		return v.MarshalJSON()
	case *Text:
		return v.MarshalJSON()
	case *CDATA:
		return v.MarshalJSON()
	case *Comment:
		return v.MarshalJSON()
	case *ProcessingInstruction:
		return v.MarshalJSON()
	}
	return nil, errUnknownNodeType
}
