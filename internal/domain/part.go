package domain

// PartKind distinguishes the two node types of a message body tree.
type PartKind int

const (
	PartLeaf PartKind = iota
	PartContainer
)

// Part is a node of a message body. Leaves carry transport-encoded data;
// containers carry ordered children.
type Part struct {
	Kind     PartKind
	MIMEType string
	Filename string
	Data     string
	Children []Part
}

// Leaf returns a leaf part holding encoded data.
func Leaf(mimeType, data string) Part {
	return Part{Kind: PartLeaf, MIMEType: mimeType, Data: data}
}

// Container returns a multipart node with the given children.
func Container(mimeType string, children ...Part) Part {
	return Part{Kind: PartContainer, MIMEType: mimeType, Children: children}
}

// Walk visits every leaf depth-first in document order.
func (p Part) Walk(fn func(leaf Part)) {
	switch p.Kind {
	case PartContainer:
		for _, c := range p.Children {
			c.Walk(fn)
		}
	default:
		fn(p)
	}
}
