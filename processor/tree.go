package processor

import (
	"iter"
	"strconv"
	"strings"
)

// Kind is the variant of a tree Node.
type Kind int

const (
	KindMap Kind = iota
	KindSequence
	KindString
	KindNumber
	KindBool
	KindNull
	// KindOpaque holds scalars with no JSON equivalent (YAML timestamps,
	// binary, custom tags). They are written back untouched.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindSequence:
		return "sequence"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Node is one value of a JSON or YAML document. Maps keep their keys in
// source order; Keys and Items are parallel for maps.
type Node struct {
	Kind  Kind
	Keys  []*Node // Map keys, never translated
	Items []*Node // Map values or sequence elements
	Value string  // Scalar text; numbers keep their literal form
	Tag   string  // Source tag for opaque scalars
}

// Walk visits every String node below n in depth-first document order.
// Map keys are not visited. Walk stops early when visit returns false.
func Walk(n *Node, path string, visit func(path string, n *Node) bool) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case KindMap:
		for i, item := range n.Items {
			if !Walk(item, path+"/"+escapePointer(n.Keys[i].Value), visit) {
				return false
			}
		}
	case KindSequence:
		for i, item := range n.Items {
			if !Walk(item, path+"/"+strconv.Itoa(i), visit) {
				return false
			}
		}
	case KindString:
		return visit(path, n)
	}
	return true
}

// escapePointer escapes a key for use in a JSON pointer.
func escapePointer(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}

// treeDocument is the Document for tree-shaped formats.
type treeDocument struct {
	root  *Node
	slots slots
}

// Root returns the parsed tree.
func (d *treeDocument) Root() *Node {
	return d.root
}

func (d *treeDocument) Leaves() iter.Seq2[Position, string] {
	return func(yield func(Position, string) bool) {
		d.slots.reset()
		Walk(d.root, "", func(path string, n *Node) bool {
			if path == "" {
				path = "/"
			}
			pos := d.slots.add(path, func(text string) { n.Value = text })
			return yield(pos, n.Value)
		})
	}
}

func (d *treeDocument) replace(pos Position, text, contentType string) error {
	return d.slots.replace(pos, text, contentType)
}
