// Package schema describes the expected shape of structured model output as data
// and validates decoded JSON against it.
package schema

import "fmt"

// Kind is the tag of a Node.
type Kind int

const (
	KindString Kind = iota + 1
	KindEnum
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one level of a recursive output descriptor.
//   - KindString: any JSON string.
//   - KindEnum: a JSON string from Enum.
//   - KindList: a JSON array whose elements match Items.
//   - KindObject: a JSON object with Fields; names in Required must be present and non-null.
type Node struct {
	Kind        Kind
	Description string
	Enum        []string
	Items       *Node
	Fields      []Field
	Required    []string
}

// Field is a named property of an object node. Order is kept for rendering.
type Field struct {
	Name     string
	Node     *Node
	Optional bool
}

func String(description string) *Node {
	return &Node{Kind: KindString, Description: description}
}

func Enum(description string, values ...string) *Node {
	return &Node{Kind: KindEnum, Description: description, Enum: values}
}

func List(items *Node) *Node {
	return &Node{Kind: KindList, Items: items}
}

// Object builds an object node; every field not marked Optional is required.
func Object(fields ...Field) *Node {
	n := &Node{Kind: KindObject, Fields: fields}
	for _, f := range fields {
		if !f.Optional {
			n.Required = append(n.Required, f.Name)
		}
	}
	return n
}

// Prop is shorthand for a required field.
func Prop(name string, node *Node) Field {
	return Field{Name: name, Node: node}
}

// Field looks up a property of an object node.
func (n *Node) Field(name string) (*Node, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Node, true
		}
	}
	return nil, false
}

// Check verifies the descriptor itself is well formed.
func (n *Node) Check() error {
	return n.check("$")
}

func (n *Node) check(path string) error {
	if n == nil {
		return fmt.Errorf("%s: nil node", path)
	}
	switch n.Kind {
	case KindString:
		return nil
	case KindEnum:
		if len(n.Enum) == 0 {
			return fmt.Errorf("%s: enum without values", path)
		}
		return nil
	case KindList:
		return n.Items.check(path + "[]")
	case KindObject:
		seen := make(map[string]bool, len(n.Fields))
		for _, f := range n.Fields {
			if f.Name == "" {
				return fmt.Errorf("%s: unnamed field", path)
			}
			if seen[f.Name] {
				return fmt.Errorf("%s: duplicate field %q", path, f.Name)
			}
			seen[f.Name] = true
			if err := f.Node.check(path + "." + f.Name); err != nil {
				return err
			}
		}
		for _, r := range n.Required {
			if !seen[r] {
				return fmt.Errorf("%s: required field %q is not declared", path, r)
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown kind %s", path, n.Kind)
	}
}
