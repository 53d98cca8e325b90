package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ViolationError reports a response that does not conform to a Node.
type ViolationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

func (e *ViolationError) Unwrap() error { return e.Err }

// Decode parses raw model output and validates it against n. Surrounding
// markdown code fences are tolerated. The returned value is the generic
// decoding (map[string]any / []any / string).
func Decode(raw string, n *Node) (any, error) {
	body := stripCodeFence(raw)
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ViolationError{Path: "$", Reason: "malformed JSON", Err: err}
	}
	// 只允许一个 JSON 值；残留的 } 或 ] 也算尾随数据
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected token %v", tok)
		}
		return nil, &ViolationError{Path: "$", Reason: "trailing data after JSON value", Err: err}
	}
	if err := Validate(n, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks a generically decoded JSON value against n.
func Validate(n *Node, v any) error {
	return validate(n, v, "$")
}

func validate(n *Node, v any, path string) error {
	switch n.Kind {
	case KindString:
		if _, ok := v.(string); !ok {
			return mismatch(path, n.Kind, v)
		}
	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return mismatch(path, n.Kind, v)
		}
		if !slices.Contains(n.Enum, s) {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("value %q not in %v", s, n.Enum)}
		}
	case KindList:
		arr, ok := v.([]any)
		if !ok {
			return mismatch(path, n.Kind, v)
		}
		for i, item := range arr {
			if err := validate(n.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch(path, n.Kind, v)
		}
		for _, name := range n.Required {
			if val, ok := obj[name]; !ok || val == nil {
				return &ViolationError{Path: path + "." + name, Reason: "required field missing"}
			}
		}
		// 未声明的字段直接忽略；声明了的可选字段若出现则必须匹配。
		for _, f := range n.Fields {
			val, ok := obj[f.Name]
			if !ok || (val == nil && f.Optional) {
				continue
			}
			if err := validate(f.Node, val, path+"."+f.Name); err != nil {
				return err
			}
		}
	default:
		return &ViolationError{Path: path, Reason: "unknown schema kind " + n.Kind.String()}
	}
	return nil
}

func mismatch(path string, want Kind, v any) error {
	return &ViolationError{Path: path, Reason: fmt.Sprintf("expected %s, got %s", want, jsonType(v))}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite a JSON mime type.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	nl := strings.IndexByte(t, '\n')
	if nl < 0 {
		return t
	}
	t = strings.TrimSpace(t[nl+1:])
	return strings.TrimSpace(strings.TrimSuffix(t, "```"))
}
