package llm

import (
	"ai-workbench/internal/schema"

	"github.com/google/generative-ai-go/genai"
)

// toGenaiSchema renders a descriptor as a Gemini response schema.
func toGenaiSchema(n *schema.Node) *genai.Schema {
	if n == nil {
		return nil
	}
	s := &genai.Schema{Description: n.Description}
	switch n.Kind {
	case schema.KindString:
		s.Type = genai.TypeString
	case schema.KindEnum:
		s.Type = genai.TypeString
		s.Format = "enum"
		s.Enum = append([]string(nil), n.Enum...)
	case schema.KindList:
		s.Type = genai.TypeArray
		s.Items = toGenaiSchema(n.Items)
	case schema.KindObject:
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(n.Fields))
		for _, f := range n.Fields {
			s.Properties[f.Name] = toGenaiSchema(f.Node)
		}
		s.Required = append([]string(nil), n.Required...)
	}
	return s
}

// toJSONSchema renders a descriptor as JSON Schema for OpenAI-style structured outputs.
// Strict mode there requires every property to be listed as required, so optional
// fields become nullable instead.
func toJSONSchema(n *schema.Node) map[string]any {
	out := map[string]any{}
	if n.Description != "" {
		out["description"] = n.Description
	}
	switch n.Kind {
	case schema.KindString:
		out["type"] = "string"
	case schema.KindEnum:
		out["type"] = "string"
		out["enum"] = append([]string(nil), n.Enum...)
	case schema.KindList:
		out["type"] = "array"
		out["items"] = toJSONSchema(n.Items)
	case schema.KindObject:
		props := make(map[string]any, len(n.Fields))
		names := make([]string, 0, len(n.Fields))
		for _, f := range n.Fields {
			p := toJSONSchema(f.Node)
			if f.Optional {
				p["type"] = []any{p["type"], "null"}
			}
			props[f.Name] = p
			names = append(names, f.Name)
		}
		out["type"] = "object"
		out["properties"] = props
		out["required"] = names
		out["additionalProperties"] = false
	}
	return out
}
