package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"ai-workbench/internal/config"
	"ai-workbench/internal/model"
	"ai-workbench/internal/schema"

	"github.com/google/generative-ai-go/genai"
)

func TestRequestValidate(t *testing.T) {
	text := model.TextPart{Content: "instruction"}
	file := model.AttachmentPart{Data: "aGk=", MIMEType: "application/pdf"}

	valid := []*Request{
		{Parts: []model.Part{text}},
		{Parts: []model.Part{text, file, model.TextPart{Content: "more"}, file}},
	}
	for i, r := range valid {
		if err := r.Validate(); err != nil {
			t.Errorf("valid request %d rejected: %v", i, err)
		}
	}

	invalid := []*Request{
		nil,
		{},
		{Parts: []model.Part{file, text}},
		{Parts: []model.Part{text, nil}},
	}
	for i, r := range invalid {
		if err := r.Validate(); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("invalid request %d: expected ErrInvalidRequest, got %v", i, err)
		}
	}
}

func TestNewClient_SelectsProvider(t *testing.T) {
	c, err := NewClient(context.Background(), config.LLMConfig{Provider: "dummy", DummyScript: "msg:hi"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*DummyClient); !ok {
		t.Errorf("expected DummyClient, got %T", c)
	}
	if c, err = NewClient(context.Background(), config.LLMConfig{Provider: "OpenAI"}); err != nil || c == nil {
		t.Errorf("expected openai client, got %v %v", c, err)
	}
	if _, err := NewClient(context.Background(), config.LLMConfig{Provider: "gemini"}); err == nil {
		t.Error("expected missing api key error for gemini")
	}
	if _, err := NewClient(context.Background(), config.LLMConfig{Provider: "nope"}); err == nil {
		t.Error("expected unknown provider error")
	}
}

func TestGenerationFromConfig(t *testing.T) {
	if gp := generationFromConfig(config.LLMGenerationConfig{}); gp != nil {
		t.Errorf("expected nil for zero config, got %+v", gp)
	}
	gp := generationFromConfig(config.LLMGenerationConfig{Temperature: 0.3, MaxTokens: 512})
	if gp == nil || *gp.Temperature != 0.3 || *gp.MaxTokens != 512 || gp.TopP != nil {
		t.Errorf("unexpected params %+v", gp)
	}
}

func TestToGenaiParts(t *testing.T) {
	raw := []byte{0x00, 0xff, 0x10}
	parts, err := toGenaiParts([]model.Part{
		model.TextPart{Content: "look"},
		model.AttachmentPart{Data: base64.StdEncoding.EncodeToString(raw), MIMEType: "image/jpeg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if parts[0] != genai.Text("look") {
		t.Errorf("unexpected text part %#v", parts[0])
	}
	blob, ok := parts[1].(genai.Blob)
	if !ok || blob.MIMEType != "image/jpeg" || string(blob.Data) != string(raw) {
		t.Errorf("unexpected blob %#v", parts[1])
	}

	if _, err := toGenaiParts([]model.Part{model.AttachmentPart{Data: "%%%"}}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for bad base64, got %v", err)
	}
}

func TestToGenaiSchema(t *testing.T) {
	n := schema.Object(
		schema.Prop("kind", schema.Enum("which one", "a", "b")),
		schema.Prop("items", schema.List(schema.String(""))),
	)
	s := toGenaiSchema(n)
	if s.Type != genai.TypeObject || len(s.Required) != 2 {
		t.Fatalf("unexpected root %+v", s)
	}
	kind := s.Properties["kind"]
	if kind.Type != genai.TypeString || len(kind.Enum) != 2 || kind.Description != "which one" {
		t.Errorf("unexpected enum %+v", kind)
	}
	if items := s.Properties["items"]; items.Type != genai.TypeArray || items.Items.Type != genai.TypeString {
		t.Errorf("unexpected list %+v", items)
	}

	// 渲染不能修改原始描述
	s.Required[0] = "changed"
	if n.Required[0] != "kind" {
		t.Error("rendering must not alias the descriptor")
	}
}

func TestToJSONSchema_OptionalBecomesNullable(t *testing.T) {
	n := schema.Object(
		schema.Prop("a", schema.String("")),
		schema.Field{Name: "b", Node: schema.String(""), Optional: true},
	)
	out := toJSONSchema(n)
	if req := out["required"].([]string); len(req) != 2 {
		t.Errorf("strict mode needs all properties required, got %v", req)
	}
	b := out["properties"].(map[string]any)["b"].(map[string]any)
	if types, ok := b["type"].([]any); !ok || types[1] != "null" {
		t.Errorf("optional property should be nullable, got %v", b["type"])
	}
}
