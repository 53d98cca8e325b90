package extractor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"ai-workbench/internal/model"
	"ai-workbench/internal/schema"
	"ai-workbench/pkg/llm"
)

type pet struct {
	Kind string   `json:"kind"`
	Name string   `json:"name"`
	Toys []string `json:"toys"`
}

func petNode() *schema.Node {
	return schema.Object(
		schema.Prop("kind", schema.Enum("", "cat", "dog")),
		schema.Prop("name", schema.String("")),
		schema.Prop("toys", schema.List(schema.String(""))),
	)
}

func fixed(text string) (*llm.Request, llm.Client) {
	var seen llm.Request
	return &seen, llm.ClientFunc(func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
		seen = *req
		return &llm.Response{Text: text}, nil
	})
}

func TestExtract_ComposesRequest(t *testing.T) {
	seen, client := fixed(`{"kind":"cat","name":"Tom","toys":["ball"]}`)
	node := petNode()
	parts := []model.Part{
		model.AttachmentPart{Data: "aGk=", MIMEType: "image/png"},
		model.TextPart{Content: "caption"},
	}

	payload, err := New(client).Extract(context.Background(), "describe the pet", parts, node)
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != `{"kind":"cat","name":"Tom","toys":["ball"]}` {
		t.Errorf("unexpected payload %s", payload)
	}
	if len(seen.Parts) != 3 {
		t.Fatalf("expected instruction + 2 parts, got %d", len(seen.Parts))
	}
	if seen.Parts[0] != (model.TextPart{Content: "describe the pet"}) {
		t.Errorf("instruction must come first, got %#v", seen.Parts[0])
	}
	if seen.Parts[1] != parts[0] || seen.Parts[2] != parts[1] {
		t.Errorf("caller parts reordered: %#v", seen.Parts[1:])
	}
	if seen.Schema != node {
		t.Error("schema must be attached to the request")
	}
}

func TestExtractAs_Decodes(t *testing.T) {
	_, client := fixed("```json\n{\"kind\":\"dog\",\"name\":\"Rex\",\"toys\":[]}\n```")
	got, err := ExtractAs[pet](context.Background(), New(client), "x", nil, petNode())
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != "dog" || got.Name != "Rex" || got.Toys == nil {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestExtract_RejectsNonConformingOutput(t *testing.T) {
	cases := map[string]string{
		"malformed json":        `{"kind":"cat",`,
		"stray closing brace":   `{"kind":"cat","name":"Tom","toys":[]}}`,
		"stray closing bracket": `{"kind":"cat","name":"Tom","toys":[]}]`,
		"plain text":            `Sure! Here is your pet.`,
		"missing required":      `{"kind":"cat","toys":[]}`,
		"enum outside set":      `{"kind":"parrot","name":"Polly","toys":[]}`,
		"wrong leaf kind":       `{"kind":"cat","name":["Tom"],"toys":[]}`,
	}
	for name, text := range cases {
		_, client := fixed(text)
		got, err := ExtractAs[pet](context.Background(), New(client), "x", nil, petNode())
		if got != nil {
			t.Errorf("%s: expected nil result, got %+v", name, got)
		}
		var ve *schema.ViolationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected ViolationError, got %v", name, err)
		}
	}
}

func TestExtract_TransportAndEmptyFailures(t *testing.T) {
	d, err := llm.NewDummyClient("err:network down,empty")
	if err != nil {
		t.Fatal(err)
	}
	e := New(d)

	got, err := e.Extract(context.Background(), "x", nil, petNode())
	var te *llm.TransportError
	if got != nil || !errors.As(err, &te) {
		t.Errorf("expected nil + TransportError, got %s %v", got, err)
	}
	got, err = e.Extract(context.Background(), "x", nil, petNode())
	var ee *llm.EmptyResponseError
	if got != nil || !errors.As(err, &ee) {
		t.Errorf("expected nil + EmptyResponseError, got %s %v", got, err)
	}
}

func TestExtract_BlankTextIsEmptyResponse(t *testing.T) {
	for _, text := range []string{"", "  \n\t"} {
		_, client := fixed(text)
		got, err := New(client).Extract(context.Background(), "x", nil, petNode())
		var ee *llm.EmptyResponseError
		if got != nil || !errors.As(err, &ee) {
			t.Errorf("text %q: expected nil + EmptyResponseError, got %s %v", text, got, err)
		}
	}

	nilResp := llm.ClientFunc(func(context.Context, *llm.Request) (*llm.Response, error) { return nil, nil })
	var ee *llm.EmptyResponseError
	if _, err := New(nilResp).Extract(context.Background(), "x", nil, petNode()); !errors.As(err, &ee) {
		t.Errorf("nil response: expected EmptyResponseError, got %v", err)
	}
}

func TestExtract_RecoversPanickingClient(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
		panic("boom")
	})
	got, err := New(client).Extract(context.Background(), "x", nil, petNode())
	if got != nil || err == nil {
		t.Fatalf("expected nil + error after panic, got %s %v", got, err)
	}
}

func TestExtract_StatelessAndSchemaUntouched(t *testing.T) {
	d, _ := llm.NewDummyClient(`msg:{"kind":"cat"}`)
	node := petNode()
	before := petNode()
	e := New(d)

	for i := 0; i < 2; i++ {
		if got, _ := e.Extract(context.Background(), "x", nil, node); got != nil {
			t.Fatalf("call %d: incomplete payload must be rejected", i)
		}
	}
	if n := len(d.Requests()); n != 2 {
		t.Errorf("each call must reach the model exactly once, got %d requests", n)
	}
	if !reflect.DeepEqual(node, before) {
		t.Error("schema was mutated")
	}
}
