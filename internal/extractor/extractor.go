// Package extractor asks a model for JSON that conforms to a schema.Node and
// only hands back payloads that passed validation.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-workbench/internal/model"
	"ai-workbench/internal/schema"
	"ai-workbench/pkg/llm"
	"ai-workbench/pkg/log"
)

// Extractor is stateless; it holds only the model client.
type Extractor struct {
	client llm.Client
}

func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract sends [instruction, parts...] with node as the output contract and
// returns the validated JSON. On any failure the payload is nil and the error
// is one of *llm.TransportError, *llm.EmptyResponseError, *schema.ViolationError
// (or wraps llm.ErrInvalidRequest).
func (e *Extractor) Extract(ctx context.Context, instruction string, parts []model.Part, node *schema.Node) (payload json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = &llm.TransportError{Provider: "extractor", Err: fmt.Errorf("panic during extraction: %v", r)}
		}
	}()

	reqParts := make([]model.Part, 0, len(parts)+1)
	reqParts = append(reqParts, model.TextPart{Content: instruction})
	reqParts = append(reqParts, parts...)

	resp, err := e.client.Generate(ctx, &llm.Request{Parts: reqParts, Schema: node})
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, &llm.EmptyResponseError{Provider: "extractor", Reason: "blank response text"}
	}

	value, err := schema.Decode(resp.Text, node)
	if err != nil {
		log.Warnw("[Extractor] 模型输出未通过结构校验", "error", err, "responseLen", len(resp.Text))
		return nil, err
	}
	// 重新序列化已校验的值，去掉代码块包裹等噪声
	validated, err := json.Marshal(value)
	if err != nil {
		return nil, &schema.ViolationError{Path: "$", Reason: "re-encode failed", Err: err}
	}
	return validated, nil
}

// ExtractAs runs Extract and decodes the validated payload into T.
func ExtractAs[T any](ctx context.Context, e *Extractor, instruction string, parts []model.Part, node *schema.Node) (*T, error) {
	payload, err := e.Extract(ctx, instruction, parts, node)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, &schema.ViolationError{Path: "$", Reason: "payload does not fit result type", Err: err}
	}
	return &out, nil
}
