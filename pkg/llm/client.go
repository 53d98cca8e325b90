// Package llm provides the single seam between the workbench and a remote generative model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-workbench/internal/config"
	"ai-workbench/internal/model"
	"ai-workbench/internal/schema"
)

// Client sends one composed request to a generative model.
type Client interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req *Request) (*Response, error)

func (f ClientFunc) Generate(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Content is one prior turn in provider shape.
type Content struct {
	Role  model.Role
	Parts []model.Part
}

// Request is everything a single model call carries.
type Request struct {
	// System is an optional system-level instruction.
	System string
	// History holds prior turns, oldest first.
	History []Content
	// Parts is the new message; it must start with a text instruction.
	Parts []model.Part
	// Schema, when set, asks for JSON output conforming to it.
	Schema     *schema.Node
	Generation *GenerationParams
}

// GenerationParams 控制生成行为
type GenerationParams struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Response holds the raw text the model produced (JSON text when a schema was requested).
type Response struct {
	Text string
}

// ErrInvalidRequest is returned before any network call when a request breaks the part ordering rules.
var ErrInvalidRequest = errors.New("invalid model request")

// Validate enforces that Parts is non-empty and that a text part precedes any attachment.
func (r *Request) Validate() error {
	if r == nil || len(r.Parts) == 0 {
		return fmt.Errorf("%w: no parts", ErrInvalidRequest)
	}
	if _, ok := r.Parts[0].(model.TextPart); !ok {
		return fmt.Errorf("%w: first part must be a text instruction, got %T", ErrInvalidRequest, r.Parts[0])
	}
	for i, p := range r.Parts {
		if p == nil {
			return fmt.Errorf("%w: part %d is nil", ErrInvalidRequest, i)
		}
	}
	return nil
}

// TransportError wraps a failed call: network, non-2xx status, undecodable envelope or provider rejection.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EmptyResponseError means the call succeeded but produced no usable text.
type EmptyResponseError struct {
	Provider string
	Reason   string
}

func (e *EmptyResponseError) Error() string {
	if e.Reason == "" {
		return e.Provider + " returned an empty response"
	}
	return fmt.Sprintf("%s returned an empty response: %s", e.Provider, e.Reason)
}

// NewClient creates a client for the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiClient(ctx, cfg)
	case "openai":
		return NewOpenAIClient(cfg), nil
	case "dummy":
		return NewDummyClient(cfg.DummyScript)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// generationFromConfig 从全局配置注入非零生成参数；全为零时返回 nil。
func generationFromConfig(cfg config.LLMGenerationConfig) *GenerationParams {
	var gp GenerationParams
	if cfg.Temperature != 0 {
		t := cfg.Temperature
		gp.Temperature = &t
	}
	if cfg.TopP != 0 {
		p := cfg.TopP
		gp.TopP = &p
	}
	if cfg.MaxTokens != 0 {
		m := cfg.MaxTokens
		gp.MaxTokens = &m
	}
	if gp.Temperature == nil && gp.TopP == nil && gp.MaxTokens == nil {
		return nil
	}
	return &gp
}

// textOf joins the text parts with blank lines, skipping attachments.
func textOf(parts []model.Part) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if tp, ok := p.(model.TextPart); ok {
			texts = append(texts, tp.Content)
		}
	}
	return strings.Join(texts, "\n\n")
}
