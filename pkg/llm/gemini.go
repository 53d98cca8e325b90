package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-workbench/internal/config"
	"ai-workbench/internal/encoder"
	"ai-workbench/internal/model"
	"ai-workbench/pkg/log"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const providerGemini = "gemini"

type geminiClient struct {
	client  *genai.Client
	model   string
	gen     *GenerationParams
	timeout time.Duration
}

// NewGeminiClient creates a Gemini client through the official SDK.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	c, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return &geminiClient{
		client:  c,
		model:   modelName,
		gen:     generationFromConfig(cfg.Generation),
		timeout: cfg.Timeout,
	}, nil
}

// Close releases the underlying SDK connection.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

func (c *geminiClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	parts, err := toGenaiParts(req.Parts)
	if err != nil {
		return nil, err
	}

	m := c.client.GenerativeModel(c.model)
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	applyGeneration(m, c.gen, req.Generation)
	if req.Schema != nil {
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = toGenaiSchema(req.Schema)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log.Infow("[GeminiClient] 调用模型", "model", c.model, "parts", len(parts), "history", len(req.History), "structured", req.Schema != nil)

	var resp *genai.GenerateContentResponse
	if len(req.History) > 0 {
		history, err := toGenaiHistory(req.History)
		if err != nil {
			return nil, err
		}
		cs := m.StartChat()
		cs.History = history
		resp, err = cs.SendMessage(ctx, parts...)
		if err != nil {
			return nil, &TransportError{Provider: providerGemini, Err: err}
		}
	} else {
		resp, err = m.GenerateContent(ctx, parts...)
		if err != nil {
			return nil, &TransportError{Provider: providerGemini, Err: err}
		}
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, &EmptyResponseError{Provider: providerGemini, Reason: finishReason(resp)}
	}
	return &Response{Text: text}, nil
}

func applyGeneration(m *genai.GenerativeModel, defaults, override *GenerationParams) {
	gp := defaults
	if override != nil {
		gp = override
	}
	if gp == nil {
		return
	}
	if gp.Temperature != nil {
		m.SetTemperature(float32(*gp.Temperature))
	}
	if gp.TopP != nil {
		m.SetTopP(float32(*gp.TopP))
	}
	if gp.MaxTokens != nil {
		m.SetMaxOutputTokens(int32(*gp.MaxTokens))
	}
}

func toGenaiParts(parts []model.Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case model.TextPart:
			out = append(out, genai.Text(v.Content))
		case model.AttachmentPart:
			data, err := encoder.Decode(v)
			if err != nil {
				return nil, fmt.Errorf("%w: part %d is not valid base64: %v", ErrInvalidRequest, i, err)
			}
			out = append(out, genai.Blob{MIMEType: v.MIMEType, Data: data})
		default:
			return nil, fmt.Errorf("%w: unsupported part %T", ErrInvalidRequest, p)
		}
	}
	return out, nil
}

func toGenaiHistory(history []Content) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(history))
	for _, h := range history {
		parts, err := toGenaiParts(h.Parts)
		if err != nil {
			return nil, err
		}
		out = append(out, &genai.Content{Role: string(h.Role), Parts: parts})
	}
	return out, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return "no candidates"
	}
	return resp.Candidates[0].FinishReason.String()
}
