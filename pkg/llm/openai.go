package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ai-workbench/internal/config"
	"ai-workbench/internal/model"
	"ai-workbench/pkg/log"
)

const providerOpenAI = "openai"

// openAIClient talks to any OpenAI-compatible /chat/completions endpoint (DeepSeek, Qwen, OpenAI)
// over SSE and accumulates the streamed deltas into one answer.
type openAIClient struct {
	cfg    config.LLMConfig
	gen    *GenerationParams
	client *http.Client
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg config.LLMConfig) Client {
	return &openAIClient{
		cfg:    cfg,
		gen:    generationFromConfig(cfg.Generation),
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role string `json:"role"`
	// Content is a plain string for text-only messages and a list of content items otherwise.
	Content any `json:"content"`
}

type contentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
	File     *fileData `json:"file,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type fileData struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type jsonSchemaSpec struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openAIClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model:    c.cfg.Model,
		Messages: buildMessages(req),
		Stream:   true,
	}
	// 传参优先，其次使用全局配置
	gen := c.gen
	if req.Generation != nil {
		gen = req.Generation
	}
	if gen != nil {
		reqBody.Temperature = gen.Temperature
		reqBody.TopP = gen.TopP
		reqBody.MaxTokens = gen.MaxTokens
	}
	if req.Schema != nil {
		reqBody.ResponseFormat = &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaSpec{
				Name:   "structured_output",
				Strict: true,
				Schema: toJSONSchema(req.Schema),
			},
		}
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Accept", "text/event-stream")

	log.Infow("[OpenAIClient] 调用模型", "model", c.cfg.Model, "messages", len(reqBody.Messages), "structured", req.Schema != nil)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Provider: providerOpenAI, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{
			Provider: providerOpenAI,
			Err:      fmt.Errorf("non-200 status: %s, body: %s", resp.Status, string(bodyBytes)),
		}
	}

	answer, finish, err := readStream(resp.Body)
	if err != nil {
		return nil, &TransportError{Provider: providerOpenAI, Err: err}
	}
	if strings.TrimSpace(answer) == "" {
		return nil, &EmptyResponseError{Provider: providerOpenAI, Reason: finish}
	}
	return &Response{Text: answer}, nil
}

// readStream 读取 SSE 流并拼接所有 delta 内容。
func readStream(body io.Reader) (string, string, error) {
	var answer strings.Builder
	var finish string
	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", "", fmt.Errorf("failed to read from stream: %w", err)
		}

		// SSE 允许 "data:" 后不带空格
		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				break
			}
			var chunk chatChunk
			if jsonErr := json.Unmarshal([]byte(data), &chunk); jsonErr != nil {
				return "", "", fmt.Errorf("malformed stream chunk: %w", jsonErr)
			}
			if chunk.Error != nil {
				return "", "", fmt.Errorf("provider error: %s", chunk.Error.Message)
			}
			if len(chunk.Choices) > 0 {
				answer.WriteString(chunk.Choices[0].Delta.Content)
				if chunk.Choices[0].FinishReason != "" {
					finish = chunk.Choices[0].FinishReason
				}
			}
		}
		if err == io.EOF {
			break
		}
	}
	return answer.String(), finish, nil
}

func buildMessages(req *Request) []chatMessage {
	msgs := make([]chatMessage, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.System})
	}
	for _, h := range req.History {
		msgs = append(msgs, chatMessage{Role: openAIRole(h.Role), Content: messageContent(h.Parts)})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: messageContent(req.Parts)})
	return msgs
}

func openAIRole(r model.Role) string {
	if r == model.RoleModel {
		return "assistant"
	}
	return "user"
}

// messageContent keeps text-only messages as a plain string and switches to
// content items when an attachment is present.
func messageContent(parts []model.Part) any {
	hasAttachment := false
	for _, p := range parts {
		if _, ok := p.(model.AttachmentPart); ok {
			hasAttachment = true
			break
		}
	}
	if !hasAttachment {
		return textOf(parts)
	}
	items := make([]contentItem, 0, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case model.TextPart:
			items = append(items, contentItem{Type: "text", Text: v.Content})
		case model.AttachmentPart:
			dataURL := "data:" + v.MIMEType + ";base64," + v.Data
			if strings.HasPrefix(v.MIMEType, "image/") {
				items = append(items, contentItem{Type: "image_url", ImageURL: &imageURL{URL: dataURL}})
			} else {
				items = append(items, contentItem{Type: "file", File: &fileData{Filename: fmt.Sprintf("attachment-%d", i), FileData: dataURL}})
			}
		}
	}
	return items
}
