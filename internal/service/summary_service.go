package service

import (
	"context"
	"fmt"

	"ai-workbench/internal/encoder"
	"ai-workbench/internal/model"
	"ai-workbench/pkg/llm"
)

const (
	// SummaryUnavailable is returned when the model produced no text.
	SummaryUnavailable = "Could not generate summary."
	// SummaryFailed is returned for every other failure.
	SummaryFailed = "Error generating summary. Please try again."
)

var lengthGuidance = map[model.SummaryLength]string{
	model.LengthShort:  "a few sentences",
	model.LengthMedium: "one or two short paragraphs",
	model.LengthLong:   "a detailed, multi-paragraph summary",
}

// SummaryService 定义了文本/文件摘要的接口。
type SummaryService interface {
	Summarize(ctx context.Context, input model.Input, length model.SummaryLength) string
}

type summaryService struct {
	llmClient llm.Client
}

// NewSummaryService 创建一个新的 SummaryService 实例。
func NewSummaryService(llmClient llm.Client) SummaryService {
	return &summaryService{llmClient: llmClient}
}

func (s *summaryService) Summarize(ctx context.Context, input model.Input, length model.SummaryLength) string {
	return dispatch(ctx, "summary.summarize", summaryFallback, func(ctx context.Context) (string, error) {
		guidance, ok := lengthGuidance[length]
		if !ok {
			return "", fmt.Errorf("%w: unknown summary length %q", llm.ErrInvalidRequest, length)
		}
		part, err := encoder.Encode(input)
		if err != nil {
			return "", err
		}
		resp, err := s.llmClient.Generate(ctx, &llm.Request{
			Parts: []model.Part{model.TextPart{Content: summaryInstruction(input, length, guidance)}, part},
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}

func summaryInstruction(input model.Input, length model.SummaryLength, guidance string) string {
	subject := "the following text"
	trailer := "Text:"
	if model.InputKind(input) == "file" {
		subject = "the attached document"
		trailer = "Document:"
	}
	return fmt.Sprintf(`Please summarize %s.
Target length: %s (%s).
Identify the main points and ignore fluff.

%s`, subject, length, guidance, trailer)
}

func summaryFallback(err error) string {
	if isEmptyResponse(err) {
		return SummaryUnavailable
	}
	return SummaryFailed
}

// IsSummaryFallback reports whether s is one of the fixed fallback strings.
func IsSummaryFallback(s string) bool {
	return s == SummaryUnavailable || s == SummaryFailed
}
