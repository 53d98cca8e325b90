package service

import (
	"context"

	"ai-workbench/internal/conversation"
	"ai-workbench/internal/model"
	"ai-workbench/pkg/llm"
)

const counsellorPersona = `You are an expert AI Career Counsellor.
Your goal is to recommend career paths based on user interests, skills, and personality.

Guidelines:
1. Ask clarifying questions if the user is vague (e.g., "I like computers" -> ask about coding vs hardware).
2. Suggest 2-3 specific roles when you have enough info.
3. Provide a brief roadmap (skills to learn) for suggested roles.
4. Keep the tone encouraging, professional, and concise.
5. Detect intents like 'Technology', 'Arts', 'Commerce' and tailor advice accordingly.`

const (
	// CounselGreeting opens every counselling session as the first model turn.
	CounselGreeting = "Hello! I'm your AI Career Counsellor. I can help analyze your interests and suggest suitable career paths. To start, tell me a bit about what you enjoy doing or your educational background."
	// AdviceUnclear is returned when the model answers with no text.
	AdviceUnclear = "I'm having trouble analyzing that right now. Could you elaborate?"
	// AdviceUnavailable is returned for every other failure.
	AdviceUnavailable = "I apologize, but I am unable to connect to the career database at the moment. Please ensure your API key is valid."
)

// HistoryProvider supplies prior turns in provider shape; *conversation.Manager implements it.
type HistoryProvider interface {
	ProviderHistory() []llm.Content
}

// CounselService 定义了职业咨询对话的接口。
type CounselService interface {
	// NewSession returns a fresh turn log seeded with the greeting.
	NewSession() *conversation.Manager
	// Advise answers message given the prior turns. It never appends to history.
	Advise(ctx context.Context, history HistoryProvider, message string) string
}

type counselService struct {
	llmClient llm.Client
}

// NewCounselService 创建一个新的 CounselService 实例。
func NewCounselService(llmClient llm.Client) CounselService {
	return &counselService{llmClient: llmClient}
}

func (s *counselService) NewSession() *conversation.Manager {
	return conversation.NewManager(model.NewTurn(model.RoleModel, CounselGreeting))
}

func (s *counselService) Advise(ctx context.Context, history HistoryProvider, message string) string {
	return dispatch(ctx, "counsel.advise", adviceFallback, func(ctx context.Context) (string, error) {
		var prior []llm.Content
		if history != nil {
			prior = history.ProviderHistory()
		}
		resp, err := s.llmClient.Generate(ctx, &llm.Request{
			System:  counsellorPersona,
			History: prior,
			Parts:   []model.Part{model.TextPart{Content: message}},
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}

func adviceFallback(err error) string {
	if isEmptyResponse(err) {
		return AdviceUnclear
	}
	return AdviceUnavailable
}

// IsAdviceFallback reports whether reply is one of the fixed fallback strings,
// letting the caller decide whether to log it as a model turn.
func IsAdviceFallback(reply string) bool {
	return reply == AdviceUnclear || reply == AdviceUnavailable
}
