package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"ai-workbench/internal/model"
	"ai-workbench/pkg/llm"
)

const (
	// SentimentUnavailable is returned when the model produced no text.
	SentimentUnavailable = "Analysis unavailable."
	// SentimentFailed is returned for every other failure.
	SentimentFailed = "Could not analyze sentiment."

	defaultSeriesPoints = 50
	maxSeriesPoints     = 365
)

// MarketService 定义了行情页面所需的接口：新闻情绪分析与演示用价格序列。
type MarketService interface {
	AnalyzeSentiment(ctx context.Context, headline string) string
	Series(points int) []model.MarketPoint
}

type marketService struct {
	llmClient llm.Client
	now       func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMarketService 创建一个新的 MarketService 实例。
func NewMarketService(llmClient llm.Client) MarketService {
	return &marketService{
		llmClient: llmClient,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

func (s *marketService) AnalyzeSentiment(ctx context.Context, headline string) string {
	return dispatch(ctx, "market.sentiment", sentimentFallback, func(ctx context.Context) (string, error) {
		prompt := fmt.Sprintf(`Analyze the sentiment of this financial news headline for stock prediction purposes.
Headline: %q

Provide a brief analysis (1-2 sentences) and a sentiment label (Bullish/Bearish/Neutral).`, headline)
		resp, err := s.llmClient.Generate(ctx, &llm.Request{Parts: []model.Part{model.TextPart{Content: prompt}}})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})
}

func sentimentFallback(err error) string {
	if isEmptyResponse(err) {
		return SentimentUnavailable
	}
	return SentimentFailed
}

// Series generates a random-walk "actual" price and a noisy "predicted" line
// that mimics a lagging forecast, one point per day ending yesterday.
// rand.Rand is not goroutine safe, so each call uses its own source seeded from s.rng.
func (s *marketService) Series(points int) []model.MarketPoint {
	if points <= 0 {
		points = defaultSeriesPoints
	}
	if points > maxSeriesPoints {
		points = maxSeriesPoints
	}
	rng := s.newRand()
	today := s.now()
	price := 150.0
	out := make([]model.MarketPoint, 0, points)
	for i := 0; i < points; i++ {
		price += (rng.Float64() - 0.5) * 5
		predicted := price + (rng.Float64()-0.5)*3
		out = append(out, model.MarketPoint{
			Date:      today.AddDate(0, 0, -(points - i)).Format("Jan 2"),
			Actual:    round2(price),
			Predicted: round2(predicted),
		})
	}
	return out
}

func (s *marketService) newRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
