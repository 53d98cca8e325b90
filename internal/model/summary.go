package model

import (
	"fmt"
	"math"
	"strings"
)

// SummaryLength is the target length directive for a summary.
type SummaryLength string

const (
	LengthShort  SummaryLength = "short"
	LengthMedium SummaryLength = "medium"
	LengthLong   SummaryLength = "long"
)

// ParseSummaryLength maps user input onto a SummaryLength; empty means medium.
func ParseSummaryLength(s string) (SummaryLength, error) {
	switch SummaryLength(strings.ToLower(strings.TrimSpace(s))) {
	case "", LengthMedium:
		return LengthMedium, nil
	case LengthShort:
		return LengthShort, nil
	case LengthLong:
		return LengthLong, nil
	default:
		return "", fmt.Errorf("invalid summary length %q (want short, medium or long)", s)
	}
}

// wordsPerMinute 阅读速度估算。
const wordsPerMinute = 200

// SummaryResult is what the console shows next to a summary.
// Word metrics are zero when the source was a file.
type SummaryResult struct {
	Summary             string  `json:"summary"`
	WordCount           int     `json:"wordCount"`
	ReadingTimeMinutes  int     `json:"readingTimeMinutes"`
	SummaryWordCount    int     `json:"summaryWordCount"`
	ReductionPercentage float64 `json:"reductionPercentage"`
	Fallback            bool    `json:"fallback"`
}

// CountWords splits on any run of whitespace.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// NewSummaryResult derives the metrics for a summary of source.
func NewSummaryResult(source, summary string, fallback bool) SummaryResult {
	r := SummaryResult{Summary: summary, Fallback: fallback}
	r.WordCount = CountWords(source)
	r.ReadingTimeMinutes = int(math.Ceil(float64(r.WordCount) / wordsPerMinute))
	if fallback {
		return r
	}
	r.SummaryWordCount = CountWords(summary)
	if r.WordCount > 0 && r.SummaryWordCount < r.WordCount {
		reduction := 100 * float64(r.WordCount-r.SummaryWordCount) / float64(r.WordCount)
		r.ReductionPercentage = math.Round(reduction*10) / 10
	}
	return r
}
