package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/closai/internal/ai"
	"github.com/spigell/closai/internal/utils"
)

//go:embed summary_prompt.md
var summaryPrompt string

// Summarizer condenses product reviews with Gemini. It falls back to
// ai.FallbackSummary whenever Gemini fails or answers with something unusable.
type Summarizer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Summarizer = (*Summarizer)(nil)

func NewSummarizer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Summarizer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Summarizer{
		generator: generator,
		logger:    withModel(logger, generator),
		maxLogLen: maxLogLength,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, reviews []string) (*ai.ReviewSummary, error) {
	cleaned := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		return &ai.ReviewSummary{Pros: []string{}, Cons: []string{}, FitStyle: []string{}}, nil
	}

	message := "리뷰 내용:\n" + strings.Join(cleaned, "\n")
	s.logger.Debug("gemini review summary request",
		zap.Int("reviews", len(cleaned)),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
	)

	raw, err := s.generator.GenerateContent(ctx, summaryPrompt, message)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("gemini review summary failed, using keyword fallback", zap.Error(err))
		return ai.FallbackSummary(cleaned), nil
	}

	s.logger.Debug("gemini review summary response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	summary, err := parseSummary(raw)
	if err != nil {
		s.logger.Warn("unusable gemini review summary, using keyword fallback", zap.Error(err))
		return ai.FallbackSummary(cleaned), nil
	}
	return summary, nil
}

// parseSummary accepts the {"pros","cons","fitStyle"} object or a bare list of pros.
func parseSummary(raw string) (*ai.ReviewSummary, error) {
	cleaned := extractJSON(raw)

	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var summary *ai.ReviewSummary
	switch val := data.(type) {
	case map[string]any:
		summary = &ai.ReviewSummary{
			Pros:     coerceStrings(val["pros"]),
			Cons:     coerceStrings(val["cons"]),
			FitStyle: coerceStrings(val["fitStyle"]),
		}
	case []any:
		summary = &ai.ReviewSummary{Pros: coerceStrings(val), Cons: []string{}, FitStyle: []string{}}
	default:
		return nil, errors.New("parse gemini response: unexpected summary shape")
	}

	if len(summary.Pros) == 0 {
		return nil, errors.New("parse gemini response: summary has no pros")
	}
	return summary, nil
}
