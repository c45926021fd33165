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
	"github.com/spigell/closai/internal/logger"
	"github.com/spigell/closai/internal/utils"
)

const (
	provider            = "gemini"
	defaultMaxLogLength = 200
	narratorSystem      = "You are a fashion fit expert. Reply with JSON only."
)

//go:embed fit_prompt.md
var fitPromptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Narrator asks Gemini to describe how a recommended size will fit.
type Narrator struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Narrator = (*Narrator)(nil)

func NewNarrator(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Narrator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Narrator{
		generator: generator,
		logger:    withModel(logger, generator),
		maxLogLen: maxLogLength,
	}
}

func (n *Narrator) Narrate(ctx context.Context, req *ai.FitRequest) (*ai.FitNarrative, error) {
	if req == nil {
		return nil, errors.New("fit request is required")
	}
	if strings.TrimSpace(req.RecommendedSize) == "" {
		return nil, errors.New("recommended size is required")
	}

	prompt, err := buildFitPrompt(req)
	if err != nil {
		return nil, err
	}

	n.logger.Debug("gemini fit narrative request",
		zap.String("product", req.ProductTitle),
		zap.String("size", req.RecommendedSize),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, n.maxLogLen)),
	)

	raw, err := n.generator.GenerateContent(ctx, narratorSystem, prompt)
	if err != nil {
		return nil, err
	}

	n.logger.Debug("gemini fit narrative response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, n.maxLogLen)),
	)

	narrative, err := parseNarrative(raw)
	if err != nil {
		return nil, err
	}
	narrative.Raw = raw
	return narrative, nil
}

func buildFitPrompt(req *ai.FitRequest) (string, error) {
	table, err := json.MarshalIndent(req.SizeTable, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal size table: %w", err)
	}

	template := fitPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Height: {{HEIGHT}}\nWeight: {{WEIGHT}}\nProduct: {{PRODUCT_TITLE}}\nSize: {{RECOMMENDED_SIZE}}\nTable:\n{{SIZE_TABLE_JSON}}"
	}

	return strings.NewReplacer(
		"{{HEIGHT}}", placeholder(req.UserStats.Height),
		"{{WEIGHT}}", placeholder(req.UserStats.Weight),
		"{{PRODUCT_TITLE}}", placeholder(req.ProductTitle),
		"{{RECOMMENDED_SIZE}}", strings.TrimSpace(req.RecommendedSize),
		"{{SIZE_TABLE_JSON}}", string(table),
	).Replace(template), nil
}

func placeholder(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

// parseNarrative accepts {"positive","concern"}, the older {"text"} shape or plain prose.
func parseNarrative(raw string) (*ai.FitNarrative, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("empty fit narrative")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(trimmed)), &data); err != nil {
		return &ai.FitNarrative{Text: strings.Trim(trimmed, `"`)}, nil
	}

	narrative := &ai.FitNarrative{
		Positive: coerceString(data["positive"]),
		Concern:  coerceString(data["concern"]),
		Text:     coerceString(data["text"]),
	}
	if narrative.Positive == "" && narrative.Concern == "" && narrative.Text == "" {
		return nil, fmt.Errorf("parse gemini response: no narrative fields in %q", utils.TruncateForLog(trimmed, defaultMaxLogLength))
	}
	return narrative, nil
}

func withModel(l *zap.Logger, generator contentGenerator) *zap.Logger {
	model := ""
	if generator != nil {
		model = generator.Model()
	}
	return logger.WithCommonFields(l, provider, model)
}
