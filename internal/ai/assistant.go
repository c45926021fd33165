package ai

import (
	"context"
	"errors"

	"github.com/spigell/closai/internal/sizing"
	"github.com/spigell/closai/internal/wardrobe"
)

// ErrDisabled is returned by callers that were asked for AI output while no
// provider is configured.
var ErrDisabled = errors.New("ai provider is disabled")

// FitRequest is everything the narrative provider gets to describe a fit.
type FitRequest struct {
	UserStats       wardrobe.UserStats `json:"userStats"`
	ProductTitle    string             `json:"productTitle"`
	RecommendedSize string             `json:"recommendedSize"`
	SizeTable       *sizing.Table      `json:"sizeTable"`
}

// FitNarrative is the provider's description of how the recommended size will fit.
// Text is set instead of Positive/Concern when the provider answered with a
// single sentence.
type FitNarrative struct {
	Positive string `json:"positive,omitempty"`
	Concern  string `json:"concern,omitempty"`
	Text     string `json:"text,omitempty"`
	Raw      string `json:"-"`
}

type Narrator interface {
	Narrate(ctx context.Context, req *FitRequest) (*FitNarrative, error)
}

// ReviewSummary groups review highlights.
type ReviewSummary struct {
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
	FitStyle []string `json:"fitStyle"`
}

type Summarizer interface {
	Summarize(ctx context.Context, reviews []string) (*ReviewSummary, error)
}
