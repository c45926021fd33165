package advisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/closai/internal/ai"
	"github.com/spigell/closai/internal/catalog"
	"github.com/spigell/closai/internal/logger"
	"github.com/spigell/closai/internal/sizing"
	"github.com/spigell/closai/internal/wardrobe"
)

const (
	defaultAITimeout = 20 * time.Second

	StepNarrative = "narrative"
	StepSummary   = "summary"
)

// ProductSource fetches a product by URL or goods number.
type ProductSource interface {
	Product(ctx context.Context, ref string) (*catalog.Product, error)
}

// Wardrobe is the part of the store the advisor reads.
type Wardrobe interface {
	IdealSize(ctx context.Context) (*wardrobe.Snapshot, sizing.Profile, error)
}

// Deps are the collaborators of an Advisor. Narrator and Summarizer are optional.
type Deps struct {
	Catalog    ProductSource
	Wardrobe   Wardrobe
	Narrator   ai.Narrator
	Summarizer ai.Summarizer
	Logger     *zap.Logger
}

type Config struct {
	// AITimeout bounds each AI call separately.
	AITimeout time.Duration `mapstructure:"timeout"`
}

// Advice is everything known about how a product will fit.
type Advice struct {
	Product     *catalog.Product   `json:"product"`
	Profile     sizing.Stats       `json:"profile"`
	Recommended string             `json:"recommendedSize,omitempty"`
	Scores      []sizing.RowScore  `json:"scores,omitempty"`
	Narrative   *ai.FitNarrative   `json:"narrative,omitempty"`
	Summary     *ai.ReviewSummary  `json:"summary,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Errors      map[string]string  `json:"errors,omitempty"`
	UserStats   wardrobe.UserStats `json:"userStats"`
}

type Advisor struct {
	deps      Deps
	aiTimeout time.Duration
	logger    *zap.Logger
}

func New(deps Deps, cfg Config) (*Advisor, error) {
	if deps.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if deps.Wardrobe == nil {
		return nil, errors.New("wardrobe is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = defaultAITimeout
	}

	return &Advisor{deps: deps, aiTimeout: timeout, logger: deps.Logger}, nil
}

// Advise recommends a size for the product behind ref. The recommendation is
// computed before any AI call starts; AI enrichments are best effort and their
// failures end up in Advice.Errors.
func (a *Advisor) Advise(ctx context.Context, ref string) (*Advice, error) {
	product, err := a.deps.Catalog.Product(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching product: %w", err)
	}

	snap, profile, err := a.deps.Wardrobe.IdealSize(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading wardrobe: %w", err)
	}

	category := wardrobe.Category(product.Category1).OrOther()
	advice := &Advice{
		Product:   product,
		Profile:   profile[string(category)],
		UserStats: snap.UserStats,
	}

	log := logger.WithProduct(a.logger, product.GoodsNo, string(category))

	switch {
	case product.SizeTable.IsEmpty():
		advice.Reason = "the product has no size table"
	case advice.Profile == nil:
		advice.Reason = fmt.Sprintf("no garment in category %q is marked as a good fit yet", category)
	default:
		advice.Scores = sizing.Score(product.SizeTable, profile, string(category))
		if size, ok := sizing.Best(advice.Scores); ok {
			advice.Recommended = size
		} else {
			advice.Reason = "none of the size table columns match the profile"
		}
	}
	log.Info("size recommendation",
		zap.String("size", advice.Recommended),
		zap.String("reason", advice.Reason),
	)

	a.enrich(ctx, advice, log)
	return advice, nil
}

// enrich runs the narrative and the review summary concurrently.
func (a *Advisor) enrich(ctx context.Context, advice *Advice, log *zap.Logger) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	fail := func(step string, err error) {
		log.Warn("ai enrichment failed", zap.String("ai_step", step), zap.Error(err))
		mu.Lock()
		defer mu.Unlock()
		if advice.Errors == nil {
			advice.Errors = make(map[string]string)
		}
		advice.Errors[step] = err.Error()
	}

	if advice.Recommended != "" && a.deps.Narrator != nil {
		req := &ai.FitRequest{
			UserStats:       advice.UserStats,
			ProductTitle:    advice.Product.Title,
			RecommendedSize: advice.Recommended,
			SizeTable:       advice.Product.SizeTable,
		}
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, a.aiTimeout)
			defer cancel()

			narrative, err := a.deps.Narrator.Narrate(callCtx, req)
			if err != nil {
				fail(StepNarrative, err)
				return nil
			}
			advice.Narrative = narrative
			return nil
		})
	}

	if reviews := advice.Product.ReviewTexts(); len(reviews) > 0 {
		g.Go(func() error {
			if a.deps.Summarizer == nil {
				advice.Summary = ai.FallbackSummary(reviews)
				return nil
			}

			callCtx, cancel := context.WithTimeout(ctx, a.aiTimeout)
			defer cancel()

			summary, err := a.deps.Summarizer.Summarize(callCtx, reviews)
			if err != nil {
				fail(StepSummary, err)
				advice.Summary = ai.FallbackSummary(reviews)
				return nil
			}
			advice.Summary = summary
			return nil
		})
	}

	_ = g.Wait()
}
