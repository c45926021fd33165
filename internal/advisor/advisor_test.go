package advisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/closai/internal/ai"
	"github.com/spigell/closai/internal/catalog"
	"github.com/spigell/closai/internal/sizing"
	"github.com/spigell/closai/internal/wardrobe"
)

type stubCatalog struct {
	product *catalog.Product
	err     error
}

func (s *stubCatalog) Product(context.Context, string) (*catalog.Product, error) {
	return s.product, s.err
}

type stubNarrator struct {
	narrative *ai.FitNarrative
	err       error
	block     bool
	got       *ai.FitRequest
}

func (s *stubNarrator) Narrate(ctx context.Context, req *ai.FitRequest) (*ai.FitNarrative, error) {
	s.got = req
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.narrative, s.err
}

type stubSummarizer struct {
	summary *ai.ReviewSummary
	err     error
}

func (s *stubSummarizer) Summarize(context.Context, []string) (*ai.ReviewSummary, error) {
	return s.summary, s.err
}

func product() *catalog.Product {
	return &catalog.Product{
		GoodsNo:   "1001",
		Title:     "Oxford shirt",
		Category1: "상의",
		SizeTable: &sizing.Table{
			Headers: []string{"총장"},
			Rows: []sizing.Row{
				{Name: "M", Values: []string{"68"}},
				{Name: "L", Values: []string{"71"}},
				{Name: "XL", Values: []string{"76"}},
			},
		},
		Reviews: []catalog.Review{{Content: "원단이 탄탄하고 핏이 예뻐요. 추천합니다"}},
	}
}

func newWardrobe(t *testing.T, withProfile bool) *wardrobe.Store {
	t.Helper()

	ctx := context.Background()
	store := wardrobe.NewStore(wardrobe.NewMemoryBackend(), nil)
	_, err := store.UpdateStats(ctx, "175", "68")
	require.NoError(t, err)
	if !withProfile {
		return store
	}

	_, err = store.AddItem(ctx, wardrobe.Item{
		GoodsNo:   "1",
		Category1: "상의",
		SizeTable: &sizing.Table{Headers: []string{"총장"}, Rows: []sizing.Row{{Name: "L", Values: []string{"71"}}}},
	})
	require.NoError(t, err)
	_, err = store.UpdateFit(ctx, "1", wardrobe.FitGood, "L")
	require.NoError(t, err)
	return store
}

func TestAdvise(t *testing.T) {
	t.Parallel()

	narrator := &stubNarrator{narrative: &ai.FitNarrative{Positive: "잘 맞아요"}}
	summarizer := &stubSummarizer{summary: &ai.ReviewSummary{Pros: []string{"탄탄한 원단"}}}

	a, err := New(Deps{
		Catalog:    &stubCatalog{product: product()},
		Wardrobe:   newWardrobe(t, true),
		Narrator:   narrator,
		Summarizer: summarizer,
	}, Config{})
	require.NoError(t, err)

	advice, err := a.Advise(context.Background(), "1001")
	require.NoError(t, err)

	assert.Equal(t, "L", advice.Recommended)
	assert.Empty(t, advice.Reason)
	assert.Len(t, advice.Scores, 3)
	assert.Equal(t, sizing.Stat{Avg: 71, Min: 71, Max: 71}, advice.Profile["총장"])
	assert.Equal(t, "잘 맞아요", advice.Narrative.Positive)
	assert.Equal(t, []string{"탄탄한 원단"}, advice.Summary.Pros)
	assert.Empty(t, advice.Errors)

	require.NotNil(t, narrator.got)
	assert.Equal(t, "L", narrator.got.RecommendedSize)
	assert.Equal(t, wardrobe.UserStats{Height: "175", Weight: "68"}, narrator.got.UserStats)
}

func TestAdviseKeepsRecommendationWhenNarrativeFails(t *testing.T) {
	t.Parallel()

	a, err := New(Deps{
		Catalog:    &stubCatalog{product: product()},
		Wardrobe:   newWardrobe(t, true),
		Narrator:   &stubNarrator{err: errors.New("quota exceeded")},
		Summarizer: &stubSummarizer{err: errors.New("down")},
	}, Config{})
	require.NoError(t, err)

	advice, err := a.Advise(context.Background(), "1001")
	require.NoError(t, err)

	assert.Equal(t, "L", advice.Recommended)
	assert.Nil(t, advice.Narrative)
	assert.Equal(t, "quota exceeded", advice.Errors[StepNarrative])
	assert.Equal(t, "down", advice.Errors[StepSummary])
	require.NotNil(t, advice.Summary)
	assert.Equal(t, []string{"원단이 탄탄하고 핏이 예뻐요."}, advice.Summary.Pros)
}

func TestAdviseNarrativeTimeout(t *testing.T) {
	t.Parallel()

	a, err := New(Deps{
		Catalog:  &stubCatalog{product: product()},
		Wardrobe: newWardrobe(t, true),
		Narrator: &stubNarrator{block: true},
	}, Config{AITimeout: 20 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	advice, err := a.Advise(context.Background(), "1001")
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "L", advice.Recommended)
	assert.Contains(t, advice.Errors[StepNarrative], context.DeadlineExceeded.Error())
}

func TestAdviseWithoutProfile(t *testing.T) {
	t.Parallel()

	narrator := &stubNarrator{narrative: &ai.FitNarrative{Text: "unused"}}
	a, err := New(Deps{
		Catalog:  &stubCatalog{product: product()},
		Wardrobe: newWardrobe(t, false),
		Narrator: narrator,
	}, Config{})
	require.NoError(t, err)

	advice, err := a.Advise(context.Background(), "1001")
	require.NoError(t, err)

	assert.Empty(t, advice.Recommended)
	assert.NotEmpty(t, advice.Reason)
	assert.Nil(t, narrator.got, "narrative needs a recommended size")
	require.NotNil(t, advice.Summary, "reviews are summarized without ai")
}

func TestAdviseFailures(t *testing.T) {
	t.Parallel()

	_, err := New(Deps{Wardrobe: newWardrobe(t, false)}, Config{})
	require.Error(t, err)

	a, err := New(Deps{
		Catalog:  &stubCatalog{err: catalog.ErrNoData},
		Wardrobe: newWardrobe(t, false),
	}, Config{})
	require.NoError(t, err)

	_, err = a.Advise(context.Background(), "1001")
	assert.ErrorIs(t, err, catalog.ErrNoData)
}
