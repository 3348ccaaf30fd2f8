package imaging_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/application/imaging"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/test/testutils"
)

type tierOutcome struct {
	tier, outcome string
}

type recordingMetrics struct {
	outbound.NopMetrics
	outcomes []tierOutcome
}

func (m *recordingMetrics) ImageTierOutcome(tier, outcome string) {
	m.outcomes = append(m.outcomes, tierOutcome{tier, outcome})
}

type panickingTier struct{}

func (panickingTier) Name() string { return "broken" }

func (panickingTier) Resolve(context.Context, string) (string, error) {
	panic("nil map write")
}

func TestResolverCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("first hit wins", func(t *testing.T) {
		first := &testutils.MockImageTier{TierName: "generative"}
		second := &testutils.MockImageTier{TierName: "custom-search"}
		first.On("Resolve", mock.Anything, "Pad Thai").Return("data:image/png;base64,AAAA", nil).Once()

		resolver := imaging.NewResolver([]outbound.ImageTier{first, second}, nil, zaptest.NewLogger(t))
		ref, ok := resolver.Resolve(ctx, "Pad Thai")

		assert.True(t, ok)
		assert.Equal(t, "data:image/png;base64,AAAA", ref)
		second.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})

	t.Run("falls through empty and failing tiers", func(t *testing.T) {
		generative := &testutils.MockImageTier{TierName: "generative"}
		search := &testutils.MockImageTier{TierName: "custom-search"}
		scraper := &testutils.MockImageTier{TierName: "scraper"}
		generative.On("Resolve", mock.Anything, "Ramen").Return("", nil).Once()
		search.On("Resolve", mock.Anything, "Ramen").Return("", errors.New("quota exceeded")).Once()
		scraper.On("Resolve", mock.Anything, "Ramen").Return("https://encrypted-tbn0.gstatic.com/images?q=tbn:1", nil).Once()

		metrics := &recordingMetrics{}
		resolver := imaging.NewResolver([]outbound.ImageTier{generative, search, scraper}, metrics, zaptest.NewLogger(t))
		ref, ok := resolver.Resolve(ctx, "Ramen")

		require.True(t, ok)
		assert.True(t, strings.HasPrefix(ref, "https://encrypted-tbn0.gstatic.com/"))
		assert.Equal(t, []tierOutcome{
			{"generative", imaging.OutcomeEmpty},
			{"custom-search", imaging.OutcomeError},
			{"scraper", imaging.OutcomeHit},
		}, metrics.outcomes)
	})

	t.Run("panicking tier is contained", func(t *testing.T) {
		next := &testutils.MockImageTier{TierName: "scraper"}
		next.On("Resolve", mock.Anything, "Tacos").Return("https://example.com/tacos.jpg", nil).Once()

		metrics := &recordingMetrics{}
		resolver := imaging.NewResolver([]outbound.ImageTier{panickingTier{}, next}, metrics, zaptest.NewLogger(t))

		var ref string
		var ok bool
		require.NotPanics(t, func() { ref, ok = resolver.Resolve(ctx, "Tacos") })
		assert.True(t, ok)
		assert.Equal(t, "https://example.com/tacos.jpg", ref)
		assert.Equal(t, imaging.OutcomePanic, metrics.outcomes[0].outcome)
	})

	t.Run("all tiers empty yields nothing", func(t *testing.T) {
		generative := &testutils.MockImageTier{TierName: "generative"}
		scraper := &testutils.MockImageTier{TierName: "scraper"}
		generative.On("Resolve", mock.Anything, mock.Anything).Return("", nil).Once()
		scraper.On("Resolve", mock.Anything, mock.Anything).Return("", nil).Once()

		resolver := imaging.NewResolver([]outbound.ImageTier{generative, scraper}, nil, zaptest.NewLogger(t))
		ref, ok := resolver.Resolve(ctx, "Soup")

		assert.False(t, ok)
		assert.Empty(t, ref)
		scraper.AssertExpectations(t)
	})

	t.Run("no tiers", func(t *testing.T) {
		resolver := imaging.NewResolver(nil, nil, zaptest.NewLogger(t))
		_, ok := resolver.Resolve(ctx, "Soup")
		assert.False(t, ok)
	})
}
