package recipe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apprecipe "github.com/recipewise/server/internal/application/recipe"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/outbound"
	apperrors "github.com/recipewise/server/pkg/errors"
	"github.com/recipewise/server/test/testutils"
)

func TestFilterFor(t *testing.T) {
	t.Run("ingredients switch to full-text", func(t *testing.T) {
		query := recipe.StructuredQuery{
			Ingredients:         []string{"Chicken", "garlic"},
			DietaryRestrictions: []string{"Gluten-Free"},
			Cuisine:             "Italian",
			CookingTime:         30,
			Difficulty:          "easy",
		}

		filter := apprecipe.FilterFor(query, "garlic chicken", 20)

		assert.Equal(t, []string{"chicken", "garlic"}, filter.Ingredients)
		assert.Empty(t, filter.Text)
		assert.Equal(t, "italian", filter.Cuisine)
		assert.Equal(t, "easy", filter.Difficulty)
		assert.Equal(t, []string{"gluten-free"}, filter.DietaryTags)
		assert.Equal(t, 30, filter.MaxCookingTime)
		assert.Equal(t, 20, filter.Limit)
	})

	t.Run("no ingredients uses raw text", func(t *testing.T) {
		filter := apprecipe.FilterFor(recipe.EmptyQuery(), "  Weeknight Soup ", 20)

		assert.Empty(t, filter.Ingredients)
		assert.Equal(t, "Weeknight Soup", filter.Text)
		assert.Empty(t, filter.Cuisine)
		assert.Zero(t, filter.MaxCookingTime)
	})
}

func TestCatalogSearch(t *testing.T) {
	ctx := context.Background()
	factory := testutils.NewRecipeFactory(42)

	t.Run("caps results", func(t *testing.T) {
		repo := testutils.NewMockRecipeRepository()
		repo.On("Search", mock.Anything, mock.MatchedBy(func(f outbound.RecipeFilter) bool {
			return f.Limit == 2
		})).Return(factory.CreateRecipes(5), nil).Once()

		search := apprecipe.NewCatalogSearch(repo, 2, zaptest.NewLogger(t))
		results, err := search.Search(ctx, recipe.EmptyQuery(), "soup")

		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("store failure is a store error", func(t *testing.T) {
		repo := testutils.NewMockRecipeRepository()
		repo.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

		search := apprecipe.NewCatalogSearch(repo, 0, zaptest.NewLogger(t))
		_, err := search.Search(ctx, recipe.EmptyQuery(), "soup")

		assert.True(t, apperrors.Is(err, apperrors.CodeStoreError))
	})

	t.Run("identical filter returns same set", func(t *testing.T) {
		repo := testutils.NewMockRecipeRepository()
		stored := factory.CreateRecipes(3)
		repo.On("Search", mock.Anything, mock.Anything).Return(stored, nil).Twice()

		search := apprecipe.NewCatalogSearch(repo, 20, zaptest.NewLogger(t))
		query := recipe.StructuredQuery{Ingredients: []string{"spaghetti"}}
		first, err := search.Search(ctx, query, "spaghetti")
		require.NoError(t, err)
		second, err := search.Search(ctx, query, "spaghetti")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		filter := repo.Calls[0].Arguments.Get(1).(outbound.RecipeFilter)
		assert.Equal(t, filter, repo.Calls[1].Arguments.Get(1).(outbound.RecipeFilter))
	})
}
