// Package recipe implements recipe retrieval: catalog search, on-demand
// synthesis when the catalog falls short, and read access to stored recipes.
package recipe

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

// DefaultMaxCatalogResults caps a catalog search
const DefaultMaxCatalogResults = 20

// CatalogSearch runs deterministic searches over stored recipes
type CatalogSearch struct {
	recipes outbound.RecipeRepository
	limit   int
	logger  *zap.Logger
}

// NewCatalogSearch creates a catalog search returning at most limit recipes
func NewCatalogSearch(recipes outbound.RecipeRepository, limit int, logger *zap.Logger) *CatalogSearch {
	if limit <= 0 {
		limit = DefaultMaxCatalogResults
	}
	return &CatalogSearch{
		recipes: recipes,
		limit:   limit,
		logger:  logger.Named("catalog-search"),
	}
}

// Search returns stored recipes matching query. Ingredient terms switch the
// search to full-text matching over ingredient names; otherwise rawText is
// matched against title and description.
func (s *CatalogSearch) Search(ctx context.Context, query recipe.StructuredQuery, rawText string) ([]*recipe.Recipe, error) {
	filter := FilterFor(query, rawText, s.limit)

	results, err := s.recipes.Search(ctx, filter)
	if err != nil {
		return nil, errors.NewStoreError("search recipes", err)
	}
	if len(results) > s.limit {
		results = results[:s.limit]
	}

	s.logger.Debug("Catalog search completed",
		zap.Int("results", len(results)),
		zap.Strings("ingredients", filter.Ingredients),
		zap.String("cuisine", filter.Cuisine),
	)
	return results, nil
}

// FilterFor translates a structured query into a repository filter
func FilterFor(query recipe.StructuredQuery, rawText string, limit int) outbound.RecipeFilter {
	query = query.Normalize()

	filter := outbound.RecipeFilter{
		Cuisine:        query.Cuisine,
		Difficulty:     query.Difficulty,
		DietaryTags:    query.DietaryRestrictions,
		MaxCookingTime: query.CookingTime,
		Limit:          limit,
	}
	if len(query.Ingredients) > 0 {
		filter.Ingredients = query.Ingredients
	} else {
		filter.Text = strings.TrimSpace(rawText)
	}
	return filter
}
