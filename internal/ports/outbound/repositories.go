// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
)

// RecipeRepository defines the interface for recipe persistence
type RecipeRepository interface {
	Create(ctx context.Context, recipe *recipe.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error)

	// Search applies the filter and returns at most filter.Limit recipes, newest first.
	Search(ctx context.Context, filter RecipeFilter) ([]*recipe.Recipe, error)
	List(ctx context.Context, offset, limit int) ([]*recipe.Recipe, int64, error)
	Update(ctx context.Context, recipe *recipe.Recipe) error
	// Delete removes the recipe and every saved reference to it.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SavedRecipeRepository stores the recipes a user bookmarked
type SavedRecipeRepository interface {
	// Toggle saves the recipe for the profile, or removes it when already saved.
	// It reports whether the recipe is saved afterwards.
	Toggle(ctx context.Context, profileID, recipeID uuid.UUID) (bool, error)
	// ListRecipes returns the saved recipes, most recently saved first.
	ListRecipes(ctx context.Context, profileID uuid.UUID) ([]*recipe.Recipe, error)
}

// RecipeFilter defines search parameters for recipes.
// Empty fields do not constrain the result.
type RecipeFilter struct {
	Cuisine        string
	Difficulty     string
	DietaryTags    []string // all must be present
	AnyDietaryTags []string // at least one must be present
	MaxCookingTime int
	// Ingredients switches the search to full-text matching over ingredient names.
	Ingredients []string
	// Text is matched case-insensitively against title or description
	// when Ingredients is empty.
	Text   string
	Offset int
	Limit  int
}

// MealPlanRepository defines the interface for meal plan persistence
type MealPlanRepository interface {
	Create(ctx context.Context, plan *mealplan.MealPlan) error
	Update(ctx context.Context, plan *mealplan.MealPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error)
	// FindLatestManual returns the newest plan not flagged as generated, or nil.
	FindLatestManual(ctx context.Context, ownerID uuid.UUID) (*mealplan.MealPlan, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*mealplan.MealPlan, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository reads user profiles owned by the account service
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.Profile, error)
	FindByEmail(ctx context.Context, email string) (*user.Profile, error)
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
