package gorm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/outbound"
)

// SavedRecipeRepository implements the saved recipe repository interface using GORM
type SavedRecipeRepository struct {
	db *gorm.DB
}

// NewSavedRecipeRepository creates a new saved recipe repository
func NewSavedRecipeRepository(db *gorm.DB) outbound.SavedRecipeRepository {
	return &SavedRecipeRepository{db: db}
}

// Toggle flips the saved state of a recipe for a profile
func (r *SavedRecipeRepository) Toggle(ctx context.Context, profileID, recipeID uuid.UUID) (bool, error) {
	saved := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("profile_id = ? AND recipe_id = ?", profileID, recipeID).Delete(&SavedRecipeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		saved = true
		return tx.Create(&SavedRecipeModel{
			ProfileID: profileID,
			RecipeID:  recipeID,
			CreatedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

// ListRecipes returns the profile's saved recipes, most recently saved first
func (r *SavedRecipeRepository) ListRecipes(ctx context.Context, profileID uuid.UUID) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Select("recipes.*").
		Joins("JOIN saved_recipes ON saved_recipes.recipe_id = recipes.id").
		Where("saved_recipes.profile_id = ?", profileID).
		Order("saved_recipes.created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return toRecipes(models), nil
}
