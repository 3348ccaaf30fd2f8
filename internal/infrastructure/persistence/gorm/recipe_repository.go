// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/outbound"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	return r.db.WithContext(ctx).Create(RecipeToModel(rec)).Error
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model), nil
}

// FindByIDs finds recipes by multiple IDs
func (r *RecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return []*recipe.Recipe{}, nil
	}

	var models []RecipeModel
	result := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return toRecipes(models), nil
}

// Search applies the filter, newest first
func (r *RecipeRepository) Search(ctx context.Context, filter outbound.RecipeFilter) ([]*recipe.Recipe, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{})

	if terms := ingredientTerms(filter.Ingredients); len(terms) > 0 {
		query = r.matchIngredients(query, terms)
	} else if text := strings.ToLower(strings.TrimSpace(filter.Text)); text != "" {
		searchTerm := "%" + likeEscape(text) + "%"
		query = query.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')",
			searchTerm, searchTerm,
		)
	}

	if filter.Cuisine != "" {
		query = query.Where("cuisine = ?", strings.ToLower(filter.Cuisine))
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", strings.ToLower(filter.Difficulty))
	}
	for _, pattern := range tagPatterns(filter.DietaryTags) {
		query = query.Where("dietary_index LIKE ? ESCAPE '\\'", pattern)
	}
	if patterns := tagPatterns(filter.AnyDietaryTags); len(patterns) > 0 {
		clauses := make([]string, len(patterns))
		args := make([]interface{}, len(patterns))
		for i, pattern := range patterns {
			clauses[i] = "dietary_index LIKE ? ESCAPE '\\'"
			args[i] = pattern
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if filter.MaxCookingTime > 0 {
		query = query.Where("cooking_time <= ?", filter.MaxCookingTime)
	}

	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var models []RecipeModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}

	return toRecipes(models), nil
}

// List returns recipes newest first with the total count
func (r *RecipeRepository) List(ctx context.Context, offset, limit int) ([]*recipe.Recipe, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RecipeModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []RecipeModel
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return toRecipes(models), total, nil
}

// Update saves the editable fields of an existing recipe
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":            model.Title,
			"description":      model.Description,
			"ingredients":      model.Ingredients,
			"instructions":     model.Instructions,
			"ingredient_index": model.IngredientIndex,
			"cooking_time":     model.CookingTime,
			"servings":         model.Servings,
			"difficulty":       model.Difficulty,
			"cuisine":          model.Cuisine,
			"dietary_tags":     model.DietaryTags,
			"dietary_index":    model.DietaryIndex,
			"image_url":        model.ImageURL,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipe.ErrRecipeNotFound
	}
	return nil
}

// Delete removes a recipe together with its saved-recipe rows
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&SavedRecipeModel{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&RecipeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}
		return nil
	})
}

// matchIngredients uses the full-text index on postgres and LIKE elsewhere
func (r *RecipeRepository) matchIngredients(query *gorm.DB, terms []string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return query.Where("to_tsvector('english', ingredient_index) @@ to_tsquery('english', ?)", TSQuery(terms))
	}

	clauses := make([]string, len(terms))
	args := make([]interface{}, len(terms))
	for i, term := range terms {
		clauses[i] = "ingredient_index LIKE ?"
		args[i] = "%" + term + "%"
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// TSQuery renders terms as an OR query; multi-word terms require every word
func TSQuery(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		words := strings.Fields(term)
		if len(words) == 1 {
			parts = append(parts, words[0])
			continue
		}
		parts = append(parts, "("+strings.Join(words, " & ")+")")
	}
	return strings.Join(parts, " | ")
}

// ingredientTerms lowercases terms and strips characters tsquery treats as operators
func ingredientTerms(values []string) []string {
	terms := make([]string, 0, len(values))
	for _, v := range values {
		cleaned := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return ' '
		}, v)
		if cleaned = strings.Join(strings.Fields(cleaned), " "); cleaned != "" {
			terms = append(terms, cleaned)
		}
	}
	return terms
}

// likeEscape quotes the LIKE wildcards so user text matches literally
func likeEscape(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// tagPatterns turns dietary tags into patterns for the comma-delimited index
func tagPatterns(tags []string) []string {
	patterns := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			patterns = append(patterns, "%,"+likeEscape(tag)+",%")
		}
	}
	return patterns
}

func toRecipes(models []RecipeModel) []*recipe.Recipe {
	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		recipes[i] = ModelToRecipe(&models[i])
	}
	return recipes
}
