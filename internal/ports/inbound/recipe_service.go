// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recipewise/server/internal/domain/recipe"
)

// RetrievalService answers free-text recipe requests from the catalog,
// synthesizing recipes when too few match.
type RetrievalService interface {
	Search(ctx context.Context, cmd SearchCommand) (*SearchResult, error)
}

// CatalogService exposes stored recipes, the creator's edits and the
// per-user saved collection
type CatalogService interface {
	GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
	ListRecipes(ctx context.Context, params PaginationParams) (*RecipeList, error)

	CreateRecipe(ctx context.Context, cmd CreateRecipeCommand) (*RecipeDTO, error)
	// UpdateRecipe and DeleteRecipe are limited to the recipe's creator.
	UpdateRecipe(ctx context.Context, cmd UpdateRecipeCommand) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error

	// ToggleSavedRecipe reports whether the recipe is saved after the call.
	ToggleSavedRecipe(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
	ListSavedRecipes(ctx context.Context, userID uuid.UUID) ([]*RecipeDTO, error)
}

// RecipeInput holds the editable fields of a user recipe
type RecipeInput struct {
	Title        string
	Description  string
	Ingredients  []recipe.Ingredient
	Instructions []string
	CookingTime  int
	Servings     int
	Difficulty   string
	Cuisine      string
	DietaryTags  []string
	ImageURL     string
}

// CreateRecipeCommand stores a recipe written by UserID
type CreateRecipeCommand struct {
	UserID uuid.UUID
	Recipe RecipeInput
}

// UpdateRecipeCommand replaces the editable fields of RecipeID
type UpdateRecipeCommand struct {
	UserID   uuid.UUID
	RecipeID uuid.UUID
	Recipe   RecipeInput
}

// SearchCommand contains a free-text request. UserID is optional.
type SearchCommand struct {
	Text   string
	UserID *uuid.UUID
}

// SearchResult is the answer to a retrieval request
type SearchResult struct {
	Recipes          []*RecipeDTO           `json:"recipes"`
	CatalogCount     int                    `json:"catalogCount"`
	GeneratedCount   int                    `json:"generatedCount"`
	InterpretedQuery recipe.StructuredQuery `json:"interpretedQuery"`
	Count            int                    `json:"count"`
}

// PaginationParams for paginated queries
type PaginationParams struct {
	Page  int
	Limit int
}

// RecipeDTO is the data transfer object for recipes
type RecipeDTO struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Ingredients   []recipe.Ingredient `json:"ingredients"`
	Instructions  []string            `json:"instructions"`
	CookingTime   int                 `json:"cookingTime"`
	Servings      int                 `json:"servings"`
	Difficulty    string              `json:"difficulty"`
	Cuisine       string              `json:"cuisine"`
	DietaryTags   []string            `json:"dietaryTags"`
	ImageURL      string              `json:"imageUrl"`
	Source        string              `json:"source"`
	IsAIGenerated bool                `json:"isAIGenerated"`
	CreatorID     uuid.UUID           `json:"creatorId"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// RecipeList represents a paginated list of recipes
type RecipeList struct {
	Recipes    []*RecipeDTO `json:"recipes"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
}

// NewRecipeDTO converts a domain recipe to its transfer form
func NewRecipeDTO(r *recipe.Recipe) *RecipeDTO {
	tags := make([]string, 0, len(r.DietaryTags()))
	for _, t := range r.DietaryTags() {
		tags = append(tags, string(t))
	}

	return &RecipeDTO{
		ID:            r.ID(),
		Title:         r.Title(),
		Description:   r.Description(),
		Ingredients:   r.Ingredients(),
		Instructions:  r.Instructions(),
		CookingTime:   r.CookingTime(),
		Servings:      r.Servings(),
		Difficulty:    string(r.Difficulty()),
		Cuisine:       string(r.Cuisine()),
		DietaryTags:   tags,
		ImageURL:      r.ImageURL(),
		Source:        string(r.Source()),
		IsAIGenerated: r.IsAIGenerated(),
		CreatorID:     r.CreatorID(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
}

// NewRecipeDTOs converts a slice of domain recipes
func NewRecipeDTOs(recipes []*recipe.Recipe) []*RecipeDTO {
	dtos := make([]*RecipeDTO, 0, len(recipes))
	for _, r := range recipes {
		dtos = append(dtos, NewRecipeDTO(r))
	}
	return dtos
}
