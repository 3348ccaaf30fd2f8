package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/infrastructure/http/middleware"
	"github.com/recipewise/server/internal/ports/inbound"
)

// RecipeHandlers handles recipe search and catalog requests
type RecipeHandlers struct {
	base
	retrieval inbound.RetrievalService
	catalog   inbound.CatalogService
}

// NewRecipeHandlers creates a new recipe handlers instance
func NewRecipeHandlers(
	retrieval inbound.RetrievalService,
	catalog inbound.CatalogService,
	validate *validator.Validate,
	logger *zap.Logger,
) *RecipeHandlers {
	return &RecipeHandlers{
		base:      base{validate: validate, logger: logger.Named("recipe-handlers")},
		retrieval: retrieval,
		catalog:   catalog,
	}
}

// SearchRequest is the body of a free-text recipe search
type SearchRequest struct {
	Query string `json:"query" validate:"required,min=1,max=500"`
}

// Search handles POST /api/v1/recipes/search
func (h *RecipeHandlers) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	cmd := inbound.SearchCommand{Text: req.Query}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		cmd.UserID = &userID
	}

	result, err := h.retrieval.Search(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, result, "")
}

// ListRecipes handles GET /api/v1/recipes
func (h *RecipeHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListRecipes(r.Context(), pagination(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, list, "")
}

// GetRecipe handles GET /api/v1/recipes/{id}
func (h *RecipeHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.catalog.GetRecipe(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, dto, "")
}

// IngredientRequest is one ingredient line of a recipe body
type IngredientRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Quantity string `json:"quantity" validate:"max=50"`
	Unit     string `json:"unit" validate:"max=30"`
}

// RecipeRequest is the body of a recipe create or update
type RecipeRequest struct {
	Title        string              `json:"title" validate:"required,min=3,max=200"`
	Description  string              `json:"description" validate:"max=2000"`
	Ingredients  []IngredientRequest `json:"ingredients" validate:"required,min=1,max=100,dive"`
	Instructions []string            `json:"instructions" validate:"required,min=1,max=100,dive,required"`
	CookingTime  int                 `json:"cookingTime" validate:"required,min=1,max=1440"`
	Servings     int                 `json:"servings" validate:"required,min=1,max=100"`
	Difficulty   string              `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Cuisine      string              `json:"cuisine" validate:"max=50"`
	DietaryTags  []string            `json:"dietaryTags" validate:"max=20,dive,max=30"`
	ImageURL     string              `json:"imageUrl" validate:"omitempty,url"`
}

func (req RecipeRequest) input() inbound.RecipeInput {
	ingredients := make([]recipe.Ingredient, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		ingredients[i] = recipe.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}

	return inbound.RecipeInput{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  ingredients,
		Instructions: req.Instructions,
		CookingTime:  req.CookingTime,
		Servings:     req.Servings,
		Difficulty:   req.Difficulty,
		Cuisine:      req.Cuisine,
		DietaryTags:  req.DietaryTags,
		ImageURL:     req.ImageURL,
	}
}

// SavedState is returned by the saved-recipe toggle
type SavedState struct {
	IsSaved bool `json:"isSaved"`
}

// SavedRecipes is the caller's saved collection
type SavedRecipes struct {
	Count   int                  `json:"count"`
	Recipes []*inbound.RecipeDTO `json:"recipes"`
}

// CreateRecipe handles POST /api/v1/recipes
func (h *RecipeHandlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req RecipeRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.catalog.CreateRecipe(r.Context(), inbound.CreateRecipeCommand{UserID: userID, Recipe: req.input()})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusCreated, dto, "Recipe created successfully")
}

// UpdateRecipe handles PUT /api/v1/recipes/{id}
func (h *RecipeHandlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req RecipeRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, err := h.catalog.UpdateRecipe(r.Context(), inbound.UpdateRecipeCommand{
		UserID:   userID,
		RecipeID: id,
		Recipe:   req.input(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, dto, "Recipe updated successfully")
}

// DeleteRecipe handles DELETE /api/v1/recipes/{id}
func (h *RecipeHandlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.catalog.DeleteRecipe(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, nil, "Recipe deleted successfully")
}

// ToggleSaved handles POST /api/v1/recipes/toggle-save/{id}
func (h *RecipeHandlers) ToggleSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	saved, err := h.catalog.ToggleSavedRecipe(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	message := "Recipe removed from saved collection"
	if saved {
		message = "Recipe saved to collection"
	}
	h.writeData(w, http.StatusOK, SavedState{IsSaved: saved}, message)
}

// ListSaved handles GET /api/v1/recipes/collection/saved
func (h *RecipeHandlers) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	recipes, err := h.catalog.ListSavedRecipes(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, SavedRecipes{Count: len(recipes), Recipes: recipes}, "")
}
