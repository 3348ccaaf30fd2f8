package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/ports/inbound"
)

// AssistantHandlers handles cooking assistant requests
type AssistantHandlers struct {
	base
	assistant inbound.AssistantService
}

// NewAssistantHandlers creates a new assistant handlers instance
func NewAssistantHandlers(assistant inbound.AssistantService, validate *validator.Validate, logger *zap.Logger) *AssistantHandlers {
	return &AssistantHandlers{
		base:      base{validate: validate, logger: logger.Named("assistant-handlers")},
		assistant: assistant,
	}
}

// SubstituteRequest asks for replacements of one ingredient
type SubstituteRequest struct {
	Ingredient          string   `json:"ingredient" validate:"required,max=200"`
	DietaryRestrictions []string `json:"dietaryRestrictions" validate:"max=20"`
	RecipeTitle         string   `json:"recipeTitle" validate:"max=255"`
}

// ExplainRequest names the recipe to explain
type ExplainRequest struct {
	RecipeID string `json:"recipeId" validate:"required,uuid"`
}

// ValidateRequest names the recipe and the restrictions to check
type ValidateRequest struct {
	RecipeID            string   `json:"recipeId" validate:"required,uuid"`
	DietaryRestrictions []string `json:"dietaryRestrictions" validate:"max=20"`
}

// Substitute handles POST /api/v1/ai/substitute
func (h *AssistantHandlers) Substitute(w http.ResponseWriter, r *http.Request) {
	var req SubstituteRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	subs, err := h.assistant.SuggestSubstitutions(r.Context(), inbound.SubstitutionQuery{
		Ingredient:          req.Ingredient,
		DietaryRestrictions: req.DietaryRestrictions,
		RecipeTitle:         req.RecipeTitle,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"ingredient":    req.Ingredient,
		"substitutions": subs,
	}, "")
}

// Explain handles POST /api/v1/ai/explain
func (h *AssistantHandlers) Explain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	explanation, err := h.assistant.ExplainRecipe(r.Context(), uuid.MustParse(req.RecipeID))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, explanation, "")
}

// Validate handles POST /api/v1/ai/validate
func (h *AssistantHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	verdict, err := h.assistant.ValidateDietary(r.Context(), uuid.MustParse(req.RecipeID), req.DietaryRestrictions)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, verdict, "")
}
