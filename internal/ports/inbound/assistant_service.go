package inbound

import (
	"context"

	"github.com/google/uuid"
)

// AssistantService provides cooking help backed by the language model.
// Every operation degrades to a safe default instead of failing on model errors.
type AssistantService interface {
	SuggestSubstitutions(ctx context.Context, query SubstitutionQuery) ([]Substitution, error)
	ExplainRecipe(ctx context.Context, recipeID uuid.UUID) (*RecipeExplanation, error)
	ValidateDietary(ctx context.Context, recipeID uuid.UUID, restrictions []string) (*DietaryValidation, error)
}

// SubstitutionQuery describes the ingredient to replace
type SubstitutionQuery struct {
	Ingredient          string
	DietaryRestrictions []string
	RecipeTitle         string
}

// Substitution is one replacement suggestion
type Substitution struct {
	Substitute string `json:"substitute"`
	Reason     string `json:"reason"`
	Ratio      string `json:"ratio"`
}

// RecipeExplanation is a beginner-friendly rendition of a recipe
type RecipeExplanation struct {
	SimplifiedSteps       []string `json:"simplifiedSteps"`
	NutritionalHighlights string   `json:"nutritionalHighlights"`
	Tips                  []string `json:"tips"`
}

// DietaryValidation reports whether a recipe fits the given restrictions
type DietaryValidation struct {
	IsValid      bool     `json:"isValid"`
	Warnings     []string `json:"warnings"`
	Alternatives []string `json:"alternatives"`
}
