package ai

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

const (
	nutritionUnavailable  = "Nutritional information not available"
	validationUnavailable = "Unable to validate dietary restrictions"
)

// AssistantService implements inbound.AssistantService
type AssistantService struct {
	llm     Invoker
	recipes outbound.RecipeRepository
	logger  *zap.Logger
}

// NewAssistantService creates the cooking assistant
func NewAssistantService(llm Invoker, recipes outbound.RecipeRepository, logger *zap.Logger) inbound.AssistantService {
	return &AssistantService{
		llm:     llm,
		recipes: recipes,
		logger:  logger.Named("assistant-service"),
	}
}

type substitutionItem struct {
	Substitute FlexString `json:"substitute"`
	Reason     FlexString `json:"reason"`
	Ratio      FlexString `json:"ratio"`
}

// SuggestSubstitutions returns replacement ideas, or an empty list when the model fails.
func (s *AssistantService) SuggestSubstitutions(ctx context.Context, query inbound.SubstitutionQuery) ([]inbound.Substitution, error) {
	ingredient := strings.TrimSpace(query.Ingredient)
	if ingredient == "" {
		return nil, errors.NewValidationError("ingredient is required")
	}

	var items []substitutionItem
	prompt := BuildSubstitutionPrompt(ingredient, query.DietaryRestrictions, strings.TrimSpace(query.RecipeTitle))
	if err := s.llm.InvokeArray(ctx, prompt, &items); err != nil {
		s.logger.Warn("Substitution suggestion failed", zap.String("ingredient", ingredient), zap.Error(err))
		return []inbound.Substitution{}, nil
	}

	out := make([]inbound.Substitution, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(string(item.Substitute)) == "" {
			continue
		}
		out = append(out, inbound.Substitution{
			Substitute: strings.TrimSpace(string(item.Substitute)),
			Reason:     string(item.Reason),
			Ratio:      string(item.Ratio),
		})
	}
	return out, nil
}

type explanation struct {
	SimplifiedSteps       FlexStrings `json:"simplifiedSteps"`
	NutritionalHighlights FlexString  `json:"nutritionalHighlights"`
	Tips                  FlexStrings `json:"tips"`
}

// ExplainRecipe simplifies a stored recipe. Model failures fall back to the original steps.
func (s *AssistantService) ExplainRecipe(ctx context.Context, recipeID uuid.UUID) (*inbound.RecipeExplanation, error) {
	rec, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	fallback := &inbound.RecipeExplanation{
		SimplifiedSteps:       rec.Instructions(),
		NutritionalHighlights: nutritionUnavailable,
		Tips:                  []string{},
	}

	var out explanation
	if err := s.llm.InvokeObject(ctx, BuildExplainPrompt(rec), &out); err != nil {
		s.logger.Warn("Recipe explanation failed", zap.String("recipe_id", recipeID.String()), zap.Error(err))
		return fallback, nil
	}
	if len(out.SimplifiedSteps) == 0 {
		return fallback, nil
	}

	result := &inbound.RecipeExplanation{
		SimplifiedSteps:       out.SimplifiedSteps,
		NutritionalHighlights: string(out.NutritionalHighlights),
		Tips:                  out.Tips,
	}
	if result.NutritionalHighlights == "" {
		result.NutritionalHighlights = nutritionUnavailable
	}
	if result.Tips == nil {
		result.Tips = []string{}
	}
	return result, nil
}

type dietaryVerdict struct {
	IsValid      *bool       `json:"isValid"`
	Warnings     FlexStrings `json:"warnings"`
	Alternatives FlexStrings `json:"alternatives"`
}

// ValidateDietary checks a recipe against restrictions. No restrictions means valid without a model call.
func (s *AssistantService) ValidateDietary(ctx context.Context, recipeID uuid.UUID, restrictions []string) (*inbound.DietaryValidation, error) {
	rec, err := s.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(restrictions))
	for _, r := range restrictions {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		return &inbound.DietaryValidation{IsValid: true, Warnings: []string{}, Alternatives: []string{}}, nil
	}

	unavailable := &inbound.DietaryValidation{
		IsValid:      true,
		Warnings:     []string{validationUnavailable},
		Alternatives: []string{},
	}

	var verdict dietaryVerdict
	if err := s.llm.InvokeObject(ctx, BuildDietaryValidationPrompt(rec, cleaned), &verdict); err != nil {
		s.logger.Warn("Dietary validation failed", zap.String("recipe_id", recipeID.String()), zap.Error(err))
		return unavailable, nil
	}
	if verdict.IsValid == nil {
		return unavailable, nil
	}

	result := &inbound.DietaryValidation{
		IsValid:      *verdict.IsValid,
		Warnings:     verdict.Warnings,
		Alternatives: verdict.Alternatives,
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	if result.Alternatives == nil {
		result.Alternatives = []string{}
	}
	return result, nil
}

func (s *AssistantService) loadRecipe(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(id.String())
		}
		return nil, errors.NewStoreError("load recipe", err)
	}
	return rec, nil
}
