package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/inbound"
	apperrors "github.com/recipewise/server/pkg/errors"
	"github.com/recipewise/server/test/testutils"
)

type AssistantTestSuite struct {
	suite.Suite
	text      *testutils.MockTextModel
	recipes   *testutils.MockRecipeRepository
	assistant inbound.AssistantService
	recipe    *recipe.Recipe
	ctx       context.Context
}

func (s *AssistantTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.text = new(testutils.MockTextModel)
	s.recipes = testutils.NewMockRecipeRepository()
	gateway := ai.NewGateway(s.text, nil, ai.GatewayConfig{Policy: fastPolicy()}, nil, logger)
	s.assistant = ai.NewAssistantService(gateway, s.recipes, logger)
	s.recipe = testutils.NewRecipeFactory(7).CreateItalianRecipe()
	s.ctx = context.Background()
}

func (s *AssistantTestSuite) TestSuggestSubstitutions() {
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(`[
		{"substitute": "coconut cream", "reason": "dairy-free", "ratio": "1:1"},
		{"substitute": "", "reason": "ignored"},
		{"substitute": "cashew cream", "reason": "rich", "ratio": 1}
	]`, nil).Once()

	subs, err := s.assistant.SuggestSubstitutions(s.ctx, inbound.SubstitutionQuery{
		Ingredient:          "heavy cream",
		DietaryRestrictions: []string{"vegan"},
	})

	require.NoError(s.T(), err)
	require.Len(s.T(), subs, 2)
	assert.Equal(s.T(), "coconut cream", subs[0].Substitute)
	assert.Equal(s.T(), "1", subs[1].Ratio)
}

func (s *AssistantTestSuite) TestSuggestSubstitutionsRequiresIngredient() {
	_, err := s.assistant.SuggestSubstitutions(s.ctx, inbound.SubstitutionQuery{Ingredient: "  "})

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
	s.text.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
}

func (s *AssistantTestSuite) TestSuggestSubstitutionsFailsSoft() {
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("nothing useful", nil).Once()

	subs, err := s.assistant.SuggestSubstitutions(s.ctx, inbound.SubstitutionQuery{Ingredient: "butter"})

	require.NoError(s.T(), err)
	assert.Empty(s.T(), subs)
}

func (s *AssistantTestSuite) TestExplainRecipe() {
	s.recipes.On("FindByID", mock.Anything, s.recipe.ID()).Return(s.recipe, nil)
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(`{
		"simplifiedSteps": ["Boil pasta", "Mix eggs and cheese"],
		"nutritionalHighlights": "High in protein",
		"tips": "Work off the heat"
	}`, nil).Once()

	explanation, err := s.assistant.ExplainRecipe(s.ctx, s.recipe.ID())

	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Boil pasta", "Mix eggs and cheese"}, explanation.SimplifiedSteps)
	assert.Equal(s.T(), "High in protein", explanation.NutritionalHighlights)
	assert.Equal(s.T(), []string{"Work off the heat"}, explanation.Tips)
}

func (s *AssistantTestSuite) TestExplainRecipeFallsBackToInstructions() {
	s.recipes.On("FindByID", mock.Anything, s.recipe.ID()).Return(s.recipe, nil)
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()

	explanation, err := s.assistant.ExplainRecipe(s.ctx, s.recipe.ID())

	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.recipe.Instructions(), explanation.SimplifiedSteps)
	assert.Equal(s.T(), "Nutritional information not available", explanation.NutritionalHighlights)
	assert.Empty(s.T(), explanation.Tips)
}

func (s *AssistantTestSuite) TestExplainUnknownRecipe() {
	id := uuid.New()
	s.recipes.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := s.assistant.ExplainRecipe(s.ctx, id)

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func (s *AssistantTestSuite) TestValidateDietaryWithoutRestrictions() {
	s.recipes.On("FindByID", mock.Anything, s.recipe.ID()).Return(s.recipe, nil)

	result, err := s.assistant.ValidateDietary(s.ctx, s.recipe.ID(), []string{" "})

	require.NoError(s.T(), err)
	assert.True(s.T(), result.IsValid)
	assert.Empty(s.T(), result.Warnings)
	s.text.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
}

func (s *AssistantTestSuite) TestValidateDietaryViolation() {
	s.recipes.On("FindByID", mock.Anything, s.recipe.ID()).Return(s.recipe, nil)
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(`{
		"isValid": false,
		"warnings": ["guanciale is pork"],
		"alternatives": ["smoked mushrooms"]
	}`, nil).Once()

	result, err := s.assistant.ValidateDietary(s.ctx, s.recipe.ID(), []string{"Vegetarian"})

	require.NoError(s.T(), err)
	assert.False(s.T(), result.IsValid)
	assert.Equal(s.T(), []string{"guanciale is pork"}, result.Warnings)
	assert.Equal(s.T(), []string{"smoked mushrooms"}, result.Alternatives)
}

func (s *AssistantTestSuite) TestValidateDietaryUnavailable() {
	s.recipes.On("FindByID", mock.Anything, s.recipe.ID()).Return(s.recipe, nil)
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(`{"warnings": []}`, nil).Once()

	result, err := s.assistant.ValidateDietary(s.ctx, s.recipe.ID(), []string{"vegan"})

	require.NoError(s.T(), err)
	assert.True(s.T(), result.IsValid)
	assert.Equal(s.T(), []string{"Unable to validate dietary restrictions"}, result.Warnings)
}

func TestAssistantTestSuite(t *testing.T) {
	suite.Run(t, new(AssistantTestSuite))
}
