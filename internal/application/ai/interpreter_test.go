package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/test/testutils"
)

type InterpreterTestSuite struct {
	suite.Suite
	text        *testutils.MockTextModel
	cache       *testutils.MockCacheRepository
	interpreter *ai.Interpreter
	ctx         context.Context
}

func (s *InterpreterTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.text = new(testutils.MockTextModel)
	s.cache = new(testutils.MockCacheRepository)
	gateway := ai.NewGateway(s.text, nil, ai.GatewayConfig{Policy: fastPolicy()}, nil, logger)
	s.interpreter = ai.NewInterpreter(gateway, nil, ai.InterpreterConfig{}, nil, logger)
	s.ctx = context.Background()
}

func (s *InterpreterTestSuite) TestInterpretNormalizesModelOutput() {
	// Arrange
	s.text.On("GenerateText", mock.Anything, mock.AnythingOfType("string")).Return("```json\n"+`{
		"ingredients": ["Chicken", " Garlic ", "chicken"],
		"mealType": "Dinner",
		"dietaryRestrictions": "Gluten-Free",
		"cuisine": "null",
		"cookingTime": "30 minutes",
		"difficulty": null
	}`+"\n```", nil).Once()

	// Act
	query := s.interpreter.Interpret(s.ctx, "quick chicken dinner, gluten free")

	// Assert
	assert.Equal(s.T(), []string{"chicken", "garlic"}, query.Ingredients)
	assert.Equal(s.T(), "dinner", query.MealType)
	assert.Equal(s.T(), []string{"gluten-free"}, query.DietaryRestrictions)
	assert.Empty(s.T(), query.Cuisine)
	assert.Equal(s.T(), 30, query.CookingTime)
	assert.Empty(s.T(), query.Difficulty)
}

func (s *InterpreterTestSuite) TestInterpretFailsOpenOnGatewayError() {
	busy := &outbound.ModelError{Provider: "mock", StatusCode: http.StatusServiceUnavailable, Err: errors.New("overloaded")}
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", busy)

	query := s.interpreter.Interpret(s.ctx, "anything")

	assert.True(s.T(), query.IsEmpty())
	assert.Equal(s.T(), recipe.EmptyQuery(), query)
	s.text.AssertNumberOfCalls(s.T(), "GenerateText", 3)
}

func (s *InterpreterTestSuite) TestInterpretRetriesRateLimits() {
	limited := &outbound.ModelError{Provider: "mock", StatusCode: http.StatusTooManyRequests, Err: errors.New("quota")}
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", limited).Twice()
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(`{"ingredients": ["tofu"], "cuisine": "thai"}`, nil).Once()

	query := s.interpreter.Interpret(s.ctx, "tofu thai")

	assert.Equal(s.T(), []string{"tofu"}, query.Ingredients)
	assert.Equal(s.T(), "thai", query.Cuisine)
	s.text.AssertNumberOfCalls(s.T(), "GenerateText", 3)
}

func (s *InterpreterTestSuite) TestInterpretFailsOpenOnMalformedReply() {
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("no idea", nil).Once()

	query := s.interpreter.Interpret(s.ctx, "anything")

	assert.True(s.T(), query.IsEmpty())
}

func (s *InterpreterTestSuite) TestInterpretUsesCache() {
	logger := zaptest.NewLogger(s.T())
	gateway := ai.NewGateway(s.text, nil, ai.GatewayConfig{Policy: fastPolicy()}, nil, logger)
	interpreter := ai.NewInterpreter(gateway, s.cache, ai.InterpreterConfig{EnableCache: true, CacheTTL: time.Hour}, nil, logger)

	cached, err := json.Marshal(recipe.StructuredQuery{Ingredients: []string{"tofu"}, Cuisine: "thai"})
	require.NoError(s.T(), err)
	s.cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(cached, nil).Once()

	query := interpreter.Interpret(s.ctx, "  Tofu Thai  ")

	assert.Equal(s.T(), []string{"tofu"}, query.Ingredients)
	assert.Equal(s.T(), "thai", query.Cuisine)
	s.text.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
}

func (s *InterpreterTestSuite) TestInterpretStoresResultOnMiss() {
	logger := zaptest.NewLogger(s.T())
	gateway := ai.NewGateway(s.text, nil, ai.GatewayConfig{Policy: fastPolicy()}, nil, logger)
	interpreter := ai.NewInterpreter(gateway, s.cache, ai.InterpreterConfig{EnableCache: true, CacheTTL: time.Hour}, nil, logger)

	s.cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, errors.New("miss")).Once()
	s.cache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.Anything, time.Hour).Return(nil).Once()
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(`{"cuisine": "Italian"}`, nil).Once()

	query := interpreter.Interpret(s.ctx, "pasta")

	assert.Equal(s.T(), "italian", query.Cuisine)
	s.cache.AssertExpectations(s.T())
}

func TestInterpreterTestSuite(t *testing.T) {
	suite.Run(t, new(InterpreterTestSuite))
}
