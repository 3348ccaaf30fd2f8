package mealplan_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/application/ai"
	appmealplan "github.com/recipewise/server/internal/application/mealplan"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
	"github.com/recipewise/server/internal/ports/outbound"
	apperrors "github.com/recipewise/server/pkg/errors"
	"github.com/recipewise/server/test/testutils"
)

type AssemblerTestSuite struct {
	suite.Suite
	text      *testutils.MockTextModel
	assembler *appmealplan.Assembler
	corpus    []*recipe.Recipe
	ctx       context.Context
}

func (s *AssemblerTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.text = new(testutils.MockTextModel)
	gateway := ai.NewGateway(s.text, nil, ai.GatewayConfig{
		Policy: ai.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	}, nil, logger)
	s.assembler = appmealplan.NewAssembler(gateway, 14, nil, logger)
	s.corpus = testutils.NewRecipeFactory(5).CreateRecipes(3)
	s.ctx = context.Background()
}

func (s *AssemblerTestSuite) TestEmptyCorpusMakesNoCall() {
	_, err := s.assembler.Assemble(s.ctx, user.DietaryConstraints{}, 7, nil)

	require.Error(s.T(), err)
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeInsufficientCorpus))
	s.text.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
}

func (s *AssemblerTestSuite) TestDaysOutOfRange() {
	for _, days := range []int{0, 15} {
		_, err := s.assembler.Assemble(s.ctx, user.DietaryConstraints{}, days, s.corpus)
		assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed), "days=%d", days)
	}
	s.text.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
}

func (s *AssemblerTestSuite) TestUnknownIDsBecomeEmptySlots() {
	// Arrange
	a, b := s.corpus[0].ID(), s.corpus[1].ID()
	invented := uuid.New()
	reply := fmt.Sprintf(`[
		{"day": "monday", "breakfastId": %q, "lunchId": %q, "dinnerId": %q},
		{"day": "Tuesday", "breakfastId": "recipe-1", "lunchId": null, "dinnerId": %q}
	]`, a, invented, b, a)
	s.text.On("GenerateText", mock.Anything, mock.AnythingOfType("string")).Return(reply, nil).Once()

	// Act
	days, err := s.assembler.Assemble(s.ctx, user.DietaryConstraints{Restrictions: []string{"vegan"}}, 2, s.corpus)

	// Assert
	require.NoError(s.T(), err)
	require.Len(s.T(), days, 2)

	assert.Equal(s.T(), "Monday", days[0].Day)
	require.NotNil(s.T(), days[0].Breakfast)
	assert.Equal(s.T(), a, *days[0].Breakfast)
	assert.Nil(s.T(), days[0].Lunch, "invented id must not be substituted")
	require.NotNil(s.T(), days[0].Dinner)
	assert.Equal(s.T(), b, *days[0].Dinner)

	assert.Equal(s.T(), "Tuesday", days[1].Day)
	assert.Nil(s.T(), days[1].Breakfast)
	assert.Nil(s.T(), days[1].Lunch)
	require.NotNil(s.T(), days[1].Dinner)
	assert.Equal(s.T(), a, *days[1].Dinner)
}

func (s *AssemblerTestSuite) TestEveryReferenceBelongsToCorpus() {
	members := map[uuid.UUID]bool{}
	for _, r := range s.corpus {
		members[r.ID()] = true
	}
	reply := fmt.Sprintf(`[{"day":"Monday","breakfastId":%q,"lunchId":%q,"dinnerId":%q},
		{"day":"Tuesday","breakfastId":%q,"lunchId":%q,"dinnerId":%q}]`,
		s.corpus[2].ID(), uuid.New(), s.corpus[0].ID(), uuid.New(), s.corpus[1].ID(), uuid.New())
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(reply, nil).Once()

	days, err := s.assembler.Assemble(s.ctx, user.DietaryConstraints{}, 2, s.corpus)

	require.NoError(s.T(), err)
	for _, d := range days {
		for _, id := range d.RecipeIDs() {
			assert.True(s.T(), members[id], "id %s is outside the corpus", id)
		}
	}
}

func (s *AssemblerTestSuite) TestShapesToRequestedDays() {
	id := s.corpus[0].ID()
	reply := fmt.Sprintf(`[
		{"day": "Someday", "dinnerId": %q},
		{"day": "Wednesday", "dinnerId": %q},
		{"day": "Thursday", "dinnerId": %q}
	]`, id, id, id)
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(reply, nil)

	days, err := s.assembler.Assemble(s.ctx, user.DietaryConstraints{}, 2, s.corpus)
	require.NoError(s.T(), err)
	require.Len(s.T(), days, 2)
	assert.Equal(s.T(), "Monday", days[0].Day, "invalid label takes its position")
	assert.Equal(s.T(), "Wednesday", days[1].Day)

	days, err = s.assembler.Assemble(s.ctx, user.DietaryConstraints{}, 5, s.corpus)
	require.NoError(s.T(), err)
	require.Len(s.T(), days, 5)
	assert.Equal(s.T(), "Thursday", days[3].Day)
	assert.Equal(s.T(), "Friday", days[4].Day)
	assert.Nil(s.T(), days[4].Dinner)
	assert.NotNil(s.T(), days[4].Snacks)
}

func (s *AssemblerTestSuite) TestGatewayFailureIsGenerationError() {
	busy := &outbound.ModelError{Provider: "mock", StatusCode: http.StatusServiceUnavailable, Err: errors.New("overloaded")}
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", busy)

	_, err := s.assembler.Assemble(s.ctx, user.DietaryConstraints{}, 3, s.corpus)

	require.Error(s.T(), err)
	appErr, ok := apperrors.As(err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), apperrors.CodeGenerationFailed, appErr.Code)
	assert.True(s.T(), appErr.Retryable())
	s.text.AssertNumberOfCalls(s.T(), "GenerateText", 3)
}

func (s *AssemblerTestSuite) TestUnparseableReplyIsGenerationError() {
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("Here is your plan: Monday - pasta", nil).Once()

	_, err := s.assembler.Assemble(s.ctx, user.DietaryConstraints{}, 3, s.corpus)

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeGenerationFailed))
}

func TestAssemblerTestSuite(t *testing.T) {
	suite.Run(t, new(AssemblerTestSuite))
}
