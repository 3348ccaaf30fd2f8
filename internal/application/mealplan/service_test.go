package mealplan_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/application/events"
	appmealplan "github.com/recipewise/server/internal/application/mealplan"
	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/internal/ports/outbound"
	apperrors "github.com/recipewise/server/pkg/errors"
	"github.com/recipewise/server/test/testutils"
)

type ServiceTestSuite struct {
	suite.Suite
	text     *testutils.MockTextModel
	plans    *testutils.MockMealPlanRepository
	recipes  *testutils.MockRecipeRepository
	profiles *testutils.MockProfileRepository
	bus      *testutils.MockMessageBus
	service  *appmealplan.Service
	userID   uuid.UUID
	now      time.Time
	ctx      context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	logger := zaptest.NewLogger(s.T())
	s.text = new(testutils.MockTextModel)
	s.plans = new(testutils.MockMealPlanRepository)
	s.recipes = testutils.NewMockRecipeRepository()
	s.profiles = new(testutils.MockProfileRepository)
	s.bus = &testutils.MockMessageBus{}
	s.userID = uuid.New()
	s.now = time.Date(2024, 5, 8, 15, 30, 0, 0, time.UTC) // Wednesday
	s.ctx = context.Background()

	gateway := ai.NewGateway(s.text, nil, ai.GatewayConfig{
		Policy: ai.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond},
	}, nil, logger)
	s.service = appmealplan.NewService(
		appmealplan.NewAssembler(gateway, 14, nil, logger),
		s.plans, s.recipes, s.profiles,
		events.NewPublisher(s.bus, logger),
		appmealplan.DefaultServiceConfig(),
		logger,
	).WithClock(func() time.Time { return s.now })
}

func planReply(days int, ids ...uuid.UUID) string {
	reply := "["
	for i := 0; i < days; i++ {
		if i > 0 {
			reply += ","
		}
		id := ids[i%len(ids)]
		reply += fmt.Sprintf(`{"day":%q,"breakfastId":%q,"lunchId":%q,"dinnerId":%q}`,
			mealplan.DayForPosition(i), id, id, id)
	}
	return reply + "]"
}

func (s *ServiceTestSuite) TestGeneratePlanUsesRestrictedCorpus() {
	// Arrange
	profile := testutils.NewProfileFactory(1).CreateVeganProfile()
	corpus := testutils.NewRecipeFactory(2).CreateRecipes(6)
	s.profiles.On("FindByID", mock.Anything, s.userID).Return(profile, nil).Once()
	s.recipes.On("Search", mock.Anything, outbound.RecipeFilter{AnyDietaryTags: []string{"vegan"}, Limit: 100}).Return(corpus, nil).Once()
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(planReply(3, corpus[0].ID(), corpus[1].ID()), nil).Once()
	s.plans.On("Create", mock.Anything, mock.AnythingOfType("*mealplan.MealPlan")).Return(nil).Once()

	// Act
	dto, err := s.service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{UserID: s.userID, Days: 3})

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), mealplan.GeneratedTitle, dto.Title)
	assert.True(s.T(), dto.GeneratedByAI)
	assert.Equal(s.T(), s.userID, dto.OwnerID)
	assert.Len(s.T(), dto.Days, 3)
	assert.Equal(s.T(), time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), dto.StartDate)
	assert.Equal(s.T(), time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), dto.EndDate)
	assert.Equal(s.T(), []string{"vegan"}, dto.Preferences.DietaryRestrictions)
	assert.Equal(s.T(), []string{"peanuts"}, dto.Preferences.Allergies)
	assert.Len(s.T(), dto.Recipes, 2)
	s.recipes.AssertNotCalled(s.T(), "List", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(s.T(), []string{"mealplan.created"}, s.bus.Types())
}

func (s *ServiceTestSuite) TestGeneratePlanFallsBackToWholeCatalog() {
	corpus := testutils.NewRecipeFactory(3).CreateRecipes(4)
	s.profiles.On("FindByID", mock.Anything, s.userID).Return(nil, errors.New("not found")).Once()
	s.recipes.On("Search", mock.Anything, mock.Anything).Return(corpus[:1], nil).Once()
	s.recipes.On("List", mock.Anything, 0, 100).Return(corpus, int64(4), nil).Once()
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(planReply(1, corpus[3].ID()), nil).Once()
	s.plans.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	dto, err := s.service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{UserID: s.userID, Days: 1, Title: "Quick Day"})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Quick Day", dto.Title)
	assert.True(s.T(), dto.EndDate.After(dto.StartDate))
	require.NotNil(s.T(), dto.Days[0].Dinner)
	assert.Equal(s.T(), corpus[3].ID(), *dto.Days[0].Dinner)
}

func (s *ServiceTestSuite) TestGeneratePlanWithEmptyCatalog() {
	s.profiles.On("FindByID", mock.Anything, s.userID).Return(nil, nil).Once()
	s.recipes.On("Search", mock.Anything, mock.Anything).Return([]*recipe.Recipe{}, nil).Once()
	s.recipes.On("List", mock.Anything, 0, 100).Return(nil, int64(0), nil).Once()

	_, err := s.service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{UserID: s.userID})

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeInsufficientCorpus))
	s.text.AssertNotCalled(s.T(), "GenerateText", mock.Anything, mock.Anything)
	s.plans.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestGeneratePlanFailureIsNotStored() {
	corpus := testutils.NewRecipeFactory(4).CreateRecipes(5)
	s.profiles.On("FindByID", mock.Anything, s.userID).Return(nil, nil).Once()
	s.recipes.On("Search", mock.Anything, mock.Anything).Return(corpus, nil).Once()
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("invalid request")).Once()

	_, err := s.service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{UserID: s.userID})

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeGenerationFailed))
	s.plans.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestGeneratePlanRejectsTooManyDays() {
	_, err := s.service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{UserID: s.userID, Days: 30})

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))
}

func (s *ServiceTestSuite) TestGetPersonalPlanCreatesOnFirstUse() {
	s.plans.On("FindLatestManual", mock.Anything, s.userID).Return(nil, nil).Once()
	s.plans.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	dto, err := s.service.GetPersonalPlan(s.ctx, s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), mealplan.PersonalTitle, dto.Title)
	assert.False(s.T(), dto.GeneratedByAI)
	require.Len(s.T(), dto.Days, 7)
	assert.Equal(s.T(), "Monday", dto.Days[0].Day)
	assert.Equal(s.T(), time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), dto.StartDate)
}

func (s *ServiceTestSuite) TestAddToPersonalPlan() {
	r := testutils.NewRecipeFactory(8).CreateItalianRecipe()
	existing := mealplan.NewPersonalPlan(s.userID, s.now)
	existing.ClearEvents()
	s.recipes.On("FindByID", mock.Anything, r.ID()).Return(r, nil).Once()
	s.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{r.ID()}).Return([]*recipe.Recipe{r}, nil).Once()
	s.plans.On("FindLatestManual", mock.Anything, s.userID).Return(existing, nil).Once()
	s.plans.On("Update", mock.Anything, existing).Return(nil).Once()

	dto, err := s.service.AddToPersonalPlan(s.ctx, inbound.AddMealCommand{
		UserID:   s.userID,
		RecipeID: r.ID(),
		Day:      "wednesday",
		MealType: "Dinner",
	})

	require.NoError(s.T(), err)
	require.NotNil(s.T(), dto.Days[2].Dinner)
	assert.Equal(s.T(), r.ID(), *dto.Days[2].Dinner)
	assert.Equal(s.T(), "Spaghetti Carbonara", dto.Recipes[r.ID().String()].Title)
	assert.Equal(s.T(), []string{"mealplan.meal.assigned"}, s.bus.Types())
}

func (s *ServiceTestSuite) TestAddToPersonalPlanValidation() {
	_, err := s.service.AddToPersonalPlan(s.ctx, inbound.AddMealCommand{UserID: s.userID, RecipeID: uuid.New(), Day: "Monday", MealType: "brunch"})
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = s.service.AddToPersonalPlan(s.ctx, inbound.AddMealCommand{UserID: s.userID, RecipeID: uuid.New(), Day: "Funday", MealType: "lunch"})
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))

	missing := uuid.New()
	s.recipes.On("FindByID", mock.Anything, missing).Return(nil, nil).Once()
	_, err = s.service.AddToPersonalPlan(s.ctx, inbound.AddMealCommand{UserID: s.userID, RecipeID: missing, Day: "Monday", MealType: "lunch"})
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeRecipeNotFound))

	s.plans.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestGetPlanHidesOtherOwners() {
	plan := mealplan.NewPersonalPlan(uuid.New(), s.now)
	s.plans.On("FindByID", mock.Anything, plan.ID()).Return(plan, nil).Once()

	_, err := s.service.GetPlan(s.ctx, s.userID, plan.ID())

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeMealPlanNotFound))
}

func (s *ServiceTestSuite) TestListPlans() {
	plans := []*mealplan.MealPlan{mealplan.NewPersonalPlan(s.userID, s.now)}
	s.plans.On("ListByOwner", mock.Anything, s.userID, 0, 20).Return(plans, nil).Once()

	dtos, err := s.service.ListPlans(s.ctx, s.userID, inbound.PaginationParams{})

	require.NoError(s.T(), err)
	require.Len(s.T(), dtos, 1)
	assert.Equal(s.T(), plans[0].ID(), dtos[0].ID)
}

func (s *ServiceTestSuite) TestGeneratePlanMatchesAnyRestriction() {
	profile := testutils.NewProfileFactory(5).CreateProfile(user.Preferences{
		DietaryRestrictions: []string{"Vegan", "gluten-free"},
	})
	corpus := testutils.NewRecipeFactory(6).CreateRecipes(5)
	s.profiles.On("FindByID", mock.Anything, s.userID).Return(profile, nil).Once()
	s.recipes.On("Search", mock.Anything, outbound.RecipeFilter{
		AnyDietaryTags: []string{"vegan", "gluten-free"},
		Limit:          100,
	}).Return(corpus, nil).Once()
	s.text.On("GenerateText", mock.Anything, mock.Anything).Return(planReply(1, corpus[0].ID()), nil).Once()
	s.plans.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := s.service.GeneratePlan(s.ctx, inbound.GeneratePlanCommand{UserID: s.userID, Days: 1})

	require.NoError(s.T(), err)
	s.recipes.AssertNotCalled(s.T(), "List", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestCreatePlan() {
	r := testutils.NewRecipeFactory(12).CreateItalianRecipe()
	id := r.ID()
	s.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{id}).Return([]*recipe.Recipe{r}, nil).Once()
	s.plans.On("Create", mock.Anything, mock.AnythingOfType("*mealplan.MealPlan")).Return(nil).Once()

	dto, err := s.service.CreatePlan(s.ctx, inbound.SavePlanCommand{
		UserID: s.userID,
		Title:  "Pasta week",
		Days:   []mealplan.DayMeals{{Day: "monday", Dinner: &id}, {Day: "TUESDAY", Lunch: &id}},
	})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Pasta week", dto.Title)
	assert.Equal(s.T(), s.userID, dto.OwnerID)
	assert.False(s.T(), dto.GeneratedByAI)
	require.Len(s.T(), dto.Days, 2)
	assert.Equal(s.T(), "Monday", dto.Days[0].Day)
	assert.Equal(s.T(), "Tuesday", dto.Days[1].Day)
	assert.NotNil(s.T(), dto.Days[1].Snacks)
	assert.Equal(s.T(), time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), dto.StartDate)
	assert.Equal(s.T(), time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC), dto.EndDate)
	assert.Equal(s.T(), "Spaghetti Carbonara", dto.Recipes[id.String()].Title)
	assert.Equal(s.T(), []string{"mealplan.created"}, s.bus.Types())
}

func (s *ServiceTestSuite) TestCreatePlanValidation() {
	_, err := s.service.CreatePlan(s.ctx, inbound.SavePlanCommand{UserID: s.userID})
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))

	_, err = s.service.CreatePlan(s.ctx, inbound.SavePlanCommand{UserID: s.userID, Days: []mealplan.DayMeals{{Day: "Funday"}}})
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))

	unknown := uuid.New()
	s.recipes.On("FindByIDs", mock.Anything, []uuid.UUID{unknown}).Return([]*recipe.Recipe{}, nil).Once()
	_, err = s.service.CreatePlan(s.ctx, inbound.SavePlanCommand{
		UserID: s.userID,
		Days:   []mealplan.DayMeals{{Day: "Monday", Breakfast: &unknown}},
	})
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeValidationFailed))

	s.plans.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestUpdatePlan() {
	plan := mealplan.NewPersonalPlan(s.userID, s.now)
	s.plans.On("FindByID", mock.Anything, plan.ID()).Return(plan, nil).Once()
	s.plans.On("Update", mock.Anything, plan).Return(nil).Once()

	dto, err := s.service.UpdatePlan(s.ctx, inbound.SavePlanCommand{
		UserID: s.userID,
		PlanID: plan.ID(),
		Title:  "Renamed",
		Days:   mealplan.EmptyWeek()[:3],
	})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Renamed", dto.Title)
	assert.Len(s.T(), dto.Days, 3)
	assert.Equal(s.T(), plan.StartDate(), dto.StartDate)
	assert.Equal(s.T(), plan.StartDate().AddDate(0, 0, 2), dto.EndDate)
	s.recipes.AssertNotCalled(s.T(), "FindByIDs", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestUpdatePlanHidesOtherOwners() {
	plan := mealplan.NewPersonalPlan(uuid.New(), s.now)
	s.plans.On("FindByID", mock.Anything, plan.ID()).Return(plan, nil).Once()

	_, err := s.service.UpdatePlan(s.ctx, inbound.SavePlanCommand{UserID: s.userID, PlanID: plan.ID(), Days: mealplan.EmptyWeek()})

	assert.True(s.T(), apperrors.Is(err, apperrors.CodeMealPlanNotFound))
	s.plans.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestDeletePlan() {
	plan := mealplan.NewPersonalPlan(s.userID, s.now)
	s.plans.On("FindByID", mock.Anything, plan.ID()).Return(plan, nil).Once()
	s.plans.On("Delete", mock.Anything, plan.ID()).Return(nil).Once()

	require.NoError(s.T(), s.service.DeletePlan(s.ctx, s.userID, plan.ID()))
	s.plans.AssertExpectations(s.T())

	foreign := mealplan.NewPersonalPlan(uuid.New(), s.now)
	s.plans.On("FindByID", mock.Anything, foreign.ID()).Return(foreign, nil).Once()

	err := s.service.DeletePlan(s.ctx, s.userID, foreign.ID())
	assert.True(s.T(), apperrors.Is(err, apperrors.CodeMealPlanNotFound))
	s.plans.AssertNotCalled(s.T(), "Delete", mock.Anything, foreign.ID())
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
