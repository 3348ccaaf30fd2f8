package mealplan

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MealPlanTestSuite struct {
	suite.Suite
	owner uuid.UUID
	start time.Time
}

func (suite *MealPlanTestSuite) SetupTest() {
	suite.owner = uuid.New()
	suite.start = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
}

func (suite *MealPlanTestSuite) TestNewMealPlan() {
	suite.Run("GeneratedPlan_ShouldDefaultTitle", func() {
		// Act
		plan, err := NewMealPlan(Attributes{
			OwnerID:       suite.owner,
			StartDate:     suite.start,
			EndDate:       suite.start.AddDate(0, 0, 2),
			Days:          EmptyWeek()[:3],
			GeneratedByAI: true,
		})

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), GeneratedTitle, plan.Title())
		assert.True(suite.T(), plan.GeneratedByAI())
		assert.True(suite.T(), plan.IsOwnedBy(suite.owner))
		require.Len(suite.T(), plan.Events(), 1)
	})

	suite.Run("ManualPlan_ShouldDefaultTitle", func() {
		plan, err := NewMealPlan(Attributes{
			OwnerID:   suite.owner,
			StartDate: suite.start,
			EndDate:   suite.start.AddDate(0, 0, 1),
			Days:      EmptyWeek()[:1],
		})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), DefaultTitle, plan.Title())
	})

	suite.Run("NoDays_ShouldReturnError", func() {
		_, err := NewMealPlan(Attributes{StartDate: suite.start, EndDate: suite.start.AddDate(0, 0, 1)})
		assert.ErrorIs(suite.T(), err, ErrNoDays)
	})

	suite.Run("EndNotAfterStart_ShouldReturnError", func() {
		_, err := NewMealPlan(Attributes{StartDate: suite.start, EndDate: suite.start, Days: EmptyWeek()[:1]})
		assert.ErrorIs(suite.T(), err, ErrInvalidDateRange)
	})

	suite.Run("UnknownDayLabel_ShouldReturnError", func() {
		_, err := NewMealPlan(Attributes{
			StartDate: suite.start,
			EndDate:   suite.start.AddDate(0, 0, 1),
			Days:      []DayMeals{{Day: "Funday"}},
		})
		assert.ErrorIs(suite.T(), err, ErrInvalidDay)
	})
}

func (suite *MealPlanTestSuite) TestUpdate() {
	suite.Run("ValidSchedule_ShouldReplaceDays", func() {
		plan := NewPersonalPlan(suite.owner, suite.start)
		recipeID := uuid.New()
		days := []DayMeals{{Day: "Monday", Dinner: &recipeID}, {Day: "Tuesday"}}

		err := plan.Update(" Light week ", suite.start, suite.start.AddDate(0, 0, 1), days)

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "Light week", plan.Title())
		assert.Equal(suite.T(), []uuid.UUID{recipeID}, plan.RecipeIDs())
		assert.Equal(suite.T(), suite.start.AddDate(0, 0, 1), plan.EndDate())
	})

	suite.Run("BlankTitle_ShouldKeepCurrent", func() {
		plan := NewPersonalPlan(suite.owner, suite.start)

		err := plan.Update("", suite.start, suite.start.AddDate(0, 0, 6), EmptyWeek())

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), PersonalTitle, plan.Title())
	})

	suite.Run("InvalidSchedule_ShouldLeavePlanUntouched", func() {
		plan := NewPersonalPlan(suite.owner, suite.start)

		err := plan.Update("Broken", suite.start, suite.start, EmptyWeek())

		assert.ErrorIs(suite.T(), err, ErrInvalidDateRange)
		assert.Equal(suite.T(), PersonalTitle, plan.Title())
		assert.Len(suite.T(), plan.Days(), 7)
	})
}

func (suite *MealPlanTestSuite) TestAssignMeal() {
	suite.Run("CaseInsensitiveDay_ShouldAssignAndClearAIFlag", func() {
		// Arrange
		plan, err := NewMealPlan(Attributes{
			OwnerID:       suite.owner,
			StartDate:     suite.start,
			EndDate:       suite.start.AddDate(0, 0, 6),
			Days:          EmptyWeek(),
			GeneratedByAI: true,
		})
		require.NoError(suite.T(), err)
		recipeID := uuid.New()

		// Act
		err = plan.AssignMeal("wednesday", MealTypeDinner, recipeID)

		// Assert
		require.NoError(suite.T(), err)
		require.NotNil(suite.T(), plan.Days()[2].Dinner)
		assert.Equal(suite.T(), recipeID, *plan.Days()[2].Dinner)
		assert.False(suite.T(), plan.GeneratedByAI())
		assert.Equal(suite.T(), []uuid.UUID{recipeID}, plan.RecipeIDs())
	})

	suite.Run("DayOutsidePlan_ShouldReturnError", func() {
		plan, err := NewMealPlan(Attributes{
			StartDate: suite.start,
			EndDate:   suite.start.AddDate(0, 0, 1),
			Days:      EmptyWeek()[:2],
		})
		require.NoError(suite.T(), err)

		err = plan.AssignMeal("Sunday", MealTypeLunch, uuid.New())

		assert.ErrorIs(suite.T(), err, ErrDayNotInPlan)
	})

	suite.Run("InvalidMealType_ShouldBeRejectedByParser", func() {
		_, err := ParseMealType("brunch")
		assert.ErrorIs(suite.T(), err, ErrInvalidMealType)

		mt, err := ParseMealType(" Lunch ")
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), MealTypeLunch, mt)
	})
}

func (suite *MealPlanTestSuite) TestNewPersonalPlan() {
	// Thursday
	now := time.Date(2024, 5, 9, 15, 30, 0, 0, time.UTC)

	plan := NewPersonalPlan(suite.owner, now)

	require.NotNil(suite.T(), plan)
	assert.Equal(suite.T(), PersonalTitle, plan.Title())
	assert.Equal(suite.T(), suite.start, plan.StartDate())
	assert.Equal(suite.T(), suite.start.AddDate(0, 0, 6), plan.EndDate())
	assert.Len(suite.T(), plan.Days(), 7)
	assert.Equal(suite.T(), "Monday", plan.Days()[0].Day)
	assert.False(suite.T(), plan.GeneratedByAI())
}

func TestMealPlanTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanTestSuite))
}

func TestDayForPosition(t *testing.T) {
	assert.Equal(t, "Monday", DayForPosition(0))
	assert.Equal(t, "Sunday", DayForPosition(6))
	assert.Equal(t, "Monday", DayForPosition(7))
}
