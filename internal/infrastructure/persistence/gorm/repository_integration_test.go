//go:build integration

package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/recipewise/server/internal/domain/mealplan"
	gormrepo "github.com/recipewise/server/internal/infrastructure/persistence/gorm"
	"github.com/recipewise/server/internal/infrastructure/persistence/seed"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/test/testutils"
)

func TestPostgresRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	tdb := testutils.SetupTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, seed.NewSeeder(tdb.GormDB, zaptest.NewLogger(t)).Run(ctx, "demo@example.com"))
	assert.Equal(t, 20, tdb.CountRows(t, "recipes"))

	recipes := gormrepo.NewRecipeRepository(tdb.GormDB)
	profiles := gormrepo.NewProfileRepository(tdb.GormDB)
	plans := gormrepo.NewMealPlanRepository(tdb.GormDB)

	t.Run("full text ingredient search", func(t *testing.T) {
		got, err := recipes.Search(ctx, outbound.RecipeFilter{Ingredients: []string{"chickpeas"}, Limit: 20})
		require.NoError(t, err)

		titles := make([]string, 0, len(got))
		for _, r := range got {
			titles = append(titles, r.Title())
		}
		assert.Contains(t, titles, "Chickpea Buddha Bowl")
		assert.LessOrEqual(t, len(got), 20)
	})

	t.Run("dietary tags must all match", func(t *testing.T) {
		got, err := recipes.Search(ctx, outbound.RecipeFilter{DietaryTags: []string{"vegan"}, Limit: 20})
		require.NoError(t, err)
		for _, r := range got {
			assert.True(t, r.HasDietaryTag("vegan"), r.Title())
		}
	})

	t.Run("list is paginated", func(t *testing.T) {
		page, total, err := recipes.List(ctx, 0, 5)
		require.NoError(t, err)
		assert.Len(t, page, 5)
		assert.Equal(t, int64(20), total)
	})

	t.Run("personal plan round trip", func(t *testing.T) {
		demo, err := profiles.FindByEmail(ctx, "demo@example.com")
		require.NoError(t, err)
		require.NotNil(t, demo)

		catalog, _, err := recipes.List(ctx, 0, 1)
		require.NoError(t, err)
		require.Len(t, catalog, 1)

		plan := mealplan.NewPersonalPlan(demo.ID(), time.Now())
		require.NoError(t, plans.Create(ctx, plan))
		require.NoError(t, plan.AssignMeal("Wednesday", mealplan.MealTypeDinner, catalog[0].ID()))
		require.NoError(t, plans.Update(ctx, plan))

		latest, err := plans.FindLatestManual(ctx, demo.ID())
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, plan.ID(), latest.ID())
		assert.Equal(t, []uuid.UUID{catalog[0].ID()}, latest.RecipeIDs())
	})

	tdb.Truncate(t)
	assert.Zero(t, tdb.CountRows(t, "recipes"))
}
