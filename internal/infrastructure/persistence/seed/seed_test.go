package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/recipewise/server/internal/domain/recipe"
	gormrepo "github.com/recipewise/server/internal/infrastructure/persistence/gorm"
)

func TestCatalog(t *testing.T) {
	creator := uuid.New()

	recipes, err := Catalog(creator)
	require.NoError(t, err)
	require.Len(t, recipes, 20)

	for _, r := range recipes {
		assert.Equal(t, recipe.SourceSeeded, r.Source(), r.Title())
		assert.Equal(t, creator, r.CreatorID(), r.Title())
		assert.NotEmpty(t, r.Ingredients(), r.Title())
		assert.Empty(t, r.Events(), r.Title())
	}
	assert.Equal(t, recipe.CuisineTypeMiddleEastern, findByTitle(t, recipes, "Falafel Wrap").Cuisine())
}

func TestSeederIsIdempotent(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormrepo.AllModels()...))

	seeder := NewSeeder(db, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, seeder.Run(ctx, "Demo@Example.com"))
	require.NoError(t, seeder.Run(ctx, "demo@example.com"))

	var recipes, profiles int64
	require.NoError(t, db.Model(&gormrepo.RecipeModel{}).Count(&recipes).Error)
	require.NoError(t, db.Model(&gormrepo.ProfileModel{}).Count(&profiles).Error)
	assert.Equal(t, int64(20), recipes)
	assert.Equal(t, int64(1), profiles)

	var demo gormrepo.ProfileModel
	require.NoError(t, db.First(&demo).Error)
	assert.Equal(t, "demo@example.com", demo.Email)
	assert.Equal(t, "demo", demo.Name)
	assert.Equal(t, gormrepo.StringSlice{"vegetarian"}, demo.DietaryRestrictions)
}

func TestSeederRequiresEmail(t *testing.T) {
	seeder := NewSeeder(nil, zaptest.NewLogger(t))
	assert.Error(t, seeder.Run(context.Background(), " "))
}

func findByTitle(t *testing.T, recipes []*recipe.Recipe, title string) *recipe.Recipe {
	t.Helper()
	for _, r := range recipes {
		if r.Title() == title {
			return r
		}
	}
	t.Fatalf("recipe %q not seeded", title)
	return nil
}
