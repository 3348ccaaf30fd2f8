package gorm_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	gormrepo "github.com/recipewise/server/internal/infrastructure/persistence/gorm"
	"github.com/recipewise/server/internal/ports/outbound"
)

func TestSearchUsesFullTextOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "title", "ingredients", "instructions", "cuisine", "difficulty", "dietary_tags", "cooking_time", "servings"}).
		AddRow(id.String(), "Chickpea Coconut Curry", `[{"name":"chickpeas","quantity":"1","unit":"can"}]`, `["Simmer"]`, "indian", "easy", `["vegan"]`, 35, 4)

	mock.ExpectQuery(regexp.QuoteMeta("to_tsvector('english', ingredient_index) @@ to_tsquery('english', $1)")).
		WithArgs("chickpeas | (coconut & milk)", "indian", "%,vegan,%").
		WillReturnRows(rows)

	repo := gormrepo.NewRecipeRepository(db)
	got, err := repo.Search(context.Background(), outbound.RecipeFilter{
		Ingredients: []string{"Chickpeas!", "coconut  milk"},
		Cuisine:     "Indian",
		DietaryTags: []string{"Vegan"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, id, got[0].ID())
	assert.Equal(t, "chickpeas", got[0].Ingredients()[0].Name)
	assert.True(t, got[0].HasDietaryTag("vegan"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
