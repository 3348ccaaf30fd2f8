// Package seed loads the starter catalog and the demo profile
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
	gormrepo "github.com/recipewise/server/internal/infrastructure/persistence/gorm"
)

//go:embed recipes.json
var catalogJSON []byte

type catalogEntry struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Ingredients  []recipe.Ingredient `json:"ingredients"`
	Instructions []string            `json:"instructions"`
	CookingTime  int                 `json:"cookingTime"`
	Servings     int                 `json:"servings"`
	Difficulty   string              `json:"difficulty"`
	DietaryTags  []string            `json:"dietaryTags"`
	Cuisine      string              `json:"cuisine"`
	ImageURL     string              `json:"imageUrl"`
}

// DemoPreferences are the preferences given to a freshly seeded demo profile
var DemoPreferences = user.Preferences{
	DietaryRestrictions: []string{"vegetarian"},
	CuisinePreferences:  []string{"italian", "mexican", "thai"},
}

// Seeder populates an empty database
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSeeder creates a seeder
func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, logger: logger.Named("seed")}
}

// Run ensures the demo profile exists and loads the catalog when the recipes
// table is empty. It is safe to call on every start.
func (s *Seeder) Run(ctx context.Context, demoEmail string) error {
	demo, err := s.ensureDemoProfile(ctx, demoEmail)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&gormrepo.RecipeModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count recipes: %w", err)
	}
	if count > 0 {
		s.logger.Debug("Catalog already seeded", zap.Int64("recipes", count))
		return nil
	}

	recipes, err := Catalog(demo.ID)
	if err != nil {
		return err
	}

	models := make([]*gormrepo.RecipeModel, 0, len(recipes))
	for _, r := range recipes {
		models = append(models, gormrepo.RecipeToModel(r))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(models, 50).Error; err != nil {
		return fmt.Errorf("failed to seed recipes: %w", err)
	}

	s.logger.Info("Seeded recipe catalog", zap.Int("recipes", len(models)))
	return nil
}

func (s *Seeder) ensureDemoProfile(ctx context.Context, email string) (*gormrepo.ProfileModel, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("demo profile email is required")
	}

	var existing gormrepo.ProfileModel
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load demo profile: %w", err)
	}

	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	model := gormrepo.ProfileToModel(user.Rehydrate(uuid.New(), email, name, DemoPreferences, time.Now().UTC()))
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to create demo profile: %w", err)
	}

	s.logger.Info("Created demo profile", zap.String("email", email))
	return model, nil
}

// Catalog builds the starter recipes credited to creatorID
func Catalog(creatorID uuid.UUID) ([]*recipe.Recipe, error) {
	var entries []catalogEntry
	if err := json.Unmarshal(catalogJSON, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}

	recipes := make([]*recipe.Recipe, 0, len(entries))
	for _, e := range entries {
		r, err := recipe.NewRecipe(recipe.Attributes{
			Title:        e.Title,
			Description:  e.Description,
			Ingredients:  e.Ingredients,
			Instructions: e.Instructions,
			CookingTime:  e.CookingTime,
			Servings:     e.Servings,
			Difficulty:   recipe.ParseDifficulty(e.Difficulty),
			Cuisine:      recipe.ParseCuisine(e.Cuisine),
			DietaryTags:  recipe.NormalizeDietaryTags(e.DietaryTags),
			ImageURL:     e.ImageURL,
			Source:       recipe.SourceSeeded,
			CreatorID:    creatorID,
		})
		if err != nil {
			return nil, fmt.Errorf("seed recipe %q: %w", e.Title, err)
		}
		r.ClearEvents()
		recipes = append(recipes, r)
	}
	return recipes, nil
}
