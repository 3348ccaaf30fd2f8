// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	attrs recipe.Attributes
}

// NewRecipeBuilder creates a new recipe builder with default values
func NewRecipeBuilder() *RecipeBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &RecipeBuilder{attrs: recipe.Attributes{
		Title:       strings.TrimSuffix(faker.Sentence(3), "."),
		Description: faker.Paragraph(1, 2, 8, " "),
		Ingredients: []recipe.Ingredient{
			{Name: "spaghetti", Quantity: "1", Unit: "lb"},
			{Name: "tomato sauce", Quantity: "2", Unit: "cups"},
		},
		Instructions: []string{
			"Boil water in a large pot",
			"Cook spaghetti according to package directions",
		},
		CookingTime: 30,
		Servings:    4,
		Difficulty:  recipe.DifficultyLevelMedium,
		Cuisine:     recipe.CuisineTypeItalian,
		DietaryTags: []recipe.DietaryTag{},
		Source:      recipe.SourceSeeded,
		CreatorID:   uuid.New(),
	}}
}

// WithTitle sets the recipe title
func (rb *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	rb.attrs.Title = title
	return rb
}

// WithDescription sets the recipe description
func (rb *RecipeBuilder) WithDescription(description string) *RecipeBuilder {
	rb.attrs.Description = description
	return rb
}

// WithCreator sets the recipe creator
func (rb *RecipeBuilder) WithCreator(creatorID uuid.UUID) *RecipeBuilder {
	rb.attrs.CreatorID = creatorID
	return rb
}

// WithIngredients replaces the ingredient list with the given names
func (rb *RecipeBuilder) WithIngredients(names ...string) *RecipeBuilder {
	rb.attrs.Ingredients = make([]recipe.Ingredient, 0, len(names))
	for _, n := range names {
		rb.attrs.Ingredients = append(rb.attrs.Ingredients, recipe.Ingredient{Name: n, Quantity: "1", Unit: "cup"})
	}
	return rb
}

func (rb *RecipeBuilder) WithCuisine(cuisine recipe.CuisineType) *RecipeBuilder {
	rb.attrs.Cuisine = cuisine
	return rb
}

func (rb *RecipeBuilder) WithDifficulty(difficulty recipe.DifficultyLevel) *RecipeBuilder {
	rb.attrs.Difficulty = difficulty
	return rb
}

func (rb *RecipeBuilder) WithCookingTime(minutes int) *RecipeBuilder {
	rb.attrs.CookingTime = minutes
	return rb
}

func (rb *RecipeBuilder) WithDietaryTags(tags ...recipe.DietaryTag) *RecipeBuilder {
	rb.attrs.DietaryTags = tags
	return rb
}

// AsAIGenerated marks the recipe as synthesized
func (rb *RecipeBuilder) AsAIGenerated() *RecipeBuilder {
	rb.attrs.Source = recipe.SourceAI
	return rb
}

// Build creates the recipe through the validating constructor
func (rb *RecipeBuilder) Build() (*recipe.Recipe, error) {
	return recipe.NewRecipe(rb.attrs)
}

// MustBuild panics on validation failure
func (rb *RecipeBuilder) MustBuild() *recipe.Recipe {
	r, err := rb.Build()
	if err != nil {
		panic(fmt.Sprintf("testutils: invalid recipe: %v", err))
	}
	r.ClearEvents()
	return r
}

// RecipeFactory methods for creating common recipe types

// CreateValidRecipe creates a random valid recipe
func (rf *RecipeFactory) CreateValidRecipe() *recipe.Recipe {
	return NewRecipeBuilder().
		WithTitle(strings.TrimSuffix(rf.faker.Sentence(3), ".")).
		WithDescription(rf.faker.Paragraph(1, 2, 6, " ")).
		WithCookingTime(rf.faker.Number(15, 90)).
		MustBuild()
}

// CreateRecipes creates n random valid recipes
func (rf *RecipeFactory) CreateRecipes(n int) []*recipe.Recipe {
	recipes := make([]*recipe.Recipe, 0, n)
	for i := 0; i < n; i++ {
		recipes = append(recipes, rf.CreateValidRecipe())
	}
	return recipes
}

// CreateItalianRecipe creates an Italian cuisine recipe
func (rf *RecipeFactory) CreateItalianRecipe() *recipe.Recipe {
	return NewRecipeBuilder().
		WithTitle("Spaghetti Carbonara").
		WithDescription("Creamy Roman pasta with guanciale and pecorino").
		WithIngredients("spaghetti", "guanciale", "egg yolks", "pecorino romano", "black pepper").
		WithCuisine(recipe.CuisineTypeItalian).
		WithCookingTime(25).
		MustBuild()
}

// CreateVeganRecipe creates a vegan, gluten-free recipe
func (rf *RecipeFactory) CreateVeganRecipe() *recipe.Recipe {
	return NewRecipeBuilder().
		WithTitle("Chickpea Coconut Curry").
		WithDescription("A fragrant weeknight curry").
		WithIngredients("chickpeas", "coconut milk", "onion", "garlic", "curry powder", "spinach").
		WithCuisine(recipe.CuisineTypeIndian).
		WithDifficulty(recipe.DifficultyLevelEasy).
		WithDietaryTags(recipe.DietaryTagVegan, recipe.DietaryTagGlutenFree).
		WithCookingTime(35).
		MustBuild()
}

// CandidateJSON renders n recipe candidates the way the model returns them.
func (rf *RecipeFactory) CandidateJSON(n int) string {
	type ingredient struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
		Unit     string `json:"unit"`
	}
	type candidate struct {
		Title        string       `json:"title"`
		Description  string       `json:"description"`
		Ingredients  []ingredient `json:"ingredients"`
		Instructions []string     `json:"instructions"`
		CookingTime  int          `json:"cookingTime"`
		Servings     int          `json:"servings"`
		Difficulty   string       `json:"difficulty"`
		DietaryTags  []string     `json:"dietaryTags"`
		Cuisine      string       `json:"cuisine"`
	}

	candidates := make([]candidate, 0, n)
	for i := 0; i < n; i++ {
		candidates = append(candidates, candidate{
			Title:       fmt.Sprintf("Lemon Herb Chicken Skillet %d", i+1),
			Description: rf.faker.Sentence(12),
			Ingredients: []ingredient{
				{Name: "chicken thighs", Quantity: "1 1/2", Unit: "lb"},
				{Name: "garlic", Quantity: "3", Unit: "cloves"},
				{Name: "olive oil", Quantity: "2", Unit: "tbsp"},
				{Name: "lemon", Quantity: "1", Unit: "piece"},
				{Name: "thyme", Quantity: "1", Unit: "tsp"},
				{Name: "salt", Quantity: "1", Unit: "tsp"},
			},
			Instructions: []string{"Season the chicken", "Sear in oil", "Add garlic and thyme", "Finish with lemon"},
			CookingTime:  rf.faker.Number(15, 90),
			Servings:     rf.faker.Number(2, 6),
			Difficulty:   "easy",
			DietaryTags:  []string{"gluten-free"},
			Cuisine:      "mediterranean",
		})
	}

	data, _ := json.Marshal(candidates)
	return "```json\n" + string(data) + "\n```"
}

// ProfileFactory provides methods to create test profiles
type ProfileFactory struct {
	faker *gofakeit.Faker
}

// NewProfileFactory creates a new profile factory with seeded faker
func NewProfileFactory(seed int64) *ProfileFactory {
	return &ProfileFactory{faker: gofakeit.New(seed)}
}

// CreateProfile creates a profile with the given preferences
func (pf *ProfileFactory) CreateProfile(prefs user.Preferences) *user.Profile {
	return user.Rehydrate(uuid.New(), pf.faker.Email(), pf.faker.Name(), prefs, time.Now().UTC())
}

// CreateVeganProfile creates a vegan profile allergic to peanuts
func (pf *ProfileFactory) CreateVeganProfile() *user.Profile {
	return pf.CreateProfile(user.Preferences{
		DietaryRestrictions: []string{"vegan"},
		Allergies:           []string{"peanuts"},
		CuisinePreferences:  []string{"indian", "thai"},
		CalorieTarget:       2000,
	})
}
