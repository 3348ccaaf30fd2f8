// Package recipe contains the core domain logic for recipes.
// This follows Domain-Driven Design principles with rich domain models.
package recipe

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/recipewise/server/internal/domain/shared"
)

// DefaultImageURL is shown for recipes stored without an image.
const DefaultImageURL = "https://via.placeholder.com/400x300?text=Recipe+Image"

// Attributes carries everything needed to build a Recipe.
type Attributes struct {
	Title        string
	Description  string
	Ingredients  []Ingredient
	Instructions []string
	CookingTime  int // minutes
	Servings     int
	Difficulty   DifficultyLevel
	Cuisine      CuisineType
	DietaryTags  []DietaryTag
	ImageURL     string
	Source       Source
	CreatorID    uuid.UUID
}

// Recipe represents the core recipe entity in our domain.
type Recipe struct {
	shared.AggregateRoot

	id           uuid.UUID
	title        string
	description  string
	ingredients  []Ingredient
	instructions []string
	cookingTime  int
	servings     int
	difficulty   DifficultyLevel
	cuisine      CuisineType
	dietaryTags  []DietaryTag
	imageURL     string
	source       Source
	creatorID    uuid.UUID
	createdAt    time.Time
	updatedAt    time.Time
}

// NewRecipe creates a new Recipe with validation
func NewRecipe(attrs Attributes) (*Recipe, error) {
	attrs = normalize(attrs)
	if err := validate(attrs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recipe := &Recipe{id: uuid.New(), createdAt: now, updatedAt: now}
	recipe.apply(attrs)

	recipe.AddEvent(RecipeCreatedEvent{
		RecipeID:  recipe.id,
		CreatorID: recipe.creatorID,
		Title:     recipe.title,
		Source:    recipe.source,
		CreatedAt: now,
	})
	if recipe.source == SourceAI {
		recipe.AddEvent(RecipeSynthesizedEvent{
			RecipeID:      recipe.id,
			Title:         recipe.title,
			SynthesizedAt: now,
		})
	}

	return recipe, nil
}

// Rehydrate rebuilds a recipe from storage without re-validation.
func Rehydrate(id uuid.UUID, attrs Attributes, createdAt, updatedAt time.Time) *Recipe {
	recipe := &Recipe{id: id, createdAt: createdAt, updatedAt: updatedAt}
	recipe.apply(attrs)
	return recipe
}

func (r *Recipe) apply(attrs Attributes) {
	r.title = attrs.Title
	r.description = attrs.Description
	r.ingredients = attrs.Ingredients
	r.instructions = attrs.Instructions
	r.cookingTime = attrs.CookingTime
	r.servings = attrs.Servings
	r.difficulty = attrs.Difficulty
	r.cuisine = attrs.Cuisine
	r.dietaryTags = attrs.DietaryTags
	r.imageURL = attrs.ImageURL
	r.source = attrs.Source
	r.creatorID = attrs.CreatorID
	if r.imageURL == "" {
		r.imageURL = DefaultImageURL
	}
}

// ID returns the recipe's unique identifier
func (r *Recipe) ID() uuid.UUID {
	return r.id
}

// Title returns the recipe's title
func (r *Recipe) Title() string {
	return r.title
}

// Description returns the recipe's description
func (r *Recipe) Description() string {
	return r.description
}

// Ingredients returns the recipe's ingredients
func (r *Recipe) Ingredients() []Ingredient {
	return r.ingredients
}

// Instructions returns the recipe's ordered steps
func (r *Recipe) Instructions() []string {
	return r.instructions
}

// CookingTime returns the total cooking time in minutes
func (r *Recipe) CookingTime() int {
	return r.cookingTime
}

func (r *Recipe) Servings() int {
	return r.servings
}

func (r *Recipe) Difficulty() DifficultyLevel {
	return r.difficulty
}

func (r *Recipe) Cuisine() CuisineType {
	return r.cuisine
}

func (r *Recipe) DietaryTags() []DietaryTag {
	return r.dietaryTags
}

func (r *Recipe) ImageURL() string {
	return r.imageURL
}

func (r *Recipe) Source() Source {
	return r.source
}

// IsAIGenerated reports whether the recipe came from the language model
func (r *Recipe) IsAIGenerated() bool {
	return r.source == SourceAI
}

func (r *Recipe) CreatorID() uuid.UUID {
	return r.creatorID
}

func (r *Recipe) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Recipe) UpdatedAt() time.Time {
	return r.updatedAt
}

// HasDietaryTag reports whether the recipe carries the given tag
func (r *Recipe) HasDietaryTag(tag DietaryTag) bool {
	for _, t := range r.dietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

// IngredientNames returns the lowercased ingredient names in order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.ingredients))
	for _, ing := range r.ingredients {
		names = append(names, strings.ToLower(ing.Name))
	}
	return names
}

// AttachImage replaces the recipe image
func (r *Recipe) AttachImage(url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrEmptyImageURL
	}
	r.imageURL = url
	r.updatedAt = time.Now().UTC()
	return nil
}

// IsOwnedBy reports whether the user created the recipe
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.creatorID != uuid.Nil && r.creatorID == userID
}

// Update replaces the editable fields. Identity, creator and source are kept,
// and an empty image URL keeps the current image.
func (r *Recipe) Update(attrs Attributes) error {
	attrs.Source = r.source
	attrs.CreatorID = r.creatorID
	if strings.TrimSpace(attrs.ImageURL) == "" {
		attrs.ImageURL = r.imageURL
	}

	attrs = normalize(attrs)
	if err := validate(attrs); err != nil {
		return err
	}

	r.apply(attrs)
	r.updatedAt = time.Now().UTC()
	r.AddEvent(RecipeUpdatedEvent{RecipeID: r.id, UpdatedAt: r.updatedAt})
	return nil
}

// Attributes returns a copy of the recipe's attributes.
func (r *Recipe) Attributes() Attributes {
	return Attributes{
		Title:        r.title,
		Description:  r.description,
		Ingredients:  append([]Ingredient(nil), r.ingredients...),
		Instructions: append([]string(nil), r.instructions...),
		CookingTime:  r.cookingTime,
		Servings:     r.servings,
		Difficulty:   r.difficulty,
		Cuisine:      r.cuisine,
		DietaryTags:  append([]DietaryTag(nil), r.dietaryTags...),
		ImageURL:     r.imageURL,
		Source:       r.source,
		CreatorID:    r.creatorID,
	}
}

func normalize(attrs Attributes) Attributes {
	attrs.Title = strings.TrimSpace(attrs.Title)
	attrs.Description = strings.TrimSpace(attrs.Description)

	ingredients := make([]Ingredient, 0, len(attrs.Ingredients))
	for _, ing := range attrs.Ingredients {
		ingredients = append(ingredients, Ingredient{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: strings.TrimSpace(ing.Quantity),
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}
	attrs.Ingredients = ingredients

	instructions := make([]string, 0, len(attrs.Instructions))
	for _, step := range attrs.Instructions {
		if step = strings.TrimSpace(step); step != "" {
			instructions = append(instructions, step)
		}
	}
	attrs.Instructions = instructions

	attrs.Difficulty = ParseDifficulty(string(attrs.Difficulty))
	attrs.Cuisine = ParseCuisine(string(attrs.Cuisine))

	tags := make([]string, 0, len(attrs.DietaryTags))
	for _, t := range attrs.DietaryTags {
		tags = append(tags, string(t))
	}
	attrs.DietaryTags = NormalizeDietaryTags(tags)

	if attrs.Source == "" {
		attrs.Source = SourceUser
	}
	return attrs
}

func validate(attrs Attributes) error {
	if err := validateTitle(attrs.Title); err != nil {
		return err
	}
	if utf8.RuneCountInString(attrs.Description) > 2000 {
		return ErrDescriptionTooLong
	}
	if len(attrs.Ingredients) == 0 {
		return ErrNoIngredients
	}
	for _, ing := range attrs.Ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	if len(attrs.Instructions) == 0 {
		return ErrNoInstructions
	}
	if attrs.CookingTime < 1 {
		return ErrInvalidCookingTime
	}
	if attrs.Servings < 1 {
		return ErrInvalidServings
	}
	return nil
}

// validateTitle validates recipe title
func validateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length < 3 {
		return ErrTitleTooShort
	}
	if length > 200 {
		return ErrTitleTooLong
	}
	return nil
}
