package recipe

import (
	"time"

	"github.com/google/uuid"
)

// Domain Events - Events that occur within the recipe domain

// RecipeCreatedEvent is raised when a new recipe is created
type RecipeCreatedEvent struct {
	RecipeID  uuid.UUID
	CreatorID uuid.UUID
	Title     string
	Source    Source
	CreatedAt time.Time
}

func (e RecipeCreatedEvent) EventName() string {
	return "recipe.created"
}

func (e RecipeCreatedEvent) OccurredAt() time.Time {
	return e.CreatedAt
}

// RecipeSynthesizedEvent is raised when a recipe is produced by the language model
type RecipeSynthesizedEvent struct {
	RecipeID      uuid.UUID
	Title         string
	SynthesizedAt time.Time
}

func (e RecipeSynthesizedEvent) EventName() string {
	return "recipe.synthesized"
}

func (e RecipeSynthesizedEvent) OccurredAt() time.Time {
	return e.SynthesizedAt
}

// RecipeUpdatedEvent is raised when the creator edits a recipe
type RecipeUpdatedEvent struct {
	RecipeID  uuid.UUID
	UpdatedAt time.Time
}

func (e RecipeUpdatedEvent) EventName() string {
	return "recipe.updated"
}

func (e RecipeUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}
