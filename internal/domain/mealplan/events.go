package mealplan

import (
	"time"

	"github.com/google/uuid"
)

// MealPlanCreatedEvent is raised when a meal plan is created
type MealPlanCreatedEvent struct {
	MealPlanID    uuid.UUID
	OwnerID       uuid.UUID
	GeneratedByAI bool
	CreatedAt     time.Time
}

func (e MealPlanCreatedEvent) EventName() string {
	return "mealplan.created"
}

func (e MealPlanCreatedEvent) OccurredAt() time.Time {
	return e.CreatedAt
}

// MealAssignedEvent is raised when a recipe is placed into a plan slot
type MealAssignedEvent struct {
	MealPlanID uuid.UUID
	Day        string
	MealType   MealType
	RecipeID   uuid.UUID
	AssignedAt time.Time
}

func (e MealAssignedEvent) EventName() string {
	return "mealplan.meal.assigned"
}

func (e MealAssignedEvent) OccurredAt() time.Time {
	return e.AssignedAt
}
