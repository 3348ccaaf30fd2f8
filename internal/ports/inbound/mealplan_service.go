package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recipewise/server/internal/domain/mealplan"
)

// MealPlanService defines the meal planning use cases
type MealPlanService interface {
	GeneratePlan(ctx context.Context, cmd GeneratePlanCommand) (*MealPlanDTO, error)
	GetPlan(ctx context.Context, userID, planID uuid.UUID) (*MealPlanDTO, error)
	ListPlans(ctx context.Context, userID uuid.UUID, params PaginationParams) ([]*MealPlanDTO, error)
	GetPersonalPlan(ctx context.Context, userID uuid.UUID) (*MealPlanDTO, error)
	AddToPersonalPlan(ctx context.Context, cmd AddMealCommand) (*MealPlanDTO, error)
	CreatePlan(ctx context.Context, cmd SavePlanCommand) (*MealPlanDTO, error)
	UpdatePlan(ctx context.Context, cmd SavePlanCommand) (*MealPlanDTO, error)
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error
}

// GeneratePlanCommand requests an AI-assembled plan. Zero Days means the default.
type GeneratePlanCommand struct {
	UserID        uuid.UUID
	Days          int
	Title         string
	CalorieTarget int
}

// AddMealCommand places a recipe into a slot of the personal plan
type AddMealCommand struct {
	UserID   uuid.UUID
	RecipeID uuid.UUID
	Day      string
	MealType string
}

// SavePlanCommand carries a hand-built plan. PlanID is ignored on create.
// A zero StartDate means today and a zero EndDate covers one day per entry.
type SavePlanCommand struct {
	UserID    uuid.UUID
	PlanID    uuid.UUID
	Title     string
	StartDate time.Time
	EndDate   time.Time
	Days      []mealplan.DayMeals
}

// MealPlanDTO is the data transfer object for meal plans
type MealPlanDTO struct {
	ID            uuid.UUID             `json:"id"`
	OwnerID       uuid.UUID             `json:"ownerId"`
	Title         string                `json:"title"`
	StartDate     time.Time             `json:"startDate"`
	EndDate       time.Time             `json:"endDate"`
	Days          []mealplan.DayMeals   `json:"days"`
	GeneratedByAI bool                  `json:"generatedByAI"`
	Preferences   mealplan.Preferences  `json:"preferences"`
	Recipes       map[string]*RecipeDTO `json:"recipes,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// NewMealPlanDTO converts a domain plan to its transfer form
func NewMealPlanDTO(p *mealplan.MealPlan) *MealPlanDTO {
	return &MealPlanDTO{
		ID:            p.ID(),
		OwnerID:       p.OwnerID(),
		Title:         p.Title(),
		StartDate:     p.StartDate(),
		EndDate:       p.EndDate(),
		Days:          p.Days(),
		GeneratedByAI: p.GeneratedByAI(),
		Preferences:   p.Preferences(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}
