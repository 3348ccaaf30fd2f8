package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/pkg/errors"
)

// MealPlanHandlers handles meal plan requests. Every route requires a user.
type MealPlanHandlers struct {
	base
	plans inbound.MealPlanService
}

// NewMealPlanHandlers creates a new meal plan handlers instance
func NewMealPlanHandlers(plans inbound.MealPlanService, validate *validator.Validate, logger *zap.Logger) *MealPlanHandlers {
	return &MealPlanHandlers{
		base:  base{validate: validate, logger: logger.Named("meal-plan-handlers")},
		plans: plans,
	}
}

// GeneratePlanRequest is the body of a plan generation request
type GeneratePlanRequest struct {
	Days          int    `json:"days" validate:"omitempty,min=1,max=31"`
	Title         string `json:"title" validate:"max=200"`
	CalorieTarget int    `json:"calorieTarget" validate:"omitempty,min=0,max=10000"`
}

// AddMealRequest is the body of a personal plan slot assignment
type AddMealRequest struct {
	RecipeID string `json:"recipeId" validate:"required,uuid"`
	Day      string `json:"day" validate:"required"`
	MealType string `json:"mealType" validate:"required"`
}

// DayRequest is one day of a hand-built plan. Empty slot ids leave the slot empty.
type DayRequest struct {
	Day       string   `json:"day" validate:"required"`
	Breakfast string   `json:"breakfast" validate:"omitempty,uuid"`
	Lunch     string   `json:"lunch" validate:"omitempty,uuid"`
	Dinner    string   `json:"dinner" validate:"omitempty,uuid"`
	Snacks    []string `json:"snacks" validate:"max=10,dive,uuid"`
}

// SavePlanRequest is the body of a plan create or update. Dates are
// RFC 3339 timestamps or YYYY-MM-DD.
type SavePlanRequest struct {
	Title     string       `json:"title" validate:"max=200"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Days      []DayRequest `json:"days" validate:"required,min=1,max=31,dive"`
}

func (req SavePlanRequest) command(userID, planID uuid.UUID) (inbound.SavePlanCommand, error) {
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return inbound.SavePlanCommand{}, err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return inbound.SavePlanCommand{}, err
	}

	days := make([]mealplan.DayMeals, len(req.Days))
	for i, d := range req.Days {
		snacks := make([]uuid.UUID, len(d.Snacks))
		for j, id := range d.Snacks {
			snacks[j] = uuid.MustParse(id)
		}
		days[i] = mealplan.DayMeals{
			Day:       d.Day,
			Breakfast: optionalID(d.Breakfast),
			Lunch:     optionalID(d.Lunch),
			Dinner:    optionalID(d.Dinner),
			Snacks:    snacks,
		}
	}

	return inbound.SavePlanCommand{
		UserID:    userID,
		PlanID:    planID,
		Title:     req.Title,
		StartDate: start,
		EndDate:   end,
		Days:      days,
	}, nil
}

func optionalID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id := uuid.MustParse(raw)
	return &id
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.NewValidationError(field + " must be a date").WithCause(err)
	}
	return t, nil
}

// GeneratePlan handles POST /api/v1/meal-plans/generate
func (h *MealPlanHandlers) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req GeneratePlanRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.plans.GeneratePlan(r.Context(), inbound.GeneratePlanCommand{
		UserID:        userID,
		Days:          req.Days,
		Title:         req.Title,
		CalorieTarget: req.CalorieTarget,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusCreated, plan, "Meal plan generated successfully")
}

// ListPlans handles GET /api/v1/meal-plans
func (h *MealPlanHandlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	plans, err := h.plans.ListPlans(r.Context(), userID, pagination(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, plans, "")
}

// GetPlan handles GET /api/v1/meal-plans/{id}
func (h *MealPlanHandlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	planID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.plans.GetPlan(r.Context(), userID, planID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, plan, "")
}

// GetPersonalPlan handles GET /api/v1/meal-plans/personal/current
func (h *MealPlanHandlers) GetPersonalPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.plans.GetPersonalPlan(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, plan, "")
}

// AddToPersonalPlan handles POST /api/v1/meal-plans/personal/add
func (h *MealPlanHandlers) AddToPersonalPlan(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req AddMealRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.plans.AddToPersonalPlan(r.Context(), inbound.AddMealCommand{
		UserID:   userID,
		RecipeID: uuid.MustParse(req.RecipeID),
		Day:      req.Day,
		MealType: req.MealType,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, plan, "Recipe added to meal plan")
}

// CreatePlan handles POST /api/v1/meal-plans
func (h *MealPlanHandlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req SavePlanRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cmd, err := req.command(userID, uuid.Nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.plans.CreatePlan(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusCreated, plan, "Meal plan created successfully")
}

// UpdatePlan handles PUT /api/v1/meal-plans/{id}
func (h *MealPlanHandlers) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	planID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req SavePlanRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cmd, err := req.command(userID, planID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.plans.UpdatePlan(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, plan, "Meal plan updated successfully")
}

// DeletePlan handles DELETE /api/v1/meal-plans/{id}
func (h *MealPlanHandlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	planID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.plans.DeletePlan(r.Context(), userID, planID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, nil, "Meal plan deleted successfully")
}
