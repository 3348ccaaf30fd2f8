package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/ports/outbound"
)

// MealPlanRepository implements the meal plan repository interface using GORM
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *gorm.DB) outbound.MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// Create creates a new meal plan
func (r *MealPlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	return r.db.WithContext(ctx).Create(MealPlanToModel(plan)).Error
}

// Update saves an existing meal plan
func (r *MealPlanRepository) Update(ctx context.Context, plan *mealplan.MealPlan) error {
	model := MealPlanToModel(plan)

	result := r.db.WithContext(ctx).
		Model(&MealPlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":           model.Title,
			"start_date":      model.StartDate,
			"end_date":        model.EndDate,
			"days":            model.Days,
			"generated_by_ai": model.GeneratedByAI,
			"preferences":     model.Preferences,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mealplan.ErrMealPlanNotFound
	}
	return nil
}

// FindByID finds a meal plan by ID
func (r *MealPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	var model MealPlanModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, mealplan.ErrMealPlanNotFound
		}
		return nil, result.Error
	}

	return ModelToMealPlan(&model), nil
}

// FindLatestManual returns the newest plan not flagged as generated, or nil
func (r *MealPlanRepository) FindLatestManual(ctx context.Context, ownerID uuid.UUID) (*mealplan.MealPlan, error) {
	var models []MealPlanModel

	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND generated_by_ai = ?", ownerID, false).
		Order("created_at DESC").
		Limit(1).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(models) == 0 {
		return nil, nil
	}

	return ModelToMealPlan(&models[0]), nil
}

// ListByOwner lists the owner's plans newest first
func (r *MealPlanRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*mealplan.MealPlan, error) {
	var models []MealPlanModel

	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	plans := make([]*mealplan.MealPlan, len(models))
	for i := range models {
		plans[i] = ModelToMealPlan(&models[i])
	}
	return plans, nil
}

// Delete removes a meal plan
func (r *MealPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&MealPlanModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return mealplan.ErrMealPlanNotFound
	}
	return nil
}
