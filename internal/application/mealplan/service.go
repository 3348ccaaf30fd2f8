package mealplan

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/application/events"
	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

// ServiceConfig sizes generated plans and their corpus
type ServiceConfig struct {
	DefaultDays int
	MaxDays     int
	// MinCorpus is the restriction-filtered corpus size below which the
	// whole catalog is offered instead.
	MinCorpus   int
	CorpusLimit int
}

// DefaultServiceConfig mirrors the configuration defaults
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{DefaultDays: 7, MaxDays: DefaultMaxDays, MinCorpus: 5, CorpusLimit: 100}
}

// Service implements inbound.MealPlanService
type Service struct {
	assembler *Assembler
	plans     outbound.MealPlanRepository
	recipes   outbound.RecipeRepository
	profiles  outbound.ProfileRepository
	publisher *events.Publisher
	cfg       ServiceConfig
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates the meal plan service
func NewService(
	assembler *Assembler,
	plans outbound.MealPlanRepository,
	recipes outbound.RecipeRepository,
	profiles outbound.ProfileRepository,
	publisher *events.Publisher,
	cfg ServiceConfig,
	logger *zap.Logger,
) *Service {
	defaults := DefaultServiceConfig()
	if cfg.DefaultDays < 1 {
		cfg.DefaultDays = defaults.DefaultDays
	}
	if cfg.MaxDays < 1 {
		cfg.MaxDays = defaults.MaxDays
	}
	if cfg.MinCorpus < 1 {
		cfg.MinCorpus = defaults.MinCorpus
	}
	if cfg.CorpusLimit < 1 {
		cfg.CorpusLimit = defaults.CorpusLimit
	}
	return &Service{
		assembler: assembler,
		plans:     plans,
		recipes:   recipes,
		profiles:  profiles,
		publisher: publisher,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.Named("meal-plan-service"),
	}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GeneratePlan assembles and stores a plan from the caller's dietary profile
func (s *Service) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.MealPlanDTO, error) {
	days := cmd.Days
	if days == 0 {
		days = s.cfg.DefaultDays
	}
	if days < 1 || days > s.cfg.MaxDays {
		return nil, errors.NewValidationError(fmt.Sprintf("days must be between 1 and %d", s.cfg.MaxDays))
	}

	constraints := s.constraintsFor(ctx, cmd.UserID)
	if cmd.CalorieTarget > 0 {
		constraints.CalorieTarget = cmd.CalorieTarget
	}

	corpus, err := s.corpusFor(ctx, constraints)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Generating meal plan",
		zap.String("user_id", cmd.UserID.String()),
		zap.Int("days", days),
		zap.Int("corpus_size", len(corpus)),
	)

	dayMeals, err := s.assembler.Assemble(ctx, constraints, days, corpus)
	if err != nil {
		return nil, err
	}

	start := startOfDay(s.now())
	end := start.AddDate(0, 0, max(days-1, 1))
	plan, err := mealplan.NewMealPlan(mealplan.Attributes{
		OwnerID:       cmd.UserID,
		Title:         cmd.Title,
		StartDate:     start,
		EndDate:       end,
		Days:          dayMeals,
		GeneratedByAI: true,
		Preferences: mealplan.Preferences{
			DietaryRestrictions: constraints.Restrictions,
			Allergies:           constraints.Allergies,
			CuisinePreferences:  constraints.Cuisines,
			CalorieTarget:       constraints.CalorieTarget,
		},
	})
	if err != nil {
		return nil, errors.NewInternalError("assembled plan is invalid").WithCause(err)
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, errors.NewStoreError("create meal plan", err)
	}
	s.publisher.Publish(ctx, plan.Events())

	return s.toDTO(plan, corpus), nil
}

// GetPlan returns one of the caller's plans
func (s *Service) GetPlan(ctx context.Context, userID, planID uuid.UUID) (*inbound.MealPlanDTO, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil && !stderrors.Is(err, mealplan.ErrMealPlanNotFound) {
		return nil, errors.NewStoreError("get meal plan", err)
	}
	if plan == nil || !plan.IsOwnedBy(userID) {
		return nil, errors.NewMealPlanNotFoundError(planID.String())
	}
	return s.withRecipes(ctx, plan), nil
}

// ListPlans returns the caller's plans, newest first
func (s *Service) ListPlans(ctx context.Context, userID uuid.UUID, params inbound.PaginationParams) ([]*inbound.MealPlanDTO, error) {
	page := max(params.Page, 1)
	limit := params.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	plans, err := s.plans.ListByOwner(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, errors.NewStoreError("list meal plans", err)
	}

	dtos := make([]*inbound.MealPlanDTO, 0, len(plans))
	for _, p := range plans {
		dtos = append(dtos, inbound.NewMealPlanDTO(p))
	}
	return dtos, nil
}

// GetPersonalPlan returns the caller's manually edited plan, creating it on first use
func (s *Service) GetPersonalPlan(ctx context.Context, userID uuid.UUID) (*inbound.MealPlanDTO, error) {
	plan, err := s.personalPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withRecipes(ctx, plan), nil
}

// AddToPersonalPlan places a recipe into a slot of the personal plan
func (s *Service) AddToPersonalPlan(ctx context.Context, cmd inbound.AddMealCommand) (*inbound.MealPlanDTO, error) {
	mealType, err := mealplan.ParseMealType(cmd.MealType)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if _, ok := mealplan.ParseDay(cmd.Day); !ok {
		return nil, errors.NewValidationError(mealplan.ErrInvalidDay.Error())
	}

	if _, err := s.recipes.FindByID(ctx, cmd.RecipeID); err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
		}
		return nil, errors.NewStoreError("get recipe", err)
	}

	plan, err := s.personalPlan(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := plan.AssignMeal(cmd.Day, mealType, cmd.RecipeID); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, errors.NewStoreError("update meal plan", err)
	}
	s.publisher.Publish(ctx, plan.Events())

	s.logger.Info("Recipe added to personal plan",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("recipe_id", cmd.RecipeID.String()),
		zap.String("day", cmd.Day),
		zap.String("meal_type", string(mealType)),
	)
	return s.withRecipes(ctx, plan), nil
}

// CreatePlan stores a hand-built plan for the caller
func (s *Service) CreatePlan(ctx context.Context, cmd inbound.SavePlanCommand) (*inbound.MealPlanDTO, error) {
	days := canonicalDays(cmd.Days)
	start, end := s.scheduleFor(cmd.StartDate, cmd.EndDate, len(days))

	plan, err := mealplan.NewMealPlan(mealplan.Attributes{
		OwnerID:   cmd.UserID,
		Title:     cmd.Title,
		StartDate: start,
		EndDate:   end,
		Days:      days,
	})
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	recipes, err := s.referencedRecipes(ctx, plan)
	if err != nil {
		return nil, err
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, errors.NewStoreError("create meal plan", err)
	}
	s.publisher.Publish(ctx, plan.Events())

	s.logger.Info("Meal plan created",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("plan_id", plan.ID().String()),
		zap.Int("days", len(days)),
	)
	return s.toDTO(plan, recipes), nil
}

// UpdatePlan replaces the title and schedule of one of the caller's plans
func (s *Service) UpdatePlan(ctx context.Context, cmd inbound.SavePlanCommand) (*inbound.MealPlanDTO, error) {
	plan, err := s.ownedPlan(ctx, cmd.UserID, cmd.PlanID)
	if err != nil {
		return nil, err
	}

	days := canonicalDays(cmd.Days)
	start, end := cmd.StartDate, cmd.EndDate
	if start.IsZero() {
		start = plan.StartDate()
	}
	if end.IsZero() {
		end = start.AddDate(0, 0, max(len(days)-1, 1))
	}

	if err := plan.Update(cmd.Title, start, end, days); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	recipes, err := s.referencedRecipes(ctx, plan)
	if err != nil {
		return nil, err
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		if stderrors.Is(err, mealplan.ErrMealPlanNotFound) {
			return nil, errors.NewMealPlanNotFoundError(cmd.PlanID.String())
		}
		return nil, errors.NewStoreError("update meal plan", err)
	}

	s.logger.Info("Meal plan updated",
		zap.String("user_id", cmd.UserID.String()),
		zap.String("plan_id", plan.ID().String()),
	)
	return s.toDTO(plan, recipes), nil
}

// DeletePlan removes one of the caller's plans
func (s *Service) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	if _, err := s.ownedPlan(ctx, userID, planID); err != nil {
		return err
	}

	if err := s.plans.Delete(ctx, planID); err != nil {
		if stderrors.Is(err, mealplan.ErrMealPlanNotFound) {
			return errors.NewMealPlanNotFoundError(planID.String())
		}
		return errors.NewStoreError("delete meal plan", err)
	}

	s.logger.Info("Meal plan deleted",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", planID.String()),
	)
	return nil
}

// ownedPlan loads a plan, reporting plans of other users as missing
func (s *Service) ownedPlan(ctx context.Context, userID, planID uuid.UUID) (*mealplan.MealPlan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil && !stderrors.Is(err, mealplan.ErrMealPlanNotFound) {
		return nil, errors.NewStoreError("get meal plan", err)
	}
	if plan == nil || !plan.IsOwnedBy(userID) {
		return nil, errors.NewMealPlanNotFoundError(planID.String())
	}
	return plan, nil
}

// referencedRecipes loads every recipe the plan points at and rejects unknown ids
func (s *Service) referencedRecipes(ctx context.Context, plan *mealplan.MealPlan) ([]*recipe.Recipe, error) {
	wanted := make(map[uuid.UUID]struct{})
	for _, id := range plan.RecipeIDs() {
		wanted[id] = struct{}{}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	recipes, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewStoreError("get plan recipes", err)
	}
	if len(recipes) < len(wanted) {
		return nil, errors.NewValidationError("meal plan references unknown recipes")
	}
	return recipes, nil
}

// scheduleFor fills in a missing start or end date
func (s *Service) scheduleFor(start, end time.Time, days int) (time.Time, time.Time) {
	if start.IsZero() {
		start = startOfDay(s.now())
	}
	if end.IsZero() {
		end = start.AddDate(0, 0, max(days-1, 1))
	}
	return start, end
}

// canonicalDays fixes the casing of day labels and replaces nil snack lists
func canonicalDays(days []mealplan.DayMeals) []mealplan.DayMeals {
	out := make([]mealplan.DayMeals, len(days))
	for i, d := range days {
		if label, ok := mealplan.ParseDay(d.Day); ok {
			d.Day = label
		}
		if d.Snacks == nil {
			d.Snacks = []uuid.UUID{}
		}
		out[i] = d
	}
	return out
}

func (s *Service) personalPlan(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error) {
	plan, err := s.plans.FindLatestManual(ctx, userID)
	if err != nil {
		return nil, errors.NewStoreError("find personal plan", err)
	}
	if plan != nil {
		return plan, nil
	}

	plan = mealplan.NewPersonalPlan(userID, s.now())
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, errors.NewStoreError("create personal plan", err)
	}
	s.publisher.Publish(ctx, plan.Events())
	return plan, nil
}

// constraintsFor reads the caller's profile. A missing profile means no constraints.
func (s *Service) constraintsFor(ctx context.Context, userID uuid.UUID) user.DietaryConstraints {
	if s.profiles == nil {
		return user.DietaryConstraints{}
	}
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil || profile == nil {
		s.logger.Warn("Profile unavailable, planning without constraints",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return user.DietaryConstraints{}
	}
	return profile.DietaryConstraints()
}

// corpusFor selects recipes carrying any of the restrictions, widening to the
// whole catalog when too few qualify.
func (s *Service) corpusFor(ctx context.Context, constraints user.DietaryConstraints) ([]*recipe.Recipe, error) {
	corpus, err := s.recipes.Search(ctx, outbound.RecipeFilter{
		AnyDietaryTags: constraints.Restrictions,
		Limit:          s.cfg.CorpusLimit,
	})
	if err != nil {
		return nil, errors.NewStoreError("load meal plan corpus", err)
	}

	if len(corpus) < s.cfg.MinCorpus {
		s.logger.Info("Restricted corpus too small, using whole catalog",
			zap.Strings("restrictions", constraints.Restrictions),
			zap.Int("matching", len(corpus)),
		)
		corpus, _, err = s.recipes.List(ctx, 0, s.cfg.CorpusLimit)
		if err != nil {
			return nil, errors.NewStoreError("load meal plan corpus", err)
		}
	}
	return corpus, nil
}

func (s *Service) withRecipes(ctx context.Context, plan *mealplan.MealPlan) *inbound.MealPlanDTO {
	ids := plan.RecipeIDs()
	if len(ids) == 0 {
		return s.toDTO(plan, nil)
	}

	recipes, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to load plan recipes", zap.String("plan_id", plan.ID().String()), zap.Error(err))
		return s.toDTO(plan, nil)
	}
	return s.toDTO(plan, recipes)
}

func (s *Service) toDTO(plan *mealplan.MealPlan, recipes []*recipe.Recipe) *inbound.MealPlanDTO {
	dto := inbound.NewMealPlanDTO(plan)

	referenced := make(map[uuid.UUID]struct{})
	for _, id := range plan.RecipeIDs() {
		referenced[id] = struct{}{}
	}

	dto.Recipes = make(map[string]*inbound.RecipeDTO, len(referenced))
	for _, r := range recipes {
		if _, ok := referenced[r.ID()]; ok {
			dto.Recipes[r.ID().String()] = inbound.NewRecipeDTO(r)
		}
	}
	return dto
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ inbound.MealPlanService = (*Service)(nil)
