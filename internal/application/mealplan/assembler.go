// Package mealplan implements meal plan assembly and the personal plan use cases.
package mealplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

// DefaultMaxDays bounds the length of an assembled plan
const DefaultMaxDays = 14

// Assembler asks the planning model to arrange a corpus of recipes into days.
// The model is untrusted: every returned id is checked against the corpus.
type Assembler struct {
	llm     ai.Invoker
	maxDays int
	metrics outbound.PipelineMetrics
	logger  *zap.Logger
}

// NewAssembler creates a meal plan assembler
func NewAssembler(llm ai.Invoker, maxDays int, metrics outbound.PipelineMetrics, logger *zap.Logger) *Assembler {
	if maxDays < 1 {
		maxDays = DefaultMaxDays
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Assembler{
		llm:     llm,
		maxDays: maxDays,
		metrics: metrics,
		logger:  logger.Named("meal-plan-assembler"),
	}
}

type plannedDay struct {
	Day         ai.FlexString `json:"day"`
	BreakfastID ai.FlexString `json:"breakfastId"`
	LunchID     ai.FlexString `json:"lunchId"`
	DinnerID    ai.FlexString `json:"dinnerId"`
}

// Assemble returns exactly days entries drawn from corpus. Ids the model
// invents become empty slots. There is no fallback when the model fails.
func (a *Assembler) Assemble(ctx context.Context, constraints user.DietaryConstraints, days int, corpus []*recipe.Recipe) ([]mealplan.DayMeals, error) {
	if len(corpus) == 0 {
		a.metrics.MealPlanGenerated("insufficient_corpus")
		return nil, errors.NewInsufficientCorpusError()
	}
	if days < 1 || days > a.maxDays {
		return nil, errors.NewValidationError(fmt.Sprintf("days must be between 1 and %d", a.maxDays))
	}

	start := time.Now()
	candidates := make([]ai.PlanCandidate, 0, len(corpus))
	members := make(map[uuid.UUID]struct{}, len(corpus))
	for _, r := range corpus {
		candidates = append(candidates, ai.PlanCandidate{ID: r.ID().String(), Title: r.Title()})
		members[r.ID()] = struct{}{}
	}

	var planned []plannedDay
	if err := a.llm.InvokeArray(ctx, ai.BuildMealPlanPrompt(candidates, constraints, days), &planned); err != nil {
		a.metrics.MealPlanGenerated("error")
		a.logger.Error("Meal plan generation failed",
			zap.Int("days", days),
			zap.Int("corpus_size", len(corpus)),
			zap.Error(err),
		)
		return nil, errors.NewGenerationError(err)
	}

	rejected := 0
	resolve := func(raw ai.FlexString) *uuid.UUID {
		value := strings.TrimSpace(string(raw))
		if value == "" {
			return nil
		}
		id, err := uuid.Parse(value)
		if err != nil {
			rejected++
			return nil
		}
		if _, ok := members[id]; !ok {
			rejected++
			return nil
		}
		return &id
	}

	result := make([]mealplan.DayMeals, days)
	for i := range result {
		result[i] = mealplan.DayMeals{Day: mealplan.DayForPosition(i), Snacks: []uuid.UUID{}}
		if i >= len(planned) {
			continue
		}

		entry := planned[i]
		if label, ok := mealplan.ParseDay(string(entry.Day)); ok {
			result[i].Day = label
		}
		result[i].Breakfast = resolve(entry.BreakfastID)
		result[i].Lunch = resolve(entry.LunchID)
		result[i].Dinner = resolve(entry.DinnerID)
	}

	if rejected > 0 {
		a.logger.Warn("Discarded recipe ids outside the corpus", zap.Int("rejected", rejected))
	}
	if len(planned) != days {
		a.logger.Warn("Model returned unexpected number of days",
			zap.Int("requested", days),
			zap.Int("returned", len(planned)),
		)
	}

	a.metrics.MealPlanGenerated("success")
	a.logger.Info("Meal plan assembled",
		zap.Int("days", days),
		zap.Int("corpus_size", len(corpus)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}
