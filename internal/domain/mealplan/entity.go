// Package mealplan contains the meal plan aggregate.
package mealplan

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recipewise/server/internal/domain/shared"
)

const (
	DefaultTitle   = "My Meal Plan"
	GeneratedTitle = "AI Generated Meal Plan"
	PersonalTitle  = "My Personal Meal Plan"
)

var (
	ErrNoDays           = errors.New("meal plan must contain at least one day")
	ErrInvalidDateRange = errors.New("meal plan end date must be after start date")
	ErrInvalidDay       = errors.New("day must be one of Monday..Sunday")
	ErrInvalidMealType  = errors.New("meal type must be breakfast, lunch or dinner")
	ErrDayNotInPlan     = errors.New("day is not part of this meal plan")
	ErrMealPlanNotFound = errors.New("meal plan not found")
)

// Weekdays lists the day labels in plan order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ParseDay matches a weekday label case-insensitively.
func ParseDay(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, d := range Weekdays {
		if strings.EqualFold(d, value) {
			return d, true
		}
	}
	return "", false
}

// DayForPosition returns the weekday label for a zero-based plan position.
func DayForPosition(i int) string {
	return Weekdays[((i%len(Weekdays))+len(Weekdays))%len(Weekdays)]
}

// MealType names an assignable slot
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

// ParseMealType validates a slot name
func ParseMealType(value string) (MealType, error) {
	switch MealType(strings.ToLower(strings.TrimSpace(value))) {
	case MealTypeBreakfast:
		return MealTypeBreakfast, nil
	case MealTypeLunch:
		return MealTypeLunch, nil
	case MealTypeDinner:
		return MealTypeDinner, nil
	default:
		return "", ErrInvalidMealType
	}
}

// DayMeals holds the recipe references for one day. Nil means an empty slot.
type DayMeals struct {
	Day       string      `json:"day"`
	Breakfast *uuid.UUID  `json:"breakfast"`
	Lunch     *uuid.UUID  `json:"lunch"`
	Dinner    *uuid.UUID  `json:"dinner"`
	Snacks    []uuid.UUID `json:"snacks"`
}

// RecipeIDs returns every non-null reference in the day.
func (d DayMeals) RecipeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, 3+len(d.Snacks))
	for _, slot := range []*uuid.UUID{d.Breakfast, d.Lunch, d.Dinner} {
		if slot != nil {
			ids = append(ids, *slot)
		}
	}
	return append(ids, d.Snacks...)
}

// EmptyWeek returns Monday..Sunday with every slot empty.
func EmptyWeek() []DayMeals {
	days := make([]DayMeals, len(Weekdays))
	for i, d := range Weekdays {
		days[i] = DayMeals{Day: d, Snacks: []uuid.UUID{}}
	}
	return days
}

// Preferences records the constraints a plan was generated under
type Preferences struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Allergies           []string `json:"allergies"`
	CuisinePreferences  []string `json:"cuisinePreferences"`
	CalorieTarget       int      `json:"calorieTarget,omitempty"`
}

// Attributes carries everything needed to build a MealPlan.
type Attributes struct {
	OwnerID       uuid.UUID
	Title         string
	StartDate     time.Time
	EndDate       time.Time
	Days          []DayMeals
	GeneratedByAI bool
	Preferences   Preferences
}

// MealPlan is a multi-day schedule of recipe references owned by a user
type MealPlan struct {
	shared.AggregateRoot

	id            uuid.UUID
	ownerID       uuid.UUID
	title         string
	startDate     time.Time
	endDate       time.Time
	days          []DayMeals
	generatedByAI bool
	preferences   Preferences
	createdAt     time.Time
	updatedAt     time.Time
}

// NewMealPlan creates a validated meal plan
func NewMealPlan(attrs Attributes) (*MealPlan, error) {
	if err := validateSchedule(attrs.StartDate, attrs.EndDate, attrs.Days); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(attrs.Title)
	if title == "" {
		title = DefaultTitle
		if attrs.GeneratedByAI {
			title = GeneratedTitle
		}
	}

	now := time.Now().UTC()
	plan := &MealPlan{
		id:            uuid.New(),
		ownerID:       attrs.OwnerID,
		title:         title,
		startDate:     attrs.StartDate,
		endDate:       attrs.EndDate,
		days:          attrs.Days,
		generatedByAI: attrs.GeneratedByAI,
		preferences:   attrs.Preferences,
		createdAt:     now,
		updatedAt:     now,
	}

	plan.AddEvent(MealPlanCreatedEvent{
		MealPlanID:    plan.id,
		OwnerID:       plan.ownerID,
		GeneratedByAI: plan.generatedByAI,
		CreatedAt:     now,
	})

	return plan, nil
}

// NewPersonalPlan creates the manually edited plan for the week containing now.
func NewPersonalPlan(ownerID uuid.UUID, now time.Time) *MealPlan {
	start := startOfWeek(now)
	plan, _ := NewMealPlan(Attributes{
		OwnerID:   ownerID,
		Title:     PersonalTitle,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
		Days:      EmptyWeek(),
	})
	return plan
}

// Rehydrate rebuilds a meal plan from storage
func Rehydrate(id uuid.UUID, attrs Attributes, createdAt, updatedAt time.Time) *MealPlan {
	return &MealPlan{
		id:            id,
		ownerID:       attrs.OwnerID,
		title:         attrs.Title,
		startDate:     attrs.StartDate,
		endDate:       attrs.EndDate,
		days:          attrs.Days,
		generatedByAI: attrs.GeneratedByAI,
		preferences:   attrs.Preferences,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (p *MealPlan) ID() uuid.UUID              { return p.id }
func (p *MealPlan) OwnerID() uuid.UUID         { return p.ownerID }
func (p *MealPlan) Title() string              { return p.title }
func (p *MealPlan) StartDate() time.Time       { return p.startDate }
func (p *MealPlan) EndDate() time.Time         { return p.endDate }
func (p *MealPlan) Days() []DayMeals           { return p.days }
func (p *MealPlan) GeneratedByAI() bool        { return p.generatedByAI }
func (p *MealPlan) Preferences() Preferences   { return p.preferences }
func (p *MealPlan) CreatedAt() time.Time       { return p.createdAt }
func (p *MealPlan) UpdatedAt() time.Time       { return p.updatedAt }
func (p *MealPlan) IsOwnedBy(u uuid.UUID) bool { return p.ownerID == u }

// Update replaces the title and schedule. An empty title keeps the current one.
func (p *MealPlan) Update(title string, startDate, endDate time.Time, days []DayMeals) error {
	if err := validateSchedule(startDate, endDate, days); err != nil {
		return err
	}

	if title = strings.TrimSpace(title); title != "" {
		p.title = title
	}
	p.startDate = startDate
	p.endDate = endDate
	p.days = days
	p.updatedAt = time.Now().UTC()
	return nil
}

// RecipeIDs returns every recipe referenced by the plan, in day order.
func (p *MealPlan) RecipeIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, d := range p.days {
		ids = append(ids, d.RecipeIDs()...)
	}
	return ids
}

// AssignMeal places recipeID in a day's slot. The plan is manually edited afterwards.
func (p *MealPlan) AssignMeal(day string, mealType MealType, recipeID uuid.UUID) error {
	label, ok := ParseDay(day)
	if !ok {
		return ErrInvalidDay
	}

	idx := -1
	for i := range p.days {
		if strings.EqualFold(p.days[i].Day, label) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrDayNotInPlan
	}

	id := recipeID
	switch mealType {
	case MealTypeBreakfast:
		p.days[idx].Breakfast = &id
	case MealTypeLunch:
		p.days[idx].Lunch = &id
	case MealTypeDinner:
		p.days[idx].Dinner = &id
	default:
		return ErrInvalidMealType
	}

	p.generatedByAI = false
	p.updatedAt = time.Now().UTC()

	p.AddEvent(MealAssignedEvent{
		MealPlanID: p.id,
		Day:        label,
		MealType:   mealType,
		RecipeID:   recipeID,
		AssignedAt: p.updatedAt,
	})
	return nil
}

func validateSchedule(start, end time.Time, days []DayMeals) error {
	if len(days) == 0 {
		return ErrNoDays
	}
	if !end.After(start) {
		return ErrInvalidDateRange
	}
	for _, d := range days {
		if _, ok := ParseDay(d.Day); !ok {
			return ErrInvalidDay
		}
	}
	return nil
}

func startOfWeek(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
