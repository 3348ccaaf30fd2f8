// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"strings"

	"github.com/google/uuid"

	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
)

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	ingredients := make(IngredientList, len(r.Ingredients()))
	for i, ing := range r.Ingredients() {
		ingredients[i] = IngredientModel{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}

	tags := make(StringSlice, len(r.DietaryTags()))
	for i, tag := range r.DietaryTags() {
		tags[i] = string(tag)
	}

	return &RecipeModel{
		ID:              r.ID(),
		Title:           r.Title(),
		Description:     r.Description(),
		Ingredients:     ingredients,
		Instructions:    StringSlice(r.Instructions()),
		IngredientIndex: IngredientIndex(r.IngredientNames()),
		CookingTime:     r.CookingTime(),
		Servings:        r.Servings(),
		Difficulty:      string(r.Difficulty()),
		Cuisine:         string(r.Cuisine()),
		DietaryTags:     tags,
		DietaryIndex:    DietaryIndex(tags),
		ImageURL:        r.ImageURL(),
		Source:          string(r.Source()),
		CreatorID:       r.CreatorID(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(m *RecipeModel) *recipe.Recipe {
	ingredients := make([]recipe.Ingredient, len(m.Ingredients))
	for i, ing := range m.Ingredients {
		ingredients[i] = recipe.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}

	return recipe.Rehydrate(m.ID, recipe.Attributes{
		Title:        m.Title,
		Description:  m.Description,
		Ingredients:  ingredients,
		Instructions: []string(m.Instructions),
		CookingTime:  m.CookingTime,
		Servings:     m.Servings,
		Difficulty:   recipe.ParseDifficulty(m.Difficulty),
		Cuisine:      recipe.ParseCuisine(m.Cuisine),
		DietaryTags:  recipe.NormalizeDietaryTags(m.DietaryTags),
		ImageURL:     m.ImageURL,
		Source:       recipe.ParseSource(m.Source),
		CreatorID:    m.CreatorID,
	}, m.CreatedAt, m.UpdatedAt)
}

// IngredientIndex renders ingredient names as one lowercased search column
func IngredientIndex(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}

// DietaryIndex renders tags as ",a,b," so that a single tag matches '%,a,%'
func DietaryIndex(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// MealPlanToModel converts a domain meal plan to a GORM model
func MealPlanToModel(p *mealplan.MealPlan) *MealPlanModel {
	days := make(DayList, len(p.Days()))
	for i, d := range p.Days() {
		snacks := d.Snacks
		if snacks == nil {
			snacks = []uuid.UUID{}
		}
		days[i] = DayModel{Day: d.Day, Breakfast: d.Breakfast, Lunch: d.Lunch, Dinner: d.Dinner, Snacks: snacks}
	}

	prefs := p.Preferences()
	return &MealPlanModel{
		ID:            p.ID(),
		OwnerID:       p.OwnerID(),
		Title:         p.Title(),
		StartDate:     p.StartDate(),
		EndDate:       p.EndDate(),
		Days:          days,
		GeneratedByAI: p.GeneratedByAI(),
		Preferences: PlanPreferences{
			DietaryRestrictions: prefs.DietaryRestrictions,
			Allergies:           prefs.Allergies,
			CuisinePreferences:  prefs.CuisinePreferences,
			CalorieTarget:       prefs.CalorieTarget,
		},
		CreatedAt: p.CreatedAt(),
		UpdatedAt: p.UpdatedAt(),
	}
}

// ModelToMealPlan converts a GORM model to a domain meal plan
func ModelToMealPlan(m *MealPlanModel) *mealplan.MealPlan {
	days := make([]mealplan.DayMeals, len(m.Days))
	for i, d := range m.Days {
		snacks := d.Snacks
		if snacks == nil {
			snacks = []uuid.UUID{}
		}
		days[i] = mealplan.DayMeals{Day: d.Day, Breakfast: d.Breakfast, Lunch: d.Lunch, Dinner: d.Dinner, Snacks: snacks}
	}

	return mealplan.Rehydrate(m.ID, mealplan.Attributes{
		OwnerID:       m.OwnerID,
		Title:         m.Title,
		StartDate:     m.StartDate,
		EndDate:       m.EndDate,
		Days:          days,
		GeneratedByAI: m.GeneratedByAI,
		Preferences: mealplan.Preferences{
			DietaryRestrictions: m.Preferences.DietaryRestrictions,
			Allergies:           m.Preferences.Allergies,
			CuisinePreferences:  m.Preferences.CuisinePreferences,
			CalorieTarget:       m.Preferences.CalorieTarget,
		},
	}, m.CreatedAt, m.UpdatedAt)
}

// ModelToProfile converts a GORM model to a domain profile
func ModelToProfile(m *ProfileModel) *user.Profile {
	return user.Rehydrate(m.ID, m.Email, m.Name, user.Preferences{
		DietaryRestrictions: m.DietaryRestrictions,
		Allergies:           m.Allergies,
		CuisinePreferences:  m.CuisinePreferences,
		CalorieTarget:       m.CalorieTarget,
	}, m.CreatedAt)
}

// ProfileToModel converts a domain profile to a GORM model
func ProfileToModel(p *user.Profile) *ProfileModel {
	prefs := p.Preferences()
	return &ProfileModel{
		ID:                  p.ID(),
		Email:               p.Email(),
		Name:                p.Name(),
		DietaryRestrictions: prefs.DietaryRestrictions,
		Allergies:           prefs.Allergies,
		CuisinePreferences:  prefs.CuisinePreferences,
		CalorieTarget:       prefs.CalorieTarget,
		CreatedAt:           p.CreatedAt(),
	}
}
