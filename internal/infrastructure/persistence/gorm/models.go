// Package gorm provides GORM model definitions for the application
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null;index"`
	Description string    `gorm:"type:text"`

	Ingredients  IngredientList `gorm:"type:json"`
	Instructions StringSlice    `gorm:"type:json"`
	// IngredientIndex holds the lowercased ingredient names separated by spaces
	IngredientIndex string `gorm:"type:text"`

	CookingTime int         `gorm:"not null;default:1"`
	Servings    int         `gorm:"not null;default:1"`
	Difficulty  string      `gorm:"type:varchar(20);index"`
	Cuisine     string      `gorm:"type:varchar(50);index"`
	DietaryTags StringSlice `gorm:"type:json"`
	// DietaryIndex is ",tag1,tag2," so single tags match with LIKE '%,tag,%'
	DietaryIndex string `gorm:"type:varchar(255)"`

	ImageURL  string    `gorm:"type:text"`
	Source    string    `gorm:"type:varchar(20);default:'user';index"`
	CreatorID uuid.UUID `gorm:"type:char(36);index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// IngredientModel is one stored ingredient line
type IngredientModel struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// MealPlanModel represents the GORM model for meal plans
type MealPlanModel struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey"`
	OwnerID       uuid.UUID       `gorm:"type:char(36);not null;index"`
	Title         string          `gorm:"type:varchar(255);not null"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       time.Time       `gorm:"not null"`
	Days          DayList         `gorm:"type:json"`
	GeneratedByAI bool            `gorm:"column:generated_by_ai;default:false;index"`
	Preferences   PlanPreferences `gorm:"type:json"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time
}

// DayModel is one stored day of a meal plan
type DayModel struct {
	Day       string      `json:"day"`
	Breakfast *uuid.UUID  `json:"breakfast"`
	Lunch     *uuid.UUID  `json:"lunch"`
	Dinner    *uuid.UUID  `json:"dinner"`
	Snacks    []uuid.UUID `json:"snacks"`
}

// PlanPreferences records the constraints a plan was generated under
type PlanPreferences struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Allergies           []string `json:"allergies"`
	CuisinePreferences  []string `json:"cuisinePreferences"`
	CalorieTarget       int      `json:"calorieTarget,omitempty"`
}

// ProfileModel represents the read-only user profile
type ProfileModel struct {
	ID                  uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Email               string      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name                string      `gorm:"type:varchar(255)"`
	DietaryRestrictions StringSlice `gorm:"type:json"`
	Allergies           StringSlice `gorm:"type:json"`
	CuisinePreferences  StringSlice `gorm:"type:json"`
	CalorieTarget       int         `gorm:"default:0"`
	CreatedAt           time.Time
}

// SavedRecipeModel links a profile to a recipe it bookmarked
type SavedRecipeModel struct {
	ProfileID uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID  uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time `gorm:"index"`
}

// StringSlice custom type for handling string arrays
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}
	return scanJSON(value, s)
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return jsonValue(s)
}

// IngredientList stores ingredients as a JSON array
type IngredientList []IngredientModel

// Scan implements the sql.Scanner interface
func (l *IngredientList) Scan(value interface{}) error {
	if value == nil {
		*l = IngredientList{}
		return nil
	}
	return scanJSON(value, l)
}

// Value implements the driver.Valuer interface
func (l IngredientList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return jsonValue(l)
}

// DayList stores meal plan days as a JSON array
type DayList []DayModel

// Scan implements the sql.Scanner interface
func (d *DayList) Scan(value interface{}) error {
	if value == nil {
		*d = DayList{}
		return nil
	}
	return scanJSON(value, d)
}

// Value implements the driver.Valuer interface
func (d DayList) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "[]", nil
	}
	return jsonValue(d)
}

// Scan implements the sql.Scanner interface
func (p *PlanPreferences) Scan(value interface{}) error {
	if value == nil {
		*p = PlanPreferences{}
		return nil
	}
	return scanJSON(value, p)
}

// Value implements the driver.Valuer interface
func (p PlanPreferences) Value() (driver.Value, error) {
	return jsonValue(p)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, dest)
	}
}

func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealPlanModel
func (m *MealPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ProfileModel
func (p *ProfileModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (RecipeModel) TableName() string {
	return "recipes"
}

func (MealPlanModel) TableName() string {
	return "meal_plans"
}

func (ProfileModel) TableName() string {
	return "profiles"
}

func (SavedRecipeModel) TableName() string {
	return "saved_recipes"
}

// AllModels lists every model for auto-migration
func AllModels() []interface{} {
	return []interface{}{&ProfileModel{}, &RecipeModel{}, &MealPlanModel{}, &SavedRecipeModel{}}
}
