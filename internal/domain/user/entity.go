// Package user defines the user profile consulted for dietary constraints.
// Account management lives outside this service; profiles are read-only here.
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when no profile matches
var ErrProfileNotFound = errors.New("profile not found")

// Profile represents a user as seen by recipe retrieval and meal planning
type Profile struct {
	id          uuid.UUID
	email       string
	name        string
	preferences Preferences
	createdAt   time.Time
}

// Preferences contains dietary preferences
type Preferences struct {
	DietaryRestrictions []string
	Allergies           []string
	CuisinePreferences  []string
	CalorieTarget       int
}

// DietaryConstraints is the projection of preferences fed to meal planning.
type DietaryConstraints struct {
	Restrictions  []string `json:"restrictions"`
	Allergies     []string `json:"allergies"`
	Cuisines      []string `json:"cuisines"`
	CalorieTarget int      `json:"calorieTarget,omitempty"`
}

// IsEmpty reports whether no constraint applies
func (c DietaryConstraints) IsEmpty() bool {
	return len(c.Restrictions) == 0 && len(c.Allergies) == 0 && len(c.Cuisines) == 0 && c.CalorieTarget <= 0
}

// Rehydrate rebuilds a profile from storage
func Rehydrate(id uuid.UUID, email, name string, prefs Preferences, createdAt time.Time) *Profile {
	return &Profile{
		id:          id,
		email:       strings.ToLower(email),
		name:        name,
		preferences: prefs,
		createdAt:   createdAt,
	}
}

func (p *Profile) ID() uuid.UUID {
	return p.id
}

func (p *Profile) Email() string {
	return p.email
}

func (p *Profile) Name() string {
	return p.name
}

func (p *Profile) Preferences() Preferences {
	return p.preferences
}

func (p *Profile) CreatedAt() time.Time {
	return p.createdAt
}

// DietaryConstraints projects the profile preferences, lowercased and trimmed.
func (p *Profile) DietaryConstraints() DietaryConstraints {
	return DietaryConstraints{
		Restrictions:  clean(p.preferences.DietaryRestrictions),
		Allergies:     clean(p.preferences.Allergies),
		Cuisines:      clean(p.preferences.CuisinePreferences),
		CalorieTarget: max(p.preferences.CalorieTarget, 0),
	}
}

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
