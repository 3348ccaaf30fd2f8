package recipe

import (
	"strings"
)

// StructuredQuery is the machine-readable form of a free-text recipe request.
// Empty fields mean the interpreter could not determine a value.
type StructuredQuery struct {
	Ingredients         []string `json:"ingredients"`
	MealType            string   `json:"mealType,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Cuisine             string   `json:"cuisine,omitempty"`
	CookingTime         int      `json:"cookingTime,omitempty"` // maximum minutes
	Difficulty          string   `json:"difficulty,omitempty"`
}

// EmptyQuery returns a query with no extracted fields.
func EmptyQuery() StructuredQuery {
	return StructuredQuery{Ingredients: []string{}, DietaryRestrictions: []string{}}
}

// IsEmpty reports whether nothing was extracted.
func (q StructuredQuery) IsEmpty() bool {
	return len(q.Ingredients) == 0 &&
		q.MealType == "" &&
		len(q.DietaryRestrictions) == 0 &&
		q.Cuisine == "" &&
		q.CookingTime <= 0 &&
		q.Difficulty == ""
}

// Normalize lowercases and trims every value, dropping blanks and duplicates.
func (q StructuredQuery) Normalize() StructuredQuery {
	return StructuredQuery{
		Ingredients:         normalizeTerms(q.Ingredients),
		MealType:            normalizeTerm(q.MealType),
		DietaryRestrictions: normalizeTerms(q.DietaryRestrictions),
		Cuisine:             normalizeTerm(q.Cuisine),
		CookingTime:         max(q.CookingTime, 0),
		Difficulty:          normalizeTerm(q.Difficulty),
	}
}

func normalizeTerm(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "null" || value == "none" {
		return ""
	}
	return value
}

func normalizeTerms(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = normalizeTerm(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
