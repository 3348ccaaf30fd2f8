package recipe

import (
	"strings"
)

// Value Objects - Immutable objects that describe aspects of the domain

// Ingredient represents an ingredient line in a recipe.
// Quantity is free text so fractions like "1 1/2" survive untouched.
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

// Validate validates the ingredient
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrIngredientNameRequired
	}
	return nil
}

// CuisineType represents different cuisine types
type CuisineType string

const (
	CuisineTypeItalian       CuisineType = "italian"
	CuisineTypeChinese       CuisineType = "chinese"
	CuisineTypeIndian        CuisineType = "indian"
	CuisineTypeMexican       CuisineType = "mexican"
	CuisineTypeJapanese      CuisineType = "japanese"
	CuisineTypeThai          CuisineType = "thai"
	CuisineTypeMediterranean CuisineType = "mediterranean"
	CuisineTypeAmerican      CuisineType = "american"
	CuisineTypeFrench        CuisineType = "french"
	CuisineTypeKorean        CuisineType = "korean"
	CuisineTypeMiddleEastern CuisineType = "middle eastern"
	CuisineTypeGreek         CuisineType = "greek"
	CuisineTypeOther         CuisineType = "other"
)

// Cuisines lists every accepted cuisine value.
var Cuisines = []CuisineType{
	CuisineTypeItalian, CuisineTypeChinese, CuisineTypeIndian, CuisineTypeMexican,
	CuisineTypeJapanese, CuisineTypeThai, CuisineTypeMediterranean, CuisineTypeAmerican,
	CuisineTypeFrench, CuisineTypeKorean, CuisineTypeMiddleEastern, CuisineTypeGreek,
	CuisineTypeOther,
}

// ParseCuisine maps free text onto a known cuisine, falling back to other.
func ParseCuisine(value string) CuisineType {
	normalized := CuisineType(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range Cuisines {
		if c == normalized {
			return c
		}
	}
	return CuisineTypeOther
}

// DifficultyLevel represents recipe difficulty
type DifficultyLevel string

const (
	DifficultyLevelEasy   DifficultyLevel = "easy"
	DifficultyLevelMedium DifficultyLevel = "medium"
	DifficultyLevelHard   DifficultyLevel = "hard"
)

// ParseDifficulty maps free text onto a difficulty, falling back to medium.
func ParseDifficulty(value string) DifficultyLevel {
	switch DifficultyLevel(strings.ToLower(strings.TrimSpace(value))) {
	case DifficultyLevelEasy:
		return DifficultyLevelEasy
	case DifficultyLevelHard:
		return DifficultyLevelHard
	default:
		return DifficultyLevelMedium
	}
}

// DietaryTag represents a dietary classification
type DietaryTag string

const (
	DietaryTagVegan      DietaryTag = "vegan"
	DietaryTagVegetarian DietaryTag = "vegetarian"
	DietaryTagGlutenFree DietaryTag = "gluten-free"
	DietaryTagDairyFree  DietaryTag = "dairy-free"
	DietaryTagKeto       DietaryTag = "keto"
	DietaryTagPaleo      DietaryTag = "paleo"
	DietaryTagLowCarb    DietaryTag = "low-carb"
	DietaryTagHalal      DietaryTag = "halal"
	DietaryTagKosher     DietaryTag = "kosher"
	DietaryTagOther      DietaryTag = "other"
)

// DietaryTags lists every accepted dietary tag.
var DietaryTags = []DietaryTag{
	DietaryTagVegan, DietaryTagVegetarian, DietaryTagGlutenFree, DietaryTagDairyFree,
	DietaryTagKeto, DietaryTagPaleo, DietaryTagLowCarb, DietaryTagHalal, DietaryTagKosher,
	DietaryTagOther,
}

// ParseDietaryTag reports whether value names a known dietary tag.
func ParseDietaryTag(value string) (DietaryTag, bool) {
	normalized := DietaryTag(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range DietaryTags {
		if t == normalized {
			return t, true
		}
	}
	return "", false
}

// NormalizeDietaryTags keeps known tags in order, dropping unknown and duplicate values.
func NormalizeDietaryTags(values []string) []DietaryTag {
	seen := make(map[DietaryTag]struct{}, len(values))
	tags := make([]DietaryTag, 0, len(values))
	for _, v := range values {
		tag, ok := ParseDietaryTag(v)
		if !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Source records where a recipe came from.
type Source string

const (
	SourceSeeded Source = "seeded"
	SourceUser   Source = "user"
	SourceAI     Source = "ai"
)

// ParseSource maps a stored value onto a Source, defaulting to user.
func ParseSource(value string) Source {
	switch Source(value) {
	case SourceSeeded:
		return SourceSeeded
	case SourceAI:
		return SourceAI
	default:
		return SourceUser
	}
}
