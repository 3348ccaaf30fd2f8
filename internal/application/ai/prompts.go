package ai

import (
	"fmt"
	"strings"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
)

// PlanCandidate is a corpus entry offered to the planning prompt
type PlanCandidate struct {
	ID    string
	Title string
}

// BuildQueryPrompt asks for the structured form of a free-text request
func BuildQueryPrompt(text string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a recipe search assistant. Parse the following user query and extract structured information.\n\n")
	prompt.WriteString(fmt.Sprintf("User query: %q\n\n", text))
	prompt.WriteString("Extract and return ONLY a valid JSON object with these fields:\n")
	prompt.WriteString(`{
  "ingredients": ["list", "of", "ingredients"],
  "mealType": "breakfast/lunch/dinner/snack",
  "dietaryRestrictions": ["vegan", "gluten-free", etc.],
  "cuisine": "italian/chinese/indian/etc.",
  "cookingTime": number in minutes or null,
  "difficulty": "easy/medium/hard" or null
}`)
	prompt.WriteString("\n\nRules:\n")
	prompt.WriteString("- Return ONLY the JSON object, no additional text\n")
	prompt.WriteString("- Use null for fields that cannot be determined\n")
	prompt.WriteString("- Use lowercase for all values\n")
	prompt.WriteString("- dietaryRestrictions must be an array (can be empty)\n")
	prompt.WriteString("- ingredients must be an array (can be empty)\n\n")
	prompt.WriteString("JSON:")

	return prompt.String()
}

// BuildRecipePrompt asks for count complete recipes matching brief
func BuildRecipePrompt(brief string, count int) string {
	cuisines := make([]string, 0, len(recipe.Cuisines))
	for _, c := range recipe.Cuisines {
		cuisines = append(cuisines, string(c))
	}
	tags := make([]string, 0, len(recipe.DietaryTags))
	for _, t := range recipe.DietaryTags {
		if t != recipe.DietaryTagOther {
			tags = append(tags, fmt.Sprintf("%q", t))
		}
	}

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("You are a professional chef and recipe creator. Generate %d complete, realistic, and authentic recipes based on the user's search query.\n\n", count))
	prompt.WriteString(fmt.Sprintf("User Query: %q\n\n", brief))
	prompt.WriteString(fmt.Sprintf("Generate %d different recipes that match this query. Return ONLY a valid JSON array with this EXACT structure:\n", count))
	prompt.WriteString(`[
  {
    "title": "Recipe Name",
    "description": "Detailed, appetizing description of the dish (2-3 sentences)",
    "ingredients": [
      {
        "name": "ingredient name",
        "quantity": "amount",
        "unit": "measurement unit (cup/tbsp/tsp/gram/piece/etc.)"
      }
    ],
    "instructions": [
      "Step 1: Detailed instruction",
      "Step 2: Detailed instruction",
      "Step 3: Detailed instruction"
    ],
    "cookingTime": number_in_minutes,
    "servings": number_of_servings,
    "difficulty": "easy|medium|hard",
`)
	prompt.WriteString(fmt.Sprintf("    \"dietaryTags\": [%s],\n", strings.Join(tags, ", ")))
	prompt.WriteString(fmt.Sprintf("    \"cuisine\": \"%s\"\n", strings.Join(cuisines, "|")))
	prompt.WriteString("  }\n]\n\n")
	prompt.WriteString("CRITICAL RULES:\n")
	prompt.WriteString("1. Generate REAL, AUTHENTIC recipes from world culinary knowledge\n")
	prompt.WriteString("2. Each recipe must be DIFFERENT and UNIQUE\n")
	prompt.WriteString("3. Include 6-12 ingredients per recipe\n")
	prompt.WriteString("4. Include 4-8 detailed instruction steps\n")
	prompt.WriteString("5. Cooking time should be realistic (15-90 minutes)\n")
	prompt.WriteString("6. Servings typically 2-6\n")
	prompt.WriteString("7. Use only the exact values from the enums provided above\n")
	prompt.WriteString("8. dietaryTags should be an array (can be empty if none apply)\n")
	prompt.WriteString("9. All measurements must be specific and realistic\n")
	prompt.WriteString("10. Instructions must be clear, step-by-step, and professional\n")
	prompt.WriteString("11. Return ONLY the JSON array, no additional text or markdown\n\n")
	prompt.WriteString("JSON:")

	return prompt.String()
}

// BuildImagePrompt describes a photographic rendition of a dish
func BuildImagePrompt(title string) string {
	return fmt.Sprintf("Ultra realistic professional food photography of %s, rich texture, detailed garnish, "+
		"restaurant presentation, shallow depth of field, natural lighting, high resolution, 4K food photography", title)
}

// BuildMealPlanPrompt asks for a days-long plan drawn only from candidates
func BuildMealPlanPrompt(candidates []PlanCandidate, constraints user.DietaryConstraints, days int) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are an expert nutritionist and meal planner. Generate a %d-day meal plan using ONLY the following available recipes from the database.\n\n", days))
	prompt.WriteString("Available Recipes:\n")
	for _, c := range candidates {
		prompt.WriteString(fmt.Sprintf("- %s (ID: %s)\n", c.Title, c.ID))
	}

	prompt.WriteString("\nRequirements:\n")
	if len(constraints.Restrictions) > 0 {
		prompt.WriteString(fmt.Sprintf("- Dietary restrictions: %s\n", strings.Join(constraints.Restrictions, ", ")))
	} else {
		prompt.WriteString("- No specific dietary restrictions\n")
	}
	if len(constraints.Allergies) > 0 {
		prompt.WriteString(fmt.Sprintf("- Allergies to avoid: %s\n", strings.Join(constraints.Allergies, ", ")))
	} else {
		prompt.WriteString("- No known allergies\n")
	}
	if len(constraints.Cuisines) > 0 {
		prompt.WriteString(fmt.Sprintf("- Preferred cuisines: %s\n", strings.Join(constraints.Cuisines, ", ")))
	} else {
		prompt.WriteString("- Any cuisine\n")
	}
	if constraints.CalorieTarget > 0 {
		prompt.WriteString(fmt.Sprintf("- Target calories per day: %d\n", constraints.CalorieTarget))
	} else {
		prompt.WriteString("- No calorie target\n")
	}

	prompt.WriteString("\nReturn ONLY a valid JSON array with this exact structure:\n")
	prompt.WriteString(`[
  {
    "day": "Monday",
    "breakfastId": "Recipe ID string",
    "lunchId": "Recipe ID string",
    "dinnerId": "Recipe ID string"
  }
]`)
	prompt.WriteString("\n\nRules:\n")
	prompt.WriteString(fmt.Sprintf("- Generate exactly %d days\n", days))
	prompt.WriteString("- For each meal, provide the \"ID\" from the Available Recipes list provided above.\n")
	prompt.WriteString("- IMPORTANT: Ensure MAXIMUM variety. Use as many different unique recipes as possible from the list.\n")
	prompt.WriteString("- Try NOT to repeat the same recipe within the same day or even the same week if enough unique recipes are available.\n")
	prompt.WriteString("- Each meal must be safe for the given restrictions and allergies.\n")
	prompt.WriteString("- Return ONLY the JSON array, no additional text.\n\n")
	prompt.WriteString("JSON:")

	return prompt.String()
}

// BuildSubstitutionPrompt asks for replacements of an ingredient
func BuildSubstitutionPrompt(ingredient string, restrictions []string, recipeTitle string) string {
	var prompt strings.Builder

	context := ""
	if recipeTitle != "" {
		context = fmt.Sprintf(" in the context of the recipe %q", recipeTitle)
	}
	prompt.WriteString(fmt.Sprintf("You are a culinary expert. Suggest substitutes for the following ingredient%s.\n\n", context))
	prompt.WriteString(fmt.Sprintf("Ingredient: %q\n", ingredient))
	if len(restrictions) > 0 {
		prompt.WriteString(fmt.Sprintf("Dietary restrictions: %s\n\n", strings.Join(restrictions, ", ")))
	} else {
		prompt.WriteString("No dietary restrictions\n\n")
	}
	prompt.WriteString("Return ONLY a valid JSON array of substitution objects:\n")
	prompt.WriteString(`[
  {
    "substitute": "Ingredient name",
    "reason": "Why this is a good substitute",
    "ratio": "Conversion ratio (e.g., 1:1, 2:1)"
  }
]`)
	prompt.WriteString("\n\nRules:\n")
	prompt.WriteString("- Suggest 3-5 practical substitutes\n")
	prompt.WriteString("- All substitutes must comply with the dietary restrictions\n")
	prompt.WriteString("- Return ONLY the JSON array, no additional text\n\n")
	prompt.WriteString("JSON:")

	return prompt.String()
}

// BuildExplainPrompt asks for a beginner-friendly rendition of a recipe
func BuildExplainPrompt(rec *recipe.Recipe) string {
	var prompt strings.Builder

	ingredients := make([]string, 0, len(rec.Ingredients()))
	for _, ing := range rec.Ingredients() {
		ingredients = append(ingredients, strings.TrimSpace(strings.Join([]string{ing.Quantity, ing.Unit, ing.Name}, " ")))
	}

	prompt.WriteString("You are a friendly cooking instructor. Explain this recipe in simple, encouraging terms.\n\n")
	prompt.WriteString(fmt.Sprintf("Recipe: %s\n", rec.Title()))
	prompt.WriteString(fmt.Sprintf("Ingredients: %s\n", strings.Join(ingredients, ", ")))
	prompt.WriteString(fmt.Sprintf("Instructions: %s\n\n", strings.Join(rec.Instructions(), " ")))
	prompt.WriteString("Provide a JSON object with:\n")
	prompt.WriteString(`{
  "simplifiedSteps": ["Step 1 in simple language", "Step 2...", ...],
  "nutritionalHighlights": "Brief nutritional benefits",
  "tips": ["Helpful tip 1", "Helpful tip 2", ...]
}`)
	prompt.WriteString("\n\nRules:\n")
	prompt.WriteString("- Use simple, encouraging language\n")
	prompt.WriteString("- Provide 2-3 helpful cooking tips\n")
	prompt.WriteString("- Return ONLY the JSON object, no additional text\n\n")
	prompt.WriteString("JSON:")

	return prompt.String()
}

// BuildDietaryValidationPrompt asks whether a recipe fits restrictions
func BuildDietaryValidationPrompt(rec *recipe.Recipe, restrictions []string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a dietary compliance expert. Analyze if this recipe is safe for the given dietary restrictions.\n\n")
	prompt.WriteString(fmt.Sprintf("Recipe: %s\n", rec.Title()))
	prompt.WriteString(fmt.Sprintf("Ingredients: %s\n", strings.Join(rec.IngredientNames(), ", ")))
	prompt.WriteString(fmt.Sprintf("Dietary Restrictions: %s\n\n", strings.Join(restrictions, ", ")))
	prompt.WriteString("Return ONLY a valid JSON object:\n")
	prompt.WriteString(`{
  "isValid": true/false,
  "warnings": ["Warning 1", "Warning 2", ...],
  "alternatives": ["Alternative suggestion 1", ...]
}`)
	prompt.WriteString("\n\nRules:\n")
	prompt.WriteString("- isValid should be false if ANY ingredient violates restrictions\n")
	prompt.WriteString("- Provide specific warnings about problematic ingredients\n")
	prompt.WriteString("- Suggest alternatives if recipe is not valid\n")
	prompt.WriteString("- Return ONLY the JSON object, no additional text\n\n")
	prompt.WriteString("JSON:")

	return prompt.String()
}
