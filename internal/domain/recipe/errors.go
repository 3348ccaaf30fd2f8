package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Entity validation errors
	ErrTitleTooShort          = errors.New("recipe title must be at least 3 characters")
	ErrTitleTooLong           = errors.New("recipe title must not exceed 200 characters")
	ErrDescriptionTooLong     = errors.New("recipe description must not exceed 2000 characters")
	ErrInvalidServings        = errors.New("servings must be greater than 0")
	ErrInvalidCookingTime     = errors.New("cooking time must be at least 1 minute")
	ErrNoIngredients          = errors.New("recipe must have at least one ingredient")
	ErrIngredientNameRequired = errors.New("ingredient name is required")
	ErrNoInstructions         = errors.New("recipe must have at least one instruction")
	ErrEmptyImageURL          = errors.New("image url must not be empty")

	ErrRecipeNotFound = errors.New("recipe not found")
)
