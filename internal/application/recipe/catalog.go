package recipe

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/application/events"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// CatalogService implements inbound.CatalogService
type CatalogService struct {
	recipes   outbound.RecipeRepository
	saved     outbound.SavedRecipeRepository
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewCatalogService creates the recipe catalog service. publisher may be nil.
func NewCatalogService(
	recipes outbound.RecipeRepository,
	saved outbound.SavedRecipeRepository,
	publisher *events.Publisher,
	logger *zap.Logger,
) inbound.CatalogService {
	return &CatalogService{
		recipes:   recipes,
		saved:     saved,
		publisher: publisher,
		logger:    logger.Named("catalog-service"),
	}
}

// GetRecipe returns a single stored recipe
func (s *CatalogService) GetRecipe(ctx context.Context, id uuid.UUID) (*inbound.RecipeDTO, error) {
	r, err := s.findRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	return inbound.NewRecipeDTO(r), nil
}

// ListRecipes returns a page of recipes, newest first
func (s *CatalogService) ListRecipes(ctx context.Context, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	page := max(params.Page, 1)
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	recipes, total, err := s.recipes.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, errors.NewStoreError("list recipes", err)
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &inbound.RecipeList{
		Recipes:    inbound.NewRecipeDTOs(recipes),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// CreateRecipe stores a recipe written by the caller
func (s *CatalogService) CreateRecipe(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
	attrs := toAttributes(cmd.Recipe)
	attrs.Source = recipe.SourceUser
	attrs.CreatorID = cmd.UserID

	r, err := recipe.NewRecipe(attrs)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.recipes.Create(ctx, r); err != nil {
		return nil, errors.NewStoreError("create recipe", err)
	}
	s.publisher.Publish(ctx, r.Events())

	s.logger.Info("Recipe created",
		zap.String("recipe_id", r.ID().String()),
		zap.String("user_id", cmd.UserID.String()),
	)
	return inbound.NewRecipeDTO(r), nil
}

// UpdateRecipe replaces the editable fields of one of the caller's recipes
func (s *CatalogService) UpdateRecipe(ctx context.Context, cmd inbound.UpdateRecipeCommand) (*inbound.RecipeDTO, error) {
	r, err := s.ownedRecipe(ctx, cmd.UserID, cmd.RecipeID)
	if err != nil {
		return nil, err
	}

	if err := r.Update(toAttributes(cmd.Recipe)); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.recipes.Update(ctx, r); err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
		}
		return nil, errors.NewStoreError("update recipe", err)
	}
	s.publisher.Publish(ctx, r.Events())

	s.logger.Info("Recipe updated",
		zap.String("recipe_id", r.ID().String()),
		zap.String("user_id", cmd.UserID.String()),
	)
	return inbound.NewRecipeDTO(r), nil
}

// DeleteRecipe removes one of the caller's recipes
func (s *CatalogService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.ownedRecipe(ctx, userID, recipeID); err != nil {
		return err
	}

	if err := s.recipes.Delete(ctx, recipeID); err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return errors.NewRecipeNotFoundError(recipeID.String())
		}
		return errors.NewStoreError("delete recipe", err)
	}

	s.logger.Info("Recipe deleted",
		zap.String("recipe_id", recipeID.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// ToggleSavedRecipe adds the recipe to the caller's collection or removes it
func (s *CatalogService) ToggleSavedRecipe(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	if _, err := s.findRecipe(ctx, recipeID); err != nil {
		return false, err
	}

	saved, err := s.saved.Toggle(ctx, userID, recipeID)
	if err != nil {
		return false, errors.NewStoreError("toggle saved recipe", err)
	}

	s.logger.Debug("Saved recipe toggled",
		zap.String("recipe_id", recipeID.String()),
		zap.String("user_id", userID.String()),
		zap.Bool("saved", saved),
	)
	return saved, nil
}

// ListSavedRecipes returns the caller's collection, most recently saved first
func (s *CatalogService) ListSavedRecipes(ctx context.Context, userID uuid.UUID) ([]*inbound.RecipeDTO, error) {
	recipes, err := s.saved.ListRecipes(ctx, userID)
	if err != nil {
		return nil, errors.NewStoreError("list saved recipes", err)
	}
	return inbound.NewRecipeDTOs(recipes), nil
}

func (s *CatalogService) findRecipe(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	r, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(id.String())
		}
		return nil, errors.NewStoreError("get recipe", err)
	}
	return r, nil
}

// ownedRecipe loads a recipe the caller created. Recipes of other users are
// visible in the catalog, so a foreign recipe is forbidden rather than missing.
func (s *CatalogService) ownedRecipe(ctx context.Context, userID, id uuid.UUID) (*recipe.Recipe, error) {
	r, err := s.findRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(userID) {
		return nil, errors.NewForbiddenError("Only the creator can modify this recipe").
			WithMetadata("recipe_id", id.String())
	}
	return r, nil
}

func toAttributes(in inbound.RecipeInput) recipe.Attributes {
	tags := make([]recipe.DietaryTag, 0, len(in.DietaryTags))
	for _, t := range in.DietaryTags {
		tags = append(tags, recipe.DietaryTag(t))
	}

	return recipe.Attributes{
		Title:        in.Title,
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		CookingTime:  in.CookingTime,
		Servings:     in.Servings,
		Difficulty:   recipe.DifficultyLevel(in.Difficulty),
		Cuisine:      recipe.CuisineType(in.Cuisine),
		DietaryTags:  tags,
		ImageURL:     in.ImageURL,
	}
}
