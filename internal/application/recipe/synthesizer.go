package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recipewise/server/internal/application/ai"
	"github.com/recipewise/server/internal/application/events"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

// PlaceholderImageURL is attached when no image source produced anything
const PlaceholderImageURL = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=400&h=300&fit=crop"

// ImageResolver finds a picture for a recipe title
type ImageResolver interface {
	Resolve(ctx context.Context, title string) (string, bool)
}

// SynthesizerConfig bounds the image fan-out
type SynthesizerConfig struct {
	ImageConcurrency int
}

// Synthesizer generates, illustrates and stores new recipes
type Synthesizer struct {
	llm       ai.Invoker
	images    ImageResolver
	recipes   outbound.RecipeRepository
	publisher *events.Publisher
	cfg       SynthesizerConfig
	metrics   outbound.PipelineMetrics
	logger    *zap.Logger
}

// NewSynthesizer creates a recipe synthesizer. publisher may be nil.
func NewSynthesizer(
	llm ai.Invoker,
	images ImageResolver,
	recipes outbound.RecipeRepository,
	publisher *events.Publisher,
	cfg SynthesizerConfig,
	metrics outbound.PipelineMetrics,
	logger *zap.Logger,
) *Synthesizer {
	if cfg.ImageConcurrency < 1 {
		cfg.ImageConcurrency = 4
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Synthesizer{
		llm:       llm,
		images:    images,
		recipes:   recipes,
		publisher: publisher,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger.Named("recipe-synthesizer"),
	}
}

// Synthesize generates up to count recipes for brief, attaches an image to
// each, and persists them as AI-generated. A recipe that fails to persist is
// dropped from the result.
func (s *Synthesizer) Synthesize(ctx context.Context, brief string, count int, creatorID uuid.UUID) ([]*recipe.Recipe, error) {
	if count < 1 {
		return []*recipe.Recipe{}, nil
	}

	start := time.Now()
	s.logger.Info("Synthesizing recipes",
		zap.String("brief", brief),
		zap.Int("count", count),
	)

	var candidates []candidateRecipe
	if err := s.llm.InvokeArray(ctx, ai.BuildRecipePrompt(brief, count), &candidates); err != nil {
		return nil, errors.NewSynthesisError("recipe generation failed", err)
	}

	recipes := s.admit(candidates, count, creatorID)
	if len(recipes) == 0 {
		return nil, errors.NewSynthesisError(
			fmt.Sprintf("none of %d generated recipes passed validation", len(candidates)), nil)
	}

	s.attachImages(ctx, recipes)

	saved := make([]*recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if err := s.recipes.Create(ctx, r); err != nil {
			s.logger.Error("Failed to store synthesized recipe",
				zap.String("recipe_id", r.ID().String()),
				zap.String("title", r.Title()),
				zap.Error(err),
			)
			continue
		}
		s.publisher.Publish(ctx, r.Events())
		saved = append(saved, r)
	}

	s.metrics.RecipesSynthesized(len(saved))
	if len(saved) == 0 {
		return nil, errors.NewSynthesisError("no synthesized recipe could be stored", nil)
	}

	s.logger.Info("Recipes synthesized",
		zap.Int("requested", count),
		zap.Int("generated", len(candidates)),
		zap.Int("stored", len(saved)),
		zap.Duration("duration", time.Since(start)),
	)
	return saved, nil
}

// admit validates candidates through the domain constructor and keeps at most count.
func (s *Synthesizer) admit(candidates []candidateRecipe, count int, creatorID uuid.UUID) []*recipe.Recipe {
	admitted := make([]*recipe.Recipe, 0, min(len(candidates), count))
	for i, c := range candidates {
		if len(admitted) == count {
			break
		}

		r, err := recipe.NewRecipe(c.attributes(creatorID))
		if err != nil {
			s.logger.Warn("Discarding invalid generated recipe",
				zap.Int("index", i),
				zap.String("title", string(c.Title)),
				zap.Error(err),
			)
			continue
		}
		admitted = append(admitted, r)
	}
	return admitted
}

// attachImages resolves one image per recipe concurrently. Tasks never fail,
// so every resolution runs to completion.
func (s *Synthesizer) attachImages(ctx context.Context, recipes []*recipe.Recipe) {
	refs := make([]string, len(recipes))

	var g errgroup.Group
	g.SetLimit(s.cfg.ImageConcurrency)
	for i, r := range recipes {
		g.Go(func() error {
			defer func() {
				if v := recover(); v != nil {
					s.logger.Error("Image resolution panicked",
						zap.String("title", r.Title()),
						zap.Any("panic", v),
					)
				}
			}()
			if ref, ok := s.images.Resolve(ctx, r.Title()); ok {
				refs[i] = ref
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range recipes {
		ref := refs[i]
		if ref == "" {
			ref = PlaceholderImageURL
		}
		_ = r.AttachImage(ref)
	}
}

type candidateIngredient struct {
	Name     ai.FlexString `json:"name"`
	Quantity ai.FlexString `json:"quantity"`
	Unit     ai.FlexString `json:"unit"`
}

// UnmarshalJSON also accepts a bare ingredient name
func (c *candidateIngredient) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Name)
	}

	type plain candidateIngredient
	return json.Unmarshal(data, (*plain)(c))
}

type candidateRecipe struct {
	Title        ai.FlexString         `json:"title"`
	Description  ai.FlexString         `json:"description"`
	Ingredients  []candidateIngredient `json:"ingredients"`
	Instructions ai.FlexStrings        `json:"instructions"`
	CookingTime  ai.FlexInt            `json:"cookingTime"`
	Servings     ai.FlexInt            `json:"servings"`
	Difficulty   ai.FlexString         `json:"difficulty"`
	DietaryTags  ai.FlexStrings        `json:"dietaryTags"`
	Cuisine      ai.FlexString         `json:"cuisine"`
}

func (c candidateRecipe) attributes(creatorID uuid.UUID) recipe.Attributes {
	ingredients := make([]recipe.Ingredient, 0, len(c.Ingredients))
	for _, ing := range c.Ingredients {
		ingredients = append(ingredients, recipe.Ingredient{
			Name:     string(ing.Name),
			Quantity: string(ing.Quantity),
			Unit:     string(ing.Unit),
		})
	}

	tags := make([]recipe.DietaryTag, 0, len(c.DietaryTags))
	for _, t := range c.DietaryTags {
		tags = append(tags, recipe.DietaryTag(t))
	}

	return recipe.Attributes{
		Title:        string(c.Title),
		Description:  string(c.Description),
		Ingredients:  ingredients,
		Instructions: c.Instructions,
		CookingTime:  int(c.CookingTime),
		Servings:     int(c.Servings),
		Difficulty:   recipe.DifficultyLevel(c.Difficulty),
		Cuisine:      recipe.CuisineType(c.Cuisine),
		DietaryTags:  tags,
		Source:       recipe.SourceAI,
		CreatorID:    creatorID,
	}
}
