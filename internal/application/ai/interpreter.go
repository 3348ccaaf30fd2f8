package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/outbound"
)

// InterpreterConfig controls caching of interpretations
type InterpreterConfig struct {
	EnableCache bool
	CacheTTL    time.Duration
}

// Interpreter turns free-text requests into structured queries. It never
// fails: model errors produce an empty query.
type Interpreter struct {
	llm     Invoker
	cache   outbound.CacheRepository
	cfg     InterpreterConfig
	metrics outbound.PipelineMetrics
	logger  *zap.Logger
}

// NewInterpreter creates a query interpreter. cache may be nil.
func NewInterpreter(llm Invoker, cache outbound.CacheRepository, cfg InterpreterConfig, metrics outbound.PipelineMetrics, logger *zap.Logger) *Interpreter {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Interpreter{
		llm:     llm,
		cache:   cache,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.Named("query-interpreter"),
	}
}

type interpretedQuery struct {
	Ingredients         FlexStrings `json:"ingredients"`
	MealType            FlexString  `json:"mealType"`
	DietaryRestrictions FlexStrings `json:"dietaryRestrictions"`
	Cuisine             FlexString  `json:"cuisine"`
	CookingTime         FlexInt     `json:"cookingTime"`
	Difficulty          FlexString  `json:"difficulty"`
}

// Interpret extracts a StructuredQuery from text
func (i *Interpreter) Interpret(ctx context.Context, text string) recipe.StructuredQuery {
	key := cacheKey(text)
	if cached, ok := i.fromCache(ctx, key); ok {
		return cached
	}

	var raw interpretedQuery
	if err := i.llm.InvokeObject(ctx, BuildQueryPrompt(text), &raw); err != nil {
		i.logger.Warn("Query interpretation failed, continuing with empty query",
			zap.String("query", text),
			zap.Error(err),
		)
		return recipe.EmptyQuery()
	}

	query := recipe.StructuredQuery{
		Ingredients:         raw.Ingredients,
		MealType:            string(raw.MealType),
		DietaryRestrictions: raw.DietaryRestrictions,
		Cuisine:             string(raw.Cuisine),
		CookingTime:         int(raw.CookingTime),
		Difficulty:          string(raw.Difficulty),
	}.Normalize()

	i.logger.Debug("Query interpreted",
		zap.String("query", text),
		zap.Strings("ingredients", query.Ingredients),
		zap.String("cuisine", query.Cuisine),
	)

	i.toCache(ctx, key, query)
	return query
}

func (i *Interpreter) fromCache(ctx context.Context, key string) (recipe.StructuredQuery, bool) {
	if !i.cfg.EnableCache || i.cache == nil {
		return recipe.StructuredQuery{}, false
	}

	data, err := i.cache.Get(ctx, key)
	if err != nil || len(data) == 0 {
		i.metrics.CacheOperation("get", "miss")
		return recipe.StructuredQuery{}, false
	}

	var query recipe.StructuredQuery
	if err := json.Unmarshal(data, &query); err != nil {
		i.metrics.CacheOperation("get", "error")
		return recipe.StructuredQuery{}, false
	}
	i.metrics.CacheOperation("get", "hit")
	return query.Normalize(), true
}

func (i *Interpreter) toCache(ctx context.Context, key string, query recipe.StructuredQuery) {
	if !i.cfg.EnableCache || i.cache == nil {
		return
	}

	data, err := json.Marshal(query)
	if err != nil {
		return
	}
	if err := i.cache.Set(ctx, key, data, i.cfg.CacheTTL); err != nil {
		i.metrics.CacheOperation("set", "error")
		i.logger.Debug("Failed to cache interpretation", zap.Error(err))
		return
	}
	i.metrics.CacheOperation("set", "success")
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return "query:" + hex.EncodeToString(sum[:])
}
