package recipe

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/ports/inbound"
	"github.com/recipewise/server/internal/ports/outbound"
	"github.com/recipewise/server/pkg/errors"
)

// DefaultMinResults is the catalog size below which recipes are synthesized
const DefaultMinResults = 3

// QueryInterpreter extracts structured fields from free text. It never fails.
type QueryInterpreter interface {
	Interpret(ctx context.Context, text string) recipe.StructuredQuery
}

// RecipeSynthesizer produces and stores new recipes
type RecipeSynthesizer interface {
	Synthesize(ctx context.Context, brief string, count int, creatorID uuid.UUID) ([]*recipe.Recipe, error)
}

// RetrievalConfig configures the orchestrator
type RetrievalConfig struct {
	MinResults int
	// SystemUserEmail identifies the profile credited with recipes
	// synthesized for anonymous requests.
	SystemUserEmail string
}

// RetrievalService implements inbound.RetrievalService
type RetrievalService struct {
	interpreter QueryInterpreter
	catalog     *CatalogSearch
	synthesizer RecipeSynthesizer
	profiles    outbound.ProfileRepository
	cfg         RetrievalConfig
	metrics     outbound.PipelineMetrics
	logger      *zap.Logger
}

// NewRetrievalService creates the retrieval orchestrator. profiles may be nil.
func NewRetrievalService(
	interpreter QueryInterpreter,
	catalog *CatalogSearch,
	synthesizer RecipeSynthesizer,
	profiles outbound.ProfileRepository,
	cfg RetrievalConfig,
	metrics outbound.PipelineMetrics,
	logger *zap.Logger,
) inbound.RetrievalService {
	if cfg.MinResults < 1 {
		cfg.MinResults = DefaultMinResults
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &RetrievalService{
		interpreter: interpreter,
		catalog:     catalog,
		synthesizer: synthesizer,
		profiles:    profiles,
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger.Named("retrieval-service"),
	}
}

// Search answers a free-text request. Catalog matches come first; when there
// are fewer than the minimum, the deficit is synthesized. Interpretation,
// catalog and synthesis failures degrade the result instead of failing it.
func (s *RetrievalService) Search(ctx context.Context, cmd inbound.SearchCommand) (*inbound.SearchResult, error) {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return nil, errors.NewValidationError("query is required")
	}

	start := time.Now()
	query := s.interpreter.Interpret(ctx, text)

	catalog, err := s.catalog.Search(ctx, query, text)
	if err != nil {
		s.logger.Error("Catalog search failed, continuing with no catalog results",
			zap.String("query", text),
			zap.Error(err),
		)
		catalog = nil
	}

	results := make([]*recipe.Recipe, 0, max(len(catalog), s.cfg.MinResults))
	results = append(results, catalog...)

	generated := 0
	if deficit := s.cfg.MinResults - len(catalog); deficit > 0 {
		synthesized, err := s.synthesizer.Synthesize(ctx, text, deficit, s.creatorFor(ctx, cmd.UserID))
		if err != nil {
			s.logger.Error("Recipe synthesis failed, returning catalog results only",
				zap.String("query", text),
				zap.Int("catalog_count", len(catalog)),
				zap.Error(err),
			)
		} else {
			results = append(results, synthesized...)
			generated = len(synthesized)
		}
	}

	s.metrics.RetrievalCompleted(len(catalog), generated)
	s.logger.Info("Search completed",
		zap.String("query", text),
		zap.Int("catalog_count", len(catalog)),
		zap.Int("generated_count", generated),
		zap.Duration("duration", time.Since(start)),
	)

	return &inbound.SearchResult{
		Recipes:          inbound.NewRecipeDTOs(results),
		CatalogCount:     len(catalog),
		GeneratedCount:   generated,
		InterpretedQuery: query,
		Count:            len(results),
	}, nil
}

// creatorFor credits the requesting user, or the system profile for anonymous requests.
func (s *RetrievalService) creatorFor(ctx context.Context, userID *uuid.UUID) uuid.UUID {
	if userID != nil && *userID != uuid.Nil {
		return *userID
	}
	if s.profiles == nil || s.cfg.SystemUserEmail == "" {
		return uuid.Nil
	}

	profile, err := s.profiles.FindByEmail(ctx, s.cfg.SystemUserEmail)
	if err != nil || profile == nil {
		s.logger.Warn("System profile unavailable, synthesizing without a creator",
			zap.String("email", s.cfg.SystemUserEmail),
			zap.Error(err),
		)
		return uuid.Nil
	}
	return profile.ID()
}
