// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/recipewise/server/internal/domain/mealplan"
	"github.com/recipewise/server/internal/domain/recipe"
	"github.com/recipewise/server/internal/domain/user"
	"github.com/recipewise/server/internal/ports/outbound"
)

// MockTextModel provides a mock implementation of outbound.TextModel
type MockTextModel struct {
	mock.Mock
}

func (m *MockTextModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockTextModel) Name() string {
	return "mock"
}

// MockImageModel provides a mock implementation of outbound.ImageModel
type MockImageModel struct {
	mock.Mock
}

func (m *MockImageModel) GenerateImage(ctx context.Context, prompt string) (*outbound.InlineImage, error) {
	args := m.Called(ctx, prompt)
	if img := args.Get(0); img != nil {
		return img.(*outbound.InlineImage), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockImageTier provides a mock implementation of outbound.ImageTier
type MockImageTier struct {
	mock.Mock
	TierName string
}

func (m *MockImageTier) Name() string {
	return m.TierName
}

func (m *MockImageTier) Resolve(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

// MockObjectStorage provides a mock implementation of outbound.ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

// MockRecipeRepository provides a mock implementation of RecipeRepository.
// Created recipes are remembered so FindByID can serve them back.
type MockRecipeRepository struct {
	mock.Mock
	recipes map[uuid.UUID]*recipe.Recipe
	mu      sync.RWMutex
}

// NewMockRecipeRepository creates a new mock recipe repository
func NewMockRecipeRepository() *MockRecipeRepository {
	return &MockRecipeRepository{
		recipes: make(map[uuid.UUID]*recipe.Recipe),
	}
}

func (m *MockRecipeRepository) Create(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)

	if args.Error(0) == nil {
		m.mu.Lock()
		m.recipes[r.ID()] = r
		m.mu.Unlock()
	}

	return args.Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, exists := m.recipes[id]; exists {
		return r, nil
	}

	if r := args.Get(0); r != nil {
		return r.(*recipe.Recipe), nil
	}
	return nil, recipe.ErrRecipeNotFound
}

func (m *MockRecipeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	args := m.Called(ctx, ids)
	if r := args.Get(0); r != nil {
		return r.([]*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) Search(ctx context.Context, filter outbound.RecipeFilter) ([]*recipe.Recipe, error) {
	args := m.Called(ctx, filter)
	if r := args.Get(0); r != nil {
		return r.([]*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, offset, limit int) ([]*recipe.Recipe, int64, error) {
	args := m.Called(ctx, offset, limit)
	var recipes []*recipe.Recipe
	if r := args.Get(0); r != nil {
		recipes = r.([]*recipe.Recipe)
	}
	return recipes, args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) Update(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	if args.Error(0) == nil {
		m.mu.Lock()
		delete(m.recipes, id)
		m.mu.Unlock()
	}
	return args.Error(0)
}

// Stored returns the recipes passed to a successful Create
func (m *MockRecipeRepository) Stored() []*recipe.Recipe {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*recipe.Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		out = append(out, r)
	}
	return out
}

// MockMealPlanRepository provides a mock implementation of MealPlanRepository
type MockMealPlanRepository struct {
	mock.Mock
}

func (m *MockMealPlanRepository) Create(ctx context.Context, plan *mealplan.MealPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockMealPlanRepository) Update(ctx context.Context, plan *mealplan.MealPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockMealPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*mealplan.MealPlan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMealPlanRepository) FindLatestManual(ctx context.Context, ownerID uuid.UUID) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, ownerID)
	if p := args.Get(0); p != nil {
		return p.(*mealplan.MealPlan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMealPlanRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*mealplan.MealPlan, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if p := args.Get(0); p != nil {
		return p.([]*mealplan.MealPlan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMealPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSavedRecipeRepository provides a mock implementation of SavedRecipeRepository
type MockSavedRecipeRepository struct {
	mock.Mock
}

func (m *MockSavedRecipeRepository) Toggle(ctx context.Context, profileID, recipeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, profileID, recipeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSavedRecipeRepository) ListRecipes(ctx context.Context, profileID uuid.UUID) ([]*recipe.Recipe, error) {
	args := m.Called(ctx, profileID)
	if r := args.Get(0); r != nil {
		return r.([]*recipe.Recipe), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockProfileRepository provides a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*user.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) FindByEmail(ctx context.Context, email string) (*user.Profile, error) {
	args := m.Called(ctx, email)
	if p := args.Get(0); p != nil {
		return p.(*user.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCacheRepository is a mock implementation of the cache repository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockMessageBus records published messages
type MockMessageBus struct {
	messages []outbound.Message
	mu       sync.Mutex
}

func (m *MockMessageBus) Publish(ctx context.Context, topic string, message outbound.Message) error {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	m.mu.Unlock()
	return nil
}

// Types returns the type of every published message in order
func (m *MockMessageBus) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		types = append(types, msg.Type)
	}
	return types
}
