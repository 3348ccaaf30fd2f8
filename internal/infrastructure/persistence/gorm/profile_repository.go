package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/recipewise/server/internal/domain/user"
	"github.com/recipewise/server/internal/ports/outbound"
)

// ProfileRepository reads user profiles using GORM
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) outbound.ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID finds a profile by ID
func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.Profile, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail finds a profile by email, case-insensitively
func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*user.Profile, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *ProfileRepository) first(ctx context.Context, cond string, arg interface{}) (*user.Profile, error) {
	var model ProfileModel

	result := r.db.WithContext(ctx).First(&model, cond, arg)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, user.ErrProfileNotFound
		}
		return nil, result.Error
	}

	return ModelToProfile(&model), nil
}
