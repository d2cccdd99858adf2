package services

import (
	"context"
	"strings"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/models"
	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"github.com/MLBB-BOSS/MLSnap/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry maps external user handles to User records.
type Registry struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewRegistry(db *gorm.DB, timeout time.Duration) *Registry {
	return &Registry{db: db, timeout: timeout}
}

// GetOrCreateUser returns the user with externalID, creating it with displayName on
// first contact. An existing user is returned unchanged.
func (r *Registry) GetOrCreateUser(ctx context.Context, externalID, displayName string) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperrors.InvalidEvent("user handle is required")
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	db := r.db.WithContext(ctx)
	candidate := models.User{UserID: externalID, DisplayName: utils.CleanDisplayName(displayName)}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&candidate)
	if res.Error != nil {
		return nil, storageError(res.Error)
	}
	if res.RowsAffected == 1 {
		logger.Info().Str("user_id", externalID).Msg("Registered new user")
	}

	user, err := findUser(db, externalID)
	if err != nil {
		return nil, storageError(err)
	}
	return user, nil
}

// FindUser loads a user with its badges.
func (r *Registry) FindUser(ctx context.Context, externalID string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user, err := findUser(r.db.WithContext(ctx), externalID)
	if isNotFound(err) {
		return nil, apperrors.ErrNotFound
	}
	return user, storageError(err)
}

// RenameUser is the explicit path for changing a display name.
func (r *Registry) RenameUser(ctx context.Context, externalID, displayName string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", externalID).
		Update("display_name", utils.CleanDisplayName(displayName))
	if res.Error != nil {
		return storageError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UserIDs lists every registered user in registration order.
func (r *Registry) UserIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Order("created_at ASC, user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, storageError(err)
}

func findUser(db *gorm.DB, externalID string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "user_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	badges, err := loadBadges(db, externalID)
	if err != nil {
		return nil, err
	}
	user.Badges = badges
	return &user, nil
}

func loadBadges(db *gorm.DB, userID string) ([]string, error) {
	badges := []string{}
	err := db.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Order("position ASC").
		Pluck("badge", &badges).Error
	return badges, err
}
