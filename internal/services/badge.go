package services

import (
	"context"
	"fmt"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/models"
	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DueBadges returns every badge whose threshold is <= total and that is not in owned,
// in ascending threshold order. A jump across several thresholds returns all of them.
func DueBadges(table config.BadgeTable, total int64, owned []string) []string {
	ownedSet := make(map[string]bool, len(owned))
	for _, name := range owned {
		ownedSet[name] = true
	}

	var due []string
	for _, tier := range table.Tiers() {
		if tier.Threshold > total {
			break
		}
		if ownedSet[tier.Name] {
			continue
		}
		due = append(due, tier.Name)
	}
	return due
}

// BadgeService applies the badge table to stored users.
type BadgeService struct {
	db      *gorm.DB
	table   config.BadgeTable
	timeout time.Duration
	now     func() time.Time
}

func NewBadgeService(db *gorm.DB, table config.BadgeTable, timeout time.Duration) *BadgeService {
	return &BadgeService{db: db, table: table, timeout: timeout, now: time.Now}
}

// EvaluateBadges awards every badge the user's current total has earned and returns the
// newly awarded names. Calling it again with an unchanged total awards nothing.
func (s *BadgeService) EvaluateBadges(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var awarded []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.User{}).Where("user_id = ?", userID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return apperrors.ErrNotFound
		}

		var err error
		_, awarded, err = awardBadges(tx, s.table, userID, s.now())
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	return awarded, nil
}

// EvaluateAll runs EvaluateBadges for each user and returns the new awards by user.
// Users that gained nothing are left out. It stops at the first failure.
func (s *BadgeService) EvaluateAll(ctx context.Context, userIDs []string) (map[string][]string, error) {
	awards := make(map[string][]string)
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			return awards, err
		}
		names, err := s.EvaluateBadges(ctx, id)
		if err != nil {
			return awards, fmt.Errorf("user %s: %w", id, err)
		}
		if len(names) > 0 {
			awards[id] = names
		}
	}
	return awards, nil
}

// awardBadges counts the user's contributions inside tx and inserts the due badges.
// The (user_id, badge) primary key plus ON CONFLICT DO NOTHING keeps awards idempotent
// when two transactions race.
func awardBadges(tx *gorm.DB, table config.BadgeTable, userID string, now time.Time) (int64, []string, error) {
	var total int64
	if err := tx.Model(&models.Contribution{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	owned, err := loadBadges(tx, userID)
	if err != nil {
		return 0, nil, err
	}

	var awarded []string
	for _, name := range DueBadges(table, total, owned) {
		row := models.UserBadge{
			UserID:    userID,
			Badge:     name,
			Position:  len(owned) + len(awarded),
			AwardedAt: now,
		}
		res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return 0, nil, res.Error
		}
		if res.RowsAffected == 1 {
			awarded = append(awarded, name)
			logger.Info().Str("user_id", userID).Str("badge", name).Int64("total", total).Msg("Badge awarded")
		}
	}
	return total, awarded, nil
}
