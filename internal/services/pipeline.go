package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/models"
	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionState is where a user stands in the select-then-submit flow.
type SessionState string

const (
	StateNoItemSelected SessionState = "NO_ITEM_SELECTED"
	StateItemSelected   SessionState = "ITEM_SELECTED"
)

// Outcome is the terminal result of one image submission.
type Outcome string

const (
	OutcomeAccepted            Outcome = "ACCEPTED"
	OutcomeRejectedDuplicate   Outcome = "REJECTED_DUPLICATE"
	OutcomeRejectedNotAnImage  Outcome = "REJECTED_NOT_AN_IMAGE"
	OutcomeRejectedNoItem      Outcome = "REJECTED_NO_ITEM"
	OutcomeRejectedRateLimited Outcome = "REJECTED_RATE_LIMITED"
	OutcomeFailed              Outcome = "FAILED"
)

// OutcomeOf classifies the error returned by SubmitImage.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, apperrors.ErrDuplicateSubmission):
		return OutcomeRejectedDuplicate
	case errors.Is(err, apperrors.ErrNotAnImage):
		return OutcomeRejectedNotAnImage
	case errors.Is(err, apperrors.ErrNoItemSelected):
		return OutcomeRejectedNoItem
	case errors.Is(err, apperrors.ErrRateLimited):
		return OutcomeRejectedRateLimited
	default:
		return OutcomeFailed
	}
}

// Limiter caps how often a user may submit.
type Limiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

// Archiver stores a copy of accepted images outside the database.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// SubmitResult describes an accepted submission.
type SubmitResult struct {
	Outcome      Outcome      `json:"outcome"`
	Item         models.Item  `json:"item"`
	Total        int64        `json:"total"`
	NewBadges    []string     `json:"newBadges"`
	ScreenshotID uint         `json:"screenshotId"`
	ContentHash  string       `json:"contentHash"`
	Next         *models.Item `json:"next,omitempty"`
}

// Pipeline runs item selection and image submission for one user at a time.
type Pipeline struct {
	db       *gorm.DB
	badges   config.BadgeTable
	timeout  time.Duration
	now      func() time.Time
	limiter  Limiter
	archiver Archiver
}

type Option func(*Pipeline)

// WithTimeout bounds each storage unit.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithClock overrides time.Now for contribution timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLimiter enables per-user submission limits.
func WithLimiter(l Limiter) Option {
	return func(p *Pipeline) { p.limiter = l }
}

// WithArchiver copies accepted images to external storage after commit.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) { p.archiver = a }
}

func NewPipeline(db *gorm.DB, badges config.BadgeTable, opts ...Option) *Pipeline {
	p := &Pipeline{
		db:      db,
		badges:  badges,
		timeout: DefaultStorageTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SelectItem records itemName as the user's current selection. The name must match an
// existing item exactly; otherwise the session is left as it was.
func (p *Pipeline) SelectItem(ctx context.Context, userID, itemName string) (*models.Item, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	db := p.db.WithContext(ctx)

	var item models.Item
	if err := db.Where("name = ?", itemName).First(&item).Error; err != nil {
		if isNotFound(err) {
			return nil, apperrors.UnknownItem(itemName)
		}
		return nil, storageError(err)
	}

	selection := models.Selection{UserID: userID, ItemID: &item.ID, UpdatedAt: p.now()}
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"item_id", "updated_at"}),
	}).Create(&selection).Error
	if err != nil {
		return nil, storageError(err)
	}
	return &item, nil
}

// SessionState returns the user's state and the selected item, if any.
func (p *Pipeline) SessionState(ctx context.Context, userID string) (SessionState, *models.Item, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	item, err := selectedItem(p.db.WithContext(ctx), userID)
	if err != nil {
		return "", nil, storageError(err)
	}
	if item == nil {
		return StateNoItemSelected, nil, nil
	}
	return StateItemSelected, item, nil
}

// SubmitImage credits image to the user's selected item.
//
// Rejections (no selection, not an image, duplicate, rate limit) leave all state as it
// was. On success the screenshot, the contribution, any new badges and the cleared
// selection are committed together. A storage failure after the limiter still counts
// against the user's limit.
func (p *Pipeline) SubmitImage(ctx context.Context, userID string, image []byte) (*SubmitResult, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	db := p.db.WithContext(ctx)

	item, err := selectedItem(db, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if item == nil {
		return nil, apperrors.ErrNoItemSelected
	}

	mime, ok := DetectImage(image)
	if !ok {
		return nil, apperrors.ErrNotAnImage
	}

	hash := ContentHash(image)

	// Resent duplicates are answered before the limiter so they do not use up a slot.
	dup, err := hasScreenshot(db, userID, hash)
	if err != nil {
		return nil, storageError(err)
	}
	if dup {
		return nil, apperrors.ErrDuplicateSubmission
	}

	if p.limiter != nil {
		allowed, err := p.limiter.Allow(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("Submission limiter unavailable")
		} else if !allowed {
			return nil, apperrors.ErrRateLimited
		}
	}

	now := p.now()
	result := &SubmitResult{Outcome: OutcomeAccepted, ContentHash: hash}

	err = db.Transaction(func(tx *gorm.DB) error {
		current, err := selectedItem(tx, userID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperrors.ErrNoItemSelected
		}

		dup, err := hasScreenshot(tx, userID, hash)
		if err != nil {
			return err
		}
		if dup {
			return apperrors.ErrDuplicateSubmission
		}

		// Claim the selection before writing. A concurrent submission that read the same
		// selection blocks on this row and then matches nothing.
		claim := tx.Model(&models.Selection{}).
			Where("user_id = ? AND item_id = ?", userID, current.ID).
			Updates(map[string]interface{}{"item_id": nil, "updated_at": now})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected != 1 {
			return apperrors.ErrNoItemSelected
		}

		shot := models.Screenshot{
			UserID:      userID,
			ItemID:      current.ID,
			ImageData:   image,
			ContentHash: hash,
			MimeType:    mime,
			CreatedAt:   now,
		}
		if err := tx.Omit(clause.Associations).Create(&shot).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateSubmission
			}
			return err
		}

		contribution := models.Contribution{
			UserID:       userID,
			ItemID:       current.ID,
			ScreenshotID: shot.ID,
			CreatedAt:    now,
		}
		if err := tx.Omit(clause.Associations).Create(&contribution).Error; err != nil {
			return err
		}

		total, awarded, err := awardBadges(tx, p.badges, userID, now)
		if err != nil {
			return err
		}

		result.Item = *current
		result.Total = total
		result.NewBadges = awarded
		result.ScreenshotID = shot.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateSubmission) {
			logger.Info().Str("user_id", userID).Str("hash", hash).Msg("Duplicate screenshot rejected")
		}
		return nil, storageError(err)
	}

	logger.Info().
		Str("user_id", userID).
		Str("item", result.Item.Name).
		Int64("total", result.Total).
		Strs("new_badges", result.NewBadges).
		Msg("Screenshot accepted")

	// Hint only: the user still has to select the next item explicitly.
	if next, err := p.nextItem(ctx, userID, result.Item.Category); err == nil {
		result.Next = next
	}

	p.archive(ctx, userID, hash, mime, image)
	return result, nil
}

// RemainingItems lists items in category the user has not contributed to yet, in
// catalog order.
func (p *Pipeline) RemainingItems(ctx context.Context, userID, category string) ([]models.Item, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	items, err := remainingItems(p.db.WithContext(ctx), userID, category)
	return items, storageError(err)
}

func (p *Pipeline) nextItem(ctx context.Context, userID, category string) (*models.Item, error) {
	items, err := remainingItems(p.db.WithContext(ctx), userID, category)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

func (p *Pipeline) archive(ctx context.Context, userID, hash, mime string, image []byte) {
	if p.archiver == nil {
		return
	}
	key := fmt.Sprintf("screenshots/%s/%s%s", userID, hash, imageExtension(mime))
	if _, err := p.archiver.Put(ctx, key, mime, image); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to archive screenshot")
	}
}

func selectedItem(db *gorm.DB, userID string) (*models.Item, error) {
	var selection models.Selection
	err := db.Preload("Item").Where("user_id = ?", userID).First(&selection).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if selection.ItemID == nil || selection.Item == nil {
		return nil, nil
	}
	return selection.Item, nil
}

func hasScreenshot(db *gorm.DB, userID, hash string) (bool, error) {
	var n int64
	err := db.Model(&models.Screenshot{}).
		Where("user_id = ? AND content_hash = ?", userID, hash).
		Count(&n).Error
	return n > 0, err
}

func remainingItems(db *gorm.DB, userID, category string) ([]models.Item, error) {
	done := db.Model(&models.Contribution{}).Select("item_id").Where("user_id = ?", userID)

	items := []models.Item{}
	err := db.Where("category = ? AND id NOT IN (?)", category, done).
		Order("id ASC").
		Find(&items).Error
	return items, err
}
