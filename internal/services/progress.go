package services

import (
	"context"
	"fmt"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/models"
	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"gorm.io/gorm"
)

// MaxLeaderboardSize is the largest leaderboard a single request may ask for.
const MaxLeaderboardSize = 100

type ItemCount struct {
	ItemID   uint   `json:"itemId"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Count    int64  `json:"count" gorm:"column:total"`
}

type Progress struct {
	UserID      string      `json:"userId"`
	DisplayName string      `json:"displayName"`
	Total       int64       `json:"total"`
	Items       []ItemCount `json:"items"`
	Badges      []string    `json:"badges"`
}

// DayCount is the number of contributions made on one calendar date.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD in the reporter's time zone
	Count int64  `json:"count"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank" gorm:"-"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Count       int64  `json:"count" gorm:"column:total"`
}

// Reporter answers read-only progress queries. Each query runs in one read
// transaction, so it never sees half of a submission.
type Reporter struct {
	db      *gorm.DB
	loc     *time.Location
	timeout time.Duration
}

func NewReporter(db *gorm.DB, loc *time.Location, timeout time.Duration) *Reporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Reporter{db: db, loc: loc, timeout: timeout}
}

func (r *Reporter) snapshot(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	db := r.db.WithContext(ctx)
	return storageError(db.Transaction(fn, readOnlyTx(db)))
}

// UserProgress returns the user's total with a per-item breakdown.
func (r *Reporter) UserProgress(ctx context.Context, userID string) (*Progress, error) {
	var progress *Progress
	err := r.snapshot(ctx, func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if isNotFound(err) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return err
		}

		p := &Progress{UserID: user.UserID, DisplayName: user.DisplayName, Badges: user.Badges, Items: []ItemCount{}}
		if err := tx.Model(&models.Contribution{}).Where("user_id = ?", userID).Count(&p.Total).Error; err != nil {
			return err
		}

		err = tx.Table("contributions").
			Select("items.id AS item_id, items.name AS name, items.category AS category, COUNT(contributions.id) AS total").
			Joins("JOIN items ON items.id = contributions.item_id").
			Where("contributions.user_id = ?", userID).
			Group("items.id, items.name, items.category").
			Order("total DESC, items.name ASC").
			Scan(&p.Items).Error
		if err != nil {
			return err
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// ActivityHistogram buckets the user's contributions by calendar date, ascending.
// Dates without contributions are omitted.
func (r *Reporter) ActivityHistogram(ctx context.Context, userID string) ([]DayCount, error) {
	var stamps []time.Time
	err := r.snapshot(ctx, func(tx *gorm.DB) error {
		return tx.Model(&models.Contribution{}).
			Where("user_id = ?", userID).
			Order("created_at ASC").
			Pluck("created_at", &stamps).Error
	})
	if err != nil {
		return nil, err
	}
	return bucketByDate(stamps, r.loc), nil
}

func bucketByDate(stamps []time.Time, loc *time.Location) []DayCount {
	days := []DayCount{}
	for _, ts := range stamps {
		date := ts.In(loc).Format(time.DateOnly)
		if n := len(days); n > 0 && days[n-1].Date == date {
			days[n-1].Count++
			continue
		}
		days = append(days, DayCount{Date: date, Count: 1})
	}
	return days
}

// Leaderboard returns the top n contributors. Equal counts are ordered by registration
// time, then user id.
func (r *Reporter) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 || n > MaxLeaderboardSize {
		return nil, apperrors.InvalidEvent(fmt.Sprintf("leaderboard size must be between 1 and %d", MaxLeaderboardSize))
	}

	entries := []LeaderboardEntry{}
	err := r.snapshot(ctx, func(tx *gorm.DB) error {
		return tx.Table("contributions").
			Select("users.user_id AS user_id, users.display_name AS display_name, COUNT(contributions.id) AS total").
			Joins("JOIN users ON users.user_id = contributions.user_id").
			Group("users.user_id, users.display_name, users.created_at").
			Order("total DESC, users.created_at ASC, users.user_id ASC").
			Limit(n).
			Scan(&entries).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// ContributionReport lists every registered user with their total, including users
// with none, ordered like the leaderboard.
func (r *Reporter) ContributionReport(ctx context.Context) ([]LeaderboardEntry, error) {
	entries := []LeaderboardEntry{}
	err := r.snapshot(ctx, func(tx *gorm.DB) error {
		return tx.Table("users").
			Select("users.user_id AS user_id, users.display_name AS display_name, COUNT(contributions.id) AS total").
			Joins("LEFT JOIN contributions ON contributions.user_id = users.user_id").
			Group("users.user_id, users.display_name, users.created_at").
			Order("total DESC, users.created_at ASC, users.user_id ASC").
			Scan(&entries).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
