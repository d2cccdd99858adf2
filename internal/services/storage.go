package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"gorm.io/gorm"
)

// DefaultStorageTimeout bounds every storage unit when no timeout is configured.
const DefaultStorageTimeout = 5 * time.Second

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStorageTimeout
	}
	return context.WithTimeout(ctx, d)
}

// storageError passes domain errors through and turns everything else,
// including deadline hits, into a retryable StorageFailure.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.Storage(err)
}

// readOnlyTx returns options for a consistent multi-statement read.
// SQLite transactions are already serializable.
func readOnlyTx(db *gorm.DB) *sql.TxOptions {
	if db.Dialector.Name() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
