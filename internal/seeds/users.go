package seeds

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MLBB-BOSS/MLSnap/internal/models"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
)

// UserRegistry is the part of the identity registry the importer needs.
type UserRegistry interface {
	GetOrCreateUser(ctx context.Context, externalID, displayName string) (*models.User, error)
}

// ImportUsers registers users from CSV rows of `user_id,display_name`. Existing users are
// left untouched. Blank lines and a `user_id` header row are skipped.
func ImportUsers(ctx context.Context, registry UserRegistry, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	processed := 0
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return processed, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "user_id") {
			continue
		}
		if len(record) < 2 {
			return processed, fmt.Errorf("line %d: expected user_id,display_name", line)
		}

		if _, err := registry.GetOrCreateUser(ctx, record[0], record[1]); err != nil {
			return processed, fmt.Errorf("line %d: %w", line, err)
		}
		processed++
	}

	logger.Info().Int("rows", processed).Msg("User import finished")
	return processed, nil
}
