package services

import (
	"context"
	"fmt"

	"github.com/MLBB-BOSS/MLSnap/internal/notify"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
)

// Digest sends every contributor a summary of their total.
type Digest struct {
	reporter *Reporter
	notifier notify.Notifier
}

func NewDigest(reporter *Reporter, notifier notify.Notifier) *Digest {
	return &Digest{reporter: reporter, notifier: notifier}
}

// Run notifies each user with at least one contribution and returns how many messages
// were delivered. A failed delivery is logged and does not stop the run.
func (d *Digest) Run(ctx context.Context) (int, error) {
	entries, err := d.reporter.ContributionReport(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, entry := range entries {
		if entry.Count == 0 {
			// Ordered by count, nobody after this has contributed
			break
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		msg := notify.Message{
			ChatID: entry.UserID,
			Text:   fmt.Sprintf("Hi, %s! You have uploaded %d screenshots. Keep it up!", entry.DisplayName, entry.Count),
		}
		if err := d.notifier.Notify(ctx, msg); err != nil {
			logger.Error().Err(err).Str("user_id", entry.UserID).Msg("Failed to send digest")
			continue
		}
		sent++
	}

	logger.Info().Int("sent", sent).Int("users", len(entries)).Msg("Digest finished")
	return sent, nil
}
