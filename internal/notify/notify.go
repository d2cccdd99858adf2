// Package notify delivers replies and digests to the messaging collaborator.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
)

// Message is one outbound reply. Image is optional; ErrorCode is set on rejections.
type Message struct {
	ChatID    string         `json:"chatId"`
	Text      string         `json:"text"`
	Image     []byte         `json:"image,omitempty"`
	ImageName string         `json:"imageName,omitempty"`
	ErrorCode apperrors.Kind `json:"errorCode,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// Notifier sends a message to a chat.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier only logs messages. Used when no webhook is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, msg Message) error {
	logger.Info().
		Str("chat_id", msg.ChatID).
		Str("error_code", string(msg.ErrorCode)).
		Bool("has_image", len(msg.Image) > 0).
		Msg(msg.Text)
	return nil
}

// WebhookNotifier POSTs messages as JSON to the collaborator. Image bytes are base64
// encoded by encoding/json.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{url: url, client: &http.Client{Timeout: timeout}}
}

func (w *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify webhook failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Safe wraps a Notifier so delivery failures are logged and swallowed.
type Safe struct {
	Next Notifier
}

func (s Safe) Notify(ctx context.Context, msg Message) error {
	if err := s.Next.Notify(ctx, msg); err != nil {
		logger.Error().Err(err).Str("chat_id", msg.ChatID).Msg("Failed to deliver notification")
	}
	return nil
}

// New picks the webhook notifier when url is set, the log notifier otherwise.
func New(url string) Notifier {
	if url == "" {
		return LogNotifier{}
	}
	return Safe{Next: NewWebhookNotifier(url, 0)}
}
