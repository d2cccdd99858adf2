package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/notify"
	"github.com/MLBB-BOSS/MLSnap/internal/report"
	"github.com/MLBB-BOSS/MLSnap/internal/services"
	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
	"github.com/MLBB-BOSS/MLSnap/pkg/logger"
)

const helpText = `Commands:
/start - register and see how it works
/items - list roles, or /items <role> for heroes you still need
/select <hero> - choose the hero your next screenshot is for
/progress - your totals, badges and activity chart
/leaderboard [n] - top contributors
Send a screenshot after selecting a hero. Each hero must be selected again before the next screenshot.`

// Dispatcher runs one event to completion and returns its replies.
type Dispatcher struct {
	registry *services.Registry
	pipeline *services.Pipeline
	reporter *services.Reporter
	catalog  config.Catalog
	badges   config.BadgeTable
	notifier notify.Notifier
}

func NewDispatcher(
	registry *services.Registry,
	pipeline *services.Pipeline,
	reporter *services.Reporter,
	catalog config.Catalog,
	badges config.BadgeTable,
	notifier notify.Notifier,
) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		pipeline: pipeline,
		reporter: reporter,
		catalog:  catalog,
		badges:   badges,
		notifier: notifier,
	}
}

// Dispatch handles ev and delivers the replies through the notifier, if one is set.
// The returned error is only an invalid event; domain rejections and storage failures
// are replies carrying an error code.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) ([]notify.Message, error) {
	replies, err := d.Handle(ctx, ev)
	if err != nil {
		return nil, err
	}
	if d.notifier != nil {
		for _, msg := range replies {
			if err := d.notifier.Notify(ctx, msg); err != nil {
				logger.Error().Err(err).Str("chat_id", msg.ChatID).Msg("Failed to deliver reply")
			}
		}
	}
	return replies, nil
}

// Handle is Dispatch without delivery.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) ([]notify.Message, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	user, err := d.registry.GetOrCreateUser(ctx, ev.UserID, ev.DisplayName)
	if err != nil {
		return []notify.Message{errorReply(ev.ChatID, err)}, nil
	}

	var replies []notify.Message
	switch ev.Kind {
	case EventStart:
		replies = d.start(ev, user.DisplayName)
	case EventSelectItem:
		replies, err = d.selectItem(ctx, ev)
	case EventSubmitImage:
		replies, err = d.submitImage(ctx, ev)
	case EventRequestProgress:
		replies, err = d.progress(ctx, ev)
	case EventRequestLeaderboard:
		replies, err = d.leaderboard(ctx, ev)
	case EventListItems:
		replies, err = d.listItems(ctx, ev)
	case EventHelp:
		replies = []notify.Message{{ChatID: ev.ChatID, Text: helpText}}
	}
	if err != nil {
		logger.Debug().Err(err).Str("user_id", ev.UserID).Str("kind", string(ev.Kind)).Msg("Event rejected")
		return []notify.Message{errorReply(ev.ChatID, err)}, nil
	}
	return replies, nil
}

func (d *Dispatcher) start(ev Event, name string) []notify.Message {
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("Hi, %s! Thanks for helping collect hero screenshots.\n"+
		"Pick a role with /items, select a hero, then send a screenshot of it.", name)
	return []notify.Message{{ChatID: ev.ChatID, Text: text}}
}

func (d *Dispatcher) selectItem(ctx context.Context, ev Event) ([]notify.Message, error) {
	item, err := d.pipeline.SelectItem(ctx, ev.UserID, strings.TrimSpace(ev.ItemName))
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Selected %s (%s). Now send a screenshot.", item.Name, item.Category)
	return []notify.Message{{ChatID: ev.ChatID, Text: text}}, nil
}

func (d *Dispatcher) submitImage(ctx context.Context, ev Event) ([]notify.Message, error) {
	result, err := d.pipeline.SubmitImage(ctx, ev.UserID, ev.Image)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Screenshot for %s received, thank you! Total: %d.", result.Item.Name, result.Total)
	if tier, ok := d.badges.Next(result.Total); ok {
		fmt.Fprintf(&b, "\n%d more to the %s badge.", tier.Threshold-result.Total, tier.Name)
	}
	if result.Next != nil {
		fmt.Fprintf(&b, "\nNext in %s: %s. Select it to continue.", result.Next.Category, result.Next.Name)
	}
	replies := []notify.Message{{ChatID: ev.ChatID, Text: b.String()}}

	for _, name := range result.NewBadges {
		replies = append(replies, d.badgeReply(ev.ChatID, name))
	}
	return replies, nil
}

func (d *Dispatcher) badgeReply(chatID, name string) notify.Message {
	msg := notify.Message{ChatID: chatID, Text: fmt.Sprintf("New badge: %s!", name)}
	tier, ok := d.badges.Tier(name)
	if !ok {
		return msg
	}
	if tier.Description != "" {
		msg.Text += " " + tier.Description
	}
	if tier.Artwork != "" {
		data, err := os.ReadFile(tier.Artwork)
		if err != nil {
			logger.Warn().Err(err).Str("badge", name).Msg("Badge artwork unavailable")
			return msg
		}
		msg.Image = data
		msg.ImageName = filepath.Base(tier.Artwork)
	}
	return msg
}

func (d *Dispatcher) progress(ctx context.Context, ev Event) ([]notify.Message, error) {
	p, err := d.reporter.UserProgress(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	days, err := d.reporter.ActivityHistogram(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}

	name := p.DisplayName
	if name == "" {
		name = p.UserID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, you have uploaded %d screenshots.", name, p.Total)
	if len(p.Badges) > 0 {
		fmt.Fprintf(&b, "\nBadges: %s", strings.Join(p.Badges, ", "))
	}
	for _, it := range p.Items {
		fmt.Fprintf(&b, "\n%s (%s): %d", it.Name, it.Category, it.Count)
	}
	for _, day := range days {
		fmt.Fprintf(&b, "\n%s: %d", day.Date, day.Count)
	}

	msg := notify.Message{ChatID: ev.ChatID, Text: b.String()}
	if len(days) > 0 {
		chart, err := report.BarChart(report.DayBars(days))
		if err != nil {
			logger.Warn().Err(err).Str("user_id", ev.UserID).Msg("Failed to render activity chart")
		} else {
			msg.Image = chart
			msg.ImageName = "activity.png"
		}
	}
	return []notify.Message{msg}, nil
}

func (d *Dispatcher) leaderboard(ctx context.Context, ev Event) ([]notify.Message, error) {
	entries, err := d.reporter.Leaderboard(ctx, ev.N)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []notify.Message{{ChatID: ev.ChatID, Text: "No screenshots yet. Be the first!"}}, nil
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "Top contributors:")
	for _, e := range entries {
		name := e.DisplayName
		if name == "" {
			name = e.UserID
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %d", e.Rank, name, e.Count))
	}
	return []notify.Message{{ChatID: ev.ChatID, Text: strings.Join(lines, "\n")}}, nil
}

func (d *Dispatcher) listItems(ctx context.Context, ev Event) ([]notify.Message, error) {
	category := strings.TrimSpace(ev.Category)
	if category == "" {
		text := "Roles: " + strings.Join(d.catalog.Categories(), ", ")
		return []notify.Message{{ChatID: ev.ChatID, Text: text}}, nil
	}
	if d.catalog.Items(category) == nil {
		return nil, apperrors.InvalidEvent(fmt.Sprintf("Unknown role %q", category))
	}

	items, err := d.pipeline.RemainingItems(ctx, ev.UserID, category)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []notify.Message{{ChatID: ev.ChatID, Text: fmt.Sprintf("All %s screenshots are in. Thank you!", category)}}, nil
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	text := fmt.Sprintf("%s still needed:\n%s", category, strings.Join(names, "\n"))
	return []notify.Message{{ChatID: ev.ChatID, Text: text}}, nil
}

func errorReply(chatID string, err error) notify.Message {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Storage(err)
	}
	if appErr.Kind == apperrors.KindStorage {
		logger.Error().Err(err).Str("chat_id", chatID).Msg("Storage failure while handling event")
	}
	return notify.Message{
		ChatID:    chatID,
		Text:      appErr.Message,
		ErrorCode: appErr.Kind,
		Retryable: appErr.Retryable(),
	}
}
