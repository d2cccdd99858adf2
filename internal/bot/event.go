// Package bot turns decoded chat events into calls on the contribution core and renders
// the replies the messaging collaborator sends back to the user.
package bot

import (
	"strings"

	apperrors "github.com/MLBB-BOSS/MLSnap/pkg/errors"
)

type EventKind string

const (
	EventStart              EventKind = "start"
	EventSelectItem         EventKind = "select_item"
	EventSubmitImage        EventKind = "submit_image"
	EventRequestProgress    EventKind = "request_progress"
	EventRequestLeaderboard EventKind = "request_leaderboard"
	EventListItems          EventKind = "list_items"
	EventHelp               EventKind = "help"
)

// DefaultLeaderboardSize is used when a leaderboard request names no size.
const DefaultLeaderboardSize = 10

// Event is one inbound message from the transport. Image is base64 in JSON.
type Event struct {
	Kind        EventKind `json:"kind" binding:"required"`
	UserID      string    `json:"userId" binding:"required"`
	ChatID      string    `json:"chatId"`
	DisplayName string    `json:"displayName"`
	ItemName    string    `json:"itemName"`
	Category    string    `json:"category"`
	Image       []byte    `json:"image"`
	N           int       `json:"n"`
}

// Validate checks the fields each kind needs.
func (e *Event) Validate() error {
	e.UserID = strings.TrimSpace(e.UserID)
	if e.UserID == "" {
		return apperrors.InvalidEvent("userId is required")
	}
	if e.ChatID == "" {
		e.ChatID = e.UserID
	}

	switch e.Kind {
	case EventStart, EventRequestProgress, EventListItems, EventHelp:
		return nil
	case EventSelectItem:
		if strings.TrimSpace(e.ItemName) == "" {
			return apperrors.InvalidEvent("itemName is required")
		}
	case EventSubmitImage:
		// An empty image is answered as NOT_AN_IMAGE, not rejected here
		return nil
	case EventRequestLeaderboard:
		if e.N < 0 {
			return apperrors.InvalidEvent("n must not be negative")
		}
		if e.N == 0 {
			e.N = DefaultLeaderboardSize
		}
	default:
		return apperrors.InvalidEvent("unknown event kind " + string(e.Kind))
	}
	return nil
}
