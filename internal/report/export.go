package report

import (
	"encoding/json"
	"io"

	"github.com/MLBB-BOSS/MLSnap/internal/services"
)

// UserTotal is one row of the JSON export.
type UserTotal struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Screenshots int64  `json:"screenshots_uploaded"`
}

// Totals converts a contribution report into export rows, keeping its order.
func Totals(entries []services.LeaderboardEntry) []UserTotal {
	rows := make([]UserTotal, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, UserTotal{UserID: e.UserID, Username: e.DisplayName, Screenshots: e.Count})
	}
	return rows
}

// WriteJSON writes the export rows as an indented JSON array.
func WriteJSON(w io.Writer, entries []services.LeaderboardEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(Totals(entries))
}

// UserBars charts totals per user.
func UserBars(entries []services.LeaderboardEntry) []Bar {
	bars := make([]Bar, 0, len(entries))
	for _, e := range entries {
		bars = append(bars, Bar{Label: e.DisplayName, Value: e.Count})
	}
	return bars
}

// DayBars charts a histogram, one bar per date with contributions.
func DayBars(days []services.DayCount) []Bar {
	bars := make([]Bar, 0, len(days))
	for _, d := range days {
		bars = append(bars, Bar{Label: d.Date, Value: d.Count})
	}
	return bars
}
