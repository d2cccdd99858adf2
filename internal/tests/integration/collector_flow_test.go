package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorFlow(t *testing.T) {
	// 1. Setup
	r, token := setupRouter(t)

	// 2. First contact registers the user
	replies := sendEvent(t, r, token, map[string]interface{}{
		"kind": "start", "userId": "42", "displayName": "Layla Main",
	})
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Hi, Layla Main!")

	// 3. Submitting without a selection is rejected, nothing is stored
	replies = sendEvent(t, r, token, map[string]interface{}{
		"kind": "submit_image", "userId": "42", "image": png("early"),
	})
	require.Len(t, replies, 1)
	assert.Equal(t, "NO_ITEM_SELECTED", replies[0].ErrorCode)

	// 4. Five accepted screenshots earn the first badge
	heroes := []string{"Tigreal", "Akai", "Franco", "Minotaur", "Johnson"}
	for i, hero := range heroes {
		replies = sendEvent(t, r, token, map[string]interface{}{
			"kind": "select_item", "userId": "42", "itemName": hero,
		})
		require.Len(t, replies, 1)
		require.Empty(t, replies[0].ErrorCode, replies[0].Text)

		replies = sendEvent(t, r, token, map[string]interface{}{
			"kind": "submit_image", "userId": "42", "image": png(hero),
		})
		require.NotEmpty(t, replies)
		require.Empty(t, replies[0].ErrorCode, replies[0].Text)
		assert.Contains(t, replies[0].Text, fmt.Sprintf("Total: %d.", i+1))
	}
	assert.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "New badge: Starter!")

	// 5. The same bytes again are a duplicate
	sendEvent(t, r, token, map[string]interface{}{"kind": "select_item", "userId": "42", "itemName": "Hylos"})
	replies = sendEvent(t, r, token, map[string]interface{}{
		"kind": "submit_image", "userId": "42", "image": png("Akai"),
	})
	require.Len(t, replies, 1)
	assert.Equal(t, "DUPLICATE_SUBMISSION", replies[0].ErrorCode)

	// 6. Read side agrees
	w := performRequest(r, http.MethodGet, "/api/users/42/progress", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var progress struct {
		Total  int64    `json:"total"`
		Badges []string `json:"badges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.Equal(t, int64(5), progress.Total)
	assert.Equal(t, []string{"Starter"}, progress.Badges)

	w = performRequest(r, http.MethodGet, "/api/leaderboard?n=3", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Leaderboard []struct {
			Rank   int    `json:"rank"`
			UserID string `json:"userId"`
			Count  int64  `json:"count"`
		} `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, "42", board.Leaderboard[0].UserID)
	assert.Equal(t, int64(5), board.Leaderboard[0].Count)

	w = performRequest(r, http.MethodGet, "/api/users/42/histogram", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":5`)
}

func TestCollectorRejectsBadRequests(t *testing.T) {
	r, token := setupRouter(t)

	w := performRequest(r, http.MethodPost, "/api/events", map[string]interface{}{"kind": "start", "userId": "1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(r, http.MethodPost, "/api/events", map[string]interface{}{"kind": "teleport", "userId": "1"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_EVENT")

	w = performRequest(r, http.MethodGet, "/api/users/nobody/progress", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
