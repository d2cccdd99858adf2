package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MLBB-BOSS/MLSnap/internal/app"
	"github.com/MLBB-BOSS/MLSnap/internal/config"
	"github.com/MLBB-BOSS/MLSnap/internal/handlers"
	"github.com/MLBB-BOSS/MLSnap/internal/routes"
	"github.com/MLBB-BOSS/MLSnap/pkg/utils"
	"github.com/gin-gonic/gin"
)

const testSecret = "test_secret_key_12345"

// setupRouter opens a fresh collector on a temporary SQLite file and returns its router
// together with a valid service token.
func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:            "test",
		DatabaseURL:    "sqlite://" + filepath.Join(t.TempDir(), "collector.db"),
		CatalogFile:    "../../../config/catalog.yaml",
		BadgesFile:     "../../../config/badges.yaml",
		StorageTimeout: 5 * time.Second,
		Timezone:       "UTC",
		JWTSecret:      testSecret,
	}

	ctx, cancel := context.WithCancel(context.Background())
	a, err := app.Open(ctx, cfg)
	if err != nil {
		cancel()
		t.Fatalf("Failed to open collector: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		a.Close()
	})

	h := handlers.New(a.DB, a.Redis, a.Dispatcher, a.Reporter)
	r := routes.NewRouter(ctx, h, routes.Options{JWTSecret: testSecret})

	token, err := utils.GenerateToken(testSecret, "integration", time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return r, token
}

func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type reply struct {
	Text      string `json:"text"`
	ErrorCode string `json:"errorCode"`
	Retryable bool   `json:"retryable"`
}

// sendEvent posts an event and decodes the replies.
func sendEvent(t *testing.T, r http.Handler, token string, event map[string]interface{}) []reply {
	t.Helper()
	w := performRequest(r, http.MethodPost, "/api/events", event, token)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /api/events: status %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Replies []reply `json:"replies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode replies: %v", err)
	}
	return resp.Replies
}

func png(tag string) []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), tag...)
}
