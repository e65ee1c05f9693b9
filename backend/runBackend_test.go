package backend

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jghoshh/streakly/backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCreatesStoresAndServes(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		ServerURL:    "http://localhost:0",
		DataDir:      dir,
		GeminiModel:  "gemini-2.0-flash",
		LLMTimeout:   time.Second,
		NumProducers: 1,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler, cleanup, err := Build(cfg, logger)
	require.NoError(t, err)
	defer cleanup()

	for _, name := range []string{"habits.json", "goals.json", "users.json", "sequences.json"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	req := httptest.NewRequest(http.MethodPost, "/habits", strings.NewReader(`{"title":"Read","time":"7am","priority":"high"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"xp":50`)
}
