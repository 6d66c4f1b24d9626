package resthttp_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/adapter/inbound/resthttp"
	"github.com/schemalens/schemalens/internal/adapter/outbound/jsonsample"
	"github.com/schemalens/schemalens/internal/adapter/outbound/namecleaner"
	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/usecase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	logger := testLogger()
	analyzers := map[domain.Mode]usecase.Analyzer{
		domain.ModeJSONSample: jsonsample.New(logger),
	}
	uc := usecase.NewAnalyzeUseCase(analyzers, logger)
	cleaner := namecleaner.New(namecleaner.Config{}, nil, logger)

	mux := http.NewServeMux()
	resthttp.NewHandlers(uc, cleaner, maxBody, logger).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleAnalyze(t *testing.T) {
	srv := newServer(t, 1<<20)

	t.Run("success", func(t *testing.T) {
		body := `{"mode":"json_sample","sampleJson":[{"id":1,"email":"a@b.co"}]}`
		resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var result domain.AnalysisResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Resources, 1)
		assert.Equal(t, "sample", result.Resources[0].Name)
		assert.Equal(t, "id", result.Resources[0].PrimaryKey)
	})

	t.Run("validation error is 400", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(`{"mode":"json_sample"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var errResp struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
		assert.Equal(t, "invalid_input", errResp.Kind)
		assert.NotEmpty(t, errResp.Error)
	})

	t.Run("no resources is 422", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/analyze", "application/json",
			strings.NewReader(`{"mode":"json_sample","sampleJson":[1,2,3]}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/analyze", "application/json", strings.NewReader(`{nope`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("oversized body is 413", func(t *testing.T) {
		small := newServer(t, 64)
		big := `{"mode":"json_sample","sampleJson":"` + strings.Repeat("x", 256) + `"}`
		resp, err := http.Post(small.URL+"/analyze", "application/json", strings.NewReader(big))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})
}

func TestHandleCleanNamesWithoutLLM(t *testing.T) {
	srv := newServer(t, 1<<20)

	resp, err := http.Post(srv.URL+"/clean-names", "application/json",
		strings.NewReader(`{"names":["user_id","dt_created"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		DisplayNames map[string]string `json:"displayNames"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "User Id", result.DisplayNames["user_id"])
	assert.Equal(t, "Dt Created", result.DisplayNames["dt_created"])
}

func TestHandleHealthz(t *testing.T) {
	srv := newServer(t, 1<<20)

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
}
