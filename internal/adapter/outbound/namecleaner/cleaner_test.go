package namecleaner_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/adapter/outbound/namecleaner"
	"github.com/schemalens/schemalens/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func chatReply(t *testing.T, mappings map[string]string) []byte {
	t.Helper()
	content, err := json.Marshal(mappings)
	require.NoError(t, err)
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": string(content)}},
		},
	}
	out, err := json.Marshal(reply)
	require.NoError(t, err)
	return out
}

func sampleResources() []domain.ResourceSchema {
	return []domain.ResourceSchema{{
		Name:        "users",
		DisplayName: "Users",
		Endpoint:    "/users",
		PrimaryKey:  "usr_id",
		Fields: []domain.ResourceField{
			{Name: "usr_id", Type: domain.FieldNumber, DisplayName: "Usr Id"},
			{Name: "email", Type: domain.FieldEmail, DisplayName: "Email"},
		},
		Operations: []domain.Operation{domain.OpList},
	}}
}

func TestCleanDisabled(t *testing.T) {
	c := namecleaner.New(namecleaner.Config{}, nil, testLogger())
	assert.False(t, c.Enabled())

	in := sampleResources()
	out := c.Clean(context.Background(), in)
	assert.Equal(t, in, out)
}

func TestCleanPolishesNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key123", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "usr_id")

		w.Write(chatReply(t, map[string]string{"usr_id": "User ID", "users": "Users"}))
	}))
	defer srv.Close()

	c := namecleaner.New(namecleaner.Config{
		APIURL: srv.URL,
		APIKey: "key123",
		Model:  "test-model",
	}, srv.Client(), testLogger())
	require.True(t, c.Enabled())

	out := c.Clean(context.Background(), sampleResources())
	require.Len(t, out, 1)
	assert.Equal(t, "User ID", out[0].Fields[0].DisplayName)
	// Names the LLM skipped keep their deterministic label.
	assert.Equal(t, "Email", out[0].Fields[1].DisplayName)
	// The input is never mutated.
	assert.Equal(t, "Usr Id", sampleResources()[0].Fields[0].DisplayName)
}

func TestCleanFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := namecleaner.New(namecleaner.Config{APIURL: srv.URL, Model: "m"}, srv.Client(), testLogger())
	in := sampleResources()
	out := c.Clean(context.Background(), in)
	assert.Equal(t, in, out)
}

func TestCleanFallsBackOnGarbageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"not json"}}]}`))
	}))
	defer srv.Close()

	c := namecleaner.New(namecleaner.Config{APIURL: srv.URL, Model: "m"}, srv.Client(), testLogger())
	in := sampleResources()
	assert.Equal(t, in, c.Clean(context.Background(), in))
}

func TestCleanNames(t *testing.T) {
	t.Run("without llm uses deterministic formatter", func(t *testing.T) {
		c := namecleaner.New(namecleaner.Config{}, nil, testLogger())
		got := c.CleanNames(context.Background(), []string{"user_id", "emailAddress"})
		assert.Equal(t, map[string]string{
			"user_id":      "User Id",
			"emailAddress": "Email Address",
		}, got)
	})

	t.Run("llm results override deterministic labels", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write(chatReply(t, map[string]string{"usr_prof_v2": "User Profile"}))
		}))
		defer srv.Close()

		c := namecleaner.New(namecleaner.Config{APIURL: srv.URL, Model: "m"}, srv.Client(), testLogger())
		got := c.CleanNames(context.Background(), []string{"usr_prof_v2", "plain"})
		assert.Equal(t, "User Profile", got["usr_prof_v2"])
		assert.Equal(t, "Plain", got["plain"])
	})
}
