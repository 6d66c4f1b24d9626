// Package fetch wraps every outbound HTTP call the analyzers make with the
// two request ceilings: a wall-clock timeout and an incremental byte limit
// on the response body. Nothing in the engine touches the network except
// through a Guard.
package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/schemalens/schemalens/internal/domain"
)

// Guard performs guarded HTTP requests. The client, timeout and byte
// ceiling are injected from configuration once at startup; there is no
// shared mutable state, so one Guard serves concurrent analyses.
type Guard struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
	logger   *slog.Logger
}

// NewGuard creates a Guard. A nil client falls back to http.DefaultClient;
// the per-request timeout is enforced via context, not on the client, so
// the same client can be shared.
func NewGuard(client *http.Client, timeout time.Duration, maxBytes int64, logger *slog.Logger) *Guard {
	if client == nil {
		client = http.DefaultClient
	}
	return &Guard{
		client:   client,
		timeout:  timeout,
		maxBytes: maxBytes,
		logger:   logger.With("component", "request_guard"),
	}
}

// Get fetches target with the given headers and returns the body.
func (g *Guard) Get(ctx context.Context, target string, headers map[string]string) ([]byte, error) {
	return g.do(ctx, http.MethodGet, target, "", nil, headers)
}

// Post sends body to target and returns the response body.
func (g *Guard) Post(ctx context.Context, target, contentType string, body []byte, headers map[string]string) ([]byte, error) {
	return g.do(ctx, http.MethodPost, target, contentType, body, headers)
}

func (g *Guard) do(ctx context.Context, method, target, contentType string, body []byte, headers map[string]string) ([]byte, error) {
	safeURL := RedactURL(target)
	log := g.logger.With(slog.String("url", safeURL), slog.String("method", method))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid request URL %s", safeURL)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log.Info("Fetching")
	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			log.Warn("Request timed out", slog.Duration("timeout", g.timeout))
			return nil, domain.WrapError(domain.ErrTimeout, err,
				"request to %s timed out after %s", safeURL, g.timeout)
		}
		log.Warn("Request failed", slog.Any("error", err))
		return nil, domain.WrapError(domain.ErrUnreachable, err, "unable to reach %s", safeURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		log.Warn("Authentication rejected", slog.Int("status", resp.StatusCode))
		return nil, domain.NewError(domain.ErrAuthFailure,
			"authentication failed with status %d at %s", resp.StatusCode, safeURL)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Warn("Non-success status", slog.Int("status", resp.StatusCode))
		return nil, domain.NewError(domain.ErrUnreachable,
			"%s returned status %d", safeURL, resp.StatusCode)
	}

	// Read at most maxBytes+1: one extra byte detects the overflow without
	// buffering the rest of an oversized payload.
	data, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, domain.WrapError(domain.ErrTimeout, err,
				"reading response from %s timed out after %s", safeURL, g.timeout)
		}
		return nil, domain.WrapError(domain.ErrUnreachable, err,
			"failed reading response body from %s", safeURL)
	}
	if int64(len(data)) > g.maxBytes {
		log.Warn("Payload exceeded configured ceiling", slog.Int64("max_bytes", g.maxBytes))
		return nil, domain.NewError(domain.ErrPayloadTooLarge,
			"response from %s exceeds the configured %d byte limit", safeURL, g.maxBytes)
	}

	log.Debug("Fetched", slog.Int("bytes", len(data)), slog.Int("status", resp.StatusCode))
	return data, nil
}

var sensitiveQueryKeys = []string{"token", "key", "secret", "password", "auth"}

// RedactURL strips userinfo and blanks suspicious query parameter values so
// a URL can appear in error messages and logs without leaking credentials.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.User = nil
	q := u.Query()
	changed := false
	for name := range q {
		lower := strings.ToLower(name)
		for _, sensitive := range sensitiveQueryKeys {
			if strings.Contains(lower, sensitive) {
				q.Set(name, "***")
				changed = true
				break
			}
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
