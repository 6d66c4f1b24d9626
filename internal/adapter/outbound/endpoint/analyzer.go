// Package endpoint probes a live JSON endpoint with one guarded request
// and infers the resource schema from whatever the server returns.
package endpoint

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/schemalens/schemalens/internal/adapter/outbound/jsonsample"
	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/fetch"
	"github.com/schemalens/schemalens/internal/format"
	"github.com/schemalens/schemalens/internal/infer"
)

// Analyzer implements endpoint mode. It issues exactly one request per
// analysis; there is no retry and no pagination walking.
type Analyzer struct {
	guard  *fetch.Guard
	logger *slog.Logger
}

// New creates an endpoint Analyzer backed by the shared request guard.
func New(guard *fetch.Guard, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		guard:  guard,
		logger: logger.With("component", "endpoint_analyzer"),
	}
}

// Analyze fetches baseUrl+endpointPath with the configured auth headers and
// feeds the JSON body through the same unwrap-and-sample path as the inline
// sample mode. Operations are inferred from the payload shape: an array
// means list, a single object means detail.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalyzeRequest) ([]domain.RawResource, error) {
	target := JoinURL(req.BaseURL, req.EndpointPath)
	headers := BuildAuthHeaders(req.AuthType, req.AuthValue, req.CustomHeaders)

	log := a.logger.With(slog.String("url", fetch.RedactURL(target)))
	log.Info("Probing endpoint", slog.Int("header_count", len(headers)))

	var (
		body []byte
		err  error
	)
	if strings.EqualFold(req.Method, http.MethodPost) {
		body, err = a.guard.Post(ctx, target, "application/json", []byte(req.RequestBody), headers)
	} else {
		body, err = a.guard.Get(ctx, target, headers)
	}
	if err != nil {
		return nil, err
	}

	tree, err := format.DecodeJSON(body)
	if err != nil {
		log.Warn("Endpoint did not return JSON", slog.Any("error", err))
		return nil, domain.WrapError(domain.ErrInvalidInput, err,
			"endpoint %s did not return valid JSON", fetch.RedactURL(target))
	}

	name := infer.ResourceFromPath(req.EndpointPath)
	if name == "" {
		name = "sample"
	}
	raw, ok := jsonsample.ResourceFromTree(tree, name, infer.EndpointFromPath(req.EndpointPath))
	if !ok {
		log.Info("Endpoint response holds no analyzable records")
		return nil, nil
	}
	return []domain.RawResource{raw}, nil
}

// JoinURL joins a base URL and a path with exactly one slash between them.
func JoinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// BuildAuthHeaders maps the request's auth settings onto HTTP headers.
// Supported auth types are bearer (Authorization: Bearer <v>), api-key
// (X-API-Key: <v>) and basic (Authorization: Basic base64(user:pass) when
// authValue is "user:pass", otherwise the value is assumed pre-encoded).
// Custom headers are applied last and win over generated ones.
func BuildAuthHeaders(authType, authValue string, custom map[string]string) map[string]string {
	headers := map[string]string{"Accept": "application/json"}

	switch strings.ToLower(authType) {
	case "bearer":
		if authValue != "" {
			headers["Authorization"] = "Bearer " + authValue
		}
	case "api-key", "api_key", "apikey":
		if authValue != "" {
			headers["X-API-Key"] = authValue
		}
	case "basic":
		if authValue != "" {
			encoded := authValue
			if strings.Contains(authValue, ":") {
				encoded = base64.StdEncoding.EncodeToString([]byte(authValue))
			}
			headers["Authorization"] = "Basic " + encoded
		}
	}

	for k, v := range custom {
		headers[k] = v
	}
	return headers
}
