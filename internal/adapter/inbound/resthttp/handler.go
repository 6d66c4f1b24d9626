// Package resthttp exposes the analysis engine over HTTP.
package resthttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/schemalens/schemalens/internal/adapter/outbound/namecleaner"
	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/usecase"
)

// Handlers holds dependencies for the HTTP handlers.
type Handlers struct {
	analyzeUC *usecase.AnalyzeUseCase
	cleaner   *namecleaner.Cleaner
	maxBody   int64
	logger    *slog.Logger
}

// NewHandlers creates a Handlers struct. maxBody caps inbound request
// bodies with the same ceiling applied to outbound responses.
func NewHandlers(analyzeUC *usecase.AnalyzeUseCase, cleaner *namecleaner.Cleaner, maxBody int64, logger *slog.Logger) *Handlers {
	return &Handlers{
		analyzeUC: analyzeUC,
		cleaner:   cleaner,
		maxBody:   maxBody,
		logger:    logger.With("component", "resthttp_handler"),
	}
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("POST /clean-names", h.handleCleanNames)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// handleAnalyze implements POST /analyze.
func (h *Handlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}

	result, err := h.analyzeUC.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// CleanNamesRequest is the body of POST /clean-names: either a full
// analysis result to polish, or a bare list of identifiers.
type CleanNamesRequest struct {
	Resources []domain.ResourceSchema `json:"resources,omitempty"`
	Names     []string                `json:"names,omitempty"`
}

// handleCleanNames implements POST /clean-names. The operation is
// best-effort: when no LLM is configured, or it fails, the deterministic
// display names come back unchanged.
func (h *Handlers) handleCleanNames(w http.ResponseWriter, r *http.Request) {
	var req CleanNamesRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		return
	}

	if len(req.Names) > 0 {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"displayNames": h.cleaner.CleanNames(r.Context(), req.Names),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, domain.AnalysisResult{
		Resources: h.cleaner.Clean(r.Context(), req.Resources),
	})
}

// handleHealthz implements GET /healthz.
func (h *Handlers) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("Request body exceeded ceiling", slog.Int64("max_bytes", h.maxBody))
			h.writeError(w, domain.NewError(domain.ErrPayloadTooLarge,
				"request body exceeds the configured %d byte limit", h.maxBody))
			return err
		}
		h.logger.Warn("Failed to decode request body", slog.Any("error", err))
		h.writeError(w, domain.WrapError(domain.ErrInvalidInput, err, "invalid request body"))
		return err
	}
	return nil
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	h.writeJSON(w, statusForKind(kind), errorResponse{Error: err.Error(), Kind: string(kind)})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

// statusForKind maps the error taxonomy onto HTTP status codes.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrInvalidInput:
		return http.StatusBadRequest
	case domain.ErrAuthFailure:
		return http.StatusUnauthorized
	case domain.ErrPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.ErrNoResourcesFound:
		return http.StatusUnprocessableEntity
	case domain.ErrUnreachable:
		return http.StatusBadGateway
	case domain.ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
