// Package namecleaner is the optional LLM-backed display name polisher.
// It talks to any OpenAI-compatible chat completions endpoint and refines
// the deterministic Title Case display names: expanding abbreviations,
// dropping technical prefixes and version suffixes. Any failure falls back
// to the names already on the schema, so analysis output never depends on
// the LLM being reachable.
package namecleaner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/infer"
)

const systemPrompt = "You convert technical field names to human-readable names."

const promptTemplate = `Convert these technical field names into human-readable display names.

Rules:
- Remove technical prefixes (fld_, tbl_, col_)
- Remove version suffixes (_v1, _v2, _new, _old)
- Expand abbreviations (usr=User, addr=Address, dt=Date, ts=Timestamp)
- Convert to Title Case with spaces
- Be concise (max 3-4 words)

Field names:
%s

Return a JSON object mapping each field name to its display name.
Example: {"usr_prof_v2": "User Profile", "dt_created_ts": "Date Created"}`

// Config carries the cleaner's settings. An empty APIURL disables the
// cleaner entirely.
type Config struct {
	APIURL    string
	APIKey    string
	Model     string
	BatchSize int
	Timeout   time.Duration
}

// Cleaner polishes display names via an OpenAI-compatible API.
type Cleaner struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Cleaner. A nil client falls back to http.DefaultClient.
func New(cfg Config, client *http.Client, logger *slog.Logger) *Cleaner {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Cleaner{cfg: cfg, client: client, logger: logger.With("component", "name_cleaner")}
}

// Enabled reports whether an LLM endpoint is configured.
func (c *Cleaner) Enabled() bool { return c.cfg.APIURL != "" }

// Clean returns a copy of the resources with polished display names. The
// input is never mutated; names the LLM fails to convert keep their
// deterministic Title Case form.
func (c *Cleaner) Clean(ctx context.Context, resources []domain.ResourceSchema) []domain.ResourceSchema {
	if !c.Enabled() || len(resources) == 0 {
		return resources
	}

	names := collectNames(resources)
	cleaned := make(map[string]string, len(names))
	for start := 0; start < len(names); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(names) {
			end = len(names)
		}
		batch, err := c.convertBatch(ctx, names[start:end])
		if err != nil {
			c.logger.Warn("Display name conversion failed, keeping deterministic names",
				slog.Any("error", err))
			return resources
		}
		for k, v := range batch {
			cleaned[k] = v
		}
	}

	out := make([]domain.ResourceSchema, len(resources))
	for i, res := range resources {
		out[i] = res
		if v, ok := cleaned[res.Name]; ok && v != "" {
			out[i].DisplayName = v
		}
		fields := make([]domain.ResourceField, len(res.Fields))
		for j, f := range res.Fields {
			fields[j] = f
			if v, ok := cleaned[f.Name]; ok && v != "" {
				fields[j].DisplayName = v
			}
		}
		out[i].Fields = fields
	}
	return out
}

// CleanNames converts a flat list of identifiers, used by the standalone
// clean-names operation. Missing or failed conversions fall back to the
// deterministic formatter.
func (c *Cleaner) CleanNames(ctx context.Context, names []string) map[string]string {
	result := make(map[string]string, len(names))
	for _, n := range names {
		result[n] = infer.FormatName(n)
	}
	if !c.Enabled() || len(names) == 0 {
		return result
	}

	for start := 0; start < len(names); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(names) {
			end = len(names)
		}
		batch, err := c.convertBatch(ctx, names[start:end])
		if err != nil {
			c.logger.Warn("Display name conversion failed, using deterministic names",
				slog.Any("error", err))
			return result
		}
		for k, v := range batch {
			if v != "" {
				result[k] = v
			}
		}
	}
	return result
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Cleaner) convertBatch(ctx context.Context, names []string) (map[string]string, error) {
	var list strings.Builder
	for _, n := range names {
		list.WriteString("- ")
		list.WriteString(n)
		list.WriteString("\n")
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(promptTemplate, list.String())},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("name API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding name API response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("empty response from name API")
	}

	conversions := make(map[string]string)
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &conversions); err != nil {
		return nil, fmt.Errorf("name API returned non-JSON content: %w", err)
	}
	return conversions, nil
}

func collectNames(resources []domain.ResourceSchema) []string {
	var names []string
	seen := make(map[string]bool)
	for _, res := range resources {
		if !seen[res.Name] {
			seen[res.Name] = true
			names = append(names, res.Name)
		}
		for _, f := range res.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	return names
}
