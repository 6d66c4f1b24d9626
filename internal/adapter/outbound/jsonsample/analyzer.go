// Package jsonsample infers a resource schema from an inline JSON sample
// response, without any server interaction.
package jsonsample

import (
	"context"
	"log/slog"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/format"
	"github.com/schemalens/schemalens/internal/infer"
)

// Analyzer implements the usecase.Analyzer interface for json_sample mode.
type Analyzer struct {
	logger *slog.Logger
}

// New creates a JSON sample Analyzer.
func New(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logger.With("component", "jsonsample_analyzer")}
}

// Analyze decodes the sample, unwraps any envelope and collects per-field
// sample values. Operations default to list for an array payload and detail
// for a single object, since no server was consulted.
func (a *Analyzer) Analyze(_ context.Context, req domain.AnalyzeRequest) ([]domain.RawResource, error) {
	tree, err := format.Decode([]byte(req.SampleJSON), format.HintJSON)
	if err != nil {
		a.logger.Warn("Sample is not valid JSON", slog.Any("error", err))
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "sampleJson is not valid JSON")
	}

	name := "sample"
	endpoint := domain.SampleEndpoint
	if req.EndpointPath != "" {
		endpoint = req.EndpointPath
		if fromPath := infer.ResourceFromPath(req.EndpointPath); fromPath != "" {
			name = fromPath
		}
	}

	raw, ok := ResourceFromTree(tree, name, endpoint)
	if !ok {
		a.logger.Info("Sample holds no analyzable records")
		return nil, nil
	}
	return []domain.RawResource{raw}, nil
}

// ResourceFromTree turns a decoded JSON tree into one raw resource. It is
// shared with the live-endpoint analyzer, which feeds fetched bodies
// through the same unwrap-and-sample path. ok is false when the tree holds
// no record objects at all.
func ResourceFromTree(tree domain.Value, name, endpoint string) (domain.RawResource, bool) {
	records, isList, ok := infer.Unwrap(tree)
	if !ok {
		return domain.RawResource{}, false
	}
	objects := infer.RecordObjects(records)
	if len(objects) == 0 {
		return domain.RawResource{}, false
	}

	// First-seen field order across all records, so a field missing from
	// the first record still appears where it was first observed.
	var order []string
	samples := make(map[string][]domain.Value)
	for _, obj := range objects {
		for _, m := range obj.Obj {
			if _, seen := samples[m.Key]; !seen {
				order = append(order, m.Key)
			}
			samples[m.Key] = append(samples[m.Key], m.Val)
		}
	}

	fields := make([]domain.RawField, 0, len(order))
	for _, fieldName := range order {
		fields = append(fields, domain.RawField{Name: fieldName, Samples: samples[fieldName]})
	}

	return domain.RawResource{
		Name:     name,
		Endpoint: endpoint,
		Fields:   fields,
		IsList:   isList,
	}, true
}
