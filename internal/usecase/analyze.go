package usecase

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/infer"
)

// AnalyzeUseCase orchestrates one analysis: validate the request, dispatch
// to the analyzer registered for its mode, then run every raw resource
// through the shared normalization pipeline (infer field types, detect the
// primary key, map operations, format display names, in that fixed order).
type AnalyzeUseCase struct {
	analyzers map[domain.Mode]Analyzer
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewAnalyzeUseCase creates the orchestrator from a registry of analyzers
// keyed by mode.
func NewAnalyzeUseCase(analyzers map[domain.Mode]Analyzer, logger *slog.Logger) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		analyzers: analyzers,
		logger:    logger.With("usecase", "Analyze"),
		tracer:    otel.Tracer("schemalens/usecase"),
	}
}

// Execute runs one analysis. Every failure is reported as an AnalysisError
// scoped to this request; unexpected panics are downgraded to an internal
// error instead of escaping to the caller.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, req domain.AnalyzeRequest) (result domain.AnalysisResult, err error) {
	log := uc.logger.With(slog.String("mode", string(req.Mode)))

	ctx, span := uc.tracer.Start(ctx, "Analyze",
		trace.WithAttributes(attribute.String("analysis.mode", string(req.Mode))))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic during analysis", slog.Any("panic", r))
			result = domain.AnalysisResult{}
			err = domain.NewError(domain.ErrInternal, "analysis failed unexpectedly")
		}
	}()

	if err := req.Validate(); err != nil {
		log.Warn("Request validation failed", slog.Any("error", err))
		return domain.AnalysisResult{}, err
	}

	analyzer, ok := uc.analyzers[req.Mode]
	if !ok {
		log.Error("No analyzer registered for mode")
		return domain.AnalysisResult{}, domain.NewError(domain.ErrInvalidInput,
			"no analyzer available for mode %q", string(req.Mode))
	}

	raws, err := analyzer.Analyze(ctx, req)
	if err != nil {
		log.Warn("Analyzer failed", slog.Any("error", err))
		return domain.AnalysisResult{}, err
	}

	resources := uc.normalize(raws)
	if len(resources) == 0 {
		log.Info("Analyzer returned no usable resources")
		return domain.AnalysisResult{}, domain.NewError(domain.ErrNoResourcesFound,
			"no resources found in the provided input")
	}

	span.SetAttributes(attribute.Int("analysis.resource_count", len(resources)))
	log.Info("Analysis complete", slog.Int("resource_count", len(resources)))
	return domain.AnalysisResult{Resources: resources}, nil
}

// normalize applies the shared pipeline to every raw resource. Later steps
// read but never overwrite earlier decisions. Resources without any field
// are dropped; duplicate names keep the first occurrence.
func (uc *AnalyzeUseCase) normalize(raws []domain.RawResource) []domain.ResourceSchema {
	var out []domain.ResourceSchema
	seen := make(map[string]bool, len(raws))

	for _, raw := range raws {
		if len(raw.Fields) == 0 {
			continue
		}
		name := strings.ToLower(raw.Name)
		if name == "" {
			name = "resource"
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		fields := make([]domain.ResourceField, 0, len(raw.Fields))
		fieldNames := make([]string, 0, len(raw.Fields))
		for _, rf := range raw.Fields {
			ft := rf.Declared
			if ft == "" {
				ft = infer.TypeFromSamples(rf.Samples)
			}
			fields = append(fields, domain.ResourceField{
				Name:        rf.Name,
				Type:        ft,
				DisplayName: infer.FormatName(rf.Name),
			})
			fieldNames = append(fieldNames, rf.Name)
		}

		primaryKey := ""
		if raw.PrimaryKeyHint != "" && containsName(fieldNames, raw.PrimaryKeyHint) {
			primaryKey = raw.PrimaryKeyHint
		} else {
			primaryKey = infer.DetectPrimaryKey(name, fieldNames)
		}

		endpoint := raw.Endpoint
		if endpoint == "" {
			endpoint = domain.SampleEndpoint
		}

		out = append(out, domain.ResourceSchema{
			Name:        name,
			DisplayName: infer.FormatName(name),
			Endpoint:    endpoint,
			PrimaryKey:  primaryKey,
			Fields:      fields,
			Operations:  infer.MapOperations(raw),
		})
	}
	return out
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
