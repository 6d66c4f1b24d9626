package usecase

import (
	"context"

	"github.com/schemalens/schemalens/internal/domain"
)

// Analyzer is one mode-specific extractor. Implementations consume exactly
// the request fields their mode requires (the request is validated before
// dispatch) and return raw resource descriptions for the shared
// normalization pipeline. Analyzers never depend on each other; a failure
// in one mode cannot affect another.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalyzeRequest) ([]domain.RawResource, error)
}
