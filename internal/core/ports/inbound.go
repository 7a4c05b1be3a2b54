package ports

import (
	"context"
	"io"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// SigParser is the inbound contract for instruction parse orchestration.
// A miss surfaces as domain.ErrNoParse, an expected outcome the caller must
// handle, not a failure.
type SigParser interface {
	ParseSig(ctx context.Context, text string) (*domain.ParsedInstruction, error)
}

// PackageAdvisor is the inbound contract for end-to-end package
// recommendation.
type PackageAdvisor interface {
	Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.Recommendation, error)
}

// DirectoryImportRequester accepts an uploaded directory spreadsheet and
// schedules its import.
type DirectoryImportRequester interface {
	RequestImport(ctx context.Context, filename string, body io.Reader) (string, error)
}

// DirectoryImportProcessor is the inbound contract for asynchronous import
// processing. It reports the number of records imported.
type DirectoryImportProcessor interface {
	ProcessImport(ctx context.Context, objectKey string) (int, error)
}
