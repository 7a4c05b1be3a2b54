package ports

import (
	"context"
	"io"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
)

// SigCompleter delegates a free-text instruction to the learned-model
// collaborator and returns its validated structured reply. An unusable
// reply surfaces as domain.ErrNoParse, never as a transport panic.
type SigCompleter interface {
	CompleteSig(ctx context.Context, rawText string) (*domain.ParsedInstruction, error)
}

// SigRewriter asks the rewrite collaborator to normalize free text into a
// canonical instruction phrasing. An empty string means no rewrite was
// offered; callers must additionally compare normalized forms, since a
// rewrite that round-trips to the same normalized text is a non-answer.
type SigRewriter interface {
	RewriteSig(ctx context.Context, rawText string) (string, error)
}

// SigCache stores parse results keyed by normalized instruction text. The
// TTL is owned by the implementation. A miss is domain.ErrCacheMiss; the
// pipeline functions correctly, only slower, when every call fails.
type SigCache interface {
	Get(ctx context.Context, key string) (*domain.ParsedInstruction, error)
	Set(ctx context.Context, key string, parsed *domain.ParsedInstruction) error
	Delete(ctx context.Context, key string) error
}

// PackageDirectory resolves and stores directory package records.
type PackageDirectory interface {
	FindPackages(ctx context.Context, drugQuery string) ([]domain.PackageRecord, error)
	UpsertPackages(ctx context.Context, records []domain.PackageRecord) error
}

// ObjectStorage stores uploaded directory spreadsheets.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// ImportQueue publishes/consumes directory import jobs.
type ImportQueue interface {
	PublishImportRequested(ctx context.Context, objectKey string) error
	SubscribeImportRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// DirectoryImporter parses a stored directory spreadsheet into package
// records.
type DirectoryImporter interface {
	ImportSpreadsheet(ctx context.Context, data io.Reader) ([]domain.PackageRecord, error)
}
