package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pharmlane/rx-pack-advisor/internal/core/ports"
)

// ImportDirectoryUseCase handles directory spreadsheet uploads and their
// asynchronous import into the package directory.
type ImportDirectoryUseCase struct {
	storage   ports.ObjectStorage
	queue     ports.ImportQueue
	importer  ports.DirectoryImporter
	directory ports.PackageDirectory
	logger    *slog.Logger
}

func NewImportDirectoryUseCase(
	storage ports.ObjectStorage,
	queue ports.ImportQueue,
	importer ports.DirectoryImporter,
	directory ports.PackageDirectory,
	logger *slog.Logger,
) *ImportDirectoryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportDirectoryUseCase{
		storage:   storage,
		queue:     queue,
		importer:  importer,
		directory: directory,
		logger:    logger,
	}
}

// RequestImport stores the uploaded spreadsheet and schedules a worker
// import job. It returns the object key identifying the job.
func (uc *ImportDirectoryUseCase) RequestImport(
	ctx context.Context,
	filename string,
	body io.Reader,
) (string, error) {
	objectKey := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))

	if err := uc.storage.Save(ctx, objectKey, body); err != nil {
		return "", fmt.Errorf("save to object storage: %w", err)
	}
	if err := uc.queue.PublishImportRequested(ctx, objectKey); err != nil {
		return "", fmt.Errorf("publish import event: %w", err)
	}
	return objectKey, nil
}

// ProcessImport reads a stored spreadsheet, parses its rows and upserts the
// resulting package records. It returns the number of records imported.
func (uc *ImportDirectoryUseCase) ProcessImport(ctx context.Context, objectKey string) (int, error) {
	data, err := uc.storage.Open(ctx, objectKey)
	if err != nil {
		return 0, fmt.Errorf("open stored spreadsheet: %w", err)
	}
	defer data.Close()

	records, err := uc.importer.ImportSpreadsheet(ctx, data)
	if err != nil {
		return 0, fmt.Errorf("parse spreadsheet: %w", err)
	}
	if len(records) == 0 {
		uc.logger.Warn("directory import produced zero records", "object_key", objectKey)
		return 0, nil
	}

	if err := uc.directory.UpsertPackages(ctx, records); err != nil {
		return 0, fmt.Errorf("upsert packages: %w", err)
	}

	uc.logger.Info("directory import completed",
		"object_key", objectKey,
		"records", len(records),
	)
	return len(records), nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "directory.xlsx"
	}
	return base
}
