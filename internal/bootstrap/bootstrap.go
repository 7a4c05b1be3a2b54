package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pharmlane/rx-pack-advisor/internal/config"
	"github.com/pharmlane/rx-pack-advisor/internal/core/ports"
	"github.com/pharmlane/rx-pack-advisor/internal/core/usecase"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/cache/redis"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/extractor/sigpdf"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/importer/ndcxlsx"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/llm/ollama"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/queue/nats"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/repository/postgres"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/resilience"
	"github.com/pharmlane/rx-pack-advisor/internal/infrastructure/storage/localfs"
	"github.com/pharmlane/rx-pack-advisor/internal/observability/logging"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.ImportQueue
	Directory ports.PackageDirectory

	ParseUC         ports.SigParser
	RecommendUC     ports.PackageAdvisor
	ImportRequestUC ports.DirectoryImportRequester
	ImportProcessUC ports.DirectoryImportProcessor
	Extractor       *sigpdf.Extractor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	directory := postgres.NewPackageRepository(db)
	if err := directory.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init import queue: %w", err)
	}

	sigCache, err := redis.New(cfg.RedisURL, redis.Options{TTL: cfg.SigCacheTTL()})
	if err != nil {
		return nil, fmt.Errorf("init sig cache: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, executor)
	completer := ollama.NewSigCompleter(ollamaClient)
	rewriter := ollama.NewSigRewriter(ollamaClient)

	importer := ndcxlsx.New()

	parseUC := usecase.NewSigParseUseCase(sigCache, completer, rewriter, logger)
	recommendUC := usecase.NewRecommendUseCase(parseUC, directory, logger)
	importUC := usecase.NewImportDirectoryUseCase(storage, queue, importer, directory, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:     queue,
		Directory: directory,

		ParseUC:         parseUC,
		RecommendUC:     recommendUC,
		ImportRequestUC: importUC,
		ImportProcessUC: importUC,
		Extractor:       sigpdf.New(),

		closeFn: func() {
			queue.Close()
			_ = sigCache.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
