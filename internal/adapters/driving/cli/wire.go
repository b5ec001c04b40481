package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/zenji/internal/adapters/driven/ai"
	"github.com/custodia-labs/zenji/internal/adapters/driven/config/file"
	"github.com/custodia-labs/zenji/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/zenji/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/zenji/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/zenji/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/core/services"
	"github.com/custodia-labs/zenji/internal/extractors"
	"github.com/custodia-labs/zenji/internal/logger"
)

// closers release what the last wiring opened, in reverse order.
var closers []func() error

// promptStore is kept for the settings prompts command.
var promptStore *file.PromptStore

// loadSettings resolves settings, creating the settings service on first use.
// Log settings take effect immediately.
func loadSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		// A missing .env file is not an error
		_ = godotenv.Load()

		store, err := openConfigStore()
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	if err := logger.SetLevel(settings.Log.Level); err != nil {
		logger.Warn("ignoring log level: %v", err)
	}
	if settings.Log.File != "" {
		logger.SetFile(settings.Log.File)
	}
	if verbose {
		logger.SetVerbose(true)
	}
	return settings, nil
}

func openConfigStore() (*file.ConfigStore, error) {
	if configPath != "" {
		return file.OpenConfigFile(configPath)
	}
	return file.NewConfigStore(os.Getenv("ZENJI_DATA_DIR"))
}

// ensureServices wires the core services unless they are already set.
// overrides adjust the resolved settings before wiring, for command flags.
func ensureServices(ctx context.Context, overrides ...func(*domain.AppSettings)) error {
	if ingestService != nil || dialogService != nil || askService != nil || statsService != nil {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	for _, override := range overrides {
		override(settings)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return wire(ctx, settings)
}

// wire builds the adapters named by settings and the services on top of them.
func wire(ctx context.Context, settings *domain.AppSettings) error {
	dataDir := settings.Store.DataDir
	if dataDir == "" {
		dir, err := file.DefaultDataDir()
		if err != nil {
			return err
		}
		dataDir = dir
	}

	aiRes, err := ai.Init(ctx, settings, verbose)
	if err != nil {
		return err
	}
	closers = append(closers, func() error { aiRes.Close(); return nil })
	for _, w := range aiRes.Warnings {
		logger.Warn("%s", w)
	}

	var db *sqlite.Store
	openDB := func() (*sqlite.Store, error) {
		if db != nil {
			return db, nil
		}
		s, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		db = s
		closers = append(closers, s.Close)
		return s, nil
	}

	vectors, err := openVectorStore(ctx, settings, openDB)
	if err != nil {
		closeRuntime()
		return err
	}
	sessions, err := openSessionStore(settings, openDB)
	if err != nil {
		closeRuntime()
		return err
	}

	prompts, err := file.NewPromptStore(filepath.Join(dataDir, "prompts"))
	if err != nil {
		closeRuntime()
		return err
	}
	promptStore = prompts

	pipeline := services.NewIngestionPipeline(
		extractors.Default(),
		aiRes.EmbeddingService,
		vectors,
		aiRes.TokenCounter,
		settings.Ingest,
	)
	retriever := services.NewRetriever(aiRes.EmbeddingService, vectors)

	planner := services.NewDialogPlanner(aiRes.LLMService)
	planner.SetPromptStore(prompts)
	recommender := services.NewRecommendationComposer(aiRes.LLMService, retriever, settings.Retrieval.RecommendK())
	recommender.SetPromptStore(prompts)
	asker := services.NewAskService(retriever, aiRes.LLMService, settings.Retrieval.TopK)
	asker.SetPromptStore(prompts)

	ingestService = pipeline
	folderWatcher = services.NewFolderWatcher(pipeline)
	dialogService = services.NewDialogOrchestrator(sessions, planner, recommender)
	askService = asker
	statsService = services.NewStatsService(vectors, settings.Store.Collection)
	return nil
}

func openVectorStore(ctx context.Context, settings *domain.AppSettings, openDB func() (*sqlite.Store, error)) (driven.VectorStore, error) {
	switch settings.Store.VectorBackend {
	case domain.VectorBackendMemory:
		return memory.NewVectorStore(), nil
	case domain.VectorBackendSQLite:
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		return db.VectorStore(settings.Store.Collection), nil
	case domain.VectorBackendPostgres:
		store, err := postgres.NewVectorStore(ctx, settings.Store.DatabaseURL, settings.Store.Collection)
		if err != nil {
			return nil, err
		}
		closers = append(closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrInvalidInput, settings.Store.VectorBackend)
	}
}

func openSessionStore(settings *domain.AppSettings, openDB func() (*sqlite.Store, error)) (driven.SessionStore, error) {
	switch settings.Store.SessionBackend {
	case domain.SessionBackendMemory:
		return memory.NewSessionStore(settings.Store.SessionTTL), nil
	case domain.SessionBackendSQLite:
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		return db.SessionStore(settings.Store.SessionTTL), nil
	case domain.SessionBackendRedis:
		store := redis.NewSessionStore(redis.NewClient(settings.Store.RedisURL), "", settings.Store.SessionTTL)
		closers = append(closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", domain.ErrInvalidInput, settings.Store.SessionBackend)
	}
}

// closeRuntime releases every wired resource.
func closeRuntime() {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	if err := errors.Join(errs...); err != nil {
		logger.Debug("closing resources: %v", err)
	}
}
