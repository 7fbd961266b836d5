package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/custodia-labs/nlq-engine/internal/adapters/driven/ai"
	"github.com/custodia-labs/nlq-engine/internal/adapters/driven/database"
	"github.com/custodia-labs/nlq-engine/internal/adapters/driven/memory"
	"github.com/custodia-labs/nlq-engine/internal/adapters/driven/metrics"
	redisadapter "github.com/custodia-labs/nlq-engine/internal/adapters/driven/redis"
	"github.com/custodia-labs/nlq-engine/internal/adapters/driven/vector"
	"github.com/custodia-labs/nlq-engine/internal/adapters/driving/http"
	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driving"
	"github.com/custodia-labs/nlq-engine/internal/core/services"
	"github.com/custodia-labs/nlq-engine/internal/normalisers"
	"github.com/custodia-labs/nlq-engine/internal/postprocessors"
	"github.com/custodia-labs/nlq-engine/internal/runtime"
)

// app holds the wired engine shared by every command
type app struct {
	cfg      *Config
	runtime  *runtime.Services
	indexer  *services.DocumentIndexer
	router   *services.QueryRouter
	settings driving.SettingsService
	exporter *metrics.Exporter
	cache    http.Pinger // nil for the in-memory cache
	closers  []func() error
	logger   *slog.Logger
}

// newApp builds the engine from configuration. It does not connect to the
// relational database; call connect for that.
func newApp(ctx context.Context, cfg *Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	runtimeConfig := domain.NewRuntimeConfig(cfg.CacheBackend())
	a.runtime = runtime.NewServices(runtimeConfig)
	a.closers = append(a.closers, a.runtime.Close)

	// ===== AI services =====
	aiFactory := ai.NewFactory()

	embedding, err := aiFactory.CreateEmbeddingService(&cfg.AI.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding service: %w", err)
	}
	a.runtime.SetEmbeddingService(embedding)

	llm, err := aiFactory.CreateLLMService(&cfg.AI.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm service: %w", err)
	}
	a.runtime.SetLLMService(llm)
	if llm == nil {
		log.Printf("Warning: no LLM configured (provider=%s); structured questions will fail", cfg.AI.LLM.Provider)
	}
	a.settings = services.NewSettingsService(aiFactory, a.runtime, cfg.AI, logger)

	// ===== Result cache (Redis if available, otherwise in-process) =====
	var cache driven.ResultCache
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		client, err := redisadapter.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)

		redisCache := redisadapter.NewResultCache(client, cfg.CacheTTL, logger)
		cache = redisCache
		a.cache = redisCache
		log.Println("Using Redis result cache")
	} else {
		cache = memory.NewResultCache(cfg.CacheCapacity, cfg.CacheTTL)
		log.Println("Using in-memory result cache")
	}

	// ===== Routing vocabulary =====
	rules, err := services.LoadRoutingRules(cfg.RoutingRulesFile)
	if err != nil {
		return nil, err
	}

	a.exporter = metrics.NewExporter(metrics.DefaultConfig())

	// ===== Services =====
	a.indexer = services.NewDocumentIndexer(services.DocumentIndexerConfig{
		Services:      a.runtime,
		NormaliserReg: normalisers.DefaultRegistry(),
		Pipeline:      postprocessors.DefaultPipeline(false),
		IndexFactory:  vector.NewFlatL2,
		Metrics:       a.exporter,
		Logger:        logger,
	})

	dbConfig := database.DefaultConfig()
	if cfg.DBMaxOpenConns > 0 {
		dbConfig.MaxOpenConns = cfg.DBMaxOpenConns
	}
	if cfg.DBMaxIdleConns > 0 {
		dbConfig.MaxIdleConns = cfg.DBMaxIdleConns
	}
	dbConfig.Logger = logger

	a.router = services.NewQueryRouter(services.QueryRouterConfig{
		Services:  a.runtime,
		Documents: a.indexer,
		Cache:     cache,
		Connector: database.NewConnector(dbConfig),
		Rules:     rules,
		Metrics:   a.exporter,
		Logger:    logger,
	})

	log.Printf("Runtime config: cache_backend=%s, embedding=%t, llm=%t",
		runtimeConfig.CacheBackend,
		runtimeConfig.EmbeddingAvailable(),
		runtimeConfig.LLMAvailable())

	return a, nil
}

// connect opens the configured database. A failure is logged, not fatal:
// the engine keeps serving documents and can be reconnected later.
func (a *app) connect(ctx context.Context) *domain.SchemaDescription {
	log.Printf("Connecting to database %s...", redactDSN(a.cfg.DatabaseURL))
	schema := a.router.Reconnect(ctx, a.cfg.DatabaseURL)
	if !schema.Discovered() {
		log.Printf("Warning: database connection failed: %s", schema.Error)
		return schema
	}
	log.Printf("Database connected (%d tables, %d relationships)", len(schema.Tables), len(schema.Relationships))
	return schema
}

// ingestDir indexes every file already present in the documents directory
func (a *app) ingestDir(ctx context.Context) (*domain.IngestResult, error) {
	entries, err := os.ReadDir(a.cfg.DocsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.IngestResult{IndexedFiles: []string{}}, nil
		}
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			paths = append(paths, filepath.Join(a.cfg.DocsDir, e.Name()))
		}
	}
	return a.indexer.Ingest(ctx, paths)
}

func (a *app) server(version string) *http.Server {
	return http.NewServer(
		http.Config{
			Host:        a.cfg.Host,
			Port:        a.cfg.Port,
			Version:     version,
			DocsDir:     a.cfg.DocsDir,
			CORSOrigins: a.cfg.CORSOrigins,
			Logger:      a.logger,
		},
		a.router,
		a.router,
		a.indexer,
		a.settings,
		a.runtime.Config(),
		a.exporter.Handler(),
		a.cache,
	)
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Warning: shutdown: %v", err)
		}
	}
}
