package app

import (
	"context"
	"fmt"

	"github.com/kapu/skincheck-go/internal/config"
	"github.com/kapu/skincheck-go/internal/prompt"
	"github.com/kapu/skincheck-go/internal/service/ai"
	"github.com/kapu/skincheck-go/internal/service/analysis"
	"github.com/kapu/skincheck-go/internal/service/cache"
	"github.com/kapu/skincheck-go/internal/service/database"
	"github.com/kapu/skincheck-go/internal/service/enrich"
	"github.com/kapu/skincheck-go/internal/service/ingredient"
	"github.com/kapu/skincheck-go/internal/service/parser"
	"github.com/kapu/skincheck-go/internal/service/preference"
	"github.com/kapu/skincheck-go/internal/service/remote"
	"go.uber.org/zap"
)

// Options switch optional collaborators off for one run.
type Options struct {
	DisableRemote     bool
	DisableGenerative bool
}

// Container bundles the assembled services.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Index    *ingredient.Index
	Analyzer *analysis.Analyzer
	Models   *ai.ModelManager

	closers []func()
}

// Close releases resources in reverse construction order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles dataset loader, index, caches, generative stack, remote
// client and profile reader into an Analyzer. Optional collaborators that
// fail to initialize are logged and skipped.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Dataset: Postgres, then JSON file, then the bundled copy.
	chain := ingredient.NewChainLoader(logger)
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := database.NewPostgresService(ctx, database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if pgErr != nil {
			logger.Warn("Postgres unavailable, skipping database dataset", zap.Error(pgErr))
		} else {
			closers = append(closers, func() {
				_ = postgresSvc.Close()
			})
			chain.Add("postgres", ingredient.NewRepository(postgresSvc, logger))
		}
	}
	if cfg.Dataset.Path != "" {
		chain.Add("file", ingredient.FileLoader{Path: cfg.Dataset.Path})
	}
	chain.Add("bundled", ingredient.BundledLoader{})

	index := ingredient.NewIndex(chain, logger)
	if err = index.Build(ctx); err != nil {
		return nil, fmt.Errorf("failed to build ingredient index: %w", err)
	}

	// Parser dictionary: bundled known names plus every dataset name for
	// exact matching.
	dict := parser.NewDictionary(parser.DefaultKnownNames, index.Names(ctx))
	ingredientParser := parser.NewParser(dict, logger)

	// Generative stack
	var (
		models    *ai.ModelManager
		generator enrich.Generator
	)
	if !opts.DisableGenerative && cfg.Enrichment.Enabled && cfg.GenerativeConfigured() {
		mm, aiErr := ai.NewModelManager(ctx, ai.ModelManagerConfig{
			GeminiAPIKey:       cfg.Gemini.APIKey,
			OpenAIAPIKey:       cfg.OpenAI.APIKey,
			DefaultGeminiModel: cfg.Gemini.Model,
			DefaultOpenAIModel: cfg.OpenAI.Model,
			EnableFallback:     cfg.OpenAI.EnableFallback,
			RequestsPerSecond:  cfg.Enrichment.RequestsPerSecond,
			Burst:              cfg.Enrichment.Burst,
		}, logger)
		if aiErr != nil {
			logger.Warn("Generative service unavailable, using fallbacks", zap.Error(aiErr))
		} else {
			models = mm
			generator = mm
		}
	} else {
		logger.Info("Generative tier disabled")
	}

	caches, err := cache.NewFieldCaches(cfg.Enrichment.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create response caches: %w", err)
	}

	orchestrator := enrich.NewOrchestrator(caches, generator, prompt.NewPromptBuilder(), enrich.Config{
		Concurrency:       cfg.Enrichment.Concurrency,
		GenerationTimeout: cfg.Enrichment.GenerationTimeout,
	}, logger)

	// Remote analysis
	var analyzerClient remote.Analyzer
	if !opts.DisableRemote && cfg.Analysis.Enabled {
		analyzerClient = remote.NewClient(remote.Config{
			BaseURL: cfg.Analysis.BaseURL,
			Timeout: cfg.Analysis.Timeout,
		}, logger)
	}

	// Skin-type profile: Redis with the static profile as fallback.
	var profiles preference.ProfileReader = preference.NewStaticStore(cfg.Profile.SkinTypes)
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(ctx, cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			logger.Warn("Redis unavailable, using configured skin types", zap.Error(cacheErr))
		} else {
			closers = append(closers, func() {
				_ = cacheSvc.Close()
			})
			profiles = preference.NewRedisStore(cacheSvc, cfg.Redis.ProfileKey, profiles, logger)
		}
	}

	analyzer, err := analysis.NewAnalyzer(analysis.Dependencies{
		Parser:   ingredientParser,
		Index:    index,
		Remote:   analyzerClient,
		Enricher: orchestrator,
		Profiles: profiles,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	logger.Info("Container ready",
		zap.Int("ingredients", index.Len(ctx)),
		zap.Int("dictionary", dict.Size()),
		zap.Bool("remote", analyzerClient != nil),
		zap.Bool("generative", generator != nil),
		zap.Int("cache_capacity", cfg.Enrichment.CacheCapacity),
		zap.Int("concurrency", cfg.Enrichment.Concurrency),
	)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Index:    index,
		Analyzer: analyzer,
		Models:   models,
		closers:  closers,
	}, nil
}
