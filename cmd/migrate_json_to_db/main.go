package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kapu/skincheck-go/internal/config"
	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/service/database"
	"github.com/kapu/skincheck-go/internal/service/ingredient"
	"github.com/kapu/skincheck-go/internal/util"
	"go.uber.org/zap"
)

// CLI flags
var (
	dryRun   = flag.Bool("dry-run", false, "Validate the dataset without touching the database")
	jsonPath = flag.String("json", "", "Dataset JSON file (default: bundled dataset)")
	verbose  = flag.Bool("verbose", false, "Verbose output")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}
	logger, err := util.NewLogger(level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Ingredient dataset migration", zap.Bool("dry_run", *dryRun))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Step 1: load the dataset
	var loader ingredient.Loader = ingredient.BundledLoader{}
	if *jsonPath != "" {
		loader = ingredient.FileLoader{Path: *jsonPath}
	}
	records, err := loader.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	logger.Info("Dataset loaded", zap.Int("records", len(records)))

	// Step 2: validate
	if problems := validate(records); len(problems) > 0 {
		for _, p := range problems {
			logger.Warn("Invalid record", zap.String("problem", p))
		}
		logger.Fatal("Dataset validation failed", zap.Int("problems", len(problems)))
	}
	logger.Info("Dataset validation passed")

	if *dryRun {
		printSummary(logger, records)
		return
	}

	// Step 3: write
	postgresSvc, err := database.NewPostgresService(ctx, database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgresSvc.Close()

	repo := ingredient.NewRepository(postgresSvc, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to create schema", zap.Error(err))
	}

	written, err := repo.Upsert(ctx, records)
	if err != nil {
		logger.Fatal("Failed to insert data", zap.Error(err))
	}

	logger.Info("Migration completed successfully", zap.Int("written", written))
}

// validate reports duplicate Korean names; the table keys on them.
func validate(records []*domain.IngredientRecord) []string {
	var problems []string
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		key := util.NormalizeKey(r.KoreanName)
		if key == "" {
			problems = append(problems, fmt.Sprintf("record %d has no name", i))
			continue
		}
		if _, dup := seen[key]; dup {
			problems = append(problems, fmt.Sprintf("duplicate name %q", r.KoreanName))
			continue
		}
		seen[key] = struct{}{}
	}
	return problems
}

func printSummary(logger *zap.Logger, records []*domain.IngredientRecord) {
	var withPurpose, withDescription, withSkin int
	for _, r := range records {
		if len(r.Purpose) > 0 {
			withPurpose++
		}
		if r.Description != "" {
			withDescription++
		}
		if len(r.GoodFor) > 0 || len(r.BadFor) > 0 {
			withSkin++
		}
	}
	logger.Info("Dry-run summary",
		zap.Int("records", len(records)),
		zap.Int("with_purpose", withPurpose),
		zap.Int("with_description", withDescription),
		zap.Int("with_skin_evidence", withSkin),
	)
}
