package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/service/ingredient"
	"github.com/kapu/skincheck-go/internal/util"
)

const (
	acceptLanguage = "ko,en;q=0.8"
	requestTimeout = 15 * time.Second
	delayBetween   = 350 * time.Millisecond
)

var (
	urls       = flag.String("urls", "", "comma-separated pages holding ingredient tables")
	outputFile = flag.String("out", "internal/domain/data/ingredients.json", "output dataset file")
	merge      = flag.Bool("merge", true, "keep records already present in the output file")
)

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	pages := splitURLs(*urls)
	if len(pages) == 0 {
		logger.Fatal("no pages given, use -urls")
	}

	client := resty.New().
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", constants.APIConfig.UserAgent).
		SetHeader("Accept-Language", acceptLanguage)

	ctx := context.Background()

	var records []*domain.IngredientRecord
	if *merge {
		existing, err := ingredient.FileLoader{Path: *outputFile}.Load(ctx)
		if err != nil {
			logger.Warn("No existing dataset to merge", zap.String("path", *outputFile), zap.Error(err))
		} else {
			records = existing
		}
	}

	for idx, page := range pages {
		logger.Info("Fetching page", zap.Int("index", idx+1), zap.String("url", page))

		fetched, err := fetchPage(ctx, client, page)
		if err != nil {
			logger.Error("failed to fetch page", zap.String("url", page), zap.Error(err))
			continue
		}
		logger.Info("Parsed ingredient table", zap.String("url", page), zap.Int("records", len(fetched)))

		records = append(records, fetched...)
		time.Sleep(delayBetween)
	}

	records = dedupe(records)
	if len(records) == 0 {
		logger.Fatal("no ingredients fetched")
	}

	if err := writeDataset(*outputFile, records); err != nil {
		logger.Fatal("failed to write dataset", zap.Error(err))
	}

	logger.Info("Ingredient fetch completed", zap.Int("count", len(records)), zap.String("output", *outputFile))
}

func fetchPage(ctx context.Context, client *resty.Client, url string) ([]*domain.IngredientRecord, error) {
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	return ingredient.ParseIngredientTable(bytes.NewReader(resp.Body()))
}

// dedupe keeps the first record per name.
func dedupe(records []*domain.IngredientRecord) []*domain.IngredientRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]*domain.IngredientRecord, 0, len(records))
	for _, r := range records {
		key := r.Identity()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func writeDataset(path string, records []*domain.IngredientRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func splitURLs(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return util.UniqueStrings(out)
}
