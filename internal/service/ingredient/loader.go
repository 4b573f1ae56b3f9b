package ingredient

import (
	"context"
	"fmt"
	"os"

	"github.com/kapu/skincheck-go/internal/domain"
	"go.uber.org/zap"
)

// FileLoader reads a JSON dataset document from disk.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(_ context.Context) ([]*domain.IngredientRecord, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read ingredient dataset %s: %w", l.Path, err)
	}
	return domain.ParseIngredientsJSON(data)
}

// BundledLoader serves the dataset embedded in the binary.
type BundledLoader struct{}

func (BundledLoader) Load(_ context.Context) ([]*domain.IngredientRecord, error) {
	return domain.LoadBundledIngredients()
}

type namedLoader struct {
	name   string
	loader Loader
}

// ChainLoader tries each source in order and returns the first non-empty
// dataset. Source failures are logged and skipped.
type ChainLoader struct {
	sources []namedLoader
	logger  *zap.Logger
}

func NewChainLoader(logger *zap.Logger) *ChainLoader {
	return &ChainLoader{logger: logger}
}

// Add appends a source; nil loaders are ignored so optional sources can be
// passed unconditionally.
func (c *ChainLoader) Add(name string, loader Loader) *ChainLoader {
	if loader != nil {
		c.sources = append(c.sources, namedLoader{name: name, loader: loader})
	}
	return c
}

func (c *ChainLoader) Load(ctx context.Context) ([]*domain.IngredientRecord, error) {
	var lastErr error
	for _, src := range c.sources {
		records, err := src.loader.Load(ctx)
		if err != nil {
			c.logger.Warn("Ingredient source failed, trying next",
				zap.String("source", src.name),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if len(records) == 0 {
			c.logger.Warn("Ingredient source is empty, trying next", zap.String("source", src.name))
			continue
		}

		c.logger.Info("Ingredient dataset loaded",
			zap.String("source", src.name),
			zap.Int("records", len(records)),
		)
		return records, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("no ingredient source available: %w", lastErr)
	}
	return nil, fmt.Errorf("no ingredient source available")
}
