package ingredient

import (
	"context"
	"strings"
	"sync"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/util"
	"go.uber.org/zap"
)

// Loader supplies the dataset the index is built from.
type Loader interface {
	Load(ctx context.Context) ([]*domain.IngredientRecord, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]*domain.IngredientRecord, error)

func (f LoaderFunc) Load(ctx context.Context) ([]*domain.IngredientRecord, error) {
	return f(ctx)
}

type indexEntry struct {
	record    *domain.IngredientRecord
	nativeKey string
	altKey    string
}

// Index resolves parsed names against the reference dataset. It is built
// exactly once; concurrent callers block until the build completes, and all
// reads after that are lock-free.
type Index struct {
	loader Loader
	logger *zap.Logger

	once     sync.Once
	buildErr error

	entries  []indexEntry
	byNative map[string]*domain.IngredientRecord
	byAlt    map[string]*domain.IngredientRecord
}

func NewIndex(loader Loader, logger *zap.Logger) *Index {
	return &Index{
		loader: loader,
		logger: logger,
	}
}

// NewIndexFromRecords builds an index over an in-memory dataset.
func NewIndexFromRecords(records []*domain.IngredientRecord, logger *zap.Logger) *Index {
	return NewIndex(LoaderFunc(func(context.Context) ([]*domain.IngredientRecord, error) {
		return records, nil
	}), logger)
}

// Build loads the dataset on first call. Later calls return the first
// outcome without reloading.
func (idx *Index) Build(ctx context.Context) error {
	idx.once.Do(func() {
		idx.buildErr = idx.build(ctx)
	})
	return idx.buildErr
}

func (idx *Index) build(ctx context.Context) error {
	records, err := idx.loader.Load(ctx)
	if err != nil {
		idx.logger.Error("Failed to load ingredient dataset", zap.Error(err))
		return err
	}

	idx.entries = make([]indexEntry, 0, len(records))
	idx.byNative = make(map[string]*domain.IngredientRecord, len(records))
	idx.byAlt = make(map[string]*domain.IngredientRecord, len(records))

	for _, record := range records {
		if record == nil {
			continue
		}
		entry := indexEntry{
			record:    record,
			nativeKey: util.NormalizeKey(record.KoreanName),
			altKey:    util.NormalizeKey(record.EnglishName),
		}
		idx.entries = append(idx.entries, entry)

		// First record wins so lookups stay stable when the dataset repeats a name.
		if entry.nativeKey != "" {
			if _, exists := idx.byNative[entry.nativeKey]; !exists {
				idx.byNative[entry.nativeKey] = record
			}
		}
		if entry.altKey != "" {
			if _, exists := idx.byAlt[entry.altKey]; !exists {
				idx.byAlt[entry.altKey] = record
			}
		}
	}

	idx.logger.Info("Ingredient index built",
		zap.Int("records", len(idx.entries)),
		zap.Int("native_keys", len(idx.byNative)),
		zap.Int("alternate_keys", len(idx.byAlt)),
	)
	return nil
}

// FindByName returns the record for name, or nil. Exact native then
// alternate lookup; on miss a dataset-order scan for substring containment
// in either direction over every native key, then over every alternate key.
func (idx *Index) FindByName(ctx context.Context, name string) *domain.IngredientRecord {
	if err := idx.Build(ctx); err != nil {
		return nil
	}

	key := util.NormalizeKey(name)
	if key == "" {
		return nil
	}

	if record, ok := idx.byNative[key]; ok {
		return record
	}
	if record, ok := idx.byAlt[key]; ok {
		return record
	}

	for _, entry := range idx.entries {
		if overlaps(key, entry.nativeKey) {
			return entry.record
		}
	}
	for _, entry := range idx.entries {
		if overlaps(key, entry.altKey) {
			return entry.record
		}
	}
	return nil
}

// Names returns the native names in dataset order; used to seed the
// splitter's exact-name set.
func (idx *Index) Names(ctx context.Context) []string {
	if err := idx.Build(ctx); err != nil {
		return nil
	}
	names := make([]string, 0, len(idx.entries))
	for _, entry := range idx.entries {
		names = append(names, entry.record.DisplayName())
	}
	return names
}

// Len is the number of indexed records.
func (idx *Index) Len(ctx context.Context) int {
	if err := idx.Build(ctx); err != nil {
		return 0
	}
	return len(idx.entries)
}

func overlaps(key, candidate string) bool {
	if candidate == "" {
		return false
	}
	return strings.Contains(candidate, key) || strings.Contains(key, candidate)
}
