package domain

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kapu/skincheck-go/internal/util"
)

// IngredientRecord is one reference entry of the ingredient dataset.
// Records are loaded once and shared read-only.
type IngredientRecord struct {
	KoreanName  string   `json:"INGR_KOR_NAME"`
	EnglishName string   `json:"INGR_ENG_NAME"`
	Description string   `json:"description"`
	Purpose     []string `json:"purpose"`
	GoodFor     []string `json:"good_for"`
	BadFor      []string `json:"bad_for"`
}

// DisplayName prefers the Korean name.
func (r *IngredientRecord) DisplayName() string {
	if r == nil {
		return ""
	}
	if name := strings.TrimSpace(r.KoreanName); name != "" {
		return name
	}
	return strings.TrimSpace(r.EnglishName)
}

// Identity is the stable key used for caching enrichment values.
func (r *IngredientRecord) Identity() string {
	return util.NormalizeKey(r.DisplayName())
}

//go:embed data/ingredients.json
var bundledIngredientsJSON []byte

// LoadBundledIngredients decodes the dataset embedded in the binary.
func LoadBundledIngredients() ([]*IngredientRecord, error) {
	return ParseIngredientsJSON(bundledIngredientsJSON)
}

// ParseIngredientsJSON decodes a dataset document. Entries without any name
// are dropped; a missing Korean name falls back to the English name.
func ParseIngredientsJSON(data []byte) ([]*IngredientRecord, error) {
	var raw []*IngredientRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode ingredient dataset: %w", err)
	}

	records := make([]*IngredientRecord, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		r.KoreanName = strings.TrimSpace(r.KoreanName)
		r.EnglishName = strings.TrimSpace(r.EnglishName)
		if r.KoreanName == "" {
			r.KoreanName = r.EnglishName
		}
		if r.KoreanName == "" {
			continue
		}
		records = append(records, r)
	}

	return records, nil
}
