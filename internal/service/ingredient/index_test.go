package ingredient

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kapu/skincheck-go/internal/domain"
	"go.uber.org/zap"
)

func sampleRecords() []*domain.IngredientRecord {
	return []*domain.IngredientRecord{
		{KoreanName: "정제수", EnglishName: "Water"},
		{KoreanName: "글리세린", EnglishName: "Glycerin", Purpose: []string{"humectant"}},
		{KoreanName: "병풀추출물", EnglishName: "Centella Asiatica Extract"},
		{KoreanName: "소듐하이알루로네이트", EnglishName: "Sodium Hyaluronate"},
	}
}

func TestFindByNameIsDeterministicAcrossScripts(t *testing.T) {
	idx := NewIndexFromRecords(sampleRecords(), zap.NewNop())
	ctx := context.Background()

	native := idx.FindByName(ctx, "글리세린")
	alt := idx.FindByName(ctx, "GLYCERIN")
	if native == nil || alt == nil {
		t.Fatalf("expected both lookups to resolve, got %v / %v", native, alt)
	}
	if native != alt {
		t.Fatal("native and alternate lookups returned different records")
	}
	if again := idx.FindByName(ctx, " glycerin "); again != native {
		t.Fatal("repeated lookup is not referentially stable")
	}
}

func TestFindByNameSubstringFallback(t *testing.T) {
	idx := NewIndexFromRecords(sampleRecords(), zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
	}{
		{"병풀", "병풀추출물"},                // query inside native key
		{"Centella Asiatica", "병풀추출물"}, // query inside alternate key
		{"하이알루로네이트", "소듐하이알루로네이트"},     // query inside a longer native key
		{"정제수(Water)", "정제수"},          // native key inside query
	}

	for _, tt := range tests {
		got := idx.FindByName(ctx, tt.query)
		if got == nil || got.KoreanName != tt.want {
			t.Errorf("FindByName(%q) = %v, want %s", tt.query, got, tt.want)
		}
	}

	if got := idx.FindByName(ctx, "레티놀"); got != nil {
		t.Fatalf("expected miss, got %v", got)
	}
	if got := idx.FindByName(ctx, "   "); got != nil {
		t.Fatalf("empty query resolved to %v", got)
	}
}

func TestSubstringFallbackScansNativeKeysFirst(t *testing.T) {
	idx := NewIndexFromRecords([]*domain.IngredientRecord{
		{KoreanName: "씨아이77491", EnglishName: "Iron Oxides"},
		{KoreanName: "아이언옥사이드", EnglishName: "Iron Oxide Red"},
	}, zap.NewNop())

	got := idx.FindByName(context.Background(), "아이언옥사이드 Iron Oxides")
	if got == nil || got.KoreanName != "아이언옥사이드" {
		t.Fatalf("FindByName = %v, want the native-key match", got)
	}
}

func TestIndexBuildsOnceUnderConcurrency(t *testing.T) {
	var loads atomic.Int32
	loader := LoaderFunc(func(context.Context) ([]*domain.IngredientRecord, error) {
		loads.Add(1)
		return sampleRecords(), nil
	})
	idx := NewIndex(loader, zap.NewNop())

	var wg sync.WaitGroup
	results := make([]*domain.IngredientRecord, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = idx.FindByName(context.Background(), "글리세린")
		}(i)
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Fatalf("dataset loaded %d times", loads.Load())
	}
	for _, r := range results {
		if r == nil || r != results[0] {
			t.Fatal("concurrent lookups disagree")
		}
	}
}

func TestIndexBuildErrorIsSticky(t *testing.T) {
	loader := LoaderFunc(func(context.Context) ([]*domain.IngredientRecord, error) {
		return nil, errors.New("boom")
	})
	idx := NewIndex(loader, zap.NewNop())

	if err := idx.Build(context.Background()); err == nil {
		t.Fatal("expected build error")
	}
	if got := idx.FindByName(context.Background(), "정제수"); got != nil {
		t.Fatal("lookup should miss when build failed")
	}
}

func TestChainLoaderFallsThrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ingredients.json")
	doc := `[{"INGR_KOR_NAME":"","INGR_ENG_NAME":"Squalane"},{"INGR_KOR_NAME":"","INGR_ENG_NAME":""}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	failing := LoaderFunc(func(context.Context) ([]*domain.IngredientRecord, error) {
		return nil, errors.New("postgres down")
	})
	chain := NewChainLoader(zap.NewNop()).
		Add("postgres", failing).
		Add("file", FileLoader{Path: path}).
		Add("bundled", BundledLoader{})

	records, err := chain.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].KoreanName != "Squalane" {
		t.Fatalf("records = %+v", records)
	}
}

func TestBundledDatasetLoads(t *testing.T) {
	records, err := BundledLoader{}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) == 0 {
		t.Fatal("bundled dataset is empty")
	}

	idx := NewIndexFromRecords(records, zap.NewNop())
	if idx.FindByName(context.Background(), "나이아신아마이드") == nil {
		t.Fatal("bundled dataset is missing niacinamide")
	}
}

func TestParseIngredientTable(t *testing.T) {
	html := `
<html><body>
<table><tr><th>메뉴</th></tr><tr><td>홈</td></tr></table>
<table>
  <thead><tr><th>성분명</th><th>영문명</th><th>배합목적</th><th>설명</th><th>주의 피부</th></tr></thead>
  <tbody>
    <tr><td>글리세린</td><td>Glycerin</td><td>humectant, moisturizer</td><td>보습제</td><td></td></tr>
    <tr><td></td><td>Squalane</td><td>emollient</td><td></td><td>acne / oily</td></tr>
    <tr><td></td><td></td><td>solvent</td><td></td><td></td></tr>
  </tbody>
</table>
</body></html>`

	records, err := ParseIngredientTable(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.KoreanName != "글리세린" || first.EnglishName != "Glycerin" {
		t.Fatalf("first = %+v", first)
	}
	if len(first.Purpose) != 2 || first.Purpose[1] != "moisturizer" {
		t.Fatalf("purpose = %v", first.Purpose)
	}

	second := records[1]
	if second.KoreanName != "Squalane" {
		t.Fatalf("missing Korean name should fall back to English, got %q", second.KoreanName)
	}
	if len(second.BadFor) != 2 || second.BadFor[0] != "acne" {
		t.Fatalf("bad_for = %v", second.BadFor)
	}
}
