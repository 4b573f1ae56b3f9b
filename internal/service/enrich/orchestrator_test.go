package enrich

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/prompt"
	"github.com/kapu/skincheck-go/internal/service/ai"
	"github.com/kapu/skincheck-go/internal/service/cache"
	"github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	calls   atomic.Int32
	reply   func(prompt string) (string, error)
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) GenerateText(ctx context.Context, p string, _ ai.ModelPreset, _ *ai.GenerateOptions) (string, *ai.GenerateMetadata, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}

	if f.reply == nil {
		return "생성된 값", &ai.GenerateMetadata{Provider: "fake"}, nil
	}
	text, err := f.reply(p)
	return text, &ai.GenerateMetadata{Provider: "fake"}, err
}

func (f *fakeGenerator) promptsContaining(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

func newTestOrchestrator(t *testing.T, gen Generator) (*Orchestrator, *cache.FieldCaches) {
	t.Helper()
	caches, err := cache.NewFieldCaches(100)
	if err != nil {
		t.Fatalf("caches: %v", err)
	}
	cfg := Config{Concurrency: 4, GenerationTimeout: 2 * time.Second}
	if gen == nil {
		return NewOrchestrator(caches, nil, nil, cfg, zap.NewNop()), caches
	}
	return NewOrchestrator(caches, gen, nil, cfg, zap.NewNop()), caches
}

func collect(events <-chan domain.EnrichmentEvent) map[domain.FieldKind]domain.EnrichmentEvent {
	resolved := map[domain.FieldKind]domain.EnrichmentEvent{}
	for ev := range events {
		if ev.State == domain.SlotResolved {
			resolved[ev.Field] = ev
		}
	}
	return resolved
}

func TestLocalPurposeSkipsGenerativeTier(t *testing.T) {
	gen := &fakeGenerator{}
	o, _ := newTestOrchestrator(t, gen)

	item := domain.NewResolvedIngredient("글리세린", &domain.IngredientRecord{
		KoreanName: "글리세린",
		Purpose:    []string{"moisturizer"},
	})

	got := collect(o.Run(context.Background(), []*domain.ResolvedIngredient{item}, nil))

	purpose := got[domain.FieldPurpose]
	if purpose.Value != "보습" || purpose.Source != domain.TierLocal {
		t.Fatalf("purpose = %+v", purpose)
	}
	if n := gen.promptsContaining("주요 기능"); n != 0 {
		t.Fatalf("purpose prompt sent %d times", n)
	}

	// Siblings without local data still resolve through the generative tier.
	for _, field := range []domain.FieldKind{domain.FieldSuitability, domain.FieldDescription} {
		if ev := got[field]; ev.Source != domain.TierGenerative || ev.Value == "" {
			t.Fatalf("%s = %+v", field, ev)
		}
	}
}

func TestEachSlotGetsLoadingThenResolved(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeGenerator{})
	items := []*domain.ResolvedIngredient{
		domain.NewResolvedIngredient("정제수", nil),
		domain.NewResolvedIngredient("향료", nil),
	}

	type slot struct {
		index int
		field domain.FieldKind
	}
	states := map[slot][]domain.SlotState{}
	for ev := range o.Run(context.Background(), items, nil) {
		k := slot{ev.Index, ev.Field}
		states[k] = append(states[k], ev.State)
	}

	if len(states) != len(items)*len(domain.EnrichmentFields) {
		t.Fatalf("got %d slots", len(states))
	}
	for k, seq := range states {
		if len(seq) != 2 || seq[0] != domain.SlotLoading || seq[1] != domain.SlotResolved {
			t.Fatalf("slot %+v saw %v", k, seq)
		}
	}
}

func TestCacheTierServesRepeatedIngredient(t *testing.T) {
	gen := &fakeGenerator{}
	o, _ := newTestOrchestrator(t, gen)
	item := domain.NewResolvedIngredient("정제수", nil)

	first, tier, err := o.Resolve(context.Background(), item, domain.FieldPurpose, nil)
	if err != nil || tier != domain.TierGenerative {
		t.Fatalf("first = %q %s %v", first, tier, err)
	}
	second, tier, _ := o.Resolve(context.Background(), item, domain.FieldPurpose, nil)
	if tier != domain.TierCache || second != first {
		t.Fatalf("second = %q %s", second, tier)
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("generator called %d times", gen.calls.Load())
	}
}

func TestGenerativeFailureFallsBackPerField(t *testing.T) {
	gen := &fakeGenerator{reply: func(p string) (string, error) {
		if strings.Contains(p, "주요 기능") {
			return "", errors.NewGenerativeError(errors.CodeGenerativeRejected, "blocked", "fake", nil)
		}
		return "정상 응답", nil
	}}
	o, caches := newTestOrchestrator(t, gen)
	item := domain.NewResolvedIngredient("정제수", nil)

	got := collect(o.Run(context.Background(), []*domain.ResolvedIngredient{item}, nil))

	purpose := got[domain.FieldPurpose]
	if purpose.Value != prompt.FallbackPurpose || purpose.Source != domain.TierFallback {
		t.Fatalf("purpose = %+v", purpose)
	}
	if errors.CodeOf(purpose.Err) != errors.CodeGenerativeRejected {
		t.Fatalf("purpose err = %v", purpose.Err)
	}
	if _, ok := caches.Get(domain.FieldPurpose, cache.Key{Identity: item.Identity()}); ok {
		t.Fatal("fallback value was cached")
	}
	if got[domain.FieldDescription].Value != "정상 응답" {
		t.Fatalf("sibling description = %+v", got[domain.FieldDescription])
	}
}

func TestDisabledGeneratorUsesFallbacks(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil)
	item := domain.NewResolvedIngredient("정제수", nil)

	got := collect(o.Run(context.Background(), []*domain.ResolvedIngredient{item}, nil))
	if got[domain.FieldSuitability].Value != "모든 피부 타입" {
		t.Fatalf("suitability = %+v", got[domain.FieldSuitability])
	}
	if got[domain.FieldDescription].Value != prompt.FallbackDescription {
		t.Fatalf("description = %+v", got[domain.FieldDescription])
	}
}

func TestGenerativePurposeIsClipped(t *testing.T) {
	gen := &fakeGenerator{reply: func(string) (string, error) {
		return strings.Repeat("가", 40), nil
	}}
	o, _ := newTestOrchestrator(t, gen)

	value, _, err := o.Resolve(context.Background(), domain.NewResolvedIngredient("정제수", nil), domain.FieldPurpose, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len([]rune(value)); n != 20 {
		t.Fatalf("purpose has %d runes", n)
	}
}

func TestLocalValuesFromAnalysis(t *testing.T) {
	analysis := &domain.AnalysisResult{
		GoodMatches:    []domain.GoodMatch{{Name: "판테놀", Purpose: "soothing"}},
		CautionMatches: []domain.CautionMatch{{Name: "향료", Description: "Can irritate sensitive and acne-prone skin."}},
		Success:        true,
	}
	good := domain.NewResolvedIngredient("판테놀", nil)
	caution := domain.NewResolvedIngredient("향료", nil)

	if v, ok := localValue(good, domain.FieldPurpose, analysis); !ok || v != "진정" {
		t.Fatalf("good purpose = %q %v", v, ok)
	}
	if v, ok := localValue(good, domain.FieldSuitability, analysis); !ok || v != "권장: 모든 피부 타입" {
		t.Fatalf("good suitability = %q %v", v, ok)
	}
	if v, ok := localValue(caution, domain.FieldSuitability, analysis); !ok || v != "주의: 민감성, 여드름성" {
		t.Fatalf("caution suitability = %q %v", v, ok)
	}
	if _, ok := localValue(caution, domain.FieldDescription, analysis); ok {
		t.Fatal("english narrative should go through translation")
	}
}

func TestDescriptionTranslationIsKeyedByContent(t *testing.T) {
	gen := &fakeGenerator{}
	o, _ := newTestOrchestrator(t, gen)
	item := domain.NewResolvedIngredient("향료", nil)

	short := &domain.AnalysisResult{CautionMatches: []domain.CautionMatch{{Name: "향료", Description: "May irritate."}}}
	long := &domain.AnalysisResult{CautionMatches: []domain.CautionMatch{{Name: "향료", Description: strings.Repeat("Fragrance can irritate. ", 20)}}}

	o.Resolve(context.Background(), item, domain.FieldDescription, short)
	_, tier, _ := o.Resolve(context.Background(), item, domain.FieldDescription, long)
	if tier != domain.TierGenerative {
		t.Fatalf("changed narrative hit the cache (tier %s)", tier)
	}
	if gen.promptsContaining("자연스러운 한국어로 옮기세요") != 1 {
		t.Fatal("short narrative should use the short translation prompt")
	}
	if gen.promptsContaining("요약하세요") != 1 {
		t.Fatal("long narrative should use the summary prompt")
	}
}

func TestCancelledSessionStillPopulatesCache(t *testing.T) {
	gen := &fakeGenerator{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	o, caches := newTestOrchestrator(t, gen)
	item := domain.NewResolvedIngredient("정제수", nil)

	ctx, cancel := context.WithCancel(context.Background())
	events := o.Run(ctx, []*domain.ResolvedIngredient{item}, nil)

	<-gen.started
	cancel()
	close(gen.release)

	for ev := range events {
		if ev.State == domain.SlotResolved {
			t.Fatalf("resolved event delivered after cancellation: %+v", ev)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := caches.Get(domain.FieldPurpose, cache.Key{Identity: item.Identity()}); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("in-flight generation did not populate the cache")
}

func TestConcurrentMissesShareOneCall(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	o, _ := newTestOrchestrator(t, gen)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := domain.NewResolvedIngredient("글리세린", nil)
			results[i], _, _ = o.Resolve(context.Background(), item, domain.FieldPurpose, nil)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	if gen.calls.Load() != 1 {
		t.Fatalf("generator called %d times", gen.calls.Load())
	}
	for _, r := range results {
		if r != results[0] {
			t.Fatalf("results differ: %v", results)
		}
	}
}

func TestExplainAndTranslate(t *testing.T) {
	gen := &fakeGenerator{reply: func(p string) (string, error) {
		if strings.Contains(p, "번역하세요") {
			return "보습", nil
		}
		return "설명", nil
	}}
	o, _ := newTestOrchestrator(t, gen)

	item := domain.NewResolvedIngredient("향료", nil)
	item.Classification = domain.ClassCaution
	if v, tier := o.Explain(context.Background(), item, "may irritate"); v != "설명" || tier != domain.TierGenerative {
		t.Fatalf("explain = %q %s", v, tier)
	}
	if _, tier := o.Explain(context.Background(), item, "may irritate"); tier != domain.TierCache {
		t.Fatalf("second explain tier = %s", tier)
	}
	if gen.promptsContaining("주의해서") != 1 {
		t.Fatal("caution explanation template not used")
	}

	if v, _ := o.TranslateShortText(context.Background(), "moisturizing"); v != "보습" {
		t.Fatalf("translate = %q", v)
	}

	offline, _ := newTestOrchestrator(t, nil)
	if v, tier := offline.TranslateShortText(context.Background(), "moisturizing"); v != "moisturizing" || tier != domain.TierFallback {
		t.Fatalf("offline translate = %q %s", v, tier)
	}
	if v, _ := offline.Explain(context.Background(), item, ""); v != prompt.ExplanationCaution {
		t.Fatalf("offline explain = %q", v)
	}
}

func TestTranslatePurposes(t *testing.T) {
	got := TranslatePurposes([]string{"Moisturizer", "moisturizing", "Skin Conditioning", " humectant ", "film forming"})
	if got != "보습, 피부 컨디셔닝, 수분 공급, film forming" {
		t.Fatalf("TranslatePurposes = %q", got)
	}
}
