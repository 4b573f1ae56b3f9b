package enrich

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/prompt"
	"github.com/kapu/skincheck-go/internal/service/ai"
	"github.com/kapu/skincheck-go/internal/service/cache"
	"github.com/kapu/skincheck-go/internal/service/skintype"
	"github.com/kapu/skincheck-go/internal/util"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Generator is the generative-text collaborator. *ai.ModelManager
// satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, preset ai.ModelPreset, opts *ai.GenerateOptions) (string, *ai.GenerateMetadata, error)
}

type Config struct {
	Concurrency       int
	GenerationTimeout time.Duration
	EventBuffer       int
}

// Orchestrator resolves enrichment fields through the local, cache and
// generative tiers. A nil generator disables the generative tier.
type Orchestrator struct {
	caches  *cache.FieldCaches
	gen     Generator
	prompts *prompt.PromptBuilder
	group   singleflight.Group
	cfg     Config
	logger  *zap.Logger
}

func NewOrchestrator(caches *cache.FieldCaches, gen Generator, prompts *prompt.PromptBuilder, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = constants.EnrichmentConfig.Concurrency
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = constants.GenerationLimits.Timeout
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = constants.EnrichmentConfig.EventBuffer
	}
	if prompts == nil {
		prompts = prompt.DefaultPromptBuilder()
	}
	return &Orchestrator{
		caches:  caches,
		gen:     gen,
		prompts: prompts,
		cfg:     cfg,
		logger:  logger,
	}
}

// GenerativeEnabled reports whether a generator is wired.
func (o *Orchestrator) GenerativeEnabled() bool {
	return o.gen != nil
}

// Run enriches every field of every ingredient concurrently and streams
// slot events. Each slot gets a Loading event followed by a Resolved event.
// The channel closes when all tasks finish. Once ctx is done no further
// events are delivered; generative calls already in flight still complete
// and populate the cache.
func (o *Orchestrator) Run(ctx context.Context, items []*domain.ResolvedIngredient, analysis *domain.AnalysisResult) <-chan domain.EnrichmentEvent {
	events := make(chan domain.EnrichmentEvent, o.cfg.EventBuffer)

	go func() {
		defer close(events)

		p := pool.New().WithMaxGoroutines(o.cfg.Concurrency)
		for i, item := range items {
			for _, field := range domain.EnrichmentFields {
				if ctx.Err() != nil {
					break
				}
				index, item, field := i, item, field
				p.Go(func() {
					o.runTask(ctx, events, index, item, field, analysis)
				})
			}
		}
		p.Wait()
	}()

	return events
}

func (o *Orchestrator) runTask(ctx context.Context, events chan<- domain.EnrichmentEvent, index int, item *domain.ResolvedIngredient, field domain.FieldKind, analysis *domain.AnalysisResult) {
	base := domain.EnrichmentEvent{Index: index, Name: item.DisplayName, Field: field}

	loading := base
	loading.State = domain.SlotLoading
	if !emit(ctx, events, loading) {
		return
	}

	value, tier, err := o.Resolve(ctx, item, field, analysis)

	resolved := base
	resolved.State = domain.SlotResolved
	resolved.Value = value
	resolved.Source = tier
	resolved.Err = err
	emit(ctx, events, resolved)
}

func emit(ctx context.Context, events chan<- domain.EnrichmentEvent, ev domain.EnrichmentEvent) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Resolve runs one field through the tiers. The returned error is the
// generative failure behind a fallback value, if any; the value is always
// usable.
func (o *Orchestrator) Resolve(ctx context.Context, item *domain.ResolvedIngredient, field domain.FieldKind, analysis *domain.AnalysisResult) (string, domain.Tier, error) {
	if value, ok := localValue(item, field, analysis); ok {
		return value, domain.TierLocal, nil
	}

	req := o.generationRequest(item, field, analysis)
	if cached, ok := o.caches.Get(field, req.key); ok {
		return cached, domain.TierCache, nil
	}

	value, err := o.generate(ctx, field, req)
	if err != nil {
		o.logger.Debug("Generative tier failed, using fallback",
			zap.String("ingredient", item.DisplayName),
			zap.String("field", string(field)),
			zap.Error(err),
		)
		return prompt.FallbackFor(field), domain.TierFallback, err
	}
	return value, domain.TierGenerative, nil
}

// localValue derives a field from the matched record or the remote
// analysis without any collaborator call.
func localValue(item *domain.ResolvedIngredient, field domain.FieldKind, analysis *domain.AnalysisResult) (string, bool) {
	var (
		good    *domain.GoodMatch
		caution *domain.CautionMatch
	)
	if analysis != nil {
		good, _ = analysis.FindGood(item.DisplayName)
		caution, _ = analysis.FindCaution(item.DisplayName)
	}

	switch field {
	case domain.FieldPurpose:
		if item.Record != nil && len(item.Record.Purpose) > 0 {
			if v := TranslatePurposes(item.Record.Purpose); v != "" {
				return v, true
			}
		}
		if good != nil && good.Purpose != "" {
			return TranslatePurpose(good.Purpose), true
		}

	case domain.FieldSuitability:
		recommended, avoid := "", ""
		if good != nil {
			recommended = skintype.ForBeneficial(good.Purpose)
		}
		if caution != nil {
			avoid = skintype.ForCaution(caution.Description)
		}
		if recommended != "" || avoid != "" {
			return skintype.Suitability(recommended, avoid), true
		}
		if v, ok := skintype.FromRecord(item.Record); ok {
			return v, true
		}

	case domain.FieldDescription:
		if item.Record != nil && item.Record.Description != "" {
			return item.Record.Description, true
		}
		if caution != nil && caution.Description != "" && util.ContainsHangul(caution.Description) {
			return caution.Description, true
		}
	}

	return "", false
}

type generationRequest struct {
	key      cache.Key
	template prompt.TemplateName
	data     any
}

func (o *Orchestrator) generationRequest(item *domain.ResolvedIngredient, field domain.FieldKind, analysis *domain.AnalysisResult) generationRequest {
	key := cache.Key{Identity: item.Identity()}
	name := item.DisplayName

	switch field {
	case domain.FieldPurpose:
		return generationRequest{key: key, template: prompt.TemplatePurpose, data: prompt.IngredientData{Name: name}}
	case domain.FieldSuitability:
		return generationRequest{key: key, template: prompt.TemplateSuitability, data: prompt.IngredientData{Name: name}}
	}

	// Description: translate the caution narrative when there is one,
	// otherwise describe from the name alone.
	source := ""
	if analysis != nil {
		if caution, ok := analysis.FindCaution(item.DisplayName); ok {
			source = caution.Description
		}
	}
	if source == "" {
		return generationRequest{key: key, template: prompt.TemplateDescription, data: prompt.IngredientData{Name: name}}
	}

	key.Hash = util.ContentHash(source)
	if utf8.RuneCountInString(source) < constants.GenerationLimits.ShortDescriptionThreshold {
		return generationRequest{key: key, template: prompt.TemplateTranslateShort, data: prompt.TextData{Name: name, Text: source}}
	}
	return generationRequest{
		key:      key,
		template: prompt.TemplateTranslateLong,
		data:     prompt.TextData{Name: name, Text: util.ClipRunes(source, constants.GenerationLimits.LongDescriptionClip)},
	}
}

// generate runs the generative tier for one cache key. Concurrent misses for
// the same key share one call. The call runs detached from ctx so a
// cancelled session still fills the cache; the caller stops waiting on
// cancellation.
func (o *Orchestrator) generate(ctx context.Context, kind domain.FieldKind, req generationRequest) (string, error) {
	if o.gen == nil {
		return "", errGenerativeDisabled
	}

	spec, err := o.prompts.Spec(req.template)
	if err != nil {
		return "", err
	}
	text, err := o.prompts.Render(req.template, req.data)
	if err != nil {
		return "", err
	}

	detached := context.WithoutCancel(ctx)
	flightKey := string(kind) + "|" + req.key.String()

	result := o.group.DoChan(flightKey, func() (any, error) {
		if cached, ok := o.caches.Get(kind, req.key); ok {
			return cached, nil
		}

		genCtx, cancel := context.WithTimeout(detached, o.cfg.GenerationTimeout)
		defer cancel()

		value, _, err := o.gen.GenerateText(genCtx, text, ai.ModelPreset(spec.Preset), nil)
		if err != nil {
			return "", err
		}
		if spec.MaxRunes > 0 {
			value = util.ClipRunes(value, spec.MaxRunes)
		}
		o.caches.Put(kind, req.key, value)
		return value, nil
	})

	select {
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
