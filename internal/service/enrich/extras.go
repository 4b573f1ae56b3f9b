package enrich

import (
	"context"
	"strings"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/prompt"
	"github.com/kapu/skincheck-go/internal/service/ai"
	"github.com/kapu/skincheck-go/internal/service/cache"
	"github.com/kapu/skincheck-go/internal/util"
	"github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
)

var errGenerativeDisabled = errors.NewGenerativeError(errors.CodeGenerativeUnavailable,
	"generative tier disabled", "", nil)

// Explain returns a user-friendly explanation of why item is classified as
// it is. reason is the evidence behind the classification and may be empty.
// Falls back to a fixed message per classification.
func (o *Orchestrator) Explain(ctx context.Context, item *domain.ResolvedIngredient, reason string) (string, domain.Tier) {
	key := cache.Key{Identity: item.Identity() + ":" + string(item.Classification)}
	if reason != "" {
		key.Hash = util.ContentHash(reason)
	}

	if cached, ok := o.caches.Get(domain.FieldExplanation, key); ok {
		return cached, domain.TierCache
	}

	value, err := o.generate(ctx, domain.FieldExplanation, generationRequest{
		key:      key,
		template: prompt.ExplanationTemplate(item.Classification),
		data:     prompt.ExplanationData{Name: item.DisplayName, Reason: reason},
	})
	if err != nil {
		o.logger.Debug("Explanation fell back to default",
			zap.String("ingredient", item.DisplayName),
			zap.Error(err),
		)
		return prompt.DefaultExplanation(item.Classification), domain.TierFallback
	}
	return value, domain.TierGenerative
}

// TranslateShortText translates a short label into Korean. On any failure
// the original text is returned.
func (o *Orchestrator) TranslateShortText(ctx context.Context, text string) (string, domain.Tier) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.TierLocal
	}

	key := cache.Key{Hash: util.ContentHash(text)}
	if cached, ok := o.caches.Get(domain.FieldShortText, key); ok {
		return cached, domain.TierCache
	}

	value, err := o.generate(ctx, domain.FieldShortText, generationRequest{
		key:      key,
		template: prompt.TemplateShortText,
		data:     prompt.TextData{Text: text},
	})
	if err != nil {
		return text, domain.TierFallback
	}
	return value, domain.TierGenerative
}

// Summarize asks for a whole-product evaluation. Not cached: the inputs
// differ per scan.
func (o *Orchestrator) Summarize(ctx context.Context, data prompt.ReportData) (string, error) {
	if o.gen == nil {
		return "", errGenerativeDisabled
	}

	spec, err := o.prompts.Spec(prompt.TemplateEnhanceReport)
	if err != nil {
		return "", err
	}
	text, err := o.prompts.Render(prompt.TemplateEnhanceReport, data)
	if err != nil {
		return "", err
	}

	genCtx, cancel := context.WithTimeout(ctx, o.cfg.GenerationTimeout)
	defer cancel()

	value, _, err := o.gen.GenerateText(genCtx, text, ai.ModelPreset(spec.Preset), nil)
	return value, err
}
