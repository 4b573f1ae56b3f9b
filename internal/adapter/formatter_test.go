package adapter

import (
	"strings"
	"testing"
	"time"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/pkg/errors"
)

func sampleItems() []*domain.ResolvedIngredient {
	glycerin := domain.NewResolvedIngredient("글리세린", &domain.IngredientRecord{KoreanName: "글리세린"})
	glycerin.Classification = domain.ClassBeneficial
	glycerin.Purpose = domain.Slot{State: domain.SlotResolved, Value: "보습", Source: domain.TierLocal}

	fragrance := domain.NewResolvedIngredient("향료", nil)
	fragrance.Classification = domain.ClassCaution
	return []*domain.ResolvedIngredient{glycerin, fragrance}
}

func TestFormatCandidates(t *testing.T) {
	f := NewReportFormatter(false)
	out := f.FormatCandidates(sampleItems(), domain.NewSkinTypeProfile(domain.SkinDry), time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC))

	for _, want := range []string{"인식된 성분 2개 (데이터 일치 1개)", "피부 타입: 건성", "2025-01-02 12:04", "1. 글리세린 - 좋은 성분", "2. 향료 - 주의 성분"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestFormatDetailsMarksPendingSlots(t *testing.T) {
	out := NewReportFormatter(true).FormatDetails(sampleItems())

	if !strings.Contains(out, "기능: 보습 (local)") {
		t.Fatalf("resolved slot missing source:\n%s", out)
	}
	if !strings.Contains(out, "설명: -") {
		t.Fatalf("pending slot not marked:\n%s", out)
	}
}

func TestFormatEvent(t *testing.T) {
	f := NewReportFormatter(false)
	if got := f.FormatEvent(domain.EnrichmentEvent{State: domain.SlotLoading}); got != "" {
		t.Fatalf("loading event rendered %q", got)
	}

	got := f.FormatEvent(domain.EnrichmentEvent{Index: 0, Name: "글리세린", Field: domain.FieldPurpose, State: domain.SlotResolved, Value: "보습"})
	if got != "   1. 글리세린 · 기능: 보습" {
		t.Fatalf("event = %q", got)
	}
}

func TestFormatMatchesAndFailure(t *testing.T) {
	f := NewReportFormatter(false)
	out := f.FormatMatches(&domain.AnalysisResult{GoodMatches: []domain.GoodMatch{{Name: "글리세린"}}})
	if !strings.Contains(out, "좋은 성분: 글리세린") || !strings.Contains(out, "주의 성분: 없음") {
		t.Fatalf("matches = %q", out)
	}

	failure := f.FormatFailure(errors.NewRemoteError(errors.CodeRemoteTimeout, "timeout", "", 0, nil))
	if !strings.HasPrefix(failure, "❌ ") || !strings.Contains(failure, "지연") {
		t.Fatalf("failure = %q", failure)
	}
}
