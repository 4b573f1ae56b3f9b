package prompt

import (
	"strings"
	"testing"

	"github.com/kapu/skincheck-go/internal/domain"
)

var allTemplates = []TemplateName{
	TemplatePurpose,
	TemplateSuitability,
	TemplateDescription,
	TemplateTranslateShort,
	TemplateTranslateLong,
	TemplateShortText,
	TemplateExplanationGood,
	TemplateExplanationCaution,
	TemplateExplanationNeutral,
	TemplateEnhanceReport,
}

func TestEveryTemplateLoads(t *testing.T) {
	pb := NewPromptBuilder()
	for _, name := range allTemplates {
		spec, err := pb.Spec(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if spec.Name+".yaml" != string(name) {
			t.Errorf("%s declares name %q", name, spec.Name)
		}
		if spec.Preset == "" {
			t.Errorf("%s has no preset", name)
		}
	}
}

func TestRenderPurpose(t *testing.T) {
	out, err := DefaultPromptBuilder().Render(TemplatePurpose, IngredientData{Name: "글리세린"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `"글리세린"`) {
		t.Fatalf("prompt does not name the ingredient: %q", out)
	}

	spec, _ := DefaultPromptBuilder().Spec(TemplatePurpose)
	if spec.MaxRunes != 20 {
		t.Fatalf("purpose max_runes = %d", spec.MaxRunes)
	}
}

func TestRenderReportUsesPlaceholderForEmptyLists(t *testing.T) {
	out, err := NewPromptBuilder().Render(TemplateEnhanceReport, ReportData{
		Ingredients: []string{"정제수", "글리세린"},
		Good:        []string{"글리세린"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "전체 성분: 정제수, 글리세린") {
		t.Fatalf("ingredients missing: %q", out)
	}
	if !strings.Contains(out, "주의 성분: 없음") {
		t.Fatalf("empty caution list not replaced: %q", out)
	}
	if strings.Contains(out, "사용자 피부 타입") {
		t.Fatalf("skin type line rendered without a skin type: %q", out)
	}
}

func TestExplanationSelection(t *testing.T) {
	if ExplanationTemplate(domain.ClassCaution) != TemplateExplanationCaution {
		t.Fatal("caution template")
	}
	if DefaultExplanation(domain.ClassNeutral) != ExplanationNeutral {
		t.Fatal("neutral default")
	}
	if FallbackFor(domain.FieldSuitability) != "모든 피부 타입" {
		t.Fatal("suitability fallback")
	}
}
