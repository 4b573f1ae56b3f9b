package prompt

import "github.com/kapu/skincheck-go/internal/domain"

// Fixed texts shown when every tier fails for a field.
const (
	FallbackPurpose     = "정보를 불러올 수 없습니다."
	FallbackDescription = "설명을 불러올 수 없습니다."
	FallbackSuitability = domain.DefaultBeneficialSuitability

	ExplanationCaution = "이 성분은 일부 피부 타입에 자극을 줄 수 있어요. 민감한 피부라면 먼저 소량으로 테스트해보시는 것을 권장합니다."
	ExplanationGood    = "피부에 좋은 효과를 주는 성분이에요. 꾸준히 사용하면 피부 개선에 도움이 됩니다."
	ExplanationNeutral = "이 성분에 대한 정보입니다."
)

// FallbackFor returns the fallback of an enrichment field.
func FallbackFor(kind domain.FieldKind) string {
	switch kind {
	case domain.FieldPurpose:
		return FallbackPurpose
	case domain.FieldSuitability:
		return FallbackSuitability
	case domain.FieldDescription:
		return FallbackDescription
	default:
		return ""
	}
}

// DefaultExplanation is the fixed explanation per classification.
func DefaultExplanation(class domain.Classification) string {
	switch class {
	case domain.ClassBeneficial:
		return ExplanationGood
	case domain.ClassCaution:
		return ExplanationCaution
	default:
		return ExplanationNeutral
	}
}

// ExplanationTemplate picks the template per classification.
func ExplanationTemplate(class domain.Classification) TemplateName {
	switch class {
	case domain.ClassBeneficial:
		return TemplateExplanationGood
	case domain.ClassCaution:
		return TemplateExplanationCaution
	default:
		return TemplateExplanationNeutral
	}
}
