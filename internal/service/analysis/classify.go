package analysis

import (
	"strings"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/service/skintype"
)

// alwaysCaution are tags whose presence in bad-for flags an ingredient for
// every profile.
var alwaysCaution = []domain.SkinType{domain.SkinSensitive, domain.SkinAcneProne}

// Bad-for terms outside the skin taxonomy that still flag every profile.
var generalCautionTerms = []string{"allergy", "allergic", "irritation", "알레르기", "자극"}

// Classify decides an ingredient's classification. Remote matches win over
// record evidence, and caution wins over beneficial at every level.
func Classify(item *domain.ResolvedIngredient, profile domain.SkinTypeProfile, result *domain.AnalysisResult) domain.Classification {
	if _, ok := result.FindCaution(item.DisplayName); ok {
		return domain.ClassCaution
	}
	if _, ok := result.FindGood(item.DisplayName); ok {
		return domain.ClassBeneficial
	}

	record := item.Record
	if record == nil {
		return domain.ClassNeutral
	}

	if skintype.Intersects(profile, record.BadFor) {
		return domain.ClassCaution
	}
	for _, tag := range skintype.ClassifyAll(record.BadFor) {
		for _, flagged := range alwaysCaution {
			if tag == flagged {
				return domain.ClassCaution
			}
		}
	}
	if hasGeneralCaution(record.BadFor) {
		return domain.ClassCaution
	}
	if skintype.Intersects(profile, record.GoodFor) {
		return domain.ClassBeneficial
	}
	return domain.ClassNeutral
}

func hasGeneralCaution(evidence []string) bool {
	for _, text := range evidence {
		lower := strings.ToLower(text)
		for _, term := range generalCautionTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
