package skintype

import (
	"strings"

	"github.com/kapu/skincheck-go/internal/domain"
)

const labelSeparator = ", "

// Classify returns the taxonomy tags whose keyword appears in text, in
// taxonomy order. Matching is case-insensitive.
func Classify(text string) domain.SkinTypeProfile {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	tags := make([]domain.SkinType, 0, len(domain.SkinTaxonomy))
	for _, st := range domain.SkinTaxonomy {
		for _, kw := range st.Keywords() {
			if strings.Contains(lower, kw) {
				tags = append(tags, st)
				break
			}
		}
	}
	return domain.NewSkinTypeProfile(tags...)
}

// ClassifyAll classifies every evidence string and merges the result.
func ClassifyAll(evidence []string) domain.SkinTypeProfile {
	tags := make([]domain.SkinType, 0, len(domain.SkinTaxonomy))
	for _, text := range evidence {
		tags = append(tags, Classify(text)...)
	}
	return domain.NewSkinTypeProfile(tags...)
}

// Describe joins the Korean labels of the matched tags, or returns def when
// nothing matches.
func Describe(text, def string) string {
	return describe(Classify(text), def)
}

// ForBeneficial describes evidence attached to a beneficial match.
func ForBeneficial(text string) string {
	return Describe(text, domain.DefaultBeneficialSuitability)
}

// ForCaution describes evidence attached to a caution match.
func ForCaution(text string) string {
	return Describe(text, domain.DefaultCautionSuitability)
}

// Suitability renders the "권장: ..., 주의: ..." line. Either side may be
// empty; both empty yields "".
func Suitability(recommended, caution string) string {
	parts := make([]string, 0, 2)
	if recommended != "" {
		parts = append(parts, "권장: "+recommended)
	}
	if caution != "" {
		parts = append(parts, "주의: "+caution)
	}
	return strings.Join(parts, labelSeparator)
}

// FromRecord derives the suitability line from a record's good-for/bad-for
// lists. ok is false when the record carries no skin-type evidence at all.
func FromRecord(record *domain.IngredientRecord) (string, bool) {
	if record == nil {
		return "", false
	}
	good := ClassifyAll(record.GoodFor)
	bad := ClassifyAll(record.BadFor)
	if len(good) == 0 && len(bad) == 0 {
		return "", false
	}
	return Suitability(describe(good, ""), describe(bad, "")), true
}

// Intersects reports whether any evidence names a tag of the profile.
func Intersects(profile domain.SkinTypeProfile, evidence []string) bool {
	for _, tag := range ClassifyAll(evidence) {
		if profile.Contains(tag) {
			return true
		}
	}
	return false
}

func describe(tags domain.SkinTypeProfile, def string) string {
	if len(tags) == 0 {
		return def
	}
	return strings.Join(tags.Labels(), labelSeparator)
}
