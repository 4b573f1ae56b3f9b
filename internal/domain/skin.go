package domain

import "strings"

// SkinType is one tag of the closed skin-type taxonomy.
type SkinType string

const (
	SkinDry         SkinType = "dry"
	SkinOily        SkinType = "oily"
	SkinCombination SkinType = "combination"
	SkinSensitive   SkinType = "sensitive"
	SkinAcneProne   SkinType = "acne-prone"
	SkinNormal      SkinType = "normal"
)

// SkinTaxonomy lists every tag in display order.
var SkinTaxonomy = []SkinType{
	SkinDry,
	SkinOily,
	SkinCombination,
	SkinSensitive,
	SkinAcneProne,
	SkinNormal,
}

const (
	// DefaultBeneficialSuitability is used when a beneficial item names no skin type.
	DefaultBeneficialSuitability = "모든 피부 타입"
	// DefaultCautionSuitability is used when a caution item names no skin type.
	// Unclassified caution items are not treated as universally safe.
	DefaultCautionSuitability = "민감성"
)

var skinTypeLabels = map[SkinType]string{
	SkinDry:         "건성",
	SkinOily:        "지성",
	SkinCombination: "복합성",
	SkinSensitive:   "민감성",
	SkinAcneProne:   "여드름성",
	SkinNormal:      "중성",
}

var skinTypeKeywords = map[SkinType][]string{
	SkinDry:         {"건성", "건조", "dry"},
	SkinOily:        {"지성", "유분", "oily"},
	SkinCombination: {"복합성", "combination"},
	SkinSensitive:   {"민감", "sensitive"},
	SkinAcneProne:   {"여드름", "트러블", "acne"},
	SkinNormal:      {"중성", "normal"},
}

// Label returns the Korean label.
func (s SkinType) Label() string {
	if label, ok := skinTypeLabels[s]; ok {
		return label
	}
	return string(s)
}

// Keywords returns the lowercase surface forms that signal this tag.
func (s SkinType) Keywords() []string {
	return skinTypeKeywords[s]
}

// ParseSkinType accepts a tag, its Korean label or any keyword.
func ParseSkinType(value string) (SkinType, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}
	for _, st := range SkinTaxonomy {
		if v == string(st) || v == st.Label() {
			return st, true
		}
		for _, kw := range st.Keywords() {
			if v == kw {
				return st, true
			}
		}
	}
	return "", false
}

// SkinTypeProfile is the user's ordered, duplicate-free selection.
type SkinTypeProfile []SkinType

// NewSkinTypeProfile keeps the first occurrence of each known tag.
func NewSkinTypeProfile(tags ...SkinType) SkinTypeProfile {
	profile := make(SkinTypeProfile, 0, len(tags))
	seen := make(map[SkinType]struct{}, len(tags))
	for _, tag := range tags {
		if _, ok := skinTypeLabels[tag]; !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		profile = append(profile, tag)
	}
	return profile
}

// ParseSkinTypeProfile parses labels or tags, skipping unknown values.
func ParseSkinTypeProfile(values []string) SkinTypeProfile {
	tags := make([]SkinType, 0, len(values))
	for _, v := range values {
		if st, ok := ParseSkinType(v); ok {
			tags = append(tags, st)
		}
	}
	return NewSkinTypeProfile(tags...)
}

func (p SkinTypeProfile) Contains(tag SkinType) bool {
	for _, t := range p {
		if t == tag {
			return true
		}
	}
	return false
}

// Labels returns the Korean labels in profile order.
func (p SkinTypeProfile) Labels() []string {
	labels := make([]string, 0, len(p))
	for _, t := range p {
		labels = append(labels, t.Label())
	}
	return labels
}

// String joins the Korean labels; this is the form sent to the analysis service.
func (p SkinTypeProfile) String() string {
	return strings.Join(p.Labels(), ",")
}
