package enrich

import (
	"strings"

	"github.com/kapu/skincheck-go/internal/util"
)

// purposeLabels translates dataset purpose tags into Korean.
var purposeLabels = map[string]string{
	"anti-acne":         "여드름 완화",
	"antioxidant":       "항산화",
	"cleansing":         "세정",
	"colorant":          "착색",
	"emulsifier":        "유화",
	"exfoliant":         "각질 제거",
	"fragrance":         "향료",
	"moisturizer":       "보습",
	"ph adjuster":       "pH 조절",
	"preservative":      "보존",
	"skin-brightening":  "미백",
	"solvent":           "용해",
	"soothing":          "진정",
	"sunscreen":         "자외선 차단",
	"thickener":         "점증",
	"emollient":         "보습 및 유연화",
	"humectant":         "수분 공급",
	"anti-aging":        "항노화",
	"whitening":         "미백",
	"anti-inflammatory": "항염",
	"antimicrobial":     "항균",
	"moisturizing":      "보습",
	"conditioning":      "컨디셔닝",
	"skin conditioning": "피부 컨디셔닝",
}

// TranslatePurpose maps one tag; unknown tags pass through trimmed.
func TranslatePurpose(tag string) string {
	tag = strings.TrimSpace(tag)
	if label, ok := purposeLabels[strings.ToLower(tag)]; ok {
		return label
	}
	return tag
}

// TranslatePurposes maps and joins tags, dropping duplicates such as
// "moisturizer" and "moisturizing".
func TranslatePurposes(tags []string) string {
	labels := make([]string, 0, len(tags))
	for _, tag := range tags {
		if label := TranslatePurpose(tag); label != "" {
			labels = append(labels, label)
		}
	}
	return strings.Join(util.UniqueStrings(labels), ", ")
}
