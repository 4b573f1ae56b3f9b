package prompt

// IngredientData feeds the single-ingredient templates.
type IngredientData struct {
	Name string
}

// TextData feeds the translation templates.
type TextData struct {
	Name string
	Text string
}

// ExplanationData feeds the explanation templates. Reason is the evidence
// the analysis gave for the classification, if any.
type ExplanationData struct {
	Name   string
	Reason string
}

// ReportData feeds the whole-product summary.
type ReportData struct {
	Ingredients []string
	Good        []string
	Caution     []string
	SkinType    string
}
