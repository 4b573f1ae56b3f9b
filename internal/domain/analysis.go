package domain

import "github.com/kapu/skincheck-go/internal/util"

// GoodMatch is an ingredient the analysis service considers beneficial.
type GoodMatch struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

// CautionMatch is an ingredient the analysis service flags for caution.
type CautionMatch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AnalysisResult is the remote analysis response for one product.
type AnalysisResult struct {
	Report         string         `json:"analysis_report"`
	GoodMatches    []GoodMatch    `json:"good_matches"`
	CautionMatches []CautionMatch `json:"bad_matches"`
	Success        bool           `json:"success"`
}

// FindGood matches by case/whitespace-insensitive name equality.
func (r *AnalysisResult) FindGood(name string) (*GoodMatch, bool) {
	if r == nil {
		return nil, false
	}
	key := util.NormalizeKey(name)
	for i := range r.GoodMatches {
		if util.NormalizeKey(r.GoodMatches[i].Name) == key {
			return &r.GoodMatches[i], true
		}
	}
	return nil, false
}

// FindCaution matches by case/whitespace-insensitive name equality.
func (r *AnalysisResult) FindCaution(name string) (*CautionMatch, bool) {
	if r == nil {
		return nil, false
	}
	key := util.NormalizeKey(name)
	for i := range r.CautionMatches {
		if util.NormalizeKey(r.CautionMatches[i].Name) == key {
			return &r.CautionMatches[i], true
		}
	}
	return nil, false
}

// GoodNames returns the good match names in response order.
func (r *AnalysisResult) GoodNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.GoodMatches))
	for _, m := range r.GoodMatches {
		names = append(names, m.Name)
	}
	return names
}

// CautionNames returns the caution match names in response order.
func (r *AnalysisResult) CautionNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.CautionMatches))
	for _, m := range r.CautionMatches {
		names = append(names, m.Name)
	}
	return names
}
