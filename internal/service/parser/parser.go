package parser

import (
	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/util"
	"github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
)

// Result is the outcome of parsing one recognized label.
type Result struct {
	Section    string
	Tokens     []string
	Candidates []string
}

// Parser turns raw OCR text into the ordered, deduplicated candidate list.
// It is safe for concurrent use.
type Parser struct {
	dict   *Dictionary
	logger *zap.Logger
}

func NewParser(dict *Dictionary, logger *zap.Logger) *Parser {
	if dict == nil {
		dict = DefaultDictionary()
	}
	return &Parser{
		dict:   dict,
		logger: logger,
	}
}

// Parse returns ExtractionEmpty when no ingredient section exists and
// NoCandidates when a section was found but nothing in it survives.
func (p *Parser) Parse(raw string) (*Result, error) {
	section, found := ExtractSection(raw)
	if !found {
		p.logger.Debug("No ingredient section found", zap.Int("input_length", len(raw)))
		return nil, errors.NewExtractionError(errors.CodeExtractionEmpty, len(raw))
	}
	if section == "" {
		p.logger.Debug("Ingredient section holds only noise", zap.Int("input_length", len(raw)))
		return nil, errors.NewExtractionError(errors.CodeNoCandidates, len(raw))
	}

	tokens := Split(section, p.dict)
	candidates := Filter(tokens)

	p.logger.Debug("Parsed ingredient label",
		zap.Int("section_length", len(section)),
		zap.Int("tokens", len(tokens)),
		zap.Int("candidates", len(candidates)),
	)

	if len(candidates) == 0 {
		return nil, errors.NewExtractionError(errors.CodeNoCandidates, len(raw))
	}

	return &Result{
		Section:    section,
		Tokens:     tokens,
		Candidates: candidates,
	}, nil
}

// Filter keeps valid ingredient-like tokens, drops boilerplate, dedups
// case/whitespace-insensitively in first-seen order and caps the list.
func Filter(tokens []string) []string {
	limit := constants.ParsingLimits.MaxIngredientCount
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, util.Min(len(tokens), limit))

	for _, token := range tokens {
		if len(out) >= limit {
			break
		}
		if !IsValidName(token) || IsNonIngredientText(token) {
			continue
		}
		key := util.NormalizeKey(token)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, token)
	}
	return out
}
