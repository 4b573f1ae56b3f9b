package parser

import (
	"strings"
	"unicode"

	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/util"
)

func isDelimiter(r rune) bool {
	switch r {
	case ',', '.', ';', '·', '、', '，', '。', '\n', '\r':
		return true
	}
	return false
}

// isNumericSeparator reports whether the comma or period at i sits between
// two digits, as in 1,2-헥산다이올 or 0.5%.
func isNumericSeparator(runes []rune, i int) bool {
	if r := runes[i]; r != ',' && r != '.' {
		return false
	}
	return i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])
}

// splitParts cuts section on delimiters, keeping numeric separators inside
// their token. Empty parts are dropped.
func splitParts(section string) []string {
	runes := []rune(section)
	parts := make([]string, 0, 32)
	start := 0
	for i, r := range runes {
		if !isDelimiter(r) || isNumericSeparator(runes, i) {
			continue
		}
		if i > start {
			parts = append(parts, string(runes[start:i]))
		}
		start = i + 1
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

var bracketStripper = strings.NewReplacer(
	"(", "", ")", "",
	"[", "", "]", "",
	"{", "", "}", "",
	"<", "", ">", "",
	"「", "", "」", "",
	"【", "", "】", "",
	"『", "", "』", "",
)

// Split breaks the isolated section into raw candidate tokens. Duplicates
// are kept; filtering happens later.
func Split(section string, dict *Dictionary) []string {
	if dict == nil {
		dict = DefaultDictionary()
	}

	tokens := make([]string, 0, 32)
	for _, part := range splitParts(section) {
		part = strings.TrimSpace(bracketStripper.Replace(part))
		if part == "" {
			continue
		}

		for _, word := range partWords(part, dict) {
			tokens = append(tokens, splitFused(word, dict, 0)...)
		}
	}
	return tokens
}

// partWords splits a part on whitespace. Latin-script parts are multi-word
// INCI names and stay whole; a Hangul part whose joined form is a known name
// was broken by OCR spacing and is rejoined.
func partWords(part string, dict *Dictionary) []string {
	words := strings.Fields(part)
	if len(words) <= 1 {
		return words
	}
	if !util.ContainsHangul(part) && hasLetter(part) {
		return []string{strings.Join(words, " ")}
	}
	if joined := strings.Join(words, ""); dict.IsKnown(joined) {
		return []string{joined}
	}
	return words
}

// splitFused recovers OCR-fused names: a word containing a known name is
// cut around it, and the remainders are kept only if they validate.
func splitFused(word string, dict *Dictionary, depth int) []string {
	if depth > constants.ParsingLimits.MaxSplitDepth || dict.IsKnown(word) {
		return []string{word}
	}

	idx, n := dict.findFused(word)
	if idx < 0 {
		return []string{word}
	}

	prefix, name, suffix := word[:idx], word[idx:idx+n], word[idx+n:]

	out := make([]string, 0, 3)
	if prefix != "" && IsValidName(prefix) {
		out = append(out, splitFused(prefix, dict, depth+1)...)
	}
	out = append(out, name)
	if suffix != "" && IsValidName(suffix) {
		out = append(out, splitFused(suffix, dict, depth+1)...)
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
