package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kapu/skincheck-go/internal/constants"
)

// Product metadata that looks like a token but is never an ingredient.
var exclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]{1,3}\d{4,}[A-Z]?$`),                                           // lot / packaging codes
	regexp.MustCompile(`(?i)^\d+(?:[.,]\d+)?\s*(?:ml|mg|kg|g|l|oz|fl\.?\s?oz|매|개입?|㎖|㎎|ℓ)$`), // unit suffix
	regexp.MustCompile(`\d+(?:[.,]\d+)?\s*%$`),                                               // percentage suffix
	regexp.MustCompile(`(?i)^spf\s?\d+\+*$|^pa\+{1,4}$`),                                     // sun protection grades
	regexp.MustCompile(`[®™©]`),                                                              // trademarks
	regexp.MustCompile(`(?i)^(?:https?://|www\.)|\.(?:com|co\.kr|kr|net)$`),                  // sites
	regexp.MustCompile(`^\d{2,4}-\d{3,4}-\d{4}$`),                                            // phone numbers
	regexp.MustCompile(`(?i)^[a-z0-9&]+\s+(?:co\.?|inc\.?|corp\.?|ltd\.?)$`),                 // company names
}

// Packaging, legal and caution boilerplate. Any token containing one of
// these terms is not ingredient text.
var nonIngredientTerms = []string{
	"성분",
	"제조",
	"판매",
	"사용기한",
	"유통기한",
	"사용법",
	"사용방법",
	"주의",
	"용량",
	"고객",
	"상담",
	"주식회사",
	"㈜",
	"보관",
	"어린이",
	"직사광선",
	"화장품",
	"원산지",
	"수입원",
	"바코드",
	"전화",
	"홈페이지",
	"부작용",
	"기능성",
	"심사",
	"made in",
	"distributed",
	"manufactured",
	"warning",
	"caution",
	"directions",
}

// IsValidName reports whether token is plausible as an ingredient name.
func IsValidName(token string) bool {
	token = strings.TrimSpace(token)
	n := utf8.RuneCountInString(token)
	if n < constants.ParsingLimits.MinNameLen || n > constants.ParsingLimits.MaxNameLen {
		return false
	}
	if isNumericOrPunct(token) {
		return false
	}
	if isColourIndex(token) {
		return true
	}
	for _, re := range exclusionPatterns {
		if re.MatchString(token) {
			return false
		}
	}
	return true
}

// IsNonIngredientText reports whether token contains blacklisted boilerplate.
func IsNonIngredientText(token string) bool {
	lower := strings.ToLower(token)
	for _, term := range nonIngredientTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func isNumericOrPunct(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && !unicode.IsPunct(r) && !unicode.IsSymbol(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
