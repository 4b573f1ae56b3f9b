package parser

import (
	"regexp"
	"strings"
)

// Section headings that open the ingredient listing. Matched ASCII-case-insensitively.
var startMarkers = []string{
	"[전성분]",
	"[성분]",
	"전성분",
	"성분명",
	"ingredients",
	"inci",
	"성분",
}

// Headings of the sections that usually follow the listing.
var endMarkers = []string{
	"[제조번호]",
	"제조번호",
	"사용기한",
	"사용 기한",
	"유통기한",
	"사용방법",
	"사용법",
	"사용시 주의사항",
	"사용 시 주의사항",
	"주의사항",
	"내용량",
	"용량",
	"화장품책임판매업자",
	"책임판매업자",
	"제조판매업자",
	"제조업자",
	"제조국",
	"기능성화장품",
}

var (
	endMarkerPattern = regexp.MustCompile(`(?i)\b(?:made in|lot\s*(?:no\.?)?|exp\.?|mfg\.?|batch)\b`)
	packagingCode    = regexp.MustCompile(`\b[A-Z]{1,3}\d{5,}[A-Z]?\b|\b\d{8,14}\b`)
	unitQuantity     = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)?\s?(?:ml|mg|kg|g|l|oz|fl\.?\s?oz)\b|\d+(?:[.,]\d+)?\s?[㎖㎎ℓ]`)
	bareLine         = regexp.MustCompile(`^[\s\p{P}\p{S}\d]*$`)
	colourIndex      = regexp.MustCompile(`^CI\s?\d{5}$`)
)

const markerTrimSet = " \t\r\n:：-–]】)"

// ExtractSection isolates the ingredient listing from the full recognized text.
// found is false when no start marker is present; a marker followed only by
// noise yields found with an empty section.
func ExtractSection(raw string) (section string, found bool) {
	lower := asciiLower(raw)

	start, markerLen := earliestMarker(lower, startMarkers)
	if start < 0 {
		return "", false
	}

	body := raw[start+markerLen:]
	body = strings.TrimLeft(body, markerTrimSet)
	if end := sectionEnd(body); end >= 0 {
		body = body[:end]
	}

	return stripTrailingNoise(body), true
}

// earliestMarker returns the byte offset and length of the first marker in
// text, preferring the longer marker when two start at the same offset.
func earliestMarker(text string, markers []string) (int, int) {
	best, bestLen := -1, 0
	for _, m := range markers {
		idx := strings.Index(text, asciiLower(m))
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best || (idx == best && len(m) > bestLen) {
			best, bestLen = idx, len(m)
		}
	}
	return best, bestLen
}

func sectionEnd(body string) int {
	lower := asciiLower(body)
	end, _ := earliestMarker(lower, endMarkers)

	for _, re := range []*regexp.Regexp{endMarkerPattern, unitQuantity} {
		if loc := re.FindStringIndex(body); loc != nil && (end < 0 || loc[0] < end) {
			end = loc[0]
		}
	}
	if at := firstPackagingCode(body); at >= 0 && (end < 0 || at < end) {
		end = at
	}
	return end
}

// firstPackagingCode skips colour-index names such as CI77491, which share
// the shape of a lot code but are ingredients.
func firstPackagingCode(body string) int {
	for _, loc := range packagingCode.FindAllStringIndex(body, -1) {
		if !isColourIndex(body[loc[0]:loc[1]]) {
			return loc[0]
		}
	}
	return -1
}

func isColourIndex(s string) bool {
	return colourIndex.MatchString(strings.TrimSpace(s))
}

// stripTrailingNoise drops trailing lines made only of packaging codes,
// unit quantities, digits or punctuation.
func stripTrailingNoise(body string) string {
	lines := strings.Split(body, "\n")
	for len(lines) > 0 {
		last := strings.TrimSpace(lines[len(lines)-1])
		residue := packagingCode.ReplaceAllStringFunc(last, func(code string) string {
			if isColourIndex(code) {
				return code
			}
			return ""
		})
		residue = unitQuantity.ReplaceAllString(residue, "")
		if last != "" && !bareLine.MatchString(residue) {
			break
		}
		lines = lines[:len(lines)-1]
	}
	return strings.Trim(strings.Join(lines, "\n"), " \t\r\n,.;")
}

// asciiLower lowercases A-Z only, so byte offsets match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
