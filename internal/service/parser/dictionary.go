package parser

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/util"
)

// DefaultKnownNames are common label ingredients that OCR tends to fuse with
// their neighbours.
var DefaultKnownNames = []string{
	"정제수",
	"글리세린",
	"부틸렌글라이콜",
	"나이아신아마이드",
	"1,2-헥산다이올",
	"시트로넬올",
	"리날룰",
	"리모넨",
	"제라니올",
	"쿠마린",
	"페녹시에탄올",
	"벤질알코올",
	"에틸헥실글리세린",
	"판테놀",
	"알란토인",
	"병풀추출물",
	"마데카소사이드",
	"소듐하이알루로네이트",
	"히알루론산",
	"세라마이드엔피",
	"스쿠알란",
	"다이메티콘",
	"카보머",
	"트로메타민",
	"잔탄검",
	"토코페롤",
	"아데노신",
	"살리실릭애씨드",
	"티트리잎오일",
	"시어버터",
	"미네랄오일",
	"징크옥사이드",
	"티타늄디옥사이드",
	"글리콜릭애씨드",
	"알부틴",
	"레티놀",
	"세틸알코올",
	"다이소듐이디티에이",
	"프로판다이올",
	"카프릴릭/카프릭트라이글리세라이드",
}

// Dictionary holds a bounded list of names scanned inside fused words and an
// exact-name set that marks words which must never be split.
type Dictionary struct {
	scan  []string // lowercase, longest first
	exact map[string]struct{}
}

// NewDictionary keeps at most MaxDictionarySize scan names of at least
// MinKnownNameLen runes. exactNames may be large; it is only used for O(1)
// membership.
func NewDictionary(scanNames []string, exactNames []string) *Dictionary {
	d := &Dictionary{exact: make(map[string]struct{}, len(scanNames)+len(exactNames))}

	seen := make(map[string]struct{}, len(scanNames))
	for _, name := range scanNames {
		key := util.NormalizeKey(name)
		if key == "" {
			continue
		}
		d.exact[key] = struct{}{}
		if utf8.RuneCountInString(key) < constants.ParsingLimits.MinKnownNameLen {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		d.scan = append(d.scan, key)
	}

	sort.SliceStable(d.scan, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(d.scan[i]), utf8.RuneCountInString(d.scan[j])
		if li != lj {
			return li > lj
		}
		return d.scan[i] < d.scan[j]
	})
	if len(d.scan) > constants.ParsingLimits.MaxDictionarySize {
		d.scan = d.scan[:constants.ParsingLimits.MaxDictionarySize]
	}

	for _, name := range exactNames {
		if key := util.NormalizeKey(name); key != "" {
			d.exact[key] = struct{}{}
		}
	}

	return d
}

// DefaultDictionary is built from DefaultKnownNames only.
func DefaultDictionary() *Dictionary {
	return NewDictionary(DefaultKnownNames, nil)
}

// IsKnown reports exact membership of word under name normalization.
func (d *Dictionary) IsKnown(word string) bool {
	_, ok := d.exact[util.NormalizeKey(word)]
	return ok
}

// Size returns the number of scan names.
func (d *Dictionary) Size() int {
	return len(d.scan)
}

// findFused returns the byte offset and length in word of the longest known
// name occurring as a proper substring, or -1. Among equally long names the
// earliest occurrence wins.
func (d *Dictionary) findFused(word string) (int, int) {
	lower := asciiLower(word)
	bestIdx, bestLen, bestRunes := -1, 0, 0
	for _, name := range d.scan {
		runes := utf8.RuneCountInString(name)
		if bestIdx >= 0 && runes < bestRunes {
			break
		}
		if len(name) >= len(lower) {
			continue
		}
		if idx := strings.Index(lower, name); idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			bestIdx, bestLen, bestRunes = idx, len(name), runes
		}
	}
	return bestIdx, bestLen
}
