package ingredient

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/skincheck-go/internal/domain"
)

type column int

const (
	colUnknown column = iota
	colKorean
	colEnglish
	colPurpose
	colDescription
	colGoodFor
	colBadFor
)

// headerColumns maps header cell text (lowercased, substring) to a column.
// Order matters: the first matching entry wins.
var headerColumns = []struct {
	needle string
	col    column
}{
	{"영문", colEnglish},
	{"inci", colEnglish},
	{"english", colEnglish},
	{"한글", colKorean},
	{"성분명", colKorean},
	{"korean", colKorean},
	{"목적", colPurpose},
	{"purpose", colPurpose},
	{"function", colPurpose},
	{"설명", colDescription},
	{"description", colDescription},
	{"추천", colGoodFor},
	{"good", colGoodFor},
	{"주의", colBadFor},
	{"bad", colBadFor},
}

// ParseIngredientTable extracts records from every HTML table whose header
// row names at least a Korean or English ingredient column.
func ParseIngredientTable(r io.Reader) ([]*domain.IngredientRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	records := make([]*domain.IngredientRecord, 0)
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		columns := headerLayout(table)
		if !hasNameColumn(columns) {
			return
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}

			record := &domain.IngredientRecord{}
			cells.Each(func(i int, cell *goquery.Selection) {
				if i >= len(columns) {
					return
				}
				text := strings.Join(strings.Fields(cell.Text()), " ")
				switch columns[i] {
				case colKorean:
					record.KoreanName = text
				case colEnglish:
					record.EnglishName = text
				case colPurpose:
					record.Purpose = splitList(text)
				case colDescription:
					record.Description = text
				case colGoodFor:
					record.GoodFor = splitList(text)
				case colBadFor:
					record.BadFor = splitList(text)
				}
			})

			if record.KoreanName == "" {
				record.KoreanName = record.EnglishName
			}
			if record.KoreanName == "" {
				return
			}
			records = append(records, record)
		})
	})

	return records, nil
}

func headerLayout(table *goquery.Selection) []column {
	header := table.Find("thead tr").First()
	if header.Length() == 0 {
		header = table.Find("tr").First()
	}

	cells := header.Find("th")
	columns := make([]column, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		columns = append(columns, classifyHeader(cell.Text()))
	})
	return columns
}

func classifyHeader(text string) column {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, h := range headerColumns {
		if strings.Contains(lower, h.needle) {
			return h.col
		}
	}
	return colUnknown
}

func hasNameColumn(columns []column) bool {
	for _, c := range columns {
		if c == colKorean || c == colEnglish {
			return true
		}
	}
	return false
}

func splitList(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == '·'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
