package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/util"
	"github.com/kapu/skincheck-go/pkg/errors"
)

const (
	descriptionMaxRunes = 120
	emptySlot           = "-"
)

// ReportFormatter renders scan results as plain text.
type ReportFormatter struct {
	showSource bool
}

// NewReportFormatter creates a formatter; showSource appends the tier each
// value came from.
func NewReportFormatter(showSource bool) *ReportFormatter {
	return &ReportFormatter{showSource: showSource}
}

type itemView struct {
	Name        string
	Label       string
	Purpose     string
	Suitability string
	Description string
}

type candidatesView struct {
	Count     int
	Matched   int
	Profile   string
	ScannedAt string
	Items     []itemView
}

// FormatCandidates lists the recognized ingredients with their classification.
func (f *ReportFormatter) FormatCandidates(items []*domain.ResolvedIngredient, profile domain.SkinTypeProfile, scannedAt time.Time) string {
	view := candidatesView{
		Count:     len(items),
		Profile:   f.formatProfile(profile),
		ScannedAt: util.FormatKST(scannedAt, "2006-01-02 15:04"),
		Items:     make([]itemView, 0, len(items)),
	}
	for _, item := range items {
		if item.Matched() {
			view.Matched++
		}
		view.Items = append(view.Items, itemView{Name: item.DisplayName, Label: item.Classification.Label()})
	}

	rendered, err := executeReportTemplate("candidates", view)
	if err != nil {
		return f.FormatError(err.Error())
	}
	return rendered
}

// FormatMatches summarizes the remote analysis.
func (f *ReportFormatter) FormatMatches(result *domain.AnalysisResult) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("🔬 분석 결과\n")
	sb.WriteString(fmt.Sprintf("   ✅ 좋은 성분: %s\n", joinOrNone(result.GoodNames())))
	sb.WriteString(fmt.Sprintf("   ⚠️ 주의 성분: %s", joinOrNone(result.CautionNames())))
	return sb.String()
}

// FormatEvent renders one resolved enrichment slot; other states render empty.
func (f *ReportFormatter) FormatEvent(ev domain.EnrichmentEvent) string {
	if ev.State != domain.SlotResolved {
		return ""
	}
	line := fmt.Sprintf("   %d. %s · %s: %s", ev.Index+1, ev.Name, FieldLabel(ev.Field), ev.Value)
	if f.showSource {
		line += fmt.Sprintf(" [%s]", ev.Source)
	}
	return line
}

// FormatDetails renders every ingredient with its enrichment slots.
func (f *ReportFormatter) FormatDetails(items []*domain.ResolvedIngredient) string {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView{
			Name:        item.DisplayName,
			Label:       item.Classification.Label(),
			Purpose:     f.slotValue(item.Purpose),
			Suitability: f.slotValue(item.Suitability),
			Description: util.TruncateString(f.slotValue(item.Description), descriptionMaxRunes),
		})
	}

	rendered, err := executeReportTemplate("ingredient_details", views)
	if err != nil {
		return f.FormatError(err.Error())
	}
	return rendered
}

// FormatSummary renders the whole-product evaluation.
func (f *ReportFormatter) FormatSummary(summary string) string {
	if strings.TrimSpace(summary) == "" {
		return ""
	}
	return "📝 종합 평가\n" + strings.TrimSpace(summary)
}

// FormatFailure renders the user-facing message of err.
func (f *ReportFormatter) FormatFailure(err error) string {
	return f.FormatError(errors.UserMessage(err))
}

// FormatError formats error message
func (f *ReportFormatter) FormatError(message string) string {
	return fmt.Sprintf("❌ %s", message)
}

// FieldLabel is the Korean label of an enrichment field.
func FieldLabel(field domain.FieldKind) string {
	switch field {
	case domain.FieldPurpose:
		return "기능"
	case domain.FieldSuitability:
		return "피부 타입"
	case domain.FieldDescription:
		return "설명"
	default:
		return string(field)
	}
}

func (f *ReportFormatter) formatProfile(profile domain.SkinTypeProfile) string {
	if len(profile) == 0 {
		return "설정 안 됨"
	}
	return strings.Join(profile.Labels(), ", ")
}

func (f *ReportFormatter) slotValue(slot domain.Slot) string {
	if slot.State != domain.SlotResolved || slot.Value == "" {
		return emptySlot
	}
	if f.showSource {
		return fmt.Sprintf("%s (%s)", slot.Value, slot.Source)
	}
	return slot.Value
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "없음"
	}
	return strings.Join(names, ", ")
}
