package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kapu/skincheck-go/internal/constants"
	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/prompt"
	"github.com/kapu/skincheck-go/internal/service/enrich"
	"github.com/kapu/skincheck-go/internal/service/ingredient"
	"github.com/kapu/skincheck-go/internal/service/parser"
	"github.com/kapu/skincheck-go/internal/service/preference"
	"github.com/kapu/skincheck-go/internal/service/remote"
	"github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
)

// Markers of a server report that is still a placeholder.
var placeholderMarkers = []string{"분석 중", "오류"}

// Dependencies wires an Analyzer. Remote may be nil to run offline.
type Dependencies struct {
	Parser   *parser.Parser
	Index    *ingredient.Index
	Remote   remote.Analyzer
	Enricher *enrich.Orchestrator
	Profiles preference.ProfileReader
	Logger   *zap.Logger
}

// Analyzer runs scans: parse, resolve, classify, then remote analysis and
// enrichment on demand.
type Analyzer struct {
	parser   *parser.Parser
	index    *ingredient.Index
	remote   remote.Analyzer
	enricher *enrich.Orchestrator
	profiles preference.ProfileReader
	logger   *zap.Logger
}

func NewAnalyzer(deps Dependencies) (*Analyzer, error) {
	if deps.Index == nil {
		return nil, fmt.Errorf("ingredient index must not be nil")
	}
	if deps.Enricher == nil {
		return nil, fmt.Errorf("enrichment orchestrator must not be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Parser == nil {
		deps.Parser = parser.NewParser(nil, deps.Logger)
	}
	if deps.Profiles == nil {
		deps.Profiles = preference.NewStaticStore(nil)
	}

	return &Analyzer{
		parser:   deps.Parser,
		index:    deps.Index,
		remote:   deps.Remote,
		enricher: deps.Enricher,
		profiles: deps.Profiles,
		logger:   deps.Logger,
	}, nil
}

// RemoteEnabled reports whether a remote analysis client is wired.
func (a *Analyzer) RemoteEnabled() bool {
	return a.remote != nil
}

// Scan parses raw OCR text and resolves every candidate against the index.
// Returns EXTRACTION_EMPTY or NO_CANDIDATES when nothing usable was found.
func (a *Analyzer) Scan(ctx context.Context, raw string) (*Session, error) {
	parsed, err := a.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	profile, err := a.profiles.CurrentProfile(ctx)
	if err != nil {
		a.logger.Warn("Failed to read skin type profile, continuing without one", zap.Error(err))
		profile = nil
	}

	items := make([]*domain.ResolvedIngredient, 0, len(parsed.Candidates))
	for _, name := range parsed.Candidates {
		item := domain.NewResolvedIngredient(name, a.index.FindByName(ctx, name))
		item.Classification = Classify(item, profile, nil)
		items = append(items, item)
	}

	session := newSession(parsed.Candidates, items, profile)
	a.logger.Info("Scan completed",
		zap.String("session", session.ID),
		zap.Int("candidates", len(parsed.Candidates)),
		zap.Int("matched", session.MatchedCount()),
		zap.String("profile", profile.String()),
	)
	return session, nil
}

// Analyze sends the session's candidates to the remote service. On failure
// the typed remote error is returned and the session is left untouched, so
// the call can simply be repeated.
func (a *Analyzer) Analyze(ctx context.Context, session *Session) (*domain.AnalysisResult, error) {
	if a.remote == nil {
		return nil, errors.NewRemoteError(errors.CodeRemoteUnavailable, "remote analysis disabled", "", 0, nil)
	}

	result, err := a.remote.AnalyzeProduct(ctx, session.Candidates, session.Profile)
	if err != nil {
		a.logger.Warn("Remote analysis failed",
			zap.String("session", session.ID),
			zap.String("code", errors.CodeOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	session.ingest(result)
	return result, nil
}

// Enrich streams enrichment events for every slot of the session. Each event
// is applied to the session before it is forwarded. The channel closes when
// all tasks finish or ctx is done.
func (a *Analyzer) Enrich(ctx context.Context, session *Session) <-chan domain.EnrichmentEvent {
	out := make(chan domain.EnrichmentEvent, constants.EnrichmentConfig.EventBuffer)
	events := a.enricher.Run(ctx, session.Snapshot(), session.Analysis())

	go func() {
		defer close(out)
		for ev := range events {
			session.apply(ev)
			if ctx.Err() != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
	}()

	return out
}

// Summary returns the whole-product evaluation. A detailed server report is
// used as is; otherwise one is generated from the first few ingredients and
// matches, falling back to the server report.
func (a *Analyzer) Summary(ctx context.Context, session *Session) string {
	result := session.Analysis()
	report := ""
	if result != nil {
		report = strings.TrimSpace(result.Report)
	}
	if isDetailedReport(report) {
		return report
	}

	limits := constants.GenerationLimits
	data := prompt.ReportData{
		Ingredients: head(session.Candidates, limits.ReportIngredientCount),
		Good:        head(result.GoodNames(), limits.ReportGoodCount),
		Caution:     head(result.CautionNames(), limits.ReportCautionCount),
		SkinType:    strings.Join(session.Profile.Labels(), ", "),
	}

	if a.enricher.GenerativeEnabled() {
		generated, err := a.enricher.Summarize(ctx, data)
		if err == nil && strings.TrimSpace(generated) != "" {
			return strings.TrimSpace(generated)
		}
		a.logger.Debug("Report enhancement fell back to server report",
			zap.String("session", session.ID),
			zap.Error(err),
		)
	}

	if report != "" {
		return report
	}
	if purposes := session.TopPurposes(limits.TopPurposeCount); len(purposes) > 0 {
		return "주요 기능: " + strings.Join(purposes, ", ")
	}
	return ""
}

// Explain returns the explanation of the ingredient at index along with the
// tier it came from.
func (a *Analyzer) Explain(ctx context.Context, session *Session, index int) (string, domain.Tier, error) {
	item, ok := session.item(index)
	if !ok {
		return "", "", errors.NewValidationError("ingredient index out of range", "index", index)
	}
	text, tier := a.enricher.Explain(ctx, item, explanationReason(item, session.Analysis()))
	return text, tier, nil
}

func explanationReason(item *domain.ResolvedIngredient, result *domain.AnalysisResult) string {
	switch item.Classification {
	case domain.ClassCaution:
		if m, ok := result.FindCaution(item.DisplayName); ok {
			return m.Description
		}
	case domain.ClassBeneficial:
		if m, ok := result.FindGood(item.DisplayName); ok {
			return enrich.TranslatePurpose(m.Purpose)
		}
	}
	if item.Record != nil {
		return item.Record.Description
	}
	return ""
}

func isDetailedReport(report string) bool {
	if utf8.RuneCountInString(report) <= constants.GenerationLimits.DetailedReportMinRunes {
		return false
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(report, marker) {
			return false
		}
	}
	return true
}

func head(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
