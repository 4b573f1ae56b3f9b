package analysis

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/internal/service/enrich"
)

// Session is the state of one scan. Candidates and the resolved list survive
// remote failures so they can be re-displayed without re-parsing.
type Session struct {
	ID         string
	CreatedAt  time.Time
	Candidates []string
	Profile    domain.SkinTypeProfile

	mu       sync.RWMutex
	items    []*domain.ResolvedIngredient
	analysis *domain.AnalysisResult
}

func newSession(candidates []string, items []*domain.ResolvedIngredient, profile domain.SkinTypeProfile) *Session {
	return &Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Candidates: candidates,
		Profile:    profile,
		items:      items,
	}
}

// Snapshot returns a copy of the ingredient list safe to read while
// enrichment is still running.
func (s *Session) Snapshot() []*domain.ResolvedIngredient {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ResolvedIngredient, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Len returns the number of resolved ingredients.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Analysis returns the last successful remote result, or nil.
func (s *Session) Analysis() *domain.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysis
}

// MatchedCount returns how many names resolved against the dataset.
func (s *Session) MatchedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.items {
		if item.Matched() {
			n++
		}
	}
	return n
}

// TopPurposes returns the n most frequent translated purpose labels across
// matched records. Ties keep first-seen order.
func (s *Session) TopPurposes(n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	var order []string
	for _, item := range s.items {
		if item.Record == nil {
			continue
		}
		seen := make(map[string]struct{}, len(item.Record.Purpose))
		for _, tag := range item.Record.Purpose {
			label := enrich.TranslatePurpose(tag)
			if label == "" {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			if counts[label] == 0 {
				order = append(order, label)
			}
			counts[label]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if n > 0 && len(order) > n {
		order = order[:n]
	}
	return order
}

// ingest stores a successful remote result and reclassifies every item.
func (s *Session) ingest(result *domain.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analysis = result
	for _, item := range s.items {
		item.Classification = Classify(item, s.Profile, result)
	}
}

// apply writes one enrichment event into its slot. Events for unknown
// indices or non-slot fields are ignored.
func (s *Session) apply(ev domain.EnrichmentEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Index < 0 || ev.Index >= len(s.items) {
		return
	}
	slot := s.items[ev.Index].Slot(ev.Field)
	if slot == nil {
		return
	}
	if slot.State == domain.SlotResolved && ev.State != domain.SlotResolved {
		return
	}
	slot.State = ev.State
	slot.Value = ev.Value
	slot.Source = ev.Source
}

func (s *Session) item(index int) (*domain.ResolvedIngredient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.items) {
		return nil, false
	}
	return s.items[index].Clone(), true
}
