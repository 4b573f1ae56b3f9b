package domain

import "github.com/kapu/skincheck-go/internal/util"

// Classification of a resolved ingredient against the user's profile.
type Classification string

const (
	ClassNeutral    Classification = "neutral"
	ClassBeneficial Classification = "beneficial"
	ClassCaution    Classification = "caution"
)

func (c Classification) Label() string {
	switch c {
	case ClassBeneficial:
		return "좋은 성분"
	case ClassCaution:
		return "주의 성분"
	default:
		return "일반 성분"
	}
}

// FieldKind names an enrichment field; it also selects the cache.
type FieldKind string

const (
	FieldPurpose     FieldKind = "purpose"
	FieldSuitability FieldKind = "suitability"
	FieldDescription FieldKind = "description"
	FieldShortText   FieldKind = "short_text"
	FieldExplanation FieldKind = "explanation"
)

// EnrichmentFields are resolved for every ingredient of a session.
var EnrichmentFields = []FieldKind{FieldPurpose, FieldSuitability, FieldDescription}

type SlotState int

const (
	SlotEmpty SlotState = iota
	SlotLoading
	SlotResolved
)

func (s SlotState) String() string {
	switch s {
	case SlotLoading:
		return "loading"
	case SlotResolved:
		return "resolved"
	default:
		return "empty"
	}
}

// Tier records where a slot value came from.
type Tier string

const (
	TierLocal      Tier = "local"
	TierCache      Tier = "cache"
	TierGenerative Tier = "generative"
	TierFallback   Tier = "fallback"
)

type Slot struct {
	State  SlotState
	Value  string
	Source Tier
}

// ResolvedIngredient is the per-name unit of work of one analysis session.
type ResolvedIngredient struct {
	DisplayName    string
	Record         *IngredientRecord
	Classification Classification

	Purpose     Slot
	Suitability Slot
	Description Slot
}

func NewResolvedIngredient(name string, record *IngredientRecord) *ResolvedIngredient {
	return &ResolvedIngredient{
		DisplayName:    name,
		Record:         record,
		Classification: ClassNeutral,
	}
}

// Key is the dedup/match key of the display name.
func (ri *ResolvedIngredient) Key() string {
	return util.NormalizeKey(ri.DisplayName)
}

// Identity keys caches: the matched record when present, else the name.
func (ri *ResolvedIngredient) Identity() string {
	if ri.Record != nil {
		return ri.Record.Identity()
	}
	return ri.Key()
}

// Matched reports whether the index resolved this name.
func (ri *ResolvedIngredient) Matched() bool {
	return ri.Record != nil
}

// Slot returns the slot for kind, or nil for non-slot kinds.
func (ri *ResolvedIngredient) Slot(kind FieldKind) *Slot {
	switch kind {
	case FieldPurpose:
		return &ri.Purpose
	case FieldSuitability:
		return &ri.Suitability
	case FieldDescription:
		return &ri.Description
	default:
		return nil
	}
}

// Clone copies the ingredient; the record pointer is shared.
func (ri *ResolvedIngredient) Clone() *ResolvedIngredient {
	c := *ri
	return &c
}

// EnrichmentEvent is one progressive update for one (ingredient, field) slot.
type EnrichmentEvent struct {
	Index  int
	Name   string
	Field  FieldKind
	State  SlotState
	Value  string
	Source Tier
	Err    error
}
