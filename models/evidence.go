package models

import (
	"fmt"

	c "onigiri/api/models/constants"
	s "onigiri/api/models/constants/strength"
)

// EvidenceSet groups the evidence codes assigned to one variant into
// seven mutually exclusive strength buckets plus free-form diagnostic
// notes. A code appears in at most one bucket across the whole set.
// Sets are built through an EvidenceSetBuilder and frozen before being
// handed to scoring and classification.
type EvidenceSet struct {
	PathogenicVeryStrong []c.EvidenceCode `json:"pathogenicVeryStrong"`
	PathogenicStrong     []c.EvidenceCode `json:"pathogenicStrong"`
	PathogenicModerate   []c.EvidenceCode `json:"pathogenicModerate"`
	PathogenicSupporting []c.EvidenceCode `json:"pathogenicSupporting"`

	BenignStandAlone []c.EvidenceCode `json:"benignStandAlone"`
	BenignStrong     []c.EvidenceCode `json:"benignStrong"`
	BenignSupporting []c.EvidenceCode `json:"benignSupporting"`

	// human-readable conflict/disabled diagnostics, not machine-parsed
	Notes []string `json:"notes"`
}

func (e *EvidenceSet) Bucket(tier c.EvidenceStrength) []c.EvidenceCode {
	switch tier {
	case s.PathogenicVeryStrong:
		return e.PathogenicVeryStrong
	case s.PathogenicStrong:
		return e.PathogenicStrong
	case s.PathogenicModerate:
		return e.PathogenicModerate
	case s.PathogenicSupporting:
		return e.PathogenicSupporting
	case s.BenignStandAlone:
		return e.BenignStandAlone
	case s.BenignStrong:
		return e.BenignStrong
	case s.BenignSupporting:
		return e.BenignSupporting
	default:
		return nil
	}
}

func (e *EvidenceSet) Contains(code c.EvidenceCode) bool {
	for tier := s.PathogenicVeryStrong; tier <= s.BenignSupporting; tier++ {
		for _, existing := range e.Bucket(tier) {
			if existing == code {
				return true
			}
		}
	}
	return false
}

// IsEmpty reports whether no evidence codes were assigned.
// Diagnostic notes do not count as evidence.
func (e *EvidenceSet) IsEmpty() bool {
	for tier := s.PathogenicVeryStrong; tier <= s.BenignSupporting; tier++ {
		if len(e.Bucket(tier)) > 0 {
			return false
		}
	}
	return true
}

// CountsString renders the per-bucket counts for audit reason strings,
// e.g. "PVS:1 PS:0 PM:1 PP:0 | BA:0 BS:0 BP:0".
func (e *EvidenceSet) CountsString() string {
	return fmt.Sprintf("PVS:%d PS:%d PM:%d PP:%d | BA:%d BS:%d BP:%d",
		len(e.PathogenicVeryStrong), len(e.PathogenicStrong),
		len(e.PathogenicModerate), len(e.PathogenicSupporting),
		len(e.BenignStandAlone), len(e.BenignStrong), len(e.BenignSupporting))
}

// EvidenceSetBuilder accumulates codes during assignment. Buckets are
// append-only; Freeze produces an independent copy so nothing downstream
// of assignment can mutate evidence after the fact.
type EvidenceSetBuilder struct {
	set  EvidenceSet
	seen map[c.EvidenceCode]bool
}

func NewEvidenceSetBuilder() *EvidenceSetBuilder {
	return &EvidenceSetBuilder{
		seen: map[c.EvidenceCode]bool{},
	}
}

// Add places a code in the bucket for the given strength tier. Duplicate
// insertions collapse: a code already present anywhere in the set is
// silently ignored, preserving the one-bucket-per-code invariant.
func (b *EvidenceSetBuilder) Add(tier c.EvidenceStrength, code c.EvidenceCode) bool {
	if b.seen[code] {
		return false
	}

	switch tier {
	case s.PathogenicVeryStrong:
		b.set.PathogenicVeryStrong = append(b.set.PathogenicVeryStrong, code)
	case s.PathogenicStrong:
		b.set.PathogenicStrong = append(b.set.PathogenicStrong, code)
	case s.PathogenicModerate:
		b.set.PathogenicModerate = append(b.set.PathogenicModerate, code)
	case s.PathogenicSupporting:
		b.set.PathogenicSupporting = append(b.set.PathogenicSupporting, code)
	case s.BenignStandAlone:
		b.set.BenignStandAlone = append(b.set.BenignStandAlone, code)
	case s.BenignStrong:
		b.set.BenignStrong = append(b.set.BenignStrong, code)
	case s.BenignSupporting:
		b.set.BenignSupporting = append(b.set.BenignSupporting, code)
	default:
		return false
	}

	b.seen[code] = true
	return true
}

func (b *EvidenceSetBuilder) AddNote(format string, args ...interface{}) {
	b.set.Notes = append(b.set.Notes, fmt.Sprintf(format, args...))
}

// Freeze returns a deep copy of the accumulated set. The builder may keep
// accumulating afterwards without affecting previously frozen sets.
func (b *EvidenceSetBuilder) Freeze() EvidenceSet {
	frozen := EvidenceSet{
		PathogenicVeryStrong: copyCodes(b.set.PathogenicVeryStrong),
		PathogenicStrong:     copyCodes(b.set.PathogenicStrong),
		PathogenicModerate:   copyCodes(b.set.PathogenicModerate),
		PathogenicSupporting: copyCodes(b.set.PathogenicSupporting),
		BenignStandAlone:     copyCodes(b.set.BenignStandAlone),
		BenignStrong:         copyCodes(b.set.BenignStrong),
		BenignSupporting:     copyCodes(b.set.BenignSupporting),
	}

	if len(b.set.Notes) > 0 {
		frozen.Notes = make([]string, len(b.set.Notes))
		copy(frozen.Notes, b.set.Notes)
	}

	return frozen
}

func copyCodes(codes []c.EvidenceCode) []c.EvidenceCode {
	if len(codes) == 0 {
		return nil
	}
	copied := make([]c.EvidenceCode, len(codes))
	copy(copied, codes)
	return copied
}
