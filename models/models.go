package models

import (
	"strings"
	"time"

	c "onigiri/api/models/constants"
)

// VariantView is the normalized, loader-produced view of one variant
// that the classification engine consumes. Gene symbols arrive already
// split from any delimiter-separated source field; text fields arrive
// trimmed. The engine performs no I/O to enrich this view.
type VariantView struct {
	Id    string   `json:"id" mapstructure:"id"`
	Genes []string `json:"genes" mapstructure:"genes"`

	// free-text controlled vocabulary, e.g. "missense_variant"
	Consequence string `json:"consequence" mapstructure:"consequence"`

	// free text, may contain conflict markers ("Conflicting", "/")
	ClinicalSignificance string `json:"clinicalSignificance" mapstructure:"clinicalSignificance"`

	// optional population allele frequency in [0,1]
	AlleleFrequency *float64 `json:"alleleFrequency,omitempty" mapstructure:"alleleFrequency"`

	// optional review-status-derived star rating, 0-4
	ReviewStars *int `json:"reviewStars,omitempty" mapstructure:"reviewStars"`
}

// Validate reports a ValidationError when required fields are missing or
// empty. Only this variant fails; batches continue past it.
func (v *VariantView) Validate() error {
	anyGene := false
	for _, gene := range v.Genes {
		if strings.TrimSpace(gene) != "" {
			anyGene = true
			break
		}
	}
	if !anyGene {
		return NewValidationError("no gene symbol provided")
	}

	if strings.TrimSpace(v.Consequence) == "" {
		return NewValidationError("no molecular consequence provided")
	}

	if v.AlleleFrequency != nil && (*v.AlleleFrequency < 0 || *v.AlleleFrequency > 1) {
		return NewValidationError("allele frequency %f outside [0,1]", *v.AlleleFrequency)
	}

	return nil
}

// ClassificationResult is the engine's output for one variant.
// Immutable once produced.
type ClassificationResult struct {
	VariantId string               `json:"variantId"`
	Tier      c.ClassificationTier `json:"tier"`

	// which rule fired and the counts/score margin that triggered it;
	// meant for audit logs, not for machine parsing
	Reason string `json:"reason"`

	Evidence EvidenceSet `json:"evidence"`

	Elapsed     time.Duration `json:"elapsed"`
	CreatedTime time.Time     `json:"createdTime"`
}
