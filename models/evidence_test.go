package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	c "onigiri/api/models/constants"
	ec "onigiri/api/models/constants/evidence-code"
	s "onigiri/api/models/constants/strength"
)

func TestBuilderDeduplicatesAcrossBuckets(t *testing.T) {
	builder := NewEvidenceSetBuilder()

	assert.True(t, builder.Add(s.PathogenicModerate, ec.PM2))
	// same code again, same bucket
	assert.False(t, builder.Add(s.PathogenicModerate, ec.PM2))
	// same code again, different bucket: the one-bucket-per-code
	// invariant holds across the whole set
	assert.False(t, builder.Add(s.BenignStrong, ec.PM2))

	evidence := builder.Freeze()
	assert.Len(t, evidence.PathogenicModerate, 1)
	assert.Empty(t, evidence.BenignStrong)
}

func TestBuilderRejectsUnknownStrength(t *testing.T) {
	builder := NewEvidenceSetBuilder()
	assert.False(t, builder.Add(s.Unknown, ec.PM2))
	frozen := builder.Freeze()
	assert.True(t, frozen.IsEmpty())
}

func TestFreezeProducesIndependentCopy(t *testing.T) {
	builder := NewEvidenceSetBuilder()
	builder.Add(s.PathogenicVeryStrong, ec.PVS1)
	builder.AddNote("first note")

	frozen := builder.Freeze()

	// the builder keeps accumulating without affecting the frozen set
	builder.Add(s.PathogenicStrong, c.EvidenceCode("PS1"))
	builder.AddNote("second note")

	assert.Len(t, frozen.PathogenicVeryStrong, 1)
	assert.Empty(t, frozen.PathogenicStrong)
	assert.Len(t, frozen.Notes, 1)
}

func TestEvidenceSetContains(t *testing.T) {
	builder := NewEvidenceSetBuilder()
	builder.Add(s.BenignSupporting, ec.BP3)
	evidence := builder.Freeze()

	assert.True(t, evidence.Contains(ec.BP3))
	assert.False(t, evidence.Contains(ec.PVS1))
}

func TestIsEmptyIgnoresNotes(t *testing.T) {
	builder := NewEvidenceSetBuilder()
	builder.AddNote("diagnostic only")
	evidence := builder.Freeze()

	assert.True(t, evidence.IsEmpty())
	assert.Len(t, evidence.Notes, 1)
}

func TestEvidenceSetJsonRoundTrip(t *testing.T) {
	builder := NewEvidenceSetBuilder()
	builder.Add(s.PathogenicVeryStrong, ec.PVS1)
	builder.Add(s.PathogenicModerate, ec.PM2)
	builder.Add(s.PathogenicModerate, ec.PM4)
	builder.Add(s.BenignStrong, ec.BS1)
	builder.AddNote("a diagnostic note")
	original := builder.Freeze()

	serialized, marshalErr := json.Marshal(original)
	assert.NoError(t, marshalErr)

	var restored EvidenceSet
	assert.NoError(t, json.Unmarshal(serialized, &restored))

	// bucket contents are equal under set semantics
	assert.ElementsMatch(t, original.PathogenicVeryStrong, restored.PathogenicVeryStrong)
	assert.ElementsMatch(t, original.PathogenicModerate, restored.PathogenicModerate)
	assert.ElementsMatch(t, original.BenignStrong, restored.BenignStrong)
	assert.ElementsMatch(t, original.Notes, restored.Notes)
	assert.Empty(t, restored.BenignStandAlone)
}

func TestCountsStringReportsAllBuckets(t *testing.T) {
	builder := NewEvidenceSetBuilder()
	builder.Add(s.PathogenicVeryStrong, ec.PVS1)
	builder.Add(s.BenignSupporting, ec.BP1)
	evidence := builder.Freeze()

	assert.Equal(t, "PVS:1 PS:0 PM:0 PP:0 | BA:0 BS:0 BP:1", evidence.CountsString())
}

func TestVariantViewValidation(t *testing.T) {
	valid := &VariantView{
		Genes:       []string{"BRCA1"},
		Consequence: "missense_variant",
	}
	assert.NoError(t, valid.Validate())

	noGenes := &VariantView{Consequence: "missense_variant"}
	assert.IsType(t, &ValidationError{}, noGenes.Validate())

	blankGenes := &VariantView{Genes: []string{" ", ""}, Consequence: "missense_variant"}
	assert.IsType(t, &ValidationError{}, blankGenes.Validate())

	noConsequence := &VariantView{Genes: []string{"BRCA1"}}
	assert.IsType(t, &ValidationError{}, noConsequence.Validate())

	badFrequency := 1.5
	outOfRange := &VariantView{
		Genes:           []string{"BRCA1"},
		Consequence:     "missense_variant",
		AlleleFrequency: &badFrequency,
	}
	assert.IsType(t, &ValidationError{}, outOfRange.Validate())
}
