package classificationService

import (
	"strings"
	"testing"

	. "github.com/ahmetb/go-linq"
	"github.com/stretchr/testify/assert"

	"onigiri/api/models"
	c "onigiri/api/models/constants"
	ec "onigiri/api/models/constants/evidence-code"
	s "onigiri/api/models/constants/strength"
	"onigiri/api/models/constants/tier"
	"onigiri/api/repositories/reference"
)

func testConfig() *models.Config {
	cfg := &models.Config{}
	cfg.Engine = models.DefaultEngineConfig()
	cfg.Api.ClassificationConcurrencyLevel = 2
	return cfg
}

func testService(t *testing.T, cfg *models.Config) *ClassificationService {
	svc, err := NewClassificationService(cfg, reference.DefaultTables(), &ViewFrequencyProvider{})
	assert.NoError(t, err)
	return svc
}

func floatPtr(f float64) *float64 {
	return &f
}

// -- construction

func TestNewClassificationServiceRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.Weights.PathogenicStrong = 0

	svc, err := NewClassificationService(cfg, nil, nil)
	assert.Nil(t, svc)
	assert.IsType(t, &models.ConfigurationError{}, err)
}

func TestNewClassificationServiceRejectsInvertedBand(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.BalancedConflictMin = 0.7
	cfg.Engine.BalancedConflictMax = 0.3

	svc, err := NewClassificationService(cfg, nil, nil)
	assert.Nil(t, svc)
	assert.IsType(t, &models.ConfigurationError{}, err)
}

// -- evidence assignment

func TestAssignLossOfFunctionInIntolerantGene(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:       []string{"BRCA1"},
		Consequence: "frameshift_variant",
	})

	assert.Contains(t, evidence.PathogenicVeryStrong, ec.PVS1)
}

func TestAssignLossOfFunctionRequiresIntolerantGene(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:       []string{"GENE_NOT_IN_TABLE"},
		Consequence: "frameshift_variant",
	})

	assert.NotContains(t, evidence.PathogenicVeryStrong, ec.PVS1)
}

func TestAssignProteinLengthChange(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:       []string{"GENE_NOT_IN_TABLE"},
		Consequence: "inframe_deletion",
	})

	assert.Contains(t, evidence.PathogenicModerate, ec.PM4)
}

func TestAssignStopLossTriggersProteinLengthChange(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:       []string{"GENE_NOT_IN_TABLE"},
		Consequence: "stop_lost",
	})

	assert.Contains(t, evidence.PathogenicModerate, ec.PM4)
}

func TestAssignMissenseInConstrainedGene(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:                []string{"PTPN11"},
		Consequence:          "missense_variant",
		ClinicalSignificance: "Pathogenic",
	})

	assert.Contains(t, evidence.PathogenicSupporting, ec.PP2)
}

func TestAssignMissenseMechanismMismatch(t *testing.T) {
	svc := testService(t, testConfig())

	// LOF is the known mechanism for BRCA1; a benign-annotated
	// missense change is the mechanism-mismatch signal
	evidence := svc.Assign(&models.VariantView{
		Genes:                []string{"BRCA1"},
		Consequence:          "missense_variant",
		ClinicalSignificance: "Benign",
	})

	assert.Contains(t, evidence.BenignSupporting, ec.BP1)
}

func TestAssignInFrameIndelInRepeatRegion(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:                []string{"GENE_NOT_IN_TABLE"},
		Consequence:          "inframe_deletion",
		ClinicalSignificance: "benign variant in repetitive region",
	})

	assert.Contains(t, evidence.BenignSupporting, ec.BP3)
	assert.Contains(t, evidence.PathogenicModerate, ec.PM4)
}

func TestAssignFrequencyBands(t *testing.T) {
	svc := testService(t, testConfig())

	t.Run("stand-alone band", func(t *testing.T) {
		evidence := svc.Assign(&models.VariantView{
			Genes:           []string{"GENE_NOT_IN_TABLE"},
			Consequence:     "missense_variant",
			AlleleFrequency: floatPtr(0.06),
		})

		assert.Contains(t, evidence.BenignStandAlone, ec.BA1)
		assert.NotContains(t, evidence.BenignStrong, ec.BS1)
	})

	t.Run("strong band never doubles with stand-alone", func(t *testing.T) {
		evidence := svc.Assign(&models.VariantView{
			Genes:           []string{"GENE_NOT_IN_TABLE"},
			Consequence:     "missense_variant",
			AlleleFrequency: floatPtr(0.03),
		})

		assert.Contains(t, evidence.BenignStrong, ec.BS1)
		assert.Empty(t, evidence.BenignStandAlone)
	})

	t.Run("rare band", func(t *testing.T) {
		evidence := svc.Assign(&models.VariantView{
			Genes:           []string{"GENE_NOT_IN_TABLE"},
			Consequence:     "missense_variant",
			AlleleFrequency: floatPtr(0.00001),
		})

		assert.Contains(t, evidence.PathogenicModerate, ec.PM2)
	})
}

func TestAssignBenignTextFallbackWithoutFrequency(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:                []string{"GENE_NOT_IN_TABLE"},
		Consequence:          "missense_variant",
		ClinicalSignificance: "common polymorphism",
	})

	assert.Contains(t, evidence.BenignStrong, ec.BS1)
	// the rare band has no safe text fallback
	assert.NotContains(t, evidence.PathogenicModerate, ec.PM2)
}

func TestAssignNotesMissingFrequencyProvider(t *testing.T) {
	cfg := testConfig()
	svc, err := NewClassificationService(cfg, reference.DefaultTables(), nil)
	assert.NoError(t, err)

	evidence := svc.Assign(&models.VariantView{
		Genes:       []string{"GENE_NOT_IN_TABLE"},
		Consequence: "missense_variant",
	})

	// the degradation note names the affected codes and the dependency
	found := false
	for _, note := range evidence.Notes {
		if containsAll(note, "no frequency provider", "PM2") {
			found = true
		}
	}
	assert.True(t, found, "expected a frequency-provider degradation note, got %v", evidence.Notes)
}

func TestAssignDisabledCodeLeavesNote(t *testing.T) {
	cfg := testConfig()
	cfg.Engine.Enabled.PM2 = false
	svc := testService(t, cfg)

	evidence := svc.Assign(&models.VariantView{
		Genes:           []string{"GENE_NOT_IN_TABLE"},
		Consequence:     "missense_variant",
		AlleleFrequency: floatPtr(0.00001),
	})

	assert.NotContains(t, evidence.PathogenicModerate, ec.PM2)

	found := false
	for _, note := range evidence.Notes {
		if containsAll(note, "PM2", "disabled") {
			found = true
		}
	}
	assert.True(t, found, "expected a PM2-disabled note, got %v", evidence.Notes)
}

func TestAssignNotesConflictingInterpretations(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := svc.Assign(&models.VariantView{
		Genes:                []string{"GENE_NOT_IN_TABLE"},
		Consequence:          "missense_variant",
		ClinicalSignificance: "Conflicting interpretations of pathogenicity",
	})

	found := false
	for _, note := range evidence.Notes {
		if containsAll(note, "conflicting interpretations") {
			found = true
		}
	}
	assert.True(t, found, "expected a conflict note, got %v", evidence.Notes)
}

// -- scoring

func TestScoreIsDeterministicAndNonNegative(t *testing.T) {
	svc := testService(t, testConfig())

	builder := models.NewEvidenceSetBuilder()
	builder.Add(s.PathogenicVeryStrong, ec.PVS1)
	builder.Add(s.PathogenicModerate, ec.PM2)
	builder.Add(s.BenignSupporting, ec.BP1)
	evidence := builder.Freeze()

	firstPathogenic, firstBenign := svc.Score(&evidence)
	secondPathogenic, secondBenign := svc.Score(&evidence)

	assert.Equal(t, firstPathogenic, secondPathogenic)
	assert.Equal(t, firstBenign, secondBenign)
	assert.Equal(t, 10, firstPathogenic) // 1*8 + 1*2
	assert.Equal(t, 1, firstBenign)
	assert.GreaterOrEqual(t, firstPathogenic, 0)
	assert.GreaterOrEqual(t, firstBenign, 0)
}

func TestScoreOfEmptySetIsZero(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := models.NewEvidenceSetBuilder().Freeze()
	pathogenicScore, benignScore := svc.Score(&evidence)

	assert.Equal(t, 0, pathogenicScore)
	assert.Equal(t, 0, benignScore)
}

// -- combination / decision engine

func TestClassifyStandAloneShortCircuit(t *testing.T) {
	svc := testService(t, testConfig())

	t.Run("pure stand-alone", func(t *testing.T) {
		builder := models.NewEvidenceSetBuilder()
		builder.Add(s.BenignStandAlone, ec.BA1)
		evidence := builder.Freeze()

		resultTier, reason := svc.Classify(&evidence)
		assert.Equal(t, tier.Benign, resultTier)
		assert.NotContains(t, reason, "overriding")
	})

	t.Run("stand-alone overrides pathogenic evidence", func(t *testing.T) {
		builder := models.NewEvidenceSetBuilder()
		builder.Add(s.BenignStandAlone, ec.BA1)
		builder.Add(s.PathogenicVeryStrong, ec.PVS1)
		builder.Add(s.PathogenicStrong, c.EvidenceCode("PS1"))
		evidence := builder.Freeze()

		resultTier, reason := svc.Classify(&evidence)
		assert.Equal(t, tier.Benign, resultTier)
		assert.Contains(t, reason, "overriding")
	})
}

func TestClassifyBoundaryPair(t *testing.T) {
	svc := testService(t, testConfig())

	t.Run("very-strong plus strong is Pathogenic Very High", func(t *testing.T) {
		builder := models.NewEvidenceSetBuilder()
		builder.Add(s.PathogenicVeryStrong, ec.PVS1)
		builder.Add(s.PathogenicStrong, c.EvidenceCode("PS1"))
		evidence := builder.Freeze()

		resultTier, reason := svc.Classify(&evidence)
		assert.Equal(t, tier.Pathogenic, resultTier)
		assert.Contains(t, reason, "Very High")
	})

	t.Run("very-strong plus moderate is Likely Pathogenic Moderate", func(t *testing.T) {
		builder := models.NewEvidenceSetBuilder()
		builder.Add(s.PathogenicVeryStrong, ec.PVS1)
		builder.Add(s.PathogenicModerate, ec.PM2)
		evidence := builder.Freeze()

		resultTier, reason := svc.Classify(&evidence)
		assert.Equal(t, tier.LikelyPathogenic, resultTier)
		assert.Contains(t, reason, "Moderate")
	})
}

func TestClassifyStrongConflict(t *testing.T) {
	svc := testService(t, testConfig())

	// pathogenicScore = 8, benignScore = 8, both >= threshold 4
	builder := models.NewEvidenceSetBuilder()
	builder.Add(s.PathogenicVeryStrong, ec.PVS1)
	builder.Add(s.BenignStrong, ec.BS1)
	builder.Add(s.BenignStrong, c.EvidenceCode("BS2"))
	evidence := builder.Freeze()

	resultTier, reason := svc.Classify(&evidence)
	assert.Equal(t, tier.UncertainSignificance, resultTier)
	assert.Contains(t, reason, "strong conflict")
}

func TestClassifyBalancedConflict(t *testing.T) {
	svc := testService(t, testConfig())

	// pathogenicScore = 2, benignScore = 2 : ratio 0.5, neither strong
	builder := models.NewEvidenceSetBuilder()
	builder.Add(s.PathogenicModerate, ec.PM2)
	builder.Add(s.BenignSupporting, ec.BP1)
	builder.Add(s.BenignSupporting, ec.BP3)
	evidence := builder.Freeze()

	resultTier, reason := svc.Classify(&evidence)
	assert.Equal(t, tier.UncertainSignificance, resultTier)
	assert.Contains(t, reason, "balanced conflict")
}

func TestClassifyDominantSideWithWeakSecondary(t *testing.T) {
	svc := testService(t, testConfig())

	// pathogenicScore = 8, benignScore = 1 : benign stays below the
	// strong threshold, so this is NOT Uncertain - the pathogenic
	// cascade fires on strong >= 2
	builder := models.NewEvidenceSetBuilder()
	builder.Add(s.PathogenicStrong, c.EvidenceCode("PS1"))
	builder.Add(s.PathogenicStrong, c.EvidenceCode("PS2"))
	builder.Add(s.BenignSupporting, ec.BP1)
	evidence := builder.Freeze()

	resultTier, reason := svc.Classify(&evidence)
	assert.Equal(t, tier.Pathogenic, resultTier)
	assert.Contains(t, reason, "High")
}

func TestClassifyBenignCascade(t *testing.T) {
	svc := testService(t, testConfig())

	t.Run("two strong is Benign", func(t *testing.T) {
		builder := models.NewEvidenceSetBuilder()
		builder.Add(s.BenignStrong, ec.BS1)
		builder.Add(s.BenignStrong, c.EvidenceCode("BS2"))
		evidence := builder.Freeze()

		resultTier, _ := svc.Classify(&evidence)
		assert.Equal(t, tier.Benign, resultTier)
	})

	t.Run("one strong is Likely Benign", func(t *testing.T) {
		builder := models.NewEvidenceSetBuilder()
		builder.Add(s.BenignStrong, ec.BS1)
		evidence := builder.Freeze()

		resultTier, _ := svc.Classify(&evidence)
		assert.Equal(t, tier.LikelyBenign, resultTier)
	})

	t.Run("two supporting is Likely Benign", func(t *testing.T) {
		builder := models.NewEvidenceSetBuilder()
		builder.Add(s.BenignSupporting, ec.BP1)
		builder.Add(s.BenignSupporting, ec.BP3)
		evidence := builder.Freeze()

		resultTier, _ := svc.Classify(&evidence)
		assert.Equal(t, tier.LikelyBenign, resultTier)
	})
}

func TestClassifyEmptyEvidenceSet(t *testing.T) {
	svc := testService(t, testConfig())

	evidence := models.NewEvidenceSetBuilder().Freeze()
	resultTier, reason := svc.Classify(&evidence)

	assert.Equal(t, tier.UncertainSignificance, resultTier)
	assert.Equal(t, "No Evidence", reason)
}

func TestClassifyInsufficientEvidence(t *testing.T) {
	svc := testService(t, testConfig())

	// a lone supporting code matches no combining rule
	builder := models.NewEvidenceSetBuilder()
	builder.Add(s.PathogenicSupporting, ec.PP2)
	evidence := builder.Freeze()

	resultTier, reason := svc.Classify(&evidence)
	assert.Equal(t, tier.UncertainSignificance, resultTier)
	assert.Contains(t, reason, "Insufficient Evidence")
}

// -- entry points

func TestClassifyVariantRecoversValidationFailure(t *testing.T) {
	svc := testService(t, testConfig())

	result := svc.ClassifyVariant(&models.VariantView{
		Genes:       []string{},
		Consequence: "missense_variant",
	})

	assert.Equal(t, tier.UncertainSignificance, result.Tier)
	assert.Equal(t, "No Evidence", result.Reason)
	assert.NotEmpty(t, result.Evidence.Notes)
}

func TestClassifyVariantEndToEnd(t *testing.T) {
	svc := testService(t, testConfig())

	result := svc.ClassifyVariant(&models.VariantView{
		Id:                   "var-1",
		Genes:                []string{"BRCA1"},
		Consequence:          "frameshift_variant",
		ClinicalSignificance: "Pathogenic",
		AlleleFrequency:      floatPtr(0.00001),
	})

	assert.Equal(t, "var-1", result.VariantId)
	// PVS1 (very strong) + PM2 (moderate) matches only the
	// likely-pathogenic rule
	assert.Equal(t, tier.LikelyPathogenic, result.Tier)
	assert.Contains(t, result.Evidence.PathogenicVeryStrong, ec.PVS1)
	assert.Contains(t, result.Evidence.PathogenicModerate, ec.PM2)
}

func TestClassifyBatchShardsAcrossWorkers(t *testing.T) {
	svc := testService(t, testConfig())

	views := []*models.VariantView{}
	for i := 0; i < 6; i++ {
		views = append(views, &models.VariantView{
			Genes:           []string{"BRCA1"},
			Consequence:     "frameshift_variant",
			AlleleFrequency: floatPtr(0.00001),
		})
	}
	// two invalid entries scattered in
	views = append(views, &models.VariantView{})
	views = append(views, &models.VariantView{Genes: []string{"BRCA1"}})

	results, collector := svc.ClassifyBatch(views, 3)

	assert.Len(t, results, 8)
	assert.Equal(t, 8, collector.VariantsProcessed)
	assert.Equal(t, 2, collector.ValidationFailures)

	likelyPathogenicCount := From(results).
		WhereT(func(r models.ClassificationResult) bool { return r.Tier == tier.LikelyPathogenic }).
		Count()
	assert.Equal(t, 6, likelyPathogenicCount)

	uncertainCount := From(results).
		WhereT(func(r models.ClassificationResult) bool { return r.Tier == tier.UncertainSignificance }).
		Count()
	assert.Equal(t, 2, uncertainCount)
}

// -- helpers

func containsAll(text string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(text, part) {
			return false
		}
	}
	return true
}
