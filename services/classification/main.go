package classificationService

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"onigiri/api/models"
	c "onigiri/api/models/constants"
	ec "onigiri/api/models/constants/evidence-code"
	"onigiri/api/models/constants/phrase"
	s "onigiri/api/models/constants/strength"
	t "onigiri/api/models/constants/tier"
	"onigiri/api/repositories/reference"
	"onigiri/api/services"
)

// FrequencyProvider is the optional capability that supplies a population
// allele frequency for a variant. The engine is constructed with at most
// one provider; a nil provider degrades the frequency-based codes to
// their documented text fallbacks plus diagnostic notes.
type FrequencyProvider interface {
	AlleleFrequency(view *models.VariantView) (float64, bool)
}

// ViewFrequencyProvider reads the frequency already carried on the
// normalized variant view (the default wiring).
type ViewFrequencyProvider struct{}

func (p *ViewFrequencyProvider) AlleleFrequency(view *models.VariantView) (float64, bool) {
	if view.AlleleFrequency == nil {
		return 0, false
	}
	return *view.AlleleFrequency, true
}

type (
	ClassificationService struct {
		Config            *models.Config
		Tables            *reference.Tables
		FrequencyProvider FrequencyProvider
	}
)

// NewClassificationService validates the engine configuration exactly
// once; no invalid service instance can exist. Tables default to the
// built-in curation when nil. The frequency provider may be nil.
func NewClassificationService(cfg *models.Config, tables *reference.Tables, provider FrequencyProvider) (*ClassificationService, error) {
	if validationErr := cfg.Engine.Validate(); validationErr != nil {
		return nil, validationErr
	}

	cs := &ClassificationService{
		Config:            cfg,
		Tables:            tables,
		FrequencyProvider: provider,
	}

	return cs, nil
}

// tables resolves the gene tables for one assignment pass. A service
// constructed with nil tables follows the package-published reference,
// picking up atomic reloads; a pinned table set never changes.
func (cs *ClassificationService) tables() *reference.Tables {
	if cs.Tables != nil {
		return cs.Tables
	}
	return reference.Current()
}

// Assign maps a normalized variant view onto an evidence set using the
// configured code flags and the curated reference tables. It never
// panics outward; any internal failure degrades to the partial set
// accumulated so far plus a diagnostic note.
func (cs *ClassificationService) Assign(view *models.VariantView) (evidence models.EvidenceSet) {
	builder := models.NewEvidenceSetBuilder()

	defer func() {
		if r := recover(); r != nil {
			builder.AddNote("evidence assignment aborted early: %v", r)
			evidence = builder.Freeze()
		}
	}()

	tables := cs.tables()
	consequenceCats := reference.RecognizePhrases(view.Consequence)
	clinicalCats := reference.RecognizePhrases(view.ClinicalSignificance)

	// a conflicted clinical annotation is always worth surfacing,
	// independent of which codes end up assigned
	if clinicalCats[phrase.ConflictMarker] {
		builder.AddNote("conflicting interpretations reported in clinical annotation: %q",
			strings.TrimSpace(view.ClinicalSignificance))
	}

	// PVS1 : loss-of-function in a LOF-intolerant gene
	if consequenceCats[phrase.LossOfFunction] || clinicalCats[phrase.LossOfFunction] {
		if tables.LofIntolerant().ContainsAny(view.Genes) {
			cs.addOrNoteDisabled(builder, s.PathogenicVeryStrong, ec.PVS1)
		}
	}

	// PM4 : protein length change (in-frame indel or stop loss)
	if consequenceCats[phrase.InFrameIndel] || consequenceCats[phrase.StopLoss] {
		cs.addOrNoteDisabled(builder, s.PathogenicModerate, ec.PM4)
	}

	// PP2 : missense in a missense-constrained gene with pathogenic intent
	if consequenceCats[phrase.Missense] &&
		tables.MissenseConstrained().ContainsAny(view.Genes) &&
		clinicalCats[phrase.PathogenicIntent] {
		cs.addOrNoteDisabled(builder, s.PathogenicSupporting, ec.PP2)
	}

	// BP1 : missense in a gene whose known mechanism is LOF, with
	// benign intent (the mechanism-mismatch signal)
	if consequenceCats[phrase.Missense] &&
		tables.LofIntolerant().ContainsAny(view.Genes) &&
		clinicalCats[phrase.BenignIntent] {
		cs.addOrNoteDisabled(builder, s.BenignSupporting, ec.BP1)
	}

	// BP3 : in-frame indel in a repetitive / low-complexity region
	if consequenceCats[phrase.InFrameIndel] &&
		(consequenceCats[phrase.RepetitiveRegion] || clinicalCats[phrase.RepetitiveRegion]) {
		cs.addOrNoteDisabled(builder, s.BenignSupporting, ec.BP3)
	}

	cs.assignFrequencyCodes(builder, view, clinicalCats)

	return builder.Freeze()
}

// assignFrequencyCodes applies the fixed population-frequency bands when
// a frequency is available, and the weaker benign-side text fallback
// when it is not. The stand-alone band takes priority over the strong
// band; the rare/moderate band has no text fallback.
func (cs *ClassificationService) assignFrequencyCodes(
	builder *models.EvidenceSetBuilder,
	view *models.VariantView,
	clinicalCats map[c.PhraseCategory]bool) {

	engine := &cs.Config.Engine

	var frequency float64
	hasFrequency := false
	if cs.FrequencyProvider != nil {
		frequency, hasFrequency = cs.FrequencyProvider.AlleleFrequency(view)
	}

	if hasFrequency {
		if frequency > 0.05 {
			cs.addOrNoteDisabled(builder, s.BenignStandAlone, ec.BA1)
		} else if frequency >= 0.01 {
			cs.addOrNoteDisabled(builder, s.BenignStrong, ec.BS1)
		}

		if frequency < 0.0001 {
			cs.addOrNoteDisabled(builder, s.PathogenicModerate, ec.PM2)
		}

		return
	}

	// no frequency value: keep the degradation auditable
	if cs.FrequencyProvider == nil {
		missing := []string{}
		for _, code := range []c.EvidenceCode{ec.BA1, ec.BS1, ec.PM2} {
			if engine.IsEnabled(code) {
				missing = append(missing, string(code))
			}
		}
		if len(missing) > 0 {
			builder.AddNote("population-frequency codes degraded (%s): no frequency provider wired in",
				strings.Join(missing, ", "))
		}
	}

	// benign-side text fallback only; the rare/moderate-pathogenic
	// band is simply skipped without a frequency
	if clinicalCats[phrase.CommonPolymorphism] {
		cs.addOrNoteDisabled(builder, s.BenignStrong, ec.BS1)
	}
}

// addOrNoteDisabled assigns the code when enabled; a code whose trigger
// criteria were met but which is disabled in config is never silently
// omitted, it leaves a diagnostic note instead.
func (cs *ClassificationService) addOrNoteDisabled(builder *models.EvidenceSetBuilder, tier c.EvidenceStrength, code c.EvidenceCode) {
	if cs.Config.Engine.IsEnabled(code) {
		builder.Add(tier, code)
		return
	}
	builder.AddNote("%s disabled by configuration; criteria otherwise met", code)
}

// Score computes (pathogenicScore, benignScore) as the weighted sums of
// the evidence bucket sizes. Pure and total; an unexpected internal
// failure falls back to (0, 0).
func (cs *ClassificationService) Score(evidence *models.EvidenceSet) (pathogenicScore int, benignScore int) {
	defer func() {
		if r := recover(); r != nil {
			pathogenicScore, benignScore = 0, 0
		}
	}()

	engine := &cs.Config.Engine

	pathogenicScore = len(evidence.PathogenicVeryStrong)*engine.WeightOf(s.PathogenicVeryStrong) +
		len(evidence.PathogenicStrong)*engine.WeightOf(s.PathogenicStrong) +
		len(evidence.PathogenicModerate)*engine.WeightOf(s.PathogenicModerate) +
		len(evidence.PathogenicSupporting)*engine.WeightOf(s.PathogenicSupporting)

	benignScore = len(evidence.BenignStandAlone)*engine.WeightOf(s.BenignStandAlone) +
		len(evidence.BenignStrong)*engine.WeightOf(s.BenignStrong) +
		len(evidence.BenignSupporting)*engine.WeightOf(s.BenignSupporting)

	return pathogenicScore, benignScore
}

// Classify resolves an evidence set into a classification tier and an
// audit reason. Deterministic and total; ordered steps, first match
// wins. Any internal failure degrades to Uncertain Significance with
// the error text as reason rather than propagating.
func (cs *ClassificationService) Classify(evidence *models.EvidenceSet) (resultTier c.ClassificationTier, reason string) {
	defer func() {
		if r := recover(); r != nil {
			resultTier = t.UncertainSignificance
			reason = fmt.Sprintf("internal classification error: %v", r)
		}
	}()

	engine := &cs.Config.Engine
	pathogenicScore, benignScore := cs.Score(evidence)

	// 1. stand-alone short-circuit: a stand-alone benign code fixes the
	//    classification by itself, overriding all pathogenic evidence
	if len(evidence.BenignStandAlone) > 0 {
		if pathogenicScore > 0 {
			return t.Benign, fmt.Sprintf("stand-alone benign evidence overriding conflicting pathogenic evidence (%s)",
				evidence.CountsString())
		}
		return t.Benign, fmt.Sprintf("stand-alone benign evidence (%s)", evidence.CountsString())
	}

	// 2. conflict gate
	if pathogenicScore > 0 && benignScore > 0 {
		ratio := float64(pathogenicScore) / float64(pathogenicScore+benignScore)

		if pathogenicScore >= engine.StrongEvidenceThreshold && benignScore >= engine.StrongEvidenceThreshold {
			return t.UncertainSignificance, fmt.Sprintf("strong conflict (pathogenic score %d vs benign score %d, both >= %d)",
				pathogenicScore, benignScore, engine.StrongEvidenceThreshold)
		}

		if ratio >= engine.BalancedConflictMin && ratio <= engine.BalancedConflictMax {
			return t.UncertainSignificance, fmt.Sprintf("balanced conflict (ratio %.2f within [%.2f, %.2f])",
				ratio, engine.BalancedConflictMin, engine.BalancedConflictMax)
		}

		// one side dominates while the other stays below the strong
		// threshold: fall through to the dominant side's cascade
		if pathogenicScore >= benignScore {
			if matchedTier, matchedReason, matched := pathogenicCascade(evidence); matched {
				return matchedTier, matchedReason
			}
		} else {
			if matchedTier, matchedReason, matched := benignCascade(evidence); matched {
				return matchedTier, matchedReason
			}
		}

		return t.UncertainSignificance, fmt.Sprintf("Insufficient Evidence (%s)", evidence.CountsString())
	}

	// 3. pathogenic cascade
	if matchedTier, matchedReason, matched := pathogenicCascade(evidence); matched {
		return matchedTier, matchedReason
	}

	// 4. benign cascade
	if matchedTier, matchedReason, matched := benignCascade(evidence); matched {
		return matchedTier, matchedReason
	}

	// 5. default
	if evidence.IsEmpty() {
		return t.UncertainSignificance, "No Evidence"
	}
	return t.UncertainSignificance, fmt.Sprintf("Insufficient Evidence (%s)", evidence.CountsString())
}

// pathogenicCascade evaluates the pathogenic combining rules top-down;
// first match wins.
func pathogenicCascade(evidence *models.EvidenceSet) (c.ClassificationTier, string, bool) {
	veryStrong := len(evidence.PathogenicVeryStrong)
	strong := len(evidence.PathogenicStrong)
	moderate := len(evidence.PathogenicModerate)
	supporting := len(evidence.PathogenicSupporting)

	counts := evidence.CountsString()

	switch {
	case veryStrong >= 1 && strong >= 1:
		return t.Pathogenic, fmt.Sprintf("Very High (%s)", counts), true
	case veryStrong >= 1 && moderate >= 2:
		return t.Pathogenic, fmt.Sprintf("High (%s)", counts), true
	case veryStrong >= 1 && moderate >= 1 && supporting >= 1:
		return t.Pathogenic, fmt.Sprintf("High (%s)", counts), true
	case veryStrong >= 1 && supporting >= 2:
		return t.Pathogenic, fmt.Sprintf("Moderate (%s)", counts), true
	case strong >= 2:
		return t.Pathogenic, fmt.Sprintf("High (%s)", counts), true
	case strong >= 1 && moderate >= 3:
		return t.Pathogenic, fmt.Sprintf("High (%s)", counts), true
	case strong >= 1 && moderate >= 2 && supporting >= 2:
		return t.Pathogenic, fmt.Sprintf("Moderate (%s)", counts), true
	case strong >= 1 && moderate >= 1 && supporting >= 4:
		return t.Pathogenic, fmt.Sprintf("Moderate (%s)", counts), true
	case veryStrong == 1 && moderate == 1:
		return t.LikelyPathogenic, fmt.Sprintf("Moderate (%s)", counts), true
	case strong == 1 && (moderate == 1 || moderate == 2):
		return t.LikelyPathogenic, fmt.Sprintf("Moderate (%s)", counts), true
	case strong == 1 && supporting >= 2:
		return t.LikelyPathogenic, fmt.Sprintf("Moderate (%s)", counts), true
	case moderate >= 3:
		return t.LikelyPathogenic, fmt.Sprintf("Moderate (%s)", counts), true
	case moderate == 2 && supporting >= 2:
		return t.LikelyPathogenic, fmt.Sprintf("Low (%s)", counts), true
	case moderate == 1 && supporting >= 4:
		return t.LikelyPathogenic, fmt.Sprintf("Low (%s)", counts), true
	}

	return t.UncertainSignificance, "", false
}

// benignCascade evaluates the benign combining rules top-down; the
// stand-alone bucket never reaches here (short-circuited in Classify).
func benignCascade(evidence *models.EvidenceSet) (c.ClassificationTier, string, bool) {
	strong := len(evidence.BenignStrong)
	supporting := len(evidence.BenignSupporting)

	counts := evidence.CountsString()

	switch {
	case strong >= 2:
		return t.Benign, fmt.Sprintf("High (%s)", counts), true
	case strong == 1 && supporting >= 1:
		return t.Benign, fmt.Sprintf("High (%s)", counts), true
	case strong == 1:
		return t.LikelyBenign, fmt.Sprintf("Moderate (%s)", counts), true
	case supporting >= 2:
		return t.LikelyBenign, fmt.Sprintf("Low (%s)", counts), true
	}

	return t.UncertainSignificance, "", false
}

// ClassifyVariant is the single-variant entry point: validation,
// assignment, classification, timing. Malformed input never surfaces as
// an error; it yields an inspectable Uncertain Significance result.
func (cs *ClassificationService) ClassifyVariant(view *models.VariantView) models.ClassificationResult {
	start := time.Now()

	if validationErr := view.Validate(); validationErr != nil {
		builder := models.NewEvidenceSetBuilder()
		builder.AddNote("%s", validationErr.Error())

		return models.ClassificationResult{
			VariantId:   view.Id,
			Tier:        t.UncertainSignificance,
			Reason:      "No Evidence",
			Evidence:    builder.Freeze(),
			Elapsed:     time.Since(start),
			CreatedTime: time.Now(),
		}
	}

	evidence := cs.Assign(view)
	resultTier, reason := cs.Classify(&evidence)

	return models.ClassificationResult{
		VariantId:   view.Id,
		Tier:        resultTier,
		Reason:      reason,
		Evidence:    evidence,
		Elapsed:     time.Since(start),
		CreatedTime: time.Now(),
	}
}

// ClassifyBatch shards a dataset across workers; classification of one
// variant never depends on another, so workers need zero coordination.
// Each worker records into its own metrics collector and the merged
// collector is returned to the caller.
func (cs *ClassificationService) ClassifyBatch(views []*models.VariantView, workers int) ([]models.ClassificationResult, *services.MetricsCollector) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(views) && len(views) > 0 {
		workers = len(views)
	}

	results := make([]models.ClassificationResult, len(views))
	collectors := make([]*services.MetricsCollector, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		workerId := w
		collectors[workerId] = services.NewMetricsCollector()

		g.Go(func() error {
			for i := workerId; i < len(views); i += workers {
				if validationErr := views[i].Validate(); validationErr != nil {
					collectors[workerId].RecordValidationFailure()
				}

				result := cs.ClassifyVariant(views[i])
				results[i] = result
				collectors[workerId].Record(result)
			}
			return nil
		})
	}

	// workers never return errors; classification failures degrade
	// to Uncertain Significance results instead
	g.Wait()

	merged := services.NewMetricsCollector()
	for _, collector := range collectors {
		merged.Merge(collector)
	}

	return results, merged
}
