package models

import (
	ec "onigiri/api/models/constants"
	evidenceCode "onigiri/api/models/constants/evidence-code"
	s "onigiri/api/models/constants/strength"
)

type Config struct {
	Debug          bool   `envconfig:"ONIGIRI_DEBUG" yaml:"debug"`
	SemVer         string `envconfig:"ONIGIRI_SEMVER" yaml:"semVer"`
	ServiceContact string `envconfig:"ONIGIRI_SERVICE_CONTACT" yaml:"serviceContact"`

	Api struct {
		Port                           string `envconfig:"ONIGIRI_API_INTERNAL_PORT" yaml:"port"`
		GeneTablePath                  string `envconfig:"ONIGIRI_API_GENE_TABLE_PATH" yaml:"geneTablePath"`
		CalibrationPath                string `envconfig:"ONIGIRI_API_CALIBRATION_PATH" yaml:"calibrationPath"`
		ClassificationConcurrencyLevel int    `envconfig:"ONIGIRI_API_CLASSIFICATION_CONCURRENCY_LEVEL" default:"4" yaml:"classificationConcurrencyLevel"`
		MetricsSnapshotIntervalMinutes int    `envconfig:"ONIGIRI_API_METRICS_SNAPSHOT_INTERVAL_MINUTES" default:"15" yaml:"metricsSnapshotIntervalMinutes"`
	} `yaml:"api"`

	Engine EngineConfig `yaml:"engine"`

	Elasticsearch struct {
		Enabled  bool   `envconfig:"ONIGIRI_ES_ENABLED" yaml:"enabled"`
		Url      string `envconfig:"ONIGIRI_ES_URL" yaml:"url"`
		Username string `envconfig:"ONIGIRI_ES_USERNAME" yaml:"username"`
		Password string `envconfig:"ONIGIRI_ES_PASSWORD" yaml:"password"`
	} `yaml:"elasticsearch"`
}

// EngineConfig carries the per-code enable flags, the per-tier weights and
// the two conflict-resolution threshold bands of the decision engine.
// It is validated exactly once, when the classification service is
// constructed; no other component re-validates it.
type EngineConfig struct {
	Enabled struct {
		PVS1 bool `envconfig:"ONIGIRI_ENGINE_ENABLE_PVS1" default:"true" yaml:"pvs1"`
		PM2  bool `envconfig:"ONIGIRI_ENGINE_ENABLE_PM2" default:"true" yaml:"pm2"`
		PM4  bool `envconfig:"ONIGIRI_ENGINE_ENABLE_PM4" default:"true" yaml:"pm4"`
		PP2  bool `envconfig:"ONIGIRI_ENGINE_ENABLE_PP2" default:"true" yaml:"pp2"`
		BA1  bool `envconfig:"ONIGIRI_ENGINE_ENABLE_BA1" default:"true" yaml:"ba1"`
		BS1  bool `envconfig:"ONIGIRI_ENGINE_ENABLE_BS1" default:"true" yaml:"bs1"`
		BP1  bool `envconfig:"ONIGIRI_ENGINE_ENABLE_BP1" default:"true" yaml:"bp1"`
		BP3  bool `envconfig:"ONIGIRI_ENGINE_ENABLE_BP3" default:"true" yaml:"bp3"`
	} `yaml:"enabled"`

	Weights struct {
		PathogenicVeryStrong int `envconfig:"ONIGIRI_ENGINE_WEIGHT_PATHOGENIC_VERY_STRONG" default:"8" yaml:"pathogenicVeryStrong"`
		PathogenicStrong     int `envconfig:"ONIGIRI_ENGINE_WEIGHT_PATHOGENIC_STRONG" default:"4" yaml:"pathogenicStrong"`
		PathogenicModerate   int `envconfig:"ONIGIRI_ENGINE_WEIGHT_PATHOGENIC_MODERATE" default:"2" yaml:"pathogenicModerate"`
		PathogenicSupporting int `envconfig:"ONIGIRI_ENGINE_WEIGHT_PATHOGENIC_SUPPORTING" default:"1" yaml:"pathogenicSupporting"`
		BenignStandAlone     int `envconfig:"ONIGIRI_ENGINE_WEIGHT_BENIGN_STAND_ALONE" default:"8" yaml:"benignStandAlone"`
		BenignStrong         int `envconfig:"ONIGIRI_ENGINE_WEIGHT_BENIGN_STRONG" default:"4" yaml:"benignStrong"`
		BenignSupporting     int `envconfig:"ONIGIRI_ENGINE_WEIGHT_BENIGN_SUPPORTING" default:"1" yaml:"benignSupporting"`
	} `yaml:"weights"`

	// an absolute score at or above which one side's evidence
	// is considered "strong" during conflict resolution
	StrongEvidenceThreshold int `envconfig:"ONIGIRI_ENGINE_STRONG_EVIDENCE_THRESHOLD" default:"4" yaml:"strongEvidenceThreshold"`

	// the [min,max] band of pathogenic/(pathogenic+benign) score
	// ratios treated as a balanced conflict
	BalancedConflictMin float64 `envconfig:"ONIGIRI_ENGINE_BALANCED_CONFLICT_MIN" default:"0.4" yaml:"balancedConflictMin"`
	BalancedConflictMax float64 `envconfig:"ONIGIRI_ENGINE_BALANCED_CONFLICT_MAX" default:"0.6" yaml:"balancedConflictMax"`
}

func (e *EngineConfig) Validate() error {
	weights := map[string]int{
		"pathogenic very-strong": e.Weights.PathogenicVeryStrong,
		"pathogenic strong":      e.Weights.PathogenicStrong,
		"pathogenic moderate":    e.Weights.PathogenicModerate,
		"pathogenic supporting":  e.Weights.PathogenicSupporting,
		"benign stand-alone":     e.Weights.BenignStandAlone,
		"benign strong":          e.Weights.BenignStrong,
		"benign supporting":      e.Weights.BenignSupporting,
	}
	for name, weight := range weights {
		if weight <= 0 {
			return NewConfigurationError("%s weight must be > 0, got %d", name, weight)
		}
	}

	if e.StrongEvidenceThreshold < 1 {
		return NewConfigurationError("strong evidence threshold must be >= 1, got %d", e.StrongEvidenceThreshold)
	}

	if e.BalancedConflictMin < 0 || e.BalancedConflictMax > 1 {
		return NewConfigurationError("balanced conflict band [%f, %f] must lie within [0, 1]",
			e.BalancedConflictMin, e.BalancedConflictMax)
	}
	if e.BalancedConflictMin > e.BalancedConflictMax {
		return NewConfigurationError("balanced conflict band is inverted: min %f > max %f",
			e.BalancedConflictMin, e.BalancedConflictMax)
	}

	return nil
}

func (e *EngineConfig) IsEnabled(code ec.EvidenceCode) bool {
	switch code {
	case evidenceCode.PVS1:
		return e.Enabled.PVS1
	case evidenceCode.PM2:
		return e.Enabled.PM2
	case evidenceCode.PM4:
		return e.Enabled.PM4
	case evidenceCode.PP2:
		return e.Enabled.PP2
	case evidenceCode.BA1:
		return e.Enabled.BA1
	case evidenceCode.BS1:
		return e.Enabled.BS1
	case evidenceCode.BP1:
		return e.Enabled.BP1
	case evidenceCode.BP3:
		return e.Enabled.BP3
	default:
		return false
	}
}

func (e *EngineConfig) WeightOf(tier ec.EvidenceStrength) int {
	switch tier {
	case s.PathogenicVeryStrong:
		return e.Weights.PathogenicVeryStrong
	case s.PathogenicStrong:
		return e.Weights.PathogenicStrong
	case s.PathogenicModerate:
		return e.Weights.PathogenicModerate
	case s.PathogenicSupporting:
		return e.Weights.PathogenicSupporting
	case s.BenignStandAlone:
		return e.Weights.BenignStandAlone
	case s.BenignStrong:
		return e.Weights.BenignStrong
	case s.BenignSupporting:
		return e.Weights.BenignSupporting
	default:
		return 0
	}
}

// DefaultEngineConfig returns the published default calibration
// (the same values the envconfig `default` tags carry).
func DefaultEngineConfig() EngineConfig {
	var e EngineConfig

	e.Enabled.PVS1 = true
	e.Enabled.PM2 = true
	e.Enabled.PM4 = true
	e.Enabled.PP2 = true
	e.Enabled.BA1 = true
	e.Enabled.BS1 = true
	e.Enabled.BP1 = true
	e.Enabled.BP3 = true

	e.Weights.PathogenicVeryStrong = 8
	e.Weights.PathogenicStrong = 4
	e.Weights.PathogenicModerate = 2
	e.Weights.PathogenicSupporting = 1
	e.Weights.BenignStandAlone = 8
	e.Weights.BenignStrong = 4
	e.Weights.BenignSupporting = 1

	e.StrongEvidenceThreshold = 4
	e.BalancedConflictMin = 0.4
	e.BalancedConflictMax = 0.6

	return e
}
