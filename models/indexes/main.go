package indexes

import (
	"time"

	"onigiri/api/models"
)

// ClassificationDocument is the Elasticsearch shape of one persisted
// classification result, flattened for keyword aggregation on tier.
type ClassificationDocument struct {
	Id                   string             `json:"id"`
	RunId                string             `json:"runId"`
	Genes                []string           `json:"genes"`
	Consequence          string             `json:"consequence"`
	ClinicalSignificance string             `json:"clinicalSignificance"`
	Tier                 string             `json:"tier"`
	Reason               string             `json:"reason"`
	Evidence             models.EvidenceSet `json:"evidence"`
	CreatedTime          time.Time          `json:"createdTime"`
}

var MAPPING_FIELDS_KEYWORD_IG256 = map[string]interface{}{
	"keyword": map[string]interface{}{
		"type":         "keyword",
		"ignore_above": 256,
	},
}
var MAPPING_TEXT = map[string]interface{}{"type": "text", "fields": MAPPING_FIELDS_KEYWORD_IG256}
var MAPPING_DATE = map[string]interface{}{"type": "date"}

var CLASSIFICATION_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"id":                   MAPPING_TEXT,
		"runId":                MAPPING_TEXT,
		"genes":                MAPPING_TEXT,
		"consequence":          MAPPING_TEXT,
		"clinicalSignificance": MAPPING_TEXT,
		"tier":                 MAPPING_TEXT,
		"reason":               MAPPING_TEXT,
		"evidence": map[string]interface{}{
			"properties": map[string]interface{}{
				"pathogenicVeryStrong": MAPPING_TEXT,
				"pathogenicStrong":     MAPPING_TEXT,
				"pathogenicModerate":   MAPPING_TEXT,
				"pathogenicSupporting": MAPPING_TEXT,
				"benignStandAlone":     MAPPING_TEXT,
				"benignStrong":         MAPPING_TEXT,
				"benignSupporting":     MAPPING_TEXT,
				"notes":                MAPPING_TEXT,
			},
		},
		"createdTime": MAPPING_DATE,
	},
}
