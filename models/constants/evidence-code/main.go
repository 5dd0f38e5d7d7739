package evidenceCode

import (
	"strings"

	"onigiri/api/models/constants"
)

/*
	ACMG/AMP 2015 evidence criteria recognized by the
	classification engine. Each code maps to exactly one
	strength bucket of the evidence set.
*/
const (
	// Pathogenic direction
	PVS1 constants.EvidenceCode = "PVS1" // loss-of-function in a LOF-intolerant gene
	PM2  constants.EvidenceCode = "PM2"  // absent/rare in population databases
	PM4  constants.EvidenceCode = "PM4"  // protein length change
	PP2  constants.EvidenceCode = "PP2"  // missense in a missense-constrained gene

	// Benign direction
	BA1 constants.EvidenceCode = "BA1" // stand-alone: common in population databases
	BS1 constants.EvidenceCode = "BS1" // frequency above expected for the disorder
	BP1 constants.EvidenceCode = "BP1" // missense where LOF is the known mechanism
	BP3 constants.EvidenceCode = "BP3" // in-frame indel in a repetitive region
)

func AllCodes() []constants.EvidenceCode {
	return []constants.EvidenceCode{PVS1, PM2, PM4, PP2, BA1, BS1, BP1, BP3}
}

func CastToEvidenceCode(text string) (constants.EvidenceCode, bool) {
	candidate := constants.EvidenceCode(strings.ToUpper(strings.TrimSpace(text)))
	for _, code := range AllCodes() {
		if code == candidate {
			return code, true
		}
	}
	return "", false
}

func IsKnownCode(text string) bool {
	_, ok := CastToEvidenceCode(text)
	return ok
}
