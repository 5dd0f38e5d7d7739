package strength

import (
	"onigiri/api/models/constants"
)

const (
	Unknown constants.EvidenceStrength = iota

	// Pathogenic direction, strongest first
	PathogenicVeryStrong
	PathogenicStrong
	PathogenicModerate
	PathogenicSupporting

	// Benign direction (deliberately below pathogenic for sequential id'ing purposes)
	BenignStandAlone
	BenignStrong
	BenignSupporting
)

func IsKnown(value int) bool {
	return value > int(Unknown) && value <= int(BenignSupporting)
}

func IsPathogenic(s constants.EvidenceStrength) bool {
	return s >= PathogenicVeryStrong && s <= PathogenicSupporting
}

func IsBenign(s constants.EvidenceStrength) bool {
	return s >= BenignStandAlone && s <= BenignSupporting
}

func StrengthToString(s constants.EvidenceStrength) string {
	switch s {
	case PathogenicVeryStrong:
		return "PATHOGENIC_VERY_STRONG"
	case PathogenicStrong:
		return "PATHOGENIC_STRONG"
	case PathogenicModerate:
		return "PATHOGENIC_MODERATE"
	case PathogenicSupporting:
		return "PATHOGENIC_SUPPORTING"
	case BenignStandAlone:
		return "BENIGN_STAND_ALONE"
	case BenignStrong:
		return "BENIGN_STRONG"
	case BenignSupporting:
		return "BENIGN_SUPPORTING"
	default:
		return "UNKNOWN"
	}
}
