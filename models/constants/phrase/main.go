package phrase

import (
	"onigiri/api/models/constants"
)

/*
	Categories produced by the free-text normalization step
	(see repositories/reference). Assignment rules match on
	these, never on raw annotation strings.
*/
const (
	Unknown constants.PhraseCategory = iota
	LossOfFunction
	Missense
	Synonymous
	InFrameIndel
	StopLoss
	PathogenicIntent
	BenignIntent
	CommonPolymorphism
	RepetitiveRegion
	ConflictMarker
)

func IsKnown(value int) bool {
	return value > int(Unknown) && value <= int(ConflictMarker)
}

func CategoryToString(cat constants.PhraseCategory) string {
	switch cat {
	case LossOfFunction:
		return "LOSS_OF_FUNCTION"
	case Missense:
		return "MISSENSE"
	case Synonymous:
		return "SYNONYMOUS"
	case InFrameIndel:
		return "IN_FRAME_INDEL"
	case StopLoss:
		return "STOP_LOSS"
	case PathogenicIntent:
		return "PATHOGENIC_INTENT"
	case BenignIntent:
		return "BENIGN_INTENT"
	case CommonPolymorphism:
		return "COMMON_POLYMORPHISM"
	case RepetitiveRegion:
		return "REPETITIVE_REGION"
	case ConflictMarker:
		return "CONFLICT_MARKER"
	default:
		return "UNKNOWN"
	}
}
