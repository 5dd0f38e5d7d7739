package tier

import (
	"strings"

	"onigiri/api/models/constants"
)

const (
	Unknown               constants.ClassificationTier = ""
	Pathogenic            constants.ClassificationTier = "Pathogenic"
	LikelyPathogenic      constants.ClassificationTier = "Likely Pathogenic"
	UncertainSignificance constants.ClassificationTier = "Uncertain Significance"
	LikelyBenign          constants.ClassificationTier = "Likely Benign"
	Benign                constants.ClassificationTier = "Benign"
)

func CastToTier(text string) constants.ClassificationTier {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "pathogenic":
		return Pathogenic
	case "likely pathogenic":
		return LikelyPathogenic
	case "uncertain significance":
		return UncertainSignificance
	case "likely benign":
		return LikelyBenign
	case "benign":
		return Benign
	default:
		return Unknown
	}
}

func IsKnownTier(text string) bool {
	return CastToTier(text) != Unknown
}
