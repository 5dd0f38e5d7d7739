package reference

import (
	"strings"

	c "onigiri/api/models/constants"
	"onigiri/api/models/constants/phrase"
)

/*
	Text-indicator catalogs: the fixed phrase markers that map raw
	consequence / clinical-significance text onto phrase categories.
	Assignment rules only ever see the categories.
*/

var lossOfFunctionMarkers = []string{
	"frameshift",
	"nonsense",
	"stop_gained",
	"stop gained",
	"stop-gain",
	"splice_acceptor",
	"splice_donor",
	"splice acceptor",
	"splice donor",
	"canonical splice",
	"start_lost",
	"start lost",
	"initiator_codon",
	"stop_lost",
	"stop lost",
}

var missenseMarkers = []string{
	"missense",
}

var synonymousMarkers = []string{
	"synonymous",
	"silent",
}

var inFrameIndelMarkers = []string{
	"inframe_insertion",
	"inframe_deletion",
	"inframe insertion",
	"inframe deletion",
	"in-frame insertion",
	"in-frame deletion",
	"in-frame indel",
}

var stopLossMarkers = []string{
	"stop_lost",
	"stop lost",
	"stop-loss",
	"stoploss",
}

var pathogenicIntentMarkers = []string{
	"pathogenic",
}

var benignIntentMarkers = []string{
	"benign",
}

var commonPolymorphismMarkers = []string{
	"polymorphism",
	"common",
}

var repetitiveRegionMarkers = []string{
	"repeat",
	"repetitive",
	"low complexity",
	"tandem",
}

var conflictMarkers = []string{
	"conflicting",
	"/",
}

var categoryMarkers = map[c.PhraseCategory][]string{
	phrase.LossOfFunction:     lossOfFunctionMarkers,
	phrase.Missense:           missenseMarkers,
	phrase.Synonymous:         synonymousMarkers,
	phrase.InFrameIndel:       inFrameIndelMarkers,
	phrase.StopLoss:           stopLossMarkers,
	phrase.PathogenicIntent:   pathogenicIntentMarkers,
	phrase.BenignIntent:       benignIntentMarkers,
	phrase.CommonPolymorphism: commonPolymorphismMarkers,
	phrase.RepetitiveRegion:   repetitiveRegionMarkers,
	phrase.ConflictMarker:     conflictMarkers,
}

// RecognizePhrases lowers/trims the given free text and returns the set
// of phrase categories whose markers it contains. Empty text yields an
// empty set.
func RecognizePhrases(text string) map[c.PhraseCategory]bool {
	categories := map[c.PhraseCategory]bool{}

	loweredText := strings.ToLower(strings.TrimSpace(text))
	if loweredText == "" {
		return categories
	}

	for category, markers := range categoryMarkers {
		for _, marker := range markers {
			if strings.Contains(loweredText, marker) {
				categories[category] = true
				break
			}
		}
	}

	return categories
}
