package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout Onigiri and it's
	associated services.
*/
type ClassificationTier string
type EvidenceCode string
type EvidenceStrength int
type PhraseCategory int
