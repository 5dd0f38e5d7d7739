package utils

import (
	"strings"

	"github.com/google/uuid"
)

func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// SplitAndTrim splits a possibly multi-valued, delimiter-separated field
// (e.g. a "GENE1;GENE2" gene column) into trimmed, non-empty parts.
func SplitAndTrim(text string, delimiter string) []string {
	parts := []string{}
	for _, part := range strings.Split(text, delimiter) {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func IsValidUUID(text string) bool {
	_, err := uuid.Parse(text)
	return err == nil
}
