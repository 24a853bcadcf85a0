// Package strings provides string list helpers shared by middleware and config.
package strings

import (
	"strings"
)

// SplitList splits a comma separated header or env value into its trimmed,
// non-empty, distinct elements. Order is preserved.
//
//	SplitList(" holiday, beta,,holiday ")
//	// Returns: []string{"holiday", "beta"}
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return Dedupe(strings.Split(raw, ","))
}

// Dedupe trims every element and drops empty strings and repeats, keeping the
// first occurrence.
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
