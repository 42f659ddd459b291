package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// honorificSuffixes are address forms transcripts attach to names
// ("민서씨", "김팀장님"). Longest first.
var honorificSuffixes = []string{"님", "씨"}

// NormalizeName trims a name, collapses inner whitespace to single spaces,
// and converts it to NFC so composed and decomposed Hangul compare equal.
func NormalizeName(value string) string {
	value = norm.NFC.String(value)
	return strings.Join(strings.Fields(value), " ")
}

// NormalizeLabel trims a speaker label and converts it to NFC.
func NormalizeLabel(value string) string {
	return strings.TrimSpace(norm.NFC.String(value))
}

// CanonicalName maps a mentioned name onto the roster spelling. A name that
// is already on the roster is returned as is; otherwise a trailing honorific
// is stripped when the remainder is a roster name. Anything else is returned
// normalized but unchanged.
func CanonicalName(value string, roster map[string]struct{}) string {
	name := NormalizeName(value)
	if name == "" || len(roster) == 0 {
		return name
	}
	if _, ok := roster[name]; ok {
		return name
	}
	for _, suffix := range honorificSuffixes {
		stem := strings.TrimSpace(strings.TrimSuffix(name, suffix))
		if stem == name || stem == "" {
			continue
		}
		if _, ok := roster[stem]; ok {
			return stem
		}
	}
	return name
}

// UniqueNames normalizes names and drops empties and repeats, keeping the
// first occurrence order.
func UniqueNames(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		name := NormalizeName(value)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
