package table

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Normalize collapses whitespace runs to a single space and trims the result.
func Normalize(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Filled reports whether a reality value counts as entered: non-empty after
// normalization and not the input placeholder.
func Filled(value, placeholder string) bool {
	v := Normalize(value)
	return v != "" && v != placeholder
}

// ExactOption returns the option equal to value after normalization.
func ExactOption(options []string, value string) (string, bool) {
	v := Normalize(value)
	if v == "" {
		return "", false
	}
	for _, o := range options {
		if Normalize(o) == v {
			return o, true
		}
	}
	return "", false
}

// MatchOption returns the exact option for value, or else the first option
// (in catalog order) that value contains, compared case-insensitively.
func MatchOption(options []string, value string) (string, bool) {
	if o, ok := ExactOption(options, value); ok {
		return o, true
	}

	v := strings.ToLower(Normalize(value))
	if v == "" {
		return "", false
	}
	for _, o := range options {
		needle := strings.ToLower(Normalize(o))
		if needle != "" && strings.Contains(v, needle) {
			return o, true
		}
	}
	return "", false
}
