package table_test

import (
	"testing"

	"github.com/JaimeStill/flatcheck/internal/table"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  a  ", "a"},
		{"Fernwärme   (Gas)", "Fernwärme (Gas)"},
		{"a\n\tb", "a b"},
	}
	for _, tt := range tests {
		if got := table.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilled(t *testing.T) {
	const ph = "Write here"
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"   \n ", false},
		{"Write here", false},
		{"  Write   here ", false},
		{"x", true},
	}
	for _, tt := range tests {
		if got := table.Filled(tt.in, ph); got != tt.want {
			t.Errorf("Filled(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMatchOption(t *testing.T) {
	opts := []string{"unbekannt", "Fernwärme", "Fernwärme (Gas)"}
	tests := []struct {
		name  string
		value string
		want  string
		ok    bool
	}{
		{"exact after normalize", "Fernwärme   (Gas)", "Fernwärme (Gas)", true},
		{"case insensitive contains", "FERNWÄRME vom Netz", "Fernwärme", true},
		{"empty", "   ", "", false},
		{"none", "Ofen", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.MatchOption(opts, tt.value)
			if got != tt.want || ok != tt.ok {
				t.Errorf("MatchOption(%q) = %q, %v; want %q, %v", tt.value, got, ok, tt.want, tt.ok)
			}
		})
	}
}
