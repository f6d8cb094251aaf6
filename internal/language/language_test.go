package language

import (
	"reflect"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		// 3-letter codes convert
		{"eng", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"deu", "de"},
		{"jpn", "ja"},
		{"ukr", "uk"},
		// Macrolanguage members, as emitted by trigram detectors
		{"cmn", "zh"},
		{"arb", "ar"},
		{"nob", "no"},
		{"nno", "no"},
		// Word forms
		{"english", "en"},
		{"French", "fr"},
		// Unknown 2-letter passes through
		{"xy", "xy"},
		// Unknown 3-letter returns empty
		{"xyz", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPrimary(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"en_GB", "en"},
		{"pt-BR", "pt"},
		{"zh-Hans-CN", "zh"},
		{"EN-us", "en"},
		{"", ""},
		{"x-unparseable-!!", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Primary(tt.input); got != tt.expected {
				t.Errorf("Primary(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizePreference(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"empty defaults to english", nil, []string{"en"}},
		{"blank entries dropped", []string{" ", ""}, []string{"en"}},
		{"order preserved", []string{"de", "en"}, []string{"de", "en"}},
		{"dedupe case-insensitive", []string{"EN", "en", "fr"}, []string{"en", "fr"}},
		{"full tags kept", []string{"en-US", "en"}, []string{"en-us", "en"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePreference(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("NormalizePreference(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPrimarySet(t *testing.T) {
	set := PrimarySet([]string{"en-US", "pt-BR", "de"})
	for _, want := range []string{"en", "pt", "de"} {
		if _, ok := set[want]; !ok {
			t.Errorf("PrimarySet missing %q", want)
		}
	}
	if len(set) != 3 {
		t.Errorf("PrimarySet size = %d, want 3", len(set))
	}
}
