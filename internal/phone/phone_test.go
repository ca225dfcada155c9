package phone

import "testing"

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+14155551234", true},
		{"14155551234", true},
		{"+44 20 7946 0958", true}, // whitespace is stripped before matching
		{"+12", true},              // 2 significant digits is the minimum
		{"", false},
		{"abc", false},
		{"+0123", false},              // leading zero after plus
		{"0123456789", false},         // leading zero
		{"123456789012345678", false}, // too long
		{"+1415555123x", false},       // stray letter
	}
	for _, tc := range tests {
		if got := Valid(tc.in); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(415) 555-1234", "+14155551234"}, // bare local number gets country code
		{"+44 20 7946 0958", "+442079460958"},
		{"4155551234", "+14155551234"},
		{"+14155551234", "+14155551234"},
		{"1-415-555-1234", "+14155551234"},
		{"+3197010280", "+3197010280"}, // explicit plus: 10 digits but already international
		{"+31 970 10280", "+3197010280"},
		{"", "+"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"(415) 555-1234", "+44 20 7946 0958", "14155551234", "4155551234", "+3197010280"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
