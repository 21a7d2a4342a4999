package score

import (
	"math"
	"testing"
)

func TestEditRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"smith", "smith", 1},
		{"smith", "smyth", 0.8},
		{"abc", "xyz", 0},
		{"", "doe", 0},
	}
	for _, tt := range tests {
		if got := editRatio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("editRatio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPartialRatioFindsContainedName(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"john", "johnathan", 1},
		{"ann", "hannah", 1},
		{"kate", "kate", 1},
		{"", "kate", 0},
	}
	for _, tt := range tests {
		if got := partialRatio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("partialRatio(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	// Word order is irrelevant.
	if got := tokenSetRatio("los angeles california", "california los angeles"); got != 1 {
		t.Errorf("Expected 1 for reordered tokens, got %f", got)
	}
	// A subset of tokens still counts as a full match.
	if got := tokenSetRatio("boston", "boston massachusetts"); got != 1 {
		t.Errorf("Expected 1 for token subset, got %f", got)
	}
	// Disjoint places score low but not necessarily zero.
	if got := tokenSetRatio("paris", "berlin"); got >= 0.5 {
		t.Errorf("Expected low score for disjoint places, got %f", got)
	}
	if got := tokenSetRatio("", "berlin"); got != 0 {
		t.Errorf("Expected 0 for empty place, got %f", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"José GARCÍA-Lopez", "jose garcia lopez"},
		{"  O'Brien  ", "o brien"},
		{"Müller", "muller"},
		{"Doe", "doe"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhoneticCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John", "J500"},
		{"Doe", "D000"},
		{"Smith", "S530"},
		{"García", "G620"},
		{"", ""},
		{"123", ""},
	}
	for _, tt := range tests {
		if got := PhoneticCode(tt.in); got != tt.want {
			t.Errorf("PhoneticCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
