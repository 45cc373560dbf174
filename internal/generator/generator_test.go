package generator

import (
	"math/big"
	"testing"
)

func TestNewCodeLength(t *testing.T) {
	tests := []struct {
		name       string
		length     int
		wantLength int
	}{
		{name: "default length when zero", length: 0, wantLength: DefaultLength},
		{name: "default length when negative", length: -1, wantLength: DefaultLength},
		{name: "configured length 6", length: 6, wantLength: 6},
		{name: "longer length 10", length: 10, wantLength: 10},
		{name: "length beyond encoded width is padded", length: 30, wantLength: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := NewCode(tt.length)
			if len(code) != tt.wantLength {
				t.Errorf("NewCode(%d) length = %d, want %d", tt.length, len(code), tt.wantLength)
			}
			if !IsValidCode(code) {
				t.Errorf("NewCode(%d) = %q, contains characters outside base62", tt.length, code)
			}
		})
	}
}

func TestNewCodeUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := NewCode(DefaultLength)
		if seen[code] {
			t.Fatalf("NewCode() produced duplicate code %q after %d draws", code, i)
		}
		seen[code] = true
	}
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "alphanumeric", code: "aB3xY9", want: true},
		{name: "empty", code: "", want: false},
		{name: "dash", code: "ab-cd", want: false},
		{name: "space", code: "ab cd", want: false},
		{name: "unicode", code: "abcé12", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCode(tt.code); got != tt.want {
				t.Errorf("IsValidCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestBase62Encode(t *testing.T) {
	tests := []struct {
		name string
		num  int64
		want string
	}{
		{name: "zero", num: 0, want: "0"},
		{name: "single digit", num: 9, want: "9"},
		{name: "first lowercase", num: 10, want: "a"},
		{name: "first uppercase", num: 36, want: "A"},
		{name: "base rollover", num: 62, want: "10"},
		{name: "two digits", num: 3843, want: "ZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base62Encode(big.NewInt(tt.num)); got != tt.want {
				t.Errorf("base62Encode(%d) = %q, want %q", tt.num, got, tt.want)
			}
		})
	}
}
