package models

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestGenerateCodeFormat(t *testing.T) {
	year := fmt.Sprintf("%d", time.Now().Year())

	cases := []struct {
		prefix string
		digits int
	}{
		{"A", 8},
		{"D", 6},
		{"P", 6},
		{"MR", 8},
		{"RX", 8},
		{"LAB", 8},
	}
	for _, tc := range cases {
		code := GenerateCode(tc.prefix, tc.digits)

		if !strings.HasPrefix(code, tc.prefix+year) {
			t.Errorf("GenerateCode(%q, %d) = %q, want prefix %q", tc.prefix, tc.digits, code, tc.prefix+year)
			continue
		}
		if wantLen := len(tc.prefix) + 4 + tc.digits; len(code) != wantLen {
			t.Errorf("GenerateCode(%q, %d) length = %d, want %d", tc.prefix, tc.digits, len(code), wantLen)
		}
		for _, r := range code[len(tc.prefix):] {
			if r < '0' || r > '9' {
				t.Errorf("GenerateCode(%q, %d) = %q contains non-digit %q", tc.prefix, tc.digits, code, r)
				break
			}
		}
	}
}

func TestGenerateCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := GenerateCode("A", 12)
		if seen[code] {
			t.Fatalf("duplicate code %q after %d generations", code, i)
		}
		seen[code] = true
	}
}
