package util

import (
	"strings"
	"testing"
)

func TestGenerateRandomHexLength(t *testing.T) {
	for _, length := range []int{0, 1, 8, 32} {
		hex := GenerateRandomHex(length)
		if len(hex) != max(length, 0) {
			t.Errorf("GenerateRandomHex(%d) returned %q with length %d", length, hex, len(hex))
		}
		for _, c := range hex {
			if !strings.ContainsRune("0123456789abcdef", c) {
				t.Errorf("GenerateRandomHex(%d) returned non-hex character %q", length, c)
			}
		}
	}
}

func TestGenerateIDPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"user", GenerateUserID, "u_"},
		{"goal", GenerateGoalID, "g_"},
		{"checkin", GenerateCheckInID, "c_"},
	}
	for _, tt := range tests {
		id := tt.gen()
		if !strings.HasPrefix(id, tt.prefix) {
			t.Errorf("%s ID %q missing prefix %q", tt.name, id, tt.prefix)
		}
		if len(id) != len(tt.prefix)+32 {
			t.Errorf("%s ID %q has unexpected length %d", tt.name, id, len(id))
		}
	}
}

func TestGenerateIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateGoalID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"YES", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"off", false},
		{"garbage", false}, // invalid falls back to the default
	}
	for _, tt := range tests {
		t.Setenv("COACH_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("COACH_TEST_BOOL", false); got != tt.want {
			t.Errorf("ParseBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}

	t.Setenv("COACH_TEST_BOOL", "")
	if !ParseBoolEnv("COACH_TEST_BOOL", true) {
		t.Error("unset variable must return the default")
	}
}

func TestParseListEnv(t *testing.T) {
	t.Setenv("COACH_TEST_LIST", " 123 , ,456,")
	got := ParseListEnv("COACH_TEST_LIST")
	if len(got) != 2 || got[0] != "123" || got[1] != "456" {
		t.Errorf("ParseListEnv returned %v, want [123 456]", got)
	}

	t.Setenv("COACH_TEST_LIST", "")
	if got := ParseListEnv("COACH_TEST_LIST"); got != nil {
		t.Errorf("ParseListEnv on empty env returned %v, want nil", got)
	}
}
