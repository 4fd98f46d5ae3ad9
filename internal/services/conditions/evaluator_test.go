package conditions

import (
	"strings"
	"testing"

	"github.com/Gamma29/loot/internal/common"
)

// fakeState is a canned install for predicate tests.
type fakeState struct {
	installed map[string]bool
	active    map[string]bool
	crcs      map[string]uint32
	versions  map[string]string
}

func (s *fakeState) IsPluginInstalled(name string) bool {
	return s.installed[strings.ToLower(name)]
}

func (s *fakeState) IsPluginActive(name string) bool {
	return s.active[strings.ToLower(name)]
}

func (s *fakeState) PluginCRC(name string) (uint32, bool) {
	crc, ok := s.crcs[strings.ToLower(name)]
	return crc, ok
}

func (s *fakeState) PluginVersion(name string) (string, bool) {
	version, ok := s.versions[strings.ToLower(name)]
	return version, ok
}

func testState() *fakeState {
	return &fakeState{
		installed: map[string]bool{"a.esp": true, "b.esp": true},
		active:    map[string]bool{"a.esp": true},
		crcs:      map[string]uint32{"a.esp": 0xDEADBEEF},
		versions:  map[string]string{"a.esp": "1.2.0"},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		condition string
		want      bool
		wantErr   bool
	}{
		{"empty is vacuously true", "", true, false},
		{"file installed", `file("A.esp")`, true, false},
		{"file missing", `file("C.esp")`, false, false},
		{"file case-insensitive", `file("a.ESP")`, true, false},
		{"negated file", `not file("C.esp")`, true, false},
		{"active plugin", `active("A.esp")`, true, false},
		{"installed but inactive", `active("B.esp")`, false, false},
		{"checksum match", `checksum("A.esp", DEADBEEF)`, true, false},
		{"checksum mismatch", `checksum("A.esp", CAFEBABE)`, false, false},
		{"checksum of missing plugin", `checksum("C.esp", DEADBEEF)`, false, false},
		{"version satisfied", `version("A.esp", "1.0", ">=")`, true, false},
		{"version not satisfied", `version("A.esp", "2.0", ">=")`, false, false},
		{"version of missing plugin", `version("C.esp", "1.0", ">=")`, false, false},
		{"lang match", `lang(en)`, true, false},
		{"lang mismatch", `lang(fr)`, false, false},
		{"and both true", `file("A.esp") and active("A.esp")`, true, false},
		{"and one false", `file("A.esp") and active("B.esp")`, false, false},
		{"or one true", `file("C.esp") or file("A.esp")`, true, false},
		{"or both false", `file("C.esp") or file("D.esp")`, false, false},
		{"unknown function", `exists("A.esp")`, false, true},
		{"unparseable", `file(`, false, true},
		{"invalid checksum literal", `checksum("A.esp", XYZ)`, false, true},
		{"unknown comparison operator", `version("A.esp", "1.0", "~")`, false, true},
	}

	evaluator := New(testState(), common.GetLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Evaluate(tt.condition, "en")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Evaluate(%q) expected error", tt.condition)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate(%q) failed: %v", tt.condition, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.condition, got, tt.want)
			}
		})
	}
}

func TestEvaluateCachesPerLanguage(t *testing.T) {
	evaluator := New(testState(), common.GetLogger())

	enResult, err := evaluator.Evaluate("lang(en)", "en")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	frResult, err := evaluator.Evaluate("lang(en)", "fr")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !enResult || frResult {
		t.Error("cache must key on language as well as condition text")
	}
}

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.0.0", 0},
		{"1.2", "1.10", -1},
		{"2.0", "1.9", 1},
		{"1.0a", "1.0b", -1},
	}

	for _, tt := range tests {
		if got := versionCompare(tt.a, tt.b); got != tt.want {
			t.Errorf("versionCompare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
