package textutil

import (
	"reflect"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestNormalizeName(t *testing.T) {
	decomposed := norm.NFD.String("민서")
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"trims", "  지우 ", "지우"},
		{"collapses inner space", "Kim   Team\tLead", "Kim Team Lead"},
		{"composes hangul", decomposed, "민서"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalName(t *testing.T) {
	roster := map[string]struct{}{"민서": {}, "김팀장": {}, "지우": {}}
	tests := []struct {
		in   string
		want string
	}{
		{"민서", "민서"},
		{"민서씨", "민서"},
		{"김팀장님", "김팀장"},
		{" 지우 ", "지우"},
		{"한결씨", "한결씨"},
		{"님", "님"},
	}
	for _, tt := range tests {
		if got := CanonicalName(tt.in, roster); got != tt.want {
			t.Errorf("CanonicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := CanonicalName("민서씨", nil); got != "민서씨" {
		t.Errorf("CanonicalName without roster = %q, want unchanged", got)
	}
}

func TestUniqueNamesKeepsFirstOccurrence(t *testing.T) {
	got := UniqueNames([]string{"지우", "", "민서", " 지우", norm.NFD.String("민서"), "한결"})
	want := []string{"지우", "민서", "한결"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UniqueNames = %v, want %v", got, want)
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := NormalizeLabel(" SPEAKER_00\n"); got != "SPEAKER_00" {
		t.Fatalf("NormalizeLabel = %q", got)
	}
}
