package speakermatch

import (
	"encoding/json"
	"testing"
)

func TestMethodTextRoundTrip(t *testing.T) {
	for _, m := range []Method{MethodNone, MethodEmbedding, MethodNameBased, MethodScoreBased, MethodElimination} {
		text, err := m.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", m, err)
		}
		var decoded Method
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if decoded != m {
			t.Fatalf("round trip mismatch: %v -> %q -> %v", m, text, decoded)
		}
	}
}

func TestParseMethodAcceptsLegacyEliminationTag(t *testing.T) {
	m, err := ParseMethod("소거법")
	if err != nil || m != MethodElimination {
		t.Fatalf("ParseMethod(legacy) = %v, %v", m, err)
	}
	if _, err := ParseMethod("voice"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestEntryJSONShape(t *testing.T) {
	data, err := json.Marshal(Entry{SpeakerLabel: "SPEAKER_00", Name: "민서", Confidence: 0.5, MatchMethod: MethodElimination, NeedsReview: true, UtteranceCount: 4})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"speaker_label":"SPEAKER_00","name":"민서","confidence":0.5,"match_method":"elimination","auto_matched":false,"needs_review":true,"utterance_count":4}`
	if string(data) != want {
		t.Fatalf("unexpected JSON:\n got %s\nwant %s", data, want)
	}
}

func TestPolicyNormalizedReplacesOutOfRange(t *testing.T) {
	p := Policy{ReviewThreshold: 2, MinUtterances: -1, EliminationConfidence: 0, CountWeight: -1, ConfidenceWeight: 0.3}.Normalized()
	if p != DefaultPolicy() {
		t.Fatalf("expected defaults, got %+v", p)
	}
	custom := Policy{ReviewThreshold: 0.9, MinUtterances: 5, EliminationConfidence: 0.3, CountWeight: 1, ConfidenceWeight: 0}.Normalized()
	if custom.ReviewThreshold != 0.9 || custom.MinUtterances != 5 || custom.CountWeight != 1 || custom.ConfidenceWeight != 0 {
		t.Fatalf("expected valid values to survive, got %+v", custom)
	}
}
