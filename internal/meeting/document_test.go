package meeting

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"speakertag/internal/speakermatch"
)

const sampleDocument = `{
  "meeting_id": "weekly-sync",
  "auto_matched": {"SPEAKER_03": "한결"},
  "name_based_results": {
    "김팀장": [{"speaker": "SPEAKER_01", "confidence": 0.9}, {"speaker": "SPEAKER_01", "confidence": 0.8}]
  },
  "evidence": [{"speaker": "SPEAKER_02", "name": "지우", "confidence": 0.75}],
  "speaker_utterances": {"SPEAKER_00": ["안녕하세요", "시작할까요"]},
  "segments": [
    {"speaker": "SPEAKER_01", "start": 12.5, "end": 14.0, "text": "두 번째"},
    {"speaker": "SPEAKER_01", "start": 3.0, "end": 5.0, "text": "첫 번째"},
    {"speaker": "SPEAKER_02", "start": 7.0, "end": 8.0, "text": "  "},
    {"speaker": "", "start": 9.0, "end": 9.5, "text": "noise"}
  ],
  "participant_names": ["민서", "김팀장", "지우"]
}`

func TestDecodeAndConvert(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if doc.MeetingID != "weekly-sync" {
		t.Fatalf("unexpected meeting id %q", doc.MeetingID)
	}

	in := doc.Input()
	wantUtterances := map[string][]string{
		"SPEAKER_00": {"안녕하세요", "시작할까요"},
		"SPEAKER_01": {"첫 번째", "두 번째"},
		"SPEAKER_02": nil,
	}
	if !reflect.DeepEqual(in.Utterances, wantUtterances) {
		t.Fatalf("unexpected utterances: %#v", in.Utterances)
	}
	wantEvidence := []speakermatch.Evidence{
		{Speaker: "SPEAKER_01", Name: "김팀장", Confidence: 0.9},
		{Speaker: "SPEAKER_01", Name: "김팀장", Confidence: 0.8},
		{Speaker: "SPEAKER_02", Name: "지우", Confidence: 0.75},
	}
	if !reflect.DeepEqual(in.Evidence, wantEvidence) {
		t.Fatalf("unexpected evidence: %+v", in.Evidence)
	}
	if in.AutoMatched["SPEAKER_03"] != "한결" || len(in.Roster) != 3 {
		t.Fatalf("unexpected auto matches or roster: %+v", in)
	}

	result := speakermatch.Resolve(in)
	if len(result.Mappings) != 4 {
		t.Fatalf("expected every document speaker to be resolved, got %d", len(result.Mappings))
	}
	if got := result.Mappings["SPEAKER_01"].Name; got != "김팀장" {
		t.Fatalf("expected SPEAKER_01 -> 김팀장, got %q", got)
	}
}

func TestDecodeRejectsUnknownFieldsAndTrailingData(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"speakers": {}}`)); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
	if _, err := Decode(strings.NewReader(`{} {}`)); err == nil {
		t.Fatal("expected trailing data to be rejected")
	}
}

func TestValidateEmptyDocument(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{"participant_names": ["민서"]}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if err := doc.Validate(); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestValidateRejectsCollidingLabels(t *testing.T) {
	doc, err := Decode(strings.NewReader(`{
		"speaker_utterances": {"SPEAKER_00": ["안녕하세요"]},
		"auto_matched": {"SPEAKER_00 ": "민서"}
	}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	err = doc.Validate()
	if !errors.Is(err, ErrLabelCollision) {
		t.Fatalf("expected ErrLabelCollision, got %v", err)
	}
	if !strings.Contains(err.Error(), `"SPEAKER_00 "`) {
		t.Fatalf("error should quote the colliding spelling: %v", err)
	}

	doc, err = Decode(strings.NewReader(`{
		"speaker_utterances": {"SPEAKER_00": ["안녕하세요"], "SPEAKER_01": ["네"]},
		"segments": [{"speaker": "", "text": "음"}, {"speaker": "SPEAKER_01", "text": "네"}]
	}`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("distinct labels should validate, got %v", err)
	}
}

func TestLoadWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meeting.json")
	if err := os.WriteFile(path, []byte(`{"speaker_utterances": `), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error mentioning %q, got %v", path, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
