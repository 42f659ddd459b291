package speakermatch

import (
	"math"
	"testing"
)

func eligibleSet(speakers ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(speakers))
	for _, s := range speakers {
		out[s] = struct{}{}
	}
	return out
}

func TestAggregateEvidenceRanksByCountThenAverage(t *testing.T) {
	evidence := []Evidence{
		{Speaker: "SPEAKER_00", Name: "민서", Confidence: 0.6},
		{Speaker: "SPEAKER_00", Name: "민서", Confidence: 0.6},
		{Speaker: "SPEAKER_00", Name: "지우", Confidence: 0.99},
		{Speaker: "SPEAKER_01", Name: "지우", Confidence: 0.7},
		{Speaker: "SPEAKER_01", Name: "한결", Confidence: 0.9},
	}
	table := aggregateEvidence(evidence, eligibleSet("SPEAKER_00", "SPEAKER_01"))
	claims := initialClaims(table, []string{"SPEAKER_00", "SPEAKER_01"})
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %+v", claims)
	}

	if claims[0].Speaker != "SPEAKER_00" || claims[0].Name != "민서" {
		t.Fatalf("expected mention count to win for SPEAKER_00, got %+v", claims[0])
	}
	if math.Abs(claims[0].Confidence-0.6) > 1e-9 {
		t.Fatalf("expected average confidence 0.6, got %v", claims[0].Confidence)
	}
	if claims[0].EvidenceCount != 3 {
		t.Fatalf("expected evidence count across all names, got %d", claims[0].EvidenceCount)
	}

	if claims[1].Name != "한결" {
		t.Fatalf("expected average confidence to break the count tie, got %+v", claims[1])
	}
}

func TestAggregateEvidenceTieBreaksByName(t *testing.T) {
	evidence := []Evidence{
		{Speaker: "S", Name: "지우", Confidence: 0.8},
		{Speaker: "S", Name: "민서", Confidence: 0.8},
	}
	for i := 0; i < 20; i++ {
		claims := initialClaims(aggregateEvidence(evidence, eligibleSet("S")), []string{"S"})
		if len(claims) != 1 || claims[0].Name != "민서" {
			t.Fatalf("expected lexicographically first name on a full tie, got %+v", claims)
		}
	}
}

func TestAggregateEvidenceSkipsIneligibleAndClamps(t *testing.T) {
	evidence := []Evidence{
		{Speaker: "SPEAKER_00", Name: "민서", Confidence: 1.7},
		{Speaker: "SPEAKER_00", Name: "민서", Confidence: math.NaN()},
		{Speaker: "SPEAKER_09", Name: "지우", Confidence: 0.9},
		{Speaker: "SPEAKER_00", Name: "", Confidence: 0.9},
	}
	table := aggregateEvidence(evidence, eligibleSet("SPEAKER_00"))
	if _, ok := table["SPEAKER_09"]; ok {
		t.Fatal("expected evidence for speakers outside the eligible set to be dropped")
	}
	claims := initialClaims(table, []string{"SPEAKER_00", "SPEAKER_01"})
	if len(claims) != 1 {
		t.Fatalf("expected speakers without evidence to produce no claim, got %+v", claims)
	}
	if claims[0].Confidence != 0.5 {
		t.Fatalf("expected clamped average 0.5, got %v", claims[0].Confidence)
	}
	if claims[0].EvidenceCount != 2 {
		t.Fatalf("expected empty names to be ignored, got evidence count %d", claims[0].EvidenceCount)
	}
}

func TestSpeakerEvidenceBestHonorsFilter(t *testing.T) {
	table := aggregateEvidence([]Evidence{
		{Speaker: "S", Name: "민서", Confidence: 0.9},
		{Speaker: "S", Name: "민서", Confidence: 0.9},
		{Speaker: "S", Name: "지우", Confidence: 0.4},
	}, eligibleSet("S"))

	name, tally, ok := table["S"].best(func(n string) bool { return n != "민서" })
	if !ok || name != "지우" || tally.count != 1 {
		t.Fatalf("expected filtered best to be 지우, got %q %+v %v", name, tally, ok)
	}
	if _, _, ok := table["S"].best(func(string) bool { return false }); ok {
		t.Fatal("expected no candidate when filter rejects everything")
	}
	var missing *speakerEvidence
	if _, _, ok := missing.best(nil); ok {
		t.Fatal("expected nil evidence to have no best name")
	}
}
