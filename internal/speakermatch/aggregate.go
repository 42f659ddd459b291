package speakermatch

import (
	"math"
	"sort"
)

type nameTally struct {
	count int
	total float64
}

func (t nameTally) average() float64 {
	if t.count == 0 {
		return 0
	}
	return t.total / float64(t.count)
}

// better ranks by mention count, then by average confidence.
func (t nameTally) better(other nameTally) bool {
	if t.count != other.count {
		return t.count > other.count
	}
	return t.average() > other.average()
}

// speakerEvidence holds the per-name tallies for one speaker.
type speakerEvidence struct {
	mentions int
	names    map[string]*nameTally
}

// best returns the strongest name accepted by allow. Equal tallies resolve to
// the lexicographically smaller name so the choice does not depend on map order.
func (e *speakerEvidence) best(allow func(name string) bool) (string, nameTally, bool) {
	if e == nil {
		return "", nameTally{}, false
	}
	names := make([]string, 0, len(e.names))
	for name := range e.names {
		if allow == nil || allow(name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", nameTally{}, false
	}
	sort.Strings(names)
	bestName := names[0]
	bestTally := *e.names[bestName]
	for _, name := range names[1:] {
		tally := *e.names[name]
		if tally.better(bestTally) {
			bestName, bestTally = name, tally
		}
	}
	return bestName, bestTally, true
}

// evidenceTable is built per run and discarded with it.
type evidenceTable map[string]*speakerEvidence

// aggregateEvidence tallies mentions for every speaker in eligible. Evidence
// naming other speakers is dropped.
func aggregateEvidence(evidence []Evidence, eligible map[string]struct{}) evidenceTable {
	table := make(evidenceTable)
	for _, ev := range evidence {
		if _, ok := eligible[ev.Speaker]; !ok || ev.Name == "" {
			continue
		}
		entry := table[ev.Speaker]
		if entry == nil {
			entry = &speakerEvidence{names: make(map[string]*nameTally)}
			table[ev.Speaker] = entry
		}
		tally := entry.names[ev.Name]
		if tally == nil {
			tally = &nameTally{}
			entry.names[ev.Name] = tally
		}
		tally.count++
		tally.total += clampConfidence(ev.Confidence)
		entry.mentions++
	}
	return table
}

// claim is a speaker's best name before conflicts are settled.
type claim struct {
	Speaker       string
	Name          string
	Confidence    float64
	EvidenceCount int
}

// initialClaims picks each speaker's best name, ordered by speaker label.
// Speakers without evidence produce no claim.
func initialClaims(table evidenceTable, speakers []string) []claim {
	claims := make([]claim, 0, len(table))
	for _, speaker := range speakers {
		entry := table[speaker]
		name, tally, ok := entry.best(nil)
		if !ok {
			continue
		}
		claims = append(claims, claim{
			Speaker:       speaker,
			Name:          name,
			Confidence:    tally.average(),
			EvidenceCount: entry.mentions,
		})
	}
	return claims
}

func clampConfidence(value float64) float64 {
	switch {
	case math.IsNaN(value) || value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}
