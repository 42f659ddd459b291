package speakermatch

import "sort"

// scoredCandidate is a speaker's best remaining name in the fallback pass.
type scoredCandidate struct {
	Speaker    string
	Name       string
	Confidence float64
	Count      int
	Score      float64
}

// assignByScore re-ranks the evidence of each unmapped speaker against the
// unused names only, then assigns greedily by blended score. A speaker whose
// best name was already taken by a higher score is left unmapped. Equal
// scores keep the input order.
func assignByScore(unmapped, unused []string, table evidenceTable, policy Policy) []scoredCandidate {
	if len(unmapped) == 0 || len(unused) == 0 {
		return nil
	}
	available := make(map[string]bool, len(unused))
	for _, name := range unused {
		available[name] = true
	}
	allow := func(name string) bool { return available[name] }

	candidates := make([]scoredCandidate, 0, len(unmapped))
	for _, speaker := range unmapped {
		name, tally, ok := table[speaker].best(allow)
		if !ok {
			continue
		}
		average := tally.average()
		candidates = append(candidates, scoredCandidate{
			Speaker:    speaker,
			Name:       name,
			Confidence: average,
			Count:      tally.count,
			Score:      policy.score(tally.count, average),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	taken := make(map[string]bool, len(candidates))
	out := make([]scoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if taken[candidate.Name] {
			continue
		}
		taken[candidate.Name] = true
		out = append(out, candidate)
	}
	return out
}
