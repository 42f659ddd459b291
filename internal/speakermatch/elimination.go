package speakermatch

import "sort"

// pairing is a speaker assigned a name by elimination.
type pairing struct {
	Speaker    string
	Name       string
	Utterances int
}

// eliminateExact pairs unmapped speakers with unused names when the two sets
// have the same size. Speakers are taken in the given order and each one that
// spoke at least minUtterances times receives the next unused name. A speaker
// below the gate is skipped without consuming a name.
func eliminateExact(unmapped, unused []string, utterances map[string]int, minUtterances int) []pairing {
	if len(unmapped) == 0 || len(unmapped) != len(unused) {
		return nil
	}
	out := make([]pairing, 0, len(unmapped))
	next := 0
	for _, speaker := range unmapped {
		count := utterances[speaker]
		if count < minUtterances {
			continue
		}
		out = append(out, pairing{Speaker: speaker, Name: unused[next], Utterances: count})
		next++
	}
	return out
}

// eliminateRemaining hands out unused names, in order, to speakers that
// passed the utterance gate, most talkative first. Ties keep the input order.
// It stops when either side runs out.
func eliminateRemaining(unmapped, unused []string, utterances map[string]int, minUtterances int) []pairing {
	if len(unmapped) == 0 || len(unused) == 0 {
		return nil
	}
	candidates := make([]pairing, 0, len(unmapped))
	for _, speaker := range unmapped {
		count := utterances[speaker]
		if count < minUtterances {
			continue
		}
		candidates = append(candidates, pairing{Speaker: speaker, Utterances: count})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Utterances > candidates[j].Utterances
	})

	out := make([]pairing, 0, min(len(candidates), len(unused)))
	for idx, candidate := range candidates {
		if idx >= len(unused) {
			break
		}
		candidate.Name = unused[idx]
		out = append(out, candidate)
	}
	return out
}
