package speakermatch

// resolveConflicts keeps one claim per name. The winner has the highest
// confidence, then the most evidence, then the smallest label. Claims on a
// name in taken lose outright. Losing speakers are returned in label order
// and their claims are discarded.
func resolveConflicts(claims []claim, taken map[string]bool) ([]claim, []string) {
	winners := make(map[string]int, len(claims))
	for idx, c := range claims {
		if taken[c.Name] {
			continue
		}
		current, ok := winners[c.Name]
		if !ok || c.outranks(claims[current]) {
			winners[c.Name] = idx
		}
	}

	kept := make([]claim, 0, len(winners))
	var demoted []string
	for idx, c := range claims {
		if winner, ok := winners[c.Name]; ok && winner == idx {
			kept = append(kept, c)
			continue
		}
		demoted = append(demoted, c.Speaker)
	}
	return kept, demoted
}

func (c claim) outranks(other claim) bool {
	if c.Confidence != other.Confidence {
		return c.Confidence > other.Confidence
	}
	if c.EvidenceCount != other.EvidenceCount {
		return c.EvidenceCount > other.EvidenceCount
	}
	return c.Speaker < other.Speaker
}
