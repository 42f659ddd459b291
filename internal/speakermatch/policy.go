package speakermatch

// Policy centralizes resolution thresholds.
type Policy struct {
	// ReviewThreshold is the confidence below which an entry needs review.
	ReviewThreshold float64
	// MinUtterances is the utterance count a speaker needs before it can be
	// assigned by elimination.
	MinUtterances int
	// EliminationConfidence is the confidence given to elimination matches.
	EliminationConfidence float64
	// CountWeight and ConfidenceWeight blend mention count and average
	// confidence into the fallback score.
	CountWeight      float64
	ConfidenceWeight float64
}

// DefaultPolicy returns the thresholds used by the tagging pipeline.
func DefaultPolicy() Policy {
	return Policy{
		ReviewThreshold:       0.70,
		MinUtterances:         3,
		EliminationConfidence: 0.50,
		CountWeight:           0.5,
		ConfidenceWeight:      0.5,
	}
}

func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if p.ReviewThreshold <= 0 || p.ReviewThreshold > 1 {
		p.ReviewThreshold = d.ReviewThreshold
	}
	if p.MinUtterances <= 0 {
		p.MinUtterances = d.MinUtterances
	}
	if p.EliminationConfidence <= 0 || p.EliminationConfidence > 1 {
		p.EliminationConfidence = d.EliminationConfidence
	}
	if p.CountWeight < 0 || p.ConfidenceWeight < 0 || p.CountWeight+p.ConfidenceWeight == 0 {
		p.CountWeight = d.CountWeight
		p.ConfidenceWeight = d.ConfidenceWeight
	}

	return p
}

// Normalized returns p with out-of-range fields replaced by defaults.
func (p Policy) Normalized() Policy {
	return p.normalized()
}

func (p Policy) score(count int, average float64) float64 {
	return p.CountWeight*float64(count) + p.ConfidenceWeight*average
}
