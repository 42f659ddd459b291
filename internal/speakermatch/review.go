package speakermatch

// needsReview flags entries a human should confirm: anything below the review
// threshold and every elimination or unmatched entry.
func needsReview(entry Entry, policy Policy) bool {
	switch entry.MatchMethod {
	case MethodElimination, MethodNone:
		return true
	default:
		return entry.Confidence < policy.ReviewThreshold
	}
}
