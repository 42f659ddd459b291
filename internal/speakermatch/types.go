package speakermatch

import "sort"

// UnknownName is assigned to speakers no stage could place.
const UnknownName = "Unknown"

// Evidence is one observation that text attributed to Speaker references Name.
type Evidence struct {
	Speaker    string  `json:"speaker"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// NameResult is one speaker attribution inside the grouped
// name_based_results shape produced by the extraction stage.
type NameResult struct {
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
}

// Input bundles everything a resolution run consumes.
type Input struct {
	// Evidence lists name mentions in any order.
	Evidence []Evidence
	// Utterances maps each diarized speaker to what it said. Its keys define
	// the speaker universe together with AutoMatched.
	Utterances map[string][]string
	// Roster lists candidate participant names in preference order.
	Roster []string
	// AutoMatched maps speakers already identified with certainty.
	AutoMatched map[string]string
}

// Entry is the resolved mapping for one speaker.
type Entry struct {
	SpeakerLabel   string  `json:"speaker_label"`
	Name           string  `json:"name"`
	Confidence     float64 `json:"confidence"`
	MatchMethod    Method  `json:"match_method"`
	AutoMatched    bool    `json:"auto_matched"`
	NeedsReview    bool    `json:"needs_review"`
	EvidenceCount  int     `json:"evidence_count,omitempty"`
	UtteranceCount int     `json:"utterance_count,omitempty"`
}

// StageStats summarizes what each stage contributed to a run.
type StageStats struct {
	AggregatedSpeakers   int  `json:"aggregated_speakers"`
	ConflictsDemoted     int  `json:"conflicts_demoted"`
	DuplicateAutoMatches int  `json:"duplicate_auto_matches"`
	ExactElimination     bool `json:"exact_elimination"`
	Embedding            int  `json:"embedding"`
	NameBased            int  `json:"name_based"`
	ScoreBased           int  `json:"score_based"`
	Elimination          int  `json:"elimination"`
	Unknown              int  `json:"unknown"`
}

func (s *StageStats) count(method Method) {
	switch method {
	case MethodEmbedding:
		s.Embedding++
	case MethodNameBased:
		s.NameBased++
	case MethodScoreBased:
		s.ScoreBased++
	case MethodElimination:
		s.Elimination++
	default:
		s.Unknown++
	}
}

// Result is the outcome of a resolution run.
type Result struct {
	Mappings    map[string]Entry `json:"final_mappings"`
	NeedsReview []string         `json:"needs_manual_review"`
	Stages      StageStats       `json:"stages"`
}

// Ordered returns the entries sorted by speaker label.
func (r Result) Ordered() []Entry {
	out := make([]Entry, 0, len(r.Mappings))
	for _, entry := range r.Mappings {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpeakerLabel < out[j].SpeakerLabel })
	return out
}

// Names returns the speaker to name mapping without metadata.
func (r Result) Names() map[string]string {
	out := make(map[string]string, len(r.Mappings))
	for label, entry := range r.Mappings {
		out[label] = entry.Name
	}
	return out
}
