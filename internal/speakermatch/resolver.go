package speakermatch

import (
	"log/slog"
	"sort"
	"strings"

	"speakertag/internal/logging"
	"speakertag/internal/textutil"
)

// Resolver runs speaker resolution with a fixed policy.
type Resolver struct {
	policy Policy
	logger *slog.Logger
}

// NewResolver returns a Resolver. Out-of-range policy fields fall back to
// defaults and a nil logger discards output.
func NewResolver(policy Policy, logger *slog.Logger) *Resolver {
	return &Resolver{
		policy: policy.normalized(),
		logger: logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve runs resolution with DefaultPolicy and no logging.
func Resolve(in Input) Result {
	return NewResolver(DefaultPolicy(), nil).Resolve(in)
}

// Policy reports the effective policy.
func (r *Resolver) Policy() Policy {
	return r.policy
}

// Resolve maps every known speaker to exactly one entry. It never fails;
// missing evidence degrades to elimination or Unknown entries.
func (r *Resolver) Resolve(in Input) Result {
	s := newSession(in, r.policy, r.logger)

	s.applyAutoMatches()
	s.applyNameClaims()

	if pairs := eliminateExact(s.unmapped(), s.unused(), s.utterances, s.policy.MinUtterances); len(pairs) > 0 {
		s.stats.ExactElimination = true
		s.applyElimination(pairs, "exact_elimination")
	}

	if unmapped, unused := s.unmapped(), s.unused(); len(unmapped) > 0 && len(unused) > 0 {
		for _, c := range assignByScore(unmapped, unused, s.table, s.policy) {
			s.assign(Entry{
				SpeakerLabel:  c.Speaker,
				Name:          c.Name,
				Confidence:    c.Confidence,
				MatchMethod:   MethodScoreBased,
				EvidenceCount: c.Count,
			}, logging.Float64("score", c.Score))
		}
		s.applyElimination(eliminateRemaining(s.unmapped(), s.unused(), s.utterances, s.policy.MinUtterances), "remaining_elimination")
	}

	s.fillUnknown()
	return s.result()
}

// session is the working state of one Resolve call.
type session struct {
	policy Policy
	logger *slog.Logger

	speakers    []string
	utterances  map[string]int
	roster      []string
	autoMatched map[string]string
	rosterSet   map[string]struct{}
	evidence    []Evidence
	table       evidenceTable

	entries map[string]Entry
	used    map[string]bool
	stats   StageStats
}

func newSession(in Input, policy Policy, logger *slog.Logger) *session {
	s := &session{
		policy:      policy,
		logger:      logger,
		utterances:  make(map[string]int, len(in.Utterances)),
		roster:      rosterNames(in.Roster),
		autoMatched: make(map[string]string, len(in.AutoMatched)),
		entries:     make(map[string]Entry, len(in.Utterances)+len(in.AutoMatched)),
		used:        make(map[string]bool),
		rosterSet:   make(map[string]struct{}),
	}
	for _, name := range s.roster {
		s.rosterSet[name] = struct{}{}
	}

	universe := make(map[string]struct{}, len(in.Utterances)+len(in.AutoMatched))
	for speaker, lines := range in.Utterances {
		universe[speaker] = struct{}{}
		s.utterances[speaker] += len(lines)
	}
	for speaker, name := range in.AutoMatched {
		universe[speaker] = struct{}{}
		s.autoMatched[speaker] = name
	}

	s.speakers = make([]string, 0, len(universe))
	for speaker := range universe {
		s.speakers = append(s.speakers, speaker)
	}
	sort.Strings(s.speakers)
	lookup := newLabelLookup(s.speakers)

	s.evidence = make([]Evidence, 0, len(in.Evidence))
	for _, ev := range in.Evidence {
		speaker, ok := lookup.find(ev.Speaker)
		name := textutil.CanonicalName(ev.Name, s.rosterSet)
		if !ok || speaker == UnknownName || isPlaceholder(name) {
			continue
		}
		s.evidence = append(s.evidence, Evidence{
			Speaker:    speaker,
			Name:       name,
			Confidence: ev.Confidence,
		})
	}
	return s
}

// applyAutoMatches assigns every auto-matched speaker as given. Roster names
// they carry are consumed; a name claimed by two auto-matches is kept for
// both and reported.
func (s *session) applyAutoMatches() {
	owners := make(map[string]string, len(s.autoMatched))
	for _, speaker := range s.speakers {
		name, ok := s.autoMatched[speaker]
		if !ok {
			continue
		}
		s.assign(Entry{
			SpeakerLabel: speaker,
			Name:         name,
			Confidence:   1.0,
			MatchMethod:  MethodEmbedding,
			AutoMatched:  true,
		})

		canonical := textutil.CanonicalName(name, s.rosterSet)
		if isPlaceholder(canonical) {
			continue
		}
		s.used[canonical] = true
		if owner, dup := owners[canonical]; dup {
			s.stats.DuplicateAutoMatches++
			s.logger.Warn("auto-matched name shared by several speakers",
				logging.String(logging.FieldEventType, "duplicate_auto_match"),
				logging.String(logging.FieldSpeaker, speaker),
				logging.String("name", canonical),
				logging.String("first_speaker", owner),
				logging.String(logging.FieldErrorHint, "check the embedding matches for this meeting"),
			)
			continue
		}
		owners[canonical] = speaker
	}
}

func (s *session) applyNameClaims() {
	pending := s.unmapped()
	eligible := make(map[string]struct{}, len(pending))
	for _, speaker := range pending {
		eligible[speaker] = struct{}{}
	}
	s.table = aggregateEvidence(s.evidence, eligible)
	s.stats.AggregatedSpeakers = len(s.table)

	kept, demoted := resolveConflicts(initialClaims(s.table, pending), s.used)
	for _, c := range kept {
		s.assign(Entry{
			SpeakerLabel:  c.Speaker,
			Name:          c.Name,
			Confidence:    c.Confidence,
			MatchMethod:   MethodNameBased,
			EvidenceCount: c.EvidenceCount,
		})
	}
	s.stats.ConflictsDemoted = len(demoted)
	for _, speaker := range demoted {
		s.logger.Debug("name claim demoted",
			logging.String(logging.FieldDecisionType, "conflict"),
			logging.String(logging.FieldSpeaker, speaker),
		)
	}
}

func (s *session) applyElimination(pairs []pairing, reason string) {
	for _, p := range pairs {
		s.assign(Entry{
			SpeakerLabel:   p.Speaker,
			Name:           p.Name,
			Confidence:     s.policy.EliminationConfidence,
			MatchMethod:    MethodElimination,
			UtteranceCount: p.Utterances,
		}, logging.String("reason", reason))
	}
}

func (s *session) fillUnknown() {
	for _, speaker := range s.unmapped() {
		s.assign(Entry{
			SpeakerLabel: speaker,
			Name:         UnknownName,
			MatchMethod:  MethodNone,
		}, logging.Int("utterances", s.utterances[speaker]))
	}
}

// assign records an entry, consumes its name, and derives the review flag.
func (s *session) assign(entry Entry, extra ...logging.Attr) {
	entry.Confidence = clampConfidence(entry.Confidence)
	entry.NeedsReview = needsReview(entry, s.policy)
	s.entries[entry.SpeakerLabel] = entry
	if entry.MatchMethod != MethodNone && !isPlaceholder(entry.Name) {
		s.used[entry.Name] = true
	}
	s.stats.count(entry.MatchMethod)

	attrs := logging.DecisionAttrs(entry.MatchMethod.String(), entry.SpeakerLabel, entry.Name)
	attrs = append(attrs,
		logging.Float64("confidence", entry.Confidence),
		logging.Bool("needs_review", entry.NeedsReview),
	)
	s.logger.Debug("speaker resolved", logging.Args(append(attrs, extra...)...)...)
}

// unmapped lists speakers without an entry, ascending by label.
func (s *session) unmapped() []string {
	out := make([]string, 0, len(s.speakers))
	for _, speaker := range s.speakers {
		if _, ok := s.entries[speaker]; !ok {
			out = append(out, speaker)
		}
	}
	return out
}

// unused lists roster names no entry holds, in roster order.
func (s *session) unused() []string {
	out := make([]string, 0, len(s.roster))
	for _, name := range s.roster {
		if !s.used[name] {
			out = append(out, name)
		}
	}
	return out
}

func (s *session) result() Result {
	review := make([]string, 0, len(s.entries))
	for _, speaker := range s.speakers {
		if s.entries[speaker].NeedsReview {
			review = append(review, speaker)
		}
	}
	s.logger.Info("speaker resolution complete",
		logging.Int("speakers", len(s.speakers)),
		logging.Int("needs_review", len(review)),
		logging.Int("embedding", s.stats.Embedding),
		logging.Int("name_based", s.stats.NameBased),
		logging.Int("score_based", s.stats.ScoreBased),
		logging.Int("elimination", s.stats.Elimination),
		logging.Int("unknown", s.stats.Unknown),
		logging.Int("conflicts_demoted", s.stats.ConflictsDemoted),
	)
	return Result{
		Mappings:    s.entries,
		NeedsReview: review,
		Stages:      s.stats,
	}
}

// isPlaceholder reports names that never occupy a roster slot.
func isPlaceholder(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || name == UnknownName
}

// labelLookup maps evidence speaker labels onto the exact input labels.
// Labels are opaque, so an exact match always wins; a trimmed or NFC form is
// accepted only when it identifies a single input label.
type labelLookup struct {
	exact      map[string]struct{}
	normalized map[string]string
	ambiguous  map[string]bool
}

func newLabelLookup(speakers []string) labelLookup {
	l := labelLookup{
		exact:      make(map[string]struct{}, len(speakers)),
		normalized: make(map[string]string, len(speakers)),
		ambiguous:  make(map[string]bool),
	}
	for _, speaker := range speakers {
		l.exact[speaker] = struct{}{}
		key := textutil.NormalizeLabel(speaker)
		if _, seen := l.normalized[key]; seen {
			l.ambiguous[key] = true
			continue
		}
		l.normalized[key] = speaker
	}
	return l
}

func (l labelLookup) find(label string) (string, bool) {
	if strings.TrimSpace(label) == "" {
		return "", false
	}
	if _, ok := l.exact[label]; ok {
		return label, true
	}
	key := textutil.NormalizeLabel(label)
	if key == "" || l.ambiguous[key] {
		return "", false
	}
	speaker, ok := l.normalized[key]
	return speaker, ok
}

// rosterNames normalizes the roster and drops the Unknown placeholder.
func rosterNames(values []string) []string {
	names := textutil.UniqueNames(values)
	out := names[:0]
	for _, name := range names {
		if name != UnknownName {
			out = append(out, name)
		}
	}
	return out
}
