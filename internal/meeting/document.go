package meeting

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"speakertag/internal/speakermatch"
	"speakertag/internal/textutil"
)

var (
	// ErrEmptyDocument is returned when a document has no speakers at all.
	ErrEmptyDocument = errors.New("document lists no speakers")
	// ErrLabelCollision is returned when two distinct speaker labels differ
	// only in spacing or Unicode normalization.
	ErrLabelCollision = errors.New("speaker labels collide")
)

// Segment is a diarized, transcribed time span.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text,omitempty"`
}

// Document is the JSON evidence bundle for one meeting.
type Document struct {
	MeetingID         string                               `json:"meeting_id,omitempty"`
	AutoMatched       map[string]string                    `json:"auto_matched,omitempty"`
	NameBasedResults  map[string][]speakermatch.NameResult `json:"name_based_results,omitempty"`
	Evidence          []speakermatch.Evidence              `json:"evidence,omitempty"`
	SpeakerUtterances map[string][]string                  `json:"speaker_utterances,omitempty"`
	Segments          []Segment                            `json:"segments,omitempty"`
	ParticipantNames  []string                             `json:"participant_names,omitempty"`
}

// Load reads a document from path. "-" reads stdin.
func Load(path string) (*Document, error) {
	if strings.TrimSpace(path) == "-" {
		return Decode(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()
	doc, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a single JSON document and rejects unknown fields.
func Decode(r io.Reader) (*Document, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if decoder.More() {
		return nil, errors.New("decode document: trailing data after JSON object")
	}
	return &doc, nil
}

// Validate reports documents that cannot name a single speaker.
func (d *Document) Validate() error {
	if len(d.SpeakerUtterances) == 0 && len(d.Segments) == 0 && len(d.AutoMatched) == 0 {
		return ErrEmptyDocument
	}
	return d.checkLabels()
}

// checkLabels rejects label spellings that would be read as one speaker by a
// person but are distinct keys to the resolver.
func (d *Document) checkLabels() error {
	spellings := make(map[string]map[string]struct{})
	add := func(label string) {
		if strings.TrimSpace(label) == "" {
			return
		}
		key := textutil.NormalizeLabel(label)
		if spellings[key] == nil {
			spellings[key] = make(map[string]struct{})
		}
		spellings[key][label] = struct{}{}
	}
	for label := range d.SpeakerUtterances {
		add(label)
	}
	for label := range d.AutoMatched {
		add(label)
	}
	for _, seg := range d.Segments {
		add(seg.Speaker)
	}

	keys := make([]string, 0, len(spellings))
	for key, variants := range spellings {
		if len(variants) > 1 {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	variants := make([]string, 0, len(spellings[keys[0]]))
	for label := range spellings[keys[0]] {
		variants = append(variants, strconv.Quote(label))
	}
	sort.Strings(variants)
	return fmt.Errorf("%w: %s", ErrLabelCollision, strings.Join(variants, ", "))
}

// Utterances merges speaker_utterances with segment text. Segment lines are
// appended per speaker in start time order; segments without text still
// register the speaker.
func (d *Document) Utterances() map[string][]string {
	out := make(map[string][]string, len(d.SpeakerUtterances))
	for speaker, lines := range d.SpeakerUtterances {
		out[speaker] = append([]string(nil), lines...)
	}

	segments := append([]Segment(nil), d.Segments...)
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	for _, seg := range segments {
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			continue
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			if _, ok := out[speaker]; !ok {
				out[speaker] = nil
			}
			continue
		}
		out[speaker] = append(out[speaker], text)
	}
	return out
}

// Input converts the document for the resolver. Grouped and flat evidence
// are concatenated.
func (d *Document) Input() speakermatch.Input {
	evidence := speakermatch.FromNameResults(d.NameBasedResults)
	evidence = append(evidence, d.Evidence...)
	return speakermatch.Input{
		Evidence:    evidence,
		Utterances:  d.Utterances(),
		Roster:      append([]string(nil), d.ParticipantNames...),
		AutoMatched: d.AutoMatched,
	}
}
