package store

import (
	"time"

	"speakertag/internal/speakermatch"
)

// Run is one persisted resolver invocation.
type Run struct {
	ID           string    `json:"id"`
	MeetingID    string    `json:"meeting_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	SpeakerCount int       `json:"speaker_count"`
	ReviewCount  int       `json:"review_count"`
}

// Mapping is a stored speaker assignment. SuggestedName is what the resolver
// proposed; FinalName starts equal to it and changes on confirmation.
type Mapping struct {
	RunID          string              `json:"run_id"`
	SpeakerLabel   string              `json:"speaker_label"`
	SuggestedName  string              `json:"suggested_name,omitempty"`
	FinalName      string              `json:"final_name"`
	Confidence     float64             `json:"confidence"`
	MatchMethod    speakermatch.Method `json:"match_method"`
	AutoMatched    bool                `json:"auto_matched"`
	NeedsReview    bool                `json:"needs_review"`
	EvidenceCount  int                 `json:"evidence_count"`
	UtteranceCount int                 `json:"utterance_count"`
	IsModified     bool                `json:"is_modified"`
	UpdatedAt      time.Time           `json:"updated_at,omitzero"`
}
