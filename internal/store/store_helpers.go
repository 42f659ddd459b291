package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"speakertag/internal/speakermatch"
)

const mappingColumns = `run_id, speaker_label, suggested_name, final_name, confidence,
    match_method, auto_matched, needs_review, evidence_count, utterance_count,
    is_modified, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var (
		run       Run
		meetingID sql.NullString
		createdAt string
	)
	if err := scanner.Scan(&run.ID, &meetingID, &createdAt, &run.SpeakerCount, &run.ReviewCount); err != nil {
		return nil, err
	}
	if meetingID.Valid {
		run.MeetingID = meetingID.String
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, err
	}
	run.CreatedAt = ts
	return &run, nil
}

func scanMapping(scanner rowScanner) (*Mapping, error) {
	var (
		m           Mapping
		suggested   sql.NullString
		method      string
		autoMatched int
		needsReview int
		isModified  int
		updatedAt   sql.NullString
	)
	if err := scanner.Scan(
		&m.RunID,
		&m.SpeakerLabel,
		&suggested,
		&m.FinalName,
		&m.Confidence,
		&method,
		&autoMatched,
		&needsReview,
		&m.EvidenceCount,
		&m.UtteranceCount,
		&isModified,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if suggested.Valid {
		m.SuggestedName = suggested.String
	}
	parsed, err := speakermatch.ParseMethod(method)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", m.SpeakerLabel, err)
	}
	m.MatchMethod = parsed
	m.AutoMatched = autoMatched != 0
	m.NeedsReview = needsReview != 0
	m.IsModified = isModified != 0
	if updatedAt.Valid && updatedAt.String != "" {
		ts, err := parseTimestamp(updatedAt.String)
		if err != nil {
			return nil, err
		}
		m.UpdatedAt = ts
	}
	return &m, nil
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
