package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"speakertag/internal/speakermatch"
)

var (
	// ErrNotFound reports a run or mapping that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLocked reports that another process holds the write lock.
	ErrLocked = errors.New("store is locked by another process")
)

const (
	lockRetryDelay  = 50 * time.Millisecond
	defaultLockWait = 5 * time.Second

	// timestampLayout keeps a fixed width so stored values sort as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages resolution run persistence backed by SQLite.
type Store struct {
	db       *sql.DB
	path     string
	lock     *flock.Flock
	lockWait time.Duration
	now      func() time.Time
}

// Open initializes or connects to the database at path and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{
		db:       db,
		path:     path,
		lock:     flock.New(path + ".lock"),
		lockWait: defaultLockWait,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if err := s.withWriteLock(context.Background(), s.upgradeSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withWriteLock runs fn while holding the lock file beside the database.
func (s *Store) withWriteLock(ctx context.Context, fn func(context.Context) error) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	ok, err := s.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, s.lock.Path())
	}
	defer func() {
		_ = s.lock.Unlock()
	}()
	return fn(ctx)
}

// SaveRun persists a resolver result as a new run.
func (s *Store) SaveRun(ctx context.Context, meetingID string, result speakermatch.Result) (*Run, error) {
	run := &Run{
		ID:           uuid.NewString(),
		MeetingID:    strings.TrimSpace(meetingID),
		CreatedAt:    s.now(),
		SpeakerCount: len(result.Mappings),
	}
	for _, entry := range result.Mappings {
		if entry.NeedsReview {
			run.ReviewCount++
		}
	}

	err := s.withWriteLock(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		timestamp := run.CreatedAt.Format(timestampLayout)
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO runs (id, meeting_id, created_at, speaker_count, review_count)
             VALUES (?, ?, ?, ?, ?)`,
			run.ID,
			nullableString(run.MeetingID),
			timestamp,
			run.SpeakerCount,
			run.ReviewCount,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, entry := range result.Ordered() {
			suggested := entry.Name
			if entry.MatchMethod == speakermatch.MethodNone {
				suggested = ""
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO speaker_mappings (
                    run_id, speaker_label, suggested_name, final_name, confidence,
                    match_method, auto_matched, needs_review, evidence_count,
                    utterance_count, is_modified, updated_at
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
				run.ID,
				entry.SpeakerLabel,
				nullableString(suggested),
				entry.Name,
				entry.Confidence,
				entry.MatchMethod.String(),
				boolToInt(entry.AutoMatched),
				boolToInt(entry.NeedsReview),
				entry.EvidenceCount,
				entry.UtteranceCount,
				timestamp,
			); err != nil {
				return fmt.Errorf("insert mapping %s: %w", entry.SpeakerLabel, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun fetches a run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, meeting_id, created_at, speaker_count, review_count FROM runs WHERE id = ?`,
		strings.TrimSpace(id),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, meeting_id, created_at, speaker_count, review_count
              FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Mappings returns the speaker mappings of a run ordered by speaker label.
func (s *Store) Mappings(ctx context.Context, runID string) ([]*Mapping, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+mappingColumns+` FROM speaker_mappings WHERE run_id = ? ORDER BY speaker_label`,
		strings.TrimSpace(runID),
	)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappings: %w", err)
	}
	return mappings, nil
}

// ConfirmName records a reviewer's final name for a speaker. The suggested
// name is left untouched; the mapping is marked modified when the final name
// differs from the suggestion and no longer needs review.
func (s *Store) ConfirmName(ctx context.Context, runID, speaker, finalName string) (*Mapping, error) {
	runID = strings.TrimSpace(runID)
	speaker = strings.TrimSpace(speaker)
	finalName = strings.TrimSpace(finalName)
	if finalName == "" {
		return nil, errors.New("final name is required")
	}

	var updated *Mapping
	err := s.withWriteLock(ctx, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin confirm tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		timestamp := s.now().Format(timestampLayout)
		res, err := tx.ExecContext(
			ctx,
			`UPDATE speaker_mappings
             SET final_name = ?,
                 is_modified = CASE WHEN COALESCE(suggested_name, '') = ? THEN 0 ELSE 1 END,
                 needs_review = 0,
                 updated_at = ?
             WHERE run_id = ? AND speaker_label = ?`,
			finalName,
			finalName,
			timestamp,
			runID,
			speaker,
		)
		if err != nil {
			return fmt.Errorf("update mapping: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("mapping %s/%s: %w", runID, speaker, ErrNotFound)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE runs SET review_count = (
                SELECT COUNT(1) FROM speaker_mappings WHERE run_id = ? AND needs_review = 1
             ) WHERE id = ?`,
			runID,
			runID,
		); err != nil {
			return fmt.Errorf("update review count: %w", err)
		}

		row := tx.QueryRowContext(
			ctx,
			`SELECT `+mappingColumns+` FROM speaker_mappings WHERE run_id = ? AND speaker_label = ?`,
			runID,
			speaker,
		)
		updated, err = scanMapping(row)
		if err != nil {
			return fmt.Errorf("reload mapping: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
