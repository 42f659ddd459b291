package store_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"speakertag/internal/speakermatch"
	"speakertag/internal/store"
	"speakertag/internal/testsupport"
)

func sampleResult() speakermatch.Result {
	return speakermatch.Result{
		Mappings: map[string]speakermatch.Entry{
			"SPEAKER_00": {SpeakerLabel: "SPEAKER_00", Name: "김철수", Confidence: 0.9, MatchMethod: speakermatch.MethodNameBased, EvidenceCount: 2, UtteranceCount: 5},
			"SPEAKER_01": {SpeakerLabel: "SPEAKER_01", Name: "이영희", Confidence: 0.5, MatchMethod: speakermatch.MethodElimination, NeedsReview: true, UtteranceCount: 4},
			"SPEAKER_02": {SpeakerLabel: "SPEAKER_02", Name: speakermatch.UnknownName, MatchMethod: speakermatch.MethodNone, NeedsReview: true},
			"SPEAKER_03": {SpeakerLabel: "SPEAKER_03", Name: "박민수", Confidence: 1, MatchMethod: speakermatch.MethodEmbedding, AutoMatched: true},
		},
		NeedsReview: []string{"SPEAKER_01", "SPEAKER_02"},
	}
}

func TestSaveRunPersistsMappings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := testsupport.SaveRun(t, st, "meeting-1", sampleResult())
	if run.ID == "" {
		t.Fatal("expected run id")
	}
	if run.SpeakerCount != 4 || run.ReviewCount != 2 {
		t.Fatalf("unexpected counts: speakers=%d review=%d", run.SpeakerCount, run.ReviewCount)
	}

	got, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.MeetingID != "meeting-1" || got.SpeakerCount != 4 || got.ReviewCount != 2 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", got.CreatedAt, run.CreatedAt)
	}

	mappings, err := st.Mappings(ctx, run.ID)
	if err != nil {
		t.Fatalf("Mappings: %v", err)
	}
	if len(mappings) != 4 {
		t.Fatalf("expected 4 mappings, got %d", len(mappings))
	}
	wantOrder := []string{"SPEAKER_00", "SPEAKER_01", "SPEAKER_02", "SPEAKER_03"}
	for i, m := range mappings {
		if m.SpeakerLabel != wantOrder[i] {
			t.Fatalf("mapping %d label = %s, want %s", i, m.SpeakerLabel, wantOrder[i])
		}
		if m.IsModified {
			t.Fatalf("fresh mapping %s marked modified", m.SpeakerLabel)
		}
	}

	first := mappings[0]
	if first.SuggestedName != "김철수" || first.FinalName != "김철수" {
		t.Fatalf("unexpected names: %+v", first)
	}
	if first.MatchMethod != speakermatch.MethodNameBased || first.EvidenceCount != 2 || first.UtteranceCount != 5 {
		t.Fatalf("unexpected metadata: %+v", first)
	}
	if !mappings[1].NeedsReview || mappings[1].MatchMethod != speakermatch.MethodElimination {
		t.Fatalf("unexpected elimination mapping: %+v", mappings[1])
	}
	unknown := mappings[2]
	if unknown.SuggestedName != "" || unknown.FinalName != speakermatch.UnknownName {
		t.Fatalf("unknown mapping should have no suggestion: %+v", unknown)
	}
	if !mappings[3].AutoMatched || mappings[3].MatchMethod != speakermatch.MethodEmbedding {
		t.Fatalf("unexpected embedding mapping: %+v", mappings[3])
	}
}

func TestGetRunNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if _, err := st.GetRun(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.Mappings(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for mappings, got %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	st.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	var ids []string
	for _, meeting := range []string{"a", "b", "c"} {
		ids = append(ids, testsupport.SaveRun(t, st, meeting, sampleResult()).ID)
	}

	runs, err := st.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, run := range runs {
		if run.ID != ids[len(ids)-1-i] {
			t.Fatalf("run %d = %s, want %s", i, run.ID, ids[len(ids)-1-i])
		}
	}

	limited, err := st.ListRuns(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(limited) != 2 || limited[0].MeetingID != "c" {
		t.Fatalf("unexpected limited runs: %+v", limited)
	}
}

func TestConfirmName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	run := testsupport.SaveRun(t, st, "meeting-1", sampleResult())

	tests := []struct {
		name         string
		speaker      string
		finalName    string
		wantModified bool
		wantReview   int
	}{
		{name: "accept suggestion", speaker: "SPEAKER_01", finalName: "이영희", wantModified: false, wantReview: 1},
		{name: "correct unknown", speaker: "SPEAKER_02", finalName: "최지은", wantModified: true, wantReview: 0},
		{name: "override confident mapping", speaker: "SPEAKER_00", finalName: "  김영수 ", wantModified: true, wantReview: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := st.ConfirmName(ctx, run.ID, tt.speaker, tt.finalName)
			if err != nil {
				t.Fatalf("ConfirmName: %v", err)
			}
			if m.IsModified != tt.wantModified {
				t.Fatalf("is_modified = %v, want %v", m.IsModified, tt.wantModified)
			}
			if m.NeedsReview {
				t.Fatal("confirmed mapping still needs review")
			}
			if m.UpdatedAt.IsZero() {
				t.Fatal("expected updated_at")
			}
			got, err := st.GetRun(ctx, run.ID)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if got.ReviewCount != tt.wantReview {
				t.Fatalf("review_count = %d, want %d", got.ReviewCount, tt.wantReview)
			}
		})
	}

	mappings, err := st.Mappings(ctx, run.ID)
	if err != nil {
		t.Fatalf("Mappings: %v", err)
	}
	if mappings[0].FinalName != "김영수" || mappings[0].SuggestedName != "김철수" {
		t.Fatalf("suggestion should survive override: %+v", mappings[0])
	}
}

func TestConfirmNameErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	run := testsupport.SaveRun(t, st, "", sampleResult())

	if _, err := st.ConfirmName(ctx, run.ID, "SPEAKER_99", "누군가"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown speaker, got %v", err)
	}
	if _, err := st.ConfirmName(ctx, "missing", "SPEAKER_00", "누군가"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown run, got %v", err)
	}
	if _, err := st.ConfirmName(ctx, run.ID, "SPEAKER_00", "   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestWritesFailWhileLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	st.SetLockWait(100 * time.Millisecond)

	holder := flock.New(cfg.Paths.Database + ".lock")
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("acquire external lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() {
		_ = holder.Unlock()
	})

	if _, err := st.SaveRun(context.Background(), "m", sampleResult()); !errors.Is(err, store.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := st.SaveRun(context.Background(), "m", sampleResult()); err != nil {
		t.Fatalf("SaveRun after unlock: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run, err := st.SaveRun(context.Background(), "m", sampleResult())
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Path() != path {
		t.Fatalf("Path() = %s, want %s", reopened.Path(), path)
	}
	if _, err := reopened.GetRun(context.Background(), run.ID); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := store.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSchemaVersionReportsLatest(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	version, err := st.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != "001_initial" {
		t.Fatalf("SchemaVersion = %q, want 001_initial", version)
	}
}

func TestOpenRefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES ('999_future')"); err != nil {
		t.Fatalf("insert future version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close raw db: %v", err)
	}

	if _, err := store.Open(path); !errors.Is(err, store.ErrSchemaTooNew) {
		t.Fatalf("expected ErrSchemaTooNew, got %v", err)
	}
}
