package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func createSession(t *testing.T, repo *SessionRepository, id string, started time.Time) *Session {
	t.Helper()

	sess := &Session{
		ID:           id,
		Mode:         "gaze",
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		StartedAt:    started,
	}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session %s: %v", id, err)
	}
	return sess
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{ID: "s-1", Mode: "head", ScreenWidth: 2560, ScreenHeight: 1440}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set after create")
	}

	got, err := repo.GetByID("s-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Mode != "head" || got.ScreenWidth != 2560 || got.ScreenHeight != 1440 {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.EndedAt != nil {
		t.Errorf("EndedAt = %v, want nil for a running session", got.EndedAt)
	}
}

func TestSessionRepository_Create_RejectsUnknownMode(t *testing.T) {
	s := newTestStore(t)

	err := s.Sessions().Create(&Session{ID: "bad", Mode: "blink"})
	if err == nil {
		t.Error("expected constraint error for unknown mode")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Sessions().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createSession(t, repo, "old", base)
	createSession(t, repo, "mid", base.Add(time.Minute))
	createSession(t, repo, "new", base.Add(2*time.Minute))

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"new", "mid", "old"}},
		{"limited", 2, []string{"new", "mid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, err := repo.List(tt.limit)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var ids []string
			for _, sess := range sessions {
				ids = append(ids, sess.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("List() ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSessionRepository_CountersAndFinish(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()
	createSession(t, repo, "s-1", time.Now())

	if err := repo.UpdateCounters("s-1", Counters{Frames: 10, FaceFrames: 8, SignalFrames: 6}); err != nil {
		t.Fatalf("UpdateCounters() error = %v", err)
	}

	ended := time.Now().Add(time.Minute)
	if err := repo.Finish("s-1", Counters{Frames: 20, FaceFrames: 15, SignalFrames: 12}, ended); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	got, err := repo.GetByID("s-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Frames != 20 || got.FaceFrames != 15 || got.SignalFrames != 12 {
		t.Errorf("counters = %d/%d/%d, want 20/15/12", got.Frames, got.FaceFrames, got.SignalFrames)
	}
	if got.EndedAt == nil || !got.EndedAt.Equal(ended) {
		t.Errorf("EndedAt = %v, want %v", got.EndedAt, ended)
	}

	if err := repo.UpdateCounters("missing", Counters{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateCounters(missing) error = %v, want ErrNotFound", err)
	}
	if err := repo.Finish("missing", Counters{}, ended); !errors.Is(err, ErrNotFound) {
		t.Errorf("Finish(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_Delete_CascadesSamples(t *testing.T) {
	s := newTestStore(t)
	createSession(t, s.Sessions(), "s-1", time.Now())

	samples := []CursorSample{
		{Sequence: 0, X: 960, Y: 540, Valid: true, TimestampMs: 1},
		{Sequence: 1, X: 1440, Y: 540, Valid: true, TimestampMs: 2},
	}
	if err := s.Samples().Append("s-1", samples); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := s.Sessions().Delete("s-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	n, err := s.Samples().CountBySession("s-1")
	if err != nil {
		t.Fatalf("CountBySession() error = %v", err)
	}
	if n != 0 {
		t.Errorf("samples left after delete = %d, want 0", n)
	}

	if err := s.Sessions().Delete("s-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSampleRepository_AppendAndList(t *testing.T) {
	s := newTestStore(t)
	createSession(t, s.Sessions(), "s-1", time.Now())
	repo := s.Samples()

	if err := repo.Append("s-1", nil); err != nil {
		t.Fatalf("Append(nil) error = %v", err)
	}

	first := []CursorSample{
		{Sequence: 1, X: 1440, Y: 540, Valid: true, TimestampMs: 33},
		{Sequence: 0, X: 960, Y: 540, Valid: false, TimestampMs: 0},
	}
	second := []CursorSample{
		{Sequence: 2, X: 1680, Y: 540, Valid: true, TimestampMs: 66},
	}
	if err := repo.Append("s-1", first); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := repo.Append("s-1", second); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := repo.ListBySession("s-1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}

	want := []CursorSample{
		{SessionID: "s-1", Sequence: 0, X: 960, Y: 540, Valid: false, TimestampMs: 0},
		{SessionID: "s-1", Sequence: 1, X: 1440, Y: 540, Valid: true, TimestampMs: 33},
		{SessionID: "s-1", Sequence: 2, X: 1680, Y: 540, Valid: true, TimestampMs: 66},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListBySession() mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleRepository_Append_UnknownSession(t *testing.T) {
	s := newTestStore(t)

	err := s.Samples().Append("missing", []CursorSample{{Sequence: 0}})
	if err == nil {
		t.Error("expected foreign key error for unknown session")
	}
}
