package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "headgaze.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file missing after New(): %v", err)
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNew_BadDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "headgaze.db")); err == nil {
		t.Error("expected error for a database in a missing directory")
	}
}

func TestMigrations_Schema(t *testing.T) {
	s := newTestStore(t)

	objects := []struct {
		kind string
		name string
	}{
		{"table", "sessions"},
		{"table", "cursor_samples"},
		{"index", "idx_cursor_samples_session_id"},
		{"index", "idx_sessions_started_at"},
	}

	for _, o := range objects {
		t.Run(o.name, func(t *testing.T) {
			var name string
			err := s.DB().QueryRow(
				"SELECT name FROM sqlite_master WHERE type = ? AND name = ?", o.kind, o.name,
			).Scan(&name)
			if err != nil {
				t.Errorf("%s %q not created: %v", o.kind, o.name, err)
			}
		})
	}
}

func TestMigrations_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "headgaze.db")

	first, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Sessions().Create(&Session{ID: "kept", Mode: "gaze"}); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopening an existing database: %v", err)
	}
	defer second.Close()

	if _, err := second.Sessions().GetByID("kept"); err != nil {
		t.Errorf("session lost across reopen: %v", err)
	}
}

func TestStore_Pragmas(t *testing.T) {
	s := newTestStore(t)

	// Hold one connection so the next query is served by a fresh one.
	s.DB().SetMaxOpenConns(2)
	tx, err := s.DB().Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()

	pragmas := map[string]int{"foreign_keys": 1, "busy_timeout": 5000}
	for pragma, want := range pragmas {
		var got int
		if err := s.DB().QueryRow("PRAGMA " + pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", pragma, err)
		}
		if got != want {
			t.Errorf("PRAGMA %s = %d, want %d", pragma, got, want)
		}
	}
}

func TestStore_CloseReleasesDB(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "headgaze.db"))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("queries should fail after Close()")
	}
}
