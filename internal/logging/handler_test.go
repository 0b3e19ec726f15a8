package logging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/olegiv/goblog/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}

func testLogger(db *sql.DB) *slog.Logger {
	inner := slog.NewTextHandler(io.Discard, nil)
	return slog.New(NewEventLogHandler(inner, db))
}

func TestEventLogHandler_WarnForwarded(t *testing.T) {
	db := testDB(t)
	logger := testLogger(db)

	logger.Warn("login failed", "category", "auth", "email", "x@example.com")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.Level != "warning" {
		t.Errorf("level = %q, want warning", e.Level)
	}
	if e.Category != "auth" {
		t.Errorf("category = %q, want auth", e.Category)
	}
	if e.Message != "login failed" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestEventLogHandler_InfoNotForwarded(t *testing.T) {
	db := testDB(t)
	logger := testLogger(db)

	logger.Info("server started")

	events, err := store.New(db).ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("info records should not reach the event log, got %d", len(events))
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	db := testDB(t)
	logger := testLogger(db)

	logger.Error("post not found", "id", 7)

	events, err := store.New(db).ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != "post" {
		t.Errorf("category = %q, want post", events[0].Category)
	}
	if events[0].Level != "error" {
		t.Errorf("level = %q, want error", events[0].Level)
	}
}
