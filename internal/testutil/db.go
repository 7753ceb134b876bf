package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mandrade85ma-cloud/site/internal/db"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// InsertProfile stores a profile; an empty name is stored as NULL.
func InsertProfile(t *testing.T, database *db.DB, id, name string) {
	t.Helper()

	var nameValue any
	if name != "" {
		nameValue = name
	}
	if _, err := database.ExecContext(context.Background(),
		"INSERT INTO profiles (id, name) VALUES (?, ?)",
		id,
		nameValue,
	); err != nil {
		t.Fatalf("insert profile %s: %v", id, err)
	}
}

func InsertEvent(t *testing.T, database *db.DB, id, createdBy string, teamsEnabled bool) {
	t.Helper()

	if _, err := database.ExecContext(context.Background(),
		"INSERT INTO events (id, created_by, title, needed_players, teams_enabled) VALUES (?, ?, ?, ?, ?)",
		id,
		createdBy,
		"Futebol de quinta",
		10,
		teamsEnabled,
	); err != nil {
		t.Fatalf("insert event %s: %v", id, err)
	}
}

// InsertRSVP records an RSVP at a fixed offset from a base time so roster order is deterministic.
func InsertRSVP(t *testing.T, database *db.DB, eventID, userID, rsvp string, order int) {
	t.Helper()

	createdAt := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC).Add(time.Duration(order) * time.Minute)
	if _, err := database.ExecContext(context.Background(),
		"INSERT INTO event_rsvps (event_id, user_id, rsvp, created_at) VALUES (?, ?, ?, ?)",
		eventID,
		userID,
		rsvp,
		createdAt,
	); err != nil {
		t.Fatalf("insert rsvp %s/%s: %v", eventID, userID, err)
	}
}
