package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	dbgen "github.com/mandrade85ma-cloud/site/internal/db/generated"
)

func TestEnsureForeignKeysEnabledDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "data/app.db", want: "data/app.db?_fk=1"},
		{in: "data/app.db?cache=shared", want: "data/app.db?cache=shared&_fk=1"},
		{in: "data/app.db?_fk=0", want: "data/app.db?_fk=0"},
	}

	for _, tt := range tests {
		if got := ensureForeignKeysEnabledDSN(tt.in); got != tt.want {
			t.Fatalf("ensureForeignKeysEnabledDSN(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNewAppliesMigrationsAndEnforcesForeignKeys(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()

	err = database.Queries.UpsertEventTeams(context.Background(), dbgen.UpsertEventTeamsParams{
		EventID:   "missing-event",
		TeamA:     "[]",
		TeamB:     "[]",
		Stats:     "{}",
		Warnings:  "[]",
		CreatedBy: "missing-user",
	})
	if err == nil {
		t.Fatalf("expected foreign key violation")
	}
	if !IsForeignKeyViolation(err) {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestNewIsIdempotentAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	first, err := New(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	second.Close()
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	if _, err := database.ExecContext(ctx, "INSERT INTO profiles (id, name) VALUES (?, ?)", "user-1", "Ana"); err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	if _, err := database.ExecContext(ctx,
		"INSERT INTO events (id, created_by, title, teams_enabled) VALUES (?, ?, ?, ?)",
		"event-1", "user-1", "Futebol", true,
	); err != nil {
		t.Fatalf("insert event: %v", err)
	}

	errAbort := errors.New("abort")
	err = database.RunInTx(ctx, func(txdb *DB) error {
		if err := txdb.Queries.UpsertEventPlayerRating(ctx, dbgen.UpsertEventPlayerRatingParams{
			EventID: "event-1",
			UserID:  "user-1",
			Rating:  4,
		}); err != nil {
			t.Fatalf("upsert rating: %v", err)
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("expected abort error, got %v", err)
	}

	var count int
	if err := database.QueryRowContext(ctx, "SELECT COUNT(*) FROM event_player_ratings").Scan(&count); err != nil {
		t.Fatalf("count ratings: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback to discard rating, found %d rows", count)
	}
}
