package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
)

func TestSeedDefaultGenres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SeedDefaultGenres(ctx); err != nil {
		t.Fatalf("SeedDefaultGenres() error = %v", err)
	}

	genres, err := db.ListGenres(ctx)
	if err != nil {
		t.Fatalf("ListGenres() error = %v", err)
	}
	if len(genres) != len(defaultGenres) {
		t.Fatalf("len(genres) = %d, want %d", len(genres), len(defaultGenres))
	}

	names := make(map[string]bool, len(genres))
	for _, g := range genres {
		names[g.Name] = true
		if g.ID == "" {
			t.Errorf("genre %q has no ID", g.Name)
		}
	}
	for _, want := range []string{"Hip-Hop", "Drill", "Trap", "Old School", "R&B", "Boom Bap"} {
		if !names[want] {
			t.Errorf("missing default genre %q", want)
		}
	}
}

func TestSeedDefaultGenres_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Seeding twice must not duplicate rows — the gate is "table is empty".
	if err := db.SeedDefaultGenres(ctx); err != nil {
		t.Fatalf("first SeedDefaultGenres() error = %v", err)
	}
	if err := db.SeedDefaultGenres(ctx); err != nil {
		t.Fatalf("second SeedDefaultGenres() error = %v", err)
	}

	genres, err := db.ListGenres(ctx)
	if err != nil {
		t.Fatalf("ListGenres() error = %v", err)
	}
	if len(genres) != len(defaultGenres) {
		t.Errorf("len(genres) = %d after double seed, want %d", len(genres), len(defaultGenres))
	}
}

func TestSeedDefaultGenres_SkipsNonEmptyTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestGenre(t, db, "Custom")

	if err := db.SeedDefaultGenres(ctx); err != nil {
		t.Fatalf("SeedDefaultGenres() error = %v", err)
	}

	genres, err := db.ListGenres(ctx)
	if err != nil {
		t.Fatalf("ListGenres() error = %v", err)
	}
	if len(genres) != 1 {
		t.Errorf("len(genres) = %d, want 1 (seed must not run on a populated table)", len(genres))
	}
}

func TestGetGenreByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestGenre(t, db, "Trap")

	found, err := db.GetGenreByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetGenreByID() error = %v", err)
	}
	if found.Name != "Trap" {
		t.Errorf("Name = %q, want %q", found.Name, "Trap")
	}
}

func TestGetGenreByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetGenreByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
