package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/model"
	"github.com/harshyelwatkar/rapmania/internal/repository"
)

// compile-time check that *DB implements repository.GenreRepository
var _ repository.GenreRepository = (*DB)(nil)

// defaultGenres is the seed set inserted on first startup. Icons are
// remixicon class names consumed by the frontend.
var defaultGenres = []model.Genre{
	{Name: "Hip-Hop", Icon: "ri-album-line"},
	{Name: "Drill", Icon: "ri-disc-line"},
	{Name: "Trap", Icon: "ri-sound-module-line"},
	{Name: "Old School", Icon: "ri-record-circle-line"},
	{Name: "R&B", Icon: "ri-music-2-line"},
	{Name: "Boom Bap", Icon: "ri-rhythm-line"},
}

func (db *DB) ListGenres(ctx context.Context) ([]model.Genre, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, icon, created_at FROM genres ORDER BY created_at, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing genres: %w", err)
	}
	defer rows.Close()

	genres := make([]model.Genre, 0, len(defaultGenres))
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Icon, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning genre row: %w", err)
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating genres: %w", err)
	}

	return genres, nil
}

func (db *DB) GetGenreByID(ctx context.Context, id string) (*model.Genre, error) {
	var g model.Genre

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, icon, created_at FROM genres WHERE id = ?`,
		id,
	).Scan(&g.ID, &g.Name, &g.Icon, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("genre", id)
		}
		return nil, fmt.Errorf("sqlite: getting genre %s: %w", id, err)
	}

	return &g, nil
}

func (db *DB) CreateGenre(ctx context.Context, genre *model.Genre) error {
	genre.ID = xid.New().String()
	genre.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO genres (id, name, icon, created_at) VALUES (?, ?, ?, ?)`,
		genre.ID, genre.Name, genre.Icon, genre.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating genre %q: %w", genre.Name, err)
	}

	return nil
}

// SeedDefaultGenres inserts the default genre set if the table is empty.
// Called once at startup; "is the table empty" is the idempotency gate, so
// restarting the server never duplicates rows.
func (db *DB) SeedDefaultGenres(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM genres`).Scan(&count); err != nil {
		return fmt.Errorf("sqlite: counting genres: %w", err)
	}
	if count > 0 {
		return nil // already seeded
	}

	for _, g := range defaultGenres {
		genre := g
		if err := db.CreateGenre(ctx, &genre); err != nil {
			return fmt.Errorf("seeding genre %q: %w", g.Name, err)
		}
	}

	return nil
}
