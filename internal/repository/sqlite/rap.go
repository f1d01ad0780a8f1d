package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/model"
	"github.com/harshyelwatkar/rapmania/internal/repository"
)

// compile-time check that *DB implements repository.RapRepository
var _ repository.RapRepository = (*DB)(nil)

const rapColumns = `id, user_id, genre_id, topic, stanza_count, explicit, content, is_public, created_at`

// CreateRap inserts a new rap. The ID and CreatedAt are generated here and
// written back through the pointer, same as CreateUser.
func (db *DB) CreateRap(ctx context.Context, rap *model.Rap) error {
	rap.ID = xid.New().String()
	rap.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO raps (`+rapColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rap.ID,
		rap.UserID,
		rap.GenreID,
		rap.Topic,
		rap.StanzaCount,
		rap.Explicit,
		rap.Content,
		rap.IsPublic,
		rap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating rap: %w", err)
	}

	return nil
}

func (db *DB) GetRapByID(ctx context.Context, id string) (*model.Rap, error) {
	var r model.Rap

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+rapColumns+` FROM raps WHERE id = ?`,
		id,
	).Scan(
		&r.ID,
		&r.UserID,
		&r.GenreID,
		&r.Topic,
		&r.StanzaCount,
		&r.Explicit,
		&r.Content,
		&r.IsPublic,
		&r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("rap", id)
		}
		return nil, fmt.Errorf("sqlite: getting rap %s: %w", id, err)
	}

	return &r, nil
}

// ListRapsByUser returns all of one user's raps, newest first.
func (db *DB) ListRapsByUser(ctx context.Context, userID string) ([]model.Rap, error) {
	return db.queryRaps(ctx,
		`SELECT `+rapColumns+` FROM raps
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
}

// ListPublicRaps returns all public raps, newest first.
func (db *DB) ListPublicRaps(ctx context.Context) ([]model.Rap, error) {
	return db.queryRaps(ctx,
		`SELECT `+rapColumns+` FROM raps
		 WHERE is_public = 1
		 ORDER BY created_at DESC`,
	)
}

// SearchPublicRaps returns public raps whose topic or content contains the
// query substring, newest first. LOWER() on both sides makes the match
// case-insensitive regardless of SQLite's LIKE configuration.
func (db *DB) SearchPublicRaps(ctx context.Context, query string) ([]model.Rap, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return db.queryRaps(ctx,
		`SELECT `+rapColumns+` FROM raps
		 WHERE is_public = 1
		   AND (LOWER(topic) LIKE ? OR LOWER(content) LIKE ?)
		 ORDER BY created_at DESC`,
		pattern, pattern,
	)
}

// queryRaps runs a SELECT over the raps table and scans the rows. All callers
// select rapColumns in order.
func (db *DB) queryRaps(ctx context.Context, query string, args ...any) ([]model.Rap, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying raps: %w", err)
	}
	defer rows.Close()

	raps := []model.Rap{}
	for rows.Next() {
		var r model.Rap
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.GenreID, &r.Topic, &r.StanzaCount,
			&r.Explicit, &r.Content, &r.IsPublic, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning rap row: %w", err)
		}
		raps = append(raps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating raps: %w", err)
	}

	return raps, nil
}

// UpdateRap writes the mutable fields of a rap. The owner (user_id) and
// created_at are immutable; the service layer merges partial updates onto the
// stored record before calling this.
func (db *DB) UpdateRap(ctx context.Context, rap *model.Rap) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE raps
		 SET genre_id = ?, topic = ?, stanza_count = ?, explicit = ?, content = ?, is_public = ?
		 WHERE id = ?`,
		rap.GenreID,
		rap.Topic,
		rap.StanzaCount,
		rap.Explicit,
		rap.Content,
		rap.IsPublic,
		rap.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating rap %s: %w", rap.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("rap", rap.ID)
	}

	return nil
}

// DeleteRap removes a rap. Its likes are removed by the ON DELETE CASCADE
// foreign key.
func (db *DB) DeleteRap(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM raps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting rap %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("rap", id)
	}

	return nil
}
