package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/harshyelwatkar/rapmania/internal/model"
	"github.com/harshyelwatkar/rapmania/internal/repository"
)

// compile-time check that *DB implements repository.LikeRepository
var _ repository.LikeRepository = (*DB)(nil)

// LikeRap records that userID liked rapID.
//
// The UNIQUE(user_id, rap_id) constraint is the authoritative resolver for
// concurrent like calls: we attempt the INSERT first, and if it fails we look
// for the existing row. Finding one means another call (earlier or concurrent)
// already liked the rap — that row is returned and the insert error dropped.
// Only if no row exists either is the original error a real failure.
func (db *DB) LikeRap(ctx context.Context, userID, rapID string) (*model.Like, error) {
	like := &model.Like{
		ID:        xid.New().String(),
		UserID:    userID,
		RapID:     rapID,
		CreatedAt: time.Now(),
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO rap_likes (id, user_id, rap_id, created_at) VALUES (?, ?, ?, ?)`,
		like.ID, like.UserID, like.RapID, like.CreatedAt,
	)
	if err == nil {
		return like, nil
	}

	existing, lookupErr := db.getLike(ctx, userID, rapID)
	if lookupErr == nil {
		return existing, nil
	}

	return nil, fmt.Errorf("sqlite: liking rap %s for user %s: %w", rapID, userID, err)
}

// UnlikeRap removes a like if present. A missing like is a no-op success —
// unlike is idempotent.
func (db *DB) UnlikeRap(ctx context.Context, userID, rapID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM rap_likes WHERE user_id = ? AND rap_id = ?`,
		userID, rapID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: unliking rap %s for user %s: %w", rapID, userID, err)
	}
	return nil
}

// CountLikes counts the like rows for a rap. Always computed from the table,
// never cached, so the value agrees with the rap_likes table at read time.
func (db *DB) CountLikes(ctx context.Context, rapID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rap_likes WHERE rap_id = ?`,
		rapID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes for rap %s: %w", rapID, err)
	}
	return count, nil
}

func (db *DB) getLike(ctx context.Context, userID, rapID string) (*model.Like, error) {
	var l model.Like
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, rap_id, created_at FROM rap_likes
		 WHERE user_id = ? AND rap_id = ?`,
		userID, rapID,
	).Scan(&l.ID, &l.UserID, &l.RapID, &l.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: getting like: %w", err)
	}
	return &l, nil
}
