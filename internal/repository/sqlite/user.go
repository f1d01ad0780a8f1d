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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user. The ID and CreatedAt are generated here and
// written back through the pointer so the caller gets the canonical record.
//
// Uniqueness of username/email/google_id is enforced by the schema; the
// service layer checks for duplicates first to produce friendly errors, and
// the constraint catches whatever races past that check.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, google_id, avatar_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
		user.AvatarURL,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating user %q: %w", user.Username, err)
	}

	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = ?`, username)
}

func (db *DB) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return db.getUser(ctx, `WHERE google_id = ?`, googleID)
}

// getUser is the shared lookup for the GetUserBy* methods. The where clause is
// always one of the fixed strings above — never user input.
func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, google_id, avatar_url, created_at
		 FROM users `+where,
		arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.GoogleID,
		&u.AvatarURL,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("%v", arg))
		}
		return nil, fmt.Errorf("sqlite: getting user (%v): %w", arg, err)
	}

	return &u, nil
}

// SetGoogleID attaches a Google identity to an existing account.
func (db *DB) SetGoogleID(ctx context.Context, userID, googleID string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET google_id = ? WHERE id = ?`,
		googleID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting google id for user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}

	return nil
}

// DeleteUser removes an account. The user's raps and likes are removed by the
// ON DELETE CASCADE foreign keys.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
