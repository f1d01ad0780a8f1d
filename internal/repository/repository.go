// Package repository defines the storage interfaces the service layer depends
// on. The concrete SQLite implementation lives in repository/sqlite; tests use
// in-memory mocks. Services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/harshyelwatkar/rapmania/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	// SetGoogleID attaches a Google identity to an existing account. Used when
	// a Google sign-in matches a known email that signed up with a password.
	SetGoogleID(ctx context.Context, userID, googleID string) error
	// DeleteUser removes an account. Raps and likes cascade.
	DeleteUser(ctx context.Context, id string) error
}

// GenreRepository reads and seeds the static genre reference data.
type GenreRepository interface {
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenreByID(ctx context.Context, id string) (*model.Genre, error)
	CreateGenre(ctx context.Context, genre *model.Genre) error
	// SeedDefaultGenres inserts the default genre set if the table is empty.
	// Idempotent — safe to call on every startup.
	SeedDefaultGenres(ctx context.Context) error
}

// RapRepository persists lyric entries.
type RapRepository interface {
	CreateRap(ctx context.Context, rap *model.Rap) error
	GetRapByID(ctx context.Context, id string) (*model.Rap, error)
	// ListRapsByUser returns all of one user's raps, newest first.
	ListRapsByUser(ctx context.Context, userID string) ([]model.Rap, error)
	// ListPublicRaps returns all public raps, newest first.
	ListPublicRaps(ctx context.Context) ([]model.Rap, error)
	// SearchPublicRaps returns public raps whose topic or content contains the
	// query (case-insensitive), newest first.
	SearchPublicRaps(ctx context.Context, query string) ([]model.Rap, error)
	UpdateRap(ctx context.Context, rap *model.Rap) error
	// DeleteRap removes a rap. Its likes cascade.
	DeleteRap(ctx context.Context, id string) error
}

// LikeRepository persists like rows.
type LikeRepository interface {
	// LikeRap records a like. If the (user, rap) pair already exists — whether
	// from an earlier call or a concurrent one losing the uniqueness race —
	// the existing row is returned instead of an error.
	LikeRap(ctx context.Context, userID, rapID string) (*model.Like, error)
	// UnlikeRap removes a like if present. Removing a like that does not
	// exist is a no-op, not an error.
	UnlikeRap(ctx context.Context, userID, rapID string) error
	// CountLikes counts likes for a rap directly from the likes table. Never
	// cached: the count must agree with the table at every read.
	CountLikes(ctx context.Context, rapID string) (int, error)
}
