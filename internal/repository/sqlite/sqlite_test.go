package sqlite

import (
	"context"
	"testing"

	"github.com/harshyelwatkar/rapmania/internal/model"
)

// Tests run against an in-memory database: fast, isolated, destroyed on close.
// t.Cleanup closes the connection when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username, email string) *model.User {
	t.Helper()
	hash := "$2a$04$fakehashforrepositorytests"
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hash,
		AvatarURL:    "https://api.dicebear.com/7.x/avataaars/svg?seed=" + username,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestGenre(t *testing.T, db *DB, name string) *model.Genre {
	t.Helper()
	genre := &model.Genre{Name: name, Icon: "ri-album-line"}
	if err := db.CreateGenre(context.Background(), genre); err != nil {
		t.Fatalf("failed to create test genre: %v", err)
	}
	return genre
}

func createTestRap(t *testing.T, db *DB, user *model.User, genre *model.Genre, topic string, public bool) *model.Rap {
	t.Helper()
	rap := &model.Rap{
		UserID:      user.ID,
		GenreID:     genre.ID,
		Topic:       topic,
		StanzaCount: 8,
		Content:     "1. Test bars about " + topic + "\n   more test bars",
		IsPublic:    public,
	}
	if err := db.CreateRap(context.Background(), rap); err != nil {
		t.Fatalf("failed to create test rap: %v", err)
	}
	return rap
}
