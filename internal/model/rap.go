package model

import "time"

// Rap is a saved generated-or-edited lyric entry.
//
// A rap is owned exclusively by the user who created it: only the owner may
// update or delete it. IsPublic controls read access — public raps appear in
// the discover feed and search results; private raps are visible to the owner
// only. Deleting a user cascades to their raps, and deleting a rap cascades
// to its likes (enforced by foreign keys in the sqlite layer).
type Rap struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	GenreID     string    `json:"genreId"`
	Topic       string    `json:"topic"`
	StanzaCount int       `json:"stanzaCount"`
	Explicit    bool      `json:"explicit"`
	Content     string    `json:"content"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Like records that a user liked a rap. The (UserID, RapID) pair is unique —
// a user can like a given rap at most once; the like/unlike operations are
// idempotent on top of that constraint.
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RapID     string    `json:"rapId"`
	CreatedAt time.Time `json:"createdAt"`
}
