package model

import "time"

// Genre is static reference data: a musical style a rap can belong to.
// Genres are seeded once at startup if the table is empty and are never
// deleted by normal application flow.
type Genre struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"` // remixicon class name, e.g. "ri-album-line"
	CreatedAt time.Time `json:"createdAt"`
}
