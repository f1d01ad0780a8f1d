package service

import (
	"github.com/harshyelwatkar/rapmania/internal/apperror"
	"github.com/harshyelwatkar/rapmania/internal/model"
)

// Access rules for raps. Kept as plain functions so every code path that
// gates access uses exactly the same logic.
//
// The guard deliberately returns forbidden — not not-found — for a private
// rap read by a non-owner: the entry's existence is not hidden, only its
// content. A genuinely missing rap never reaches the guard; the repository
// reports that as not-found first.

// CanReadRap reports whether callerID may read the rap. Public raps are
// readable by anyone, including anonymous callers (empty callerID); private
// raps only by their owner.
func CanReadRap(rap *model.Rap, callerID string) error {
	if rap.IsPublic {
		return nil
	}
	if callerID != "" && callerID == rap.UserID {
		return nil
	}
	return apperror.Forbidden("access denied")
}

// CanModifyRap reports whether callerID may update or delete the rap. Only
// the owner may. Likes are NOT gated by this — any authenticated user may
// like any rap.
func CanModifyRap(rap *model.Rap, callerID string) error {
	if callerID != "" && callerID == rap.UserID {
		return nil
	}
	return apperror.Forbidden("you can only modify your own raps")
}
