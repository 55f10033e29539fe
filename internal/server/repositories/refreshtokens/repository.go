// Package refreshtokens declares the storage contract for the per-principal
// refresh token slot and its PostgreSQL implementation.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Repository holds at most one refresh token per user.
type Repository interface {
	// Upsert makes token the user's only valid refresh token, replacing any
	// previous one.
	Upsert(ctx context.Context, userID, token string, expiresAt time.Time) error

	// Find returns the user's current slot, or common.ErrorNotFound when the
	// user has no active session.
	Find(ctx context.Context, userID string) (*models.RefreshToken, error)

	// Rotate replaces oldToken with newToken only if oldToken is still the
	// stored value. It reports whether the swap happened.
	Rotate(ctx context.Context, userID, oldToken, newToken string, expiresAt time.Time) (bool, error)

	// Delete clears the user's slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, userID string) error
}
