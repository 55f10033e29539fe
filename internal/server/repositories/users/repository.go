// Package users declares the storage contract for principals and their
// watch history, and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Repository persists principals. Lookups that find nothing return
// common.ErrorNotFound; unique username or email collisions return
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByLogin matches either username or email; empty arguments are ignored.
	GetByLogin(ctx context.Context, username, email string) (*models.User, error)
	// GetByIDs returns the users that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateAccount(ctx context.Context, id, displayName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, url string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error)
	// Delete removes the principal; rows referencing it follow the schema's
	// ON DELETE rules.
	Delete(ctx context.Context, id string) error

	// AppendWatchHistory records that userID watched videoID. Repeated
	// watches produce repeated entries.
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
	// WatchHistory returns the watched video ids in append order.
	WatchHistory(ctx context.Context, userID string) ([]string, error)
}
