// Package videos stores published videos. Within this service videos are
// only read as join targets; Create exists for seeding.
package videos

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, v *models.Video) (*models.Video, error)
	GetByID(ctx context.Context, id string) (*models.Video, error)
	// GetByIDs returns the videos that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]*models.Video, error)
}
