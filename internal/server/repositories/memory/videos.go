package memory

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/google/uuid"
)

type videoRepo store

func (r *videoRepo) Create(_ context.Context, v *models.Video) (*models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.OwnerID != "" {
		if _, ok := r.users[v.OwnerID]; !ok {
			return nil, common.ErrorNotFound
		}
	}
	c := *v
	c.ID = uuid.NewString()
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	r.videos[c.ID] = &c

	out := c
	return &out, nil
}

func (r *videoRepo) GetByID(_ context.Context, id string) (*models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *v
	return &c, nil
}

func (r *videoRepo) GetByIDs(_ context.Context, ids []string) ([]*models.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Video, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if v, ok := r.videos[id]; ok {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}
