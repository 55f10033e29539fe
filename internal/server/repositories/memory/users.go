package memory

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/google/uuid"
)

type userRepo store

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[u.Username]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	r.users[c.ID] = &c
	r.byUsername[c.Username] = c.ID
	r.byEmail[c.Email] = c.ID

	out := c
	return &out, nil
}

func (r *userRepo) get(id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(r.byUsername[username])
}

func (r *userRepo) GetByLogin(_ context.Context, username, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, ok := r.byUsername[username]; ok && username != "" {
		return r.get(id)
	}
	if id, ok := r.byEmail[email]; ok && email != "" {
		return r.get(id)
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, err := r.get(id); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

// update applies fn to the stored user under the write lock.
func (r *userRepo) update(id string, fn func(u *models.User) error) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = r.now()
	c := *u
	return &c, nil
}

func (r *userRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	_, err := r.update(id, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	})
	return err
}

func (r *userRepo) UpdateAccount(_ context.Context, id, displayName, email string) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		if owner, ok := r.byEmail[email]; ok && owner != id {
			return common.ErrorAlreadyExists
		}
		delete(r.byEmail, u.Email)
		r.byEmail[email] = id
		u.DisplayName = displayName
		u.Email = email
		return nil
	})
}

func (r *userRepo) UpdateAvatar(_ context.Context, id, url string) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		u.AvatarURL = url
		return nil
	})
}

func (r *userRepo) UpdateCoverImage(_ context.Context, id, url string) (*models.User, error) {
	return r.update(id, func(u *models.User) error {
		u.CoverImageURL = url
		return nil
	})
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !(*store)(r).deleteUser(id) {
		return common.ErrorNotFound
	}
	return nil
}

func (r *userRepo) AppendWatchHistory(_ context.Context, userID, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.videos[videoID]; !ok {
		return common.ErrorNotFound
	}
	r.history[userID] = append(r.history[userID], videoID)
	return nil
}

func (r *userRepo) WatchHistory(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.users[userID]; !ok {
		return nil, common.ErrorNotFound
	}
	out := make([]string, len(r.history[userID]))
	copy(out, r.history[userID])
	return out, nil
}
