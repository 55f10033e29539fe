package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type tokenRepo store

func (r *tokenRepo) Upsert(_ context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[userID] = models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt, CreatedAt: r.now()}
	return nil
}

func (r *tokenRepo) Find(_ context.Context, userID string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *tokenRepo) Rotate(_ context.Context, userID, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[userID]
	if !ok || t.Token != oldToken {
		return false, nil
	}
	r.tokens[userID] = models.RefreshToken{UserID: userID, Token: newToken, ExpiresAt: expiresAt, CreatedAt: r.now()}
	return true, nil
}

func (r *tokenRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, userID)
	return nil
}
