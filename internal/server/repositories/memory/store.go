// Package memory is an in-process storage engine implementing every
// repository contract over maps guarded by a single RWMutex. It backs tests
// and the "memory" storage backend.
//
// Each repository call is atomic on its own. WithTx does not isolate a group
// of calls; readers inside it may observe writes made concurrently.
package memory

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/users"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/videos"
)

type edge struct {
	subscriber string
	channel    string
}

type store struct {
	mu sync.RWMutex

	users      map[string]*models.User
	byUsername map[string]string
	byEmail    map[string]string
	history    map[string][]string

	tokens map[string]models.RefreshToken

	videos map[string]*models.Video

	subs map[edge]time.Time

	now func() time.Time
}

// Manager implements repomanager.RepositoryManager on top of one store.
type Manager struct {
	s *store
}

// NewRepositoryManager returns an empty in-memory engine.
func NewRepositoryManager() *Manager {
	return &Manager{s: &store{
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		history:    make(map[string][]string),
		tokens:     make(map[string]models.RefreshToken),
		videos:     make(map[string]*models.Video),
		subs:       make(map[edge]time.Time),
		now:        time.Now,
	}}
}

func (m *Manager) Users(dbx.DBTX) users.Repository                 { return (*userRepo)(m.s) }
func (m *Manager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return (*tokenRepo)(m.s) }
func (m *Manager) Subscriptions(dbx.DBTX) subscriptions.Repository { return (*subRepo)(m.s) }
func (m *Manager) Videos(dbx.DBTX) videos.Repository               { return (*videoRepo)(m.s) }

// DB returns nil; the memory repositories ignore their handle.
func (m *Manager) DB() dbx.DBTX { return nil }

func (m *Manager) WithTx(ctx context.Context, _ *sql.TxOptions, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

func (m *Manager) RunMigrations(context.Context) error { return nil }
func (m *Manager) Ping(context.Context) error          { return nil }
func (m *Manager) Close() error                        { return nil }

// DeleteUser removes a principal and the rows that reference it, leaving
// their videos ownerless.
func (m *Manager) DeleteUser(id string) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.deleteUser(id)
}

func (s *store) deleteUser(id string) bool {
	u, ok := s.users[id]
	if !ok {
		return false
	}
	delete(s.users, id)
	delete(s.byUsername, u.Username)
	delete(s.byEmail, u.Email)
	delete(s.history, id)
	delete(s.tokens, id)
	for e := range s.subs {
		if e.subscriber == id || e.channel == id {
			delete(s.subs, e)
		}
	}
	for _, v := range s.videos {
		if v.OwnerID == id {
			v.OwnerID = ""
		}
	}
	return true
}

// DeleteVideo removes a video. History entries that point at it remain.
func (m *Manager) DeleteVideo(id string) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.videos, id)
}
