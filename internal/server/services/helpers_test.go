package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/credentials"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAssets struct {
	mu     sync.Mutex
	stored []string
	err    error
}

func (f *fakeAssets) Store(_ context.Context, localPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, localPath)
	if f.err != nil {
		return "", f.err
	}
	return "http://cdn.local/media/" + filepath.Base(localPath), nil
}

type testEnv struct {
	rm       *memory.Manager
	issuer   *auth.Issuer
	sessions *SessionRegistry
	authn    *Authenticator
	users    *UserService
	channels *ChannelService
	assets   *fakeAssets
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	hasher, err := credentials.NewHasher(bcrypt.MinCost, 4)
	require.NoError(t, err)

	log := logging.Nop()
	rm := memory.NewRepositoryManager()
	fa := &fakeAssets{}
	sessions := NewSessionRegistry(rm, issuer, log)

	return &testEnv{
		rm:       rm,
		issuer:   issuer,
		sessions: sessions,
		authn:    NewAuthenticator(rm, issuer, log),
		users:    NewUserService(rm, credentials.NewStore(hasher), sessions, fa, log),
		channels: NewChannelService(rm, log),
		assets:   fa,
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		DisplayName: "Display " + username,
		Email:       username + "@x.io",
		Username:    username,
		Password:    username + "-pw",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) login(t *testing.T, username string) *TokenPair {
	t.Helper()
	_, pair, err := e.users.Login(context.Background(), LoginInput{Username: username, Password: username + "-pw"})
	require.NoError(t, err)
	return pair
}

var errBoom = errors.New("boom")
