package credentials

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct {
	userID string
	hash   string
	err    error
}

func (f *fakeUpdater) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	f.userID, f.hash = userID, hash
	return f.err
}

func TestStore_SetAndVerify(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestHasher(t, 1))
	repo := &fakeUpdater{}

	require.NoError(t, s.SetSecret(ctx, repo, "u1", "correct horse"))
	assert.Equal(t, "u1", repo.userID)
	assert.NotEmpty(t, repo.hash)

	u := &models.User{ID: "u1", PasswordHash: repo.hash}

	ok, err := s.VerifySecret(ctx, u, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifySecret(ctx, u, "battery staple")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newTestHasher(t, 1))
	u := &models.User{ID: "u1"}

	_, err := s.VerifySecret(ctx, u, "")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.VerifySecret(ctx, u, strings.Repeat("a", MaxSecretLen+1))
	assert.ErrorIs(t, err, common.ErrorValidation)

	repo := &fakeUpdater{}
	err = s.SetSecret(ctx, repo, "u1", "")
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, repo.userID, "storage must not be touched")

	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)
}

func TestStore_UnknownPrincipal(t *testing.T) {
	s := NewStore(newTestHasher(t, 1))

	ok, err := s.VerifySecret(context.Background(), nil, "anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetSecretStorageError(t *testing.T) {
	s := NewStore(newTestHasher(t, 1))
	boom := errors.New("boom")

	err := s.SetSecret(context.Background(), &fakeUpdater{err: boom}, "u1", "pw")
	assert.ErrorIs(t, err, boom)
}
