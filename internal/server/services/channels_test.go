package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/memory"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/subscriptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelProfile_CountsAndMembership(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")
	dave := e.register(t, "dave")

	for _, u := range []*models.User{bob, carol, dave} {
		require.NoError(t, e.channels.Subscribe(ctx, u.ID, alice.ID))
	}
	require.NoError(t, e.channels.Subscribe(ctx, alice.ID, bob.ID))

	p, err := e.channels.ChannelProfile(ctx, " ALICE ", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.ChannelProfile{
		DisplayName:               "Display alice",
		Username:                  "alice",
		SubscribersCount:          3,
		ChannelsSubscribedToCount: 1,
		IsSubscribed:              true,
		Email:                     "alice@x.io",
	}, p)

	p, err = e.channels.ChannelProfile(ctx, "alice", alice.ID)
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)

	p, err = e.channels.ChannelProfile(ctx, "alice", "")
	require.NoError(t, err)
	assert.False(t, p.IsSubscribed)

	_, err = e.channels.ChannelProfile(ctx, "nobody", bob.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.channels.ChannelProfile(ctx, "  ", bob.ID)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestChannelProfile_ZeroCounts(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice")

	p, err := e.channels.ChannelProfile(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Zero(t, p.SubscribersCount)
	assert.Zero(t, p.ChannelsSubscribedToCount)
}

func TestSubscribe_Rules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	assert.ErrorIs(t, e.channels.Subscribe(ctx, alice.ID, alice.ID), common.ErrorValidation)
	assert.ErrorIs(t, e.channels.Subscribe(ctx, alice.ID, "ghost"), common.ErrorNotFound)
	assert.ErrorIs(t, e.channels.Subscribe(ctx, alice.ID, ""), common.ErrorValidation)

	require.NoError(t, e.channels.Subscribe(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, e.channels.Subscribe(ctx, alice.ID, bob.ID), common.ErrorAlreadyExists)

	list, err := e.channels.Subscriptions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bob.ID, list[0].ChannelID)

	require.NoError(t, e.channels.Unsubscribe(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, e.channels.Unsubscribe(ctx, alice.ID, bob.ID), common.ErrorNotFound)

	list, err = e.channels.Subscriptions(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestWatchHistory_OrderOwnersAndGaps(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	carol := e.register(t, "carol")

	videos := e.rm.Videos(nil)
	v1, err := videos.Create(ctx, &models.Video{OwnerID: bob.ID, Title: "one"})
	require.NoError(t, err)
	v2, err := videos.Create(ctx, &models.Video{OwnerID: carol.ID, Title: "two"})
	require.NoError(t, err)
	v3, err := videos.Create(ctx, &models.Video{OwnerID: bob.ID, Title: "three"})
	require.NoError(t, err)

	for _, v := range []*models.Video{v1, v2, v3, v1} {
		require.NoError(t, e.channels.RecordWatch(ctx, alice.ID, v.ID))
	}

	got, err := e.channels.WatchHistory(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 4)
	titles := []string{got[0].Title, got[1].Title, got[2].Title, got[3].Title}
	assert.Equal(t, []string{"one", "two", "three", "one"}, titles)
	require.NotNil(t, got[1].Owner)
	assert.Equal(t, &models.VideoOwner{DisplayName: "Display carol", Username: "carol"}, got[1].Owner)

	// Owner gone: entry stays, owner absent.
	e.rm.DeleteUser(carol.ID)
	// Video gone: entry skipped.
	e.rm.DeleteVideo(v3.ID)

	got, err = e.channels.WatchHistory(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "two", got[1].Title)
	assert.Nil(t, got[1].Owner)
	require.NotNil(t, got[0].Owner)
	assert.Equal(t, "bob", got[0].Owner.Username)
	assert.NotSame(t, got[0].Owner, got[2].Owner, "each entry owns its owner value")
}

func TestWatchHistory_Empty(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	got, err := e.channels.WatchHistory(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = e.channels.WatchHistory(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRecordWatch_UnknownVideo(t *testing.T) {
	e := newTestEnv(t)
	alice := e.register(t, "alice")

	err := e.channels.RecordWatch(context.Background(), alice.ID, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, e.channels.RecordWatch(context.Background(), alice.ID, " "), common.ErrorValidation)
}

type failingSubs struct{ subscriptions.Repository }

func (failingSubs) CountSubscribers(context.Context, string) (int64, error) { return 0, errBoom }

type failingManager struct{ *memory.Manager }

func (m failingManager) Subscriptions(db dbx.DBTX) subscriptions.Repository {
	return failingSubs{m.Manager.Subscriptions(db)}
}

func TestChannelProfile_StorageFailureIsInternal(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "alice")
	svc := NewChannelService(failingManager{e.rm}, e.channels.logger)

	_, err := svc.ChannelProfile(context.Background(), "alice", "")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, errBoom, "storage detail must not leak")
}
