package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

type subRepo store

func (r *subRepo) Create(_ context.Context, subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[subscriberID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.users[channelID]; !ok {
		return common.ErrorNotFound
	}
	e := edge{subscriber: subscriberID, channel: channelID}
	if _, ok := r.subs[e]; ok {
		return common.ErrorAlreadyExists
	}
	r.subs[e] = r.now()
	return nil
}

func (r *subRepo) Delete(_ context.Context, subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := edge{subscriber: subscriberID, channel: channelID}
	if _, ok := r.subs[e]; !ok {
		return common.ErrorNotFound
	}
	delete(r.subs, e)
	return nil
}

func (r *subRepo) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for e := range r.subs {
		if e.channel == channelID {
			n++
		}
	}
	return n, nil
}

func (r *subRepo) CountSubscribedTo(_ context.Context, subscriberID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for e := range r.subs {
		if e.subscriber == subscriberID {
			n++
		}
	}
	return n, nil
}

func (r *subRepo) Exists(_ context.Context, subscriberID, channelID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.subs[edge{subscriber: subscriberID, channel: channelID}]
	return ok, nil
}

func (r *subRepo) ListChannels(_ context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.SubscribedChannel{}
	for e, at := range r.subs {
		if e.subscriber != subscriberID {
			continue
		}
		u, ok := r.users[e.channel]
		if !ok {
			continue
		}
		out = append(out, models.SubscribedChannel{
			ChannelID:    u.ID,
			Username:     u.Username,
			DisplayName:  u.DisplayName,
			AvatarURL:    u.AvatarURL,
			SubscribedAt: at,
		})
	}
	slices.SortFunc(out, func(a, b models.SubscribedChannel) int {
		if c := b.SubscribedAt.Compare(a.SubscribedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	return out, nil
}
