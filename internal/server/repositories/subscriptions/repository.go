// Package subscriptions stores subscriber→channel edges of the social graph.
package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/vidtube/internal/server/models"
)

// Repository persists subscription edges. Each (subscriber, channel) pair
// exists at most once.
type Repository interface {
	// Create adds an edge. A duplicate edge yields common.ErrorAlreadyExists,
	// an unknown user common.ErrorNotFound.
	Create(ctx context.Context, subscriberID, channelID string) error
	// Delete removes an edge, or returns common.ErrorNotFound.
	Delete(ctx context.Context, subscriberID, channelID string) error

	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)

	// ListChannels returns the channels subscriberID follows, newest first.
	ListChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error)
}
