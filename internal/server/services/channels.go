package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/dbx"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel/attribute"
)

// ChannelService builds the denormalized channel views and maintains the
// subscription graph and watch history they are built from.
type ChannelService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewChannelService(m repomanager.RepositoryManager, logger logging.Logger) *ChannelService {
	return &ChannelService{repomanager: m, logger: logger.With("module", "channels")}
}

// ChannelProfile returns username's channel as seen by requesterID. The
// counts and the membership flag are read from one snapshot.
func (s *ChannelService) ChannelProfile(ctx context.Context, username, requesterID string) (_ *models.ChannelProfile, err error) {
	ctx, span := tracer.Start(ctx, "ChannelService.ChannelProfile")
	defer func() { endSpan(span, err) }()

	username = normalize(username)
	if username == "" {
		return nil, common.NewValidationError("username", "is required")
	}
	span.SetAttributes(attribute.String("channel.username", username))

	var p *models.ChannelProfile
	err = s.repomanager.WithTx(ctx, dbx.ReadSnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		ch, err := s.repomanager.Users(tx).GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		subs := s.repomanager.Subscriptions(tx)
		subscribers, err := subs.CountSubscribers(ctx, ch.ID)
		if err != nil {
			return err
		}
		subscribedTo, err := subs.CountSubscribedTo(ctx, ch.ID)
		if err != nil {
			return err
		}
		isSubscribed := false
		if requesterID != "" {
			if isSubscribed, err = subs.Exists(ctx, requesterID, ch.ID); err != nil {
				return err
			}
		}

		p = &models.ChannelProfile{
			DisplayName:               ch.DisplayName,
			Username:                  ch.Username,
			SubscribersCount:          subscribers,
			ChannelsSubscribedToCount: subscribedTo,
			IsSubscribed:              isSubscribed,
			AvatarURL:                 ch.AvatarURL,
			CoverImageURL:             ch.CoverImageURL,
			Email:                     ch.Email,
		}
		return nil
	})
	if err != nil {
		return nil, internal(ctx, s.logger, "channel profile", err)
	}
	return p, nil
}

// WatchHistory returns userID's watched videos in watch order, each with its
// owner embedded. Entries whose video is gone are skipped; entries whose
// owner is gone keep a nil Owner.
func (s *ChannelService) WatchHistory(ctx context.Context, userID string) (_ []models.WatchedVideo, err error) {
	ctx, span := tracer.Start(ctx, "ChannelService.WatchHistory")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user.id", userID))

	db := s.repomanager.DB()
	if _, err := s.repomanager.Users(db).GetByID(ctx, userID); err != nil {
		return nil, internal(ctx, s.logger, "load user", err)
	}

	ids, err := s.repomanager.Users(db).WatchHistory(ctx, userID)
	if err != nil {
		return nil, internal(ctx, s.logger, "load watch history", err)
	}
	span.SetAttributes(attribute.Int("history.length", len(ids)))
	if len(ids) == 0 {
		return []models.WatchedVideo{}, nil
	}

	vids, err := s.repomanager.Videos(db).GetByIDs(ctx, distinct(ids))
	if err != nil {
		return nil, internal(ctx, s.logger, "load videos", err)
	}
	byID := make(map[string]*models.Video, len(vids))
	ownerIDs := make([]string, 0, len(vids))
	for _, v := range vids {
		byID[v.ID] = v
		if v.OwnerID != "" {
			ownerIDs = append(ownerIDs, v.OwnerID)
		}
	}

	owners, err := s.repomanager.Users(db).GetByIDs(ctx, distinct(ownerIDs))
	if err != nil {
		return nil, internal(ctx, s.logger, "load owners", err)
	}
	ownerByID := make(map[string]*models.VideoOwner, len(owners))
	for _, u := range owners {
		ownerByID[u.ID] = &models.VideoOwner{
			DisplayName: u.DisplayName,
			Username:    u.Username,
			AvatarURL:   u.AvatarURL,
		}
	}

	out := make([]models.WatchedVideo, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			continue
		}
		w := models.WatchedVideo{
			ID:           v.ID,
			VideoURL:     v.VideoURL,
			ThumbnailURL: v.ThumbnailURL,
			Title:        v.Title,
			Description:  v.Description,
			Duration:     v.Duration,
			Views:        v.Views,
			CreatedAt:    v.CreatedAt,
		}
		if o, ok := ownerByID[v.OwnerID]; ok {
			c := *o
			w.Owner = &c
		}
		out = append(out, w)
	}
	return out, nil
}

// RecordWatch appends videoID to userID's watch history.
func (s *ChannelService) RecordWatch(ctx context.Context, userID, videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return common.NewValidationError("videoId", "is required")
	}
	db := s.repomanager.DB()
	if _, err := s.repomanager.Videos(db).GetByID(ctx, videoID); err != nil {
		return internal(ctx, s.logger, "load video", err)
	}
	if err := s.repomanager.Users(db).AppendWatchHistory(ctx, userID, videoID); err != nil {
		return internal(ctx, s.logger, "append watch history", err)
	}
	return nil
}

// Subscribe makes subscriberID follow channelID.
func (s *ChannelService) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	if channelID == "" {
		return common.NewValidationError("channelId", "is required")
	}
	if subscriberID == channelID {
		return common.NewValidationError("channelId", "cannot subscribe to own channel")
	}

	db := s.repomanager.DB()
	if _, err := s.repomanager.Users(db).GetByID(ctx, channelID); err != nil {
		return internal(ctx, s.logger, "load channel", err)
	}
	if err := s.repomanager.Subscriptions(db).Create(ctx, subscriberID, channelID); err != nil {
		return internal(ctx, s.logger, "create subscription", err)
	}
	s.logger.Debug(ctx, "subscribed", "subscriber_id", subscriberID, "channel_id", channelID)
	return nil
}

// Unsubscribe removes the subscriberID→channelID edge.
func (s *ChannelService) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	err := s.repomanager.Subscriptions(s.repomanager.DB()).Delete(ctx, subscriberID, channelID)
	if err != nil {
		return internal(ctx, s.logger, "delete subscription", err)
	}
	return nil
}

// Subscriptions lists the channels subscriberID follows, newest first.
func (s *ChannelService) Subscriptions(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	list, err := s.repomanager.Subscriptions(s.repomanager.DB()).ListChannels(ctx, subscriberID)
	if err != nil {
		return nil, internal(ctx, s.logger, "list subscriptions", err)
	}
	if list == nil {
		list = []models.SubscribedChannel{}
	}
	return list, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
