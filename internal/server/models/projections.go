package models

import "time"

// ChannelProfile is the public view of a channel as seen by a requester.
type ChannelProfile struct {
	DisplayName               string `json:"displayName"`
	Username                  string `json:"username"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
	AvatarURL                 string `json:"avatar"`
	CoverImageURL             string `json:"coverImage"`
	Email                     string `json:"email"`
}

// VideoOwner is the denormalized owner embedded into watch history entries.
type VideoOwner struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar"`
}

// WatchedVideo is one watch history entry. Owner is nil when the owner no
// longer exists.
type WatchedVideo struct {
	ID           string      `json:"id"`
	VideoURL     string      `json:"videoFile"`
	ThumbnailURL string      `json:"thumbnail"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Duration     float64     `json:"duration"`
	Views        int64       `json:"views"`
	CreatedAt    time.Time   `json:"createdAt"`
	Owner        *VideoOwner `json:"owner,omitempty"`
}
