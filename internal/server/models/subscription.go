package models

import "time"

// Subscription is a directed edge: SubscriberID follows ChannelID.
type Subscription struct {
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// SubscribedChannel is a channel a user follows, with the channel's public
// fields.
type SubscribedChannel struct {
	ChannelID    string    `json:"channelId"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName"`
	AvatarURL    string    `json:"avatar"`
	SubscribedAt time.Time `json:"subscribedAt"`
}
