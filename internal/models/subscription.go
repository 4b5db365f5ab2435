package models

import "time"

// Subscription links a subscriber to a channel (another user).
type Subscription struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	SubscriberID int       `gorm:"not null;uniqueIndex:idx_subscriber_channel" json:"subscriberId"`
	ChannelID    int       `gorm:"not null;uniqueIndex:idx_subscriber_channel;index" json:"channelId"`
	Channel      *User     `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
