package models

import "time"

// WatchHistory keeps one row per (user, video); a rewatch refreshes WatchedAt.
type WatchHistory struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_history_user_video;index:idx_history_user_watched,priority:1" json:"userId"`
	VideoID   int       `gorm:"not null;uniqueIndex:idx_history_user_video" json:"videoId"`
	Video     *Video    `gorm:"foreignKey:VideoID" json:"video,omitempty"`
	WatchedAt time.Time `gorm:"not null;index:idx_history_user_watched,priority:2" json:"watchedAt"`
}

func (WatchHistory) TableName() string {
	return "watch_history"
}

type WatchLater struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_watch_later_user_video" json:"userId"`
	VideoID   int       `gorm:"not null;uniqueIndex:idx_watch_later_user_video" json:"videoId"`
	Video     *Video    `gorm:"foreignKey:VideoID" json:"video,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WatchLater) TableName() string {
	return "watch_later"
}
