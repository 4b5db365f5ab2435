package models

import "time"

type Video struct {
	ID           int     `gorm:"primaryKey" json:"id"`
	Title        string  `gorm:"not null;size:200;index" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	VideoURL     string  `gorm:"not null" json:"videoUrl"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	Duration     float64 `json:"duration"` // seconds
	OwnerID      int     `gorm:"not null;index" json:"ownerId"`
	Owner        *User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Views        int64   `gorm:"not null;default:0" json:"views"`

	// Denormalized counters. They always equal a count over the source
	// table and are only written after such a count.
	LikesCount    int64 `gorm:"not null;default:0" json:"likesCount"`
	DislikesCount int64 `gorm:"not null;default:0" json:"dislikesCount"`
	CommentsCount int64 `gorm:"not null;default:0" json:"commentsCount"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateVideoRequest struct {
	Title        string  `json:"title" binding:"required,max=200"`
	Description  string  `json:"description" binding:"max=5000"`
	VideoURL     string  `json:"videoUrl" binding:"required,url"`
	ThumbnailURL string  `json:"thumbnailUrl" binding:"omitempty,url"`
	Duration     float64 `json:"duration" binding:"gte=0"`
}

type UpdateVideoRequest struct {
	Title        *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string `json:"description" binding:"omitempty,max=5000"`
	ThumbnailURL *string `json:"thumbnailUrl" binding:"omitempty,url"`
}

// VideoDetail is a video as seen by one viewer.
type VideoDetail struct {
	Video
	Liked    bool `json:"liked"`
	Disliked bool `json:"disliked"`
}
