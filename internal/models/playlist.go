package models

import "time"

type Playlist struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;size:150" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsPublic    bool      `gorm:"not null;default:true" json:"isPublic"`
	OwnerID     int       `gorm:"not null;index" json:"ownerId"`
	Videos      []Video   `gorm:"many2many:playlist_videos" json:"videos,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type PlaylistRequest struct {
	Name        string `json:"name" binding:"required,max=150"`
	Description string `json:"description" binding:"max=2000"`
	IsPublic    *bool  `json:"isPublic"`
}
