package models

import "time"

type Comment struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	AuthorID  int       `gorm:"not null;index" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	VideoID   int       `gorm:"not null;index:idx_comment_video_created,priority:1" json:"videoId"`
	CreatedAt time.Time `gorm:"index:idx_comment_video_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CommentRequest struct {
	Body string `json:"body" binding:"required"`
}
