package models

import "time"

// ReactionKind selects the reaction table a toggle works on.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Opposite returns the kind a viewer cannot hold at the same time as k.
func (k ReactionKind) Opposite() ReactionKind {
	if k == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}

// Like and Dislike live in separate tables; each allows one row per
// (user, video).
type Like struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_like_user_video" json:"userId"`
	VideoID   int       `gorm:"not null;uniqueIndex:idx_like_user_video;index" json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Dislike struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_dislike_user_video" json:"userId"`
	VideoID   int       `gorm:"not null;uniqueIndex:idx_dislike_user_video;index" json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReactionRequest struct {
	Type ReactionKind `json:"type" binding:"required,oneof=like dislike"`
}
