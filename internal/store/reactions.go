package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

// Reactions stores likes and dislikes, one table per kind.
type Reactions struct {
	db *gorm.DB
}

func NewReactions(db *gorm.DB) *Reactions {
	return &Reactions{db: db}
}

func reactionModel(kind models.ReactionKind, userID, videoID int) (any, error) {
	switch kind {
	case models.ReactionLike:
		return &models.Like{UserID: userID, VideoID: videoID}, nil
	case models.ReactionDislike:
		return &models.Dislike{UserID: userID, VideoID: videoID}, nil
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown reaction type %q", kind))
	}
}

func (r *Reactions) InsertIfAbsent(ctx context.Context, kind models.ReactionKind, userID, videoID int) (InsertResult, error) {
	row, err := reactionModel(kind, userID, videoID)
	if err != nil {
		return InsertResult{}, err
	}
	return insertIfAbsent(ctx, conn(ctx, r.db), row, string(kind))
}

// Delete removes the (user, video) row of the given kind and reports
// whether one existed.
func (r *Reactions) Delete(ctx context.Context, kind models.ReactionKind, userID, videoID int) (bool, error) {
	model, err := reactionModel(kind, 0, 0)
	if err != nil {
		return false, err
	}
	res := conn(ctx, r.db).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(model)
	if res.Error != nil {
		return false, apperror.Upstream("Failed to remove "+string(kind), res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Reactions) Exists(ctx context.Context, kind models.ReactionKind, userID, videoID int) (bool, error) {
	model, err := reactionModel(kind, 0, 0)
	if err != nil {
		return false, err
	}
	var n int64
	if err := conn(ctx, r.db).Model(model).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&n).Error; err != nil {
		return false, apperror.Upstream("Failed to load reaction", err)
	}
	return n > 0, nil
}

// Count returns the number of rows of the given kind for a video.
func (r *Reactions) Count(ctx context.Context, kind models.ReactionKind, videoID int) (int64, error) {
	model, err := reactionModel(kind, 0, 0)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := conn(ctx, r.db).Model(model).
		Where("video_id = ?", videoID).
		Count(&n).Error; err != nil {
		return 0, apperror.Upstream("Failed to count "+string(kind)+"s", err)
	}
	return n, nil
}

// WithReactionLock runs fn in a transaction holding a Postgres advisory lock
// on (userID, videoID). Reaction calls made with the context passed to fn use
// that transaction, so two lock holders for the same pair never interleave.
// The lock is released on commit or rollback.
func (r *Reactions) WithReactionLock(ctx context.Context, userID, videoID int, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(userID), int32(videoID)).Error; err != nil {
			return apperror.Upstream("Failed to lock reaction", err)
		}
		return fn(withTx(ctx, tx))
	})
}
