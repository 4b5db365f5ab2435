package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type Videos struct {
	db *gorm.DB
}

func NewVideos(db *gorm.DB) *Videos {
	return &Videos{db: db}
}

// VideoFilter narrows List. Zero values mean no filter.
type VideoFilter struct {
	Query   string
	OwnerID int
}

func (v *Videos) Get(ctx context.Context, id int) (*models.Video, error) {
	var video models.Video
	if err := v.db.WithContext(ctx).Preload("Owner").First(&video, id).Error; err != nil {
		return nil, findErr(err, "Video not found", "video")
	}
	return &video, nil
}

func (v *Videos) Exists(ctx context.Context, id int) (bool, error) {
	var n int64
	if err := v.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperror.Upstream("Failed to load video", err)
	}
	return n > 0, nil
}

func (v *Videos) List(ctx context.Context, filter VideoFilter, page, limit int) (models.Page[models.Video], error) {
	q := v.db.WithContext(ctx).Model(&models.Video{})
	if s := strings.TrimSpace(filter.Query); s != "" {
		q = q.Where("title ILIKE ?", "%"+escapeLike(s)+"%")
	}
	if filter.OwnerID > 0 {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	// Count and Find both reuse the filtered chain.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return models.Page[models.Video]{}, apperror.Upstream("Failed to count videos", err)
	}

	var videos []models.Video
	if err := q.Preload("Owner").
		Order("created_at desc").Order("id desc").
		Scopes(paginate(page, limit)).
		Find(&videos).Error; err != nil {
		return models.Page[models.Video]{}, apperror.Upstream("Failed to fetch videos", err)
	}
	return models.NewPage(videos, total, page, limit), nil
}

func (v *Videos) Create(ctx context.Context, video *models.Video) error {
	if err := v.db.WithContext(ctx).Create(video).Error; err != nil {
		return apperror.Upstream("Failed to create video", err)
	}
	return nil
}

// VideoChanges holds the fields an owner may edit. Nil means unchanged.
type VideoChanges struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
}

// UpdateDetails writes only the edited columns. Views and the counters are
// never part of the statement, so a concurrent toggle is not overwritten.
func (v *Videos) UpdateDetails(ctx context.Context, id int, changes VideoChanges) error {
	updates := map[string]any{}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.ThumbnailURL != nil {
		updates["thumbnail_url"] = *changes.ThumbnailURL
	}
	if len(updates) == 0 {
		return nil
	}

	res := v.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperror.Upstream("Failed to update video", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("Video not found")
	}
	return nil
}

// Delete removes the video and every row that references it.
func (v *Videos) Delete(ctx context.Context, id int) error {
	err := v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.Like{}, &models.Dislike{}, &models.Comment{},
			&models.WatchHistory{}, &models.WatchLater{},
		} {
			if err := tx.Where("video_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM playlist_videos WHERE video_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Video{}, id).Error
	})
	if err != nil {
		return apperror.Upstream("Failed to delete video", err)
	}
	return nil
}

func (v *Videos) IncrementViews(ctx context.Context, id int) error {
	err := v.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return apperror.Upstream("Failed to record view", err)
	}
	return nil
}

// UpdateReactionCounts overwrites both reaction counters with freshly
// counted values.
func (v *Videos) UpdateReactionCounts(ctx context.Context, id int, likes, dislikes int64) error {
	err := v.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).
		UpdateColumns(map[string]any{"likes_count": likes, "dislikes_count": dislikes}).Error
	if err != nil {
		return apperror.Upstream("Failed to update reaction counts", err)
	}
	return nil
}

func (v *Videos) UpdateCommentsCount(ctx context.Context, id int, count int64) error {
	err := v.db.WithContext(ctx).Model(&models.Video{}).Where("id = ?", id).
		UpdateColumn("comments_count", count).Error
	if err != nil {
		return apperror.Upstream("Failed to update comment count", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
