package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type Comments struct {
	db *gorm.DB
}

func NewComments(db *gorm.DB) *Comments {
	return &Comments{db: db}
}

// List returns one page of a video's comments, newest first.
func (c *Comments) List(ctx context.Context, videoID, page, limit int) (models.Page[models.Comment], error) {
	var total int64
	if err := c.db.WithContext(ctx).Model(&models.Comment{}).
		Where("video_id = ?", videoID).Count(&total).Error; err != nil {
		return models.Page[models.Comment]{}, apperror.Upstream("Failed to count comments", err)
	}

	var comments []models.Comment
	if err := c.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Preload("Author").
		Order("created_at desc").Order("id desc").
		Scopes(paginate(page, limit)).
		Find(&comments).Error; err != nil {
		return models.Page[models.Comment]{}, apperror.Upstream("Failed to fetch comments", err)
	}
	return models.NewPage(comments, total, page, limit), nil
}

func (c *Comments) Get(ctx context.Context, id int) (*models.Comment, error) {
	var comment models.Comment
	if err := c.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, findErr(err, "Comment not found", "comment")
	}
	return &comment, nil
}

func (c *Comments) Create(ctx context.Context, comment *models.Comment) error {
	if err := c.db.WithContext(ctx).Omit("Author").Create(comment).Error; err != nil {
		return apperror.Upstream("Failed to create comment", err)
	}
	return nil
}

func (c *Comments) UpdateBody(ctx context.Context, id int, body string) error {
	if err := c.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		Update("body", body).Error; err != nil {
		return apperror.Upstream("Failed to update comment", err)
	}
	return nil
}

func (c *Comments) Delete(ctx context.Context, id int) error {
	if err := c.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return apperror.Upstream("Failed to delete comment", err)
	}
	return nil
}

func (c *Comments) Count(ctx context.Context, videoID int) (int64, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(&models.Comment{}).
		Where("video_id = ?", videoID).Count(&n).Error; err != nil {
		return 0, apperror.Upstream("Failed to count comments", err)
	}
	return n, nil
}
