package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

// Library holds a user's watch history and watch-later list.
type Library struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLibrary(db *gorm.DB) *Library {
	return &Library{db: db, now: time.Now}
}

// RecordView upserts the history row so a rewatch moves the video to the top.
func (l *Library) RecordView(ctx context.Context, userID, videoID int) error {
	entry := models.WatchHistory{UserID: userID, VideoID: videoID, WatchedAt: l.now().UTC()}
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
	}).Create(&entry).Error
	if err != nil {
		return apperror.Upstream("Failed to record watch history", err)
	}
	return nil
}

func (l *Library) History(ctx context.Context, userID, page, limit int) (models.Page[models.WatchHistory], error) {
	var total int64
	if err := l.db.WithContext(ctx).Model(&models.WatchHistory{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return models.Page[models.WatchHistory]{}, apperror.Upstream("Failed to count history", err)
	}

	var entries []models.WatchHistory
	if err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Video").Preload("Video.Owner").
		Order("watched_at desc").
		Scopes(paginate(page, limit)).
		Find(&entries).Error; err != nil {
		return models.Page[models.WatchHistory]{}, apperror.Upstream("Failed to fetch history", err)
	}
	return models.NewPage(entries, total, page, limit), nil
}

func (l *Library) RemoveFromHistory(ctx context.Context, userID, videoID int) error {
	if err := l.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&models.WatchHistory{}).Error; err != nil {
		return apperror.Upstream("Failed to remove history entry", err)
	}
	return nil
}

func (l *Library) ClearHistory(ctx context.Context, userID int) error {
	if err := l.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&models.WatchHistory{}).Error; err != nil {
		return apperror.Upstream("Failed to clear history", err)
	}
	return nil
}

func (l *Library) SaveForLater(ctx context.Context, userID, videoID int) (InsertResult, error) {
	return insertIfAbsent(ctx, l.db, &models.WatchLater{UserID: userID, VideoID: videoID}, "watch later entry")
}

func (l *Library) RemoveFromLater(ctx context.Context, userID, videoID int) (bool, error) {
	res := l.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&models.WatchLater{})
	if res.Error != nil {
		return false, apperror.Upstream("Failed to remove watch later entry", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (l *Library) WatchLater(ctx context.Context, userID int) ([]models.WatchLater, error) {
	var entries []models.WatchLater
	if err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Video").Preload("Video.Owner").
		Order("created_at desc").
		Find(&entries).Error; err != nil {
		return nil, apperror.Upstream("Failed to fetch watch later", err)
	}
	if entries == nil {
		entries = []models.WatchLater{}
	}
	return entries, nil
}
