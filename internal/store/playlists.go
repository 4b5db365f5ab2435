package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type Playlists struct {
	db *gorm.DB
}

func NewPlaylists(db *gorm.DB) *Playlists {
	return &Playlists{db: db}
}

func (p *Playlists) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := p.db.WithContext(ctx).Omit("Videos").Create(playlist).Error; err != nil {
		return apperror.Upstream("Failed to create playlist", err)
	}
	return nil
}

// Get loads a playlist with its videos.
func (p *Playlists) Get(ctx context.Context, id int) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := p.db.WithContext(ctx).Preload("Videos").Preload("Videos.Owner").
		First(&playlist, id).Error; err != nil {
		return nil, findErr(err, "Playlist not found", "playlist")
	}
	return &playlist, nil
}

func (p *Playlists) ListByOwner(ctx context.Context, ownerID int) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := p.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Preload("Videos").
		Order("updated_at desc").
		Find(&playlists).Error; err != nil {
		return nil, apperror.Upstream("Failed to fetch playlists", err)
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return playlists, nil
}

func (p *Playlists) Update(ctx context.Context, id int, req models.PlaylistRequest) error {
	updates := map[string]any{"name": req.Name, "description": req.Description}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if err := p.db.WithContext(ctx).Model(&models.Playlist{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return apperror.Upstream("Failed to update playlist", err)
	}
	return nil
}

func (p *Playlists) Delete(ctx context.Context, id int) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM playlist_videos WHERE playlist_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Playlist{}, id).Error
	})
	if err != nil {
		return apperror.Upstream("Failed to delete playlist", err)
	}
	return nil
}

// AddVideo is idempotent: the join table insert ignores existing pairs.
func (p *Playlists) AddVideo(ctx context.Context, playlistID, videoID int) error {
	err := p.db.WithContext(ctx).Exec(
		"INSERT INTO playlist_videos (playlist_id, video_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		playlistID, videoID,
	).Error
	if err != nil {
		return apperror.Upstream("Failed to add video to playlist", err)
	}
	return nil
}

func (p *Playlists) RemoveVideo(ctx context.Context, playlistID, videoID int) error {
	err := p.db.WithContext(ctx).Exec(
		"DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?",
		playlistID, videoID,
	).Error
	if err != nil {
		return apperror.Upstream("Failed to remove video from playlist", err)
	}
	return nil
}
