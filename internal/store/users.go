package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/database"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create inserts a new account; a taken username or email is a Conflict.
func (u *Users) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.Conflict("Username or email already exists")
		}
		return apperror.Upstream("Failed to create user", err)
	}
	return nil
}

func (u *Users) Get(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, findErr(err, "User not found", "user")
	}
	return &user, nil
}

func (u *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, findErr(err, "User not found", "user")
	}
	return &user, nil
}

func (u *Users) Exists(ctx context.Context, id int) (bool, error) {
	var n int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperror.Upstream("Failed to load user", err)
	}
	return n > 0, nil
}

func (u *Users) UpdateProfile(ctx context.Context, id int, req models.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]any{}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if len(updates) > 0 {
		if err := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, apperror.Upstream("Failed to update profile", err)
		}
	}
	return u.Get(ctx, id)
}

func (u *Users) UpdateSubscribersCount(ctx context.Context, id int, count int64) error {
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("subscribers_count", count).Error
	if err != nil {
		return apperror.Upstream("Failed to update subscriber count", err)
	}
	return nil
}
