package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is both an account and a channel other users subscribe to.
type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null;size:50" json:"username"`
	Email    string `gorm:"unique;not null;size:100" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"` // URL from media storage
	Role     string `gorm:"not null;default:user;size:16" json:"role"`

	// Derived from the subscriptions table, written only after a recount.
	SubscribersCount int64 `gorm:"not null;default:0" json:"subscribersCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Avatar   string `json:"avatar"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest leaves nil fields unchanged; an empty string clears.
type UpdateProfileRequest struct {
	Bio    *string `json:"bio" binding:"omitempty,max=1000"`
	Avatar *string `json:"avatar"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
