package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/vidtube/backend/internal/apperror"
	"github.com/emilythestrangee/vidtube/backend/internal/auth"
	"github.com/emilythestrangee/vidtube/backend/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id int) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int, req models.UpdateProfileRequest) (*models.User, error)
}

type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

type AuthHandler struct {
	users  UserStore
	tokens TokenIssuer
}

func NewAuthHandler(users UserStore, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user := models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashed,
		Avatar:   input.Avatar,
		Role:     models.RoleUser,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		_ = c.Error(err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, &user)
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := bindJSON(c, &input); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.users.ByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			err = apperror.Unauthorized("Invalid credentials")
		}
		_ = c.Error(err)
		return
	}
	if !auth.CheckPassword(user.Password, input.Password) {
		_ = c.Error(apperror.Unauthorized("Invalid credentials"))
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: *user})
}
