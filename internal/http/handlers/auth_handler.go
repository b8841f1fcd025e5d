package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-bot/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-bot/internal/service"
)

// Authenticator вход модератора.
type Authenticator interface {
	Login(ctx context.Context, in service.LoginInput) (*service.TokenPair, error)
}

// AuthHandler предоставляет HTTP слой для логина.
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pair)
}
