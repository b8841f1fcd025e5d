package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextModeratorKey ключ имени модератора в gin.Context.
const ContextModeratorKey = "moderator"

// TokenAuthenticator проверяет access токен и возвращает имя модератора.
type TokenAuthenticator interface {
	Authenticate(token string) (string, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "требуется авторизация"})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		moderator, err := auth.Authenticate(raw)
		if err != nil || moderator == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен невалиден"})
			return
		}

		c.Set(ContextModeratorKey, moderator)
		c.Next()
	}
}
