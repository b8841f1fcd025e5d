package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-bot/internal/http/middleware"
)

var (
	// ErrModeratorNotFound модератор не найден в контексте запроса
	ErrModeratorNotFound = errors.New("модератор не найден в контексте")

	// ErrInvalidID некорректный идентификатор в пути
	ErrInvalidID = errors.New("неверный формат идентификатора")
)

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CurrentModerator извлекает имя модератора из контекста.
func CurrentModerator(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextModeratorKey)
	if !exists {
		return "", ErrModeratorNotFound
	}

	name, ok := raw.(string)
	if !ok || name == "" {
		return "", ErrModeratorNotFound
	}

	return name, nil
}

// ParseIDParam читает положительный числовой идентификатор из пути.
func ParseIDParam(c *gin.Context, paramName string) (int64, error) {
	param := c.Param(paramName)
	if param == "" {
		return 0, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

// RespondError отправляет ответ с ошибкой.
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// RespondUnauthorized отправляет 401.
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondBadRequest отправляет 400.
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}
