package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки, добавленные через c.Error.
// Ошибки apperror отдаются с их кодом и сообщением, остальные маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"
		code := apperror.ErrCodeInternal

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			statusCode = appErr.HTTPStatus
			message = appErr.Message
			code = appErr.Code
		}

		entry := logger.Get().WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": statusCode,
		})
		if statusCode >= http.StatusInternalServerError {
			entry.Error("http: ошибка запроса")
		} else {
			entry.Warn("http: ошибка запроса")
		}

		c.JSON(statusCode, gin.H{"error": message, "code": code})
	}
}
