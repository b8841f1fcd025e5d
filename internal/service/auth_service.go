package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/pkg/apperror"
)

// AuthService проверяет вход модератора в админский API.
// Учётная запись одна и задаётся через ADMIN_USERNAME / ADMIN_PASSWORD_HASH.
type AuthService struct {
	username     string
	passwordHash []byte
	tokenManager *TokenManager
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Username string
	Password string
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(username, passwordHash string, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokenManager: tokenManager,
	}
}

// Login проверяет учётные данные и возвращает токен.
func (s *AuthService) Login(_ context.Context, in LoginInput) (*TokenPair, error) {
	if len(s.passwordHash) == 0 {
		return nil, apperror.ErrUnauthorized
	}

	username := strings.TrimSpace(in.Username)
	sameUser := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	// Хеш сравниваем всегда, чтобы время ответа не выдавало логин.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(in.Password))
	if !sameUser || passErr != nil {
		logger.Get().WithField("username", username).Warn("auth service: неудачная попытка входа")
		return nil, apperror.ErrInvalidCredentials
	}

	pair, err := s.tokenManager.Generate(s.username)
	if err != nil {
		return nil, fmt.Errorf("auth service: не удалось выпустить токен: %w", err)
	}

	logger.Get().WithField("username", username).Info("auth service: модератор вошёл в админский API")
	return pair, nil
}

// Authenticate проверяет access токен и возвращает имя модератора.
func (s *AuthService) Authenticate(token string) (string, error) {
	subject, role, err := s.tokenManager.ParseAccess(token)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeUnauthorized, "недействительный токен")
	}
	if role != RoleModerator {
		return "", apperror.New(apperror.ErrCodeUnauthorized, "недостаточно прав")
	}
	return subject, nil
}
