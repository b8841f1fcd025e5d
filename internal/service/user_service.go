package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/event"
	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/models"
)

// knownUserTTL сколько помним, что пользователь уже сохранён.
const knownUserTTL = 6 * time.Hour

// UserRepository описывает зависимости UserService от слоя хранилища.
type UserRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, user *models.User) error
}

// UserService регистрирует пользователей бота. Первая запись побеждает:
// последующие изменения имени в Telegram не перезаписывают сохранённые данные.
type UserService struct {
	repo  UserRepository
	cache *CacheService
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserRepository, cache *CacheService) *UserService {
	return &UserService{repo: repo, cache: cache}
}

// Register сохраняет отправителя, если он ещё не известен.
func (s *UserService) Register(ctx context.Context, sender event.Sender) error {
	key := userCacheKey(sender.ID)
	if _, ok := s.cache.Get(key); ok {
		return nil
	}

	exists, err := s.repo.Exists(ctx, sender.ID)
	if err != nil {
		return fmt.Errorf("user service: не удалось проверить пользователя %d: %w", sender.ID, err)
	}

	if !exists {
		user := &models.User{
			ID:        sender.ID,
			Username:  optional(sender.Username),
			FirstName: optional(sender.FirstName),
			LastName:  optional(sender.LastName),
		}
		if err := s.repo.Save(ctx, user); err != nil {
			return fmt.Errorf("user service: не удалось сохранить пользователя %d: %w", sender.ID, err)
		}
		logger.Get().WithFields(logrus.Fields{
			"user_id":  sender.ID,
			"username": sender.Username,
		}).Info("user service: новый пользователь")
	}

	s.cache.Set(key, true, knownUserTTL)
	return nil
}

func userCacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
