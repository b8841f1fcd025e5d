package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/repository/common"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = fmt.Errorf("user %w", common.ErrNotFound)

// UserRepository отвечает за работу с таблицей users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Exists проверяет, сохранён ли пользователь.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	query := r.db.Rebind(`SELECT COUNT(1) FROM users WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return false, fmt.Errorf("user repository: exists %w", err)
	}
	return count > 0, nil
}

// Save сохраняет пользователя, если его ещё нет. Существующая запись не обновляется.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (user_id, username, first_name, last_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`)

	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.FirstName, user.LastName); err != nil {
		return fmt.Errorf("user repository: save %w", err)
	}
	return nil
}

// GetByID возвращает пользователя по идентификатору Telegram.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "user_id", id, ErrUserNotFound)
}
