package models

import "time"

// User описывает пользователя бота. Запись создаётся один раз и больше не обновляется.
type User struct {
	ID        int64     `db:"user_id" json:"id"`
	Username  *string   `db:"username" json:"username,omitempty"`
	FirstName *string   `db:"first_name" json:"first_name,omitempty"`
	LastName  *string   `db:"last_name" json:"last_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName возвращает имя для логов и подписи модератора.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return ""
}
