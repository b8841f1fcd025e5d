package session

import (
	"context"
	"time"

	"github.com/ignatzorin/lostfound-bot/internal/models"
)

// State шаг диалога, на котором находится пользователь.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingDescription   State = "awaiting_description"
	StateAwaitingLocation      State = "awaiting_location"
	StateAwaitingImageDecision State = "awaiting_image_decision"
	StateAwaitingImage         State = "awaiting_image"
	StateAwaitingContact       State = "awaiting_contact"
)

// Draft накапливает поля заявки по мере диалога.
type Draft struct {
	Kind        models.ReportKind
	Description string
	Location    string
	ImageRef    *string
	Contact     string
}

// Session эфемерное состояние диалога одного пользователя.
type Session struct {
	UserID    int64
	State     State
	Draft     Draft
	UpdatedAt time.Time
}

// Store хранит по одной сессии на пользователя.
// Жизненный цикл: создаётся на первом событии, перезаписывается на каждом переходе,
// удаляется при завершении или отмене.
type Store interface {
	Get(ctx context.Context, userID int64) (Session, bool, error)
	Put(ctx context.Context, s Session) error
	Clear(ctx context.Context, userID int64) error
}
