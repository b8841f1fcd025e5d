package notify

import (
	"context"
	"fmt"
)

// AudienceKind получатель уведомления.
type AudienceKind int

const (
	AudienceUser AudienceKind = iota
	AudienceModerators
	AudiencePublic
)

// Audience адресат уведомления: конкретный пользователь, группа модераторов или публичный канал.
type Audience struct {
	Kind   AudienceKind
	UserID int64
}

// User адресует уведомление пользователю.
func User(id int64) Audience {
	return Audience{Kind: AudienceUser, UserID: id}
}

// Moderators адресует уведомление группе модераторов.
func Moderators() Audience {
	return Audience{Kind: AudienceModerators}
}

// Public адресует уведомление публичному каналу.
func Public() Audience {
	return Audience{Kind: AudiencePublic}
}

func (a Audience) String() string {
	switch a.Kind {
	case AudienceModerators:
		return "moderators"
	case AudiencePublic:
		return "public"
	default:
		return fmt.Sprintf("user:%d", a.UserID)
	}
}

// Action кнопка под сообщением.
type Action struct {
	Label string
	Token string
}

// Message исходящее сообщение. ImageRef: непрозрачный идентификатор медиа транспорта.
type Message struct {
	Body     string
	ImageRef *string
	Actions  []Action
}

// HasImage сообщает, нужно ли отправлять сообщение с изображением.
func (m Message) HasImage() bool {
	return m.ImageRef != nil && *m.ImageRef != ""
}

// MessageRef ссылка на доставленное сообщение.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero сообщает, что ссылка не задана.
func (r MessageRef) IsZero() bool {
	return r.ChatID == 0 && r.MessageID == 0
}

// Delivery результат доставки.
type Delivery struct {
	Ref MessageRef
}

// Notifier единая точка отправки уведомлений для диалога и модерации.
type Notifier interface {
	Notify(ctx context.Context, to Audience, msg Message) (Delivery, error)
	ClearActions(ctx context.Context, ref MessageRef) error
	Acknowledge(ctx context.Context, eventRef string, text string) error
}

// Transport внешний транспорт сообщений.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, actions []Action) (MessageRef, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, actions []Action) (MessageRef, error)
	ClearActions(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
