package notify

import (
	"context"
	"fmt"

	"github.com/ignatzorin/lostfound-bot/internal/pkg/apperror"
)

// Dispatcher реализует Notifier поверх транспорта. Собственного состояния не имеет.
type Dispatcher struct {
	transport       Transport
	moderatorChatID int64
	channelChatID   int64
}

// NewDispatcher создаёт диспетчер уведомлений.
func NewDispatcher(transport Transport, moderatorChatID, channelChatID int64) *Dispatcher {
	return &Dispatcher{
		transport:       transport,
		moderatorChatID: moderatorChatID,
		channelChatID:   channelChatID,
	}
}

// Notify доставляет сообщение адресату: с изображением, если оно есть, иначе текстом.
func (d *Dispatcher) Notify(ctx context.Context, to Audience, msg Message) (Delivery, error) {
	chatID := d.resolve(to)

	var (
		ref MessageRef
		err error
	)
	if msg.HasImage() {
		ref, err = d.transport.SendPhoto(ctx, chatID, *msg.ImageRef, msg.Body, msg.Actions)
	} else {
		ref, err = d.transport.SendText(ctx, chatID, msg.Body, msg.Actions)
	}
	if err != nil {
		return Delivery{}, apperror.Wrap(err, apperror.ErrCodeDeliveryFailure,
			fmt.Sprintf("не удалось доставить сообщение (%s)", to))
	}

	return Delivery{Ref: ref}, nil
}

// ClearActions убирает кнопки с ранее отправленного сообщения.
func (d *Dispatcher) ClearActions(ctx context.Context, ref MessageRef) error {
	if ref.IsZero() {
		return nil
	}
	if err := d.transport.ClearActions(ctx, ref.ChatID, ref.MessageID); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDeliveryFailure, "не удалось убрать кнопки")
	}
	return nil
}

// Acknowledge закрывает нажатие кнопки. Пустой eventRef означает, что закрывать нечего.
func (d *Dispatcher) Acknowledge(ctx context.Context, eventRef string, text string) error {
	if eventRef == "" {
		return nil
	}
	if err := d.transport.AnswerCallback(ctx, eventRef, text); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDeliveryFailure, "не удалось ответить на нажатие")
	}
	return nil
}

func (d *Dispatcher) resolve(to Audience) int64 {
	switch to.Kind {
	case AudienceModerators:
		return d.moderatorChatID
	case AudiencePublic:
		return d.channelChatID
	default:
		return to.UserID
	}
}
