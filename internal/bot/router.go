// Package bot направляет входящие события в диалог и модерацию.
package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/conversation"
	"github.com/ignatzorin/lostfound-bot/internal/event"
	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/moderation"
	"github.com/ignatzorin/lostfound-bot/internal/notify"
)

const textForbidden = "Это действие доступно только модераторам."

// Conversation автомат диалога пользователя.
type Conversation interface {
	Handle(ctx context.Context, ev event.Event) (conversation.Result, error)
	Welcome(ctx context.Context, userID int64) error
}

// Moderation координатор модерации.
type Moderation interface {
	DecideToken(ctx context.Context, token, moderator string, message notify.MessageRef, callbackID string) (moderation.Outcome, error)
	ListPending(ctx context.Context) ([]models.Report, error)
}

// Users регистрация пользователей.
type Users interface {
	Register(ctx context.Context, sender event.Sender) error
}

// Router выбирает обработчик по типу события.
type Router struct {
	conversation Conversation
	moderation   Moderation
	users        Users
	notifier     notify.Notifier
	adminChatID  int64
}

// NewRouter создаёт маршрутизатор событий.
func NewRouter(conv Conversation, mod Moderation, users Users, notifier notify.Notifier, adminChatID int64) *Router {
	return &Router{
		conversation: conv,
		moderation:   mod,
		users:        users,
		notifier:     notifier,
		adminChatID:  adminChatID,
	}
}

// Handle обрабатывает одно событие.
func (r *Router) Handle(ctx context.Context, ev event.Event) error {
	switch ev.Type {
	case event.StartRequested:
		return r.start(ctx, ev)

	case event.PendingRequested:
		return r.pending(ctx, ev)

	case event.KindSelected,
		event.TextReceived,
		event.PhotoReceived,
		event.ImageAccepted,
		event.ImageDeclined,
		event.CancelRequested:
		return r.converse(ctx, ev)

	case event.DecisionRequested:
		return r.decide(ctx, ev)

	case event.Unrecognized:
		r.ack(ctx, ev, "")
		return nil

	default:
		return fmt.Errorf("bot: неизвестный тип события %d", ev.Type)
	}
}

func (r *Router) start(ctx context.Context, ev event.Event) error {
	if !r.isPrivate(ev) {
		return nil
	}
	r.register(ctx, ev)
	return r.conversation.Welcome(ctx, ev.Sender.ID)
}

// register сохраняет отправителя до того, как его заявка попадёт в базу.
// Ошибка не прерывает диалог: следующее событие повторит попытку.
func (r *Router) register(ctx context.Context, ev event.Event) {
	if err := r.users.Register(ctx, ev.Sender); err != nil {
		r.log(ev).WithError(err).Error("bot: не удалось зарегистрировать пользователя")
	}
}

func (r *Router) pending(ctx context.Context, ev event.Event) error {
	if ev.ChatID != r.adminChatID {
		r.log(ev).Warn("bot: /pending вне чата модераторов")
		return nil
	}

	reports, err := r.moderation.ListPending(ctx)
	if err != nil {
		return err
	}

	_, err = r.notifier.Notify(ctx, notify.Moderators(), notify.Message{Body: moderation.PendingText(reports)})
	return err
}

func (r *Router) converse(ctx context.Context, ev event.Event) error {
	// Диалог ведётся только в личке, кнопки в группе модераторов сюда не относятся.
	if !r.isPrivate(ev) {
		r.ack(ctx, ev, "")
		return nil
	}

	// Пользователь мог не присылать /start, а заявка ссылается на users.
	r.register(ctx, ev)

	res, err := r.conversation.Handle(ctx, ev)
	r.ack(ctx, ev, "")
	if err != nil {
		return err
	}

	if res.ReportID != 0 {
		r.log(ev).WithField("report_id", res.ReportID).Info("bot: заявка отправлена на модерацию")
	}
	return nil
}

func (r *Router) decide(ctx context.Context, ev event.Event) error {
	if ev.ChatID != r.adminChatID {
		r.ack(ctx, ev, textForbidden)
		r.log(ev).Warn("bot: решение по заявке не из чата модераторов")
		return nil
	}

	outcome, err := r.moderation.DecideToken(ctx, ev.Token, moderatorName(ev.Sender), notify.MessageRef{
		ChatID:    ev.Message.ChatID,
		MessageID: ev.Message.MessageID,
	}, ev.CallbackID)
	if err != nil {
		return err
	}

	r.log(ev).WithFields(logrus.Fields{
		"result": outcome.Result,
		"status": outcome.Status,
	}).Info("bot: решение модератора обработано")
	return nil
}

func (r *Router) isPrivate(ev event.Event) bool {
	return ev.ChatID == ev.Sender.ID
}

func (r *Router) ack(ctx context.Context, ev event.Event, text string) {
	if !ev.IsCallback() {
		return
	}
	if err := r.notifier.Acknowledge(ctx, ev.CallbackID, text); err != nil {
		r.log(ev).WithError(err).Debug("bot: не удалось ответить на нажатие")
	}
}

func (r *Router) log(ev event.Event) *logrus.Entry {
	return logger.Get().WithFields(logrus.Fields{
		"trace_id": ev.TraceID,
		"user_id":  ev.Sender.ID,
		"chat_id":  ev.ChatID,
		"event":    ev.Type,
	})
}

// moderatorName подпись модератора для аудита. Без username и имени используется id.
func moderatorName(s event.Sender) string {
	if name := s.Name(); name != "" {
		return name
	}
	return strconv.FormatInt(s.ID, 10)
}
