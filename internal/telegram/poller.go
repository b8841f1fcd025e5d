package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/event"
	"github.com/ignatzorin/lostfound-bot/internal/logger"
)

// UpdatesSource long polling обновлений.
type UpdatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poller превращает обновления Telegram в события бота.
type Poller struct {
	source  UpdatesSource
	timeout time.Duration
}

// NewPoller создаёт поллер с таймаутом long polling.
func NewPoller(source UpdatesSource, timeout time.Duration) *Poller {
	return &Poller{source: source, timeout: timeout}
}

// Events возвращает поток событий. Канал закрывается после отмены ctx.
func (p *Poller) Events(ctx context.Context) <-chan event.Event {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(p.timeout.Seconds())
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := p.source.GetUpdatesChan(cfg)
	out := make(chan event.Event)

	go func() {
		defer close(out)
		defer p.source.StopReceivingUpdates()

		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := FromUpdate(u)
				if !ok {
					continue
				}
				logger.Get().WithFields(logrus.Fields{
					"update_id": u.UpdateID,
					"trace_id":  ev.TraceID,
					"user_id":   ev.Sender.ID,
					"event":     ev.Type,
				}).Debug("telegram: получено событие")

				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// FromUpdate разбирает обновление. false означает, что обновление не адресовано боту
// (посты каналов, правки сообщений и т.п.).
func FromUpdate(u tgbotapi.Update) (event.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		return fromCallback(u.CallbackQuery)
	case u.Message != nil:
		return fromMessage(u.Message)
	}
	return event.Event{}, false
}

func fromCallback(q *tgbotapi.CallbackQuery) (event.Event, bool) {
	if q.From == nil {
		return event.Event{}, false
	}

	ev := event.FromCallbackData(q.Data)
	ev.TraceID = uuid.NewString()
	ev.Sender = senderOf(q.From)
	ev.CallbackID = q.ID
	if q.Message != nil {
		ev.Message = event.MessageRef{MessageID: q.Message.MessageID}
		if q.Message.Chat != nil {
			ev.ChatID = q.Message.Chat.ID
			ev.Message.ChatID = q.Message.Chat.ID
		}
	}
	return ev, true
}

func fromMessage(m *tgbotapi.Message) (event.Event, bool) {
	if m.From == nil || m.Chat == nil {
		return event.Event{}, false
	}

	var ev event.Event
	switch {
	case m.IsCommand():
		ev = event.FromCommand(m.Command())
		if ev.Type == event.Unrecognized {
			// Незнакомая команда это обычный ответ пользователя, например "/help" в описании.
			ev = event.Event{Type: event.TextReceived, Text: m.Text}
		}
	case len(m.Photo) > 0:
		// Последний размер самый крупный.
		ev = event.Event{Type: event.PhotoReceived, ImageRef: m.Photo[len(m.Photo)-1].FileID}
	case m.Text != "":
		ev = event.Event{Type: event.TextReceived, Text: m.Text}
	default:
		ev = event.Event{Type: event.Unrecognized}
	}

	ev.TraceID = uuid.NewString()
	ev.Sender = senderOf(m.From)
	ev.ChatID = m.Chat.ID
	return ev, true
}

func senderOf(u *tgbotapi.User) event.Sender {
	return event.Sender{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
