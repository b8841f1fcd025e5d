package bot

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/event"
	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-bot/internal/worker"
)

// Handler обработчик одного события.
type Handler interface {
	Handle(ctx context.Context, ev event.Event) error
}

// Bot читает события и раздаёт их по очередям пользователей.
type Bot struct {
	handler Handler
	pool    *worker.Pool
}

// New создаёт бота.
func New(handler Handler, pool *worker.Pool) *Bot {
	return &Bot{handler: handler, pool: pool}
}

// Run обрабатывает события до закрытия канала или отмены ctx.
// События одного пользователя обрабатываются строго по очереди.
func (b *Bot) Run(ctx context.Context, events <-chan event.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			err := b.pool.Submit(ctx, ev.Sender.ID, func(taskCtx context.Context) {
				b.dispatch(taskCtx, ev)
			})
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, worker.ErrStopped) {
					return nil
				}
				return err
			}
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, ev event.Event) {
	err := b.handler.Handle(ctx, ev)
	if err == nil {
		return
	}

	entry := logger.Get().WithError(err).WithFields(logrus.Fields{
		"trace_id": ev.TraceID,
		"user_id":  ev.Sender.ID,
		"event":    ev.Type,
		"code":     apperror.CodeOf(err),
	})

	switch apperror.CodeOf(err) {
	case apperror.ErrCodeNotFound, apperror.ErrCodeInvalidToken, apperror.ErrCodeDeliveryFailure:
		entry.Warn("bot: событие обработано с ошибкой")
	default:
		entry.Error("bot: не удалось обработать событие")
	}
}
