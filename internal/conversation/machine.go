// Package conversation ведёт пошаговый диалог заполнения заявки.
package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/event"
	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/moderation"
	"github.com/ignatzorin/lostfound-bot/internal/notify"
	"github.com/ignatzorin/lostfound-bot/internal/session"
)

// Submitter принимает готовую заявку на модерацию.
type Submitter interface {
	Submit(ctx context.Context, s moderation.Submission) (int64, error)
}

// Result итог обработки события.
type Result struct {
	From     session.State
	To       session.State
	Ignored  bool
	ReportID int64
}

// transition одна строка таблицы переходов.
type transition struct {
	next session.State
	// accepts дополнительно проверяет содержимое события, nil принимает всё.
	accepts func(event.Event) bool
	record  func(*session.Draft, event.Event)
	// finalize отправляет заявку вместо перехода в next.
	finalize bool
}

func hasText(ev event.Event) bool  { return strings.TrimSpace(ev.Text) != "" }
func hasPhoto(ev event.Event) bool { return ev.ImageRef != "" }

// transitions таблица состояние -> событие -> переход.
// Отсутствующая пара означает, что событие в этом состоянии игнорируется.
// KindSelected и CancelRequested обрабатываются в любом состоянии отдельно.
var transitions = map[session.State]map[event.Type]transition{
	session.StateAwaitingDescription: {
		event.TextReceived: {
			next:    session.StateAwaitingLocation,
			accepts: hasText,
			record:  func(d *session.Draft, ev event.Event) { d.Description = ev.Text },
		},
	},
	session.StateAwaitingLocation: {
		event.TextReceived: {
			next:    session.StateAwaitingImageDecision,
			accepts: hasText,
			record:  func(d *session.Draft, ev event.Event) { d.Location = ev.Text },
		},
	},
	session.StateAwaitingImageDecision: {
		event.ImageDeclined: {next: session.StateAwaitingContact},
		event.ImageAccepted: {next: session.StateAwaitingImage},
	},
	session.StateAwaitingImage: {
		event.PhotoReceived: {
			next:    session.StateAwaitingContact,
			accepts: hasPhoto,
			record: func(d *session.Draft, ev event.Event) {
				ref := ev.ImageRef
				d.ImageRef = &ref
			},
		},
	},
	session.StateAwaitingContact: {
		event.TextReceived: {
			next:     session.StateIdle,
			accepts:  hasText,
			record:   func(d *session.Draft, ev event.Event) { d.Contact = ev.Text },
			finalize: true,
		},
	},
}

// Machine конечный автомат диалога. События одного пользователя должны
// приходить последовательно, это обеспечивает пул воркеров.
type Machine struct {
	sessions  session.Store
	notifier  notify.Notifier
	submitter Submitter
}

// NewMachine создаёт автомат диалога.
func NewMachine(sessions session.Store, notifier notify.Notifier, submitter Submitter) *Machine {
	return &Machine{
		sessions:  sessions,
		notifier:  notifier,
		submitter: submitter,
	}
}

// Welcome сбрасывает незавершённый диалог и показывает главное меню.
func (m *Machine) Welcome(ctx context.Context, userID int64) error {
	if err := m.sessions.Clear(ctx, userID); err != nil {
		return fmt.Errorf("conversation: не удалось сбросить сессию: %w", err)
	}
	m.say(ctx, userID, textWelcome, notify.MainMenu())
	return nil
}

// Handle применяет событие пользователя к его сессии.
func (m *Machine) Handle(ctx context.Context, ev event.Event) (Result, error) {
	userID := ev.Sender.ID

	current, ok, err := m.sessions.Get(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("conversation: не удалось получить сессию: %w", err)
	}
	if !ok {
		current = session.Session{UserID: userID, State: session.StateIdle}
	}
	from := current.State

	switch ev.Type {
	case event.CancelRequested:
		if err := m.sessions.Clear(ctx, userID); err != nil {
			return Result{}, fmt.Errorf("conversation: не удалось сбросить сессию: %w", err)
		}
		m.say(ctx, userID, textCancel, notify.MainMenu())
		return Result{From: from, To: session.StateIdle}, nil

	case event.KindSelected:
		if !ev.Kind.IsValid() {
			return Result{From: from, To: from, Ignored: true}, nil
		}
		// Новый выбор всегда начинает заявку с чистого черновика.
		next := session.Session{
			UserID: userID,
			State:  session.StateAwaitingDescription,
			Draft:  session.Draft{Kind: ev.Kind},
		}
		if err := m.sessions.Put(ctx, next); err != nil {
			return Result{}, fmt.Errorf("conversation: не удалось сохранить сессию: %w", err)
		}
		m.prompt(ctx, next)
		return Result{From: from, To: next.State}, nil
	}

	tr, ok := transitions[from][ev.Type]
	if !ok || (tr.accepts != nil && !tr.accepts(ev)) {
		logger.Get().WithFields(logrus.Fields{
			"user_id": userID,
			"state":   from,
			"event":   ev.Type,
		}).Debug("conversation: событие проигнорировано")
		return Result{From: from, To: from, Ignored: true}, nil
	}

	if tr.record != nil {
		tr.record(&current.Draft, ev)
	}

	if tr.finalize {
		return m.finalize(ctx, current)
	}

	current.State = tr.next
	if err := m.sessions.Put(ctx, current); err != nil {
		return Result{}, fmt.Errorf("conversation: не удалось сохранить сессию: %w", err)
	}
	m.prompt(ctx, current)
	return Result{From: from, To: current.State}, nil
}

// finalize отправляет заполненную заявку на модерацию.
func (m *Machine) finalize(ctx context.Context, s session.Session) (Result, error) {
	submission := moderation.Submission{
		UserID:      s.UserID,
		Kind:        s.Draft.Kind,
		Description: s.Draft.Description,
		Location:    s.Draft.Location,
		ImageRef:    s.Draft.ImageRef,
		Contact:     s.Draft.Contact,
	}

	if err := submission.Validate(); err != nil {
		// Сюда можно попасть только при нарушении таблицы переходов.
		if clearErr := m.sessions.Clear(ctx, s.UserID); clearErr != nil {
			logger.Get().WithError(clearErr).WithField("user_id", s.UserID).Warn("conversation: не удалось сбросить сессию")
		}
		m.say(ctx, s.UserID, textApology, notify.MainMenu())
		return Result{From: session.StateAwaitingContact, To: session.StateIdle}, err
	}

	id, err := m.submitter.Submit(ctx, submission)
	if err != nil {
		m.say(ctx, s.UserID, textRetry, notify.CancelOnly())
		return Result{From: session.StateAwaitingContact, To: session.StateAwaitingContact},
			fmt.Errorf("conversation: не удалось отправить заявку: %w", err)
	}

	if err := m.sessions.Clear(ctx, s.UserID); err != nil {
		logger.Get().WithError(err).WithField("user_id", s.UserID).Warn("conversation: не удалось сбросить сессию")
	}
	m.say(ctx, s.UserID, textThanks, notify.MainMenu())

	return Result{From: session.StateAwaitingContact, To: session.StateIdle, ReportID: id}, nil
}

// prompt отправляет вопрос для состояния сессии.
func (m *Machine) prompt(ctx context.Context, s session.Session) {
	switch s.State {
	case session.StateAwaitingDescription:
		m.say(ctx, s.UserID, promptDescription, notify.CancelOnly())
	case session.StateAwaitingLocation:
		m.say(ctx, s.UserID, promptLocation, notify.CancelOnly())
	case session.StateAwaitingImageDecision:
		m.say(ctx, s.UserID, promptImageDecision, notify.ImageChoice())
	case session.StateAwaitingImage:
		m.say(ctx, s.UserID, promptImage, notify.CancelOnly())
	case session.StateAwaitingContact:
		if s.Draft.ImageRef != nil {
			m.say(ctx, s.UserID, promptContactPhoto, notify.CancelOnly())
		} else {
			m.say(ctx, s.UserID, promptContact, notify.CancelOnly())
		}
	}
}

// say отправляет сообщение пользователю. Ошибка доставки не прерывает диалог.
func (m *Machine) say(ctx context.Context, userID int64, text string, actions []notify.Action) {
	if _, err := m.notifier.Notify(ctx, notify.User(userID), notify.Message{Body: text, Actions: actions}); err != nil {
		logger.Get().WithError(err).WithField("user_id", userID).Warn("conversation: не удалось отправить сообщение")
	}
}
