package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-bot/internal/logger"
	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/notify"
	"github.com/ignatzorin/lostfound-bot/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-bot/internal/repository/common"
)

// События для панели модераторов.
const (
	EventReportSubmitted = "report.submitted"
	EventReportDecided   = "report.decided"
)

// ReportStore описывает хранилище заявок, которое нужно координатору.
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	TransitionStatus(ctx context.Context, id int64, from, to models.ReportStatus, decidedBy string, at time.Time) (bool, error)
	SetModerationMessage(ctx context.Context, id int64, chatID int64, messageID int) error
	ListPending(ctx context.Context) ([]models.Report, error)
}

// Publisher рассылает события модерации подписчикам (панель модераторов).
type Publisher interface {
	Broadcast(event string, data any) error
}

// Submission готовая заявка из диалога.
type Submission struct {
	UserID      int64
	Kind        models.ReportKind
	Description string
	Location    string
	ImageRef    *string
	Contact     string
}

// Validate проверяет, что все обязательные поля собраны. Изображение необязательно.
func (s Submission) Validate() error {
	var missing []string
	if !s.Kind.IsValid() {
		missing = append(missing, "kind")
	}
	if strings.TrimSpace(s.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(s.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(s.Contact) == "" {
		missing = append(missing, "contact")
	}
	if len(missing) > 0 {
		return apperror.Wrap(fmt.Errorf("не хватает полей: %s", strings.Join(missing, ", ")),
			apperror.ErrCodeIncompleteSession, apperror.ErrIncompleteSession.Message)
	}
	return nil
}

// Decision решение модератора по заявке.
type Decision struct {
	ReportID   int64
	Verb       Verb
	Moderator  string
	Message    notify.MessageRef
	CallbackID string
}

// Result итог обработки решения.
type Result string

const (
	ResultApplied        Result = "applied"
	ResultAlreadyDecided Result = "already_decided"
)

// Outcome результат Decide.
type Outcome struct {
	Result Result
	Status models.ReportStatus
	Report *models.Report
}

// Coordinator ведёт заявку от отправки до решения модератора.
// Первое успешно применённое решение окончательно, остальные только подтверждаются.
type Coordinator struct {
	reports   ReportStore
	notifier  notify.Notifier
	publisher Publisher
	now       func() time.Time
}

// NewCoordinator создаёт координатор модерации.
func NewCoordinator(reports ReportStore, notifier notify.Notifier) *Coordinator {
	return &Coordinator{
		reports:  reports,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetPublisher подключает рассылку событий в панель модераторов.
func (c *Coordinator) SetPublisher(p Publisher) {
	c.publisher = p
}

// Submit сохраняет заявку в статусе pending и отправляет модераторам запрос решения.
// Ошибка доставки не откатывает сохранённую заявку.
func (c *Coordinator) Submit(ctx context.Context, s Submission) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}

	report := &models.Report{
		UserID:      s.UserID,
		Kind:        s.Kind,
		Description: s.Description,
		Location:    s.Location,
		ImageRef:    s.ImageRef,
		Contact:     s.Contact,
	}
	if err := c.reports.Create(ctx, report); err != nil {
		return 0, fmt.Errorf("moderation: не удалось сохранить заявку: %w", err)
	}

	log := logger.Get().WithFields(logrus.Fields{"report_id": report.ID, "user_id": report.UserID})
	log.Info("moderation: заявка сохранена")

	delivery, err := c.notifier.Notify(ctx, notify.Moderators(), notify.Message{
		Body:     moderatorText(report),
		ImageRef: report.ImageRef,
		Actions:  DecisionActions(report.ID),
	})
	if err != nil {
		log.WithError(err).Error("moderation: не удалось отправить заявку модераторам")
	} else if err := c.reports.SetModerationMessage(ctx, report.ID, delivery.Ref.ChatID, delivery.Ref.MessageID); err != nil {
		log.WithError(err).Warn("moderation: не удалось запомнить сообщение модераторам")
	} else {
		chatID, messageID := delivery.Ref.ChatID, delivery.Ref.MessageID
		report.ModerationChatID = &chatID
		report.ModerationMessageID = &messageID
	}

	c.publish(EventReportSubmitted, report)
	return report.ID, nil
}

// DecideToken разбирает данные кнопки и применяет решение.
// Некорректный токен подтверждается общим сообщением об ошибке без изменений в хранилище.
func (c *Coordinator) DecideToken(ctx context.Context, token, moderator string, message notify.MessageRef, callbackID string) (Outcome, error) {
	verb, id, err := ParseToken(token)
	if err != nil {
		c.acknowledge(ctx, callbackID, textInvalidToken)
		return Outcome{}, err
	}

	return c.Decide(ctx, Decision{
		ReportID:   id,
		Verb:       verb,
		Moderator:  moderator,
		Message:    message,
		CallbackID: callbackID,
	})
}

// Decide применяет решение модератора.
// Проверка и смена статуса выполняются одним compare-and-set в хранилище,
// поэтому из двух одновременных решений применится ровно одно.
func (c *Coordinator) Decide(ctx context.Context, d Decision) (Outcome, error) {
	target, ok := d.Verb.Status()
	if !ok {
		c.acknowledge(ctx, d.CallbackID, textInvalidToken)
		return Outcome{}, apperror.Wrap(fmt.Errorf("действие %q", d.Verb), apperror.ErrCodeInvalidToken, apperror.ErrInvalidToken.Message)
	}

	log := logger.Get().WithFields(logrus.Fields{
		"report_id": d.ReportID,
		"verb":      d.Verb,
		"moderator": d.Moderator,
	})

	report, err := c.reports.GetByID(ctx, d.ReportID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.acknowledge(ctx, d.CallbackID, textNotFound)
			return Outcome{}, apperror.Wrap(err, apperror.ErrCodeNotFound, fmt.Sprintf("заявление %d не найдено", d.ReportID))
		}
		c.acknowledge(ctx, d.CallbackID, textInternalError)
		return Outcome{}, fmt.Errorf("moderation: не удалось получить заявку %d: %w", d.ReportID, err)
	}

	if report.Status.IsTerminal() {
		return c.alreadyDecided(ctx, d, report), nil
	}
	if !report.Status.CanTransitionTo(target) {
		c.acknowledge(ctx, d.CallbackID, textInternalError)
		return Outcome{}, fmt.Errorf("moderation: недопустимый переход %s -> %s для заявки %d", report.Status, target, report.ID)
	}

	decidedAt := c.now().UTC()
	applied, err := c.reports.TransitionStatus(ctx, report.ID, models.ReportStatusPending, target, d.Moderator, decidedAt)
	if err != nil {
		c.acknowledge(ctx, d.CallbackID, textInternalError)
		return Outcome{}, fmt.Errorf("moderation: не удалось обновить статус заявки %d: %w", report.ID, err)
	}
	if !applied {
		// Другое решение успело раньше.
		current, err := c.reports.GetByID(ctx, report.ID)
		if err != nil {
			c.acknowledge(ctx, d.CallbackID, textInternalError)
			return Outcome{}, fmt.Errorf("moderation: не удалось перечитать заявку %d: %w", report.ID, err)
		}
		return c.alreadyDecided(ctx, d, current), nil
	}

	report.Status = target
	report.DecidedBy = &d.Moderator
	report.DecidedAt = &decidedAt
	log.Info("moderation: решение применено")

	c.fanOut(ctx, d, report, log)

	return Outcome{Result: ResultApplied, Status: target, Report: report}, nil
}

// ListPending возвращает заявления, ожидающие решения.
func (c *Coordinator) ListPending(ctx context.Context) ([]models.Report, error) {
	reports, err := c.reports.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("moderation: не удалось получить список заявлений: %w", err)
	}
	return reports, nil
}

// Get возвращает заявление по идентификатору.
func (c *Coordinator) Get(ctx context.Context, id int64) (*models.Report, error) {
	report, err := c.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, apperror.Wrap(err, apperror.ErrCodeNotFound, fmt.Sprintf("заявление %d не найдено", id))
		}
		return nil, fmt.Errorf("moderation: не удалось получить заявку %d: %w", id, err)
	}
	return report, nil
}

// fanOut рассылает итог решения. Ошибки доставки только логируются: статус уже зафиксирован.
func (c *Coordinator) fanOut(ctx context.Context, d Decision, report *models.Report, log *logrus.Entry) {
	switch report.Status {
	case models.ReportStatusApproved:
		if _, err := c.notifier.Notify(ctx, notify.Public(), notify.Message{
			Body:     publicText(report),
			ImageRef: report.ImageRef,
		}); err != nil {
			log.WithError(err).Error("moderation: не удалось опубликовать заявку в канале")
		}
		if _, err := c.notifier.Notify(ctx, notify.User(report.UserID), notify.Message{Body: textApprovedToUser}); err != nil {
			log.WithError(err).Warn("moderation: не удалось уведомить автора об одобрении")
		}
	case models.ReportStatusRejected:
		if _, err := c.notifier.Notify(ctx, notify.User(report.UserID), notify.Message{Body: textRejectedToUser}); err != nil {
			log.WithError(err).Warn("moderation: не удалось уведомить автора об отклонении")
		}
	}

	if err := c.notifier.ClearActions(ctx, moderationRef(d, report)); err != nil {
		log.WithError(err).Warn("moderation: не удалось убрать кнопки")
	}

	c.acknowledge(ctx, d.CallbackID, appliedAck(report.Status))
	c.publish(EventReportDecided, report)
}

func (c *Coordinator) alreadyDecided(ctx context.Context, d Decision, report *models.Report) Outcome {
	logger.Get().WithFields(logrus.Fields{
		"report_id": report.ID,
		"status":    report.Status,
		"moderator": d.Moderator,
	}).Info("moderation: решение по заявке уже принято")

	c.acknowledge(ctx, d.CallbackID, alreadyDecidedAck(report.Status))
	return Outcome{Result: ResultAlreadyDecided, Status: report.Status, Report: report}
}

func (c *Coordinator) acknowledge(ctx context.Context, callbackID, text string) {
	if err := c.notifier.Acknowledge(ctx, callbackID, text); err != nil {
		logger.Get().WithError(err).Warn("moderation: не удалось ответить модератору")
	}
}

func (c *Coordinator) publish(event string, report *models.Report) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Broadcast(event, report); err != nil {
		logger.Get().WithError(err).WithField("event", event).Warn("moderation: не удалось отправить событие в панель")
	}
}

// moderationRef выбирает сообщение модераторам: из события, либо сохранённое при отправке.
func moderationRef(d Decision, report *models.Report) notify.MessageRef {
	if !d.Message.IsZero() {
		return d.Message
	}
	if report.ModerationChatID != nil && report.ModerationMessageID != nil {
		return notify.MessageRef{ChatID: *report.ModerationChatID, MessageID: *report.ModerationMessageID}
	}
	return notify.MessageRef{}
}
