package moderation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/notify"
	"github.com/ignatzorin/lostfound-bot/internal/pkg/apperror"
)

// Verb решение модератора.
type Verb string

const (
	VerbApprove Verb = "approve"
	VerbReject  Verb = "reject"
)

// Status возвращает статус, в который переводит заявку решение.
func (v Verb) Status() (models.ReportStatus, bool) {
	switch v {
	case VerbApprove:
		return models.ReportStatusApproved, true
	case VerbReject:
		return models.ReportStatusRejected, true
	}
	return "", false
}

// FormatToken кодирует решение в данные кнопки: "<verb>:<id>".
func FormatToken(verb Verb, reportID int64) string {
	return fmt.Sprintf("%s:%d", verb, reportID)
}

// ParseToken разбирает данные кнопки решения.
func ParseToken(token string) (Verb, int64, error) {
	rawVerb, rawID, found := strings.Cut(token, ":")
	if !found {
		return "", 0, apperror.Wrap(fmt.Errorf("token %q: нет разделителя", token), apperror.ErrCodeInvalidToken, apperror.ErrInvalidToken.Message)
	}

	verb := Verb(rawVerb)
	if _, ok := verb.Status(); !ok {
		return "", 0, apperror.Wrap(fmt.Errorf("token %q: неизвестное действие", token), apperror.ErrCodeInvalidToken, apperror.ErrInvalidToken.Message)
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 || strings.HasPrefix(rawID, "+") {
		return "", 0, apperror.Wrap(fmt.Errorf("token %q: некорректный идентификатор", token), apperror.ErrCodeInvalidToken, apperror.ErrInvalidToken.Message)
	}

	return verb, id, nil
}

// DecisionActions кнопки "Принять" / "Отклонить" для заявки.
func DecisionActions(reportID int64) []notify.Action {
	return []notify.Action{
		{Label: "Принять", Token: FormatToken(VerbApprove, reportID)},
		{Label: "Отклонить", Token: FormatToken(VerbReject, reportID)},
	}
}
