package moderation

import (
	"fmt"
	"strings"

	"github.com/ignatzorin/lostfound-bot/internal/models"
)

const (
	textApprovedToUser  = "Ваше заявление было одобрено и отправлено в публичный канал!"
	textRejectedToUser  = "Ваше заявление было отклонено администраторами."
	textNotFound        = "Заявление не найдено."
	textInvalidToken    = "Не удалось обработать действие."
	textInternalError   = "Произошла ошибка, попробуйте позже."
	textNoPendingReport = "Нет заявлений, ожидающих проверки."
)

// statusLabel человекочитаемое название статуса.
func statusLabel(status models.ReportStatus) string {
	switch status {
	case models.ReportStatusApproved:
		return "одобрено"
	case models.ReportStatusRejected:
		return "отклонено"
	default:
		return "ожидает проверки"
	}
}

func appliedAck(status models.ReportStatus) string {
	return fmt.Sprintf("Заявление %s.", statusLabel(status))
}

func alreadyDecidedAck(status models.ReportStatus) string {
	return fmt.Sprintf("Заявление уже %s и не может быть изменено.", statusLabel(status))
}

func kindLabel(kind models.ReportKind) string {
	return strings.ToUpper(string(kind))
}

// moderatorText текст запроса решения для группы модераторов.
func moderatorText(r *models.Report) string {
	return fmt.Sprintf(
		"Новая %s предмета:\n\n"+
			"Описание: %s\n"+
			"Локация и Время: %s\n"+
			"Контакты: %s\n\n"+
			"Примите или отклоните эту заявку:",
		kindLabel(r.Kind), r.Description, r.Location, r.Contact,
	)
}

// publicText текст публикации в канале.
func publicText(r *models.Report) string {
	return fmt.Sprintf(
		"%s предмет:\n\n"+
			"Описание: %s\n"+
			"Местоположение и Время: %s\n"+
			"Контакт: %s",
		kindLabel(r.Kind), r.Description, r.Location, r.Contact,
	)
}

// PendingText список заявлений, ожидающих проверки.
func PendingText(reports []models.Report) string {
	if len(reports) == 0 {
		return textNoPendingReport
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ожидают проверки: %d\n", len(reports))
	for _, r := range reports {
		fmt.Fprintf(&b, "\n#%d %s: %s (%s)", r.ID, kindLabel(r.Kind), r.Description, r.Location)
	}
	return b.String()
}
