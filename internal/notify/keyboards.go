package notify

import "github.com/ignatzorin/lostfound-bot/internal/event"

// MainMenu кнопки выбора типа заявки.
func MainMenu() []Action {
	return []Action{
		{Label: "Сообщить об утере", Token: event.ActionLost},
		{Label: "Сообщить о находке", Token: event.ActionFound},
	}
}

// CancelOnly кнопка отмены заявки.
func CancelOnly() []Action {
	return []Action{{Label: "Отмена", Token: event.ActionCancel}}
}

// ImageChoice вопрос о загрузке изображения.
func ImageChoice() []Action {
	return []Action{
		{Label: "Да", Token: event.ActionUploadImage},
		{Label: "Нет", Token: event.ActionSkipImage},
		{Label: "Отмена", Token: event.ActionCancel},
	}
}
