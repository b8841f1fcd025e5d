package conversation

const (
	textWelcome = "Добро пожаловать в бот SDU Lost and Found! Пожалуйста, выберите один из вариантов:"
	textCancel  = "Заявка отменена. Если хотите, начните снова."
	textThanks  = "Спасибо за Вашу заявку! Хотите отправить еще одну заявку?"
	textApology = "Что-то пошло не так, заявку придётся заполнить заново. Пожалуйста, выберите один из вариантов:"
	textRetry   = "Не удалось отправить заявку. Пожалуйста, отправьте контактные данные еще раз."

	promptDescription   = "Пожалуйста, дайте краткое описание предмета."
	promptLocation      = "Где Вы нашли или потеряли предмет и в какое время?"
	promptImageDecision = "Хотите загрузить изображение предмета?"
	promptImage         = "Пожалуйста, загрузите изображение предмета."
	promptContact       = "Пожалуйста, предоставьте ваши контактные данные (номер телефона или электронную почту)."
	promptContactPhoto  = "Оставьте пожалуста свои контакты или куда можно обратиться."
)
