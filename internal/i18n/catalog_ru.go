package i18n

var catalogRU = map[string]string{
	"welcome_message":         "Добро пожаловать в {bot_name}! 🤖✨\n\nЯ продвинутый ИИ-бот, который поможет вам во многих задачах - от ответов на вопросы до генерации изображений.\n\nДля использования моих функций вам нужны кредиты. Проверьте свой баланс и доступные пакеты с помощью команды /credits.\n\nДоступные команды:\n/start - Показать это сообщение\n/credits - Проверить баланс кредитов и купить больше\n/buy - Купить пакет кредитов\n/status - Проверить статус аккаунта\n/newchat - Начать новый разговор\n/export - Скачать разговор текстовым файлом\n/mode - Выбрать режим чата\n/image [описание] - Сгенерировать изображение\n/menu - Показать главное меню\n/code [код] - Активировать промокод",
	"insufficient_credits":    "У вас недостаточно кредитов для выполнения этой операции. \n\nКупите кредиты с помощью команды /buy или проверьте свой баланс с помощью команды /credits.",
	"credits_info":            "💰 *Ваши кредиты в {bot_name}* 💰\n\nТекущий баланс: *{credits}* кредитов\n\nСтоимость операций:\n• Стандартное сообщение (GPT-3.5): 1 кредит\n• Премиум сообщение (GPT-4o): 3 кредита\n• Экспертное сообщение (GPT-4): 5 кредитов\n• Изображение: 10 кредитов\n• Анализ документа: 5 кредитов\n• Анализ фото: 8 кредитов\n\nИспользуйте команду /buy, чтобы купить больше кредитов.",
	"buy_credits":             "🛒 *Купить кредиты* 🛒\n\nВыберите пакет кредитов:\n\n{packages}\n\nДля покупки используйте команду:\n/buy [номер_пакета]\n\nНапример, чтобы купить пакет Стандарт:\n/buy 2",
	"credit_purchase_success": "✅ *Покупка успешно завершена!*\n\nВы купили пакет *{package_name}*\nДобавлено *{credits}* кредитов на ваш счет\nСтоимость: *{price} PLN*\n\nТекущий баланс кредитов: *{total_credits}*\n\nСпасибо за покупку! 🎉",
	"main_menu":               "📋 *Главное меню*\n\nВыберите опцию из списка или введите сообщение, чтобы начать разговор с ботом.",
	"menu_chat_mode":          "🔄 Выбрать режим чата",
	"menu_dialog_history":     "📂 История разговоров",
	"menu_get_tokens":         "👥 Бесплатные токены",
	"menu_balance":            "💰 Баланс (Кредиты)",
	"menu_settings":           "⚙️ Настройки",
	"menu_help":               "❓ Помощь",
	"settings_title":          "*Настройки*\n\nВыберите, что вы хотите изменить:",
	"settings_model":          "🤖 Модель ИИ",
	"settings_language":       "🌐 Язык",
	"settings_name":           "👤 Ваше имя",
	"settings_choose_model":   "Выберите модель ИИ, которую вы хотите использовать:",
	"settings_change_name":    "*Изменение имени*\n\nВведите команду /setname [ваше_имя], чтобы изменить свое имя в боте.",
	"model_not_available":     "Выбранная модель недоступна.",
	"model_selected":          "Выбранная модель: *{model}*\nСтоимость: *{credits}* кредит(ов) за сообщение\n\nТеперь вы можете задать вопрос.",
	"language_selected":       "Язык изменен на: *{language_display}*",
	"choose_language":         "Выберите язык интерфейса:",
	"history_title":           "📂 *История разговора*",
	"history_empty":           "История разговора пуста. Отправьте сообщение, чтобы начать.",
	"history_deleted":         "*История была очищена*\n\nНачат новый разговор.",
	"referral_title":          "👥 *Реферальная программа* 👥",
	"referral_description":    "Приглашайте друзей и получайте бесплатные кредиты! За каждого приглашенного пользователя вы получите *{credits}* кредитов.",
	"referral_your_code":      "Ваш реферальный код:",
	"referral_invited":        "Приглашенные пользователи:",
	"referral_users":          "пользователей",
	"referral_success":        "🎉 *Успех!* 🎉\n\nВы использовали реферальный код. На ваш счет добавлено *{credits}* бонусных кредитов.",
	"referral_self":           "Вы не можете использовать собственный реферальный код.",
	"referral_already":        "Вы уже использовали реферальный код.",
	"activation_code_usage":   "Использование: /code [активационный_код]\n\nНапример: /code ABC123",
	"activation_code_invalid": "❌ *Ошибка!* ❌\n\nУказанный активационный код недействителен или уже использован.",
	"activation_code_success": "✅ *Код активирован!* ✅\n\nКод *{code}* успешно активирован.\nДобавлено *{credits}* кредитов на ваш счет.\n\nТекущий баланс кредитов: *{total}*",
	"credits_status":          "Ваш текущий баланс кредитов: *{credits}* кредитов",
	"help_text":               "*Помощь и информация*\n\n*Доступные команды:*\n/start - Начать использование бота\n/credits - Проверить баланс кредитов и купить больше\n/buy - Купить пакет кредитов\n/status - Проверить статус аккаунта\n/newchat - Начать новый разговор\n/mode - Выбрать режим чата\n/image [описание] - Сгенерировать изображение\n/note [текст] - Сохранить заметку\n/remind [минуты] [текст] - Установить напоминание\n/menu - Показать это меню\n/code [код] - Активировать промокод\n\n*Использование бота:*\n1. Просто введите сообщение, чтобы получить ответ\n2. Используйте кнопки меню для доступа к функциям\n3. Вы можете загружать фотографии и документы для анализа",
	"generating_response":     "⏳ Генерация ответа...",
	"analyzing_document":      "Анализирую файл, пожалуйста, подождите...",
	"analyzing_photo":         "Анализирую фото, пожалуйста, подождите...",
	"generating_image":        "Генерирую изображение, пожалуйста, подождите...",
	"image_usage":             "Использование: /image [описание изображения]",
	"generated_image":         "Сгенерированное изображение:",
	"cost":                    "Стоимость",
	"credits":                 "кредитов",
	"image_generation_error":  "Извините, произошла ошибка при генерации изображения. Пожалуйста, попробуйте снова с другим описанием.",
	"low_credits_warning":     "Внимание:",
	"low_credits_message":     "У вас осталось только *{credits}* кредитов. Купите больше с помощью команды /buy.",

	"status_message": "📊 *Статус аккаунта*\n\nИмя: *{name}*\nЯзык: *{language}*\nМодель: *{model}*\nРежим: *{mode}*\nКредиты: *{credits}*",

	"choose_mode":   "Выберите режим чата:",
	"mode_selected": "Выбранный режим: *{mode}*\nСтоимость: *{credits}* кредит(ов) за сообщение",
	"models_title":  "*Доступные модели*\n\n{models}\n\nВыберите модель кнопкой ниже.",

	"name_updated": "Ваше имя изменено на: *{name}*",

	"note_usage":     "Использование: /note [текст заметки]",
	"note_added":     "📝 Заметка сохранена (#{id}).",
	"notes_title":    "📝 *Ваши заметки*",
	"notes_empty":    "У вас пока нет заметок. Добавьте первую командой /note [текст].",
	"note_deleted":   "Заметка #{id} удалена.",
	"note_not_found": "Заметка с таким номером не найдена.",

	"reminder_usage":     "Использование: /remind [минуты] [текст]\n\nНапример: /remind 30 встреча с командой",
	"reminder_set":       "⏰ Напоминание установлено на {time}.",
	"reminders_title":    "⏰ *Ваши напоминания*",
	"reminders_empty":    "У вас нет напоминаний.",
	"reminder_deleted":   "Напоминание #{id} удалено.",
	"reminder_not_found": "Напоминание с таким номером не найдено.",
	"reminder_in_past":   "Время напоминания должно быть в будущем.",
	"reminder_due":       "⏰ *Напоминание:* {text}",

	"translate_usage": "Использование: /translate [язык] [текст]\n\nНапример: /translate en доброе утро",

	"gencode_usage":  "Использование: /gencode [количество_кредитов]",
	"code_generated": "🎟️ Сгенерирован код: `{code}`\nНоминал: *{credits}* кредитов",

	"stats_title":    "📈 *Статистика кредитов*\n\nБаланс: *{balance}*\nВсего куплено: *{purchased}*\nВсего потрачено: *{spent} PLN*",
	"stats_usage":    "Использование за последние {days} дней:",
	"stats_forecast": "Среднее дневное использование: *{avg}* кредитов\nПрогноз исчерпания: через *{days_left}* дней ({date})",
	"stats_no_usage": "Нет использования за последние {days} дней - прогноз недоступен.",
	"stats_recent":   "Последние транзакции:",

	"admin_only":             "Эта команда доступна только администраторам.",
	"admin_addcredits_usage": "Использование: /addcredits [id_пользователя] [количество]",
	"admin_credits_added":    "Добавлено *{credits}* кредитов пользователю {user_id}. Новый баланс: *{balance}*",
	"admin_userinfo_usage":   "Использование: /userinfo [id_пользователя]",
	"admin_user_not_found":   "Пользователь с таким id не найден.",

	"error_generic": "Извините, что-то пошло не так. Пожалуйста, попробуйте позже.",
}
