package i18n

var catalogPL = map[string]string{
	"welcome_message":         "Witaj w {bot_name}! 🤖✨\n\nJestem zaawansowanym botem AI, który pomoże Ci w wielu zadaniach - od odpowiadania na pytania po generowanie obrazów.\n\nDo korzystania z moich funkcji potrzebujesz kredytów. Sprawdź swoje saldo i dostępne pakiety za pomocą komendy /credits.\n\nDostępne komendy:\n/start - Pokaż tę wiadomość\n/credits - Sprawdź saldo kredytów i kup więcej\n/buy - Kup pakiet kredytów\n/status - Sprawdź stan konta\n/newchat - Rozpocznij nową konwersację\n/export - Pobierz rozmowę jako plik tekstowy\n/mode - Wybierz tryb czatu\n/image [opis] - Wygeneruj obraz\n/menu - Pokaż menu główne\n/code [kod] - Aktywuj kod promocyjny",
	"insufficient_credits":    "Nie masz wystarczającej liczby kredytów, aby wykonać tę operację. \n\nKup kredyty za pomocą komendy /buy lub sprawdź swoje saldo za pomocą komendy /credits.",
	"credits_info":            "💰 *Twoje kredyty w {bot_name}* 💰\n\nAktualny stan: *{credits}* kredytów\n\nKoszt operacji:\n• Standardowa wiadomość (GPT-3.5): 1 kredyt\n• Wiadomość Premium (GPT-4o): 3 kredyty\n• Wiadomość Ekspercka (GPT-4): 5 kredytów\n• Obraz: 10 kredytów\n• Analiza dokumentu: 5 kredytów\n• Analiza zdjęcia: 8 kredytów\n\nUżyj komendy /buy aby kupić więcej kredytów.",
	"buy_credits":             "🛒 *Kup kredyty* 🛒\n\nWybierz pakiet kredytów:\n\n{packages}\n\nAby kupić, użyj komendy:\n/buy [numer_pakietu]\n\nNa przykład, aby kupić pakiet Standard:\n/buy 2",
	"credit_purchase_success": "✅ *Zakup zakończony pomyślnie!*\n\nKupiłeś pakiet *{package_name}*\nDodano *{credits}* kredytów do Twojego konta\nKoszt: *{price} zł*\n\nObecny stan kredytów: *{total_credits}*\n\nDziękujemy za zakup! 🎉",
	"main_menu":               "📋 *Menu główne*\n\nWybierz opcję z listy lub wprowadź wiadomość, aby porozmawiać z botem.",
	"menu_chat_mode":          "🔄 Wybierz tryb czatu",
	"menu_dialog_history":     "📂 Historia rozmów",
	"menu_get_tokens":         "👥 Darmowe tokeny",
	"menu_balance":            "💰 Saldo (Kredyty)",
	"menu_settings":           "⚙️ Ustawienia",
	"menu_help":               "❓ Pomoc",
	"settings_title":          "*Ustawienia*\n\nWybierz co chcesz zmienić:",
	"settings_model":          "🤖 Model AI",
	"settings_language":       "🌐 Język",
	"settings_name":           "👤 Twoja nazwa",
	"settings_choose_model":   "Wybierz model AI, którego chcesz używać:",
	"settings_change_name":    "*Zmiana nazwy*\n\nWpisz komendę /setname [twoja_nazwa] aby zmienić swoją nazwę w bocie.",
	"model_not_available":     "Wybrany model nie jest dostępny.",
	"model_selected":          "Wybrany model: *{model}*\nKoszt: *{credits}* kredyt(ów) za wiadomość\n\nMożesz teraz zadać pytanie.",
	"language_selected":       "Język został zmieniony na: *{language_display}*",
	"choose_language":         "Wybierz język interfejsu:",
	"history_title":           "📂 *Historia rozmowy*",
	"history_empty":           "Historia rozmowy jest pusta. Napisz wiadomość, aby rozpocząć.",
	"history_deleted":         "*Historia została wyczyszczona*\n\nRozpoczęto nową konwersację.",
	"referral_title":          "👥 *Program Referencyjny* 👥",
	"referral_description":    "Zapraszaj znajomych i zdobywaj darmowe kredyty! Za każdego zaproszonego użytkownika otrzymasz *{credits}* kredytów.",
	"referral_your_code":      "Twój kod referencyjny:",
	"referral_invited":        "Zaproszeni użytkownicy:",
	"referral_users":          "osób",
	"referral_success":        "🎉 *Sukces!* 🎉\n\nUżyłeś kodu referencyjnego. Na Twoje konto zostało dodane *{credits}* kredytów bonusowych.",
	"referral_self":           "Nie możesz użyć własnego kodu referencyjnego.",
	"referral_already":        "Już skorzystałeś z kodu referencyjnego.",
	"activation_code_usage":   "Użycie: /code [kod_aktywacyjny]\n\nNa przykład: /code ABC123",
	"activation_code_invalid": "❌ *Błąd!* ❌\n\nPodany kod aktywacyjny jest nieprawidłowy lub został już wykorzystany.",
	"activation_code_success": "✅ *Kod Aktywowany!* ✅\n\nKod *{code}* został pomyślnie aktywowany.\nDodano *{credits}* kredytów do Twojego konta.\n\nAktualny stan kredytów: *{total}*",
	"credits_status":          "Twój aktualny stan kredytów: *{credits}* kredytów",
	"help_text":               "*Pomoc i informacje*\n\n*Dostępne komendy:*\n/start - Rozpocznij korzystanie z bota\n/credits - Sprawdź saldo kredytów i kup więcej\n/buy - Kup pakiet kredytów\n/status - Sprawdź stan konta\n/newchat - Rozpocznij nową konwersację\n/mode - Wybierz tryb czatu\n/image [opis] - Wygeneruj obraz\n/note [treść] - Zapisz notatkę\n/remind [minuty] [treść] - Ustaw przypomnienie\n/menu - Pokaż to menu\n/code [kod] - Aktywuj kod promocyjny\n\n*Używanie bota:*\n1. Po prostu wpisz wiadomość, aby otrzymać odpowiedź\n2. Użyj przycisków menu, aby uzyskać dostęp do funkcji\n3. Możesz przesyłać zdjęcia i dokumenty do analizy",
	"generating_response":     "⏳ Generowanie odpowiedzi...",
	"analyzing_document":      "Analizuję plik, proszę czekać...",
	"analyzing_photo":         "Analizuję zdjęcie, proszę czekać...",
	"generating_image":        "Generuję obraz, proszę czekać...",
	"image_usage":             "Użycie: /image [opis obrazu]",
	"generated_image":         "Wygenerowany obraz:",
	"cost":                    "Koszt",
	"credits":                 "kredytów",
	"image_generation_error":  "Przepraszam, wystąpił błąd podczas generowania obrazu. Spróbuj ponownie z innym opisem.",
	"low_credits_warning":     "Uwaga:",
	"low_credits_message":     "Pozostało Ci tylko *{credits}* kredytów. Kup więcej za pomocą komendy /buy.",

	"status_message": "📊 *Stan konta*\n\nNazwa: *{name}*\nJęzyk: *{language}*\nModel: *{model}*\nTryb: *{mode}*\nKredyty: *{credits}*",

	"choose_mode":   "Wybierz tryb czatu:",
	"mode_selected": "Wybrany tryb: *{mode}*\nKoszt: *{credits}* kredyt(ów) za wiadomość",
	"models_title":  "*Dostępne modele*\n\n{models}\n\nWybierz model przyciskiem poniżej.",

	"name_updated": "Twoja nazwa została zmieniona na: *{name}*",

	"note_usage":     "Użycie: /note [treść notatki]",
	"note_added":     "📝 Notatka zapisana (#{id}).",
	"notes_title":    "📝 *Twoje notatki*",
	"notes_empty":    "Nie masz żadnych notatek. Dodaj pierwszą komendą /note [treść].",
	"note_deleted":   "Notatka #{id} została usunięta.",
	"note_not_found": "Nie znaleziono notatki o podanym numerze.",

	"reminder_usage":     "Użycie: /remind [minuty] [treść]\n\nNa przykład: /remind 30 spotkanie z zespołem",
	"reminder_set":       "⏰ Przypomnienie ustawione na {time}.",
	"reminders_title":    "⏰ *Twoje przypomnienia*",
	"reminders_empty":    "Nie masz żadnych przypomnień.",
	"reminder_deleted":   "Przypomnienie #{id} zostało usunięte.",
	"reminder_not_found": "Nie znaleziono przypomnienia o podanym numerze.",
	"reminder_in_past":   "Czas przypomnienia musi być w przyszłości.",
	"reminder_due":       "⏰ *Przypomnienie:* {text}",

	"translate_usage": "Użycie: /translate [język] [tekst]\n\nNa przykład: /translate en dzień dobry",

	"gencode_usage":  "Użycie: /gencode [liczba_kredytów]",
	"code_generated": "🎟️ Wygenerowano kod: `{code}`\nWartość: *{credits}* kredytów",

	"stats_title":    "📈 *Statystyki kredytów*\n\nSaldo: *{balance}*\nŁącznie kupione: *{purchased}*\nŁącznie wydane: *{spent} zł*",
	"stats_usage":    "Zużycie w ostatnich {days} dniach:",
	"stats_forecast": "Średnie dzienne zużycie: *{avg}* kredytów\nPrzewidywane wyczerpanie: za *{days_left}* dni ({date})",
	"stats_no_usage": "Brak zużycia w ostatnich {days} dniach - prognoza niedostępna.",
	"stats_recent":   "Ostatnie transakcje:",

	"admin_only":             "Ta komenda jest dostępna tylko dla administratorów.",
	"admin_addcredits_usage": "Użycie: /addcredits [id_użytkownika] [liczba]",
	"admin_credits_added":    "Dodano *{credits}* kredytów użytkownikowi {user_id}. Nowe saldo: *{balance}*",
	"admin_userinfo_usage":   "Użycie: /userinfo [id_użytkownika]",
	"admin_user_not_found":   "Nie znaleziono użytkownika o podanym id.",

	"error_generic": "Przepraszam, coś poszło nie tak. Spróbuj ponownie później.",
}
