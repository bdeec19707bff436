package i18n

var catalogEN = map[string]string{
	"welcome_message":         "Welcome to {bot_name}! 🤖✨\n\nI'm an advanced AI bot that will help you with many tasks - from answering questions to generating images.\n\nTo use my features, you need credits. Check your balance and available packages using the /credits command.\n\nAvailable commands:\n/start - Show this message\n/credits - Check credit balance and buy more\n/buy - Buy credit package\n/status - Check account status\n/newchat - Start a new conversation\n/export - Download the conversation as a text file\n/mode - Choose chat mode\n/image [description] - Generate an image\n/menu - Show main menu\n/code [code] - Activate promotional code",
	"insufficient_credits":    "You don't have enough credits to perform this operation. \n\nBuy credits using the /buy command or check your balance using the /credits command.",
	"credits_info":            "💰 *Your credits in {bot_name}* 💰\n\nCurrent balance: *{credits}* credits\n\nOperation costs:\n• Standard message (GPT-3.5): 1 credit\n• Premium message (GPT-4o): 3 credits\n• Expert message (GPT-4): 5 credits\n• Image: 10 credits\n• Document analysis: 5 credits\n• Photo analysis: 8 credits\n\nUse the /buy command to buy more credits.",
	"buy_credits":             "🛒 *Buy credits* 🛒\n\nSelect a credit package:\n\n{packages}\n\nTo buy, use the command:\n/buy [package_number]\n\nFor example, to buy the Standard package:\n/buy 2",
	"credit_purchase_success": "✅ *Purchase completed successfully!*\n\nYou bought the *{package_name}* package\nAdded *{credits}* credits to your account\nCost: *{price} PLN*\n\nCurrent credit balance: *{total_credits}*\n\nThank you for your purchase! 🎉",
	"main_menu":               "📋 *Main Menu*\n\nSelect an option from the list or enter a message to chat with the bot.",
	"menu_chat_mode":          "🔄 Select Chat Mode",
	"menu_dialog_history":     "📂 Conversation History",
	"menu_get_tokens":         "👥 Free Tokens",
	"menu_balance":            "💰 Balance (Credits)",
	"menu_settings":           "⚙️ Settings",
	"menu_help":               "❓ Help",
	"settings_title":          "*Settings*\n\nChoose what you want to change:",
	"settings_model":          "🤖 AI Model",
	"settings_language":       "🌐 Language",
	"settings_name":           "👤 Your Name",
	"settings_choose_model":   "Choose the AI model you want to use:",
	"settings_change_name":    "*Change Name*\n\nType the command /setname [your_name] to change your name in the bot.",
	"model_not_available":     "The selected model is not available.",
	"model_selected":          "Selected model: *{model}*\nCost: *{credits}* credit(s) per message\n\nYou can now ask a question.",
	"language_selected":       "Language has been changed to: *{language_display}*",
	"choose_language":         "Choose interface language:",
	"history_title":           "📂 *Conversation history*",
	"history_empty":           "Your conversation history is empty. Send a message to get started.",
	"history_deleted":         "*History has been cleared*\n\nA new conversation has been started.",
	"referral_title":          "👥 *Referral Program* 👥",
	"referral_description":    "Invite friends and earn free credits! For each invited user, you'll receive *{credits}* credits.",
	"referral_your_code":      "Your referral code:",
	"referral_invited":        "Invited users:",
	"referral_users":          "users",
	"referral_success":        "🎉 *Success!* 🎉\n\nYou used a referral code. *{credits}* bonus credits have been added to your account.",
	"referral_self":           "You cannot use your own referral code.",
	"referral_already":        "You have already used a referral code.",
	"activation_code_usage":   "Usage: /code [activation_code]\n\nFor example: /code ABC123",
	"activation_code_invalid": "❌ *Error!* ❌\n\nThe provided activation code is invalid or has already been used.",
	"activation_code_success": "✅ *Code Activated!* ✅\n\nCode *{code}* has been successfully activated.\n*{credits}* credits have been added to your account.\n\nCurrent credit balance: *{total}*",
	"credits_status":          "Your current credit balance: *{credits}* credits",
	"help_text":               "*Help and Information*\n\n*Available commands:*\n/start - Start using the bot\n/credits - Check credit balance and buy more\n/buy - Buy credit package\n/status - Check account status\n/newchat - Start a new conversation\n/mode - Choose chat mode\n/image [description] - Generate an image\n/note [text] - Save a note\n/remind [minutes] [text] - Set a reminder\n/menu - Show this menu\n/code [code] - Activate promotional code\n\n*Using the bot:*\n1. Simply type a message to get a response\n2. Use the menu buttons to access features\n3. You can upload photos and documents for analysis",
	"generating_response":     "⏳ Generating response...",
	"analyzing_document":      "Analyzing file, please wait...",
	"analyzing_photo":         "Analyzing photo, please wait...",
	"generating_image":        "Generating image, please wait...",
	"image_usage":             "Usage: /image [image description]",
	"generated_image":         "Generated image:",
	"cost":                    "Cost",
	"credits":                 "credits",
	"image_generation_error":  "Sorry, there was an error generating the image. Please try again with a different description.",
	"low_credits_warning":     "Warning:",
	"low_credits_message":     "You only have *{credits}* credits left. Buy more using the /buy command.",

	"status_message": "📊 *Account status*\n\nName: *{name}*\nLanguage: *{language}*\nModel: *{model}*\nMode: *{mode}*\nCredits: *{credits}*",

	"choose_mode":   "Choose a chat mode:",
	"mode_selected": "Selected mode: *{mode}*\nCost: *{credits}* credit(s) per message",
	"models_title":  "*Available models*\n\n{models}\n\nSelect a model with a button below.",

	"name_updated": "Your name has been changed to: *{name}*",

	"note_usage":     "Usage: /note [note text]",
	"note_added":     "📝 Note saved (#{id}).",
	"notes_title":    "📝 *Your notes*",
	"notes_empty":    "You have no notes yet. Add the first one with /note [text].",
	"note_deleted":   "Note #{id} has been deleted.",
	"note_not_found": "No note with that number.",

	"reminder_usage":     "Usage: /remind [minutes] [text]\n\nFor example: /remind 30 team meeting",
	"reminder_set":       "⏰ Reminder set for {time}.",
	"reminders_title":    "⏰ *Your reminders*",
	"reminders_empty":    "You have no reminders.",
	"reminder_deleted":   "Reminder #{id} has been deleted.",
	"reminder_not_found": "No reminder with that number.",
	"reminder_in_past":   "The reminder time must be in the future.",
	"reminder_due":       "⏰ *Reminder:* {text}",

	"translate_usage": "Usage: /translate [language] [text]\n\nFor example: /translate pl good morning",

	"gencode_usage":  "Usage: /gencode [credit_amount]",
	"code_generated": "🎟️ Generated code: `{code}`\nValue: *{credits}* credits",

	"stats_title":    "📈 *Credit statistics*\n\nBalance: *{balance}*\nTotal purchased: *{purchased}*\nTotal spent: *{spent} PLN*",
	"stats_usage":    "Usage over the last {days} days:",
	"stats_forecast": "Average daily usage: *{avg}* credits\nProjected depletion: in *{days_left}* days ({date})",
	"stats_no_usage": "No usage in the last {days} days - forecast unavailable.",
	"stats_recent":   "Recent transactions:",

	"admin_only":             "This command is available to administrators only.",
	"admin_addcredits_usage": "Usage: /addcredits [user_id] [amount]",
	"admin_credits_added":    "Added *{credits}* credits to user {user_id}. New balance: *{balance}*",
	"admin_userinfo_usage":   "Usage: /userinfo [user_id]",
	"admin_user_not_found":   "No user with that id.",

	"error_generic": "Sorry, something went wrong. Please try again later.",
}
