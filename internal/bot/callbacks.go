package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/i18n"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
	"github.com/kdziekansky/telegram2/internal/infra/telegram"
)

// ─── Callback Actions ───────────────────────────────────────────────────────

// ActionKind enumerates the closed set of inline button actions. Unknown
// callback data is rejected, never interpreted.
type ActionKind string

const (
	ActionMenu  ActionKind = "menu"  // arg: section name
	ActionBuy   ActionKind = "buy"   // arg: package id
	ActionStars ActionKind = "stars" // arg: stars amount
	ActionModel ActionKind = "model" // arg: model name
	ActionMode  ActionKind = "mode"  // arg: mode id
	ActionLang  ActionKind = "lang"  // arg: language code
	ActionClear ActionKind = "clear" // no arg: wipe history
)

var knownActions = map[ActionKind]bool{
	ActionMenu:  true,
	ActionBuy:   true,
	ActionStars: true,
	ActionModel: true,
	ActionMode:  true,
	ActionLang:  true,
	ActionClear: true,
}

// Action is one decoded button press.
type Action struct {
	Kind ActionKind
	Arg  string
}

// Encode renders the action as callback data.
func (a Action) Encode() string {
	if a.Arg == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + ":" + a.Arg
}

// ParseAction decodes callback data into a typed action. Data that does
// not match the closed set comes back as an error.
func ParseAction(data string) (Action, error) {
	kind, arg, _ := strings.Cut(data, ":")
	a := Action{Kind: ActionKind(kind), Arg: arg}
	if !knownActions[a.Kind] {
		return Action{}, fmt.Errorf("callback data %q: unknown action", data)
	}
	return a, nil
}

// ─── Callback Handling ──────────────────────────────────────────────────────

func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	if cb.Message == nil || cb.Message.Chat == nil {
		return b.gw.AnswerCallback(ctx, cb.ID, "")
	}
	chatID := cb.Message.Chat.ID

	user, err := b.stores.Users.GetUser(chatID)
	if err != nil {
		return b.gw.AnswerCallback(ctx, cb.ID, "")
	}

	action, err := ParseAction(cb.Data)
	if err != nil {
		b.log.Warn().Str("data", cb.Data).Int64("chat_id", chatID).Msg("ignoring unknown callback")
		return b.gw.AnswerCallback(ctx, cb.ID, "")
	}

	// Ack first so the button stops spinning even if the handler is slow.
	if err := b.gw.AnswerCallback(ctx, cb.ID, ""); err != nil {
		b.log.Warn().Err(err).Msg("answerCallback failed")
	}

	switch action.Kind {
	case ActionMenu:
		return b.showMenuSection(ctx, user, action.Arg)
	case ActionBuy:
		pkgID, err := strconv.Atoi(action.Arg)
		if err != nil {
			return b.send(ctx, user.ID, b.t(user, "error_generic", nil), nil)
		}
		return b.buyPackage(ctx, user, pkgID)
	case ActionStars:
		stars, err := strconv.Atoi(action.Arg)
		if err != nil {
			return b.send(ctx, user.ID, b.t(user, "error_generic", nil), nil)
		}
		return b.buyWithStars(ctx, user, stars)
	case ActionModel:
		return b.selectModel(ctx, user, action.Arg)
	case ActionMode:
		return b.selectMode(ctx, user, action.Arg)
	case ActionLang:
		return b.selectLanguage(ctx, user, action.Arg)
	case ActionClear:
		return b.clearHistory(ctx, user)
	}
	return nil
}

// ─── Menu Rendering ─────────────────────────────────────────────────────────

func (b *Bot) mainMenuKeyboard(user domain.User) *telegram.InlineKeyboard {
	t := func(key string) string { return b.t(user, key, nil) }
	return telegram.Keyboard(
		telegram.Row(
			telegram.InlineButton{Text: t("menu_chat_mode"), CallbackData: Action{Kind: ActionMenu, Arg: "mode"}.Encode()},
			telegram.InlineButton{Text: t("menu_dialog_history"), CallbackData: Action{Kind: ActionMenu, Arg: "history"}.Encode()},
		),
		telegram.Row(
			telegram.InlineButton{Text: t("menu_get_tokens"), CallbackData: Action{Kind: ActionMenu, Arg: "referral"}.Encode()},
			telegram.InlineButton{Text: t("menu_balance"), CallbackData: Action{Kind: ActionMenu, Arg: "balance"}.Encode()},
		),
		telegram.Row(
			telegram.InlineButton{Text: t("menu_settings"), CallbackData: Action{Kind: ActionMenu, Arg: "settings"}.Encode()},
			telegram.InlineButton{Text: t("menu_help"), CallbackData: Action{Kind: ActionMenu, Arg: "help"}.Encode()},
		),
	)
}

func (b *Bot) showMenuSection(ctx context.Context, user domain.User, section string) error {
	switch section {
	case "mode":
		return b.showModePicker(ctx, user)
	case "history":
		kb := telegram.Keyboard(telegram.Row(telegram.InlineButton{
			Text:         "🗑️",
			CallbackData: Action{Kind: ActionClear}.Encode(),
		}))
		return b.sendHistory(ctx, user, kb)
	case "referral":
		return b.showReferral(ctx, user)
	case "balance":
		bal, err := b.ledger.Balance(user.ID)
		if err != nil {
			return err
		}
		return b.send(ctx, user.ID, b.t(user, "credits_status", i18n.Vars{"credits": strconv.FormatInt(bal, 10)}), nil)
	case "settings":
		return b.showSettings(ctx, user)
	case "models":
		return b.showModelPicker(ctx, user)
	case "language":
		return b.showLanguagePicker(ctx, user)
	case "name":
		if err := b.stores.Users.SetPending(user.ID, "name"); err != nil {
			return err
		}
		return b.send(ctx, user.ID, b.t(user, "settings_change_name", nil), nil)
	case "help":
		return b.send(ctx, user.ID, b.t(user, "help_text", nil), nil)
	default:
		return b.send(ctx, user.ID, b.t(user, "main_menu", nil), b.mainMenuKeyboard(user))
	}
}

func (b *Bot) showSettings(ctx context.Context, user domain.User) error {
	kb := telegram.Keyboard(
		telegram.Row(telegram.InlineButton{Text: b.t(user, "settings_model", nil), CallbackData: Action{Kind: ActionMenu, Arg: "models"}.Encode()}),
		telegram.Row(telegram.InlineButton{Text: b.t(user, "settings_language", nil), CallbackData: Action{Kind: ActionMenu, Arg: "language"}.Encode()}),
		telegram.Row(telegram.InlineButton{Text: b.t(user, "settings_name", nil), CallbackData: Action{Kind: ActionMenu, Arg: "name"}.Encode()}),
	)
	return b.send(ctx, user.ID, b.t(user, "settings_title", nil), kb)
}

func (b *Bot) showModelPicker(ctx context.Context, user domain.User) error {
	models := make([]string, 0, len(b.cfg.Credits.MessageCosts))
	for model := range b.cfg.Credits.MessageCosts {
		models = append(models, model)
	}
	sort.Strings(models)

	rows := make([][]telegram.InlineButton, 0, len(models))
	for _, model := range models {
		label := fmt.Sprintf("%s (%d)", model, b.cfg.Credits.MessageCosts[model])
		rows = append(rows, telegram.Row(telegram.InlineButton{
			Text:         label,
			CallbackData: Action{Kind: ActionModel, Arg: model}.Encode(),
		}))
	}
	return b.send(ctx, user.ID, b.t(user, "settings_choose_model", nil), &telegram.InlineKeyboard{InlineKeyboard: rows})
}

func (b *Bot) showModePicker(ctx context.Context, user domain.User) error {
	modes := b.cfg.ChatModes()
	rows := make([][]telegram.InlineButton, 0, len(modes))
	for _, m := range modes {
		rows = append(rows, telegram.Row(telegram.InlineButton{
			Text:         m.Name,
			CallbackData: Action{Kind: ActionMode, Arg: m.ID}.Encode(),
		}))
	}
	return b.send(ctx, user.ID, b.t(user, "choose_mode", nil), &telegram.InlineKeyboard{InlineKeyboard: rows})
}

func (b *Bot) showLanguagePicker(ctx context.Context, user domain.User) error {
	rows := make([][]telegram.InlineButton, 0, len(i18n.Languages()))
	for _, lang := range i18n.Languages() {
		rows = append(rows, telegram.Row(telegram.InlineButton{
			Text:         i18n.DisplayName(lang),
			CallbackData: Action{Kind: ActionLang, Arg: lang}.Encode(),
		}))
	}
	return b.send(ctx, user.ID, b.t(user, "choose_language", nil), &telegram.InlineKeyboard{InlineKeyboard: rows})
}

// ─── Selection Handlers ─────────────────────────────────────────────────────

func (b *Bot) selectModel(ctx context.Context, user domain.User, model string) error {
	if _, ok := b.cfg.Credits.MessageCosts[model]; !ok {
		return b.send(ctx, user.ID, b.t(user, "model_not_available", nil), nil)
	}
	if err := b.stores.Users.SetModel(user.ID, model); err != nil {
		return err
	}
	cost := b.cfg.MessageCost(model)
	return b.send(ctx, user.ID, b.t(user, "model_selected", i18n.Vars{
		"model":   model,
		"credits": strconv.FormatInt(cost, 10),
	}), nil)
}

func (b *Bot) selectMode(ctx context.Context, user domain.User, modeID string) error {
	var mode *domain.ChatMode
	for _, m := range b.cfg.ChatModes() {
		if m.ID == modeID {
			mode = &m
			break
		}
	}
	if mode == nil {
		return b.send(ctx, user.ID, b.t(user, "error_generic", nil), nil)
	}
	if err := b.stores.Users.SetMode(user.ID, mode.ID); err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "mode_selected", i18n.Vars{
		"mode":    mode.Name,
		"credits": strconv.FormatInt(mode.CreditCost, 10),
	}), nil)
}

func (b *Bot) selectLanguage(ctx context.Context, user domain.User, lang string) error {
	if !i18n.Supported(lang) {
		return b.send(ctx, user.ID, b.t(user, "error_generic", nil), nil)
	}
	if err := b.stores.Users.SetLanguage(user.ID, lang); err != nil {
		return err
	}
	user.Language = lang
	return b.send(ctx, user.ID, b.t(user, "language_selected", i18n.Vars{
		"language_display": i18n.DisplayName(lang),
	}), nil)
}

func (b *Bot) clearHistory(ctx context.Context, user domain.User) error {
	if err := b.stores.Messages.ClearHistory(user.ID); err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "history_deleted", nil), nil)
}

// ─── Purchases ──────────────────────────────────────────────────────────────

func (b *Bot) buyPackage(ctx context.Context, user domain.User, pkgID int) error {
	receipt, err := b.purchases.Purchase(user.ID, pkgID)
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", user.ID).Int("package", pkgID).Msg("purchase failed")
		return b.send(ctx, user.ID, b.t(user, "error_generic", nil), nil)
	}
	observability.PurchasesTotal.WithLabelValues("package").Inc()
	observability.CreditsGranted.WithLabelValues(string(domain.TxPurchase)).Add(float64(receipt.Credits))

	return b.send(ctx, user.ID, b.t(user, "credit_purchase_success", i18n.Vars{
		"package_name":  receipt.PackageName,
		"credits":       strconv.FormatInt(receipt.Credits, 10),
		"price":         strconv.FormatFloat(receipt.Price, 'f', 2, 64),
		"total_credits": strconv.FormatInt(receipt.NewBalance, 10),
	}), nil)
}

func (b *Bot) buyWithStars(ctx context.Context, user domain.User, stars int) error {
	receipt, err := b.purchases.PurchaseWithStars(user.ID, stars)
	if err != nil {
		b.log.Warn().Err(err).Int64("user_id", user.ID).Int("stars", stars).Msg("stars purchase failed")
		return b.send(ctx, user.ID, b.t(user, "error_generic", nil), nil)
	}
	observability.PurchasesTotal.WithLabelValues("stars").Inc()
	observability.CreditsGranted.WithLabelValues(string(domain.TxPurchase)).Add(float64(receipt.Credits))

	return b.send(ctx, user.ID, b.t(user, "credit_purchase_success", i18n.Vars{
		"package_name":  receipt.PackageName,
		"credits":       strconv.FormatInt(receipt.Credits, 10),
		"price":         "0",
		"total_credits": strconv.FormatInt(receipt.NewBalance, 10),
	}), nil)
}
