package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/i18n"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
	"github.com/kdziekansky/telegram2/internal/infra/telegram"
)

// referralPrefix starts every referral code; the rest is the referrer's id.
const referralPrefix = "REF"

// ReferralCode derives the shareable code for a user.
func ReferralCode(userID int64) string {
	return fmt.Sprintf("%s%d", referralPrefix, userID)
}

func parseReferralCode(code string) (int64, bool) {
	rest, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(code)), referralPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (b *Bot) handleCommand(ctx context.Context, user domain.User, msg *telegram.Message, text string) error {
	cmd, args := splitCommand(text)
	observability.CommandsHandled.WithLabelValues(cmd).Inc()

	// Any command cancels a pending input prompt.
	if user.PendingAct != "" {
		if err := b.stores.Users.SetPending(user.ID, ""); err != nil {
			b.log.Warn().Err(err).Int64("user_id", user.ID).Msg("clearing pending state failed")
		}
	}

	switch cmd {
	case "/start", "/restart":
		return b.cmdStart(ctx, user, args)
	case "/help":
		return b.send(ctx, user.ID, b.t(user, "help_text", nil), nil)
	case "/menu":
		return b.send(ctx, user.ID, b.t(user, "main_menu", nil), b.mainMenuKeyboard(user))
	case "/status":
		return b.cmdStatus(ctx, user)
	case "/credits":
		return b.cmdCredits(ctx, user)
	case "/buy":
		return b.cmdBuy(ctx, user, args)
	case "/creditstats":
		return b.cmdCreditStats(ctx, user, args)
	case "/newchat":
		return b.clearHistory(ctx, user)
	case "/export":
		return b.cmdExport(ctx, user)
	case "/models":
		return b.showModelPicker(ctx, user)
	case "/mode":
		return b.showModePicker(ctx, user)
	case "/language":
		return b.showLanguagePicker(ctx, user)
	case "/image":
		return b.cmdImage(ctx, user, args)
	case "/setname":
		return b.cmdSetName(ctx, user, args)
	case "/code":
		return b.cmdCode(ctx, user, args)
	case "/gencode":
		return b.cmdGenCode(ctx, user, args)
	case "/note":
		return b.cmdNote(ctx, user, args)
	case "/notes":
		return b.cmdNotes(ctx, user, args)
	case "/remind":
		return b.cmdRemind(ctx, user, args)
	case "/reminders":
		return b.cmdReminders(ctx, user, args)
	case "/translate":
		return b.cmdTranslate(ctx, user, args)
	case "/addcredits":
		return b.cmdAddCredits(ctx, user, args)
	case "/userinfo":
		return b.cmdUserInfo(ctx, user, args)
	default:
		// Unknown slash command: show help rather than guessing.
		return b.send(ctx, user.ID, b.t(user, "help_text", nil), nil)
	}
}

// cmdStart greets the user and applies a referral deep link ("/start REF123").
func (b *Bot) cmdStart(ctx context.Context, user domain.User, args string) error {
	if referrerID, ok := parseReferralCode(args); ok {
		if err := b.applyReferral(ctx, user, referrerID); err != nil {
			b.log.Debug().Err(err).Int64("user_id", user.ID).Msg("referral not applied")
		}
	}
	return b.send(ctx, user.ID, b.t(user, "welcome_message", i18n.Vars{
		"bot_name": b.cfg.Bot.Name,
	}), b.mainMenuKeyboard(user))
}

// applyReferral credits both sides of a referral exactly once per invitee.
func (b *Bot) applyReferral(ctx context.Context, invitee domain.User, referrerID int64) error {
	if referrerID == invitee.ID {
		return b.send(ctx, invitee.ID, b.t(invitee, "referral_self", nil), nil)
	}
	// The code embeds the referrer's id, so any number parses. Only codes
	// naming a real account earn credits.
	if _, err := b.stores.Users.GetUser(referrerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return b.send(ctx, invitee.ID, b.t(invitee, "activation_code_invalid", nil), nil)
		}
		return err
	}
	if err := b.stores.Codes.RecordReferral(referrerID, invitee.ID); err != nil {
		if errors.Is(err, domain.ErrAlreadyReferred) {
			return b.send(ctx, invitee.ID, b.t(invitee, "referral_already", nil), nil)
		}
		return err
	}

	if _, err := b.ledger.Credit(referrerID, b.cfg.Credits.ReferrerBonus, "referral bonus", domain.TxGrant); err != nil {
		return err
	}
	if _, err := b.ledger.Credit(invitee.ID, b.cfg.Credits.InviteeBonus, "referral welcome", domain.TxGrant); err != nil {
		return err
	}
	observability.CreditsGranted.WithLabelValues(string(domain.TxGrant)).Add(float64(b.cfg.Credits.ReferrerBonus + b.cfg.Credits.InviteeBonus))

	return b.send(ctx, invitee.ID, b.t(invitee, "referral_success", i18n.Vars{
		"credits": strconv.FormatInt(b.cfg.Credits.InviteeBonus, 10),
	}), nil)
}

func (b *Bot) showReferral(ctx context.Context, user domain.User) error {
	count, err := b.stores.Codes.ReferralCount(user.ID)
	if err != nil {
		return err
	}
	earned := int64(count) * b.cfg.Credits.ReferrerBonus

	var sb strings.Builder
	sb.WriteString(b.t(user, "referral_title", nil))
	sb.WriteString("\n\n")
	sb.WriteString(b.t(user, "referral_description", i18n.Vars{
		"credits": strconv.FormatInt(b.cfg.Credits.ReferrerBonus, 10),
	}))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s `%s`\n", b.t(user, "referral_your_code", nil), ReferralCode(user.ID))
	fmt.Fprintf(&sb, "%s %d %s (%d %s)",
		b.t(user, "referral_invited", nil), count, b.t(user, "referral_users", nil),
		earned, b.t(user, "credits", nil))
	return b.send(ctx, user.ID, sb.String(), nil)
}

func (b *Bot) cmdStatus(ctx context.Context, user domain.User) error {
	bal, err := b.ledger.Balance(user.ID)
	if err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "status_message", i18n.Vars{
		"name":     user.DisplayName,
		"language": i18n.DisplayName(user.Language),
		"model":    user.Model,
		"mode":     user.Mode,
		"credits":  strconv.FormatInt(bal, 10),
	}), nil)
}

func (b *Bot) cmdCredits(ctx context.Context, user domain.User) error {
	bal, err := b.ledger.Balance(user.ID)
	if err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "credits_info", i18n.Vars{
		"bot_name": b.cfg.Bot.Name,
		"credits":  strconv.FormatInt(bal, 10),
	}), nil)
}

// cmdBuy without an argument lists packages with buy buttons; with a
// numeric argument it purchases directly.
func (b *Bot) cmdBuy(ctx context.Context, user domain.User, args string) error {
	if args != "" {
		pkgID, err := strconv.Atoi(args)
		if err == nil {
			return b.buyPackage(ctx, user, pkgID)
		}
	}

	var listing strings.Builder
	rows := make([][]telegram.InlineButton, 0, len(b.catalog.Packages()))
	for _, pkg := range b.catalog.Packages() {
		fmt.Fprintf(&listing, "%d. *%s* - %d %s - %.2f zł\n", pkg.ID, pkg.Name, pkg.Credits, b.t(user, "credits", nil), pkg.Price)
		rows = append(rows, telegram.Row(telegram.InlineButton{
			Text:         fmt.Sprintf("%s (%d)", pkg.Name, pkg.Credits),
			CallbackData: Action{Kind: ActionBuy, Arg: strconv.Itoa(pkg.ID)}.Encode(),
		}))
	}
	for _, opt := range b.catalog.StarsOptions() {
		rows = append(rows, telegram.Row(telegram.InlineButton{
			Text:         fmt.Sprintf("⭐ %d → %d", opt.Stars, opt.Credits),
			CallbackData: Action{Kind: ActionStars, Arg: strconv.Itoa(opt.Stars)}.Encode(),
		}))
	}

	text := b.t(user, "buy_credits", i18n.Vars{"packages": listing.String()})
	return b.send(ctx, user.ID, text, &telegram.InlineKeyboard{InlineKeyboard: rows})
}

// cmdCreditStats renders balance, lifetime counters, the usage breakdown
// over the analytics window and the depletion forecast. An optional
// argument overrides the 30-day window.
func (b *Bot) cmdCreditStats(ctx context.Context, user domain.User, args string) error {
	windowDays := 30
	if args != "" {
		if n, err := strconv.Atoi(args); err == nil && n > 0 && n <= 365 {
			windowDays = n
		}
	}

	stats, err := b.ledger.Stats(user.ID, b.cfg.Credits.HistoryLimit)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(b.t(user, "stats_title", i18n.Vars{
		"balance":   strconv.FormatInt(stats.Balance, 10),
		"purchased": strconv.FormatInt(stats.TotalPurchased, 10),
		"spent":     strconv.FormatFloat(stats.TotalSpent, 'f', 2, 64),
	}))

	breakdown, err := b.analytics.UsageBreakdown(user.ID, windowDays)
	if err != nil {
		return err
	}
	if len(breakdown) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(b.t(user, "stats_usage", i18n.Vars{"days": strconv.Itoa(windowDays)}))
		for _, cat := range []domain.UsageCategory{domain.UsageMessage, domain.UsageImage, domain.UsageDocument, domain.UsagePhoto, domain.UsageOther} {
			if amount, ok := breakdown[cat]; ok {
				fmt.Fprintf(&sb, "\n• %s: %d", cat, amount)
			}
		}
	}

	forecast, err := b.analytics.DepletionForecast(user.ID, windowDays)
	if err != nil {
		return err
	}
	sb.WriteString("\n\n")
	if forecast != nil {
		sb.WriteString(b.t(user, "stats_forecast", i18n.Vars{
			"avg":       strconv.FormatFloat(forecast.AvgDailyUsage, 'f', 1, 64),
			"days_left": strconv.Itoa(forecast.DaysLeft),
			"date":      forecast.DepletionDate.Format("2006-01-02"),
		}))
	} else {
		sb.WriteString(b.t(user, "stats_no_usage", i18n.Vars{"days": strconv.Itoa(windowDays)}))
	}

	if len(stats.Recent) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(b.t(user, "stats_recent", nil))
		for _, tx := range stats.Recent {
			fmt.Fprintf(&sb, "\n• %s %+d (%s)", tx.CreatedAt.Format("01-02 15:04"), tx.Amount, tx.Description)
		}
	}

	return b.send(ctx, user.ID, sb.String(), nil)
}

func (b *Bot) cmdSetName(ctx context.Context, user domain.User, args string) error {
	if args == "" {
		return b.send(ctx, user.ID, b.t(user, "settings_change_name", nil), nil)
	}
	if err := b.stores.Users.SetDisplayName(user.ID, args); err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "name_updated", i18n.Vars{"name": args}), nil)
}

// ─── Activation Codes ───────────────────────────────────────────────────────

func (b *Bot) cmdCode(ctx context.Context, user domain.User, args string) error {
	code := strings.ToUpper(strings.TrimSpace(args))
	if code == "" {
		return b.send(ctx, user.ID, b.t(user, "activation_code_usage", nil), nil)
	}

	// Referral codes redeem through the referral path.
	if referrerID, ok := parseReferralCode(code); ok {
		return b.applyReferral(ctx, user, referrerID)
	}

	credits, err := b.stores.Codes.RedeemCode(code, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrCodeInvalid) {
			return b.send(ctx, user.ID, b.t(user, "activation_code_invalid", nil), nil)
		}
		return err
	}

	newBal, err := b.ledger.Credit(user.ID, credits, "activation code "+code, domain.TxGrant)
	if err != nil {
		return err
	}
	observability.CreditsGranted.WithLabelValues(string(domain.TxGrant)).Add(float64(credits))

	return b.send(ctx, user.ID, b.t(user, "activation_code_success", i18n.Vars{
		"code":    code,
		"credits": strconv.FormatInt(credits, 10),
		"total":   strconv.FormatInt(newBal, 10),
	}), nil)
}

// cmdGenCode mints a one-shot activation code. Admin only.
func (b *Bot) cmdGenCode(ctx context.Context, user domain.User, args string) error {
	if !b.cfg.IsAdmin(user.ID) {
		return b.send(ctx, user.ID, b.t(user, "admin_only", nil), nil)
	}
	credits, err := strconv.ParseInt(args, 10, 64)
	if err != nil || credits <= 0 {
		return b.send(ctx, user.ID, b.t(user, "gencode_usage", nil), nil)
	}

	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if err := b.stores.Codes.CreateCode(code, credits); err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "code_generated", i18n.Vars{
		"code":    code,
		"credits": strconv.FormatInt(credits, 10),
	}), nil)
}

// ─── Notes ──────────────────────────────────────────────────────────────────

func (b *Bot) cmdNote(ctx context.Context, user domain.User, args string) error {
	if args == "" {
		return b.send(ctx, user.ID, b.t(user, "note_usage", nil), nil)
	}
	title, content, found := strings.Cut(args, "\n")
	if !found {
		content = args
		if len(title) > 40 {
			title = title[:40]
		}
	}
	note, err := b.stores.Notes.CreateNote(user.ID, title, content)
	if err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "note_added", i18n.Vars{
		"id": strconv.FormatInt(note.ID, 10),
	}), nil)
}

// cmdNotes lists notes; "/notes del <id>" deletes one.
func (b *Bot) cmdNotes(ctx context.Context, user domain.User, args string) error {
	if sub, rest, _ := strings.Cut(args, " "); sub == "del" || sub == "delete" {
		id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			return b.send(ctx, user.ID, b.t(user, "note_not_found", nil), nil)
		}
		if err := b.stores.Notes.DeleteNote(user.ID, id); err != nil {
			if errors.Is(err, domain.ErrNoteNotFound) {
				return b.send(ctx, user.ID, b.t(user, "note_not_found", nil), nil)
			}
			return err
		}
		return b.send(ctx, user.ID, b.t(user, "note_deleted", i18n.Vars{
			"id": strconv.FormatInt(id, 10),
		}), nil)
	}

	notes, err := b.stores.Notes.ListNotes(user.ID)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return b.send(ctx, user.ID, b.t(user, "notes_empty", nil), nil)
	}

	var sb strings.Builder
	sb.WriteString(b.t(user, "notes_title", nil))
	for _, n := range notes {
		fmt.Fprintf(&sb, "\n#%d *%s*\n%s", n.ID, n.Title, n.Content)
	}
	return b.send(ctx, user.ID, sb.String(), nil)
}

// ─── Reminders ──────────────────────────────────────────────────────────────

func (b *Bot) cmdRemind(ctx context.Context, user domain.User, args string) error {
	minutesStr, text, _ := strings.Cut(args, " ")
	minutes, err := strconv.Atoi(minutesStr)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		return b.send(ctx, user.ID, b.t(user, "reminder_usage", nil), nil)
	}
	if minutes <= 0 {
		return b.send(ctx, user.ID, b.t(user, "reminder_in_past", nil), nil)
	}

	dueAt := b.now().Add(time.Duration(minutes) * time.Minute)
	if _, err := b.stores.Reminders.CreateReminder(user.ID, text, dueAt); err != nil {
		return err
	}
	return b.send(ctx, user.ID, b.t(user, "reminder_set", i18n.Vars{
		"time": dueAt.Format("15:04"),
	}), nil)
}

// cmdReminders lists pending reminders; "/reminders del <id>" cancels one.
func (b *Bot) cmdReminders(ctx context.Context, user domain.User, args string) error {
	if sub, rest, _ := strings.Cut(args, " "); sub == "del" || sub == "delete" {
		id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			return b.send(ctx, user.ID, b.t(user, "reminder_not_found", nil), nil)
		}
		if err := b.stores.Reminders.DeleteReminder(user.ID, id); err != nil {
			if errors.Is(err, domain.ErrReminderNotFound) {
				return b.send(ctx, user.ID, b.t(user, "reminder_not_found", nil), nil)
			}
			return err
		}
		return b.send(ctx, user.ID, b.t(user, "reminder_deleted", i18n.Vars{
			"id": strconv.FormatInt(id, 10),
		}), nil)
	}

	reminders, err := b.stores.Reminders.ListReminders(user.ID)
	if err != nil {
		return err
	}
	if len(reminders) == 0 {
		return b.send(ctx, user.ID, b.t(user, "reminders_empty", nil), nil)
	}

	var sb strings.Builder
	sb.WriteString(b.t(user, "reminders_title", nil))
	for _, r := range reminders {
		fmt.Fprintf(&sb, "\n#%d %s - %s", r.ID, r.DueAt.Format("2006-01-02 15:04"), r.Text)
	}
	return b.send(ctx, user.ID, sb.String(), nil)
}

// ─── Admin ──────────────────────────────────────────────────────────────────

func (b *Bot) cmdAddCredits(ctx context.Context, user domain.User, args string) error {
	if !b.cfg.IsAdmin(user.ID) {
		return b.send(ctx, user.ID, b.t(user, "admin_only", nil), nil)
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.send(ctx, user.ID, b.t(user, "admin_addcredits_usage", nil), nil)
	}
	targetID, err1 := strconv.ParseInt(fields[0], 10, 64)
	amount, err2 := strconv.ParseInt(fields[1], 10, 64)
	if err1 != nil || err2 != nil || amount <= 0 {
		return b.send(ctx, user.ID, b.t(user, "admin_addcredits_usage", nil), nil)
	}

	newBal, err := b.ledger.Credit(targetID, amount, fmt.Sprintf("admin grant by %d", user.ID), domain.TxGrant)
	if err != nil {
		return err
	}
	observability.CreditsGranted.WithLabelValues(string(domain.TxGrant)).Add(float64(amount))

	return b.send(ctx, user.ID, b.t(user, "admin_credits_added", i18n.Vars{
		"credits": strconv.FormatInt(amount, 10),
		"user_id": strconv.FormatInt(targetID, 10),
		"balance": strconv.FormatInt(newBal, 10),
	}), nil)
}

func (b *Bot) cmdUserInfo(ctx context.Context, user domain.User, args string) error {
	if !b.cfg.IsAdmin(user.ID) {
		return b.send(ctx, user.ID, b.t(user, "admin_only", nil), nil)
	}
	targetID, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return b.send(ctx, user.ID, b.t(user, "admin_userinfo_usage", nil), nil)
	}

	target, err := b.stores.Users.GetUser(targetID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return b.send(ctx, user.ID, b.t(user, "admin_user_not_found", nil), nil)
		}
		return err
	}
	stats, err := b.ledger.Stats(targetID, 5)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 *%s* (id %d)\n", target.DisplayName, target.ID)
	fmt.Fprintf(&sb, "lang=%s model=%s mode=%s\n", target.Language, target.Model, target.Mode)
	fmt.Fprintf(&sb, "balance=%d purchased=%d spent=%.2f\n", stats.Balance, stats.TotalPurchased, stats.TotalSpent)
	for _, tx := range stats.Recent {
		fmt.Fprintf(&sb, "• %s %+d %s\n", tx.CreatedAt.Format("2006-01-02"), tx.Amount, tx.Description)
	}
	return b.send(ctx, user.ID, sb.String(), nil)
}
