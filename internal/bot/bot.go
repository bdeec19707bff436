// Package bot is the Telegram front end: it polls for updates, routes
// commands, callbacks and free text to handlers, and owns the chat-side
// credit policy. Updates for one chat are handled in order; chats are
// independent and run concurrently.
package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kdziekansky/telegram2/internal/app/credit"
	"github.com/kdziekansky/telegram2/internal/daemon"
	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/i18n"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
	"github.com/kdziekansky/telegram2/internal/infra/telegram"
)

// Gateway is the slice of the Telegram client the bot uses. Tests plug in
// a fake.
type Gateway interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, int64, error)
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int64, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, opts *telegram.SendOptions) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SendChatAction(ctx context.Context, chatID int64, action string) error
	SendPhotoURL(ctx context.Context, chatID int64, photoURL, caption string) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// Stores bundles the persistence interfaces the bot depends on.
type Stores struct {
	Users     domain.UserStore
	Messages  domain.MessageStore
	Notes     domain.NoteStore
	Reminders domain.ReminderStore
	Codes     domain.CodeStore
}

// Bot wires the gateway, the credit subsystem and the completion provider
// into the chat front end.
type Bot struct {
	cfg       *daemon.Config
	gw        Gateway
	stores    Stores
	ledger    *credit.Ledger
	catalog   *credit.Catalog
	purchases *credit.PurchaseFlow
	analytics *credit.Analytics
	completer domain.Completer
	tracer    *observability.Tracer
	log       zerolog.Logger

	// now is swappable for tests.
	now func() time.Time

	mu      sync.Mutex
	workers map[int64]chan telegram.Update
	wg      sync.WaitGroup
}

// New assembles a bot. A nil tracer disables span recording.
func New(cfg *daemon.Config, gw Gateway, stores Stores, ledger *credit.Ledger, catalog *credit.Catalog, purchases *credit.PurchaseFlow, analytics *credit.Analytics, completer domain.Completer, tracer *observability.Tracer, log zerolog.Logger) *Bot {
	if tracer == nil {
		tracer = observability.NewTracer(observability.TracerConfig{Enabled: false})
	}
	return &Bot{
		cfg:       cfg,
		gw:        gw,
		stores:    stores,
		ledger:    ledger,
		catalog:   catalog,
		purchases: purchases,
		analytics: analytics,
		completer: completer,
		tracer:    tracer,
		log:       log,
		now:       time.Now,
		workers:   make(map[int64]chan telegram.Update),
	}
}

// Run polls for updates until ctx is cancelled. It also starts the
// reminder worker. Blocks.
func (b *Bot) Run(ctx context.Context) error {
	pollTimeout := time.Duration(b.cfg.Telegram.PollTimeoutSec) * time.Second
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runReminderWorker(ctx)
	}()

	b.log.Info().Msg("bot started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return ctx.Err()
		default:
		}

		updates, next, err := b.gw.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.shutdown()
				return ctx.Err()
			}
			b.log.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}
		offset = next

		for _, u := range updates {
			b.dispatch(ctx, u)
		}
	}
}

// dispatch routes an update to its chat's worker, starting one on first
// contact. Per chat serial, across chats parallel.
func (b *Bot) dispatch(ctx context.Context, u telegram.Update) {
	chatID := updateChatID(u)
	if chatID == 0 {
		return
	}
	observability.UpdatesReceived.WithLabelValues(updateKind(u)).Inc()

	b.mu.Lock()
	ch, ok := b.workers[chatID]
	if !ok {
		ch = make(chan telegram.Update, 16)
		b.workers[chatID] = ch
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for upd := range ch {
				b.handle(ctx, upd)
			}
		}()
	}
	b.mu.Unlock()

	select {
	case ch <- u:
	default:
		b.log.Warn().Int64("chat_id", chatID).Msg("chat queue full, dropping update")
	}
}

func (b *Bot) shutdown() {
	b.mu.Lock()
	for _, ch := range b.workers {
		close(ch)
	}
	b.workers = make(map[int64]chan telegram.Update)
	b.mu.Unlock()
	b.wg.Wait()
	b.log.Info().Msg("bot stopped")
}

// handle processes one update end to end.
func (b *Bot) handle(ctx context.Context, u telegram.Update) {
	start := time.Now()
	span := b.tracer.StartSpan(ctx, "handle_update", map[string]string{"kind": updateKind(u)})
	var err error
	defer func() {
		b.tracer.EndSpan(span, err)
		observability.HandlerDuration.Observe(time.Since(start).Seconds())
	}()

	switch {
	case u.CallbackQuery != nil:
		err = b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		err = b.handleMessage(ctx, u.Message)
	}
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", updateChatID(u)).Msg("update handling failed")
	}
}

// handleMessage routes a message to command, attachment or chat handling.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg.Chat == nil || (msg.From != nil && msg.From.IsBot) {
		return nil
	}

	user, err := b.ensureUser(msg)
	if err != nil {
		return err
	}

	text := msg.TextOrCaption()
	switch {
	case strings.HasPrefix(text, "/"):
		return b.handleCommand(ctx, user, msg, text)
	case msg.LargestPhoto() != nil:
		return b.handlePhoto(ctx, user, msg)
	case msg.Document != nil:
		return b.handleDocument(ctx, user, msg)
	case user.PendingAct != "":
		return b.handlePending(ctx, user, text)
	case text != "":
		return b.handleChat(ctx, user, text)
	default:
		return nil
	}
}

// ensureUser upserts the sender and grants the welcome bundle on first
// contact.
func (b *Bot) ensureUser(msg *telegram.Message) (domain.User, error) {
	id := msg.Chat.ID
	name := msg.From.DisplayName()
	lang := b.cfg.Bot.DefaultLanguage
	if msg.From != nil && i18n.Supported(msg.From.LanguageCode) {
		lang = msg.From.LanguageCode
	}

	user, err := b.stores.Users.GetUser(id)
	if err == nil {
		// Known user; refresh the display name only.
		user, err = b.stores.Users.EnsureUser(id, name, lang)
		return b.withDefaults(user), err
	}

	user, err = b.stores.Users.EnsureUser(id, name, lang)
	if err != nil {
		return domain.User{}, err
	}
	if b.cfg.Credits.WelcomeGrant > 0 {
		if _, err := b.ledger.Credit(id, b.cfg.Credits.WelcomeGrant, "welcome bonus", domain.TxGrant); err != nil {
			b.log.Error().Err(err).Int64("user_id", id).Msg("welcome grant failed")
		} else {
			observability.CreditsGranted.WithLabelValues(string(domain.TxGrant)).Add(float64(b.cfg.Credits.WelcomeGrant))
		}
	}
	return b.withDefaults(user), nil
}

// withDefaults resolves unset preferences to the configured defaults.
// The store keeps '' until the user picks something, so a first-contact
// user would otherwise reach the provider with an empty model.
func (b *Bot) withDefaults(user domain.User) domain.User {
	if user.Model == "" {
		user.Model = b.cfg.LLM.DefaultModel
	}
	if user.Mode == "" {
		if modes := b.cfg.ChatModes(); len(modes) > 0 {
			user.Mode = modes[0].ID
		}
	}
	return user
}

// t translates for the given user.
func (b *Bot) t(user domain.User, key string, vars i18n.Vars) string {
	return i18n.T(user.Language, key, vars)
}

// send delivers Markdown text to the user's chat.
func (b *Bot) send(ctx context.Context, chatID int64, text string, kb *telegram.InlineKeyboard) error {
	_, err := b.gw.SendMessage(ctx, chatID, text, &telegram.SendOptions{
		ParseMode:   "Markdown",
		ReplyMarkup: kb,
	})
	return err
}

func updateChatID(u telegram.Update) int64 {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID
	case u.EditedMessage != nil && u.EditedMessage.Chat != nil:
		return u.EditedMessage.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID
	default:
		return 0
	}
}

func updateKind(u telegram.Update) string {
	switch {
	case u.CallbackQuery != nil:
		return "callback"
	case u.EditedMessage != nil:
		return "edited"
	case u.Message != nil:
		return "message"
	default:
		return "other"
	}
}

// splitCommand separates "/cmd arg rest" into the command word and the
// remainder. Bot-name suffixes ("/start@MyBot") are stripped.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ := strings.Cut(text, " ")
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
