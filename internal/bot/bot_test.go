package bot

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kdziekansky/telegram2/internal/app/credit"
	"github.com/kdziekansky/telegram2/internal/daemon"
	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/infra/memory"
	"github.com/kdziekansky/telegram2/internal/infra/sqlite"
	"github.com/kdziekansky/telegram2/internal/infra/telegram"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type sentMessage struct {
	ChatID   int64
	Text     string
	Keyboard *telegram.InlineKeyboard
}

type sentDocument struct {
	ChatID   int64
	Filename string
	Data     []byte
}

type fakeGateway struct {
	mu        sync.Mutex
	sent      []sentMessage
	edits     []sentMessage
	acks      []string
	actions   []string
	photoURLs []string
	documents []sentDocument
	fileData  []byte
	nextMsgID int64
}

func (g *fakeGateway) GetUpdates(context.Context, int64, time.Duration) ([]telegram.Update, int64, error) {
	return nil, 0, nil
}

func (g *fakeGateway) SendMessage(_ context.Context, chatID int64, text string, opts *telegram.SendOptions) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var kb *telegram.InlineKeyboard
	if opts != nil {
		kb = opts.ReplyMarkup
	}
	g.sent = append(g.sent, sentMessage{ChatID: chatID, Text: text, Keyboard: kb})
	g.nextMsgID++
	return g.nextMsgID, nil
}

func (g *fakeGateway) EditMessageText(_ context.Context, chatID, _ int64, text string, _ *telegram.SendOptions) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edits = append(g.edits, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (g *fakeGateway) AnswerCallback(_ context.Context, callbackID, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acks = append(g.acks, callbackID)
	return nil
}

func (g *fakeGateway) SendChatAction(_ context.Context, _ int64, action string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actions = append(g.actions, action)
	return nil
}

func (g *fakeGateway) SendPhotoURL(_ context.Context, _ int64, photoURL, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.photoURLs = append(g.photoURLs, photoURL)
	return nil
}

func (g *fakeGateway) SendDocument(_ context.Context, chatID int64, filename string, data []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.documents = append(g.documents, sentDocument{ChatID: chatID, Filename: filename, Data: data})
	return nil
}

func (g *fakeGateway) DownloadFile(context.Context, string) ([]byte, error) {
	return g.fileData, nil
}

func (g *fakeGateway) lastSent(t *testing.T) sentMessage {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return g.sent[len(g.sent)-1]
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: make(map[int64]*domain.User)} }

func (s *fakeUsers) EnsureUser(id int64, displayName, language string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		// Like the sqlite store, a fresh row carries no model or mode.
		u = &domain.User{
			ID: id, DisplayName: displayName, Language: language, CreatedAt: time.Now(),
		}
		s.users[id] = u
	} else if displayName != "" {
		u.DisplayName = displayName
	}
	return *u, nil
}

func (s *fakeUsers) GetUser(id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *fakeUsers) set(id int64, fn func(*domain.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (s *fakeUsers) SetLanguage(id int64, lang string) error {
	return s.set(id, func(u *domain.User) { u.Language = lang })
}
func (s *fakeUsers) SetDisplayName(id int64, name string) error {
	return s.set(id, func(u *domain.User) { u.DisplayName = name })
}
func (s *fakeUsers) SetModel(id int64, model string) error {
	return s.set(id, func(u *domain.User) { u.Model = model })
}
func (s *fakeUsers) SetMode(id int64, mode string) error {
	return s.set(id, func(u *domain.User) { u.Mode = mode })
}
func (s *fakeUsers) SetPending(id int64, pending string) error {
	return s.set(id, func(u *domain.User) { u.PendingAct = pending })
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs map[int64][]domain.ChatMessage
}

func newFakeMessages() *fakeMessages { return &fakeMessages{msgs: make(map[int64][]domain.ChatMessage)} }

func (s *fakeMessages) AppendMessage(userID int64, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs[userID] = append(s.msgs[userID], domain.ChatMessage{UserID: userID, Role: role, Content: content})
	return nil
}

func (s *fakeMessages) History(userID int64, limit int) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.msgs[userID]
	if limit > 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	return append([]domain.ChatMessage(nil), h...), nil
}

func (s *fakeMessages) ClearHistory(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.msgs, userID)
	return nil
}

type fakeNotes struct {
	mu     sync.Mutex
	nextID int64
	notes  map[int64][]domain.Note
}

func newFakeNotes() *fakeNotes { return &fakeNotes{notes: make(map[int64][]domain.Note)} }

func (s *fakeNotes) CreateNote(userID int64, title, content string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n := domain.Note{ID: s.nextID, UserID: userID, Title: title, Content: content, CreatedAt: time.Now()}
	s.notes[userID] = append(s.notes[userID], n)
	return n, nil
}

func (s *fakeNotes) ListNotes(userID int64) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Note(nil), s.notes[userID]...), nil
}

func (s *fakeNotes) GetNote(userID, noteID int64) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes[userID] {
		if n.ID == noteID {
			return n, nil
		}
	}
	return domain.Note{}, domain.ErrNoteNotFound
}

func (s *fakeNotes) DeleteNote(userID, noteID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes[userID] {
		if n.ID == noteID {
			s.notes[userID] = append(s.notes[userID][:i], s.notes[userID][i+1:]...)
			return nil
		}
	}
	return domain.ErrNoteNotFound
}

type fakeReminders struct {
	mu        sync.Mutex
	nextID    int64
	reminders []domain.Reminder
}

func (s *fakeReminders) CreateReminder(userID int64, text string, dueAt time.Time) (domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r := domain.Reminder{ID: s.nextID, UserID: userID, Text: text, DueAt: dueAt, CreatedAt: time.Now()}
	s.reminders = append(s.reminders, r)
	return r, nil
}

func (s *fakeReminders) ListReminders(userID int64) ([]domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Reminder
	for _, r := range s.reminders {
		if r.UserID == userID && !r.Sent {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReminders) DeleteReminder(userID, reminderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reminders {
		if r.ID == reminderID && r.UserID == userID {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return nil
		}
	}
	return domain.ErrReminderNotFound
}

func (s *fakeReminders) DueReminders(now time.Time) ([]domain.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Reminder
	for _, r := range s.reminders {
		if !r.Sent && !r.DueAt.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReminders) MarkSent(reminderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reminders {
		if s.reminders[i].ID == reminderID {
			s.reminders[i].Sent = true
			return nil
		}
	}
	return domain.ErrReminderNotFound
}

type fakeCodes struct {
	mu        sync.Mutex
	codes     map[string]int64 // unredeemed code -> credits
	referrals map[int64]int64  // invitee -> referrer
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{codes: make(map[string]int64), referrals: make(map[int64]int64)}
}

func (s *fakeCodes) CreateCode(code string, credits int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code] = credits
	return nil
}

func (s *fakeCodes) RedeemCode(code string, _ int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	credits, ok := s.codes[code]
	if !ok {
		return 0, domain.ErrCodeInvalid
	}
	delete(s.codes, code)
	return credits, nil
}

func (s *fakeCodes) RecordReferral(referrerID, inviteeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.referrals[inviteeID]; ok {
		return domain.ErrAlreadyReferred
	}
	s.referrals[inviteeID] = referrerID
	return nil
}

func (s *fakeCodes) ReferralCount(referrerID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ref := range s.referrals {
		if ref == referrerID {
			n++
		}
	}
	return n, nil
}

type fakeCompleter struct {
	mu        sync.Mutex
	reply     string
	err       error
	imageURL  string
	calls     int
	lastModel string
}

func (c *fakeCompleter) called() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *fakeCompleter) model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastModel
}

func (c *fakeCompleter) Complete(_ context.Context, model string, _ []domain.CompletionMessage) (string, error) {
	c.mu.Lock()
	c.calls++
	c.lastModel = model
	c.mu.Unlock()
	return c.reply, c.err
}

func (c *fakeCompleter) CompleteStream(_ context.Context, model string, _ []domain.CompletionMessage, fn func(string) error) (string, error) {
	c.mu.Lock()
	c.calls++
	c.lastModel = model
	c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	for _, chunk := range strings.SplitAfter(c.reply, " ") {
		if err := fn(chunk); err != nil {
			return "", err
		}
	}
	return c.reply, nil
}

func (c *fakeCompleter) GenerateImage(context.Context, string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.imageURL, c.err
}

func (c *fakeCompleter) AnalyzeImage(context.Context, []byte, string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.reply, c.err
}

// ─── Harness ────────────────────────────────────────────────────────────────

type harness struct {
	bot       *Bot
	cfg       *daemon.Config
	gw        *fakeGateway
	store     *memory.CreditStore
	users     *fakeUsers
	messages  *fakeMessages
	reminders *fakeReminders
	codes     *fakeCodes
	completer *fakeCompleter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := daemon.DefaultConfig()
	gw := &fakeGateway{}
	store := memory.NewCreditStore()
	log := zerolog.Nop()

	ledger := credit.NewLedger(store, log)
	catalog := credit.NewCatalog(cfg.Packages(), cfg.StarsOptions())
	purchases := credit.NewPurchaseFlow(ledger, catalog, nil)
	analytics := credit.NewAnalytics(store)

	users := newFakeUsers()
	messages := newFakeMessages()
	reminders := &fakeReminders{}
	codes := newFakeCodes()
	completer := &fakeCompleter{reply: "stream reply", imageURL: "https://img.example/out.png"}

	stores := Stores{Users: users, Messages: messages, Notes: newFakeNotes(), Reminders: reminders, Codes: codes}
	b := New(&cfg, gw, stores, ledger, catalog, purchases, analytics, completer, nil, log)
	return &harness{
		bot: b, cfg: &cfg, gw: gw, store: store,
		users: users, messages: messages, reminders: reminders, codes: codes, completer: completer,
	}
}

func textMessage(userID int64, text string) *telegram.Message {
	return &telegram.Message{
		Chat: &telegram.Chat{ID: userID, Type: "private"},
		From: &telegram.User{ID: userID, FirstName: "Test", LanguageCode: "en"},
		Text: text,
	}
}

func (h *harness) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	bal, err := h.store.Balance(userID)
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	return bal
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestEnsureUser_WelcomeGrantOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for range 2 {
		if err := h.bot.handleMessage(ctx, textMessage(7, "/status")); err != nil {
			t.Fatalf("handleMessage() error = %v", err)
		}
	}

	if got := h.balance(t, 7); got != h.cfg.Credits.WelcomeGrant {
		t.Errorf("balance = %d, want welcome grant %d exactly once", got, h.cfg.Credits.WelcomeGrant)
	}
}

func TestHandleChat_ChargesOnDelivery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.completer.reply = "Hello there"

	if err := h.bot.handleMessage(ctx, textMessage(7, "hi")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	// Welcome grant 20, gpt-3.5-turbo message costs 1.
	if got := h.balance(t, 7); got != 19 {
		t.Errorf("balance = %d, want 19", got)
	}

	history, _ := h.messages.History(7, 10)
	if len(history) != 2 || history[0].Role != "user" || history[1].Role != "assistant" {
		t.Fatalf("history = %+v, want user+assistant turns", history)
	}
	if history[1].Content != "Hello there" {
		t.Errorf("assistant turn = %q", history[1].Content)
	}

	h.gw.mu.Lock()
	final := h.gw.edits[len(h.gw.edits)-1]
	h.gw.mu.Unlock()
	if final.Text != "Hello there" {
		t.Errorf("final edit = %q, want full reply", final.Text)
	}
}

// A fresh sqlite row stores no model preference, so the bot must resolve
// the configured default before calling the provider.
func TestHandleChat_DefaultModelForFreshUser(t *testing.T) {
	cfg := daemon.DefaultConfig()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gw := &fakeGateway{}
	log := zerolog.Nop()
	ledger := credit.NewLedger(db, log)
	catalog := credit.NewCatalog(cfg.Packages(), cfg.StarsOptions())
	purchases := credit.NewPurchaseFlow(ledger, catalog, nil)
	analytics := credit.NewAnalytics(db)
	completer := &fakeCompleter{reply: "hi there"}

	stores := Stores{Users: db, Messages: db, Notes: db, Reminders: db, Codes: db}
	b := New(&cfg, gw, stores, ledger, catalog, purchases, analytics, completer, nil, log)

	if err := b.handleMessage(context.Background(), textMessage(7, "hello")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}
	if got := completer.model(); got != cfg.LLM.DefaultModel {
		t.Errorf("model sent to provider = %q, want default %q", got, cfg.LLM.DefaultModel)
	}
}

func TestHandleChat_InsufficientCreditsRefusesBeforeProvider(t *testing.T) {
	h := newHarness(t)
	h.cfg.Credits.WelcomeGrant = 0
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(7, "hi")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	if h.completer.called() != 0 {
		t.Error("provider was called for an unaffordable request")
	}
	if got := h.balance(t, 7); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
	if !strings.Contains(h.gw.lastSent(t).Text, "/buy") {
		t.Errorf("reply = %q, want insufficient-credits text", h.gw.lastSent(t).Text)
	}
}

func TestHandleChat_NoDebitOnProviderFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.completer.err = errors.New("upstream down")

	if err := h.bot.handleMessage(ctx, textMessage(7, "hi")); err == nil {
		t.Fatal("handleMessage() error = nil, want provider error")
	}

	if got := h.balance(t, 7); got != h.cfg.Credits.WelcomeGrant {
		t.Errorf("balance = %d, want untouched %d", got, h.cfg.Credits.WelcomeGrant)
	}
	if history, _ := h.messages.History(7, 10); len(history) != 0 {
		t.Errorf("history has %d turns, want none for a failed completion", len(history))
	}
}

func TestBuyCommand_RoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(7, "/buy 2")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	// Welcome 20 + Standard 300.
	if got := h.balance(t, 7); got != 320 {
		t.Errorf("balance = %d, want 320", got)
	}
	if !strings.Contains(h.gw.lastSent(t).Text, "Standard") {
		t.Errorf("confirmation = %q, want package name", h.gw.lastSent(t).Text)
	}
}

func TestBuyCommand_NoArgListsCatalog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(7, "/buy")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	last := h.gw.lastSent(t)
	if last.Keyboard == nil {
		t.Fatal("catalog listing has no keyboard")
	}
	// Packages plus stars options, one button row each.
	want := len(h.cfg.Catalog) + len(h.cfg.Stars)
	if got := len(last.Keyboard.InlineKeyboard); got != want {
		t.Errorf("keyboard rows = %d, want %d", got, want)
	}
	if got := h.balance(t, 7); got != h.cfg.Credits.WelcomeGrant {
		t.Errorf("balance = %d, listing must not charge", got)
	}
}

func TestReferral_CreditsBothSides(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// Referrer joins first.
	if err := h.bot.handleMessage(ctx, textMessage(1, "/start")); err != nil {
		t.Fatalf("referrer /start error = %v", err)
	}
	if err := h.bot.handleMessage(ctx, textMessage(2, "/start "+ReferralCode(1))); err != nil {
		t.Fatalf("invitee /start error = %v", err)
	}

	if got := h.balance(t, 1); got != h.cfg.Credits.WelcomeGrant+h.cfg.Credits.ReferrerBonus {
		t.Errorf("referrer balance = %d, want welcome+referrer bonus", got)
	}
	if got := h.balance(t, 2); got != h.cfg.Credits.WelcomeGrant+h.cfg.Credits.InviteeBonus {
		t.Errorf("invitee balance = %d, want welcome+invitee bonus", got)
	}

	// Second attempt through /code is a no-op.
	if err := h.bot.handleMessage(ctx, textMessage(2, "/code "+ReferralCode(1))); err != nil {
		t.Fatalf("repeat referral error = %v", err)
	}
	if got := h.balance(t, 2); got != h.cfg.Credits.WelcomeGrant+h.cfg.Credits.InviteeBonus {
		t.Errorf("repeat referral changed balance to %d", got)
	}
}

func TestReferral_SelfCodeRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(5, "/start "+ReferralCode(5))); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}
	if got := h.balance(t, 5); got != h.cfg.Credits.WelcomeGrant {
		t.Errorf("balance = %d, self-referral must not pay out", got)
	}
}

func TestReferral_UnknownReferrerNotCredited(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(2, "/code REF999999")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	if got := h.balance(t, 2); got != h.cfg.Credits.WelcomeGrant {
		t.Errorf("invitee balance = %d, want welcome grant only", got)
	}
	if got := h.balance(t, 999999); got != 0 {
		t.Errorf("nonexistent referrer balance = %d, want 0", got)
	}
	if len(h.codes.referrals) != 0 {
		t.Errorf("referral recorded for unknown referrer: %v", h.codes.referrals)
	}
}

func TestExportCommand_SendsConversationDocument(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.completer.reply = "General Kenobi"

	// Nothing to export yet: a notice, no document.
	if err := h.bot.handleMessage(ctx, textMessage(7, "/export")); err != nil {
		t.Fatalf("empty export error = %v", err)
	}
	if len(h.gw.documents) != 0 {
		t.Fatal("empty history produced a document")
	}

	if err := h.bot.handleMessage(ctx, textMessage(7, "hello there")); err != nil {
		t.Fatal(err)
	}
	if err := h.bot.handleMessage(ctx, textMessage(7, "/export")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	h.gw.mu.Lock()
	docs := append([]sentDocument(nil), h.gw.documents...)
	h.gw.mu.Unlock()
	if len(docs) != 1 {
		t.Fatalf("documents sent = %d, want 1", len(docs))
	}
	if docs[0].ChatID != 7 || !strings.HasSuffix(docs[0].Filename, ".txt") {
		t.Errorf("document = %+v, want .txt for chat 7", docs[0])
	}
	body := string(docs[0].Data)
	if !strings.Contains(body, "hello there") || !strings.Contains(body, "General Kenobi") {
		t.Errorf("export body = %q, want both conversation turns", body)
	}
}

func TestModelPicker_ButtonsSorted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(7, "/models")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}
	last := h.gw.lastSent(t)
	if last.Keyboard == nil {
		t.Fatal("model picker has no keyboard")
	}
	labels := make([]string, 0, len(last.Keyboard.InlineKeyboard))
	for _, row := range last.Keyboard.InlineKeyboard {
		labels = append(labels, row[0].Text)
	}
	if len(labels) != len(h.cfg.Credits.MessageCosts) {
		t.Fatalf("buttons = %d, want one per model", len(labels))
	}
	if !sort.StringsAreSorted(labels) {
		t.Errorf("model buttons = %v, want sorted order", labels)
	}
}

func TestActivationCode_RedeemOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.codes.CreateCode("GOLD1234", 40); err != nil {
		t.Fatal(err)
	}

	if err := h.bot.handleMessage(ctx, textMessage(7, "/code gold1234")); err != nil {
		t.Fatalf("redeem error = %v", err)
	}
	if got := h.balance(t, 7); got != h.cfg.Credits.WelcomeGrant+40 {
		t.Errorf("balance = %d, want welcome+40", got)
	}

	if err := h.bot.handleMessage(ctx, textMessage(7, "/code GOLD1234")); err != nil {
		t.Fatalf("second redeem error = %v", err)
	}
	if got := h.balance(t, 7); got != h.cfg.Credits.WelcomeGrant+40 {
		t.Errorf("second redeem changed balance to %d", got)
	}
}

func TestReminderWorker_DeliversAndMarksSent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// User must exist for language lookup.
	if err := h.bot.handleMessage(ctx, textMessage(7, "/start")); err != nil {
		t.Fatal(err)
	}
	if _, err := h.reminders.CreateReminder(7, "stand up", time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}

	h.bot.deliverDueReminders(ctx)

	if !strings.Contains(h.gw.lastSent(t).Text, "stand up") {
		t.Errorf("reminder text = %q", h.gw.lastSent(t).Text)
	}
	due, _ := h.reminders.DueReminders(time.Now())
	if len(due) != 0 {
		t.Errorf("%d reminders still due after delivery", len(due))
	}
}

func TestHandleCallback_AcksAndRoutes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.bot.handleMessage(ctx, textMessage(7, "/start")); err != nil {
		t.Fatal(err)
	}

	cb := &telegram.CallbackQuery{
		ID:      "cb-1",
		From:    &telegram.User{ID: 7},
		Message: &telegram.Message{Chat: &telegram.Chat{ID: 7}},
		Data:    Action{Kind: ActionBuy, Arg: "1"}.Encode(),
	}
	if err := h.bot.handleCallback(ctx, cb); err != nil {
		t.Fatalf("handleCallback() error = %v", err)
	}

	if len(h.gw.acks) != 1 || h.gw.acks[0] != "cb-1" {
		t.Errorf("acks = %v, want [cb-1]", h.gw.acks)
	}
	if got := h.balance(t, 7); got != h.cfg.Credits.WelcomeGrant+100 {
		t.Errorf("balance = %d, want welcome+Starter 100", got)
	}
}

func TestHandleCallback_UnknownDataIgnored(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.bot.handleMessage(ctx, textMessage(7, "/start")); err != nil {
		t.Fatal(err)
	}
	before := len(h.gw.sent)

	cb := &telegram.CallbackQuery{
		ID:      "cb-2",
		Message: &telegram.Message{Chat: &telegram.Chat{ID: 7}},
		Data:    "drop_tables:now",
	}
	if err := h.bot.handleCallback(ctx, cb); err != nil {
		t.Fatalf("handleCallback() error = %v", err)
	}
	if len(h.gw.sent) != before {
		t.Error("unknown callback produced a message")
	}
	if len(h.gw.acks) != 1 {
		t.Error("unknown callback was not acked")
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		data    string
		want    Action
		wantErr bool
	}{
		{"menu:settings", Action{Kind: ActionMenu, Arg: "settings"}, false},
		{"buy:2", Action{Kind: ActionBuy, Arg: "2"}, false},
		{"clear", Action{Kind: ActionClear}, false},
		{"lang:ru", Action{Kind: ActionLang, Arg: "ru"}, false},
		{"", Action{}, true},
		{"exec:rm", Action{}, true},
		{"menu:settings:extra", Action{Kind: ActionMenu, Arg: "settings:extra"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			got, err := ParseAction(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAction(%q) error = %v, wantErr %v", tt.data, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %+v, want %+v", tt.data, got, tt.want)
			}
		})
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantCmd  string
		wantArgs string
	}{
		{"/start", "/start", ""},
		{"/start REF123", "/start", "REF123"},
		{"/BUY 2", "/buy", "2"},
		{"/start@MyBot hello", "/start", "hello"},
		{"  /remind 30 tea  ", "/remind", "30 tea"},
		{"plain text", "", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd, args := splitCommand(tt.in)
			if cmd != tt.wantCmd || args != tt.wantArgs {
				t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)", tt.in, cmd, args, tt.wantCmd, tt.wantArgs)
			}
		})
	}
}

func TestPendingName_ConsumedOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if err := h.bot.handleMessage(ctx, textMessage(7, "/start")); err != nil {
		t.Fatal(err)
	}
	if err := h.users.SetPending(7, "name"); err != nil {
		t.Fatal(err)
	}

	if err := h.bot.handleMessage(ctx, textMessage(7, "Ada")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	u, err := h.users.GetUser(7)
	if err != nil {
		t.Fatal(err)
	}
	if u.DisplayName != "Ada" {
		t.Errorf("DisplayName = %q, want Ada", u.DisplayName)
	}
	if u.PendingAct != "" {
		t.Errorf("PendingAct = %q, want cleared", u.PendingAct)
	}
}

func TestImageCommand_ChargesOnDelivery(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(7, "/image a red fox")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	if got := h.balance(t, 7); got != h.cfg.Credits.WelcomeGrant-h.cfg.Credits.ImageCost {
		t.Errorf("balance = %d, want welcome minus image cost", got)
	}
	if len(h.gw.photoURLs) != 1 || h.gw.photoURLs[0] != "https://img.example/out.png" {
		t.Errorf("photoURLs = %v", h.gw.photoURLs)
	}
}

func TestAdminCommands_RequireAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.bot.handleMessage(ctx, textMessage(7, "/addcredits 9 100")); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}
	if got := h.balance(t, 9); got != 0 {
		t.Errorf("non-admin grant went through, balance = %d", got)
	}

	h.cfg.Bot.AdminIDs = []int64{7}
	if err := h.bot.handleMessage(ctx, textMessage(7, "/addcredits 9 100")); err != nil {
		t.Fatalf("admin handleMessage() error = %v", err)
	}
	if got := h.balance(t, 9); got != 100 {
		t.Errorf("admin grant balance = %d, want 100", got)
	}
}
