package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kdziekansky/telegram2/internal/app/credit"
	"github.com/kdziekansky/telegram2/internal/domain"
	"github.com/kdziekansky/telegram2/internal/i18n"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
	"github.com/kdziekansky/telegram2/internal/infra/telegram"
)

// editInterval paces streaming edits of the draft message. Telegram rate
// limits editMessageText hard, so partial updates are best effort.
const editInterval = 1500 * time.Millisecond

// maxDocumentChars caps how much of a document is fed to the model.
const maxDocumentChars = 8000

// messageCost is the per-message price for the user's model and mode;
// the more expensive of the two wins.
func (b *Bot) messageCost(user domain.User) int64 {
	cost := b.cfg.MessageCost(user.Model)
	for _, m := range b.cfg.ChatModes() {
		if m.ID == user.Mode && m.CreditCost > cost {
			cost = m.CreditCost
		}
	}
	return cost
}

// requireCredits checks affordability before any provider call. The debit
// itself happens only after a successful delivery and is re-validated by
// the store, so this is a courtesy check, not the enforcement point.
func (b *Bot) requireCredits(ctx context.Context, user domain.User, cost int64) (bool, error) {
	ok, err := b.ledger.HasSufficient(user.ID, cost)
	if err != nil {
		return false, err
	}
	if !ok {
		observability.DebitsRefused.Inc()
		return false, b.send(ctx, user.ID, b.t(user, "insufficient_credits", nil), nil)
	}
	return true, nil
}

// settleDebit charges for a delivered result and warns on a low balance.
// A refusal here means the balance moved underneath us between the
// affordability check and delivery; the result already went out, so the
// user gets it free and we log the miss.
func (b *Bot) settleDebit(ctx context.Context, user domain.User, cost int64, description string) error {
	newBal, err := b.ledger.Debit(user.ID, cost, description)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			observability.DebitsRefused.Inc()
			b.log.Warn().Int64("user_id", user.ID).Int64("cost", cost).Msg("post-delivery debit refused")
			return nil
		}
		return err
	}
	observability.CreditsDebited.WithLabelValues(string(credit.CategoryFor(description))).Add(float64(cost))

	if newBal < b.cfg.Credits.LowBalanceWarning {
		warn := b.t(user, "low_credits_warning", nil) + " " + b.t(user, "low_credits_message", i18n.Vars{
			"credits": strconv.FormatInt(newBal, 10),
		})
		if err := b.send(ctx, user.ID, warn, nil); err != nil {
			b.log.Warn().Err(err).Int64("user_id", user.ID).Msg("low balance warning not delivered")
		}
	}
	return nil
}

// systemPrompt returns the active chat mode's instruction, if any.
func (b *Bot) systemPrompt(user domain.User) string {
	for _, m := range b.cfg.ChatModes() {
		if m.ID == user.Mode {
			return m.Prompt
		}
	}
	return ""
}

// buildMessages assembles the provider conversation: mode instruction,
// recent history, then the new user turn.
func (b *Bot) buildMessages(user domain.User, text string) ([]domain.CompletionMessage, error) {
	var msgs []domain.CompletionMessage
	if prompt := b.systemPrompt(user); prompt != "" {
		msgs = append(msgs, domain.CompletionMessage{Role: "system", Content: prompt})
	}

	history, err := b.stores.Messages.History(user.ID, b.cfg.Credits.ContextMessages)
	if err != nil {
		return nil, err
	}
	for _, m := range history {
		msgs = append(msgs, domain.CompletionMessage{Role: m.Role, Content: m.Content})
	}

	return append(msgs, domain.CompletionMessage{Role: "user", Content: text}), nil
}

// handleChat streams a completion into a draft message, then charges for
// it. The provider is never called on an unaffordable request, and the
// debit is never taken for an undelivered reply.
func (b *Bot) handleChat(ctx context.Context, user domain.User, text string) error {
	cost := b.messageCost(user)
	if ok, err := b.requireCredits(ctx, user, cost); !ok {
		return err
	}

	if err := b.gw.SendChatAction(ctx, user.ID, "typing"); err != nil {
		b.log.Debug().Err(err).Msg("chat action failed")
	}
	draftID, err := b.gw.SendMessage(ctx, user.ID, b.t(user, "generating_response", nil), nil)
	if err != nil {
		return err
	}

	msgs, err := b.buildMessages(user, text)
	if err != nil {
		return err
	}

	var (
		partial  strings.Builder
		lastEdit = b.now()
	)
	start := time.Now()
	full, err := b.completer.CompleteStream(ctx, user.Model, msgs, func(delta string) error {
		partial.WriteString(delta)
		if b.now().Sub(lastEdit) >= editInterval && partial.Len() > 0 {
			lastEdit = b.now()
			if err := b.gw.EditMessageText(ctx, user.ID, draftID, partial.String(), nil); err != nil {
				b.log.Debug().Err(err).Msg("draft edit failed")
			}
		}
		return nil
	})
	observability.CompletionDuration.WithLabelValues(user.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.CompletionsTotal.WithLabelValues(user.Model, "error").Inc()
		if editErr := b.gw.EditMessageText(ctx, user.ID, draftID, b.t(user, "error_generic", nil), nil); editErr != nil {
			b.log.Debug().Err(editErr).Msg("error edit failed")
		}
		return fmt.Errorf("completion: %w", err)
	}
	observability.CompletionsTotal.WithLabelValues(user.Model, "ok").Inc()

	if err := b.gw.EditMessageText(ctx, user.ID, draftID, full, &telegram.SendOptions{ParseMode: "Markdown"}); err != nil {
		// Model output is not always valid Markdown; retry plain.
		if err := b.gw.EditMessageText(ctx, user.ID, draftID, full, nil); err != nil {
			return err
		}
	}

	if err := b.stores.Messages.AppendMessage(user.ID, "user", text); err != nil {
		return err
	}
	if err := b.stores.Messages.AppendMessage(user.ID, "assistant", full); err != nil {
		return err
	}

	return b.settleDebit(ctx, user, cost, fmt.Sprintf("message (%s)", user.Model))
}

// handlePhoto downloads the largest size and runs it through the vision
// model, using the caption as the instruction when present.
func (b *Bot) handlePhoto(ctx context.Context, user domain.User, msg *telegram.Message) error {
	cost := b.cfg.Credits.PhotoCost
	if ok, err := b.requireCredits(ctx, user, cost); !ok {
		return err
	}

	if err := b.send(ctx, user.ID, b.t(user, "analyzing_photo", nil), nil); err != nil {
		return err
	}

	photo := msg.LargestPhoto()
	data, err := b.gw.DownloadFile(ctx, photo.FileID)
	if err != nil {
		return fmt.Errorf("download photo: %w", err)
	}

	instruction := msg.Caption
	if instruction == "" {
		instruction = "Describe this image in detail."
	}
	result, err := b.completer.AnalyzeImage(ctx, data, instruction)
	if err != nil {
		return fmt.Errorf("analyze photo: %w", err)
	}

	if err := b.send(ctx, user.ID, result, nil); err != nil {
		return err
	}
	return b.settleDebit(ctx, user, cost, "photo analysis")
}

// handleDocument analyzes an uploaded file. Image documents go through
// the vision model; anything that decodes as text is summarized as text.
func (b *Bot) handleDocument(ctx context.Context, user domain.User, msg *telegram.Message) error {
	cost := b.cfg.Credits.DocumentCost
	if ok, err := b.requireCredits(ctx, user, cost); !ok {
		return err
	}

	if err := b.send(ctx, user.ID, b.t(user, "analyzing_document", nil), nil); err != nil {
		return err
	}

	doc := msg.Document
	data, err := b.gw.DownloadFile(ctx, doc.FileID)
	if err != nil {
		return fmt.Errorf("download document: %w", err)
	}

	instruction := msg.Caption
	if instruction == "" {
		instruction = "Summarize this document and point out anything notable."
	}

	var result string
	switch {
	case strings.HasPrefix(doc.MimeType, "image/"):
		result, err = b.completer.AnalyzeImage(ctx, data, instruction)
	case utf8.Valid(data):
		content := string(data)
		if len(content) > maxDocumentChars {
			content = content[:maxDocumentChars]
		}
		result, err = b.completer.Complete(ctx, user.Model, []domain.CompletionMessage{
			{Role: "system", Content: "You analyze documents the user uploads."},
			{Role: "user", Content: fmt.Sprintf("%s\n\nFile %q:\n\n%s", instruction, doc.FileName, content)},
		})
	default:
		return b.send(ctx, user.ID, b.t(user, "error_generic", nil), nil)
	}
	if err != nil {
		return fmt.Errorf("analyze document: %w", err)
	}

	if err := b.send(ctx, user.ID, result, nil); err != nil {
		return err
	}
	return b.settleDebit(ctx, user, cost, "document:"+doc.FileName)
}

// handlePending consumes text the bot asked for earlier. The marker is
// cleared before acting so a failure never wedges the session.
func (b *Bot) handlePending(ctx context.Context, user domain.User, text string) error {
	pending := user.PendingAct
	if err := b.stores.Users.SetPending(user.ID, ""); err != nil {
		return err
	}

	switch pending {
	case "name":
		return b.cmdSetName(ctx, user, strings.TrimSpace(text))
	default:
		b.log.Warn().Str("pending", pending).Int64("user_id", user.ID).Msg("unknown pending action dropped")
		return nil
	}
}

// cmdImage generates an image from the prompt and charges on delivery.
func (b *Bot) cmdImage(ctx context.Context, user domain.User, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return b.send(ctx, user.ID, b.t(user, "image_usage", nil), nil)
	}
	cost := b.cfg.Credits.ImageCost
	if ok, err := b.requireCredits(ctx, user, cost); !ok {
		return err
	}

	if err := b.send(ctx, user.ID, b.t(user, "generating_image", nil), nil); err != nil {
		return err
	}
	if err := b.gw.SendChatAction(ctx, user.ID, "upload_photo"); err != nil {
		b.log.Debug().Err(err).Msg("chat action failed")
	}

	url, err := b.completer.GenerateImage(ctx, prompt)
	if err != nil {
		observability.ImagesGenerated.WithLabelValues("error").Inc()
		return b.send(ctx, user.ID, b.t(user, "image_generation_error", nil), nil)
	}
	observability.ImagesGenerated.WithLabelValues("ok").Inc()

	caption := fmt.Sprintf("%s\n%s: %d", b.t(user, "generated_image", nil), b.t(user, "cost", nil), cost)
	if err := b.gw.SendPhotoURL(ctx, user.ID, url, caption); err != nil {
		return err
	}
	return b.settleDebit(ctx, user, cost, "image: "+prompt)
}

// cmdTranslate translates text without touching conversation history.
func (b *Bot) cmdTranslate(ctx context.Context, user domain.User, args string) error {
	target, text, _ := strings.Cut(args, " ")
	text = strings.TrimSpace(text)
	if target == "" || text == "" {
		return b.send(ctx, user.ID, b.t(user, "translate_usage", nil), nil)
	}
	cost := b.cfg.MessageCost(user.Model)
	if ok, err := b.requireCredits(ctx, user, cost); !ok {
		return err
	}

	result, err := b.completer.Complete(ctx, user.Model, []domain.CompletionMessage{
		{Role: "system", Content: fmt.Sprintf("Translate the user's text into %q. Reply with the translation only.", target)},
		{Role: "user", Content: text},
	})
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	if err := b.send(ctx, user.ID, result, nil); err != nil {
		return err
	}
	return b.settleDebit(ctx, user, cost, fmt.Sprintf("message (translate %s)", target))
}

// cmdExport sends the stored conversation as a plain-text document.
func (b *Bot) cmdExport(ctx context.Context, user domain.User) error {
	history, err := b.stores.Messages.History(user.ID, b.cfg.Credits.HistoryLimit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return b.send(ctx, user.ID, b.t(user, "history_empty", nil), nil)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - %s\n", b.cfg.Bot.Name, b.now().Format("2006-01-02 15:04"))
	for _, m := range history {
		fmt.Fprintf(&sb, "\n[%s] %s:\n%s\n", m.CreatedAt.Format("2006-01-02 15:04"), m.Role, m.Content)
	}

	filename := fmt.Sprintf("conversation-%s.txt", b.now().Format("20060102-1504"))
	return b.gw.SendDocument(ctx, user.ID, filename, []byte(sb.String()))
}

// sendHistory renders the stored conversation with a clear button.
func (b *Bot) sendHistory(ctx context.Context, user domain.User, kb *telegram.InlineKeyboard) error {
	history, err := b.stores.Messages.History(user.ID, b.cfg.Credits.HistoryLimit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return b.send(ctx, user.ID, b.t(user, "history_empty", nil), nil)
	}

	var sb strings.Builder
	sb.WriteString(b.t(user, "history_title", nil))
	for _, m := range history {
		icon := "👤"
		if m.Role == "assistant" {
			icon = "🤖"
		}
		fmt.Fprintf(&sb, "\n\n%s %s", icon, m.Content)
	}
	return b.send(ctx, user.ID, sb.String(), kb)
}
