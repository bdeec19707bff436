package bot

import (
	"context"
	"time"

	"github.com/kdziekansky/telegram2/internal/i18n"
	"github.com/kdziekansky/telegram2/internal/infra/observability"
)

// reminderTick is how often due reminders are checked. Reminders are
// minute-granular, so half a minute keeps delivery prompt enough.
const reminderTick = 30 * time.Second

// runReminderWorker delivers due reminders until ctx is cancelled.
func (b *Bot) runReminderWorker(ctx context.Context) {
	ticker := time.NewTicker(reminderTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.deliverDueReminders(ctx)
		}
	}
}

// deliverDueReminders sends everything due and marks it sent. A reminder
// is marked only after a successful send, so a delivery failure retries
// on the next tick.
func (b *Bot) deliverDueReminders(ctx context.Context) {
	due, err := b.stores.Reminders.DueReminders(b.now())
	if err != nil {
		b.log.Warn().Err(err).Msg("due reminder query failed")
		return
	}

	for _, r := range due {
		user, err := b.stores.Users.GetUser(r.UserID)
		if err != nil {
			b.log.Warn().Err(err).Int64("user_id", r.UserID).Msg("reminder owner lookup failed")
			continue
		}
		text := b.t(user, "reminder_due", i18n.Vars{"text": r.Text})
		if err := b.send(ctx, r.UserID, text, nil); err != nil {
			b.log.Warn().Err(err).Int64("reminder_id", r.ID).Msg("reminder delivery failed")
			continue
		}
		if err := b.stores.Reminders.MarkSent(r.ID); err != nil {
			b.log.Error().Err(err).Int64("reminder_id", r.ID).Msg("marking reminder sent failed")
			continue
		}
		observability.RemindersSent.Inc()
	}
}
