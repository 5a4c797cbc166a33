package telegram

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-jobsearch-pipeline/internal/models"
	"go-jobsearch-pipeline/internal/state"
)

// Resolver looks up display metadata for a job id so button presses can
// record title/company without parsing message text.
type Resolver func(id string) (state.Meta, bool)

type Bot struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	ledger  *state.Ledger
	resolve Resolver
}

func NewBot(token string, chatID int64, ledger *state.Ledger, resolve Resolver) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	if resolve == nil {
		resolve = func(string) (state.Meta, bool) { return state.Meta{}, false }
	}
	return &Bot{
		api:     api,
		chatID:  chatID,
		ledger:  ledger,
		resolve: resolve,
	}, nil
}

// SendJob delivers one digest item with its interactive buttons. It
// implements digest.Notifier.
func (b *Bot) SendJob(job models.ScoredJob) error {
	text := fmt.Sprintf("<b>%s</b>\n🏢 %s", job.Title, job.Company)
	if job.Location != "" {
		text += fmt.Sprintf(" • 📍 %s", job.Location)
	}
	text += fmt.Sprintf("\n⭐ Score: %.2f", job.Score)
	if job.Age > 0 {
		text += fmt.Sprintf(" [Day %d]", job.Age)
	}
	if job.WhyFit != "" {
		text += fmt.Sprintf("\n💡 %s", job.WhyFit)
	}

	//create inline keyboard
	var rows [][]tgbotapi.InlineKeyboardButton
	firstRow := []tgbotapi.InlineKeyboardButton{}
	if job.URL != "" {
		firstRow = append(firstRow, tgbotapi.NewInlineKeyboardButtonURL("🔗 Apply Now", job.URL))
	}
	firstRow = append(firstRow, tgbotapi.NewInlineKeyboardButtonData("✅ Mark Applied", callbackApply+job.ID))
	rows = append(rows, firstRow)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Not Relevant", callbackIgnore+job.ID),
	))

	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)

	_, err := b.api.Send(msg)
	return err
}

// SendDigestHeader announces how many matches follow.
func (b *Bot) SendDigestHeader(count int, date string) error {
	plural := "es"
	if count == 1 {
		plural = ""
	}
	return b.SendStatus(fmt.Sprintf("<b>🎯 %d New Job Match%s</b>\n<i>Found on %s</i>", count, plural, date))
}

func (b *Bot) SendStatus(text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(errReq error) error {
	return b.SendStatus(fmt.Sprintf("⚠️ <b>Pipeline Error</b>:\n%v", errReq))
}

// Run polls for updates until the context is cancelled. onSearch is
// invoked for the /search command (the bot owner wires it to a pipeline
// run).
func (b *Bot) Run(ctx context.Context, onSearch func()) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Printf("🤖 Telegram bot polling started")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Printf("🛑 Telegram bot polling stopped")
			return
		case update := <-updates:
			b.handleUpdate(update, onSearch)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update, onSearch func()) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
	if update.Message != nil && update.Message.Text != "" {
		//only respond to the configured chat
		if update.Message.Chat.ID != b.chatID {
			log.Printf("⚠️ Ignored command from wrong chat %d", update.Message.Chat.ID)
			return
		}
		b.handleCommand(update.Message.Text, onSearch)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	action, id, ok := ParseCallback(cb.Data)
	if !ok {
		b.answer(cb.ID, "Unknown action")
		return
	}
	log.Printf("🔘 Button pressed: %s", cb.Data)

	meta, _ := b.resolve(id)

	var reply, edited string
	switch action {
	case ActionApply:
		if err := b.ledger.Mark(state.CategoryApplied, id, meta); err != nil {
			b.answer(cb.ID, "❌ Failed to record")
			return
		}
		reply = "✅ Marked as applied"
		edited = fmt.Sprintf("✅ <b>APPLIED</b>\n<s>%s</s>\n<s>🏢 %s</s>", meta.Title, meta.Company)
	case ActionIgnore:
		meta.Reason = "user_ignored"
		if err := b.ledger.Mark(state.CategoryIgnored, id, meta); err != nil {
			b.answer(cb.ID, "❌ Failed to record")
			return
		}
		reply = "❌ Marked as not relevant"
		edited = fmt.Sprintf("❌ <b>NOT RELEVANT</b>\n<s>%s</s>\n<s>🏢 %s</s>", meta.Title, meta.Company)
	case ActionUndoApply:
		existed, err := b.ledger.Unmark(state.CategoryApplied, id)
		if err != nil || !existed {
			b.answer(cb.ID, "Nothing to undo")
			return
		}
		reply = "↩️ Apply undone, job is eligible again"
	case ActionUndoIgnore:
		existed, err := b.ledger.Unmark(state.CategoryIgnored, id)
		if err != nil || !existed {
			b.answer(cb.ID, "Nothing to undo")
			return
		}
		reply = "↩️ Ignore undone, job is eligible again"
	}

	b.answer(cb.ID, reply)

	if edited != "" && cb.Message != nil {
		undo := callbackUndoApply
		if action == ActionIgnore {
			undo = callbackUndoIgnore
		}
		edit := tgbotapi.NewEditMessageTextAndMarkup(
			b.chatID, cb.Message.MessageID, edited,
			tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("↩️ Undo", undo+id),
			)),
		)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(edit); err != nil {
			log.Printf("⚠️ Failed to edit message: %v", err)
		}
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("⚠️ Failed to answer callback query: %v", err)
	}
}

func (b *Bot) handleCommand(text string, onSearch func()) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	log.Printf("📨 Command received: %q", text)

	switch fields[0] {
	case "/help", "/start":
		b.SendStatus("Commands:\n" +
			"/search - run job search now\n" +
			"/stats - ledger statistics\n" +
			"/applied - list applied jobs\n" +
			"/ignored - list ignored jobs\n" +
			"/undo <applied|ignored|sent_to_telegram> <job id> - reverse an action")
	case "/stats":
		s := b.ledger.Stats()
		b.SendStatus(fmt.Sprintf("📊 <b>Job State</b>\nApplied: %d\nIgnored: %d\nSent: %d\nLast updated: %s",
			s.Applied, s.Ignored, s.Sent, s.LastUpdated))
	case "/applied":
		b.SendStatus(formatApplied(b.ledger.Applied()))
	case "/ignored":
		b.SendStatus(formatIgnored(b.ledger.Ignored()))
	case "/undo":
		if len(fields) != 3 {
			b.SendStatus("Usage: /undo <applied|ignored|sent_to_telegram> <job id>")
			return
		}
		existed, err := b.ledger.Unmark(fields[1], fields[2])
		if err != nil {
			b.SendStatus(fmt.Sprintf("⚠️ %v", err))
			return
		}
		if !existed {
			b.SendStatus("Nothing to undo for that job")
			return
		}
		b.SendStatus("↩️ Undone, job is eligible again")
	case "/search":
		if onSearch == nil {
			b.SendStatus("Search is not wired up in this process")
			return
		}
		b.SendStatus("🔍 Running job search...")
		go onSearch()
	default:
		b.SendStatus("Unknown command, try /help")
	}
}

func formatApplied(entries map[string]state.AppliedEntry) string {
	if len(entries) == 0 {
		return "No applied jobs yet"
	}
	lines := []string{"✅ <b>Applied</b>"}
	ids := sortedKeys(entries)
	for _, id := range ids {
		e := entries[id]
		lines = append(lines, fmt.Sprintf("• %s @ %s (%s)\n  <code>%s</code>", e.Title, e.Company, e.Date, id))
	}
	return strings.Join(lines, "\n")
}

func formatIgnored(entries map[string]state.IgnoredEntry) string {
	if len(entries) == 0 {
		return "No ignored jobs yet"
	}
	lines := []string{"❌ <b>Ignored</b>"}
	ids := sortedKeys(entries)
	for _, id := range ids {
		e := entries[id]
		lines = append(lines, fmt.Sprintf("• %s @ %s (%s, %s)\n  <code>%s</code>", e.Title, e.Company, e.Date, e.Reason, id))
	}
	return strings.Join(lines, "\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
