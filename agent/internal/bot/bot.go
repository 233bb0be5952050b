package bot

import (
	"context"
	"regexp"

	"brn-watcher/agent/database"
	"brn-watcher/agent/internal/services"
	"brn-watcher/shared/config"
	"brn-watcher/shared/localization"
	"brn-watcher/shared/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// walletPattern is the only wallet address format accepted at the
// boundary: 0x followed by exactly 40 hex characters, case-insensitive.
var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// telegramAPI is the slice of tgbotapi.BotAPI the bot depends on. Tests
// substitute a fake; production passes the real client.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot services inbound Telegram updates: commands, reply-keyboard buttons,
// wallet registrations and the language callback.
type Bot struct {
	api     telegramAPI
	store   database.Store
	client  services.BalanceFetcher
	limiter *UserLimiter
	cfg     config.BotConfig
	log     *logger.Logger
}

func New(api *tgbotapi.BotAPI, store database.Store, client services.BalanceFetcher, cfg config.BotConfig, log *logger.Logger) *Bot {
	return &Bot{
		api:     api,
		store:   store,
		client:  client,
		limiter: NewUserLimiter(cfg.RateLimit()),
		cfg:     cfg,
		log:     log,
	}
}

// StartListening consumes the update channel until ctx is cancelled. Each
// update is handled in its own goroutine; messages first pass through the
// per-user limiter.
func (b *Bot) StartListening(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("Listening for Telegram commands and messages...")

	for {
		select {
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				go b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				go b.handleUpdate(ctx, update.Message)
			}
		case <-ctx.Done():
			b.log.Info("Context cancelled. Stopping Telegram listener.")
			b.api.StopReceivingUpdates()
			return
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, msg *tgbotapi.Message) {
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	// Updates with no identifiable sender bypass throttling.
	if err := b.limiter.Admit(ctx, userID); err != nil {
		return
	}

	b.handleMessage(ctx, msg, userID)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message, userID int64) {
	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.handleStart(msg)
		}
		return
	}

	text := msg.Text
	switch {
	case localization.MatchesButton(text, localization.MsgCheckBalance):
		b.handleCheckBalances(ctx, msg.Chat.ID, userID)
	case localization.MatchesButton(text, localization.MsgWalletList):
		b.handleWalletList(ctx, msg.Chat.ID, userID)
	case localization.MatchesButton(text, localization.MsgAutoCheckOn),
		localization.MatchesButton(text, localization.MsgAutoCheckOff):
		b.handleAutoCheckToggle(ctx, msg.Chat.ID, userID)
	case walletPattern.MatchString(text):
		b.handleNewWallet(ctx, msg.Chat.ID, userID, text)
	}
}

// userLanguage resolves the user's stored language; store errors fall back
// to the default so a flaky store never blocks a reply.
func (b *Bot) userLanguage(ctx context.Context, userID int64) localization.Language {
	tag, err := b.store.GetUserLanguage(ctx, userID)
	if err != nil {
		b.log.Error("Failed to read user language", "user", userID, "error", err)
		return localization.DefaultLanguage
	}
	return localization.ParseLanguage(tag)
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("Failed to send reply message", "chatID", chatID, "error", err)
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("Failed to send reply message", "chatID", chatID, "error", err)
	}
}

// sendStatus sends a transient notice and returns its message ID so it can
// be deleted once the real reply is ready. Returns 0 on failure.
func (b *Bot) sendStatus(chatID int64, text string) int {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		b.log.Error("Failed to send status message", "chatID", chatID, "error", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Warn("Failed to delete status message", "chatID", chatID, "messageID", messageID, "error", err)
	}
}
