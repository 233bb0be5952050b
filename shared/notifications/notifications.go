package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"brn-watcher/shared/env"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

var bot *tgbotapi.BotAPI
var isInitialized bool = false
var telegramLimiter *rate.Limiter

// InitTelegramBot creates the bot API client, verifies the token with GetMe
// and arms the global outbound limiter. Telegram allows roughly 30 msg/s
// overall; we stay well under it.
func InitTelegramBot() error {
	if isInitialized && bot != nil {
		log.Println("INFO: Telegram bot already initialized.")
		return nil
	}

	isInitialized = false
	bot = nil
	telegramLimiter = nil

	botToken := env.TelegramBotToken
	if botToken == "" {
		return fmt.Errorf("critical error: TELEGRAM_BOT_TOKEN missing from env configuration")
	}

	log.Println("Initializing Telegram bot API...")
	var err error
	bot, err = tgbotapi.NewBotAPI(botToken)
	if err != nil {
		bot = nil
		return fmt.Errorf("failed to initialize Telegram bot API: %w", err)
	}

	log.Println("Verifying bot token with Telegram API (GetMe)...")
	userInfo, err := bot.GetMe()
	if err != nil {
		bot = nil
		return fmt.Errorf("failed to verify bot token with GetMe API call: %w", err)
	}

	isInitialized = true
	telegramLimiter = rate.NewLimiter(rate.Limit(10), 5)
	log.Printf("Telegram bot initialized successfully for @%s", userInfo.UserName)

	return nil
}

func GetBotInstance() *tgbotapi.BotAPI {
	if !isInitialized || bot == nil {
		log.Println("WARN: GetBotInstance called but bot is not initialized or initialization failed.")
	}
	return bot
}

// SendUserMessage delivers one plain-text message to a user chat. It waits
// for the global limiter, attempts delivery once and reports failure to the
// caller; per-entry retry policy belongs to the caller, not the channel.
func SendUserMessage(chatID int64, text string) error {
	if bot == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if chatID == 0 {
		return fmt.Errorf("target chatID is 0")
	}

	if telegramLimiter != nil {
		if err := telegramLimiter.Wait(context.Background()); err != nil {
			return fmt.Errorf("telegram rate limiter wait: %w", err)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to chat %d: %w", chatID, err)
	}
	return nil
}

// SendMarkup is SendUserMessage plus a reply markup (keyboard).
func SendMarkup(chatID int64, text string, markup interface{}) error {
	if bot == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}

	if telegramLimiter != nil {
		if err := telegramLimiter.Wait(context.Background()); err != nil {
			return fmt.Errorf("telegram rate limiter wait: %w", err)
		}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to chat %d: %w", chatID, err)
	}
	return nil
}

// SendSystemLogMessage mirrors an operational log line to the admin chat.
// Best-effort with a small retry budget; the admin channel must never take
// the process down.
func SendSystemLogMessage(message string) {
	if bot == nil || env.AdminChatID == 0 {
		return
	}

	if telegramLimiter != nil {
		if err := telegramLimiter.Wait(context.Background()); err != nil {
			log.Printf("ERROR: Telegram rate limiter wait error for admin chat: %v", err)
			return
		}
	}

	msg := tgbotapi.NewMessage(env.AdminChatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		_, err := bot.Send(msg)
		if err == nil {
			return
		}

		if tgErr, ok := err.(*tgbotapi.Error); ok && tgErr.Code == 429 {
			retryAfter := tgErr.RetryAfter
			if retryAfter <= 0 {
				retryAfter = 1
			}
			log.Printf("INFO: Telegram API rate limit hit (429) sending system log. Retrying after %d seconds...", retryAfter)
			time.Sleep(time.Duration(retryAfter) * time.Second)
			continue
		}

		log.Printf("ERROR: Failed to send system log message (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(time.Second)
	}
}
