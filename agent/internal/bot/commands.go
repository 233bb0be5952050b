package bot

import (
	"context"
	"fmt"
	"strings"

	"brn-watcher/agent/internal/services"
	"brn-watcher/shared/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleStart shows the language picker. The welcome line is bilingual by
// construction, so the default bundle is fine here.
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.sendWithMarkup(msg.Chat.ID,
		localization.Text(localization.DefaultLanguage, localization.MsgWelcome),
		languageKeyboard())
}

// handleCallback persists the picked language and replaces the picker with
// the main keyboard.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.From == nil || !strings.HasPrefix(cb.Data, "lang_") {
		return
	}
	userID := cb.From.ID
	lang := localization.ParseLanguage(strings.TrimPrefix(cb.Data, "lang_"))

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("Failed to answer callback query", "user", userID, "error", err)
	}

	if err := b.store.SetUserLanguage(ctx, userID, string(lang)); err != nil {
		b.log.Error("Failed to persist user language", "user", userID, "error", err)
		b.send(cb.Message.Chat.ID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}

	b.deleteMessage(cb.Message.Chat.ID, cb.Message.MessageID)
	b.sendWithMarkup(cb.Message.Chat.ID,
		localization.Textf(lang, localization.MsgStart, b.cfg.MaxWallets),
		mainKeyboard(lang, false))

	b.log.Info("User language set", "user", userID, "language", lang)
}

// handleCheckBalances fetches all of the user's wallets sequentially and
// replies with one combined report. A failing fetch for one wallet renders
// the generic error line for that wallet only.
func (b *Bot) handleCheckBalances(ctx context.Context, chatID, userID int64) {
	lang := b.userLanguage(ctx, userID)

	wallets, err := b.store.ListWallets(ctx, userID)
	if err != nil {
		b.log.Error("Failed to list wallets", "user", userID, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}
	if len(wallets) == 0 {
		b.sendWithMarkup(chatID, localization.Text(lang, localization.MsgNoWallets), mainKeyboard(lang, false))
		return
	}

	statusID := b.sendStatus(chatID, localization.Text(lang, localization.MsgGettingInfo))

	var sb strings.Builder
	sb.WriteString(localization.Text(lang, localization.MsgWalletInfo))
	sb.WriteString("\n\n")
	for _, wallet := range wallets {
		report, err := b.client.Fetch(ctx, wallet)
		if err != nil {
			b.log.Error("Balance fetch failed", "user", userID, "wallet", wallet, "error", err)
			sb.WriteString(localization.Text(lang, localization.MsgErrorOccurred))
		} else {
			sb.WriteString(services.FormatReport(lang, report))
		}
		sb.WriteString("\n\n")
	}

	b.deleteMessage(chatID, statusID)

	autoCheck, err := b.store.GetAutoCheck(ctx, userID)
	if err != nil {
		b.log.Error("Failed to read auto-check flag", "user", userID, "error", err)
	}
	b.sendWithMarkup(chatID, sb.String(), mainKeyboard(lang, autoCheck))
	b.log.Info("Balance check completed", "user", userID, "wallets", len(wallets))
}

func (b *Bot) handleWalletList(ctx context.Context, chatID, userID int64) {
	lang := b.userLanguage(ctx, userID)

	wallets, err := b.store.ListWallets(ctx, userID)
	if err != nil {
		b.log.Error("Failed to list wallets", "user", userID, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}
	if len(wallets) == 0 {
		b.sendWithMarkup(chatID, localization.Text(lang, localization.MsgNoWallets), mainKeyboard(lang, false))
		return
	}

	var sb strings.Builder
	sb.WriteString(localization.Text(lang, localization.MsgWalletList))
	sb.WriteString(":\n\n")
	for i, wallet := range wallets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, wallet)
	}

	autoCheck, err := b.store.GetAutoCheck(ctx, userID)
	if err != nil {
		b.log.Error("Failed to read auto-check flag", "user", userID, "error", err)
	}
	b.sendWithMarkup(chatID, sb.String(), mainKeyboard(lang, autoCheck))
	b.log.Info("Wallet list displayed", "user", userID)
}

// handleAutoCheckToggle flips the per-user auto-check flag across all of
// the user's wallets.
func (b *Bot) handleAutoCheckToggle(ctx context.Context, chatID, userID int64) {
	lang := b.userLanguage(ctx, userID)

	current, err := b.store.GetAutoCheck(ctx, userID)
	if err != nil {
		b.log.Error("Failed to read auto-check flag", "user", userID, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}

	next := !current
	if err := b.store.SetAutoCheck(ctx, userID, next); err != nil {
		b.log.Error("Failed to update auto-check flag", "user", userID, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}

	key := localization.MsgAutoCheckDisabled
	if next {
		key = localization.MsgAutoCheckEnabled
	}
	b.sendWithMarkup(chatID, localization.Text(lang, key), mainKeyboard(lang, next))
	b.log.Info("Auto-check status changed", "user", userID, "enabled", next)
}

// handleNewWallet registers an already pattern-validated wallet address:
// duplicates and the wallet limit are rejected before any store mutation,
// then the wallet is saved with the user's current auto-check flag and a
// first report is fetched as confirmation.
func (b *Bot) handleNewWallet(ctx context.Context, chatID, userID int64, address string) {
	lang := b.userLanguage(ctx, userID)

	autoCheck, err := b.store.GetAutoCheck(ctx, userID)
	if err != nil {
		b.log.Error("Failed to read auto-check flag", "user", userID, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}

	exists, err := b.store.WalletExists(ctx, userID, address)
	if err != nil {
		b.log.Error("Failed to check wallet existence", "user", userID, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}
	if exists {
		b.sendWithMarkup(chatID, localization.Text(lang, localization.MsgWalletExists), mainKeyboard(lang, autoCheck))
		return
	}

	count, err := b.store.CountWallets(ctx, userID)
	if err != nil {
		b.log.Error("Failed to count wallets", "user", userID, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}
	if count >= int64(b.cfg.MaxWallets) {
		b.sendWithMarkup(chatID, localization.Textf(lang, localization.MsgWalletLimit, b.cfg.MaxWallets), mainKeyboard(lang, autoCheck))
		return
	}

	if err := b.store.AddWallet(ctx, userID, address, autoCheck); err != nil {
		b.log.Error("Failed to save wallet", "user", userID, "wallet", address, "error", err)
		b.send(chatID, localization.Text(lang, localization.MsgErrorOccurred))
		return
	}

	var info string
	report, err := b.client.Fetch(ctx, address)
	if err != nil {
		b.log.Error("Balance fetch for new wallet failed", "user", userID, "wallet", address, "error", err)
		info = localization.Text(lang, localization.MsgErrorOccurred)
	} else {
		info = services.FormatReport(lang, report)
	}

	b.sendWithMarkup(chatID,
		info+"\n"+localization.Text(lang, localization.MsgWalletSaved),
		mainKeyboard(lang, autoCheck))
	b.log.Info("New wallet added", "user", userID, "wallet", address)
}
