package bot

import (
	"brn-watcher/shared/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackLangRU = "lang_ru"
	callbackLangEN = "lang_en"
)

// mainKeyboard builds the persistent reply keyboard. The third button
// toggles, so its label reflects the user's current auto-check flag.
func mainKeyboard(lang localization.Language, autoCheck bool) tgbotapi.ReplyKeyboardMarkup {
	toggleKey := localization.MsgAutoCheckOn
	if autoCheck {
		toggleKey = localization.MsgAutoCheckOff
	}

	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(localization.Text(lang, localization.MsgCheckBalance)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(localization.Text(lang, localization.MsgWalletList)),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(localization.Text(lang, toggleKey)),
		),
	)
}

// languageKeyboard is the inline language picker shown on /start.
func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", callbackLangRU),
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", callbackLangEN),
		),
	)
}
