// Package localization holds the user-facing message bundle. Messages are
// addressed by a typed language and message key so lookups cannot silently
// miss the way stringly-typed nested maps can.
package localization

import "fmt"

// Language is a user's preferred reply language.
type Language string

const (
	LanguageEN Language = "en"
	LanguageRU Language = "ru"
)

// DefaultLanguage is used when a user never picked one.
const DefaultLanguage = LanguageEN

// ParseLanguage maps a stored language tag to a Language, falling back to
// the default for unknown or empty tags.
func ParseLanguage(tag string) Language {
	switch tag {
	case string(LanguageRU):
		return LanguageRU
	case string(LanguageEN):
		return LanguageEN
	default:
		return DefaultLanguage
	}
}

// All returns every supported language, default first.
func All() []Language {
	return []Language{LanguageEN, LanguageRU}
}

// MessageKey identifies one message in the bundle.
type MessageKey string

const (
	MsgWelcome           MessageKey = "welcome"
	MsgStart             MessageKey = "start_msg"
	MsgCheckBalance      MessageKey = "check_balance"
	MsgWalletList        MessageKey = "wallet_list"
	MsgAutoCheckOn       MessageKey = "auto_check_on"
	MsgAutoCheckOff      MessageKey = "auto_check_off"
	MsgNoWallets         MessageKey = "no_wallets"
	MsgGettingInfo       MessageKey = "getting_info"
	MsgWalletInfo        MessageKey = "wallet_info"
	MsgWallet            MessageKey = "wallet"
	MsgBalance           MessageKey = "balance"
	MsgTxCount           MessageKey = "tx_count"
	MsgWalletExists      MessageKey = "wallet_exists"
	MsgWalletLimit       MessageKey = "wallet_limit"
	MsgWalletSaved       MessageKey = "wallet_saved"
	MsgAutoCheckEnabled  MessageKey = "auto_check_enabled"
	MsgAutoCheckDisabled MessageKey = "auto_check_disabled"
	MsgErrorOccurred     MessageKey = "error_occurred"
)

var bundle = map[Language]map[MessageKey]string{
	LanguageRU: {
		MsgWelcome:           "Выберите язык / Choose language:",
		MsgStart:             "Привет! Отправь мне T3rn кошелек.\nМожно добавить до %d кошельков.",
		MsgCheckBalance:      "Проверить балансы",
		MsgWalletList:        "Список кошельков",
		MsgAutoCheckOn:       "✅ Включить автопроверку",
		MsgAutoCheckOff:      "❌ Выключить автопроверку",
		MsgNoWallets:         "У вас нет сохраненных кошельков",
		MsgGettingInfo:       "Получаю информацию...",
		MsgWalletInfo:        "Информация по кошелькам:",
		MsgWallet:            "Кошелек:",
		MsgBalance:           "Баланс:",
		MsgTxCount:           "Количество транзакций:",
		MsgWalletExists:      "Этот кошелек уже добавлен",
		MsgWalletLimit:       "Достигнут лимит в %d кошельков",
		MsgWalletSaved:       "Кошелек сохранен",
		MsgAutoCheckEnabled:  "Автоматическая проверка балансов включена",
		MsgAutoCheckDisabled: "Автоматическая проверка балансов выключена",
		MsgErrorOccurred:     "Произошла ошибка, попробуйте позже",
	},
	LanguageEN: {
		MsgWelcome:           "Choose language / Выберите язык:",
		MsgStart:             "Hello! Send me your T3rn wallet.\nYou can add up to %d wallets.",
		MsgCheckBalance:      "Check balances",
		MsgWalletList:        "Wallet list",
		MsgAutoCheckOn:       "✅ Enable auto-check",
		MsgAutoCheckOff:      "❌ Disable auto-check",
		MsgNoWallets:         "You have no saved wallets",
		MsgGettingInfo:       "Getting information...",
		MsgWalletInfo:        "Wallet information:",
		MsgWallet:            "Wallet:",
		MsgBalance:           "Balance:",
		MsgTxCount:           "Transaction count:",
		MsgWalletExists:      "This wallet is already added",
		MsgWalletLimit:       "Reached the limit of %d wallets",
		MsgWalletSaved:       "Wallet saved",
		MsgAutoCheckEnabled:  "Automatic balance check enabled",
		MsgAutoCheckDisabled: "Automatic balance check disabled",
		MsgErrorOccurred:     "An error occurred, please try again later",
	},
}

// Text resolves a message for the given language. Unknown languages fall
// back to the default bundle so the bot never replies with an empty string.
func Text(lang Language, key MessageKey) string {
	if msgs, ok := bundle[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	return bundle[DefaultLanguage][key]
}

// Textf resolves a message and applies fmt formatting arguments.
func Textf(lang Language, key MessageKey, args ...interface{}) string {
	return fmt.Sprintf(Text(lang, key), args...)
}

// MatchesButton reports whether the given inbound text equals the button
// label for key in any supported language. Reply-keyboard labels arrive as
// plain text, and a user may tap a keyboard rendered in a language they
// have since switched away from.
func MatchesButton(text string, key MessageKey) bool {
	for _, lang := range All() {
		if text == Text(lang, key) {
			return true
		}
	}
	return false
}
