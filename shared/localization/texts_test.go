package localization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		tag  string
		want Language
	}{
		{"en", LanguageEN},
		{"ru", LanguageRU},
		{"", DefaultLanguage},
		{"de", DefaultLanguage},
		{"EN", DefaultLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.tag))
		})
	}
}

func TestTextFallsBackToDefaultBundle(t *testing.T) {
	assert.Equal(t, bundle[DefaultLanguage][MsgWelcome], Text(Language("de"), MsgWelcome))
	assert.Equal(t, bundle[LanguageRU][MsgNoWallets], Text(LanguageRU, MsgNoWallets))
}

func TestTextfFormatsArguments(t *testing.T) {
	assert.Equal(t, "Reached the limit of 5 wallets", Textf(LanguageEN, MsgWalletLimit, 5))
	assert.Equal(t, "Достигнут лимит в 5 кошельков", Textf(LanguageRU, MsgWalletLimit, 5))
}

func TestMatchesButtonAcrossLanguages(t *testing.T) {
	assert.True(t, MatchesButton("Check balances", MsgCheckBalance))
	assert.True(t, MatchesButton("Проверить балансы", MsgCheckBalance))
	assert.True(t, MatchesButton("✅ Включить автопроверку", MsgAutoCheckOn))
	assert.False(t, MatchesButton("check balances", MsgCheckBalance))
	assert.False(t, MatchesButton("Check balances", MsgWalletList))
}

// Every supported language must carry every key, or Text would silently
// serve the default bundle for a language the user explicitly picked.
func TestBundleComplete(t *testing.T) {
	keys := []MessageKey{
		MsgWelcome, MsgStart, MsgCheckBalance, MsgWalletList,
		MsgAutoCheckOn, MsgAutoCheckOff, MsgNoWallets, MsgGettingInfo,
		MsgWalletInfo, MsgWallet, MsgBalance, MsgTxCount,
		MsgWalletExists, MsgWalletLimit, MsgWalletSaved,
		MsgAutoCheckEnabled, MsgAutoCheckDisabled, MsgErrorOccurred,
	}
	for _, lang := range All() {
		msgs, ok := bundle[lang]
		assert.True(t, ok, "missing bundle for %s", lang)
		for _, key := range keys {
			assert.NotEmpty(t, msgs[key], "missing %s message for %s", key, lang)
		}
	}
}
