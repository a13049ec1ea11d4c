// Package keyboards builds the reply keyboards shared across handlers.
package keyboards

import (
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/OleksandrShchur/FindIFBot/internal/locales"
)

// Default builds the persistent reply keyboard shown to users outside a
// submission flow.
func Default(localizer *i18n.Localizer) *telego.ReplyKeyboardMarkup {
	return tu.Keyboard(
		tu.KeyboardRow(
			tu.KeyboardButton(locales.GetMessage(localizer, "BtnFind", nil, nil)),
			tu.KeyboardButton(locales.GetMessage(localizer, "BtnAds", nil, nil)),
		),
		tu.KeyboardRow(
			tu.KeyboardButton(locales.GetMessage(localizer, "BtnAdvice", nil, nil)),
			tu.KeyboardButton(locales.GetMessage(localizer, "BtnAdsRules", nil, nil)),
		),
		tu.KeyboardRow(
			tu.KeyboardButton(locales.GetMessage(localizer, "BtnHelp", nil, nil)),
			tu.KeyboardButton(locales.GetMessage(localizer, "BtnSupport", nil, nil)),
		),
	).WithResizeKeyboard()
}
