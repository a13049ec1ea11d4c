package dispatch

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"

	"github.com/OleksandrShchur/FindIFBot/internal/locales"
)

// SetupCommands registers the bot command list shown in the Telegram
// client menu.
func (d *Dispatcher) SetupCommands(ctx context.Context) error {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	commands := []telego.BotCommand{
		{Command: "start", Description: locales.GetMessage(localizer, "CmdStartDesc", nil, nil)},
		{Command: "find", Description: locales.GetMessage(localizer, "CmdFindDesc", nil, nil)},
		{Command: "ads", Description: locales.GetMessage(localizer, "CmdAdsDesc", nil, nil)},
		{Command: "advice", Description: locales.GetMessage(localizer, "CmdAdviceDesc", nil, nil)},
		{Command: "help", Description: locales.GetMessage(localizer, "CmdHelpDesc", nil, nil)},
		{Command: "ads_rule", Description: locales.GetMessage(localizer, "CmdAdsRulesDesc", nil, nil)},
		{Command: "donate", Description: locales.GetMessage(localizer, "CmdDonateDesc", nil, nil)},
	}

	if err := d.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands}); err != nil {
		return fmt.Errorf("failed to register bot commands: %w", err)
	}
	return nil
}
