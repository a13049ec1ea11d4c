package telegoapi

import (
	"context"

	"github.com/mymmrac/telego"
)

// botAdapter wraps *telego.Bot so it satisfies BotAPI: telego's
// GetChatMemberCount returns (*int, error), while BotAPI expects
// (int, error).
type botAdapter struct {
	*telego.Bot
}

// Wrap adapts a *telego.Bot to the BotAPI interface.
func Wrap(bot *telego.Bot) BotAPI {
	return botAdapter{bot}
}

func (b botAdapter) GetChatMemberCount(ctx context.Context, params *telego.GetChatMemberCountParams) (int, error) {
	count, err := b.Bot.GetChatMemberCount(ctx, params)
	if err != nil || count == nil {
		return 0, err
	}
	return *count, nil
}
