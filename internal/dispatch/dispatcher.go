// Package dispatch routes incoming Telegram updates to the right place:
// commands and trigger phrases, submission-mode messages, album batches
// and moderation button presses.
package dispatch

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/OleksandrShchur/FindIFBot/internal/database"
	"github.com/OleksandrShchur/FindIFBot/internal/keyboards"
	"github.com/OleksandrShchur/FindIFBot/internal/locales"
	"github.com/OleksandrShchur/FindIFBot/internal/mediagroups"
	"github.com/OleksandrShchur/FindIFBot/internal/moderation"
	"github.com/OleksandrShchur/FindIFBot/internal/session"
	"github.com/OleksandrShchur/FindIFBot/internal/submission"
	"github.com/OleksandrShchur/FindIFBot/pkg/telegoapi"
)

// Dispatcher routes updates coming off the long-polling channel.
type Dispatcher struct {
	bot          telegoapi.BotAPI
	sessions     *session.Store
	submissions  *submission.Store
	workflow     *moderation.Workflow
	actionLogger database.UserActionLogger
	aggregator   *mediagroups.Aggregator
	debug        bool

	// Localized trigger phrases, lowercased once at startup.
	triggerFind     string
	triggerAds      string
	triggerAdvice   string
	triggerHelp     string
	triggerAdsRules string
	triggerDonate   string
}

// Deps carries the dependencies for NewDispatcher.
type Deps struct {
	Bot          telegoapi.BotAPI
	Sessions     *session.Store
	Submissions  *submission.Store
	Workflow     *moderation.Workflow
	ActionLogger database.UserActionLogger
	// MediaGroupDelay overrides the album quiescence delay. Zero means
	// the default.
	MediaGroupDelay time.Duration
	Debug           bool
}

// NewDispatcher validates the dependencies and creates a Dispatcher.
func NewDispatcher(deps Deps) (*Dispatcher, error) {
	if deps.Bot == nil {
		return nil, errors.New("dispatch: bot API is nil")
	}
	if deps.Sessions == nil {
		return nil, errors.New("dispatch: session store is nil")
	}
	if deps.Submissions == nil {
		return nil, errors.New("dispatch: submission store is nil")
	}
	if deps.Workflow == nil {
		return nil, errors.New("dispatch: moderation workflow is nil")
	}
	if deps.ActionLogger == nil {
		return nil, errors.New("dispatch: action logger is nil")
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	d := &Dispatcher{
		bot:          deps.Bot,
		sessions:     deps.Sessions,
		submissions:  deps.Submissions,
		workflow:     deps.Workflow,
		actionLogger: deps.ActionLogger,
		debug:        deps.Debug,

		triggerFind:     lowerMessage(localizer, "BtnFind"),
		triggerAds:      lowerMessage(localizer, "BtnAds"),
		triggerAdvice:   lowerMessage(localizer, "BtnAdvice"),
		triggerHelp:     lowerMessage(localizer, "BtnHelp"),
		triggerAdsRules: lowerMessage(localizer, "BtnAdsRules"),
		triggerDonate:   lowerMessage(localizer, "BtnSupport"),
	}
	d.aggregator = mediagroups.NewAggregator(deps.MediaGroupDelay, d.processMediaGroup)
	return d, nil
}

func lowerMessage(localizer *i18n.Localizer, msgID string) string {
	return strings.ToLower(locales.GetMessage(localizer, msgID, nil, nil))
}

// Shutdown stops the album aggregation timers.
func (d *Dispatcher) Shutdown() {
	d.aggregator.Shutdown()
}

// Dispatch routes one update. Unknown update kinds are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, update telego.Update) error {
	if update.CallbackQuery != nil {
		return d.workflow.HandleCallback(ctx, *update.CallbackQuery)
	}
	if update.Message != nil {
		return d.handleMessage(ctx, *update.Message)
	}
	return nil
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg telego.Message) error {
	if msg.From == nil {
		return nil
	}
	userID := msg.From.ID

	if msg.MediaGroupID != "" {
		err := d.aggregator.Add(userID, msg.MediaGroupID, msg)
		if errors.Is(err, mediagroups.ErrAlreadyProcessed) {
			localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
			d.sendText(ctx, msg.Chat.ID, locales.GetMessage(localizer, "MsgErrorAlbumAlreadyProcessed", nil, nil))
			return nil
		}
		return err
	}

	return d.handleSingleMessage(ctx, msg)
}

func (d *Dispatcher) handleSingleMessage(ctx context.Context, msg telego.Message) error {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		text = strings.TrimSpace(msg.Caption)
	}

	sub := submission.Submission{
		ChatID: msg.Chat.ID,
		UserID: userID,
		Text:   text,
	}
	if fileID, ok := bestResolutionPhoto(msg); ok {
		sub.PhotoIDs = []string{fileID}
	}
	d.submissions.Save(msg.MessageID, sub)

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	normalized := strings.ToLower(text)

	// /start works everywhere, including mid-submission.
	if normalized == "/start" {
		d.sessions.Reset(userID)
		d.logAction(userID, "start", nil)
		d.sendText(ctx, msg.Chat.ID, locales.GetMessage(localizer, "MsgStartGreeting", nil, nil))
		d.sendWithKeyboard(ctx, msg.Chat.ID, locales.GetMessage(localizer, "MsgStartChooseOption", nil, nil), keyboards.Default(localizer))
		return nil
	}

	state := d.sessions.Get(userID)

	if state.IsSubmission() && hasNonPhotoMedia(msg) {
		d.sessions.Reset(userID)
		d.sendText(ctx, msg.Chat.ID, locales.GetMessage(localizer, "MsgErrorUnsupportedMedia", nil, nil))
		return nil
	}

	switch state {
	case session.StateWaitingForFindQuery:
		d.sessions.Reset(userID)
		d.logAction(userID, "submit_find", text)
		return d.workflow.SubmitFind(ctx, msg)
	case session.StateWaitingForAdContent:
		d.sessions.Reset(userID)
		d.logAction(userID, "submit_ad", text)
		return d.workflow.SubmitAd(ctx, msg)
	case session.StateWaitingForAdvice:
		d.sessions.Reset(userID)
		d.logAction(userID, "submit_advice", text)
		d.sendText(ctx, msg.Chat.ID, locales.GetMessage(localizer, "MsgAdviceThanks", nil, nil))
		return nil
	}

	return d.handleIdleMessage(ctx, msg, localizer, normalized)
}

// handleIdleMessage matches commands and their localized button phrases.
func (d *Dispatcher) handleIdleMessage(ctx context.Context, msg telego.Message, localizer *i18n.Localizer, normalized string) error {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch normalized {
	case "/find", d.triggerFind:
		d.sessions.Set(userID, session.StateWaitingForFindQuery)
		d.logAction(userID, "find", nil)
		d.sendPrompt(ctx, chatID, locales.GetMessage(localizer, "MsgFindPrompt", nil, nil))
	case "/ads", d.triggerAds:
		d.sessions.Set(userID, session.StateWaitingForAdContent)
		d.logAction(userID, "ads", nil)
		d.sendPrompt(ctx, chatID, locales.GetMessage(localizer, "MsgAdsPrompt", nil, nil))
	case "/advice", d.triggerAdvice:
		d.sessions.Set(userID, session.StateWaitingForAdvice)
		d.logAction(userID, "advice", nil)
		d.sendPrompt(ctx, chatID, locales.GetMessage(localizer, "MsgAdvicePrompt", nil, nil))
	case "/help", d.triggerHelp:
		d.logAction(userID, "help", nil)
		d.sendWithKeyboard(ctx, chatID, locales.GetMessage(localizer, "MsgHelp", nil, nil), keyboards.Default(localizer))
	case "/ads_rule", "/ads-rules", d.triggerAdsRules:
		d.logAction(userID, "ads_rules", nil)
		d.sendWithKeyboard(ctx, chatID, locales.GetMessage(localizer, "MsgAdsRules", nil, nil), keyboards.Default(localizer))
	case "/donate", d.triggerDonate:
		d.logAction(userID, "donate", nil)
		d.sendWithKeyboard(ctx, chatID, locales.GetMessage(localizer, "MsgSupport", nil, nil), keyboards.Default(localizer))
	default:
		d.sendWithKeyboard(ctx, chatID, locales.GetMessage(localizer, "MsgUnknownCommand", nil, nil), keyboards.Default(localizer))
	}
	return nil
}

// processMediaGroup handles one complete album. It is called by the
// aggregator once the album has gone quiet.
func (d *Dispatcher) processMediaGroup(ctx context.Context, groupID string, messages []telego.Message) error {
	if len(messages) == 0 {
		return nil
	}

	rep := representativeMessage(messages)
	if rep.From == nil {
		return nil
	}
	userID := rep.From.ID
	chatID := rep.Chat.ID

	var photoIDs []string
	for _, m := range messages {
		if fileID, ok := bestResolutionPhoto(m); ok {
			photoIDs = append(photoIDs, fileID)
		}
	}
	total := len(messages)
	processed := len(photoIDs)

	d.submissions.Save(rep.MessageID, submission.Submission{
		ChatID:       chatID,
		UserID:       userID,
		Text:         strings.TrimSpace(rep.Caption),
		PhotoIDs:     photoIDs,
		MediaGroupID: groupID,
	})

	// Albums are always collected and stored; validation and forwarding
	// only apply mid-submission.
	state := d.sessions.Get(userID)
	if !state.IsSubmission() {
		if d.debug {
			log.Printf("[MediaGroup:%s User:%d] Stored album outside a submission flow", groupID, userID)
		}
		return nil
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	if processed > 10 {
		d.sessions.Reset(userID)
		d.sendText(ctx, chatID, locales.GetMessage(localizer, "MsgErrorTooManyPhotos", nil, nil))
		return nil
	}
	if processed == 0 {
		d.sessions.Reset(userID)
		d.sendText(ctx, chatID, locales.GetMessage(localizer, "MsgErrorNoPhotosInAlbum", nil, nil))
		return nil
	}
	if processed < total {
		warn := locales.GetMessage(localizer, "MsgWarnPartialAlbum", map[string]interface{}{
			"Total":     total,
			"Processed": processed,
		}, nil)
		d.sendText(ctx, chatID, warn)
	}

	d.sessions.Reset(userID)
	switch state {
	case session.StateWaitingForFindQuery:
		d.logAction(userID, "submit_find_album", groupID)
		return d.workflow.SubmitFind(ctx, rep)
	case session.StateWaitingForAdContent:
		d.logAction(userID, "submit_ad_album", groupID)
		return d.workflow.SubmitAd(ctx, rep)
	}
	return nil
}

// representativeMessage picks the album message that carries the
// caption, falling back to the first one. Messages arrive sorted by
// message ID.
func representativeMessage(messages []telego.Message) telego.Message {
	for _, m := range messages {
		if strings.TrimSpace(m.Caption) != "" {
			return m
		}
	}
	return messages[0]
}

// bestResolutionPhoto returns the file ID of the largest size variant.
func bestResolutionPhoto(msg telego.Message) (string, bool) {
	if len(msg.Photo) == 0 {
		return "", false
	}
	best := msg.Photo[0]
	for _, size := range msg.Photo[1:] {
		if size.FileSize > best.FileSize {
			best = size
		}
	}
	return best.FileID, true
}

func hasNonPhotoMedia(msg telego.Message) bool {
	return msg.Video != nil || msg.Animation != nil || msg.Document != nil ||
		msg.Audio != nil || msg.Voice != nil || msg.Sticker != nil || msg.VideoNote != nil
}

func (d *Dispatcher) sendText(ctx context.Context, chatID int64, text string) {
	if _, err := d.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		log.Printf("[Dispatch Chat:%d] Error sending message: %v", chatID, err)
	}
}

// sendPrompt sends a submission prompt and hides the reply keyboard for
// the duration of the flow.
func (d *Dispatcher) sendPrompt(ctx context.Context, chatID int64, text string) {
	params := tu.Message(tu.ID(chatID), text).
		WithReplyMarkup(&telego.ReplyKeyboardRemove{RemoveKeyboard: true})
	if _, err := d.bot.SendMessage(ctx, params); err != nil {
		log.Printf("[Dispatch Chat:%d] Error sending prompt: %v", chatID, err)
	}
}

func (d *Dispatcher) sendWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *telego.ReplyKeyboardMarkup) {
	if _, err := d.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithReplyMarkup(keyboard)); err != nil {
		log.Printf("[Dispatch Chat:%d] Error sending message: %v", chatID, err)
	}
}

func (d *Dispatcher) logAction(userID int64, action string, details interface{}) {
	if err := d.actionLogger.LogUserAction(userID, action, details); err != nil {
		log.Printf("[Dispatch User:%d] Failed to log action %s: %v", userID, action, err)
	}
}
