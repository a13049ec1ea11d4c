// Package moderation forwards user submissions to the administrator and
// drives the approval flow behind the inline moderation buttons.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/OleksandrShchur/FindIFBot/internal/auth"
	"github.com/OleksandrShchur/FindIFBot/internal/database"
	"github.com/OleksandrShchur/FindIFBot/internal/keyboards"
	"github.com/OleksandrShchur/FindIFBot/internal/database/models"
	"github.com/OleksandrShchur/FindIFBot/internal/locales"
	"github.com/OleksandrShchur/FindIFBot/internal/submission"
	"github.com/OleksandrShchur/FindIFBot/pkg/telegoapi"
)

// Callback actions carried in inline button payloads. The payload format
// is "action|userID|messageID".
const (
	actionApproveFind       = "+find"
	actionDeclineFind       = "-find"
	actionDuplicate         = "?find"
	actionApproveAd         = "+ads"
	actionDeclineAd         = "-ads"
	actionPostAd            = "postAds"
	actionInsufficientFunds = "<money"
)

// Workflow owns the moderation side of the bot: submitting material to
// the administrator and reacting to the moderation buttons.
type Workflow struct {
	bot          telegoapi.BotAPI
	submissions  *submission.Store
	adminChecker *auth.AdminChecker
	adminID      int64
	channelID    int64
	channelLink  string
	postLogger   database.PostLogger
}

// Deps carries the dependencies for NewWorkflow.
type Deps struct {
	Bot          telegoapi.BotAPI
	Submissions  *submission.Store
	AdminChecker *auth.AdminChecker
	AdminID      int64
	ChannelID    int64
	ChannelLink  string
	PostLogger   database.PostLogger
}

// NewWorkflow validates the dependencies and creates a Workflow.
func NewWorkflow(deps Deps) (*Workflow, error) {
	if deps.Bot == nil {
		return nil, errors.New("moderation: bot API is nil")
	}
	if deps.Submissions == nil {
		return nil, errors.New("moderation: submission store is nil")
	}
	if deps.AdminChecker == nil {
		return nil, errors.New("moderation: admin checker is nil")
	}
	if deps.AdminID == 0 {
		return nil, errors.New("moderation: admin ID is not configured")
	}
	if deps.ChannelID == 0 {
		return nil, errors.New("moderation: channel ID is not configured")
	}
	if deps.PostLogger == nil {
		return nil, errors.New("moderation: post logger is nil")
	}
	return &Workflow{
		bot:          deps.Bot,
		submissions:  deps.Submissions,
		adminChecker: deps.AdminChecker,
		adminID:      deps.AdminID,
		channelID:    deps.ChannelID,
		channelLink:  deps.ChannelLink,
		postLogger:   deps.PostLogger,
	}, nil
}

// SubmitFind forwards a search request to the administrator for review.
// The submission must already be stored under msg.MessageID; if it is
// not, the call is a no-op.
func (w *Workflow) SubmitFind(ctx context.Context, msg telego.Message) error {
	sub, ok := w.submissions.TryGet(msg.MessageID)
	if !ok {
		log.Printf("[SubmitFind User:%d] No submission stored for message %d", msg.From.ID, msg.MessageID)
		return nil
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	ackText := locales.GetMessage(localizer, "MsgModerationPending", nil, nil)
	ack := tu.Message(tu.ID(sub.ChatID), ackText).WithReplyMarkup(keyboards.Default(localizer))
	if _, err := w.bot.SendMessage(ctx, ack); err != nil {
		log.Printf("[SubmitFind User:%d] Error sending ack: %v", msg.From.ID, err)
	}

	keyboard := w.findReviewKeyboard(localizer, sub.UserID, msg.MessageID)
	return w.sendAdminPrompt(ctx, localizer, sub, keyboard)
}

// SubmitAd forwards ad material to the administrator for review.
func (w *Workflow) SubmitAd(ctx context.Context, msg telego.Message) error {
	sub, ok := w.submissions.TryGet(msg.MessageID)
	if !ok {
		log.Printf("[SubmitAd User:%d] No submission stored for message %d", msg.From.ID, msg.MessageID)
		return nil
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	ackText := locales.GetMessage(localizer, "MsgAdForwarded", nil, nil)
	ack := tu.Message(tu.ID(sub.ChatID), ackText).WithReplyMarkup(keyboards.Default(localizer))
	if _, err := w.bot.SendMessage(ctx, ack); err != nil {
		log.Printf("[SubmitAd User:%d] Error sending ack: %v", msg.From.ID, err)
	}

	keyboard := w.adReviewKeyboard(localizer, sub.UserID, msg.MessageID)
	return w.sendAdminPrompt(ctx, localizer, sub, keyboard)
}

// publish sends the submission to the channel and tells the user where
// to find it. It returns the channel post ID.
func (w *Workflow) publish(ctx context.Context, sub submission.Submission, messageID int, isAd bool) error {
	var postID int

	if sub.HasPhotos() {
		media := inputMediaFromSubmission(sub)
		sent, err := w.bot.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
			ChatID: tu.ID(w.channelID),
			Media:  media,
		})
		if err != nil {
			sentry.CaptureException(fmt.Errorf("failed to publish media group for message %d: %w", messageID, err))
			return fmt.Errorf("failed to publish media group: %w", err)
		}
		if len(sent) == 0 {
			sentry.CaptureException(fmt.Errorf("empty response publishing media group for message %d", messageID))
			return fmt.Errorf("empty response publishing media group")
		}
		postID = sent[0].MessageID
	} else {
		sent, err := w.bot.SendMessage(ctx, tu.Message(tu.ID(w.channelID), sub.Text))
		if err != nil {
			sentry.CaptureException(fmt.Errorf("failed to publish text post for message %d: %w", messageID, err))
			return fmt.Errorf("failed to publish text post: %w", err)
		}
		postID = sent.MessageID
	}

	link := strconv.Itoa(postID)
	if w.channelLink != "" {
		link = w.channelLink + "/" + link
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	text := locales.GetMessage(localizer, "MsgPostPublished", map[string]interface{}{"Link": link}, nil)
	w.notifyUser(ctx, sub, messageID, text)

	if err := w.postLogger.LogPublishedPost(models.PostLog{
		SenderID:             sub.UserID,
		Caption:              sub.Text,
		PhotoCount:           len(sub.PhotoIDs),
		IsAd:                 isAd,
		PublishedAt:          time.Now(),
		ChannelID:            w.channelID,
		ChannelPostID:        postID,
		OriginalMessageID:    messageID,
		OriginalMediaGroupID: sub.MediaGroupID,
	}); err != nil {
		log.Printf("[publish] Failed to log published post for message %d: %v", messageID, err)
	}
	return nil
}

// notifyUser sends text to the submitter as a reply to their original
// message and restores the default reply keyboard.
func (w *Workflow) notifyUser(ctx context.Context, sub submission.Submission, messageID int, text string) {
	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	params := tu.Message(tu.ID(sub.ChatID), text).
		WithReplyParameters(&telego.ReplyParameters{MessageID: messageID}).
		WithReplyMarkup(keyboards.Default(localizer))
	if _, err := w.bot.SendMessage(ctx, params); err != nil {
		log.Printf("[notifyUser User:%d] Error sending notification: %v", sub.UserID, err)
	}
}

func inputMediaFromSubmission(sub submission.Submission) []telego.InputMedia {
	media := make([]telego.InputMedia, 0, len(sub.PhotoIDs))
	for i, fileID := range sub.PhotoIDs {
		photo := &telego.InputMediaPhoto{
			Type:  "photo",
			Media: telego.InputFile{FileID: fileID},
		}
		if i == 0 {
			photo.Caption = sub.Text
		}
		media = append(media, photo)
	}
	return media
}
