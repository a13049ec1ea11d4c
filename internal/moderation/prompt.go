package moderation

import (
	"context"
	"fmt"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/OleksandrShchur/FindIFBot/internal/locales"
	"github.com/OleksandrShchur/FindIFBot/internal/submission"
)

// sendAdminPrompt shows the submission to the administrator together
// with the moderation buttons. Albums are sent as a media group with
// the text as caption, followed by a separate control message carrying
// the keyboard.
func (w *Workflow) sendAdminPrompt(ctx context.Context, localizer *i18n.Localizer, sub submission.Submission, keyboard *telego.InlineKeyboardMarkup) error {
	text := sub.Text
	if text == "" {
		text = locales.GetMessage(localizer, "MsgNoText", nil, nil)
	}

	if !sub.HasPhotos() {
		_, err := w.bot.SendMessage(ctx, tu.Message(tu.ID(w.adminID), text).WithReplyMarkup(keyboard))
		if err != nil {
			sentry.CaptureException(fmt.Errorf("failed to send admin prompt for user %d: %w", sub.UserID, err))
			return fmt.Errorf("failed to send admin prompt: %w", err)
		}
		return nil
	}

	media := inputMediaFromSubmissionWithCaption(sub, text)
	if _, err := w.bot.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
		ChatID: tu.ID(w.adminID),
		Media:  media,
	}); err != nil {
		sentry.CaptureException(fmt.Errorf("failed to send admin prompt album for user %d: %w", sub.UserID, err))
		return fmt.Errorf("failed to send admin prompt album: %w", err)
	}

	controlText := locales.GetMessage(localizer, "MsgModerationActions", nil, nil)
	_, err := w.bot.SendMessage(ctx, tu.Message(tu.ID(w.adminID), controlText).WithReplyMarkup(keyboard))
	if err != nil {
		log.Printf("[sendAdminPrompt User:%d] Album sent but control message failed: %v", sub.UserID, err)
		sentry.CaptureException(fmt.Errorf("album sent but control message failed for user %d: %w", sub.UserID, err))
		return fmt.Errorf("failed to send moderation controls: %w", err)
	}
	return nil
}

func inputMediaFromSubmissionWithCaption(sub submission.Submission, caption string) []telego.InputMedia {
	media := make([]telego.InputMedia, 0, len(sub.PhotoIDs))
	for i, fileID := range sub.PhotoIDs {
		photo := &telego.InputMediaPhoto{
			Type:  "photo",
			Media: telego.InputFile{FileID: fileID},
		}
		if i == 0 {
			photo.Caption = caption
		}
		media = append(media, photo)
	}
	return media
}

// findReviewKeyboard builds the buttons shown under a search submission.
func (w *Workflow) findReviewKeyboard(localizer *i18n.Localizer, userID int64, messageID int) *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton(locales.GetMessage(localizer, "BtnApprovePost", nil, nil)).
					WithCallbackData(callbackData(actionApproveFind, userID, messageID)),
				tu.InlineKeyboardButton(locales.GetMessage(localizer, "BtnDeclinePost", nil, nil)).
					WithCallbackData(callbackData(actionDeclineFind, userID, messageID)),
			),
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton(locales.GetMessage(localizer, "BtnDuplicatedPost", nil, nil)).
					WithCallbackData(callbackData(actionDuplicate, userID, messageID)),
			),
		},
	}
}

// adReviewKeyboard builds the buttons shown under an ad submission.
func (w *Workflow) adReviewKeyboard(localizer *i18n.Localizer, userID int64, messageID int) *telego.InlineKeyboardMarkup {
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton(locales.GetMessage(localizer, "BtnApproveAds", nil, nil)).
					WithCallbackData(callbackData(actionApproveAd, userID, messageID)),
				tu.InlineKeyboardButton(locales.GetMessage(localizer, "BtnDeclineAds", nil, nil)).
					WithCallbackData(callbackData(actionDeclineAd, userID, messageID)),
			),
		},
	}
}

// paymentKeyboard builds the buttons for the payment stage of an
// approved ad.
func (w *Workflow) paymentKeyboard(localizer *i18n.Localizer, userID int64, messageID, price int) *telego.InlineKeyboardMarkup {
	postText := locales.GetMessage(localizer, "BtnPostAd", map[string]interface{}{"Price": price}, nil)
	return &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{
			tu.InlineKeyboardRow(
				tu.InlineKeyboardButton(postText).
					WithCallbackData(callbackData(actionPostAd, userID, messageID)),
				tu.InlineKeyboardButton(locales.GetMessage(localizer, "BtnNoFullSum", nil, nil)).
					WithCallbackData(callbackData(actionInsufficientFunds, userID, messageID)),
			),
		},
	}
}

func callbackData(action string, userID int64, messageID int) string {
	return fmt.Sprintf("%s|%d|%d", action, userID, messageID)
}
