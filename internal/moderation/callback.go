package moderation

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/OleksandrShchur/FindIFBot/internal/locales"
	"github.com/OleksandrShchur/FindIFBot/internal/pricing"
	"github.com/OleksandrShchur/FindIFBot/internal/submission"
)

// HandleCallback reacts to a press on one of the moderation buttons.
// The button press is always acknowledged. Presses from anyone but the
// administrator, malformed payloads and payloads whose submission is no
// longer stored are ignored.
func (w *Workflow) HandleCallback(ctx context.Context, query telego.CallbackQuery) error {
	if err := w.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
	}); err != nil {
		log.Printf("[HandleCallback] Error answering callback query %s: %v", query.ID, err)
	}

	if !w.adminChecker.IsAdmin(query.From.ID) {
		log.Printf("[HandleCallback User:%d] Ignoring callback from non-admin", query.From.ID)
		return nil
	}

	action, userID, messageID, ok := parseCallbackData(query.Data)
	if !ok {
		log.Printf("[HandleCallback] Malformed callback data %q", query.Data)
		return nil
	}

	sub, found := w.submissions.TryGet(messageID)
	if !found {
		log.Printf("[HandleCallback] No submission for message %d (action %s), already resolved", messageID, action)
		return nil
	}

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())

	switch action {
	case actionApproveFind:
		if err := w.publish(ctx, sub, messageID, false); err != nil {
			return err
		}
		w.cleanup(ctx, query, messageID)
	case actionPostAd:
		if err := w.publish(ctx, sub, messageID, true); err != nil {
			return err
		}
		w.cleanup(ctx, query, messageID)
	case actionDeclineFind, actionDeclineAd:
		text := locales.GetMessage(localizer, "MsgPostRejected", nil, nil)
		w.notifyUser(ctx, sub, messageID, text)
		w.cleanup(ctx, query, messageID)
	case actionDuplicate:
		text := locales.GetMessage(localizer, "MsgPostDuplicate", nil, nil)
		w.notifyUser(ctx, sub, messageID, text)
		w.cleanup(ctx, query, messageID)
	case actionApproveAd:
		return w.approveAd(ctx, sub, userID, messageID)
	case actionInsufficientFunds:
		text := locales.GetMessage(localizer, "MsgPaymentInvalid", nil, nil)
		w.notifyUser(ctx, sub, messageID, text)
	default:
		log.Printf("[HandleCallback] Unknown action %q for message %d", action, messageID)
	}
	return nil
}

// approveAd prices the ad by channel audience, tells the submitter the
// price and gives the administrator the payment stage buttons. The
// submission stays stored until the ad is posted or declined.
func (w *Workflow) approveAd(ctx context.Context, sub submission.Submission, userID int64, messageID int) error {
	count, err := w.bot.GetChatMemberCount(ctx, &telego.GetChatMemberCountParams{ChatID: tu.ID(w.channelID)})
	if err != nil {
		log.Printf("[approveAd] Failed to get channel member count, pricing at the floor: %v", err)
		sentry.CaptureException(fmt.Errorf("failed to get channel member count: %w", err))
		count = 0
	}
	price := pricing.Price(count)

	localizer := locales.NewLocalizer(locales.GetDefaultLanguageTag().String())
	priceText := locales.GetMessage(localizer, "MsgAdPrice", map[string]interface{}{"Price": price}, nil)
	w.notifyUser(ctx, sub, messageID, priceText)

	adminText := locales.GetMessage(localizer, "MsgAdApprovedAwaitingPayment", map[string]interface{}{"Price": price}, nil)
	keyboard := w.paymentKeyboard(localizer, userID, messageID, price)
	if _, err := w.bot.SendMessage(ctx, tu.Message(tu.ID(w.adminID), adminText).WithReplyMarkup(keyboard)); err != nil {
		sentry.CaptureException(fmt.Errorf("failed to send payment stage prompt for message %d: %w", messageID, err))
		return fmt.Errorf("failed to send payment stage prompt: %w", err)
	}
	return nil
}

// cleanup removes the submission and tries to delete the moderation
// prompt the button was attached to. Deletion failures are ignored.
func (w *Workflow) cleanup(ctx context.Context, query telego.CallbackQuery, messageID int) {
	w.submissions.Remove(messageID)

	msg, ok := query.Message.(*telego.Message)
	if !ok || msg == nil {
		return
	}
	if err := w.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    tu.ID(msg.Chat.ID),
		MessageID: msg.MessageID,
	}); err != nil {
		log.Printf("[cleanup] Failed to delete moderation prompt %d: %v", msg.MessageID, err)
	}
}

// parseCallbackData splits an "action|userID|messageID" payload.
func parseCallbackData(data string) (action string, userID int64, messageID int, ok bool) {
	parts := strings.Split(data, "|")
	if len(parts) < 3 {
		return "", 0, 0, false
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	messageID, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, false
	}
	return parts[0], userID, messageID, true
}
