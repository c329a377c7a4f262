package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// screen is the content of a message that callbacks edit in place.
type screen struct {
	text   string // MarkdownV2; empty keeps the message as is
	kb     *tgbotapi.InlineKeyboardMarkup
	notice string // short popup shown in the callback answer
}

func markup(kb tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	return &kb
}

func noticeOnly(text string) screen {
	return screen{notice: text}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		h.answerCallback(cb.ID, "")
		return
	}

	userID := cb.From.ID
	data := decodeCallback(cb.Data)

	var (
		sc  screen
		err error
	)

	switch data.Action {
	case actionExam:
		sc, err = h.handleExamCallback(ctx, userID, data)
	case actionCard:
		sc, err = h.handleCardCallback(ctx, userID, data)
	case actionQuiz:
		sc, err = h.handleQuizCallback(ctx, userID, data)
	case actionProgress:
		sc, err = h.progressScreen(ctx, userID)
	case actionSettings:
		sc, err = h.handleSettingsCallback(ctx, userID, data)
	case actionReset:
		sc, err = h.handleResetCallback(ctx, userID, data)
	default:
		h.logger.Warn("unknown callback",
			zap.Int64("user_id", userID),
			zap.String("data", cb.Data),
		)
		h.answerCallback(cb.ID, "")
		return
	}

	if err != nil {
		h.logger.Error("callback error",
			zap.Int64("user_id", userID),
			zap.String("data", cb.Data),
			zap.Error(err),
		)
		h.answerCallback(cb.ID, msgInternalError)
		return
	}

	if sc.text != "" {
		edit := newEdit(cb.Message.Chat.ID, cb.Message.MessageID, sc.text)
		edit.ReplyMarkup = sc.kb
		_ = h.send(edit)
	}

	// Remove the user's "clock".
	h.answerCallback(cb.ID, sc.notice)
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}

// sendScreen sends sc as a new message.
func (h *Handler) sendScreen(chatID int64, sc screen) error {
	if sc.text == "" {
		if sc.notice == "" {
			return nil
		}
		return h.send(newPlainMessage(chatID, sc.notice))
	}
	msg := newMessage(chatID, sc.text)
	if sc.kb != nil {
		msg.ReplyMarkup = sc.kb
	}
	return h.send(msg)
}
