package telegram

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const msgResetConfirm = "This deletes your exams, flashcard progress and profile. Continue?"

func (h *Handler) handleSettings(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		sc, err := h.settingsScreen(ctx, userID)
		if err != nil {
			return err
		}
		return h.sendScreen(chatID, sc)
	}
}

func (h *Handler) settingsScreen(ctx context.Context, userID int64) (screen, error) {
	profile, err := h.Profiles.Get(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	return screen{text: formatSettings(profile), kb: markup(buildSettingsKeyboard(profile.Theme))}, nil
}

func (h *Handler) handleSettingsCallback(ctx context.Context, userID int64, data callbackData) (screen, error) {
	switch data.param(0) {
	case settingsMenu:
		return h.settingsScreen(ctx, userID)
	case settingsTheme:
		if err := h.Profiles.SetTheme(ctx, userID, data.param(1)); err != nil {
			return screen{}, err
		}
		return h.settingsScreen(ctx, userID)
	default:
		return noticeOnly(msgNothingToChange), nil
	}
}

func (h *Handler) handleSetName(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		name := strings.TrimSpace(args)
		if name == "" {
			return h.send(newPlainMessage(chatID, msgUseName))
		}
		if err := h.Profiles.SetName(ctx, userID, name); err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, msgNameSaved))
	}
}

func (h *Handler) handleDonationCode(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		code := strings.TrimSpace(args)
		if code == "" {
			return h.send(newPlainMessage(chatID, msgUseCode))
		}

		outcome, err := h.Profiles.AddDonationCode(ctx, userID, code)
		if err != nil {
			return err
		}
		if !outcome.Applied() {
			return h.send(newPlainMessage(chatID, msgCodeKnown))
		}
		return h.send(newPlainMessage(chatID, msgCodeSaved))
	}
}

func (h *Handler) handleReset() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		msg := newPlainMessage(chatID, msgResetConfirm)
		msg.ReplyMarkup = buildResetConfirmKeyboard()
		return h.send(msg)
	}
}

func (h *Handler) handleResetCallback(ctx context.Context, userID int64, data callbackData) (screen, error) {
	switch data.param(0) {
	case resetConfirm:
		if err := h.Reset.ResetUser(ctx, userID); err != nil {
			return screen{}, err
		}
		h.Quiz.Stop(userID)
		h.logger.Info("user data reset", zap.Int64("user_id", userID))
		return screen{text: md(msgResetDone)}, nil
	case resetCancel:
		return screen{text: md(msgResetCancelled)}, nil
	default:
		return noticeOnly(msgNothingToChange), nil
	}
}
