package telegram

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

func (h *Handler) handleProgress(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		sc, err := h.progressScreen(ctx, userID)
		if err != nil {
			return err
		}
		return h.sendScreen(chatID, sc)
	}
}

func (h *Handler) progressScreen(ctx context.Context, userID int64) (screen, error) {
	summary, err := h.Progress.GetProgressSummary(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	return screen{text: formatProgress(summary), kb: markup(buildProgressKeyboard())}, nil
}

// handleRead marks a study material as read: /read <material-id>.
func (h *Handler) handleRead(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		id := strings.TrimSpace(args)
		if id == "" {
			return h.send(newPlainMessage(chatID, msgUseRead))
		}

		outcome, err := h.Progress.MarkMaterialRead(ctx, userID, id)
		if err != nil {
			return err
		}
		if !outcome.Applied() {
			return h.send(newPlainMessage(chatID, msgNothingToChange))
		}
		return h.send(newPlainMessage(chatID, msgMaterialRead))
	}
}

// handleRate stores a 1-5 usefulness rating of a flashcard: /rate <card-id> <n>.
func (h *Handler) handleRate(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return h.send(newPlainMessage(chatID, msgUseRate))
		}

		rating, err := strconv.Atoi(fields[1])
		if err != nil || rating < entities.MinRating || rating > entities.MaxRating {
			return h.send(newPlainMessage(chatID, msgUseRate))
		}

		if _, err := h.Flashcards.Card(ctx, fields[0]); err != nil {
			h.logger.Debug("rating for unknown card",
				zap.Int64("user_id", userID),
				zap.String("card_id", fields[0]),
				zap.Error(err),
			)
			return h.send(newPlainMessage(chatID, msgUseRate))
		}

		if _, err := h.Progress.SetFlashcardRating(ctx, userID, fields[0], rating); err != nil {
			return err
		}
		return h.send(newPlainMessage(chatID, msgRatingSaved))
	}
}
