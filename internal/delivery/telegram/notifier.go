package telegram

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// NotifyExamExpired tells the user that their exam was submitted when time ran out.
// Private chats share the id of the user.
func (h *Handler) NotifyExamExpired(userID int64, entry entities.HistoryEntry) error {
	if entry.Results == nil {
		return fmt.Errorf("exam %s: no results", entry.ID)
	}

	msg := newMessage(userID, md(msgExamExpiredNotice)+"\n\n"+formatResults(entry.Results))
	msg.ReplyMarkup = buildResultsKeyboard()

	if err := h.send(msg); err != nil {
		return err
	}

	h.logger.Info("exam expiry notified",
		zap.Int64("user_id", userID),
		zap.String("exam_id", entry.ID),
	)
	return nil
}
