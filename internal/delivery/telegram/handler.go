package telegram

import (
	"context"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handler struct {
	bot    Bot
	logger *zap.Logger
	Services
	httpClient *http.Client
	limiter    *userLimiter
}

func NewHandler(bot Bot, logger *zap.Logger, services Services) *Handler {
	return &Handler{
		bot:        bot,
		logger:     logger,
		Services:   services,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    newUserLimiter(time.Second/5, 10),
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if cb := update.CallbackQuery; cb != nil && cb.From != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", cb.From.ID),
			zap.String("data", cb.Data),
		)
		if !h.limiter.Allow(cb.From.ID) {
			h.answerCallback(cb.ID, msgSlowDown)
			return
		}
		h.handleCallback(ctx, cb)
		return
	}

	if update.Message == nil || update.Message.From == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID
	userID := from.ID

	if !h.limiter.Allow(userID) {
		h.logger.Debug("update throttled", zap.Int64("user_id", userID))
		return
	}

	if err := h.Profiles.EnsureName(ctx, userID, from.FirstName); err != nil {
		h.logger.Error("failed to ensure profile",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	if doc := update.Message.Document; doc != nil {
		_ = h.withErrorHandling(h.handleImport(userID, doc))(ctx, chatID)
		return
	}

	if !update.Message.IsCommand() {
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	args := update.Message.CommandArguments()

	var fn HandlerFunc
	switch update.Message.Command() {
	case "start":
		fn = h.handleStart(userID)
	case "help":
		fn = h.handleHelp()
	case "exam":
		fn = h.handleExam(userID)
	case "pause":
		fn = h.handlePause(userID)
	case "resume":
		fn = h.handleResume(userID)
	case "submit":
		fn = h.handleSubmit(userID)
	case "results":
		fn = h.handleResults(userID)
	case "history":
		fn = h.handleHistory(userID)
	case "clear":
		fn = h.handleClear(userID)
	case "cards":
		fn = h.handleCards(userID, args)
	case "practice":
		fn = h.handlePractice(userID, args)
	case "progress":
		fn = h.handleProgress(userID)
	case "settings":
		fn = h.handleSettings(userID)
	case "read":
		fn = h.handleRead(userID, args)
	case "rate":
		fn = h.handleRate(userID, args)
	case "name":
		fn = h.handleSetName(userID, args)
	case "code":
		fn = h.handleDonationCode(userID, args)
	case "export":
		fn = h.handleExport(userID)
	case "reset":
		fn = h.handleReset()
	default:
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	_ = h.withErrorHandling(fn)(ctx, chatID)
}

func (h *Handler) sendError(chatID int64, text string) {
	_ = h.send(newPlainMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}
