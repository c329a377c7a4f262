package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

// maxBackupSize bounds the size of an imported document.
const maxBackupSize = 5 << 20

func (h *Handler) handleExport(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		data, err := h.Backup.Export(ctx, userID)
		if err != nil {
			return err
		}

		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  fmt.Sprintf("pmp-backup-%s.json", time.Now().UTC().Format("2006-01-02")),
			Bytes: data,
		})
		doc.Caption = "Send this file back to me to restore your progress."

		return h.send(doc)
	}
}

// handleImport restores a backup sent as a document.
func (h *Handler) handleImport(userID int64, doc *tgbotapi.Document) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if doc.FileSize > maxBackupSize {
			return h.send(newPlainMessage(chatID, msgImportTooLarge))
		}

		url, err := h.bot.GetFileDirectURL(doc.FileID)
		if err != nil {
			return fmt.Errorf("get file url: %w", err)
		}

		data, err := h.download(ctx, url)
		if err != nil {
			return err
		}

		err = h.Backup.Import(ctx, userID, data)
		if errors.Is(err, service.ErrInvalidBackup) {
			h.logger.Info("invalid backup rejected",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			return h.send(newPlainMessage(chatID, msgImportInvalid))
		}
		if err != nil {
			return err
		}

		return h.send(newPlainMessage(chatID, msgImportDone))
	}
}

func (h *Handler) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBackupSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxBackupSize {
		return nil, fmt.Errorf("download file: larger than %d bytes", maxBackupSize)
	}
	return data, nil
}
