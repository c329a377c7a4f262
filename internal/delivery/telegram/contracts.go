package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

// Bot is the part of *tgbotapi.BotAPI the handler uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetFileDirectURL(fileID string) (string, error)
}

type ExamService interface {
	Start(ctx context.Context, userID int64) (*entities.ExamSession, error)
	Active(ctx context.Context, userID int64) (*entities.ExamSession, error)
	History(ctx context.Context, userID int64) ([]entities.HistoryEntry, error)
	Remaining(ctx context.Context, userID int64) (time.Duration, error)
	Duration() time.Duration
	SetAnswer(ctx context.Context, userID int64, questionID, optionID string) (service.Outcome, error)
	ToggleFlag(ctx context.Context, userID int64, questionID string) (service.Outcome, error)
	GoToQuestion(ctx context.Context, userID int64, index int) (service.Outcome, error)
	Pause(ctx context.Context, userID int64) (service.Outcome, error)
	Resume(ctx context.Context, userID int64) (service.Outcome, error)
	Submit(ctx context.Context, userID int64) (service.Outcome, error)
	SubmitIfExpired(ctx context.Context, userID int64) (*entities.HistoryEntry, error)
	Clear(ctx context.Context, userID int64) (service.Outcome, error)
}

type FlashcardService interface {
	Card(ctx context.Context, cardID string) (entities.Flashcard, error)
	Review(ctx context.Context, userID int64, cardID string, rating entities.Rating) (service.Outcome, error)
	Entry(ctx context.Context, userID int64, cardID string) (entities.BoxEntry, bool, error)
	Deck(ctx context.Context, userID int64, f service.FlashcardFilter) ([]entities.Flashcard, error)
}

type ProgressService interface {
	GetProgressSummary(ctx context.Context, userID int64) (*service.ProgressSummary, error)
	MarkMaterialRead(ctx context.Context, userID int64, materialID string) (service.Outcome, error)
	SetFlashcardRating(ctx context.Context, userID int64, cardID string, rating int) (service.Outcome, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID int64) (*entities.Profile, error)
	SetName(ctx context.Context, userID int64, name string) error
	SetTheme(ctx context.Context, userID int64, theme string) error
	AddDonationCode(ctx context.Context, userID int64, code string) (service.Outcome, error)
	EnsureName(ctx context.Context, userID int64, name string) error
}

type QuizService interface {
	Start(ctx context.Context, userID int64, domain entities.DomainID) (service.QuizView, error)
	Current(userID int64) (service.QuizView, error)
	Answer(ctx context.Context, userID int64, optionID string) (entities.QuizAnswer, service.QuizView, error)
	Next(userID int64) (service.QuizView, bool, error)
	Stop(userID int64)
}

type BackupService interface {
	Export(ctx context.Context, userID int64) ([]byte, error)
	Import(ctx context.Context, userID int64, data []byte) error
}

type ResetService interface {
	ResetUser(ctx context.Context, userID int64) error
}

// Services groups the use cases the handler dispatches to.
type Services struct {
	Exams      ExamService
	Flashcards FlashcardService
	Progress   ProgressService
	Profiles   ProfileService
	Quiz       QuizService
	Backup     BackupService
	Reset      ResetService
}
