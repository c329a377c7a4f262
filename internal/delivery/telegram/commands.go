package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commands registered with Telegram.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "exam", Description: "Start or continue a full 180-question exam"},
	{Command: "pause", Description: "Pause the exam timer"},
	{Command: "resume", Description: "Resume the exam"},
	{Command: "submit", Description: "Submit the exam"},
	{Command: "results", Description: "Show the results of the last exam"},
	{Command: "history", Description: "Show recent exams"},
	{Command: "clear", Description: "Close the finished exam"},
	{Command: "cards", Description: "Study flashcards (usage: /cards due people)"},
	{Command: "practice", Description: "Untimed practice (usage: /practice process)"},
	{Command: "progress", Description: "Show progress"},
	{Command: "read", Description: "Mark study material as read"},
	{Command: "rate", Description: "Rate a flashcard from 1 to 5"},
	{Command: "settings", Description: "Profile and theme"},
	{Command: "export", Description: "Download a backup of your progress"},
	{Command: "reset", Description: "Delete all your data"},
	{Command: "help", Description: "Help"},
}

func (h *Handler) handleStart(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		profile, err := h.Profiles.Get(ctx, userID)
		if err != nil {
			return err
		}
		return h.send(newMessage(chatID, buildWelcomeMessage(profile.Name)))
	}
}

func (h *Handler) handleHelp() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		return h.send(newMessage(chatID, buildHelpMessage()))
	}
}
