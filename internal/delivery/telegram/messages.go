// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

// Error and info messages.
const (
	msgInternalError      = "Something went wrong. Please try again later."
	msgUnknownCommand     = "Unknown command. Send /help to see what I can do."
	msgNoActiveExam       = "You have no exam in progress. Send /exam to start one."
	msgNoQuestions        = "The question bank is empty, no exam can be started yet."
	msgInsufficientBank   = "The question bank does not have enough questions for a full exam yet."
	msgExamRunning        = "Your exam is still running. Finish it with /submit first."
	msgExamNotSubmitted   = "Your exam has not been submitted yet."
	msgNothingToChange    = "Nothing to change."
	msgNoCards            = "No flashcards match this selection. Try /cards all."
	msgNoPracticeSession  = "No practice session. Send /practice to start one."
	msgNoHistory          = "No finished exams yet."
	msgUseName            = "Usage: /name Your Name"
	msgUseCode            = "Usage: /code YOUR-CODE"
	msgUseRead            = "Usage: /read material-id"
	msgUseRate            = "Usage: /rate card-id 1-5"
	msgNameSaved          = "Name saved."
	msgCodeSaved          = "Code saved, thank you!"
	msgCodeKnown          = "This code is already saved."
	msgMaterialRead       = "Marked as read."
	msgRatingSaved        = "Rating saved."
	msgImportDone         = "Backup restored."
	msgImportInvalid      = "This file is not a valid backup."
	msgImportTooLarge     = "The file is too large to be a backup."
	msgResetDone          = "All your data has been deleted."
	msgResetCancelled     = "Reset cancelled."
	msgExamExpiredNotice  = "⏰ Time is up! Your exam was submitted automatically."
	msgExamPausedNotice   = "Exam paused"
	msgExamResumedNotice  = "Exam resumed"
	msgFlagToggledNotice  = "Flag toggled"
	msgAnswerSavedNotice  = "Answer saved"
	msgCardReviewedNotice = "Reviewed"
)

const (
	progressBarLength = 20
	reviewPageSize    = 10
	maxExcerptRunes   = 80
)

var optionLetters = []string{"A", "B", "C", "D", "E", "F"}

// md escapes plain text for MarkdownV2.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func bold(s string) string {
	return "*" + md(s) + "*"
}

func italic(s string) string {
	return "_" + md(s) + "_"
}

// newMessage creates a message with MarkdownV2 parse mode.
func newMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	return msg
}

// newPlainMessage creates a plain message without MarkdownV2 parse mode.
func newPlainMessage(chatID int64, text string) tgbotapi.MessageConfig {
	return tgbotapi.NewMessage(chatID, text)
}

// newEdit creates an edit with MarkdownV2 parse mode.
func newEdit(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	return edit
}

func buildWelcomeMessage(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(md(fmt.Sprintf("Hi, %s! 👋", name)))
	} else {
		sb.WriteString(md("Hi! 👋"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(bold("PMP Prep Bot"))
	sb.WriteString(md(" helps you get ready for the "))
	sb.WriteString(bold("PMP exam"))
	sb.WriteString(md("."))
	sb.WriteString("\n\n")

	sb.WriteString(md("📝 Take a full "))
	sb.WriteString(bold("180-question exam"))
	sb.WriteString(md(fmt.Sprintf(" with a %s timer, pause it and flag questions for review.",
		entities.FormatClock(entities.ExamDuration))))
	sb.WriteString("\n")
	sb.WriteString(md("🗂 Study "))
	sb.WriteString(bold("flashcards"))
	sb.WriteString(md(" with spaced repetition."))
	sb.WriteString("\n")
	sb.WriteString(md("🎯 "))
	sb.WriteString(bold("Practice"))
	sb.WriteString(md(" questions by domain without a timer."))
	sb.WriteString("\n\n")

	sb.WriteString(md("Send /exam to begin or /help to see all commands."))

	return sb.String()
}

func buildHelpMessage() string {
	var sb strings.Builder

	sb.WriteString(bold("Commands"))
	sb.WriteString("\n\n")

	lines := []string{
		"/exam - start or continue the timed exam",
		"/pause, /resume - stop and restart the exam timer",
		"/submit - finish the exam and see your score",
		"/results - results of the finished exam",
		"/history - your last exams",
		"/clear - close the finished exam",
		"/cards [all|due|box1..box5] [people|process|business] - flashcards",
		"/practice [people|process|business] - untimed practice",
		"/progress - your statistics",
		"/read material-id - mark study material as read",
		"/rate card-id 1-5 - rate how useful a flashcard is",
		"/settings - name and theme",
		"/name Your Name, /code YOUR-CODE - profile",
		"/export - download a backup; send the file back to restore it",
		"/reset - delete all your data",
	}
	for _, l := range lines {
		sb.WriteString(md(l))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("You pass the exam with %d or more correct answers out of %d.",
		entities.PassingScore, entities.ExamSize)))

	return sb.String()
}

func domainTitle(d entities.DomainID) string {
	switch d {
	case entities.DomainPeople:
		return "People"
	case entities.DomainProcess:
		return "Process"
	case entities.DomainBusiness:
		return "Business Environment"
	case "":
		return "All domains"
	default:
		return string(d)
	}
}

func optionLetter(i int) string {
	if i >= 0 && i < len(optionLetters) {
		return optionLetters[i]
	}
	return fmt.Sprintf("%d", i+1)
}

// optionLetterOf returns the display letter of an option id in q.
func optionLetterOf(q entities.Question, optionID string) string {
	for i, opt := range q.Options {
		if opt.ID == optionID {
			return optionLetter(i)
		}
	}
	return optionID
}

func warningIcon(w entities.TimeWarning) string {
	switch w {
	case entities.WarningWarning:
		return "⚠️"
	case entities.WarningCritical, entities.WarningExpired:
		return "🔴"
	default:
		return "⏱"
	}
}

func formatOptions(sb *strings.Builder, q entities.Question) {
	for i, opt := range q.Options {
		sb.WriteString(bold(optionLetter(i) + "."))
		sb.WriteString(" ")
		sb.WriteString(md(opt.Label))
		sb.WriteString("\n")
	}
}

// formatExamQuestion renders the current question of a running exam.
func formatExamQuestion(e *entities.ExamSession, remaining time.Duration) string {
	q, ok := e.CurrentQuestion()
	if !ok {
		return md(msgNoActiveExam)
	}

	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("Question %d of %d", e.CurrentIndex+1, len(e.Questions))))
	if e.IsFlagged(q.ID) {
		sb.WriteString(md(" 🚩"))
	}
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("%s %s left · %d answered · %d flagged",
		warningIcon(entities.WarningLevel(remaining)),
		entities.FormatClock(remaining),
		e.AnsweredCount(),
		len(e.Flagged),
	)))
	sb.WriteString("\n")
	sb.WriteString(italic(domainTitle(q.EffectiveDomain())))
	sb.WriteString("\n\n")

	sb.WriteString(md(q.Text))
	sb.WriteString("\n\n")
	formatOptions(&sb, q)

	if chosen, ok := e.Answers[q.ID]; ok {
		sb.WriteString("\n")
		sb.WriteString(md("Your answer: "))
		sb.WriteString(bold(optionLetterOf(q, chosen)))
	}

	return sb.String()
}

func formatPausedExam(e *entities.ExamSession, remaining time.Duration) string {
	var sb strings.Builder
	sb.WriteString(bold("⏸ Exam paused"))
	sb.WriteString("\n\n")
	sb.WriteString(md(fmt.Sprintf("%d of %d answered, %s left on the clock.",
		e.AnsweredCount(), len(e.Questions), entities.FormatClock(remaining))))
	sb.WriteString("\n")
	sb.WriteString(md("The timer does not run while the exam is paused."))
	return sb.String()
}

func formatSubmitConfirm(e *entities.ExamSession) string {
	unanswered := len(e.Questions) - e.AnsweredCount()

	var sb strings.Builder
	sb.WriteString(bold("Submit the exam?"))
	sb.WriteString("\n\n")
	if unanswered > 0 {
		sb.WriteString(md(fmt.Sprintf("%d questions are still unanswered and will count as incorrect.", unanswered)))
		sb.WriteString("\n")
	}
	if len(e.Flagged) > 0 {
		sb.WriteString(md(fmt.Sprintf("%d questions are flagged for review.", len(e.Flagged))))
		sb.WriteString("\n")
	}
	sb.WriteString(md("You cannot change answers after submitting."))
	return sb.String()
}

// formatResults renders the score card of a submitted exam.
func formatResults(r *entities.ExamResults) string {
	var sb strings.Builder

	if r.Passed {
		sb.WriteString(bold("🎉 Passed"))
	} else {
		sb.WriteString(bold("❌ Not passed"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(md(fmt.Sprintf("Score: %d / %d (%.1f%%)", r.TotalScore, entities.ExamSize, r.PercentageScore)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Passing score: %d", entities.PassingScore)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Time: %s (paused %s)",
		entities.FormatClock(r.TimeElapsed-r.TimePaused), entities.FormatClock(r.TimePaused))))
	sb.WriteString("\n\n")

	sb.WriteString(bold("By domain"))
	sb.WriteString("\n")
	for _, d := range entities.Domains {
		s := r.DomainScores[d]
		sb.WriteString(md(fmt.Sprintf("%s: %d / %d (%.1f%%)", domainTitle(d), s.Correct, s.Total, s.Percentage)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatReviewPage renders one page of question results.
func formatReviewPage(
	e *entities.ExamSession,
	filter service.ResultFilter,
	page service.Page[entities.QuestionResult],
) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("Review: %s", filter)))
	sb.WriteString(md(fmt.Sprintf(" (page %d of %d)", page.CurrentPage+1, page.TotalPages)))
	sb.WriteString("\n\n")

	if len(page.Items) == 0 {
		sb.WriteString(md("Nothing to show."))
		return sb.String()
	}

	byID := make(map[string]int, len(e.Questions))
	for i, q := range e.Questions {
		byID[q.ID] = i
	}

	for _, r := range page.Items {
		i, ok := byID[r.QuestionID]
		if !ok {
			continue
		}
		q := e.Questions[i]

		mark := "✅"
		if !r.IsCorrect {
			mark = "❌"
		}

		answer := "-"
		if r.UserAnswer != nil {
			answer = optionLetterOf(q, *r.UserAnswer)
		}

		sb.WriteString(md(fmt.Sprintf("%s %d. %s", mark, i+1, excerpt(q.Text, maxExcerptRunes))))
		sb.WriteString("\n")
		sb.WriteString(md(fmt.Sprintf("   you: %s · correct: %s", answer, optionLetterOf(q, r.CorrectAnswer))))
		sb.WriteString("\n")
		if !r.IsCorrect && q.Explanation != "" {
			sb.WriteString("   ")
			sb.WriteString(italic(excerpt(q.Explanation, maxExcerptRunes*2)))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func formatHistory(entries []entities.HistoryEntry) string {
	if len(entries) == 0 {
		return md(msgNoHistory)
	}

	var sb strings.Builder
	sb.WriteString(bold("📚 Recent exams"))
	sb.WriteString("\n\n")

	// Newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Results == nil {
			continue
		}
		mark := "❌"
		if e.Results.Passed {
			mark = "✅"
		}
		sb.WriteString(md(fmt.Sprintf("%s %s · %d / %d (%.1f%%)",
			mark,
			e.SubmittedAt.UTC().Format("2006-01-02 15:04"),
			e.Results.TotalScore,
			entities.ExamSize,
			e.Results.PercentageScore,
		)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFlashcard(card entities.Flashcard, entry entities.BoxEntry, flipped bool) string {
	var sb strings.Builder

	sb.WriteString(italic(fmt.Sprintf("%s · box %d", domainTitle(card.DomainID), entities.ClampBox(entry.Box))))
	sb.WriteString("\n\n")
	sb.WriteString(bold(card.Front))

	if flipped {
		sb.WriteString("\n\n")
		sb.WriteString(md(card.Back))
		sb.WriteString("\n\n")
		sb.WriteString(md("How well did you know it?"))
	}

	return sb.String()
}

func formatQuizQuestion(v service.QuizView) string {
	var sb strings.Builder

	sb.WriteString(bold(fmt.Sprintf("🎯 Practice · %s", domainTitle(v.Question.EffectiveDomain()))))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Question %d of %d · score %d · streak %d", v.Index+1, v.Total, v.Score, v.Streak)))
	sb.WriteString("\n\n")
	sb.WriteString(md(v.Question.Text))
	sb.WriteString("\n\n")
	formatOptions(&sb, v.Question)

	return sb.String()
}

func formatQuizFeedback(a entities.QuizAnswer, v service.QuizView) string {
	var sb strings.Builder

	sb.WriteString(formatQuizQuestion(v))
	sb.WriteString("\n")

	if a.IsCorrect {
		sb.WriteString(bold("✅ Correct!"))
	} else {
		sb.WriteString(bold(fmt.Sprintf("❌ The answer is %s.", optionLetterOf(a.Question, a.Question.CorrectOptionID))))
	}

	if a.Question.Explanation != "" {
		sb.WriteString("\n\n")
		sb.WriteString(md(a.Question.Explanation))
	}

	return sb.String()
}

func formatProgress(s *service.ProgressSummary) string {
	var sb strings.Builder

	sb.WriteString(bold("📊 Your progress"))
	sb.WriteString("\n\n")

	sb.WriteString(bold("Flashcards"))
	sb.WriteString("\n")
	sb.WriteString(md(buildProgressBar(s.Flashcards.Mastered, s.Flashcards.Total, progressBarLength)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Mastered: %d / %d (%d%%)",
		s.Flashcards.Mastered, s.Flashcards.Total, s.Flashcards.MasteryPercentage())))
	sb.WriteString("\n")
	for box := entities.MinBox; box <= entities.MaxBox; box++ {
		sb.WriteString(md(fmt.Sprintf("Box %d: %d", box, s.Flashcards.Boxes[box])))
		sb.WriteString("\n")
	}
	sb.WriteString(md(fmt.Sprintf("Not reviewed: %d · due now: %d", s.Flashcards.Unreviewed, s.DueFlashcards)))
	sb.WriteString("\n\n")

	sb.WriteString(bold("Study"))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Questions practiced: %d", s.CompletedQuestions)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Materials read: %d", s.ReadMaterials)))
	sb.WriteString("\n\n")

	sb.WriteString(bold("Exams"))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Taken: %d · passed: %d", s.ExamsTaken, s.ExamsPassed)))
	sb.WriteString("\n")
	if s.LastScore != nil {
		sb.WriteString(md(fmt.Sprintf("Last: %d (%.1f%%) · best: %d · average: %.1f%%",
			s.LastScore.TotalScore, s.LastScore.PercentageScore, s.BestScore, s.AverageScore)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatSettings(p *entities.Profile) string {
	name := p.Name
	if name == "" {
		name = "not set"
	}

	var sb strings.Builder
	sb.WriteString(bold("⚙️ Settings"))
	sb.WriteString("\n\n")
	sb.WriteString(md("Name: "))
	sb.WriteString(bold(name))
	sb.WriteString("\n")
	sb.WriteString(md("Theme: "))
	sb.WriteString(bold(string(p.Theme)))
	sb.WriteString("\n")
	sb.WriteString(md(fmt.Sprintf("Supporter codes: %d", len(p.DonationCodes))))
	sb.WriteString("\n\n")
	sb.WriteString(md("Change your name with /name Your Name."))
	return sb.String()
}

// buildProgressBar creates an ASCII progress bar.
func buildProgressBar(current, total, length int) string {
	if total <= 0 {
		return "[" + strings.Repeat("░", length) + "]"
	}

	filled := min(current*length/total, length)
	filled = max(filled, 0)

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", length-filled) + "]"
}

func excerpt(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
