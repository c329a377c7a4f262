package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

// buildExamKeyboard builds the answer and navigation keyboard of a running exam.
func buildExamKeyboard(e *entities.ExamSession) tgbotapi.InlineKeyboardMarkup {
	q, ok := e.CurrentQuestion()
	if !ok {
		return tgbotapi.NewInlineKeyboardMarkup()
	}
	idx := e.CurrentIndex
	chosen := e.Answers[q.ID]

	var answers []tgbotapi.InlineKeyboardButton
	for i, opt := range q.Options {
		label := optionLetter(i)
		if opt.ID == chosen {
			label = "✅ " + label
		}
		answers = append(answers, tgbotapi.NewInlineKeyboardButtonData(label, buildExamAnswerCallback(idx, opt.ID)))
	}

	flagLabel := "🚩 Flag"
	if e.IsFlagged(q.ID) {
		flagLabel = "🏳 Unflag"
	}

	var nav []tgbotapi.InlineKeyboardButton
	if idx > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️", buildExamNavCallback(idx-1)))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(flagLabel, buildExamFlagCallback(idx)))
	if idx < len(e.Questions)-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("▶️", buildExamNavCallback(idx+1)))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{answers, nav}

	if jump := nextOpenQuestion(e); jump >= 0 && jump != idx+1 && jump != idx {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Next unanswered", buildExamNavCallback(jump)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏸ Pause", buildExamCallback(examPause)),
		tgbotapi.NewInlineKeyboardButtonData("🏁 Submit", buildExamCallback(examSubmit)),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// nextOpenQuestion returns the index of the first unanswered question after
// the current one, wrapping around, or -1 when everything is answered.
func nextOpenQuestion(e *entities.ExamSession) int {
	n := len(e.Questions)
	for step := 1; step <= n; step++ {
		i := (e.CurrentIndex + step) % n
		if _, ok := e.Answers[e.Questions[i].ID]; !ok {
			return i
		}
	}
	return -1
}

func buildPausedKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Resume", buildExamCallback(examResume)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 Submit", buildExamCallback(examSubmit)),
		),
	)
}

func buildSubmitConfirmKeyboard(currentIndex int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Submit", buildExamCallback(examSubmitOK)),
			tgbotapi.NewInlineKeyboardButtonData("« Back", buildExamNavCallback(currentIndex)),
		),
	)
}

// buildResultsKeyboard builds keyboard for the results screen.
func buildResultsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Incorrect", buildExamReviewCallback(service.ResultsIncorrect, 0)),
			tgbotapi.NewInlineKeyboardButtonData("🚩 Flagged", buildExamReviewCallback(service.ResultsFlagged, 0)),
			tgbotapi.NewInlineKeyboardButtonData("📋 All", buildExamReviewCallback(service.ResultsAll, 0)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆕 New exam", buildExamCallback(examClear)),
			tgbotapi.NewInlineKeyboardButtonData("📊 Progress", buildProgressCallback()),
		),
	)
}

// buildReviewKeyboard builds pagination keyboard for the review screen.
func buildReviewKeyboard(filter service.ResultFilter, page, totalPages int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️ Previous", buildExamReviewCallback(filter, page-1)))
	}
	if page < totalPages-1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildExamReviewCallback(filter, page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Results", buildExamCallback(examResults)),
	))

	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func buildStartExamKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Start exam", buildExamCallback(examStart)),
		),
	)
}

func buildCardFrontKeyboard(cardID string, mode service.StudyMode, domain entities.DomainID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Show answer", buildCardFlipCallback(cardID, mode, domain)),
		),
	)
}

func buildCardBackKeyboard(cardID string, mode service.StudyMode, domain entities.DomainID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("😣 Hard", buildCardRateCallback(cardID, entities.RatingHard, mode, domain)),
			tgbotapi.NewInlineKeyboardButtonData("🙂 Good", buildCardRateCallback(cardID, entities.RatingGood, mode, domain)),
			tgbotapi.NewInlineKeyboardButtonData("😎 Easy", buildCardRateCallback(cardID, entities.RatingEasy, mode, domain)),
		),
	)
}

func buildCardModesKeyboard(domain entities.DomainID) tgbotapi.InlineKeyboardMarkup {
	boxes := make([]tgbotapi.InlineKeyboardButton, 0, entities.MaxBox)
	for box := entities.MinBox; box <= entities.MaxBox; box++ {
		boxes = append(boxes, tgbotapi.NewInlineKeyboardButtonData(
			boxLabel(box), buildCardShowCallback(service.StudyBox(box), domain),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Due", buildCardShowCallback(service.StudyDue, domain)),
			tgbotapi.NewInlineKeyboardButtonData("🗂 All", buildCardShowCallback(service.StudyAll, domain)),
		),
		boxes,
	)
}

func boxLabel(box int) string {
	return "📦" + strconv.Itoa(box)
}

func buildQuizAnswerKeyboard(q entities.Question) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for i, opt := range q.Options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(optionLetter(i), buildQuizAnswerCallback(opt.ID)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹ Stop", buildQuizStopCallback()),
		),
	)
}

func buildQuizFeedbackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Next ▶️", buildQuizNextCallback()),
			tgbotapi.NewInlineKeyboardButtonData("⏹ Stop", buildQuizStopCallback()),
		),
	)
}

func buildQuizDomainKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, d := range entities.Domains {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(domainTitle(d), buildQuizStartCallback(d)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(domainTitle(""), buildQuizStartCallback("")),
		),
	)
}

// buildProgressKeyboard builds keyboard for progress screen.
func buildProgressKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", buildProgressCallback()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Due cards", buildCardShowCallback(service.StudyDue, "")),
			tgbotapi.NewInlineKeyboardButtonData("🎯 Practice", buildQuizStartCallback("")),
		),
	)
}

// buildSettingsKeyboard builds main settings keyboard.
func buildSettingsKeyboard(current entities.Theme) tgbotapi.InlineKeyboardMarkup {
	themes := []entities.Theme{entities.ThemeLight, entities.ThemeDark, entities.ThemeSystem}

	var row []tgbotapi.InlineKeyboardButton
	for _, t := range themes {
		label := string(t)
		if t == current {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, buildSettingsCallback(settingsTheme, string(t))))
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Progress", buildProgressCallback()),
		),
	)
}

func buildResetConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete everything", buildResetConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", buildResetCancelCallback()),
		),
	)
}
