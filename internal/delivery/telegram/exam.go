package telegram

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

// handleExam continues the active exam or starts a new one.
func (h *Handler) handleExam(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		sc, err := h.examScreen(ctx, userID)
		if errors.Is(err, service.ErrNoActiveExam) {
			sc, err = h.startExam(ctx, userID)
		}
		if err != nil {
			return err
		}
		return h.sendScreen(chatID, sc)
	}
}

func (h *Handler) handlePause(userID int64) HandlerFunc {
	return h.examCommand(userID, func(ctx context.Context) (screen, error) {
		return h.pauseExam(ctx, userID)
	})
}

func (h *Handler) handleResume(userID int64) HandlerFunc {
	return h.examCommand(userID, func(ctx context.Context) (screen, error) {
		return h.resumeExam(ctx, userID)
	})
}

func (h *Handler) handleSubmit(userID int64) HandlerFunc {
	return h.examCommand(userID, func(ctx context.Context) (screen, error) {
		return h.confirmSubmit(ctx, userID)
	})
}

func (h *Handler) handleResults(userID int64) HandlerFunc {
	return h.examCommand(userID, func(ctx context.Context) (screen, error) {
		return h.resultsScreen(ctx, userID)
	})
}

func (h *Handler) handleClear(userID int64) HandlerFunc {
	return h.examCommand(userID, func(ctx context.Context) (screen, error) {
		return h.clearExam(ctx, userID)
	})
}

func (h *Handler) handleHistory(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		entries, err := h.Exams.History(ctx, userID)
		if err != nil {
			return err
		}
		return h.send(newMessage(chatID, formatHistory(entries)))
	}
}

// examCommand adapts an exam screen builder to a command.
func (h *Handler) examCommand(userID int64, fn func(ctx context.Context) (screen, error)) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		sc, err := fn(ctx)
		if errors.Is(err, service.ErrNoActiveExam) {
			sc, err = noActiveExamScreen(), nil
		}
		if err != nil {
			return err
		}
		return h.sendScreen(chatID, sc)
	}
}

func (h *Handler) handleExamCallback(ctx context.Context, userID int64, data callbackData) (screen, error) {
	var (
		sc  screen
		err error
	)

	switch data.param(0) {
	case examStart:
		sc, err = h.examScreen(ctx, userID)
		if errors.Is(err, service.ErrNoActiveExam) {
			sc, err = h.startExam(ctx, userID)
		}
	case examAnswer:
		idx, ok := data.intParam(1)
		if !ok {
			return noticeOnly(msgNothingToChange), nil
		}
		sc, err = h.answerExamQuestion(ctx, userID, idx, data.param(2))
	case examFlag:
		idx, ok := data.intParam(1)
		if !ok {
			return noticeOnly(msgNothingToChange), nil
		}
		sc, err = h.flagExamQuestion(ctx, userID, idx)
	case examNav:
		idx, ok := data.intParam(1)
		if !ok {
			return noticeOnly(msgNothingToChange), nil
		}
		sc, err = h.goToExamQuestion(ctx, userID, idx)
	case examPause:
		sc, err = h.pauseExam(ctx, userID)
	case examResume:
		sc, err = h.resumeExam(ctx, userID)
	case examSubmit:
		sc, err = h.confirmSubmit(ctx, userID)
	case examSubmitOK:
		sc, err = h.submitExam(ctx, userID)
	case examResults:
		sc, err = h.resultsScreen(ctx, userID)
	case examReview:
		page, _ := data.intParam(2)
		sc, err = h.reviewScreen(ctx, userID, service.ResultFilter(data.param(1)), page)
	case examClear:
		sc, err = h.clearExam(ctx, userID)
	default:
		return noticeOnly(msgNothingToChange), nil
	}

	if errors.Is(err, service.ErrNoActiveExam) {
		return noActiveExamScreen(), nil
	}
	return sc, err
}

func (h *Handler) startExam(ctx context.Context, userID int64) (screen, error) {
	session, err := h.Exams.Start(ctx, userID)
	switch {
	case errors.Is(err, service.ErrNoQuestionsAvailable):
		return screen{text: md(msgNoQuestions)}, nil
	case errors.Is(err, service.ErrInsufficientQuestions):
		return screen{text: md(msgInsufficientBank)}, nil
	case err != nil:
		return screen{}, err
	}
	return h.renderExam(session), nil
}

// examScreen renders the active exam in whatever phase it is.
func (h *Handler) examScreen(ctx context.Context, userID int64) (screen, error) {
	session, err := h.Exams.Active(ctx, userID)
	if err != nil {
		return screen{}, err
	}

	if !session.IsSubmitted() && session.Remaining(time.Now(), h.Exams.Duration()) <= 0 {
		// The watcher may not have run yet.
		entry, err := h.Exams.SubmitIfExpired(ctx, userID)
		if err != nil {
			return screen{}, err
		}
		if entry != nil {
			return screen{
				text:   md(msgExamExpiredNotice) + "\n\n" + formatResults(entry.Results),
				kb:     markup(buildResultsKeyboard()),
				notice: msgExamExpiredNotice,
			}, nil
		}
		if session, err = h.Exams.Active(ctx, userID); err != nil {
			return screen{}, err
		}
	}

	return h.renderExam(session), nil
}

func (h *Handler) renderExam(session *entities.ExamSession) screen {
	if results, ok := session.Results(); ok {
		return screen{text: formatResults(results), kb: markup(buildResultsKeyboard())}
	}

	remaining := session.Remaining(time.Now(), h.Exams.Duration())
	if session.IsPaused() {
		return screen{text: formatPausedExam(session, remaining), kb: markup(buildPausedKeyboard())}
	}
	return screen{text: formatExamQuestion(session, remaining), kb: markup(buildExamKeyboard(session))}
}

func noActiveExamScreen() screen {
	return screen{text: md(msgNoActiveExam), kb: markup(buildStartExamKeyboard())}
}

func (h *Handler) answerExamQuestion(ctx context.Context, userID int64, idx int, optionID string) (screen, error) {
	session, err := h.Exams.Active(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	if idx < 0 || idx >= len(session.Questions) {
		return noticeOnly(msgNothingToChange), nil
	}

	outcome, err := h.Exams.SetAnswer(ctx, userID, session.Questions[idx].ID, optionID)
	if err != nil {
		return screen{}, err
	}
	return h.afterExamMutation(ctx, userID, outcome, msgAnswerSavedNotice)
}

func (h *Handler) flagExamQuestion(ctx context.Context, userID int64, idx int) (screen, error) {
	session, err := h.Exams.Active(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	if idx < 0 || idx >= len(session.Questions) {
		return noticeOnly(msgNothingToChange), nil
	}

	outcome, err := h.Exams.ToggleFlag(ctx, userID, session.Questions[idx].ID)
	if err != nil {
		return screen{}, err
	}
	return h.afterExamMutation(ctx, userID, outcome, msgFlagToggledNotice)
}

func (h *Handler) goToExamQuestion(ctx context.Context, userID int64, idx int) (screen, error) {
	outcome, err := h.Exams.GoToQuestion(ctx, userID, idx)
	if err != nil {
		return screen{}, err
	}
	return h.afterExamMutation(ctx, userID, outcome, "")
}

func (h *Handler) pauseExam(ctx context.Context, userID int64) (screen, error) {
	outcome, err := h.Exams.Pause(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	return h.afterExamMutation(ctx, userID, outcome, msgExamPausedNotice)
}

func (h *Handler) resumeExam(ctx context.Context, userID int64) (screen, error) {
	outcome, err := h.Exams.Resume(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	return h.afterExamMutation(ctx, userID, outcome, msgExamResumedNotice)
}

// afterExamMutation re-renders the exam. Ignored mutations still re-render
// so stale keyboards catch up with the stored state.
func (h *Handler) afterExamMutation(ctx context.Context, userID int64, outcome service.Outcome, notice string) (screen, error) {
	sc, err := h.examScreen(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	if sc.notice == "" {
		if outcome.Applied() {
			sc.notice = notice
		} else {
			sc.notice = msgNothingToChange
		}
	}
	return sc, nil
}

func (h *Handler) confirmSubmit(ctx context.Context, userID int64) (screen, error) {
	session, err := h.Exams.Active(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	if session.IsSubmitted() {
		return h.renderExam(session), nil
	}
	return screen{
		text: formatSubmitConfirm(session),
		kb:   markup(buildSubmitConfirmKeyboard(session.CurrentIndex)),
	}, nil
}

func (h *Handler) submitExam(ctx context.Context, userID int64) (screen, error) {
	if _, err := h.Exams.Submit(ctx, userID); err != nil {
		return screen{}, err
	}
	return h.examScreen(ctx, userID)
}

func (h *Handler) resultsScreen(ctx context.Context, userID int64) (screen, error) {
	session, err := h.Exams.Active(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	if !session.IsSubmitted() {
		return screen{text: md(msgExamNotSubmitted), kb: markup(buildExamKeyboard(session))}, nil
	}
	return h.renderExam(session), nil
}

func (h *Handler) reviewScreen(ctx context.Context, userID int64, filter service.ResultFilter, page int) (screen, error) {
	session, err := h.Exams.Active(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	results, ok := session.Results()
	if !ok {
		return noticeOnly(msgExamNotSubmitted), nil
	}

	switch filter {
	case service.ResultsAll, service.ResultsIncorrect, service.ResultsFlagged:
	default:
		filter = service.ResultsAll
	}

	items := service.FilterQuestionResults(results.QuestionResults, filter, session.Flagged)
	p := service.Paginate(items, page, reviewPageSize)

	return screen{
		text: formatReviewPage(session, filter, p),
		kb:   markup(buildReviewKeyboard(filter, p.CurrentPage, p.TotalPages)),
	}, nil
}

// clearExam closes a submitted exam. A running exam is never discarded here.
func (h *Handler) clearExam(ctx context.Context, userID int64) (screen, error) {
	session, err := h.Exams.Active(ctx, userID)
	if err != nil {
		return screen{}, err
	}
	if !session.IsSubmitted() {
		sc := h.renderExam(session)
		sc.notice = msgExamRunning
		return sc, nil
	}

	if _, err := h.Exams.Clear(ctx, userID); err != nil {
		return screen{}, err
	}

	h.logger.Debug("exam cleared", zap.Int64("user_id", userID))
	return noActiveExamScreen(), nil
}
