package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

const (
	msgPracticeRestarted    = "Deck finished, starting over"
	msgPracticeChooseDomain = "Choose a domain to practice:"
)

func (h *Handler) handlePractice(userID int64, args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if strings.TrimSpace(args) == "" {
			msg := newPlainMessage(chatID, msgPracticeChooseDomain)
			msg.ReplyMarkup = buildQuizDomainKeyboard()
			return h.send(msg)
		}

		sc, err := h.startPractice(ctx, userID, args)
		if err != nil {
			return err
		}
		return h.sendScreen(chatID, sc)
	}
}

func (h *Handler) handleQuizCallback(ctx context.Context, userID int64, data callbackData) (screen, error) {
	switch data.param(0) {
	case quizStart:
		return h.startPractice(ctx, userID, data.param(1))
	case quizAnswer:
		return h.answerPractice(ctx, userID, data.param(1))
	case quizNext:
		view, restarted, err := h.Quiz.Next(userID)
		if errors.Is(err, service.ErrNoQuizSession) {
			return noPracticeScreen(), nil
		}
		if err != nil {
			return screen{}, err
		}
		sc := practiceQuestionScreen(view)
		if restarted {
			sc.notice = msgPracticeRestarted
		}
		return sc, nil
	case quizStop:
		view, err := h.Quiz.Current(userID)
		if errors.Is(err, service.ErrNoQuizSession) {
			return noPracticeScreen(), nil
		}
		if err != nil {
			return screen{}, err
		}
		h.Quiz.Stop(userID)
		text := bold("Practice finished") + "\n\n" +
			md(fmt.Sprintf("Correct answers: %d", view.Score))
		return screen{text: text, kb: markup(buildQuizDomainKeyboard())}, nil
	default:
		return noticeOnly(msgNothingToChange), nil
	}
}

func (h *Handler) startPractice(ctx context.Context, userID int64, domainArg string) (screen, error) {
	view, err := h.Quiz.Start(ctx, userID, decodeDomain(domainArg))
	if errors.Is(err, service.ErrNoQuestionsAvailable) {
		return screen{text: md(msgNoQuestions)}, nil
	}
	if err != nil {
		return screen{}, err
	}
	return practiceQuestionScreen(view), nil
}

func (h *Handler) answerPractice(ctx context.Context, userID int64, optionID string) (screen, error) {
	answer, view, err := h.Quiz.Answer(ctx, userID, optionID)
	if errors.Is(err, service.ErrNoQuizSession) {
		return noPracticeScreen(), nil
	}
	if err != nil {
		return screen{}, err
	}
	if answer.Question.ID == "" {
		return noticeOnly(msgNothingToChange), nil
	}

	return screen{
		text: formatQuizFeedback(answer, view),
		kb:   markup(buildQuizFeedbackKeyboard()),
	}, nil
}

func practiceQuestionScreen(view service.QuizView) screen {
	return screen{
		text: formatQuizQuestion(view),
		kb:   markup(buildQuizAnswerKeyboard(view.Question)),
	}
}

func noPracticeScreen() screen {
	return screen{text: md(msgNoPracticeSession), kb: markup(buildQuizDomainKeyboard())}
}
