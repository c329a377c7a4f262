package telegram

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/repository"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
	"github.com/aliskhannn/pmp-prep-bot/internal/storage"
)

const testUser int64 = 77

type mockBot struct {
	mock.Mock
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func (m *mockBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	args := m.Called(c)
	return args.Get(0).(*tgbotapi.APIResponse), args.Error(1)
}

func (m *mockBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	args := m.Called(config)
	return args.Get(0).(tgbotapi.UpdatesChannel)
}

func (m *mockBot) GetFileDirectURL(fileID string) (string, error) {
	args := m.Called(fileID)
	return args.String(0), args.Error(1)
}

// sent returns the texts of every sent or edited message, in order.
func (m *mockBot) sent() []string {
	var out []string
	for _, call := range m.Calls {
		if call.Method != "Send" {
			continue
		}
		switch c := call.Arguments.Get(0).(type) {
		case tgbotapi.MessageConfig:
			out = append(out, c.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, c.Text)
		}
	}
	return out
}

// notices returns the texts of callback answers.
func (m *mockBot) notices() []string {
	var out []string
	for _, call := range m.Calls {
		if cb, ok := call.Arguments.Get(0).(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

func testQuestions() []entities.Question {
	var out []entities.Question
	for _, t := range service.DefaultDistribution {
		for i := range t.Count {
			out = append(out, entities.Question{
				ID:       fmt.Sprintf("%s-%d", t.Domain, i),
				DomainID: t.Domain,
				Text:     "Which action comes first?",
				Options: []entities.Option{
					{ID: "A", Label: "Plan"},
					{ID: "B", Label: "Do"},
					{ID: "C", Label: "Check"},
					{ID: "D", Label: "Act"},
				},
				CorrectOptionID: "A",
			})
		}
	}
	return out
}

func newTestHandler(t *testing.T) (*Handler, *mockBot, *service.ExamService) {
	t.Helper()

	kv := storage.NewMemoryKV()
	questions, issues := repository.NewQuestionBank(testQuestions())
	require.Empty(t, issues)
	cards, _ := repository.NewFlashcardBank([]entities.Flashcard{
		{ID: "card-1", DomainID: entities.DomainPeople, Front: "What is servant leadership?", Back: "Leading by serving the team."},
	})

	log := zap.NewNop()
	examRepo := repository.NewExamStateRepository(kv, time.Now)
	progressRepo := repository.NewProgressRepository(kv)
	profileRepo := repository.NewProfileRepository(kv)
	selector := service.NewQuestionSelector(rand.New(rand.NewSource(1)))

	exams := service.NewExamService(examRepo, questions, selector, entities.ExamDuration, log)
	progress := service.NewProgressService(progressRepo, examRepo, cards, log)

	bot := &mockBot{}
	bot.On("Send", mock.Anything).Return(tgbotapi.Message{}, nil)
	bot.On("Request", mock.Anything).Return(&tgbotapi.APIResponse{Ok: true}, nil)

	h := NewHandler(bot, log, Services{
		Exams:      exams,
		Flashcards: service.NewFlashcardService(cards, progressRepo, nil, log),
		Progress:   progress,
		Profiles:   service.NewProfileService(profileRepo),
		Quiz:       service.NewQuizService(questions, storage.NewQuizStorage(), progress, selector, log),
		Backup:     service.NewBackupService(progressRepo, profileRepo, log),
		Reset:      service.NewResetService(examRepo, progressRepo, profileRepo),
	})
	return h, bot, exams
}

func commandUpdate(text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: testUser, FirstName: "Robin"},
		Chat:      &tgbotapi.Chat{ID: testUser},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: testUser},
		Message: &tgbotapi.Message{
			MessageID: 10,
			Chat:      &tgbotapi.Chat{ID: testUser},
		},
		Data: data,
	}}
}

func TestHandler_ExamFlow(t *testing.T) {
	t.Parallel()

	h, bot, exams := newTestHandler(t)
	ctx := context.Background()

	h.handleUpdate(ctx, commandUpdate("/exam"))

	session, err := exams.Active(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, session.Questions, entities.ExamSize)

	sent := bot.sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Question 1 of 180")

	h.handleUpdate(ctx, callbackUpdate(buildExamAnswerCallback(0, "C")))
	h.handleUpdate(ctx, callbackUpdate(buildExamFlagCallback(0)))
	h.handleUpdate(ctx, callbackUpdate(buildExamNavCallback(5)))

	session, err = exams.Active(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "C", session.Answers[session.Questions[0].ID])
	assert.True(t, session.IsFlagged(session.Questions[0].ID))
	assert.Equal(t, 5, session.CurrentIndex)

	h.handleUpdate(ctx, callbackUpdate(buildExamAnswerCallback(999, "A")))
	assert.Equal(t, msgNothingToChange, bot.notices()[3])

	h.handleUpdate(ctx, callbackUpdate(buildExamCallback(examSubmitOK)))
	session, err = exams.Active(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, session.IsSubmitted())

	history, err := exams.History(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHandler_NoActiveExam(t *testing.T) {
	t.Parallel()

	h, bot, _ := newTestHandler(t)

	h.handleUpdate(context.Background(), commandUpdate("/pause"))

	sent := bot.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, md(msgNoActiveExam), sent[0])
}

func TestHandler_UnknownInput(t *testing.T) {
	t.Parallel()

	h, bot, _ := newTestHandler(t)
	ctx := context.Background()

	h.handleUpdate(ctx, commandUpdate("hello there"))
	h.handleUpdate(ctx, commandUpdate("/dance"))

	assert.Equal(t, []string{msgUnknownCommand, msgUnknownCommand}, bot.sent())
}

func TestHandler_StoresFirstName(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandler(t)
	ctx := context.Background()

	h.handleUpdate(ctx, commandUpdate("/help"))

	profile, err := h.Profiles.Get(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "Robin", profile.Name)
}

func TestHandler_ThrottlesCallbacks(t *testing.T) {
	t.Parallel()

	h, bot, _ := newTestHandler(t)
	h.limiter = newUserLimiter(time.Hour, 1)
	ctx := context.Background()

	h.handleUpdate(ctx, callbackUpdate(buildProgressCallback()))
	h.handleUpdate(ctx, callbackUpdate(buildProgressCallback()))

	notices := bot.notices()
	require.Len(t, notices, 2)
	assert.Equal(t, msgSlowDown, notices[1])
	assert.Len(t, bot.sent(), 1, "throttled callback does not edit the message")
}

func TestHandler_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	h, bot, _ := newTestHandler(t)
	updates := make(chan tgbotapi.Update)
	bot.On("GetUpdatesChan", mock.Anything).Return(tgbotapi.UpdatesChannel(updates))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, h.Run(ctx), context.Canceled)
}
