package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

func TestDecodeCallback(t *testing.T) {
	t.Parallel()

	cd := decodeCallback("exam:ans:17:C")
	assert.Equal(t, actionExam, cd.Action)
	assert.Equal(t, examAnswer, cd.param(0))
	assert.Equal(t, "C", cd.param(2))
	assert.Empty(t, cd.param(9))

	idx, ok := cd.intParam(1)
	require.True(t, ok)
	assert.Equal(t, 17, idx)

	_, ok = cd.intParam(2)
	assert.False(t, ok)

	empty := decodeCallback("")
	assert.Empty(t, empty.Action)

	bare := decodeCallback(actionProgress)
	assert.Equal(t, actionProgress, bare.Action)
	assert.Empty(t, bare.Params)
}

func TestCallbackBuildersRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		action string
		params []string
	}{
		{name: "exam answer", data: buildExamAnswerCallback(179, "D"), action: actionExam, params: []string{examAnswer, "179", "D"}},
		{name: "exam flag", data: buildExamFlagCallback(3), action: actionExam, params: []string{examFlag, "3"}},
		{name: "exam nav", data: buildExamNavCallback(0), action: actionExam, params: []string{examNav, "0"}},
		{name: "review", data: buildExamReviewCallback(service.ResultsIncorrect, 2), action: actionExam, params: []string{examReview, "incorrect", "2"}},
		{name: "card show all domains", data: buildCardShowCallback(service.StudyDue, ""), action: actionCard, params: []string{cardShow, "due", anyDomain}},
		{
			name:   "card rate",
			data:   buildCardRateCallback("people-flash-042", entities.RatingEasy, service.StudyBox(3), entities.DomainPeople),
			action: actionCard,
			params: []string{cardRate, "box3", "people", "people-flash-042", "easy"},
		},
		{name: "quiz start", data: buildQuizStartCallback(entities.DomainBusiness), action: actionQuiz, params: []string{quizStart, "business"}},
		{name: "quiz next", data: buildQuizNextCallback(), action: actionQuiz, params: []string{quizNext}},
		{name: "settings theme", data: buildSettingsCallback(settingsTheme, "dark"), action: actionSettings, params: []string{settingsTheme, "dark"}},
		{name: "reset confirm", data: buildResetConfirmCallback(), action: actionReset, params: []string{resetConfirm}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.LessOrEqual(t, len(tt.data), 64, "telegram limits callback data to 64 bytes")

			cd := decodeCallback(tt.data)
			assert.Equal(t, tt.action, cd.Action)
			assert.Equal(t, tt.params, cd.Params)
		})
	}
}

func TestDecodeDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, entities.DomainProcess, decodeDomain(" Process "))
	assert.Equal(t, entities.DomainID(""), decodeDomain(anyDomain))
	assert.Equal(t, entities.DomainID(""), decodeDomain("finance"))
	assert.Equal(t, anyDomain, encodeDomain(""))
}

func TestParseCardsArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args   string
		mode   service.StudyMode
		domain entities.DomainID
	}{
		{args: "", mode: service.StudyDue},
		{args: "all", mode: service.StudyAll},
		{args: "people box2", mode: service.StudyBox(2), domain: entities.DomainPeople},
		{args: "box9 business", mode: service.StudyDue, domain: entities.DomainBusiness},
	}

	for _, tt := range tests {
		mode, domain := parseCardsArgs(tt.args)
		assert.Equal(t, tt.mode, mode, tt.args)
		assert.Equal(t, tt.domain, domain, tt.args)
	}
}
