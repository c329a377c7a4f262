package telegram

import (
	"strconv"
	"strings"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
	"github.com/aliskhannn/pmp-prep-bot/internal/service"
)

// Callback action constants.
const (
	actionExam     = "exam"
	actionCard     = "card"
	actionQuiz     = "quiz"
	actionProgress = "progress"
	actionSettings = "settings"
	actionReset    = "reset"
)

// Exam sub-actions. Questions are addressed by index to stay within
// the 64 byte callback data limit.
const (
	examStart    = "start"
	examAnswer   = "ans"
	examFlag     = "flag"
	examNav      = "nav"
	examPause    = "pause"
	examResume   = "resume"
	examSubmit   = "submit"
	examSubmitOK = "submitok"
	examResults  = "results"
	examReview   = "review"
	examClear    = "clear"
)

// Flashcard sub-actions.
const (
	cardShow = "show"
	cardFlip = "flip"
	cardRate = "rate"
)

// Practice sub-actions.
const (
	quizStart  = "start"
	quizAnswer = "ans"
	quizNext   = "next"
	quizStop   = "stop"
)

const (
	settingsMenu  = "menu"
	settingsTheme = "theme"
)

const (
	resetConfirm = "confirm"
	resetCancel  = "cancel"
)

// anyDomain stands for "all domains" in callback data.
const anyDomain = "any"

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// param returns the i-th parameter or an empty string.
func (cd callbackData) param(i int) string {
	if i < 0 || i >= len(cd.Params) {
		return ""
	}
	return cd.Params[i]
}

// intParam parses the i-th parameter as an integer.
func (cd callbackData) intParam(i int) (int, bool) {
	n, err := strconv.Atoi(cd.param(i))
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 || parts[0] == "" {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

func encodeDomain(d entities.DomainID) string {
	if d == "" {
		return anyDomain
	}
	return string(d)
}

// decodeDomain maps callback and command arguments to a domain.
// Unknown values select all domains.
func decodeDomain(s string) entities.DomainID {
	d := entities.DomainID(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsKnown() {
		return ""
	}
	return d
}

func buildExamCallback(sub string, params ...string) string {
	return callbackData{
		Action: actionExam,
		Params: append([]string{sub}, params...),
	}.encode()
}

func buildExamAnswerCallback(index int, optionID string) string {
	return buildExamCallback(examAnswer, strconv.Itoa(index), optionID)
}

func buildExamFlagCallback(index int) string {
	return buildExamCallback(examFlag, strconv.Itoa(index))
}

func buildExamNavCallback(index int) string {
	return buildExamCallback(examNav, strconv.Itoa(index))
}

func buildExamReviewCallback(filter service.ResultFilter, page int) string {
	return buildExamCallback(examReview, string(filter), strconv.Itoa(page))
}

func buildCardShowCallback(mode service.StudyMode, domain entities.DomainID) string {
	return callbackData{
		Action: actionCard,
		Params: []string{cardShow, string(mode), encodeDomain(domain)},
	}.encode()
}

func buildCardFlipCallback(cardID string, mode service.StudyMode, domain entities.DomainID) string {
	return callbackData{
		Action: actionCard,
		Params: []string{cardFlip, string(mode), encodeDomain(domain), cardID},
	}.encode()
}

func buildCardRateCallback(
	cardID string, rating entities.Rating, mode service.StudyMode, domain entities.DomainID,
) string {
	return callbackData{
		Action: actionCard,
		Params: []string{cardRate, string(mode), encodeDomain(domain), cardID, string(rating)},
	}.encode()
}

func buildQuizStartCallback(domain entities.DomainID) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizStart, encodeDomain(domain)},
	}.encode()
}

func buildQuizAnswerCallback(optionID string) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizAnswer, optionID},
	}.encode()
}

func buildQuizNextCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizNext}}.encode()
}

func buildQuizStopCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizStop}}.encode()
}

// buildProgressCallback builds callback data for opening the progress view.
func buildProgressCallback() string {
	return actionProgress
}

// buildSettingsCallback builds callback data for settings-related actions.
func buildSettingsCallback(subAction string, value ...string) string {
	params := []string{subAction}
	params = append(params, value...)
	return callbackData{
		Action: actionSettings,
		Params: params,
	}.encode()
}

func buildResetConfirmCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetConfirm}}.encode()
}

func buildResetCancelCallback() string {
	return callbackData{Action: actionReset, Params: []string{resetCancel}}.encode()
}
