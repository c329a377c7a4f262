package repository

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/aliskhannn/pmp-prep-bot/internal/domain/entities"
)

// Stored documents are decoded into a generic JSON tree and rebuilt field by
// field: invalid values are replaced with defaults instead of failing the load.
// Sanitizing an already sanitized document yields the same state.

// ParseDocument decodes a JSON object into a generic tree. Anything else is an error.
func ParseDocument(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode document: expected object, got %T", v)
	}
	return obj, nil
}

// DecodeExamState loads exam state, degrading to the empty state when data is
// absent or malformed.
func DecodeExamState(data []byte, now time.Time) *entities.ExamState {
	if len(data) == 0 {
		return entities.NewExamState()
	}
	obj, err := ParseDocument(data)
	if err != nil {
		return entities.NewExamState()
	}
	return SanitizeExamState(obj, now)
}

// DecodeProgress loads study progress, degrading to empty progress.
func DecodeProgress(data []byte) *entities.StudyProgress {
	if len(data) == 0 {
		return entities.NewStudyProgress()
	}
	obj, err := ParseDocument(data)
	if err != nil {
		return entities.NewStudyProgress()
	}
	return SanitizeProgress(obj)
}

// DecodeProfile loads a profile, degrading to the default profile.
func DecodeProfile(data []byte) *entities.Profile {
	if len(data) == 0 {
		return entities.NewProfile()
	}
	obj, err := ParseDocument(data)
	if err != nil {
		return entities.NewProfile()
	}
	return SanitizeProfile(obj)
}

// SanitizeExamState rebuilds exam state from a generic JSON object.
func SanitizeExamState(obj map[string]any, now time.Time) *entities.ExamState {
	state := entities.NewExamState()

	if exam, ok := asObject(obj["activeExam"]); ok {
		state.Active = sanitizeExam(exam, now)
	}

	history, _ := obj["examHistory"].([]any)
	for _, item := range history {
		entry, ok := asObject(item)
		if !ok {
			continue
		}
		if h, ok := sanitizeHistoryEntry(entry); ok {
			state.AppendHistory(h)
		}
	}

	return state
}

// sanitizeExam returns nil when no usable question survives.
func sanitizeExam(obj map[string]any, now time.Time) *entities.ExamSession {
	questions := sanitizeQuestions(obj["questions"])
	if len(questions) == 0 {
		return nil
	}

	id, _ := obj["id"].(string)
	if id == "" {
		id = fmt.Sprintf("exam-%d", now.UnixMilli())
	}

	startTime := timeOr(obj["startTime"], now)
	session := entities.NewExamSession(id, questions, startTime)

	if answers, ok := asObject(obj["answers"]); ok {
		for qid, v := range answers {
			if opt, ok := v.(string); ok && qid != "" && opt != "" {
				session.Answers[qid] = opt
			}
		}
	}

	flagged, _ := obj["flagged"].([]any)
	for _, v := range flagged {
		if qid, ok := v.(string); ok && qid != "" && !slices.Contains(session.Flagged, qid) {
			session.Flagged = append(session.Flagged, qid)
		}
	}

	idx, _ := asInt(obj["currentIndex"])
	session.CurrentIndex = min(max(idx, 0), len(questions)-1)

	session.TotalPauseTime = asDuration(obj["totalPauseTime"])

	switch {
	case obj["isSubmitted"] == true:
		at := timeOr(obj["submittedAt"], startTime)
		results, ok := sanitizeResults(obj["results"])
		if !ok {
			results = entities.CalculateResults(session.Questions, session.Answers, startTime, session.TotalPauseTime, at)
		}
		session.Phase = entities.Submitted{At: at, Results: results}
	default:
		if at, ok := asTime(obj["pausedAt"]); ok {
			session.Phase = entities.Paused{At: at}
		}
	}

	return session
}

func sanitizeQuestions(v any) []entities.Question {
	items, _ := v.([]any)
	out := make([]entities.Question, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		id, _ := obj["id"].(string)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		q := entities.Question{
			ID:              id,
			DomainID:        entities.DomainID(stringOr(obj["domainId"], "")),
			TaskID:          stringOr(obj["taskId"], ""),
			Text:            stringOr(obj["text"], ""),
			CorrectOptionID: stringOr(obj["correctOptionId"], ""),
			Explanation:     stringOr(obj["explanation"], ""),
			Options:         []entities.Option{},
		}
		opts, _ := obj["options"].([]any)
		for _, o := range opts {
			opt, ok := asObject(o)
			if !ok {
				continue
			}
			if oid, ok := opt["id"].(string); ok && oid != "" {
				q.Options = append(q.Options, entities.Option{ID: oid, Label: stringOr(opt["label"], "")})
			}
		}
		out = append(out, q)
	}

	return out
}

func sanitizeHistoryEntry(obj map[string]any) (entities.HistoryEntry, bool) {
	results, ok := sanitizeResults(obj["results"])
	if !ok {
		return entities.HistoryEntry{}, false
	}
	id, _ := obj["id"].(string)
	if id == "" {
		return entities.HistoryEntry{}, false
	}
	start := timeOr(obj["startTime"], time.UnixMilli(0))
	return entities.HistoryEntry{
		ID:          id,
		StartTime:   start,
		SubmittedAt: timeOr(obj["submittedAt"], start),
		Results:     results,
	}, true
}

func sanitizeResults(v any) (*entities.ExamResults, bool) {
	obj, ok := asObject(v)
	if !ok {
		return nil, false
	}

	score, _ := asInt(obj["totalScore"])
	pct, _ := asFloat(obj["percentageScore"])

	r := &entities.ExamResults{
		TotalScore:      max(score, 0),
		PercentageScore: max(pct, 0),
		Passed:          obj["passed"] == true,
		TimeElapsed:     asDuration(obj["timeElapsed"]),
		TimePaused:      asDuration(obj["timePaused"]),
		DomainScores:    make(map[entities.DomainID]entities.DomainScore),
		QuestionResults: []entities.QuestionResult{},
	}

	for _, d := range entities.Domains {
		r.DomainScores[d] = entities.DomainScore{}
	}
	if scores, ok := asObject(obj["domainScores"]); ok {
		for d, sv := range scores {
			s, ok := asObject(sv)
			if !ok || d == "" {
				continue
			}
			correct, _ := asInt(s["correct"])
			total, _ := asInt(s["total"])
			p, _ := asFloat(s["percentage"])
			r.DomainScores[entities.DomainID(d)] = entities.DomainScore{
				Correct:    max(correct, 0),
				Total:      max(total, 0),
				Percentage: max(p, 0),
			}
		}
	}

	items, _ := obj["questionResults"].([]any)
	for _, item := range items {
		qr, ok := asObject(item)
		if !ok {
			continue
		}
		qid, _ := qr["questionId"].(string)
		if qid == "" {
			continue
		}
		var answer *string
		if a, ok := qr["userAnswer"].(string); ok && a != "" {
			answer = &a
		}
		r.QuestionResults = append(r.QuestionResults, entities.QuestionResult{
			QuestionID:    qid,
			UserAnswer:    answer,
			CorrectAnswer: stringOr(qr["correctAnswer"], ""),
			IsCorrect:     qr["isCorrect"] == true,
			DomainID:      entities.DomainID(stringOr(qr["domainId"], string(entities.DomainPeople))),
		})
	}

	return r, true
}

// SanitizeProgress rebuilds study progress from a generic JSON object.
func SanitizeProgress(obj map[string]any) *entities.StudyProgress {
	p := entities.NewStudyProgress()

	if boxes, ok := asObject(obj["flashcardBoxes"]); ok {
		for id, v := range boxes {
			b, ok := asObject(v)
			if !ok || id == "" {
				continue
			}
			box, _ := asInt(b["box"])
			count, _ := asInt(b["reviewCount"])
			entry := entities.BoxEntry{
				Box:         entities.ClampBox(box),
				NextReview:  timeOr(b["nextReview"], time.UnixMilli(0)),
				ReviewCount: max(count, 0),
			}
			if at, ok := asTime(b["lastReviewed"]); ok {
				entry.LastReviewed = &at
			}
			p.FlashcardBoxes[id] = entry
		}
	}

	p.CompletedQuestions = uniqueStrings(obj["completedQuestions"], entities.MaxTrackedIDs)
	p.ReadMaterials = uniqueStrings(obj["readMaterials"], entities.MaxTrackedIDs)

	if ratings, ok := asObject(obj["flashcardRatings"]); ok {
		// Sorted so the cap keeps the same subset on every load.
		ids := make([]string, 0, len(ratings))
		for id := range ratings {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if len(p.FlashcardRatings) >= entities.MaxTrackedRatings {
				break
			}
			f, ok := asFloat(ratings[id])
			if !ok || id == "" {
				continue
			}
			p.FlashcardRatings[id] = min(entities.MaxRating, max(entities.MinRating, int(math.Round(f))))
		}
	}

	return p
}

// SanitizeProfile rebuilds a profile from a generic JSON object.
func SanitizeProfile(obj map[string]any) *entities.Profile {
	p := entities.NewProfile()

	if name, ok := obj["name"].(string); ok {
		p.Name = entities.TruncateName(name)
	}
	theme, _ := obj["theme"].(string)
	p.Theme = entities.SanitizeTheme(theme)

	codes, _ := obj["donationCodes"].([]any)
	for _, v := range codes {
		if len(p.DonationCodes) >= entities.MaxDonationCodes {
			break
		}
		if code, ok := v.(string); ok {
			code = strings.TrimSpace(code)
			if code != "" && !slices.Contains(p.DonationCodes, code) {
				p.DonationCodes = append(p.DonationCodes, code)
			}
		}
	}

	return p
}

func uniqueStrings(v any, limit int) []string {
	items, _ := v.([]any)
	out := []string{}
	for _, item := range items {
		if len(out) >= limit {
			break
		}
		s, ok := item.(string)
		if !ok || s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt64(v any) (int64, bool) {
	f, ok := asFloat(v)
	if !ok || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func asInt(v any) (int, bool) {
	n, ok := asInt64(v)
	return int(n), ok
}

// maxDurationMillis is the largest millisecond count a time.Duration holds.
const maxDurationMillis = math.MaxInt64 / int64(time.Millisecond)

// asDuration reads a millisecond count clamped into [0, maxDurationMillis].
func asDuration(v any) time.Duration {
	ms, _ := asInt64(v)
	return time.Duration(min(max(ms, 0), maxDurationMillis)) * time.Millisecond
}

func asTime(v any) (time.Time, bool) {
	ms, ok := asInt64(v)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func timeOr(v any, def time.Time) time.Time {
	if t, ok := asTime(v); ok {
		return t
	}
	return def
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
