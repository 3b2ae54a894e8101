// Package grading validates learner submissions against typed question
// definitions. Each question type has its own correctness rule and points
// formula; an incorrect answer is a normal outcome, never an error.
package grading

import (
	"strconv"
	"strings"

	"github.com/edukit/lessond/internal/model"
	"github.com/edukit/lessond/internal/question"
)

// Structured error strings returned on malformed requests. The HTTP layer
// maps these to 4xx responses.
const (
	ErrNotFound        = "not found"
	ErrUnsupportedType = "unsupported type"
	ErrInvalidShape    = "invalid input shape"
)

// Engine grades submissions using the question repository.
type Engine struct {
	repo *question.Repository
}

// NewEngine creates a grading engine over the repository.
func NewEngine(repo *question.Repository) *Engine {
	return &Engine{repo: repo}
}

// Validate grades one submission. The submitted value is whatever the JSON
// body carried: a number for multiple choice, a bool for true/false, a
// string for fill-in-the-blank, an object for matching.
func (e *Engine) Validate(questionID string, submitted any) model.ValidationResult {
	q, ok := e.repo.GetByID(questionID)
	if !ok {
		return model.ValidationResult{Valid: false, Error: ErrNotFound, QuestionID: questionID}
	}

	switch q.Type {
	case model.QuestionMultipleChoice:
		if q.MultipleChoice != nil {
			return gradeMultipleChoice(q, submitted)
		}
	case model.QuestionTrueFalse:
		if q.TrueFalse != nil {
			return gradeTrueFalse(q, submitted)
		}
	case model.QuestionFillBlank:
		if q.FillBlank != nil {
			return gradeFillBlank(q, submitted)
		}
	case model.QuestionMatching:
		if q.Matching != nil {
			return gradeMatching(q, submitted)
		}
	case model.QuestionShortAnswer:
		if q.ShortAnswer != nil {
			return gradeShortAnswer(q)
		}
	}
	return model.ValidationResult{
		Valid:        false,
		Error:        ErrUnsupportedType,
		QuestionID:   q.ID,
		QuestionType: q.Type,
	}
}

func invalidShape(q model.QuestionRecord) model.ValidationResult {
	return model.ValidationResult{
		Valid:        false,
		Error:        ErrInvalidShape,
		QuestionID:   q.ID,
		QuestionType: q.Type,
	}
}

func graded(q model.QuestionRecord, correct bool, points float64, explanation string) model.ValidationResult {
	return model.ValidationResult{
		Valid:          true,
		QuestionID:     q.ID,
		QuestionType:   q.Type,
		Correct:        &correct,
		PointsEarned:   &points,
		PointsPossible: q.Points,
		Explanation:    explanation,
	}
}

// allOrNothing awards full points when correct, zero otherwise.
func allOrNothing(q model.QuestionRecord, correct bool, explanation string) model.ValidationResult {
	points := 0.0
	if correct {
		points = float64(q.Points)
	}
	return graded(q, correct, points, explanation)
}

func gradeMultipleChoice(q model.QuestionRecord, submitted any) model.ValidationResult {
	idx, ok := asIndex(submitted)
	if !ok {
		return invalidShape(q)
	}
	// An out-of-range index is a well-formed wrong answer, not a malformed
	// request.
	return allOrNothing(q, idx == q.MultipleChoice.CorrectAnswer, q.MultipleChoice.Explanation)
}

func gradeTrueFalse(q model.QuestionRecord, submitted any) model.ValidationResult {
	b, ok := asBool(submitted)
	if !ok {
		return invalidShape(q)
	}
	return allOrNothing(q, b == q.TrueFalse.CorrectAnswer, q.TrueFalse.Explanation)
}

func gradeFillBlank(q model.QuestionRecord, submitted any) model.ValidationResult {
	s, ok := submitted.(string)
	if !ok {
		return invalidShape(q)
	}
	answer := normalize(s)
	correct := answer == normalize(q.FillBlank.CorrectAnswer)
	if !correct {
		for _, alt := range q.FillBlank.AlternativeAnswers {
			if answer == normalize(alt) {
				correct = true
				break
			}
		}
	}
	return allOrNothing(q, correct, q.FillBlank.Explanation)
}

func gradeMatching(q model.QuestionRecord, submitted any) model.ValidationResult {
	pairs, ok := asPairs(submitted)
	if !ok {
		return invalidShape(q)
	}

	total := len(q.Matching.CorrectPairs)
	if total == 0 {
		// Degenerate question: no pairs to score, so no credit and no
		// division by zero. Flagged so callers can surface it.
		res := graded(q, false, 0, q.Matching.Explanation)
		res.Degenerate = true
		return res
	}

	correctCount := 0
	for left, right := range q.Matching.CorrectPairs {
		if got, ok := pairs[left]; ok && got == right {
			correctCount++
		}
	}

	points := float64(q.Points) * float64(correctCount) / float64(total)
	res := graded(q, correctCount == total, points, q.Matching.Explanation)
	res.CorrectCount = correctCount
	res.TotalPairs = total
	return res
}

// gradeShortAnswer is the deliberate terminal state: the engine surfaces
// grading material and defers to a human. PointsEarned stays null.
func gradeShortAnswer(q model.QuestionRecord) model.ValidationResult {
	return model.ValidationResult{
		Valid:                 true,
		QuestionID:            q.ID,
		QuestionType:          q.Type,
		PointsPossible:        q.Points,
		RequiresManualGrading: true,
		SampleAnswer:          q.ShortAnswer.SampleAnswer,
		MarkingCriteria:       q.ShortAnswer.MarkingCriteria,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// asIndex coerces a decoded JSON value to an option index. JSON numbers
// arrive as float64; digit strings are accepted for form-encoded callers.
func asIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// asBool coerces a decoded JSON value to a boolean. Strings go through
// strconv.ParseBool; numbers are truthy when non-zero.
func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(b)))
		if err != nil {
			return false, false
		}
		return parsed, true
	case float64:
		return b != 0, true
	case int:
		return b != 0, true
	default:
		return false, false
	}
}

// asPairs coerces a matching submission to an index mapping. JSON objects
// decode to map[string]any with string keys; both keys and values must be
// integers or the submission is malformed.
func asPairs(v any) (map[int]int, bool) {
	switch m := v.(type) {
	case map[int]int:
		return m, true
	case map[string]any:
		out := make(map[int]int, len(m))
		for k, raw := range m {
			left, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil {
				return nil, false
			}
			right, ok := asIndex(raw)
			if !ok {
				return nil, false
			}
			out[left] = right
		}
		return out, true
	default:
		return nil, false
	}
}
