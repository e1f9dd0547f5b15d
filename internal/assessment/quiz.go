package assessment

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAnswer = errors.New("invalid answer")
	ErrQuizComplete  = errors.New("quiz already complete")
)

// Quiz walks a questionnaire one question at a time and scores it once the
// last question is answered.
type Quiz[Q, A, R any] struct {
	questions []Q
	answers   map[int]A
	current   int
	validate  func(A) bool
	score     func([]Q, map[int]A) R
	result    *R
}

type (
	PersonalityQuiz = Quiz[PersonalityQuestion, int, PersonalityResult]
	ConflictQuiz    = Quiz[ConflictQuestion, Choice, ConflictResult]
)

func NewPersonalityQuiz() *PersonalityQuiz {
	return &PersonalityQuiz{
		questions: PersonalityQuestions(),
		answers:   make(map[int]int),
		validate:  ValidLikert,
		score:     ScorePersonality,
	}
}

func NewConflictQuiz() *ConflictQuiz {
	return &ConflictQuiz{
		questions: ConflictQuestions(),
		answers:   make(map[int]Choice),
		validate:  Choice.Valid,
		score:     ScoreConflict,
	}
}

// Len returns the number of questions.
func (q *Quiz[Q, A, R]) Len() int {
	return len(q.questions)
}

// Current returns the question awaiting an answer and its index.
func (q *Quiz[Q, A, R]) Current() (Q, int, bool) {
	var zero Q
	if q.result != nil || q.current >= len(q.questions) {
		return zero, q.current, false
	}
	return q.questions[q.current], q.current, true
}

// Answer records an answer for the current question and advances. Answering
// the last question scores the quiz and reports done.
func (q *Quiz[Q, A, R]) Answer(a A) (done bool, err error) {
	if q.result != nil {
		return true, ErrQuizComplete
	}
	if !q.validate(a) {
		return false, fmt.Errorf("question %d: %w: %v", q.current+1, ErrInvalidAnswer, a)
	}
	q.answers[q.current] = a
	if q.current < len(q.questions)-1 {
		q.current++
		return false, nil
	}
	result := q.score(q.questions, q.answers)
	q.result = &result
	return true, nil
}

// Revise overwrites an earlier answer before the quiz is complete.
func (q *Quiz[Q, A, R]) Revise(index int, a A) error {
	if q.result != nil {
		return ErrQuizComplete
	}
	if index < 0 || index > q.current {
		return fmt.Errorf("question index %d out of range 0..%d", index, q.current)
	}
	if !q.validate(a) {
		return fmt.Errorf("question %d: %w: %v", index+1, ErrInvalidAnswer, a)
	}
	q.answers[index] = a
	return nil
}

// Progress is the percentage shown alongside the current question.
func (q *Quiz[Q, A, R]) Progress() float64 {
	if len(q.questions) == 0 {
		return 100
	}
	return float64(q.current+1) / float64(len(q.questions)) * 100
}

func (q *Quiz[Q, A, R]) Result() (R, bool) {
	if q.result == nil {
		var zero R
		return zero, false
	}
	return *q.result, true
}
