package assessment

import (
	"context"
	"encoding/gob"
	"log/slog"

	"github.com/myrjola/ikigai/internal/errors"
)

var (
	ErrInvalidOption  = errors.NewSentinel("option is not one of the question's options")
	ErrNotAtQuestion  = errors.NewSentinel("not at a question")
	ErrNoPrevious     = errors.NewSentinel("already at the first question")
	ErrNotAtFinalStep = errors.NewSentinel("not at the final step")
	ErrIncomplete     = errors.NewSentinel("not all questions are answered")
	ErrInvalidState   = errors.NewSentinel("invalid quiz state")
)

func init() { //nolint:gochecknoinits // quiz state is kept in the gob encoded session.
	gob.Register(State{}) //nolint:exhaustruct // type registration.
}

// Quiz is the state machine of one questionnaire run.
//
// The steps 0..N-1 show question i and step N is the final step where the user may add a free-text note and
// submit. The only way forward is selecting an option, so the final step is reached only after an option has
// been recorded for every question.
type Quiz struct {
	questionnaire Questionnaire
	step          int
	answers       []string
	note          string
}

// Submission is handed to the completion callback. Answers has exactly one entry per question in order.
type Submission struct {
	Answers []string
	Note    string
}

// CompleteFunc transforms a finished submission, typically by asking the AI for a result.
type CompleteFunc func(ctx context.Context, submission Submission) error

func New(questionnaire Questionnaire) *Quiz {
	return &Quiz{
		questionnaire: questionnaire,
		step:          0,
		answers:       make([]string, questionnaire.Len()),
		note:          "",
	}
}

func (q *Quiz) Questionnaire() Questionnaire {
	return q.questionnaire
}

// Step returns the current step. Step equals the number of questions at the final step.
func (q *Quiz) Step() int {
	return q.step
}

func (q *Quiz) AtFinalStep() bool {
	return q.step == q.questionnaire.Len()
}

// Current returns the question of the current step. ok is false at the final step.
func (q *Quiz) Current() (question Question, ok bool) {
	if q.AtFinalStep() {
		return Question{}, false //nolint:exhaustruct // zero value.
	}
	return q.questionnaire.Questions[q.step], true
}

// Answer returns the recorded answer of question i or an empty string.
func (q *Quiz) Answer(i int) string {
	if i < 0 || i >= len(q.answers) {
		return ""
	}
	return q.answers[i]
}

func (q *Quiz) Note() string {
	return q.note
}

// Select records option for the current question and advances to the next step.
func (q *Quiz) Select(option string) error {
	question, ok := q.Current()
	if !ok {
		return ErrNotAtQuestion
	}
	if !question.HasOption(option) {
		return errors.Wrap(ErrInvalidOption, "select", slog.Int("question", question.ID),
			slog.String("option", option))
	}
	q.answers[q.step] = option
	q.step++
	return nil
}

// Previous moves back one question keeping the recorded answers.
func (q *Quiz) Previous() error {
	if q.AtFinalStep() {
		return ErrNotAtQuestion
	}
	if q.step == 0 {
		return ErrNoPrevious
	}
	q.step--
	return nil
}

// Back leaves the final step for the last question.
func (q *Quiz) Back() error {
	if !q.AtFinalStep() {
		return ErrNotAtFinalStep
	}
	q.step--
	return nil
}

// SetNote sets the optional free-text elaboration on the final step.
func (q *Quiz) SetNote(note string) error {
	if !q.AtFinalStep() {
		return ErrNotAtFinalStep
	}
	q.note = note
	return nil
}

// Submit hands the answers to complete. Errors from complete are returned as is so the caller can retry.
func (q *Quiz) Submit(ctx context.Context, complete CompleteFunc) error {
	if !q.AtFinalStep() {
		return ErrNotAtFinalStep
	}
	for i, answer := range q.answers {
		if !q.questionnaire.Questions[i].HasOption(answer) {
			return errors.Wrap(ErrIncomplete, "submit", slog.Int("question", q.questionnaire.Questions[i].ID))
		}
	}
	return complete(ctx, Submission{
		Answers: append([]string(nil), q.answers...),
		Note:    q.note,
	})
}

// State is the serialisable snapshot of a quiz.
type State struct {
	Questionnaire string
	Step          int
	Answers       []string
	Note          string
}

func (q *Quiz) State() State {
	return State{
		Questionnaire: q.questionnaire.Name,
		Step:          q.step,
		Answers:       append([]string(nil), q.answers...),
		Note:          q.note,
	}
}

// Submission returns the answers and note of the snapshot.
func (s State) Submission() Submission {
	return Submission{Answers: append([]string(nil), s.Answers...), Note: s.Note}
}

// Restore rebuilds a quiz from a snapshot. The snapshot must be reachable by normal traversal: every question
// before the current step answered with one of its options.
func Restore(questionnaire Questionnaire, s State) (*Quiz, error) {
	n := questionnaire.Len()
	switch {
	case s.Questionnaire != questionnaire.Name:
		return nil, errors.Wrap(ErrInvalidState, "questionnaire mismatch", slog.String("state", s.Questionnaire),
			slog.String("questionnaire", questionnaire.Name))
	case len(s.Answers) != n:
		return nil, errors.Wrap(ErrInvalidState, "answer count", slog.Int("answers", len(s.Answers)))
	case s.Step < 0 || s.Step > n:
		return nil, errors.Wrap(ErrInvalidState, "step out of range", slog.Int("step", s.Step))
	}
	for i, answer := range s.Answers {
		question := questionnaire.Questions[i]
		if answer == "" && i >= s.Step {
			continue
		}
		if !question.HasOption(answer) {
			return nil, errors.Wrap(ErrInvalidState, "invalid answer", slog.Int("question", question.ID))
		}
	}
	return &Quiz{
		questionnaire: questionnaire,
		step:          s.Step,
		answers:       append([]string(nil), s.Answers...),
		note:          s.Note,
	}, nil
}
