package assessment_test

import (
	"bytes"
	"context"
	"encoding/gob"
	"math/rand/v2"
	"testing"

	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionnaires(t *testing.T) {
	tests := []struct {
		questionnaire assessment.Questionnaire
		want          int
	}{
		{assessment.Personality, 8},
		{assessment.Temperament, 12},
	}
	for _, tt := range tests {
		t.Run(tt.questionnaire.Name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.questionnaire.Len())
			for i, q := range tt.questionnaire.Questions {
				assert.Equal(t, i+1, q.ID, "ordinal ids")
				assert.NotEmpty(t, q.Prompt)
				seen := map[string]bool{}
				for _, o := range q.Options {
					assert.NotEmpty(t, o)
					assert.False(t, seen[o], "options are distinct")
					seen[o] = true
				}
			}
		})
	}
}

func submitted(t *testing.T, quiz *assessment.Quiz) assessment.Submission {
	t.Helper()
	var got assessment.Submission
	err := quiz.Submit(context.Background(), func(_ context.Context, s assessment.Submission) error {
		got = s
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestQuiz_completedTraversalHasOneDeclaredAnswerPerQuestion(t *testing.T) {
	for _, questionnaire := range []assessment.Questionnaire{assessment.Personality, assessment.Temperament} {
		t.Run(questionnaire.Name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2)) //nolint:gosec // deterministic test data.
			for range 50 {
				quiz := assessment.New(questionnaire)
				for !quiz.AtFinalStep() {
					// Wander back now and then to exercise Previous and Back.
					if quiz.Step() > 0 && rng.IntN(4) == 0 {
						require.NoError(t, quiz.Previous())
						continue
					}
					question, ok := quiz.Current()
					require.True(t, ok)
					require.NoError(t, quiz.Select(question.Options[rng.IntN(len(question.Options))]))
					if quiz.AtFinalStep() && rng.IntN(3) == 0 {
						require.NoError(t, quiz.Back())
					}
				}
				submission := submitted(t, quiz)
				require.Len(t, submission.Answers, questionnaire.Len())
				for i, answer := range submission.Answers {
					assert.True(t, questionnaire.Questions[i].HasOption(answer))
				}
			}
		})
	}
}

func TestQuiz_finalStepOnlyAfterNForwardTransitions(t *testing.T) {
	quiz := assessment.New(assessment.Personality)
	n := assessment.Personality.Len()
	for i := range n {
		assert.False(t, quiz.AtFinalStep())
		err := quiz.Submit(context.Background(), func(context.Context, assessment.Submission) error {
			t.Fatal("completion must not be invoked before the final step")
			return nil
		})
		require.ErrorIs(t, err, assessment.ErrNotAtFinalStep)
		require.ErrorIs(t, quiz.SetNote("early"), assessment.ErrNotAtFinalStep)

		question, _ := quiz.Current()
		require.ErrorIs(t, quiz.Select("not an option"), assessment.ErrInvalidOption)
		assert.Equal(t, i, quiz.Step(), "invalid options do not advance")
		require.NoError(t, quiz.Select(question.Options[0]))
	}
	assert.True(t, quiz.AtFinalStep())
	assert.Equal(t, n, quiz.Step())
}

func TestQuiz_transitions(t *testing.T) {
	quiz := assessment.New(assessment.Personality)
	require.ErrorIs(t, quiz.Previous(), assessment.ErrNoPrevious)
	require.ErrorIs(t, quiz.Back(), assessment.ErrNotAtFinalStep)

	first, _ := quiz.Current()
	require.NoError(t, quiz.Select(first.Options[2]))
	require.NoError(t, quiz.Previous())
	assert.Equal(t, 0, quiz.Step())
	assert.Equal(t, first.Options[2], quiz.Answer(0), "previous keeps the recorded answer")

	for !quiz.AtFinalStep() {
		q, _ := quiz.Current()
		require.NoError(t, quiz.Select(q.Options[1]))
	}
	require.ErrorIs(t, quiz.Select(first.Options[0]), assessment.ErrNotAtQuestion)
	require.ErrorIs(t, quiz.Previous(), assessment.ErrNotAtQuestion)

	require.NoError(t, quiz.SetNote("I love mornings"))
	require.NoError(t, quiz.Back())
	assert.Equal(t, assessment.Personality.Len()-1, quiz.Step())
	last, _ := quiz.Current()
	require.NoError(t, quiz.Select(last.Options[3]))

	submission := submitted(t, quiz)
	assert.Equal(t, "I love mornings", submission.Note)
	assert.Equal(t, first.Options[1], submission.Answers[0])
	assert.Equal(t, last.Options[3], submission.Answers[len(submission.Answers)-1])
}

func TestQuiz_Submit_propagatesCompletionError(t *testing.T) {
	quiz := assessment.New(assessment.Personality)
	for !quiz.AtFinalStep() {
		q, _ := quiz.Current()
		require.NoError(t, quiz.Select(q.Options[0]))
	}
	errBoom := errors.NewSentinel("boom")
	err := quiz.Submit(context.Background(), func(context.Context, assessment.Submission) error { return errBoom })
	require.ErrorIs(t, err, errBoom)
	assert.True(t, quiz.AtFinalStep(), "a failed completion can be retried")
}

func TestRestore(t *testing.T) {
	quiz := assessment.New(assessment.Personality)
	for range 3 {
		q, _ := quiz.Current()
		require.NoError(t, quiz.Select(q.Options[0]))
	}
	require.NoError(t, quiz.Previous())

	// The state survives the gob encoding used by the session store.
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(map[string]any{"quiz": quiz.State()}))
	var decoded map[string]any
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))
	state, ok := decoded["quiz"].(assessment.State)
	require.True(t, ok)

	restored, err := assessment.Restore(assessment.Personality, state)
	require.NoError(t, err)
	assert.Equal(t, quiz.State(), restored.State())

	valid := quiz.State()
	tests := []struct {
		name   string
		mutate func(s *assessment.State)
	}{
		{"other questionnaire", func(s *assessment.State) { s.Questionnaire = "temperament" }},
		{"wrong answer count", func(s *assessment.State) { s.Answers = s.Answers[:3] }},
		{"step out of range", func(s *assessment.State) { s.Step = 9 }},
		{"skipped question", func(s *assessment.State) { s.Answers[0] = "" }},
		{"unknown option", func(s *assessment.State) { s.Answers[2] = "forged" }},
		{"final step with gaps", func(s *assessment.State) { s.Step = 8 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.Answers = append([]string(nil), valid.Answers...)
			tt.mutate(&s)
			_, err = assessment.Restore(assessment.Personality, s)
			require.ErrorIs(t, err, assessment.ErrInvalidState)
		})
	}
}
