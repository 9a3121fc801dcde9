package modules_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/ai/aitest"
	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/localstore"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/modules"
	"github.com/myrjola/ikigai/internal/profile"
	"github.com/myrjola/ikigai/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sage = `{"archetype":"The Sage","tagline":"...","description":"...","strengths":["a","b"],"shadowSide":["c"],` +
	`"relationships":"...","workStyle":"...","famousExamples":["x"],"coreWound":"...","growthKey":"..."}`

func newService(t *testing.T, backend ai.Backend) (*modules.Service, *profile.Aggregator) {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	store, err := localstore.Open("", logger)
	require.NoError(t, err)
	aggregator, err := profile.New(localstore.NewProfileStore(store), profile.Options{}, logger) //nolint:exhaustruct // defaults.
	require.NoError(t, err)
	t.Cleanup(aggregator.Close)
	client := ai.NewClient(backend, ai.Options{Provider: "stub"}, logger) //nolint:exhaustruct // defaults.
	return modules.NewService(client, aggregator, logger, nil), aggregator
}

func answerAll(t *testing.T, questionnaire assessment.Questionnaire) *assessment.Quiz {
	t.Helper()
	quiz := assessment.New(questionnaire)
	for !quiz.AtFinalStep() {
		q, _ := quiz.Current()
		require.NoError(t, quiz.Select(q.Options[0]))
	}
	return quiz
}

func TestService_personalityEndToEnd(t *testing.T) {
	ctx := context.Background()
	backend := aitest.NewBackend(sage)
	svc, aggregator := newService(t, backend)

	quiz := answerAll(t, assessment.Personality)
	require.NoError(t, quiz.SetNote("I read a lot"))
	err := quiz.Submit(ctx, func(ctx context.Context, s assessment.Submission) error {
		_, err := svc.CompleteQuiz(ctx, "u1", modules.Personality, s)
		return err
	})
	require.NoError(t, err)

	p, _, err := aggregator.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, p.Archetype)
	assert.Equal(t, "The Sage", p.Archetype.Archetype)
	assert.False(t, modules.IsLocked(modules.Temperament, p))
	assert.Equal(t, 20, modules.Progress(p))

	requests := backend.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, modules.SystemInstruction(modules.Personality), requests[0].SystemInstruction)
	assert.Contains(t, requests[0].Content, "Question 8:")
	assert.Contains(t, requests[0].Content, "I read a lot")
}

func TestService_lockedModule(t *testing.T) {
	ctx := context.Background()
	backend := aitest.NewBackend(`{"temperament":"Sanguine"}`)
	svc, _ := newService(t, backend)

	quiz := answerAll(t, assessment.Temperament)
	err := quiz.Submit(ctx, func(ctx context.Context, s assessment.Submission) error {
		_, err := svc.CompleteQuiz(ctx, "u1", modules.Temperament, s)
		return err
	})
	require.ErrorIs(t, err, modules.ErrLocked)
	assert.Empty(t, backend.Requests(), "locked modules never reach the AI")
	require.ErrorIs(t, svc.CheckUnlocked(ctx, "u1", modules.Synthesis), modules.ErrLocked)
	require.NoError(t, svc.CheckUnlocked(ctx, "u1", modules.Identity))
	require.ErrorIs(t, svc.CheckUnlocked(ctx, "u1", "astrology"), modules.ErrUnknownModule)
}

func TestService_fullJourney(t *testing.T) {
	ctx := context.Background()
	backend := aitest.NewBackend(
		sage,
		`{"temperament":"Sanguine","traits":["warm"]}`,
		"```json\n{\"statement\":\"To teach\"}\n```",
		`{"title":"The Teaching Explorer","actionPlan":["start"]}`,
		`{"nickname":"Lighthouse"}`,
	)
	svc, _ := newService(t, backend)

	_, err := svc.CompleteQuiz(ctx, "u1", modules.Personality, answerAll(t, assessment.Personality).State().Submission())
	require.NoError(t, err)
	_, err = svc.CompleteQuiz(ctx, "u1", modules.Temperament, answerAll(t, assessment.Temperament).State().Submission())
	require.NoError(t, err)
	_, err = svc.CompleteIkigai(ctx, "u1", modules.IkigaiForm{
		Love: "books", GoodAt: "explaining", WorldNeeds: "education", PaidFor: "teaching",
	})
	require.NoError(t, err)
	_, err = svc.CompleteSynthesis(ctx, "u1")
	require.NoError(t, err)
	p, err := svc.CompleteIdentity(ctx, "u1", modules.IdentityForm{Traits: "curious"}) //nolint:exhaustruct // optional fields.
	require.NoError(t, err)

	assert.Equal(t, 100, modules.Progress(p))
	requests := backend.Requests()
	require.Len(t, requests, 5)
	assert.Contains(t, requests[3].Content, "The Sage", "synthesis builds on the earlier results")
	assert.Contains(t, requests[4].Content, "My temperament: Sanguine")
}

func TestService_invalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, aitest.NewBackend(sage))

	_, err := svc.CompleteIkigai(ctx, "u1", modules.IkigaiForm{Love: "books"}) //nolint:exhaustruct // incomplete form.
	require.ErrorIs(t, err, modules.ErrInvalidForm)
	_, err = svc.CompleteQuiz(ctx, "u1", modules.Personality, assessment.Submission{Answers: []string{"a"}}) //nolint:exhaustruct // incomplete.
	require.ErrorIs(t, err, assessment.ErrIncomplete)
	_, err = svc.CompleteQuiz(ctx, "u1", modules.Mentors, assessment.Submission{}) //nolint:exhaustruct // empty.
	require.ErrorIs(t, err, modules.ErrWrongSubmission)
}

func TestService_resultWithoutHeadlineIsMalformed(t *testing.T) {
	ctx := context.Background()
	svc, aggregator := newService(t, aitest.NewBackend(`{"tagline":"no archetype"}`))

	_, err := svc.CompleteQuiz(ctx, "u1", modules.Personality, answerAll(t, assessment.Personality).State().Submission())
	assert.Equal(t, ai.KindMalformedResponse, ai.KindOf(err))

	_, _, err = aggregator.Load(ctx, "u1")
	require.ErrorIs(t, err, models.ErrNotFound, "nothing is merged")
}

func TestService_rejectsConcurrentCompletionOfSameModule(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	backend := aitest.NewBackend()
	backend.Func = func(context.Context, ai.Request) (string, error) {
		close(started)
		<-release
		return sage, nil
	}
	svc, _ := newService(t, backend)
	submission := answerAll(t, assessment.Personality).State().Submission()

	done := make(chan error)
	go func() {
		_, err := svc.CompleteQuiz(ctx, "u1", modules.Personality, submission)
		done <- err
	}()
	<-started
	_, err := svc.CompleteQuiz(ctx, "u1", modules.Personality, submission)
	require.ErrorIs(t, err, modules.ErrInProgress)
	close(release)
	require.NoError(t, <-done)
}

func TestService_completionOutlivesCallerDeadline(t *testing.T) {
	backend := aitest.NewBackend()
	backend.Func = func(ctx context.Context, _ ai.Request) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return sage, nil
		}
	}
	svc, aggregator := newService(t, backend)
	submission := answerAll(t, assessment.Personality).State().Submission()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	p, err := svc.CompleteQuiz(ctx, "u1", modules.Personality, submission)
	require.NoError(t, err)
	require.NotNil(t, p.Archetype)

	stored, _, err := aggregator.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, stored.Archetype)
	assert.Equal(t, "The Sage", stored.Archetype.Archetype)
}

func TestQuizContent(t *testing.T) {
	content := modules.QuizContent(assessment.Personality, answerAll(t, assessment.Personality).State().Submission())
	assert.Equal(t, assessment.Personality.Len(), strings.Count(content, "Answer: "))
	assert.NotContains(t, content, "Additional thoughts")
}
