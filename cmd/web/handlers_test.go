package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/ai/aitest"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/modules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sageResult = `Here is your result:
` + "```json" + `
{"archetype":"The Sage","tagline":"Seeker of truth","description":"...","strengths":["wisdom"],"shadowSide":[],
"relationships":"...","workStyle":"...","famousExamples":["Socrates"],"coreWound":"...","growthKey":"..."}
` + "```"

func TestAuthErrors(t *testing.T) {
	_, srv := newTestApp(t, nil, nil)
	client := newClient(t, srv)
	ctx := context.Background()
	_, err := client.Register(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		email      string
		password   string
		wantStatus int
		wantKind   string
	}{
		{"email in use", "/api/auth/register", "ADA@example.com", "secret1", http.StatusConflict, "EmailInUse"},
		{"invalid email", "/api/auth/register", "ada", "secret1", http.StatusUnprocessableEntity, "InvalidEmail"},
		{"weak password", "/api/auth/register", "bob@example.com", "123", http.StatusUnprocessableEntity, "WeakPassword"},
		{"unknown account", "/api/auth/login", "bob@example.com", "secret1", http.StatusUnauthorized, "NotFound"},
		{"wrong password", "/api/auth/login", "ada@example.com", "wrong!!", http.StatusUnauthorized, "BadCredential"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Do(ctx, http.MethodPost, tt.path,
				map[string]string{"email": tt.email, "password": tt.password}, nil)
			requireAPIError(t, err, tt.wantStatus, tt.wantKind)
		})
	}
}

func TestCSRFProtection(t *testing.T) {
	_, srv := newTestApp(t, nil, nil)

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", //nolint:noctx // test request.
		strings.NewReader(`{"email":"ada@example.com","password":"secret1"}`))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPersonalityQuiz(t *testing.T) {
	backend := aitest.NewBackend(sageResult)
	_, srv := newTestApp(t, backend, nil)
	client := newClient(t, srv)
	ctx := context.Background()
	_, err := client.Register(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	var states []modules.State
	require.NoError(t, client.Do(ctx, http.MethodGet, "/api/modules", nil, &states))
	require.Equal(t, modules.Temperament, states[1].ID)
	require.True(t, states[1].Locked)

	var quiz quizResponse
	require.NoError(t, client.Do(ctx, http.MethodPost, "/api/modules/personality/quiz", nil, &quiz))
	require.Equal(t, 8, quiz.Total)
	require.NotNil(t, quiz.Question)

	err = client.Do(ctx, http.MethodPost, "/api/modules/personality/quiz/previous", nil, nil)
	requireAPIError(t, err, http.StatusConflict, "InvalidStep")
	err = client.Do(ctx, http.MethodPost, "/api/modules/personality/quiz/answer",
		map[string]string{"option": "not an option"}, nil)
	requireAPIError(t, err, http.StatusUnprocessableEntity, "InvalidOption")

	for !quiz.AtFinalStep {
		require.NoError(t, client.Do(ctx, http.MethodPost, "/api/modules/personality/quiz/answer",
			map[string]string{"option": quiz.Question.Options[1]}, &quiz))
	}
	require.Equal(t, 8, quiz.Step)

	// Going back keeps the answers.
	require.NoError(t, client.Do(ctx, http.MethodPost, "/api/modules/personality/quiz/back", nil, &quiz))
	require.Equal(t, 7, quiz.Step)
	require.Equal(t, quiz.Question.Options[1], quiz.Answer)
	require.NoError(t, client.Do(ctx, http.MethodPost, "/api/modules/personality/quiz/answer",
		map[string]string{"option": quiz.Question.Options[2]}, &quiz))

	var profile profileResponse
	require.NoError(t, client.Do(ctx, http.MethodPost, "/api/modules/personality/quiz/submit",
		map[string]string{"note": "I love libraries"}, &profile))
	require.NotNil(t, profile.Profile.Archetype)
	assert.Equal(t, "The Sage", profile.Profile.Archetype.Archetype)
	assert.Equal(t, 20, profile.Progress)
	assert.False(t, profile.Modules[1].Locked)

	requests := backend.Requests()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0].Content, "I love libraries")

	// The wizard starts over after a successful submit.
	require.NoError(t, client.Do(ctx, http.MethodGet, "/api/modules/personality/quiz", nil, &quiz))
	assert.Equal(t, 0, quiz.Step)
}

func TestLockedModules(t *testing.T) {
	_, srv := newTestApp(t, aitest.NewBackend(`{"statement":"x"}`), nil)
	client := newClient(t, srv)
	ctx := context.Background()
	_, err := client.Register(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	err = client.Do(ctx, http.MethodPost, "/api/modules/temperament/quiz", nil, nil)
	requireAPIError(t, err, http.StatusForbidden, "Locked")
	err = client.Do(ctx, http.MethodPost, "/api/modules/ikigai/submit", map[string]string{
		"love": "a", "goodAt": "b", "worldNeeds": "c", "paidFor": "d",
	}, nil)
	requireAPIError(t, err, http.StatusForbidden, "Locked")
	err = client.Do(ctx, http.MethodGet, "/api/modules/astrology/questions", nil, nil)
	requireAPIError(t, err, http.StatusNotFound, "NotFound")
	err = client.Do(ctx, http.MethodPost, "/api/modules/personality/submit", map[string]string{}, nil)
	requireAPIError(t, err, http.StatusBadRequest, "WrongSubmission")
}

func TestAICompletionErrors(t *testing.T) {
	tests := []struct {
		name       string
		backend    *aitest.Backend
		wantStatus int
		wantKind   ai.Kind
	}{
		{"safety", aitest.NewFailingBackend(ai.ErrSafetyBlocked), http.StatusUnprocessableEntity, ai.KindSafetyBlocked},
		{"malformed", aitest.NewBackend("I cannot answer that."), http.StatusBadGateway, ai.KindMalformedResponse},
		{"missing headline", aitest.NewBackend(`{"meaning":"no nickname"}`), http.StatusBadGateway,
			ai.KindMalformedResponse},
		{"network", aitest.NewFailingBackend(errors.New("connection reset by peer")), http.StatusBadGateway,
			ai.KindNetworkFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestApp(t, tt.backend, nil)
			client := newClient(t, srv)
			ctx := context.Background()
			_, err := client.Register(ctx, "ada@example.com", "secret1", "Ada")
			require.NoError(t, err)

			err = client.Do(ctx, http.MethodPost, "/api/modules/identity/submit",
				map[string]string{"traits": "curious"}, nil)
			requireAPIError(t, err, tt.wantStatus, string(tt.wantKind))
		})
	}
}

func TestPatchProfile(t *testing.T) {
	_, srv := newTestApp(t, nil, nil)
	client := newClient(t, srv)
	ctx := context.Background()
	_, err := client.Register(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)

	var resp profileResponse
	require.NoError(t, client.Do(ctx, http.MethodPatch, "/api/profile", map[string]any{
		"age":       36,
		"likes":     "hiking",
		"archetype": map[string]string{"archetype": "Forged"},
		"role":      models.RoleAdmin,
	}, &resp))
	assert.Equal(t, 36, resp.Profile.Age)
	assert.Equal(t, "hiking", resp.Profile.Likes)
	assert.Nil(t, resp.Profile.Archetype, "results are owned by the server")
	assert.Equal(t, models.RoleUser, resp.Profile.Role)
	assert.Equal(t, "Ada", resp.Profile.Name)

	err = client.Do(ctx, http.MethodPatch, "/api/profile", map[string]any{"favouriteColour": "blue"}, nil)
	requireAPIError(t, err, http.StatusBadRequest, "BadRequest")
}

func TestAdmin(t *testing.T) {
	_, srv := newTestApp(t, nil, nil)
	ctx := context.Background()

	user := newClient(t, srv)
	session, err := user.Register(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	err = user.Do(ctx, http.MethodGet, "/api/admin/users", nil, nil)
	requireAPIError(t, err, http.StatusForbidden, "Forbidden")

	var mentors []models.Mentor
	require.NoError(t, user.Do(ctx, http.MethodGet, "/api/mentors", nil, &mentors))
	require.Len(t, mentors, 3)

	var message models.ContactMessage
	require.NoError(t, user.Do(ctx, http.MethodPost, "/api/contact", map[string]string{
		"name": "Ada", "email": "ada@example.com", "subject": "Hi", "body": "Hello there",
	}, &message))

	admin := newClient(t, srv)
	adminSession, err := admin.Register(ctx, "admin@example.com", "secret1", "Admin")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, adminSession.Role)

	var created models.Mentor
	require.NoError(t, admin.Do(ctx, http.MethodPost, "/api/admin/mentors",
		map[string]any{"name": "Noor", "title": "Coach", "ordering": 4}, &created))
	require.NotEmpty(t, created.ID)
	require.NoError(t, admin.Do(ctx, http.MethodPut, "/api/admin/mentors/"+created.ID,
		map[string]any{"name": "Noor H.", "ordering": 0}, nil))
	require.NoError(t, admin.Do(ctx, http.MethodGet, "/api/mentors", nil, &mentors))
	require.Len(t, mentors, 4)
	assert.Equal(t, "Noor H.", mentors[0].Name)
	require.NoError(t, admin.Do(ctx, http.MethodDelete, "/api/admin/mentors/"+created.ID, nil, nil))
	err = admin.Do(ctx, http.MethodDelete, "/api/admin/mentors/"+created.ID, nil, nil)
	requireAPIError(t, err, http.StatusNotFound, "NotFound")

	var messages []models.ContactMessage
	require.NoError(t, admin.Do(ctx, http.MethodPost, "/api/admin/messages/"+message.ID+"/read", nil, nil))
	require.NoError(t, admin.Do(ctx, http.MethodGet, "/api/admin/messages", nil, &messages))
	require.Len(t, messages, 1)
	assert.True(t, messages[0].Read)
	require.NoError(t, admin.Do(ctx, http.MethodDelete, "/api/admin/messages/"+message.ID, nil, nil))

	var users []adminUser
	require.NoError(t, admin.Do(ctx, http.MethodGet, "/api/admin/users", nil, &users))
	require.Len(t, users, 2)
	err = admin.Do(ctx, http.MethodDelete, "/api/admin/users/"+adminSession.UserID, nil, nil)
	requireAPIError(t, err, http.StatusConflict, "Conflict")
	require.NoError(t, admin.Do(ctx, http.MethodDelete, "/api/admin/users/"+session.UserID, nil, nil))

	// The deleted user is signed out on the next request.
	err = user.Do(ctx, http.MethodGet, "/api/profile", nil, nil)
	requireAPIError(t, err, http.StatusUnauthorized, "Unauthenticated")
}

func TestHealthyAndMetrics(t *testing.T) {
	_, srv := newTestApp(t, aitest.NewBackend(sageResult), nil)

	resp, err := http.Get(srv.URL + "/api/healthy") //nolint:noctx // test request.
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics") //nolint:noctx // test request.
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}
