package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/e2etest"
	"github.com/myrjola/ikigai/internal/envstruct"
	"github.com/myrjola/ikigai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func testLookupEnv(overrides map[string]string) func(string) (string, bool) {
	env := map[string]string{
		"IKIGAI_ADDR":         "localhost:0",
		"IKIGAI_SQLITE_URL":   ":memory:",
		"IKIGAI_BCRYPT_COST":  "4",
		"IKIGAI_ADMIN_EMAILS": "admin@example.com",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// newTestApp serves the application with the given AI backend on an httptest server.
func newTestApp(t *testing.T, aiBackend ai.Backend, overrides map[string]string) (*application, *httptest.Server) {
	t.Helper()
	ctx := context.Background()
	var cfg config
	require.NoError(t, envstruct.Populate(&cfg, testLookupEnv(overrides)))
	app, err := newApplication(ctx, testhelpers.NewLogger(io.Discard), cfg, aiBackend)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, app.close())
	})
	srv := httptest.NewServer(app.routes())
	t.Cleanup(srv.Close)
	return app, srv
}

func newClient(t *testing.T, srv *httptest.Server) *e2etest.Client {
	t.Helper()
	client, err := e2etest.NewClient(srv.URL)
	require.NoError(t, err)
	return client
}

// requireAPIError asserts that err is an API error with the given status and kind.
func requireAPIError(t *testing.T, err error, status int, kind string) {
	t.Helper()
	var apiErr *e2etest.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.Status, apiErr.Error())
	require.Equal(t, kind, apiErr.Kind)
	require.NotEmpty(t, apiErr.Message)
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv(nil), run)
	require.NoError(t, err)
	client := server.Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)
	token, ok := doc.Find("meta[name=csrf-token]").Attr("content")
	require.True(t, ok)
	require.NotEmpty(t, token)

	session, err := client.Register(ctx, "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", session.Email)

	var profile profileResponse
	require.NoError(t, client.Do(ctx, http.MethodGet, "/api/profile", nil, &profile))
	require.Equal(t, 0, profile.Progress)
	require.Len(t, profile.Modules, 6)

	// Without an API key the AI features report a configuration error.
	err = client.Do(ctx, http.MethodPost, "/api/modules/identity/submit", map[string]string{"traits": "curious"}, nil)
	requireAPIError(t, err, http.StatusServiceUnavailable, string(ai.KindConfig))

	require.NoError(t, client.Logout(ctx))
	var current *e2etest.Session
	require.NoError(t, client.Do(ctx, http.MethodGet, "/api/auth/session", nil, &current))
	require.Nil(t, current)
	err = client.Do(ctx, http.MethodGet, "/api/profile", nil, nil)
	requireAPIError(t, err, http.StatusUnauthorized, "Unauthenticated")

	_, err = client.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, client.Do(ctx, http.MethodGet, "/api/auth/session", nil, &current))
	require.Equal(t, session.UserID, current.UserID)
}
