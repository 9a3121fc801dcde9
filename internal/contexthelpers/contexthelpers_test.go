package contexthelpers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/myrjola/ikigai/internal/contexthelpers"
	"github.com/stretchr/testify/assert"
)

func TestContextHelpers(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	ctx := r.Context()
	assert.False(t, contexthelpers.IsAuthenticated(ctx))
	assert.Empty(t, contexthelpers.AuthenticatedUserID(ctx))
	assert.False(t, contexthelpers.IsAdmin(ctx))

	r = contexthelpers.AuthenticateContext(r, "user-1", true)
	r = contexthelpers.SetCurrentPath(r, "/api/profile")
	r = contexthelpers.SetCSRFToken(r, "token")
	r = contexthelpers.SetCSPNonce(r, "nonce")
	ctx = r.Context()

	assert.True(t, contexthelpers.IsAuthenticated(ctx))
	assert.Equal(t, "user-1", contexthelpers.AuthenticatedUserID(ctx))
	assert.True(t, contexthelpers.IsAdmin(ctx))
	assert.Equal(t, "/api/profile", contexthelpers.CurrentPath(ctx))
	assert.Equal(t, "token", contexthelpers.CSRFToken(ctx))
	assert.Equal(t, "nonce", contexthelpers.CSPNonce(ctx))
}
