package e2etest

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainHTTPJar(t *testing.T) {
	jar, err := newPlainHTTPJar()
	require.NoError(t, err)
	u, err := url.Parse("http://localhost:4000/api/auth/login")
	require.NoError(t, err)

	session := &http.Cookie{Name: "session", Value: "token", Path: "/", Secure: true} //nolint:exhaustruct // test cookie.
	jar.SetCookies(u, []*http.Cookie{session})

	cookies := jar.Cookies(u)
	require.Len(t, cookies, 1)
	require.Equal(t, "token", cookies[0].Value)
	require.True(t, session.Secure, "the caller's cookie is left untouched")
}
