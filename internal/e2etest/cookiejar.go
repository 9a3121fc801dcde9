package e2etest

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/myrjola/ikigai/internal/errors"
)

// plainHTTPJar stores cookies with the Secure attribute cleared. The server marks its session and CSRF cookies
// Secure, and the test server speaks plain HTTP.
type plainHTTPJar struct {
	http.CookieJar
}

func newPlainHTTPJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "new cookie jar")
	}
	return plainHTTPJar{CookieJar: jar}, nil
}

func (j plainHTTPJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	stored := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		insecure := *c
		insecure.Secure = false
		stored = append(stored, &insecure)
	}
	j.CookieJar.SetCookies(u, stored)
}
