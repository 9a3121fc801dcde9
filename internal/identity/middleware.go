package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/myrjola/ikigai/internal/contexthelpers"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/logging"
	"github.com/myrjola/ikigai/internal/models"
)

// AuthenticateMiddleware marks the request context as authenticated when the session carries a marker of an
// existing account. Markers of deleted accounts are removed.
func (s *Service) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session, ok := s.CurrentSession(ctx)

		// User has not yet authenticated.
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		account, err := s.accounts.Get(ctx, session.UserID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			s.sessionManager.Remove(ctx, sessionKey)
			s.notify(ctx, nil)
			next.ServeHTTP(w, r)
			return
		case err != nil:
			s.logger.LogAttrs(ctx, slog.LevelError, "server error",
				slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), errors.SlogError(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		r = contexthelpers.AuthenticateContext(r, account.ID, account.IsAdmin())

		// Hash token with sha256 to avoid leaking it in logs.
		tokenHash := sha256.Sum256([]byte(s.sessionManager.Token(ctx)))
		ctx = logging.WithAttrs(r.Context(),
			slog.String("session_hash", hex.EncodeToString(tokenHash[:])),
			slog.String("user_id", account.ID),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
