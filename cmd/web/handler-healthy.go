package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/ikigai/internal/errors"
)

// healthy responds with a JSON object indicating that the server and its store are healthy.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	if err := app.backend.Ping(r.Context()); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "unhealthy", errors.SlogError(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok","backend":"` + app.backend.Kind + `"}`))
}
