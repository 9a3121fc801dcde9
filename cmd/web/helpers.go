package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/identity"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/modules"
	"github.com/myrjola/ikigai/internal/profile"
)

const maxBodyBytes = 64 << 10

var errBadRequest = errors.NewSentinel("bad request")

type apiError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into v rejecting unknown fields.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	return nil
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, map[string]apiError{"error": {
		Kind:    "Internal",
		Message: http.StatusText(http.StatusInternalServerError),
	}})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), slog.String("kind", kind))
	app.writeJSON(w, r, status, map[string]apiError{"error": {Kind: kind, Message: message}})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, "NotFound", "Not found.")
}

// errorResponse renders the error of a service call. Unexpected errors are logged and reported as 500.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "AI completion failed", errors.SlogError(err))
		app.clientError(w, r, aiStatus(aiErr.Kind), string(aiErr.Kind), aiErr.Message())
		return
	}
	var identityErr *identity.Error
	if errors.As(err, &identityErr) {
		if identityErr.Kind == identity.KindUnknown {
			app.serverError(w, r, err)
			return
		}
		app.clientError(w, r, identityStatus(identityErr.Kind), string(identityErr.Kind), identityErr.Message())
		return
	}

	switch {
	case errors.Is(err, errBadRequest):
		app.clientError(w, r, http.StatusBadRequest, "BadRequest", "The request could not be read.")
	case errors.Is(err, modules.ErrInvalidForm), errors.Is(err, models.ErrInvalidResult):
		app.clientError(w, r, http.StatusUnprocessableEntity, "InvalidForm", "Please fill in all required fields.")
	case errors.Is(err, modules.ErrUnknownModule), errors.Is(err, models.ErrNotFound):
		app.notFound(w, r)
	case errors.Is(err, modules.ErrLocked):
		app.clientError(w, r, http.StatusForbidden, "Locked", "Complete the previous modules to unlock this one.")
	case errors.Is(err, modules.ErrInProgress):
		app.clientError(w, r, http.StatusConflict, "InProgress", "This module is already being completed.")
	case errors.Is(err, modules.ErrWrongSubmission), errors.Is(err, modules.ErrNotCompletable):
		app.clientError(w, r, http.StatusBadRequest, "WrongSubmission", "This module does not accept that submission.")
	case errors.Is(err, models.ErrConflict):
		app.clientError(w, r, http.StatusConflict, "Conflict", "The resource already exists.")
	case errors.Is(err, assessment.ErrInvalidOption):
		app.clientError(w, r, http.StatusUnprocessableEntity, "InvalidOption", "Choose one of the offered answers.")
	case errors.Is(err, assessment.ErrIncomplete):
		app.clientError(w, r, http.StatusUnprocessableEntity, "Incomplete", "Answer every question first.")
	case errors.Is(err, assessment.ErrNotAtQuestion), errors.Is(err, assessment.ErrNoPrevious),
		errors.Is(err, assessment.ErrNotAtFinalStep):
		app.clientError(w, r, http.StatusConflict, "InvalidStep", "That action is not possible at this step.")
	case errors.Is(err, profile.ErrClosed):
		app.clientError(w, r, http.StatusServiceUnavailable, "ShuttingDown", "The server is shutting down.")
	default:
		app.serverError(w, r, err)
	}
}

func aiStatus(kind ai.Kind) int {
	switch kind {
	case ai.KindConfig:
		return http.StatusServiceUnavailable
	case ai.KindRateLimited:
		return http.StatusTooManyRequests
	case ai.KindSafetyBlocked:
		return http.StatusUnprocessableEntity
	case ai.KindMalformedResponse, ai.KindNetworkFailure:
		return http.StatusBadGateway
	}
	return http.StatusBadGateway
}

func identityStatus(kind identity.Kind) int {
	switch kind {
	case identity.KindEmailInUse:
		return http.StatusConflict
	case identity.KindInvalidEmail, identity.KindWeakPassword:
		return http.StatusUnprocessableEntity
	case identity.KindNotFound, identity.KindBadCredential:
		return http.StatusUnauthorized
	case identity.KindUnknown:
	}
	return http.StatusInternalServerError
}
