package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/ikigai/internal/contexthelpers"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
)

type adminUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Created     string `json:"created"`
}

func (app *application) adminListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := app.backend.Accounts.List(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	users := make([]adminUser, 0, len(accounts))
	for _, a := range accounts {
		users = append(users, adminUser{
			ID:          a.ID,
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Role:        a.Role,
			Created:     a.Created.Format(time.RFC3339),
		})
	}
	app.writeJSON(w, r, http.StatusOK, users)
}

// adminDeleteUser removes the account and its profile. Admins cannot delete themselves.
func (app *application) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if id == contexthelpers.AuthenticatedUserID(ctx) {
		app.clientError(w, r, http.StatusConflict, "Conflict", "You cannot delete your own account.")
		return
	}
	if err := app.backend.Accounts.Delete(ctx, id); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if err := app.profiles.Delete(ctx, id); err != nil && !errors.Is(err, models.ErrNotFound) {
		app.errorResponse(w, r, err)
		return
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "user deleted", slog.String("deleted_user_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func readMentor(r *http.Request) (models.Mentor, error) {
	var mentor models.Mentor
	if err := readJSON(r, &mentor); err != nil {
		return mentor, err
	}
	mentor.Name = strings.TrimSpace(mentor.Name)
	if mentor.Name == "" {
		return mentor, errors.Wrap(errBadRequest, "mentor name is required")
	}
	return mentor, nil
}

func (app *application) adminCreateMentor(w http.ResponseWriter, r *http.Request) {
	mentor, err := readMentor(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if mentor, err = app.backend.Mentors.Create(r.Context(), mentor); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, mentor)
}

func (app *application) adminUpdateMentor(w http.ResponseWriter, r *http.Request) {
	mentor, err := readMentor(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	mentor.ID = r.PathValue("id")
	if err = app.backend.Mentors.Update(r.Context(), mentor); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, mentor)
}

func (app *application) adminDeleteMentor(w http.ResponseWriter, r *http.Request) {
	if err := app.backend.Mentors.Delete(r.Context(), r.PathValue("id")); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) adminListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := app.backend.Messages.List(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, messages)
}

func (app *application) adminMarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if err := app.backend.Messages.MarkRead(r.Context(), r.PathValue("id")); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) adminDeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := app.backend.Messages.Delete(r.Context(), r.PathValue("id")); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
