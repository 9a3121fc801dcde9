package main

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/myrjola/ikigai/internal/models"
)

func (app *application) listMentors(w http.ResponseWriter, r *http.Request) {
	mentors, err := app.backend.Mentors.List(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, mentors)
}

type contactForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// contact stores the message in the admin inbox. Anonymous visitors may use it too.
func (app *application) contact(w http.ResponseWriter, r *http.Request) {
	var form contactForm
	if err := readJSON(r, &form); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Body = strings.TrimSpace(form.Body)
	if _, err := mail.ParseAddress(form.Email); err != nil || form.Name == "" || form.Body == "" {
		app.clientError(w, r, http.StatusUnprocessableEntity, "InvalidForm",
			"Please provide your name, a valid email address and a message.")
		return
	}
	message, err := app.backend.Messages.Create(r.Context(), models.ContactMessage{ //nolint:exhaustruct // id and timestamp are set by the store.
		Name:    form.Name,
		Email:   strings.TrimSpace(form.Email),
		Subject: strings.TrimSpace(form.Subject),
		Body:    form.Body,
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, message)
}
