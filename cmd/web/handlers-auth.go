package main

import (
	"net/http"
)

type credentialsForm struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := readJSON(r, &form); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	session, err := app.identity.Register(r.Context(), form.Email, form.Password, form.DisplayName)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, session)
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var form credentialsForm
	if err := readJSON(r, &form); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	session, err := app.identity.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, session)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.identity.Logout(r.Context()); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// currentSession returns the session marker or null for anonymous users.
func (app *application) currentSession(w http.ResponseWriter, r *http.Request) {
	session, ok := app.identity.CurrentSession(r.Context())
	if !ok {
		app.writeJSON(w, r, http.StatusOK, nil)
		return
	}
	app.writeJSON(w, r, http.StatusOK, session)
}
