package main

import (
	"net/http"

	"github.com/myrjola/ikigai/internal/contexthelpers"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/modules"
)

type profileResponse struct {
	Profile  models.Profile  `json:"profile"`
	Modules  []modules.State `json:"modules"`
	Progress int             `json:"progress"`
	// Warnings report earlier saves that failed. The in-memory profile is still intact.
	Warnings []string `json:"warnings,omitempty"`
}

func newProfileResponse(p models.Profile, warnings []string) profileResponse {
	return profileResponse{
		Profile:  p,
		Modules:  modules.Evaluate(p),
		Progress: modules.Progress(p),
		Warnings: warnings,
	}
}

func (app *application) getProfile(w http.ResponseWriter, r *http.Request) {
	p, warnings, err := app.modules.Profile(r.Context(), contexthelpers.AuthenticatedUserID(r.Context()))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newProfileResponse(p, warnings))
}

// patchProfile merges the free-form fields. Identity fields and module results are owned by the server.
func (app *application) patchProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.ProfilePatch
	if err := readJSON(r, &patch); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	patch = patch.FreeFormOnly()
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	if patch.IsEmpty() {
		app.getProfile(w, r)
		return
	}
	p, err := app.profiles.MergeAndSave(r.Context(), userID, patch)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newProfileResponse(p, nil))
}
