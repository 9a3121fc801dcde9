package main

import (
	"net/http"

	"github.com/myrjola/ikigai/internal/contexthelpers"
	"github.com/myrjola/ikigai/internal/modules"
)

type homeTemplateData struct {
	baseTemplateData
	Modules  []modules.State
	Progress int
	Warnings []string
}

// home renders the hub with the module list. The CSRF token in the meta tag authorises the API calls.
func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		baseTemplateData: newBaseTemplateData(r),
		Modules:          nil,
		Progress:         0,
		Warnings:         nil,
	}
	if data.Authenticated {
		p, warnings, err := app.modules.Profile(r.Context(), contexthelpers.AuthenticatedUserID(r.Context()))
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		data.Modules = modules.Evaluate(p)
		data.Progress = modules.Progress(p)
		data.Warnings = warnings
	}

	app.render(w, r, http.StatusOK, "hub", data)
}
