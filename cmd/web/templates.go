package main

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/myrjola/ikigai/internal/contexthelpers"
	"github.com/myrjola/ikigai/internal/errors"
)

//go:embed templates
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.gohtml")) //nolint:gochecknoglobals // parsed once.

type baseTemplateData struct {
	Authenticated bool
	CSRFToken     string
	CSPNonce      string
}

func newBaseTemplateData(r *http.Request) baseTemplateData {
	ctx := r.Context()
	return baseTemplateData{
		Authenticated: contexthelpers.IsAuthenticated(ctx),
		CSRFToken:     contexthelpers.CSRFToken(ctx),
		CSPNonce:      contexthelpers.CSPNonce(ctx),
	}
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	buf := new(bytes.Buffer)
	if err := pageTemplates.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", name)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
