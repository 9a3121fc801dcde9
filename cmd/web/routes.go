package main

import (
	"net/http"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, app.noSurf, app.identity.AuthenticateMiddleware,
		commonContext)
	authenticated := session.Append(app.requireAuthentication)
	admin := session.Append(app.requireAdmin)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})) //nolint:exhaustruct // defaults.

	mux.Handle("POST /api/auth/register", session.ThenFunc(app.register))
	mux.Handle("POST /api/auth/login", session.ThenFunc(app.login))
	mux.Handle("POST /api/auth/logout", session.ThenFunc(app.logout))
	mux.Handle("GET /api/auth/session", session.ThenFunc(app.currentSession))

	mux.Handle("GET /api/profile", authenticated.ThenFunc(app.getProfile))
	mux.Handle("PATCH /api/profile", authenticated.ThenFunc(app.patchProfile))

	mux.Handle("GET /api/modules", authenticated.ThenFunc(app.listModules))
	mux.Handle("GET /api/modules/{module}/questions", authenticated.ThenFunc(app.questions))
	mux.Handle("POST /api/modules/{module}/quiz", authenticated.ThenFunc(app.startQuiz))
	mux.Handle("GET /api/modules/{module}/quiz", authenticated.ThenFunc(app.getQuiz))
	mux.Handle("POST /api/modules/{module}/quiz/answer", authenticated.ThenFunc(app.answerQuiz))
	mux.Handle("POST /api/modules/{module}/quiz/previous", authenticated.ThenFunc(app.previousQuestion))
	mux.Handle("POST /api/modules/{module}/quiz/back", authenticated.ThenFunc(app.backFromFinalStep))
	mux.Handle("POST /api/modules/{module}/quiz/submit", authenticated.ThenFunc(app.submitQuiz))
	mux.Handle("POST /api/modules/{module}/submit", authenticated.ThenFunc(app.submitForm))

	mux.Handle("GET /api/mentors", authenticated.ThenFunc(app.listMentors))
	mux.Handle("POST /api/contact", session.ThenFunc(app.contact))

	mux.Handle("GET /api/admin/users", admin.ThenFunc(app.adminListUsers))
	mux.Handle("DELETE /api/admin/users/{id}", admin.ThenFunc(app.adminDeleteUser))
	mux.Handle("POST /api/admin/mentors", admin.ThenFunc(app.adminCreateMentor))
	mux.Handle("PUT /api/admin/mentors/{id}", admin.ThenFunc(app.adminUpdateMentor))
	mux.Handle("DELETE /api/admin/mentors/{id}", admin.ThenFunc(app.adminDeleteMentor))
	mux.Handle("GET /api/admin/messages", admin.ThenFunc(app.adminListMessages))
	mux.Handle("POST /api/admin/messages/{id}/read", admin.ThenFunc(app.adminMarkMessageRead))
	mux.Handle("DELETE /api/admin/messages/{id}", admin.ThenFunc(app.adminDeleteMessage))

	mux.Handle("/", http.HandlerFunc(app.notFound))

	return alice.New(app.recoverPanic, app.logRequest, app.secureHeaders).
		Then(timeoutHandler(mux, app.cfg.RequestTimeout))
}
