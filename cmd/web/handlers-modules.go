package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/contexthelpers"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/modules"
)

func quizSessionKey(id modules.ID) string {
	return "quiz:" + string(id)
}

type quizResponse struct {
	Module      modules.ID           `json:"module"`
	Step        int                  `json:"step"`
	Total       int                  `json:"total"`
	Question    *assessment.Question `json:"question,omitempty"`
	Answer      string               `json:"answer,omitempty"`
	AtFinalStep bool                 `json:"atFinalStep"`
	Note        string               `json:"note,omitempty"`
}

func newQuizResponse(id modules.ID, quiz *assessment.Quiz) quizResponse {
	resp := quizResponse{
		Module:      id,
		Step:        quiz.Step(),
		Total:       quiz.Questionnaire().Len(),
		Question:    nil,
		Answer:      "",
		AtFinalStep: quiz.AtFinalStep(),
		Note:        quiz.Note(),
	}
	if q, ok := quiz.Current(); ok {
		resp.Question = &q
		resp.Answer = quiz.Answer(quiz.Step())
	}
	return resp
}

func (app *application) listModules(w http.ResponseWriter, r *http.Request) {
	p, _, err := app.modules.Profile(r.Context(), contexthelpers.AuthenticatedUserID(r.Context()))
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, modules.Evaluate(p))
}

// unlockedQuestionnaire resolves the module path value to an unlocked questionnaire module.
func (app *application) unlockedQuestionnaire(r *http.Request) (modules.ID, assessment.Questionnaire, error) {
	id := modules.ID(r.PathValue("module"))
	if err := app.modules.CheckUnlocked(r.Context(), contexthelpers.AuthenticatedUserID(r.Context()), id); err != nil {
		return id, assessment.Questionnaire{}, err //nolint:exhaustruct // zero value.
	}
	questionnaire, ok := modules.Questionnaire(id)
	if !ok {
		return id, questionnaire, errors.Wrap(modules.ErrWrongSubmission, "not a questionnaire",
			slog.String("module", string(id)))
	}
	return id, questionnaire, nil
}

func (app *application) questions(w http.ResponseWriter, r *http.Request) {
	_, questionnaire, err := app.unlockedQuestionnaire(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, questionnaire)
}

// loadQuiz restores the wizard from the session. A missing or stale state starts over.
func (app *application) loadQuiz(ctx context.Context, id modules.ID, questionnaire assessment.Questionnaire) *assessment.Quiz {
	state, ok := app.sessionManager.Get(ctx, quizSessionKey(id)).(assessment.State)
	if !ok {
		return assessment.New(questionnaire)
	}
	quiz, err := assessment.Restore(questionnaire, state)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "discarding quiz state", errors.SlogError(err))
		return assessment.New(questionnaire)
	}
	return quiz
}

func (app *application) saveQuiz(ctx context.Context, id modules.ID, quiz *assessment.Quiz) {
	app.sessionManager.Put(ctx, quizSessionKey(id), quiz.State())
}

// startQuiz begins a fresh run, discarding earlier answers.
func (app *application) startQuiz(w http.ResponseWriter, r *http.Request) {
	id, questionnaire, err := app.unlockedQuestionnaire(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	quiz := assessment.New(questionnaire)
	app.saveQuiz(r.Context(), id, quiz)
	app.writeJSON(w, r, http.StatusOK, newQuizResponse(id, quiz))
}

func (app *application) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, questionnaire, err := app.unlockedQuestionnaire(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newQuizResponse(id, app.loadQuiz(r.Context(), id, questionnaire)))
}

// updateQuiz applies a transition to the stored quiz and returns the new state.
func (app *application) updateQuiz(w http.ResponseWriter, r *http.Request, transition func(*assessment.Quiz) error) {
	id, questionnaire, err := app.unlockedQuestionnaire(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	quiz := app.loadQuiz(r.Context(), id, questionnaire)
	if err = transition(quiz); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.saveQuiz(r.Context(), id, quiz)
	app.writeJSON(w, r, http.StatusOK, newQuizResponse(id, quiz))
}

func (app *application) answerQuiz(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Option string `json:"option"`
	}
	if err := readJSON(r, &form); err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.updateQuiz(w, r, func(quiz *assessment.Quiz) error {
		return quiz.Select(form.Option)
	})
}

func (app *application) previousQuestion(w http.ResponseWriter, r *http.Request) {
	app.updateQuiz(w, r, func(quiz *assessment.Quiz) error {
		return quiz.Previous()
	})
}

func (app *application) backFromFinalStep(w http.ResponseWriter, r *http.Request) {
	app.updateQuiz(w, r, func(quiz *assessment.Quiz) error {
		return quiz.Back()
	})
}

// submitQuiz completes the module with the stored answers. The quiz is kept on failure so that the user can retry.
func (app *application) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Note *string `json:"note"`
	}
	if r.ContentLength != 0 {
		if err := readJSON(r, &form); err != nil {
			app.errorResponse(w, r, err)
			return
		}
	}
	id, questionnaire, err := app.unlockedQuestionnaire(r)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	ctx := r.Context()
	userID := contexthelpers.AuthenticatedUserID(ctx)
	quiz := app.loadQuiz(ctx, id, questionnaire)
	if form.Note != nil {
		if err = quiz.SetNote(*form.Note); err != nil {
			app.errorResponse(w, r, err)
			return
		}
		app.saveQuiz(ctx, id, quiz)
	}

	var p models.Profile
	err = quiz.Submit(ctx, func(ctx context.Context, submission assessment.Submission) error {
		var completeErr error
		p, completeErr = app.modules.CompleteQuiz(ctx, userID, id, submission)
		return completeErr
	})
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.sessionManager.Remove(ctx, quizSessionKey(id))
	app.writeJSON(w, r, http.StatusOK, newProfileResponse(p, nil))
}

// submitForm completes the form based modules.
func (app *application) submitForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.AuthenticatedUserID(ctx)
	id := modules.ID(r.PathValue("module"))

	var (
		p   models.Profile
		err error
	)
	switch id { //nolint:exhaustive // the quiz modules have their own endpoints.
	case modules.Ikigai:
		var form modules.IkigaiForm
		if err = readJSON(r, &form); err == nil {
			p, err = app.modules.CompleteIkigai(ctx, userID, form)
		}
	case modules.Identity:
		var form modules.IdentityForm
		if err = readJSON(r, &form); err == nil {
			p, err = app.modules.CompleteIdentity(ctx, userID, form)
		}
	case modules.Synthesis:
		// The synthesis takes no input besides the profile. An empty JSON object is accepted.
		var form json.RawMessage
		if r.ContentLength != 0 {
			err = readJSON(r, &form)
		}
		if err == nil {
			p, err = app.modules.CompleteSynthesis(ctx, userID)
		}
	default:
		if _, ok := modules.Lookup(id); !ok {
			err = errors.Wrap(modules.ErrUnknownModule, "submit form", slog.String("module", string(id)))
		} else {
			err = errors.Wrap(modules.ErrWrongSubmission, "submit form", slog.String("module", string(id)))
		}
	}
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newProfileResponse(p, nil))
}
