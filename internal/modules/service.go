package modules

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/metrics"
	"github.com/myrjola/ikigai/internal/models"
)

var (
	ErrUnknownModule   = errors.NewSentinel("unknown module")
	ErrLocked          = errors.NewSentinel("module is locked")
	ErrInProgress      = errors.NewSentinel("module completion already in progress")
	ErrNotCompletable  = errors.NewSentinel("module has no completion")
	ErrWrongSubmission = errors.NewSentinel("module does not accept this kind of submission")
)

// Completer is the AI completion client.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, userContent string) (json.RawMessage, error)
}

// Profiles is the profile aggregator.
type Profiles interface {
	Load(ctx context.Context, userID string) (models.Profile, []string, error)
	MergeAndSave(ctx context.Context, userID string, patch models.ProfilePatch) (models.Profile, error)
}

// Service completes modules: gate check, AI call, typed decode and merge into the profile.
type Service struct {
	completer Completer
	profiles  Profiles
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(completer Completer, profiles Profiles, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		completer: completer,
		profiles:  profiles,
		logger:    logger,
		metrics:   m,
		mu:        sync.Mutex{},
		inFlight:  map[string]struct{}{},
	}
}

// Profile loads the profile, treating a missing one as empty.
func (s *Service) Profile(ctx context.Context, userID string) (models.Profile, []string, error) {
	p, warnings, err := s.profiles.Load(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.Profile{UserID: userID}, nil, nil //nolint:exhaustruct // empty profile.
	}
	return p, warnings, err
}

// CheckUnlocked returns ErrLocked if the user may not open id yet.
func (s *Service) CheckUnlocked(ctx context.Context, userID string, id ID) error {
	if _, ok := Lookup(id); !ok {
		return errors.Wrap(ErrUnknownModule, "check unlocked", slog.String("module", string(id)))
	}
	p, _, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if IsLocked(id, p) {
		return errors.Wrap(ErrLocked, "check unlocked", slog.String("module", string(id)))
	}
	return nil
}

// CompleteQuiz completes a questionnaire module with the finished submission.
func (s *Service) CompleteQuiz(
	ctx context.Context, userID string, id ID, submission assessment.Submission,
) (models.Profile, error) {
	questionnaire, ok := Questionnaire(id)
	if !ok {
		return models.Profile{}, errors.Wrap(ErrWrongSubmission, "complete quiz", //nolint:exhaustruct // zero value.
			slog.String("module", string(id)))
	}
	if len(submission.Answers) != questionnaire.Len() {
		return models.Profile{}, errors.Wrap(assessment.ErrIncomplete, "complete quiz") //nolint:exhaustruct // zero value.
	}
	return s.complete(ctx, userID, id, func(models.Profile) (string, error) {
		return QuizContent(questionnaire, submission), nil
	})
}

// CompleteIkigai completes the ikigai module from the four circles.
func (s *Service) CompleteIkigai(ctx context.Context, userID string, form IkigaiForm) (models.Profile, error) {
	if err := form.Validate(); err != nil {
		return models.Profile{}, err //nolint:exhaustruct // zero value.
	}
	return s.complete(ctx, userID, Ikigai, func(models.Profile) (string, error) {
		return form.Content(), nil
	})
}

// CompleteIdentity generates the nickname.
func (s *Service) CompleteIdentity(ctx context.Context, userID string, form IdentityForm) (models.Profile, error) {
	if err := form.Validate(); err != nil {
		return models.Profile{}, err //nolint:exhaustruct // zero value.
	}
	return s.complete(ctx, userID, Identity, func(p models.Profile) (string, error) {
		return form.Content(p), nil
	})
}

// CompleteSynthesis generates the life blueprint from the prior results.
func (s *Service) CompleteSynthesis(ctx context.Context, userID string) (models.Profile, error) {
	return s.complete(ctx, userID, Synthesis, SynthesisContent)
}

func (s *Service) complete(
	ctx context.Context, userID string, id ID, content func(models.Profile) (string, error),
) (_ models.Profile, err error) {
	outcome := "ok"
	defer func() {
		if err != nil {
			outcome = outcomeOf(err)
		}
		s.metrics.ObserveModuleCompletion(string(id), outcome)
	}()

	key := userID + "/" + string(id)
	if !s.begin(key) {
		return models.Profile{}, errors.Wrap(ErrInProgress, "complete", //nolint:exhaustruct // zero value.
			slog.String("module", string(id)))
	}
	defer s.end(key)

	p, _, err := s.Profile(ctx, userID)
	if err != nil {
		return p, errors.Wrap(err, "load profile")
	}
	if IsLocked(id, p) {
		return p, errors.Wrap(ErrLocked, "complete", slog.String("module", string(id)))
	}

	userContent, err := content(p)
	if err != nil {
		return p, err
	}
	// Once issued, the completion runs to completion or failure and its result is merged even when the caller
	// has gone away or timed out.
	ctx = context.WithoutCancel(ctx)
	raw, err := s.completer.Complete(ctx, SystemInstruction(id), userContent)
	if err != nil {
		return p, err
	}
	patch, err := decodeResult(id, raw)
	if err != nil {
		return p, ai.NewError(ai.KindMalformedResponse, err)
	}

	merged, err := s.profiles.MergeAndSave(ctx, userID, patch)
	if err != nil {
		return p, errors.Wrap(err, "merge result")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "module completed", slog.String("module", string(id)))
	return merged, nil
}

// begin marks the module as in flight. Completions are not deduplicated or cancelled so a second request
// for the same module is rejected until the first one finishes.
func (s *Service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *Service) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// decodeResult decodes and validates the module's typed result.
func decodeResult(id ID, raw json.RawMessage) (models.ProfilePatch, error) {
	var patch models.ProfilePatch
	var result interface{ Validate() error }
	switch id { //nolint:exhaustive // mentors has no result.
	case Personality:
		patch.Archetype = &models.ArchetypeResult{} //nolint:exhaustruct // decoded below.
		result = patch.Archetype
	case Temperament:
		patch.Temperament = &models.TemperamentResult{} //nolint:exhaustruct // decoded below.
		result = patch.Temperament
	case Ikigai:
		patch.Ikigai = &models.IkigaiResult{} //nolint:exhaustruct // decoded below.
		result = patch.Ikigai
	case Synthesis:
		patch.Synthesis = &models.SynthesisResult{} //nolint:exhaustruct // decoded below.
		result = patch.Synthesis
	case Identity:
		patch.Nickname = &models.NicknameResult{} //nolint:exhaustruct // decoded below.
		result = patch.Nickname
	default:
		return patch, errors.Wrap(ErrNotCompletable, "decode result", slog.String("module", string(id)))
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return patch, errors.Wrap(err, "decode result", slog.String("module", string(id)))
	}
	if err := result.Validate(); err != nil {
		return patch, errors.Wrap(err, "validate result", slog.String("module", string(id)))
	}
	return patch, nil
}

func outcomeOf(err error) string {
	if kind := ai.KindOf(err); kind != "" {
		return string(kind)
	}
	switch {
	case errors.Is(err, ErrLocked):
		return "locked"
	case errors.Is(err, ErrInProgress):
		return "in_progress"
	}
	return "error"
}
