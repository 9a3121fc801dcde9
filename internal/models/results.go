package models

import (
	"log/slog"
	"strings"

	"github.com/myrjola/ikigai/internal/errors"
)

// ArchetypeResult is the outcome of the personality assessment.
type ArchetypeResult struct {
	Archetype      string   `json:"archetype"`
	Tagline        string   `json:"tagline,omitempty"`
	Description    string   `json:"description,omitempty"`
	Strengths      []string `json:"strengths,omitempty"`
	ShadowSide     []string `json:"shadowSide,omitempty"`
	Relationships  string   `json:"relationships,omitempty"`
	WorkStyle      string   `json:"workStyle,omitempty"`
	FamousExamples []string `json:"famousExamples,omitempty"`
	CoreWound      string   `json:"coreWound,omitempty"`
	GrowthKey      string   `json:"growthKey,omitempty"`
}

func (r *ArchetypeResult) Validate() error {
	return requireField("archetype", r.Archetype)
}

// TemperamentResult is the outcome of the temperament assessment.
type TemperamentResult struct {
	Temperament    string   `json:"temperament"`
	Tagline        string   `json:"tagline,omitempty"`
	Description    string   `json:"description,omitempty"`
	Traits         []string `json:"traits,omitempty"`
	Strengths      []string `json:"strengths,omitempty"`
	Challenges     []string `json:"challenges,omitempty"`
	CareerPaths    []string `json:"careerPaths,omitempty"`
	CompatibleWith []string `json:"compatibleWith,omitempty"`
	Advice         string   `json:"advice,omitempty"`
}

func (r *TemperamentResult) Validate() error {
	return requireField("temperament", r.Temperament)
}

// IkigaiResult is the reason-for-being statement generated from the four ikigai circles.
type IkigaiResult struct {
	Statement  string   `json:"statement"`
	Passion    string   `json:"passion,omitempty"`
	Mission    string   `json:"mission,omitempty"`
	Vocation   string   `json:"vocation,omitempty"`
	Profession string   `json:"profession,omitempty"`
	Careers    []string `json:"careers,omitempty"`
	FirstSteps []string `json:"firstSteps,omitempty"`
	Summary    string   `json:"summary,omitempty"`
}

func (r *IkigaiResult) Validate() error {
	return requireField("statement", r.Statement)
}

// SynthesisResult combines archetype, temperament and ikigai into one life blueprint.
type SynthesisResult struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	CoreIdentity string   `json:"coreIdentity,omitempty"`
	LifePurpose  string   `json:"lifePurpose,omitempty"`
	Strengths    []string `json:"strengths,omitempty"`
	GrowthAreas  []string `json:"growthAreas,omitempty"`
	ActionPlan   []string `json:"actionPlan,omitempty"`
	Mantra       string   `json:"mantra,omitempty"`
}

func (r *SynthesisResult) Validate() error {
	return requireField("title", r.Title)
}

// NicknameResult is the identity module outcome.
type NicknameResult struct {
	Nickname     string   `json:"nickname"`
	Meaning      string   `json:"meaning,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

func (r *NicknameResult) Validate() error {
	return requireField("nickname", r.Nickname)
}

func requireField(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Wrap(ErrInvalidResult, "missing field", slog.String("field", name))
	}
	return nil
}
