package modules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/models"
)

var ErrInvalidForm = errors.NewSentinel("invalid form")

const jsonOnly = "Respond with a single JSON object and nothing else. Use exactly the keys listed below."

var systemInstructions = map[ID]string{ //nolint:gochecknoglobals // prompt table.
	Personality: `You are an insightful personality psychologist. Based on the user's answers to a personality
questionnaire, identify their dominant archetype (for example The Sage, The Explorer, The Creator, The Caregiver,
The Hero, The Rebel, The Magician, The Lover, The Jester, The Everyman, The Ruler or The Innocent).
` + jsonOnly + `
{"archetype": string, "tagline": string, "description": string, "strengths": [string], "shadowSide": [string],
"relationships": string, "workStyle": string, "famousExamples": [string], "coreWound": string, "growthKey": string}`,

	Temperament: `You are an expert in the four classical temperaments (sanguine, choleric, melancholic and
phlegmatic). Based on the user's answers, determine their dominant temperament, mentioning a secondary one in the
description when relevant.
` + jsonOnly + `
{"temperament": string, "tagline": string, "description": string, "traits": [string], "strengths": [string],
"challenges": [string], "careerPaths": [string], "compatibleWith": [string], "advice": string}`,

	Ikigai: `You are a life coach specialising in the Japanese concept of ikigai. Combine what the user loves, what
they are good at, what the world needs and what they can be paid for into a clear reason for being.
` + jsonOnly + `
{"statement": string, "passion": string, "mission": string, "vocation": string, "profession": string,
"careers": [string], "firstSteps": [string], "summary": string}`,

	Synthesis: `You are a holistic life strategist. Synthesise the user's personality archetype, temperament and
ikigai into one coherent life blueprint with concrete next steps.
` + jsonOnly + `
{"title": string, "summary": string, "coreIdentity": string, "lifePurpose": string, "strengths": [string],
"growthAreas": [string], "actionPlan": [string], "mantra": string}`,

	Identity: `You are a creative naming expert. Create a memorable, positive nickname that captures the user's
character, using what they tell you about themselves and any assessment results provided.
` + jsonOnly + `
{"nickname": string, "meaning": string, "alternatives": [string], "explanation": string}`,
}

// SystemInstruction returns the role and schema description sent with every completion of id.
func SystemInstruction(id ID) string {
	return systemInstructions[id]
}

// QuizContent serialises the answers of a finished questionnaire.
func QuizContent(questionnaire assessment.Questionnaire, submission assessment.Submission) string {
	var b strings.Builder
	for i, q := range questionnaire.Questions {
		fmt.Fprintf(&b, "Question %d: %s\nAnswer: %s\n\n", q.ID, q.Prompt, submission.Answers[i])
	}
	if note := strings.TrimSpace(submission.Note); note != "" {
		fmt.Fprintf(&b, "Additional thoughts from the user: %s\n", note)
	}
	return b.String()
}

// IkigaiForm holds the four ikigai circles.
type IkigaiForm struct {
	Love       string `json:"love"`
	GoodAt     string `json:"goodAt"`
	WorldNeeds string `json:"worldNeeds"`
	PaidFor    string `json:"paidFor"`
}

func (f IkigaiForm) Validate() error {
	return requireFields(map[string]string{
		"love":       f.Love,
		"goodAt":     f.GoodAt,
		"worldNeeds": f.WorldNeeds,
		"paidFor":    f.PaidFor,
	})
}

func (f IkigaiForm) Content() string {
	return fmt.Sprintf("What I love: %s\nWhat I am good at: %s\nWhat the world needs: %s\nWhat I can be paid for: %s\n",
		strings.TrimSpace(f.Love), strings.TrimSpace(f.GoodAt), strings.TrimSpace(f.WorldNeeds),
		strings.TrimSpace(f.PaidFor))
}

// IdentityForm describes the user in their own words for the nickname.
type IdentityForm struct {
	Traits   string `json:"traits"`
	Passions string `json:"passions"`
	Values   string `json:"values"`
	Vibe     string `json:"vibe"`
}

func (f IdentityForm) Validate() error {
	return requireFields(map[string]string{"traits": f.Traits})
}

// Content includes the completed results so the nickname can build on them.
func (f IdentityForm) Content(p models.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "How I describe myself: %s\n", strings.TrimSpace(f.Traits))
	if f.Passions != "" {
		fmt.Fprintf(&b, "My passions: %s\n", strings.TrimSpace(f.Passions))
	}
	if f.Values != "" {
		fmt.Fprintf(&b, "What I value: %s\n", strings.TrimSpace(f.Values))
	}
	if f.Vibe != "" {
		fmt.Fprintf(&b, "The vibe I want my nickname to have: %s\n", strings.TrimSpace(f.Vibe))
	}
	if p.Archetype != nil {
		fmt.Fprintf(&b, "My archetype: %s\n", p.Archetype.Archetype)
	}
	if p.Temperament != nil {
		fmt.Fprintf(&b, "My temperament: %s\n", p.Temperament.Temperament)
	}
	return b.String()
}

// SynthesisContent serialises the prior results and the free-form profile fields.
func SynthesisContent(p models.Profile) (string, error) {
	if p.Archetype == nil || p.Temperament == nil || p.Ikigai == nil {
		return "", errors.Wrap(ErrInvalidForm, "synthesis needs archetype, temperament and ikigai")
	}
	input := struct {
		Archetype   *models.ArchetypeResult   `json:"archetype"`
		Temperament *models.TemperamentResult `json:"temperament"`
		Ikigai      *models.IkigaiResult      `json:"ikigai"`
		Age         int                       `json:"age,omitempty"`
		Region      string                    `json:"region,omitempty"`
		Principles  string                    `json:"principles,omitempty"`
		Likes       string                    `json:"likes,omitempty"`
		Dislikes    string                    `json:"dislikes,omitempty"`
	}{
		Archetype:   p.Archetype,
		Temperament: p.Temperament,
		Ikigai:      p.Ikigai,
		Age:         p.Age,
		Region:      p.Region,
		Principles:  p.Principles,
		Likes:       p.Likes,
		Dislikes:    p.Dislikes,
	}
	encoded, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode synthesis input")
	}
	return "Here are my assessment results:\n" + string(encoded), nil
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Wrap(ErrInvalidForm, "missing fields", slog.Any("fields", missing))
	}
	return nil
}
