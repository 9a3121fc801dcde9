// Package modules tracks which assessment modules a user may open and completes them with the AI client.
package modules

import (
	"math"

	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/models"
)

type ID string

const (
	Personality ID = "personality"
	Temperament ID = "temperament"
	Ikigai      ID = "ikigai"
	Synthesis   ID = "synthesis"
	Identity    ID = "identity"
	Mentors     ID = "mentors"
)

// Descriptor is the static description of a module shown on the hub.
type Descriptor struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Descriptors lists the modules in hub order.
var Descriptors = []Descriptor{ //nolint:gochecknoglobals // static module table.
	{
		ID:          Personality,
		Title:       "Personality Archetype",
		Description: "Discover the archetype that shapes how you see the world.",
		Icon:        "sparkles",
		Color:       "#7c3aed",
	},
	{
		ID:          Temperament,
		Title:       "Temperament",
		Description: "Learn how your natural energy and reactions play out day to day.",
		Icon:        "flame",
		Color:       "#ea580c",
	},
	{
		ID:          Ikigai,
		Title:       "Ikigai",
		Description: "Find where what you love, what you are good at and what the world needs meet.",
		Icon:        "compass",
		Color:       "#059669",
	},
	{
		ID:          Synthesis,
		Title:       "Life Blueprint",
		Description: "Combine your archetype, temperament and ikigai into one plan.",
		Icon:        "layers",
		Color:       "#2563eb",
	},
	{
		ID:          Identity,
		Title:       "Identity",
		Description: "Receive a nickname that captures who you are.",
		Icon:        "badge",
		Color:       "#db2777",
	},
	{
		ID:          Mentors,
		Title:       "Mentors",
		Description: "Meet mentors who can help you on your path.",
		Icon:        "users",
		Color:       "#0891b2",
	},
}

// Lookup returns the descriptor of id.
func Lookup(id ID) (Descriptor, bool) {
	for _, d := range Descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false //nolint:exhaustruct // zero value.
}

// Questionnaire returns the questionnaire of quiz modules.
func Questionnaire(id ID) (assessment.Questionnaire, bool) {
	switch id { //nolint:exhaustive // only quiz modules have questionnaires.
	case Personality:
		return assessment.Personality, true
	case Temperament:
		return assessment.Temperament, true
	}
	return assessment.Questionnaire{}, false //nolint:exhaustruct // zero value.
}

// State is the lock and completion state of one module for one profile.
type State struct {
	Descriptor
	Locked    bool `json:"locked"`
	Completed bool `json:"completed"`
}

// Evaluate computes the module states from the profile. Nothing is cached.
func Evaluate(p models.Profile) []State {
	states := make([]State, 0, len(Descriptors))
	for _, d := range Descriptors {
		states = append(states, State{
			Descriptor: d,
			Locked:     locked(d.ID, p),
			Completed:  completed(d.ID, p),
		})
	}
	return states
}

// IsLocked reports whether id may not be opened yet.
func IsLocked(id ID, p models.Profile) bool {
	return locked(id, p)
}

func locked(id ID, p models.Profile) bool {
	switch id { //nolint:exhaustive // the rest are never locked.
	case Temperament:
		return p.Archetype == nil
	case Ikigai:
		return p.Temperament == nil
	case Synthesis:
		return p.Ikigai == nil
	}
	return false
}

func completed(id ID, p models.Profile) bool {
	switch id {
	case Personality:
		return p.Archetype != nil
	case Temperament:
		return p.Temperament != nil
	case Ikigai:
		return p.Ikigai != nil
	case Synthesis:
		return p.Synthesis != nil
	case Identity:
		return p.Nickname != nil
	case Mentors:
		return false
	}
	return false
}

// Progress is the completion percentage. Mentors never completes so it is left out of the denominator.
func Progress(p models.Profile) int {
	count := 0
	for _, s := range Evaluate(p) {
		if s.Completed {
			count++
		}
	}
	return int(math.Round(float64(count) * 100 / float64(len(Descriptors)-1))) //nolint:mnd // percent.
}
