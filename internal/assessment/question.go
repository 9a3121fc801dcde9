// Package assessment drives a user through a fixed questionnaire one question at a time.
package assessment

// Question is immutable and defined at build time.
type Question struct {
	ID      int       `json:"id"`
	Prompt  string    `json:"prompt"`
	Options [4]string `json:"options"`
}

// HasOption reports whether option is one of the declared options.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// Questionnaire is an ordered list of questions.
type Questionnaire struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

func (q Questionnaire) Len() int {
	return len(q.Questions)
}
