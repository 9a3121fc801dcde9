package questionnaire_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/myrjola/ikigai/cmd/cli/questionnaire"
	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswers(t *testing.T) {
	q := assessment.Personality
	all := strings.TrimSuffix(strings.Repeat("2,", q.Len()), ",")
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "ok", raw: all, wantErr: nil},
		{name: "empty", raw: "", wantErr: assessment.ErrIncomplete},
		{name: "too few", raw: "1,2", wantErr: assessment.ErrIncomplete},
		{name: "out of range", raw: strings.Replace(all, "2", "5", 1), wantErr: assessment.ErrInvalidOption},
		{name: "not a number", raw: strings.Replace(all, "2", "b", 1), wantErr: assessment.ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, err := questionnaire.ParseAnswers(q, tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, answers, q.Len())
			for i, answer := range answers {
				assert.Equal(t, q.Questions[i].Options[1], answer)
			}
		})
	}
}

func TestQuestionnaireCommands(t *testing.T) {
	var out bytes.Buffer
	cmd := questionnaire.Questionnaire
	cmd.SetOut(&out)

	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "personality")
	assert.Contains(t, out.String(), "12 questions")

	out.Reset()
	cmd.SetArgs([]string{"show", "temperament"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "12. ")
	assert.Contains(t, out.String(), "   4) ")

	cmd.SetArgs([]string{"show", "ikigai"})
	require.Error(t, cmd.Execute())
}
