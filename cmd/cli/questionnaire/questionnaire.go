package questionnaire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/myrjola/ikigai/internal/ai"
	"github.com/myrjola/ikigai/internal/assessment"
	"github.com/myrjola/ikigai/internal/envstruct"
	"github.com/myrjola/ikigai/internal/errors"
	"github.com/myrjola/ikigai/internal/localstore"
	"github.com/myrjola/ikigai/internal/logging"
	"github.com/myrjola/ikigai/internal/models"
	"github.com/myrjola/ikigai/internal/modules"
	"github.com/myrjola/ikigai/internal/profile"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "questionnaire",
	Title: "Assessments",
}

func init() {
	Questionnaire.AddCommand(list, show)
	Complete.Flags().String("answers", "", "comma separated option numbers 1-4, one per question")
	Complete.Flags().String("note", "", "additional thoughts sent with the answers")
	Complete.Flags().String("input", "", "JSON form for ikigai and identity, - reads stdin")
}

var Questionnaire = &cobra.Command{
	Use:     "questionnaire",
	GroupID: "questionnaire",
	Short:   "Inspect the questionnaires",
}

var list = &cobra.Command{
	Use:   "list",
	Short: "List the modules and their questionnaires",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		for _, d := range modules.Descriptors {
			kind := "form"
			if q, ok := modules.Questionnaire(d.ID); ok {
				kind = fmt.Sprintf("%d questions", q.Len())
			}
			if d.ID == modules.Mentors {
				kind = "roster"
			}
			_, _ = fmt.Fprintf(out, "%-12s %-32s %s\n", d.ID, d.Title, kind)
		}
	},
}

var show = &cobra.Command{
	Use:   "show [module]",
	Short: "Print the questions of a questionnaire module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, ok := modules.Questionnaire(modules.ID(args[0]))
		if !ok {
			return errors.New("not a questionnaire module", slog.String("module", args[0]))
		}
		out := cmd.OutOrStdout()
		for _, question := range q.Questions {
			_, _ = fmt.Fprintf(out, "%d. %s\n", question.ID, question.Prompt)
			for i, option := range question.Options {
				_, _ = fmt.Fprintf(out, "   %d) %s\n", i+1, option)
			}
		}
		return nil
	},
}

type aiConfig struct {
	Provider   string `env:"IKIGAI_AI_PROVIDER" envDefault:"gemini"`
	APIKey     string `env:"IKIGAI_AI_API_KEY" envDefault:""`
	Model      string `env:"IKIGAI_AI_MODEL" envDefault:""`
	BaseURL    string `env:"IKIGAI_AI_BASE_URL" envDefault:""`
	RepairJSON bool   `env:"IKIGAI_AI_REPAIR_JSON" envDefault:"false"`
}

// Complete runs one module completion against the configured AI provider and prints the updated profile.
// Prerequisite results are not available from the terminal so only modules unlocked for a new user work.
var Complete = &cobra.Command{
	Use:     "complete [module]",
	GroupID: "questionnaire",
	Short:   "Complete a module from the terminal",
	Long: `Completes personality with --answers or identity with --input using the AI provider configured with
IKIGAI_AI_PROVIDER and IKIGAI_AI_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger := logging.NewLogger(cmd.ErrOrStderr(), slog.LevelInfo)

		var cfg aiConfig
		if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
			return errors.Wrap(err, "populate config")
		}
		backend, err := ai.NewBackend(ctx, ai.ProviderConfig{
			Provider: cfg.Provider,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			BaseURL:  cfg.BaseURL,
		})
		if err != nil {
			return errors.Wrap(err, "new AI backend")
		}
		client := ai.NewClient(backend, ai.Options{ //nolint:exhaustruct // default sampling.
			Provider:   cfg.Provider,
			RepairJSON: cfg.RepairJSON,
		}, logger)

		p, err := complete(ctx, cmd, client, logger, modules.ID(args[0]))
		if err != nil {
			var aiErr *ai.Error
			if errors.As(err, &aiErr) {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), aiErr.Message())
			}
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func complete(
	ctx context.Context, cmd *cobra.Command, completer modules.Completer, logger *slog.Logger, id modules.ID,
) (models.Profile, error) {
	store, err := localstore.Open("", logger)
	if err != nil {
		return models.Profile{}, err //nolint:exhaustruct // zero value.
	}
	aggregator, err := profile.New(localstore.NewProfileStore(store), profile.Options{}, logger) //nolint:exhaustruct // defaults.
	if err != nil {
		return models.Profile{}, err //nolint:exhaustruct // zero value.
	}
	defer aggregator.Close()
	svc := modules.NewService(completer, aggregator, logger, nil)
	const userID = "cli"

	if q, ok := modules.Questionnaire(id); ok {
		raw, _ := cmd.Flags().GetString("answers")
		answers, parseErr := ParseAnswers(q, raw)
		if parseErr != nil {
			return models.Profile{}, parseErr //nolint:exhaustruct // zero value.
		}
		note, _ := cmd.Flags().GetString("note")
		return svc.CompleteQuiz(ctx, userID, id, assessment.Submission{Answers: answers, Note: note})
	}

	input, _ := cmd.Flags().GetString("input")
	switch id { //nolint:exhaustive // other modules need earlier results.
	case modules.Identity:
		var form modules.IdentityForm
		if err = readForm(cmd.InOrStdin(), input, &form); err != nil {
			return models.Profile{}, err //nolint:exhaustruct // zero value.
		}
		return svc.CompleteIdentity(ctx, userID, form)
	default:
		return models.Profile{}, errors.Wrap(modules.ErrLocked, "complete", //nolint:exhaustruct // zero value.
			slog.String("module", string(id)))
	}
}

// ParseAnswers maps 1-based option numbers to the option texts of q.
func ParseAnswers(q assessment.Questionnaire, raw string) ([]string, error) {
	fields := strings.Split(raw, ",")
	if strings.TrimSpace(raw) == "" || len(fields) != q.Len() {
		return nil, errors.Wrap(assessment.ErrIncomplete, "parse answers",
			slog.Int("want", q.Len()), slog.Int("got", len(fields)))
	}
	answers := make([]string, len(fields))
	for i, field := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 || n > len(q.Questions[i].Options) {
			return nil, errors.Wrap(assessment.ErrInvalidOption, "parse answers", slog.Int("question", i+1),
				slog.String("answer", field))
		}
		answers[i] = q.Questions[i].Options[n-1]
	}
	return answers, nil
}

func readForm(stdin io.Reader, input string, v any) error {
	var (
		r   io.Reader
		err error
	)
	switch input {
	case "":
		return errors.New("--input is required for form modules")
	case "-":
		r = stdin
	default:
		var f *os.File
		if f, err = os.Open(input); err != nil {
			return errors.Wrap(err, "open input")
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}
	if err = json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "decode input")
	}
	return nil
}
