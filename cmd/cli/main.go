package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/myrjola/ikigai/cmd/cli/admin"
	"github.com/myrjola/ikigai/cmd/cli/questionnaire"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddGroup(questionnaire.Group)
	rootCmd.AddCommand(questionnaire.Questionnaire, questionnaire.Complete)
	rootCmd.AddGroup(admin.Group)
	rootCmd.AddCommand(admin.Admin)
}

var rootCmd = &cobra.Command{
	Use:  "ikigai-cli",
	Long: `Command line utilities for Ikigai, configured with the same IKIGAI_* environment as the web server.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// A missing .env file is fine.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	},
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1) //nolint:gocritic // stop is called above.
	}
}
