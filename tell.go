package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bedtime_storyteller/generator"
)

var tellCmd = &cobra.Command{
	Use:   "tell",
	Short: "Write one bedtime story and print it",
	Long: `Tell runs the full loop for a single story: outline, draft, judge and
revise, then adds reading time and challenge words. The story is saved as an
HTML page in output_dir unless --no-save is given.`,
	Example: `  storyteller tell --topic "A brave toaster in space" --name Milo --age 6
  storyteller tell --topic "owls" --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		name, _ := cmd.Flags().GetString("name")
		age, _ := cmd.Flags().GetInt("age")
		format, _ := cmd.Flags().GetString("format")
		noSave, _ := cmd.Flags().GetBool("no-save")

		if topic == "" {
			return errors.New("--topic is required")
		}
		if err := checkFormat(format); err != nil {
			return err
		}

		a, err := buildApp(cfg, !noSave, log.Default())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf("[cli] telling story topic=%q age=%d", topic, age)
		res, err := a.pipeline.Run(ctx, generator.Request{Topic: topic, Name: name, Age: age})
		if err != nil {
			return err
		}
		return printStory(cmd.OutOrStdout(), format, res, a.usage.Snapshot(), cfg.OutputDir)
	},
}

func init() {
	tellCmd.Flags().String("topic", "", "what the story is about")
	tellCmd.Flags().String("name", "", "main character's name (optional)")
	tellCmd.Flags().Int("age", generator.DefaultAge, "reader's age")
	tellCmd.Flags().String("format", "text", "output format: text, json or yaml")
	tellCmd.Flags().Bool("no-save", false, "do not write the HTML page or catalog entry")

	rootCmd.AddCommand(tellCmd)
}
