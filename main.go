package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bedtime_storyteller/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storyteller",
	Short: "AI bedtime stories for young readers",
	Long: `storyteller plans, writes and polishes short bedtime stories with an
LLM. Each story is outlined, drafted, scored by a judge and revised until it
passes, then saved as a printable HTML page with a few vocabulary words.

Run "storyteller serve" for the web page or "storyteller tell" for one story
in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is fine; real environment variables still apply
		_ = godotenv.Load(".env")
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.json (default: ./config/config.json or ./config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable info logs")
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
