package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"bedtime_storyteller/generator"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"repl"},
	Short:   "Tell stories one after another from a prompt",
	Long: `Interactive reads story topics line by line. Settings carry over
between stories:

  :name <name>   set the hero's name (":name" alone clears it)
  :age <n>       set the reader's age
  :quit          leave (Ctrl-D works too)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg, true, log.Default())
		if err != nil {
			return err
		}
		defer a.Close()

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "topic> ",
			HistoryFile:     historyFile(),
			InterruptPrompt: "^C",
			EOFPrompt:       "bye",
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		s := &replState{age: generator.DefaultAge}
		out := rl.Stdout()
		fmt.Fprintln(out, "Type a story topic, or :quit to leave.")
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			topic, quit := s.apply(out, line)
			if quit {
				return nil
			}
			if topic == "" {
				continue
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			res, err := a.pipeline.Run(ctx, generator.Request{Topic: topic, Name: s.name, Age: s.age})
			stop()
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			if err := printStory(out, "text", res, a.usage.Snapshot(), cfg.OutputDir); err != nil {
				return err
			}
		}
	},
}

// replState is the hero name and age carried between stories.
type replState struct {
	name string
	age  int
}

// apply handles one input line. It returns the topic to tell, if any, and
// whether the session should end.
func (s *replState) apply(out io.Writer, line string) (topic string, quit bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return line, false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":quit", ":q", ":exit":
		return "", true
	case ":name":
		s.name = arg
		if arg == "" {
			fmt.Fprintln(out, "hero name cleared")
		} else {
			fmt.Fprintf(out, "hero name: %s\n", arg)
		}
	case ":age":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			fmt.Fprintf(out, "age must be a positive number, got %q\n", arg)
			return "", false
		}
		s.age = n
		fmt.Fprintf(out, "reader age: %d\n", n)
	default:
		fmt.Fprintf(out, "unknown command %s (try :name, :age or :quit)\n", cmd)
	}
	return "", false
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "storyteller")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
