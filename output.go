package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.yaml.in/yaml/v3"

	"bedtime_storyteller/generator"
	"bedtime_storyteller/publisher"
)

const lineWidth = 80

// storyReport is what tell prints in json/yaml mode.
type storyReport struct {
	generator.Result `yaml:",inline"`
	Usage            generator.Usage `json:"usage" yaml:"usage"`
}

func checkFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}

// encode writes v as json or yaml.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return checkFormat(format)
}

func printStory(w io.Writer, format string, res generator.Result, usage generator.Usage, outDir string) error {
	if format != "text" {
		return encode(w, format, storyReport{Result: res, Usage: usage})
	}

	fmt.Fprintf(w, "\n%s\n\n", wrapText(res.Story, lineWidth))
	fmt.Fprintf(w, "%s · score %d/10 · %s after %d attempt(s)\n", res.ReadingTime, res.Score, res.Outcome, res.Attempts)
	if res.ChallengeWords != "" {
		fmt.Fprintf(w, "\nFor Little Learners:\n%s\n", res.ChallengeWords)
	}
	if res.Artifact != "" {
		fmt.Fprintf(w, "\n📖 Story saved to %s (Open it in your browser!)\n", filepath.Join(outDir, res.Artifact))
	}
	fmt.Fprintf(w, "\nToken usage: input=%d output=%d\n", usage.InputTokens, usage.OutputTokens)
	return nil
}

func printLibrary(w io.Writer, format string, entries []publisher.Entry) error {
	if format != "text" {
		if entries == nil {
			entries = []publisher.Entry{}
		}
		return encode(w, format, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No stories yet.")
		return nil
	}
	for _, e := range entries {
		title := runewidth.FillRight(runewidth.Truncate(e.Title, 40, "…"), 40)
		fmt.Fprintf(w, "%s  %s  %2d/10  %-11s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), title, e.Score, e.ReadingTime, e.File)
	}
	return nil
}

// wrapText breaks lines at word boundaries so no line is wider than width
// terminal columns. Existing line breaks are kept; a single word wider than
// width gets a line to itself.
func wrapText(s string, width int) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	col := 0
	for _, word := range words {
		w := runewidth.StringWidth(word)
		if col > 0 && col+1+w > width {
			b.WriteByte('\n')
			col = 0
		} else if col > 0 {
			b.WriteByte(' ')
			col++
		}
		b.WriteString(word)
		col += w
	}
	return b.String()
}
