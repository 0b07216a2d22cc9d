package publisher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bedtime_storyteller/generator"
)

const excerptLimit = 160

// Publisher writes finished stories as standalone HTML pages ("paperback"
// edition) and records them in the catalog when one is configured.
type Publisher struct {
	dir     string
	catalog *Catalog
	md      goldmark.Markdown
	verbose bool
	logger  *log.Logger
}

// New creates a Publisher writing into dir. catalog may be nil.
func New(dir string, catalog *Catalog, verbose bool, logger *log.Logger) (*Publisher, error) {
	if dir == "" {
		return nil, errors.New("output directory is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{
		dir:     dir,
		catalog: catalog,
		md:      goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps())),
		verbose: verbose,
		logger:  logger,
	}, nil
}

func (p *Publisher) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[INFO] "+format, args...)
}

// Dir is where pages are written.
func (p *Publisher) Dir() string {
	return p.dir
}

// Save renders a and writes it to <dir>/<sanitized title>.html, replacing any
// earlier story with the same title. It returns the file name.
func (p *Publisher) Save(ctx context.Context, a generator.Artifact) (string, error) {
	if strings.TrimSpace(a.Story) == "" {
		return "", errors.New("story text is empty")
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	page, err := p.render(a)
	if err != nil {
		return "", err
	}

	name := FileName(a.Title)
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	p.logger.Printf("[publish] story saved to %s", path)

	if p.catalog != nil {
		entry, err := p.catalog.Record(ctx, Entry{
			Title:       a.Title,
			File:        name,
			Excerpt:     generator.Excerpt(a.Story, excerptLimit),
			Age:         a.Age,
			ReadingTime: a.ReadingTime,
			Score:       a.Score,
			Outcome:     string(a.Outcome),
		})
		if err != nil {
			// the page is already on disk; a missing catalog row is not worth failing over
			p.logger.Printf("[publish] catalog: %v", err)
		} else {
			p.infof("Catalog entry %s for %q", entry.ID, entry.Title)
		}
	}
	return name, nil
}

type pageData struct {
	Title          string
	Story          template.HTML
	ChallengeWords string
	ReadingTime    string
}

func (p *Publisher) render(a generator.Artifact) ([]byte, error) {
	body, err := p.mdToHTML(a.Story)
	if err != nil {
		return nil, fmt.Errorf("rendering story: %w", err)
	}
	p.infof("Converted story Markdown to HTML")

	var buf bytes.Buffer
	err = paperback.Execute(&buf, pageData{
		Title: cases.Title(language.English).String(a.Title),
		// goldmark escapes raw HTML in the story unless WithUnsafe is set
		Story:          template.HTML(body),
		ChallengeWords: a.ChallengeWords,
		ReadingTime:    a.ReadingTime,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Publisher) mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FileName derives the page file name from a title: lowercased, spaces
// become underscores, anything outside [a-z0-9_-] is dropped.
func FileName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r == ' ':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), "_-")
	if name == "" {
		name = "story"
	}
	return name + ".html"
}

var paperback = template.Must(template.New("paperback").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { font-family: 'Georgia', serif; padding: 40px; background: #fdf6e3; color: #333; max-width: 800px; margin: auto; line-height: 1.6; }
h1 { text-align: center; color: #2c3e50; font-size: 3em; margin-bottom: 20px; }
.meta { text-align: center; color: #888; }
.story { font-size: 1.2em; }
.extras { margin-top: 40px; padding: 20px; background: #eee8d5; border-radius: 10px; }
.footer { text-align: center; margin-top: 50px; font-size: 0.8em; color: #888; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .ReadingTime}}<p class="meta">{{.ReadingTime}}</p>{{end}}
<div class="story">{{.Story}}</div>
{{if .ChallengeWords}}<div class="extras">
<h3>For Little Learners</h3>
<pre>{{.ChallengeWords}}</pre>
</div>{{end}}
<div class="footer">Generated by AI Bedtime Storyteller</div>
</body>
</html>
`))
