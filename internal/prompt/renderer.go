package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
)

const templateExtension = ".tmpl"

var blankLineRuns = regexp.MustCompile(`\n{3,}`)

// Renderer loads prompt templates from a directory at startup and renders
// them against per-request variables. Listing reads the directory on every
// call so operators can see newly dropped files without a restart.
type Renderer struct {
	dir       string
	templates *template.Template
}

func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create templates dir: %w", err)
	}

	root := template.New("prompts")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExtension) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		if _, err := root.New(entry.Name()).Parse(string(raw)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", entry.Name(), err)
		}
	}

	return &Renderer{dir: dir, templates: root}, nil
}

// Render executes the named template and collapses runs of blank lines left
// behind by unset optional sections.
func (r *Renderer) Render(name string, vars map[string]any) (string, error) {
	tmpl := r.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return blankLineRuns.ReplaceAllString(sb.String(), "\n\n"), nil
}

func (r *Renderer) Names() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExtension) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
