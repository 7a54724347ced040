package render

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"time"
)

//go:embed theme/*.html theme/*.css
var themeFS embed.FS

const (
	tmplBase  = "base.html"
	tmplIndex = "index.html"
	tmplPost  = "post.html"
	tmplTag   = "tag.html"
	tmplTags  = "tags.html"
)

var pageTemplates = []string{tmplIndex, tmplPost, tmplTag, tmplTags}

// templateSet holds one executable template per page kind, each sharing base.html.
type templateSet map[string]*template.Template

// readTheme returns name from overrides when present, else the embedded theme.
func readTheme(overrides fs.FS, name string) ([]byte, error) {
	if overrides != nil {
		b, err := fs.ReadFile(overrides, name)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return themeFS.ReadFile("theme/" + name)
}

func loadTemplates(overrides fs.FS, funcs template.FuncMap) (templateSet, error) {
	baseSrc, err := readTheme(overrides, tmplBase)
	if err != nil {
		return nil, &TemplateError{Template: tmplBase, Err: err}
	}
	base, err := template.New(tmplBase).Funcs(funcs).Parse(string(baseSrc))
	if err != nil {
		return nil, &TemplateError{Template: tmplBase, Err: err}
	}

	set := make(templateSet, len(pageTemplates))
	for _, name := range pageTemplates {
		src, err := readTheme(overrides, name)
		if err != nil {
			return nil, &TemplateError{Template: name, Err: err}
		}
		t, err := base.Clone()
		if err != nil {
			return nil, &TemplateError{Template: name, Err: err}
		}
		if _, err := t.New(name).Parse(string(src)); err != nil {
			return nil, &TemplateError{Template: name, Err: err}
		}
		set[name] = t
	}
	return set, nil
}

func formatDate(t time.Time) string { return t.Format("January 2, 2006") }

func isoDate(t time.Time) string { return t.Format(time.RFC3339) }
