package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/frontmatter"
)

// NewCmd implements the 'new' command.
type NewCmd struct {
	Title string   `arg:"" help:"Article title"`
	Tags  []string `short:"t" sep:"," help:"Comma separated tags"`
	Date  string   `help:"Publish date as YYYY-MM-DD (default: today)" placeholder:"DATE"`
	Draft bool     `help:"Mark the article as a draft"`
}

// Run writes a new article skeleton into the content directory.
func (n *NewCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	slug := content.Slugify(n.Title)
	if slug == "" {
		return ferrors.ValidationError("title must contain at least one letter or digit").
			WithContext("title", n.Title).
			Build()
	}
	date := g.Now()
	if n.Date != "" {
		date, err = time.Parse(time.DateOnly, n.Date)
		if err != nil {
			return ferrors.ValidationError("date must be formatted YYYY-MM-DD").
				WithContext("date", n.Date).
				Build()
		}
	}

	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	fields := map[string]any{
		"title": n.Title,
		"date":  date,
	}
	if len(n.Tags) > 0 {
		fields["tags"] = n.Tags
	}
	if n.Draft {
		fields["published"] = false
	}
	data, err := frontmatter.Compose(fields, []byte("\n"), "\n")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to compose front matter").Build()
	}

	name := fmt.Sprintf("%s-%s.md", date.Format(time.DateOnly), slug)
	path := filepath.Join(cfg.Content.Dir, name)
	if err := os.MkdirAll(cfg.Content.Dir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create content directory").
			WithContext("dir", cfg.Content.Dir).
			Build()
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ferrors.ValidationError(fmt.Sprintf("article already exists: %s", path)).
				WithContext("path", path).
				Build()
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create article").
			WithContext("path", path).
			Build()
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write article").Build()
	}
	if err := f.Close(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write article").Build()
	}
	_, _ = fmt.Fprintf(g.Stdout, "Created %s\n", path)
	return nil
}
