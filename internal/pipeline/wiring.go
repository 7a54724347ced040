package pipeline

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"git.home.luguber.info/inful/blogbuilder/internal/cache"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/publish"
	"git.home.luguber.info/inful/blogbuilder/internal/render"
	"git.home.luguber.info/inful/blogbuilder/internal/workspace"
)

// Setup carries runtime collaborators that do not come from the config file.
type Setup struct {
	// Publisher overrides the configured publish target when set.
	Publisher      publish.Publisher
	History        eventstore.Store
	Metrics        metrics.Recorder
	Observer       StateObserver
	Logger         *slog.Logger
	KeepWorkspaces bool
}

// FromConfig assembles an Orchestrator from cfg. An unavailable cache is
// logged and disabled rather than failing the setup.
func FromConfig(ctx context.Context, cfg *config.Config, s Setup) (*Orchestrator, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conv := markdown.NewConverter(MarkdownOptions(cfg))
	var ropts []render.Option
	ropts = append(ropts, render.WithLogger(logger))
	if dir := cfg.Build.TemplatesDir; dir != "" {
		ropts = append(ropts, render.WithTemplates(os.DirFS(dir)))
	}
	if dir := cfg.Build.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			ropts = append(ropts, render.WithStatic(os.DirFS(dir)))
		}
	}
	renderer, err := render.New(RenderOptions(cfg), conv, ropts...)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "failed to load templates").
			WithContext("templates_dir", cfg.Build.TemplatesDir).
			Build()
	}

	pub := s.Publisher
	if pub == nil {
		pub, err = publish.FromConfig(cfg.Publish)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid publish target").Build()
		}
	}

	c, err := cache.Open(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Warn("Render cache unavailable, building without it", logfields.Error(err))
		c = nil
	}

	return New(Deps{
		Content:    content.NewStore(cfg.Content.Dir, content.WithDrafts(cfg.Content.Drafts), content.WithLogger(logger)),
		Renderer:   renderer,
		Publisher:  pub,
		Cache:      c,
		Workspaces: workspace.NewManager(cfg.Build.WorkspaceDir).KeepWorkspaces(s.KeepWorkspaces),
		History:    s.History,
		Metrics:    s.Metrics,
		Observer:   s.Observer,
		Logger:     logger,
	}, Options{
		MainBranch: cfg.Build.MainBranch,
		LockFile:   cfg.Build.LockFile,
		CacheSalt:  CacheSalt(cfg),
	})
}

// MarkdownOptions maps the markdown config section onto converter options.
func MarkdownOptions(cfg *config.Config) markdown.Options {
	return markdown.Options{
		HighlightStyle: cfg.Markdown.HighlightStyle,
		LineNumbers:    cfg.Markdown.LineNumbers,
		Unsafe:         cfg.Markdown.Unsafe,
	}
}

// RenderOptions maps the site config section onto renderer options.
func RenderOptions(cfg *config.Config) render.Options {
	return render.Options{
		Title:         cfg.Site.Title,
		BaseURL:       cfg.Site.BaseURL,
		Description:   cfg.Site.Description,
		Author:        cfg.Site.Author,
		Language:      cfg.Site.Language,
		Permalink:     cfg.Site.Permalink,
		FeedLimit:     cfg.Site.FeedLimit,
		ExcerptLength: cfg.Markdown.ExcerptLength,
	}
}

// CacheSalt lists the settings that change converted body HTML.
func CacheSalt(cfg *config.Config) []string {
	return []string{
		"style=" + cfg.Markdown.HighlightStyle,
		"lines=" + strconv.FormatBool(cfg.Markdown.LineNumbers),
		"unsafe=" + strconv.FormatBool(cfg.Markdown.Unsafe),
	}
}

// Close releases the render cache.
func (o *Orchestrator) Close() error {
	return o.deps.Cache.Close()
}
