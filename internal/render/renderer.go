// Package render turns a document set into a static HTML site tree.
//
// Rendering is pure: the output depends only on the documents, the templates,
// the static files and Options. Identical inputs produce byte-identical trees.
package render

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markdown"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// Options carries site-wide values.
type Options struct {
	Title         string
	BaseURL       string
	Description   string
	Author        string
	Language      string
	Permalink     string
	FeedLimit     int
	ExcerptLength int
}

// BodyCache memoises converted bodies by document fingerprint.
type BodyCache interface {
	Get(fingerprint string) ([]byte, bool)
	Put(fingerprint string, html []byte)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTemplates overrides theme files (base.html, index.html, post.html,
// tag.html, tags.html, style.css) with those present in fsys.
func WithTemplates(fsys fs.FS) Option {
	return func(r *Renderer) { r.templatesFS = fsys }
}

// WithStatic copies every file in fsys to assets/ in the output.
func WithStatic(fsys fs.FS) Option {
	return func(r *Renderer) { r.staticFS = fsys }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Renderer renders sites. A Renderer may be reused; Render is safe to call
// from one goroutine at a time per BodyCache.
type Renderer struct {
	opts        Options
	conv        *markdown.Converter
	templatesFS fs.FS
	staticFS    fs.FS
	logger      *slog.Logger
	basePath    string
	templates   templateSet
}

// New parses the templates and returns a Renderer.
func New(opts Options, conv *markdown.Converter, options ...Option) (*Renderer, error) {
	if opts.Permalink == "" {
		opts.Permalink = site.DefaultPermalink
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	r := &Renderer{opts: opts, conv: conv, logger: slog.Default(), basePath: "/"}
	for _, o := range options {
		o(r)
	}
	if u, err := url.Parse(opts.BaseURL); err == nil && u.Path != "" {
		r.basePath = strings.TrimSuffix(u.Path, "/") + "/"
	}

	t, err := loadTemplates(r.templatesFS, template.FuncMap{
		"url":     r.url,
		"absurl":  r.absURL,
		"date":    formatDate,
		"isodate": isoDate,
	})
	if err != nil {
		return nil, err
	}
	r.templates = t
	return r, nil
}

type siteData struct {
	Title       string
	BaseURL     string
	Description string
	Author      string
	Language    string
}

type tagRef struct {
	Slug string
	Name string
	URL  string
}

type postData struct {
	Slug    string
	Title   string
	Date    time.Time
	Excerpt string
	URL     string
	Tags    []tagRef
	Params  map[string]any
	Content template.HTML

	dir string
}

type tagData struct {
	Slug  string
	Name  string
	URL   string
	Count int
	Posts []*postData
}

type pageData struct {
	Site        siteData
	Title       string
	Description string
	Post        *postData
	Posts       []*postData
	Tag         *tagData
	Tags        []*tagData
}

// Render produces the full site tree for docs.
func (r *Renderer) Render(ctx context.Context, docs []*content.Document, cache BodyCache) (*Tree, error) {
	s := site.New(docs)
	tree := NewTree()

	posts := make([]*postData, 0, len(s.Documents))
	bySlug := make(map[string]*postData, len(s.Documents))
	for _, d := range s.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		html, err := r.body(d, cache)
		if err != nil {
			return nil, err
		}
		p := r.post(s, d, html)
		posts = append(posts, p)
		bySlug[d.Slug] = p
	}

	tags := make([]*tagData, 0, len(s.Tags))
	for _, t := range s.Tags {
		td := &tagData{Slug: t.Slug, Name: t.Name, URL: r.url(site.TagPath(t.Slug)), Count: len(t.Documents)}
		for _, d := range t.Documents {
			td.Posts = append(td.Posts, bySlug[d.Slug])
		}
		tags = append(tags, td)
	}

	sd := siteData{
		Title:       r.opts.Title,
		BaseURL:     r.opts.BaseURL,
		Description: r.opts.Description,
		Author:      r.opts.Author,
		Language:    r.opts.Language,
	}

	if err := r.page(tree, tmplIndex, "index.html", "index", pageData{Site: sd, Description: sd.Description, Posts: posts}); err != nil {
		return nil, err
	}
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := p.dir + "index.html"
		if err := r.page(tree, tmplPost, out, "post "+p.Slug, pageData{Site: sd, Title: p.Title, Description: p.Excerpt, Post: p}); err != nil {
			return nil, err
		}
	}
	if err := r.page(tree, tmplTags, "tags/index.html", "tag list", pageData{Site: sd, Title: "Tags", Tags: tags}); err != nil {
		return nil, err
	}
	for _, t := range tags {
		if err := r.page(tree, tmplTag, site.TagPath(t.Slug)+"index.html", "tag "+t.Name, pageData{Site: sd, Title: t.Name, Tag: t}); err != nil {
			return nil, err
		}
	}

	feed, err := r.feed(posts)
	if err != nil {
		return nil, err
	}
	if err := tree.Add("feed.xml", "feed", feed); err != nil {
		return nil, err
	}

	sitemap, err := r.sitemap(posts, tags)
	if err != nil {
		return nil, err
	}
	if err := tree.Add("sitemap.xml", "sitemap", sitemap); err != nil {
		return nil, err
	}

	if err := r.assets(tree); err != nil {
		return nil, err
	}

	r.logger.Debug("Rendered site", logfields.Count(tree.Len()))
	return tree, nil
}

func (r *Renderer) body(d *content.Document, cache BodyCache) ([]byte, error) {
	if cache != nil {
		if html, ok := cache.Get(d.Fingerprint); ok {
			return html, nil
		}
	}
	html, err := r.conv.Convert(d.Body)
	if err != nil {
		return nil, &BodyError{Path: d.Path, Err: err}
	}
	if cache != nil {
		cache.Put(d.Fingerprint, html)
	}
	return html, nil
}

func (r *Renderer) post(s *site.Site, d *content.Document, html []byte) *postData {
	excerpt := d.Excerpt
	if excerpt == "" {
		excerpt = markdown.FirstParagraphText(html, r.opts.ExcerptLength)
	}
	dir := site.Permalink(r.opts.Permalink, d)
	p := &postData{
		Slug:    d.Slug,
		Title:   d.Title,
		Date:    d.Date,
		Excerpt: excerpt,
		URL:     r.url(dir),
		Params:  d.Params,
		Content: template.HTML(html), //nolint:gosec // body HTML produced by the markdown converter
		dir:     dir,
	}
	seen := make(map[string]bool, len(d.Tags))
	for _, name := range d.Tags {
		t, ok := s.TagFor(name)
		if !ok || seen[t.Key] {
			continue
		}
		seen[t.Key] = true
		p.Tags = append(p.Tags, tagRef{Slug: t.Slug, Name: name, URL: r.url(site.TagPath(t.Slug))})
	}
	return p
}

func (r *Renderer) page(tree *Tree, name, out, origin string, data pageData) error {
	var buf bytes.Buffer
	if err := r.templates[name].ExecuteTemplate(&buf, "base", data); err != nil {
		return &TemplateError{Template: name, Path: out, Err: err}
	}
	return tree.Add(out, origin, buf.Bytes())
}

// themeAsset marks generated assets that static files may override.
const themeAsset = "theme asset"

func (r *Renderer) assets(tree *Tree) error {
	css, err := r.conv.StyleSheet()
	if err != nil {
		return err
	}
	if err := tree.Add("assets/highlight.css", themeAsset, css); err != nil {
		return err
	}

	style, err := readTheme(r.templatesFS, "style.css")
	if err != nil {
		return &TemplateError{Template: "style.css", Err: err}
	}
	if err := tree.Add("assets/style.css", themeAsset, style); err != nil {
		return err
	}

	if r.staticFS == nil {
		return nil
	}
	return fs.WalkDir(r.staticFS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(r.staticFS, p)
		if err != nil {
			return err
		}
		out := "assets/" + p
		if first, ok := tree.origin[out]; ok && first == themeAsset {
			tree.Replace(out, "static "+p, data)
			return nil
		}
		return tree.Add(out, "static "+p, data)
	})
}

// url returns the site-rooted URL path for a relative output path.
func (r *Renderer) url(rel string) string {
	return r.basePath + strings.TrimPrefix(rel, "/")
}

// absURL returns an absolute URL when BaseURL is set, else the rooted path.
func (r *Renderer) absURL(rel string) string {
	if r.opts.BaseURL == "" {
		return r.url(rel)
	}
	return strings.TrimSuffix(r.opts.BaseURL, "/") + "/" + strings.TrimPrefix(r.url(rel), r.basePath)
}
