// Package config loads and validates blogbuilder configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// DefaultFileName is the configuration file looked up when --config is not given.
const DefaultFileName = "blogbuilder.yaml"

// Config is the root configuration document.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Build    BuildConfig    `yaml:"build"`
	Cache    CacheConfig    `yaml:"cache"`
	Publish  PublishConfig  `yaml:"publish"`
	History  HistoryConfig  `yaml:"history"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`

	// baseDir is the directory relative paths were resolved against.
	baseDir string
}

// SiteConfig holds values exposed to templates and feeds.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Language    string `yaml:"language"`
	// Permalink pattern for post pages, tokens :year :month :day :slug.
	Permalink string `yaml:"permalink"`
	FeedLimit int    `yaml:"feed_limit"`
}

// ContentConfig locates the article store.
type ContentConfig struct {
	Dir    string `yaml:"dir"`
	Drafts bool   `yaml:"drafts"`
}

// MarkdownConfig controls body conversion.
type MarkdownConfig struct {
	HighlightStyle string `yaml:"highlight_style"`
	LineNumbers    bool   `yaml:"line_numbers"`
	ExcerptLength  int    `yaml:"excerpt_length"`
	// Unsafe allows raw HTML in article bodies.
	Unsafe bool `yaml:"unsafe"`
}

// BuildConfig holds orchestrator settings.
type BuildConfig struct {
	MainBranch   string `yaml:"main_branch"`
	WorkspaceDir string `yaml:"workspace_dir"`
	TemplatesDir string `yaml:"templates_dir"`
	StaticDir    string `yaml:"static_dir"`
	// LockFile is hashed into the cache key.
	LockFile string `yaml:"lock_file"`
}

// CacheConfig selects the rendered-body cache backend.
type CacheConfig struct {
	Backend CacheBackend `yaml:"backend"`
	Dir     string       `yaml:"dir"`
	NATS    NATSConfig   `yaml:"nats"`
	Retry   RetryConfig  `yaml:"retry"`
}

// NATSConfig configures the JetStream key-value cache backend.
type NATSConfig struct {
	URL    string        `yaml:"url"`
	Bucket string        `yaml:"bucket"`
	TTL    time.Duration `yaml:"ttl"`
}

// RetryConfig is the backoff policy applied to cache store reads.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// PublishConfig selects where a successful build is published.
type PublishConfig struct {
	Target PublishTarget `yaml:"target"`
	Dir    string        `yaml:"dir"`
	Git    GitConfig     `yaml:"git"`
}

// GitConfig configures the git hosting publisher.
type GitConfig struct {
	URL         string `yaml:"url"`
	Branch      string `yaml:"branch"`
	Token       string `yaml:"token"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// HistoryConfig configures the SQLite build history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ServerConfig configures the webhook daemon.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	WebhookSecret string        `yaml:"webhook_secret"`
	QueueSize     int           `yaml:"queue_size"`
	Schedule      time.Duration `yaml:"schedule"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns a configuration with every default applied and paths
// relative to the current directory.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a YAML configuration file. .env and .env.local next to the file
// are loaded first without overriding the process environment, then ${VAR}
// references in the raw file are expanded.
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)
	if err := LoadEnvFiles(dir); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load environment files").Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", path)).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}

	c, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	c.resolvePaths(dir)
	return c, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
// An explicitly requested file that is missing is still an error.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); err != nil && os.IsNotExist(err) && !explicit {
		if envErr := LoadEnvFiles("."); envErr != nil {
			return nil, errors.WrapError(envErr, errors.CategoryConfig, "failed to load environment files").Build()
		}
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes already-expanded YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config").Build()
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// BaseDir is the directory relative paths were resolved against.
func (c *Config) BaseDir() string {
	if c.baseDir == "" {
		return "."
	}
	return c.baseDir
}

func (c *Config) applyDefaults() {
	s := &c.Site
	if s.Title == "" {
		s.Title = "Blog"
	}
	if s.Language == "" {
		s.Language = "en"
	}
	if s.Permalink == "" {
		s.Permalink = "posts/:slug/"
	}
	if s.FeedLimit == 0 {
		s.FeedLimit = 20
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "_posts"
	}
	if c.Markdown.HighlightStyle == "" {
		c.Markdown.HighlightStyle = "github"
	}
	if c.Markdown.ExcerptLength == 0 {
		c.Markdown.ExcerptLength = 280
	}

	b := &c.Build
	if b.MainBranch == "" {
		b.MainBranch = "main"
	}
	if b.WorkspaceDir == "" {
		b.WorkspaceDir = ".blogbuilder/work"
	}
	if b.LockFile == "" {
		b.LockFile = "go.sum"
	}

	cc := &c.Cache
	if cc.Backend == "" {
		cc.Backend = CacheBackendFS
	}
	if cc.Dir == "" {
		cc.Dir = ".blogbuilder/cache"
	}
	if cc.NATS.Bucket == "" {
		cc.NATS.Bucket = "blogbuilder-cache"
	}
	if cc.Retry.Mode == "" {
		cc.Retry.Mode = RetryBackoffExponential
	}
	if cc.Retry.Initial == 0 {
		cc.Retry.Initial = 200 * time.Millisecond
	}
	if cc.Retry.Max == 0 {
		cc.Retry.Max = 2 * time.Second
	}
	if cc.Retry.MaxRetries == 0 {
		cc.Retry.MaxRetries = 2
	}

	p := &c.Publish
	if p.Target == "" {
		p.Target = PublishTargetDir
	}
	if p.Dir == "" {
		p.Dir = "public"
	}
	if p.Git.Branch == "" {
		p.Git.Branch = "gh-pages"
	}
	if p.Git.AuthorName == "" {
		p.Git.AuthorName = "blogbuilder"
	}
	if p.Git.AuthorEmail == "" {
		p.Git.AuthorEmail = "blogbuilder@localhost"
	}

	if c.History.Path == "" {
		c.History.Path = ".blogbuilder/history.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.QueueSize == 0 {
		c.Server.QueueSize = 16
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "blogbuilder"
	}
}

func (c *Config) resolvePaths(base string) {
	c.baseDir = base
	for _, p := range []*string{
		&c.Content.Dir,
		&c.Build.WorkspaceDir,
		&c.Build.TemplatesDir,
		&c.Build.StaticDir,
		&c.Build.LockFile,
		&c.Cache.Dir,
		&c.Publish.Dir,
		&c.History.Path,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
