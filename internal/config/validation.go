package config

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// Validate checks cross-field constraints after defaults are applied.
func (c *Config) Validate() error {
	if !strings.Contains(c.Site.Permalink, ":slug") {
		return errors.ValidationError("site.permalink must contain :slug").
			WithContext("permalink", c.Site.Permalink).
			Build()
	}
	if p := strings.TrimLeft(c.Site.Permalink, "/"); strings.HasPrefix(p, "tags/") || strings.HasPrefix(p, "assets/") {
		return errors.ValidationError("site.permalink collides with a reserved section").
			WithContext("permalink", c.Site.Permalink).
			Build()
	}
	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.ValidationError(fmt.Sprintf("site.base_url must be an absolute URL, got %q", c.Site.BaseURL)).Build()
		}
	}
	if c.Site.FeedLimit < 0 {
		return errors.ValidationError("site.feed_limit must not be negative").Build()
	}
	if c.Markdown.ExcerptLength < 0 {
		return errors.ValidationError("markdown.excerpt_length must not be negative").Build()
	}
	if strings.TrimSpace(c.Build.MainBranch) == "" || strings.HasPrefix(c.Build.MainBranch, "refs/") {
		return errors.ValidationError("build.main_branch must be a short branch name").
			WithContext("main_branch", c.Build.MainBranch).
			Build()
	}

	switch c.Cache.Backend {
	case CacheBackendNATS:
		if c.Cache.NATS.URL == "" {
			return errors.ValidationError("cache.nats.url is required when cache.backend is nats").Build()
		}
	case CacheBackendFS:
		if c.Cache.Dir == "" {
			return errors.ValidationError("cache.dir is required when cache.backend is fs").Build()
		}
	}
	r := c.Cache.Retry
	if r.Initial < 0 || r.Max < 0 || r.MaxRetries < 0 {
		return errors.ValidationError("cache.retry values must not be negative").Build()
	}
	if r.Max < r.Initial {
		return errors.ValidationError("cache.retry.max must be >= cache.retry.initial").Build()
	}

	switch c.Publish.Target {
	case PublishTargetDir:
		if c.Publish.Dir == "" {
			return errors.ValidationError("publish.dir is required when publish.target is dir").Build()
		}
	case PublishTargetGit:
		if c.Publish.Git.URL == "" {
			return errors.ValidationError("publish.git.url is required when publish.target is git").Build()
		}
	}

	if c.Server.QueueSize < 1 {
		return errors.ValidationError("server.queue_size must be at least 1").Build()
	}
	if c.Server.Schedule < 0 {
		return errors.ValidationError("server.schedule must not be negative").Build()
	}
	return nil
}
