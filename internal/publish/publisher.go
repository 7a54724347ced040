// Package publish transfers a rendered site to its hosting destination.
package publish

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

// Publisher replaces the hosted site with the contents of dir.
type Publisher interface {
	Publish(ctx context.Context, dir string) error
	Name() string
}

// FromConfig builds the publisher selected by cfg.
func FromConfig(cfg config.PublishConfig) (Publisher, error) {
	switch cfg.Target {
	case config.PublishTargetDir:
		return NewDirPublisher(cfg.Dir), nil
	case config.PublishTargetGit:
		return NewGitPublisher(GitOptions{
			URL:         cfg.Git.URL,
			Branch:      cfg.Git.Branch,
			Token:       cfg.Git.Token,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
		}), nil
	case config.PublishTargetNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown publish target %q", cfg.Target)
	}
}

// Noop discards the artifact. Used for dry runs.
type Noop struct{}

func (Noop) Publish(context.Context, string) error { return nil }

func (Noop) Name() string { return "none" }
