package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitOptions configures GitPublisher.
type GitOptions struct {
	URL         string
	Branch      string
	Token       string
	AuthorName  string
	AuthorEmail string
	Message     string
	// Now stamps the commit; defaults to time.Now.
	Now func() time.Time
}

// GitPublisher force-pushes the artifact as a single orphan commit to a
// branch of a remote repository, the layout used by git-based static hosts.
type GitPublisher struct {
	opts GitOptions
}

// NewGitPublisher returns a GitPublisher.
func NewGitPublisher(opts GitOptions) *GitPublisher {
	if opts.Branch == "" {
		opts.Branch = "gh-pages"
	}
	if opts.AuthorName == "" {
		opts.AuthorName = "blogbuilder"
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = "blogbuilder@localhost"
	}
	if opts.Message == "" {
		opts.Message = "Publish site"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &GitPublisher{opts: opts}
}

func (p *GitPublisher) Name() string { return "git" }

func (p *GitPublisher) Publish(ctx context.Context, dir string) error {
	auth, err := p.auth()
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "blogbuilder-publish-")
	if err != nil {
		return p.transfer("create scratch repository", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	if err := os.CopyFS(scratch, os.DirFS(dir)); err != nil {
		return p.transfer("copy artifact", err)
	}
	// Pages hosts otherwise skip paths starting with underscores.
	if err := os.WriteFile(filepath.Join(scratch, ".nojekyll"), nil, 0o644); err != nil {
		return p.transfer("write .nojekyll", err)
	}

	repo, err := git.PlainInit(scratch, false)
	if err != nil {
		return p.transfer("init", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return p.transfer("worktree", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return p.transfer("add", err)
	}
	hash, err := wt.Commit(p.opts.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  p.opts.AuthorName,
			Email: p.opts.AuthorEmail,
			When:  p.opts.Now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return p.transfer("commit", err)
	}

	branch := plumbing.NewBranchReferenceName(p.opts.Branch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, hash)); err != nil {
		return p.transfer("set branch", err)
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{p.opts.URL}}); err != nil {
		return p.transfer("add remote", err)
	}

	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf("+%s:%s", branch, branch))},
		Auth:       auth,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return classifyGitError(p.opts.URL, "push", err)
	}
	return nil
}

// auth returns token credentials for HTTP remotes. A missing token for an
// HTTP remote is an authentication failure; local remotes need none.
func (p *GitPublisher) auth() (transport.AuthMethod, error) {
	if !strings.HasPrefix(p.opts.URL, "http://") && !strings.HasPrefix(p.opts.URL, "https://") {
		return nil, nil
	}
	if strings.TrimSpace(p.opts.Token) == "" {
		return nil, &AuthError{Publisher: p.Name(), Target: p.opts.URL, Err: errors.New("no token configured")}
	}
	return &http.BasicAuth{Username: "x-access-token", Password: p.opts.Token}, nil
}

func (p *GitPublisher) transfer(op string, err error) error {
	return &TransferError{Publisher: p.Name(), Target: p.opts.URL, Op: op, Err: err}
}
