package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func TestDirPublisher_ReplacesWholesale(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "public")
	p := NewDirPublisher(dest)

	first := writeSite(t, map[string]string{"index.html": "v1", "posts/old/index.html": "old"})
	require.NoError(t, p.Publish(context.Background(), first))

	second := writeSite(t, map[string]string{"index.html": "v2"})
	require.NoError(t, p.Publish(context.Background(), second))

	got, err := os.ReadFile(filepath.Join(dest, "index.html"))
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))

	_, err = os.Stat(filepath.Join(dest, "posts", "old"))
	require.True(t, os.IsNotExist(err), "stale pages must not survive a publish")

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no staging or backup directories left behind")
}

func TestDirPublisher_FailureLeavesDestinationUntouched(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "public")
	p := NewDirPublisher(dest)
	require.NoError(t, p.Publish(context.Background(), writeSite(t, map[string]string{"index.html": "live"})))

	err := p.Publish(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPublishTransfer))

	got, err := os.ReadFile(filepath.Join(dest, "index.html"))
	require.NoError(t, err)
	require.Equal(t, "live", string(got))
}

func TestNoop(t *testing.T) {
	require.NoError(t, Noop{}.Publish(context.Background(), "/does/not/matter"))
	require.Equal(t, "none", Noop{}.Name())
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(config.PublishConfig{Target: config.PublishTargetDir, Dir: "out"})
	require.NoError(t, err)
	require.Equal(t, "dir", p.Name())

	p, err = FromConfig(config.PublishConfig{Target: config.PublishTargetGit, Git: config.GitConfig{URL: "https://example.com/x.git"}})
	require.NoError(t, err)
	require.Equal(t, "git", p.Name())

	p, err = FromConfig(config.PublishConfig{Target: config.PublishTargetNone})
	require.NoError(t, err)
	require.Equal(t, "none", p.Name())

	_, err = FromConfig(config.PublishConfig{Target: "ftp"})
	require.Error(t, err)
}

func TestGitPublisher_MissingTokenIsAuthError(t *testing.T) {
	p := NewGitPublisher(GitOptions{URL: "https://example.com/blog.git"})
	err := p.Publish(context.Background(), writeSite(t, map[string]string{"index.html": "x"}))
	require.True(t, errors.Is(err, ErrPublishAuth))

	var ae *AuthError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, "https://example.com/blog.git", ae.Target)
}

func TestGitPublisher_UnreachableRemoteIsTransferError(t *testing.T) {
	p := NewGitPublisher(GitOptions{URL: "http://127.0.0.1:1/blog.git", Token: "t"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := p.Publish(ctx, writeSite(t, map[string]string{"index.html": "x"}))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPublishTransfer), "got %v", err)
	require.False(t, errors.Is(err, ErrPublishAuth))
}

func TestGitPublisher_PushesOrphanCommit(t *testing.T) {
	if _, err := exec.LookPath("git-receive-pack"); err != nil {
		t.Skip("git-receive-pack not available")
	}
	remote := filepath.Join(t.TempDir(), "site.git")
	_, err := git.PlainInit(remote, true)
	require.NoError(t, err)

	when := time.Date(2024, 12, 13, 12, 0, 0, 0, time.UTC)
	p := NewGitPublisher(GitOptions{URL: remote, Branch: "pages", Now: func() time.Time { return when }})

	require.NoError(t, p.Publish(context.Background(), writeSite(t, map[string]string{"index.html": "v1"})))
	require.NoError(t, p.Publish(context.Background(), writeSite(t, map[string]string{"index.html": "v2", "feed.xml": "<feed/>"})))

	repo, err := git.PlainOpen(remote)
	require.NoError(t, err)
	ref, err := repo.Reference(plumbing.NewBranchReferenceName("pages"), true)
	require.NoError(t, err)
	commit, err := repo.CommitObject(ref.Hash())
	require.NoError(t, err)
	require.Zero(t, commit.NumParents(), "each publish is a single orphan commit")

	file, err := commit.File("index.html")
	require.NoError(t, err)
	body, err := file.Contents()
	require.NoError(t, err)
	require.Equal(t, "v2", body)

	_, err = commit.File(".nojekyll")
	require.NoError(t, err)
}

func TestClassifyGitError(t *testing.T) {
	tests := []struct {
		err  error
		auth bool
	}{
		{transport.ErrAuthenticationRequired, true},
		{transport.ErrAuthorizationFailed, true},
		{fmt.Errorf("push: %w", transport.ErrAuthenticationRequired), true},
		{errors.New("remote: Invalid credentials"), true},
		{errors.New("dial tcp: connection refused"), false},
		{transport.ErrRepositoryNotFound, false},
	}
	for _, tt := range tests {
		err := classifyGitError("https://example.com/x.git", "push", tt.err)
		if got := errors.Is(err, ErrPublishAuth); got != tt.auth {
			t.Errorf("classifyGitError(%v) auth = %v, want %v", tt.err, got, tt.auth)
		}
		if !tt.auth && !errors.Is(err, ErrPublishTransfer) {
			t.Errorf("classifyGitError(%v) should be a transfer error", tt.err)
		}
	}
}
