package trigger

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // legacy signature format
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestPushEvent_Branch(t *testing.T) {
	tests := []struct {
		ref    string
		branch string
		isMain bool
	}{
		{"refs/heads/main", "main", true},
		{"refs/heads/feature/x", "feature/x", false},
		{"refs/tags/v1.0.0", "", false},
		{"HEAD", "", false},
		{"refs/heads/mainline", "mainline", false},
	}
	for _, tt := range tests {
		ev := PushEvent{Ref: tt.ref}
		if got := ev.Branch(); got != tt.branch {
			t.Errorf("Branch(%q) = %q, want %q", tt.ref, got, tt.branch)
		}
		if got := ev.IsBranch("main"); got != tt.isMain {
			t.Errorf("IsBranch(%q, main) = %v, want %v", tt.ref, got, tt.isMain)
		}
	}
	require.Equal(t, "refs/heads/main", BranchRef("main"))
	require.Equal(t, "refs/heads/main", BranchRef("refs/heads/main"))
	require.Equal(t, PushEvent{Ref: "refs/heads/main", Source: SourceSchedule}, Manual("main", SourceSchedule))
}

const pushPayload = `{
  "ref": "refs/heads/main",
  "before": "1111111111111111111111111111111111111111",
  "after": "2222222222222222222222222222222222222222",
  "repository": {"id": 42, "full_name": "jane/blog"},
  "pusher": {"name": "jane"},
  "commits": []
}`

func TestParseGitHubPush(t *testing.T) {
	ev, err := ParseGitHubPush([]byte(pushPayload))
	require.NoError(t, err)
	require.Equal(t, "refs/heads/main", ev.Ref)
	require.Equal(t, "2222222222222222222222222222222222222222", ev.After)
	require.Equal(t, "jane/blog", ev.Repository)
	require.Equal(t, "jane", ev.Pusher)
	require.Equal(t, SourceWebhook, ev.Source)

	_, err = ParseGitHubPush([]byte(`{"zen": "ping"}`))
	require.Error(t, err)
	_, err = ParseGitHubPush([]byte(`not json`))
	require.Error(t, err)
}

func TestValidateSignature(t *testing.T) {
	payload := []byte(pushPayload)
	secret := "s3cret"

	require.True(t, ValidateSignature(payload, Sign(payload, secret), secret))
	require.False(t, ValidateSignature(payload, Sign(payload, "other"), secret))
	require.False(t, ValidateSignature(payload, "", secret))
	require.False(t, ValidateSignature(payload, Sign(payload, secret), ""))
	require.False(t, ValidateSignature(payload, "md5=abc", secret))
	require.False(t, ValidateSignature([]byte("tampered"), Sign(payload, secret), secret))

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(payload)
	legacy := "sha1=" + hex.EncodeToString(mac.Sum(nil))
	require.True(t, ValidateSignature(payload, legacy, secret))
}

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		"GITHUB_REF":        "refs/heads/main",
		"GITHUB_SHA":        "abc",
		"GITHUB_REPOSITORY": "jane/blog",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	ev, ok := FromEnv(lookup)
	require.True(t, ok)
	require.Equal(t, PushEvent{Ref: "refs/heads/main", After: "abc", Repository: "jane/blog", Source: SourceCI}, ev)

	env = map[string]string{"CI_COMMIT_BRANCH": "develop", "CI_COMMIT_SHA": "def"}
	ev, ok = FromEnv(lookup)
	require.True(t, ok)
	require.Equal(t, "refs/heads/develop", ev.Ref)
	require.Equal(t, "def", ev.After)

	env = map[string]string{}
	_, ok = FromEnv(lookup)
	require.False(t, ok)
}

func TestFromRepository(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{Author: &object.Signature{Name: "t", Email: "t@example.com", When: time.Now()}})
	require.NoError(t, err)

	sub := filepath.Join(dir, "_posts")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	ev, err := FromRepository(sub)
	require.NoError(t, err)
	require.Equal(t, "refs/heads/main", ev.Ref)
	require.Equal(t, hash.String(), ev.After)
	require.Equal(t, SourceLocal, ev.Source)

	_, err = FromRepository(t.TempDir())
	require.Error(t, err)
}
