package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_AppliesDefaults(t *testing.T) {
	c := Default()

	require.Equal(t, "posts/:slug/", c.Site.Permalink)
	require.Equal(t, 20, c.Site.FeedLimit)
	require.Equal(t, "_posts", c.Content.Dir)
	require.Equal(t, "main", c.Build.MainBranch)
	require.Equal(t, CacheBackendFS, c.Cache.Backend)
	require.Equal(t, RetryBackoffExponential, c.Cache.Retry.Mode)
	require.Equal(t, PublishTargetDir, c.Publish.Target)
	require.Equal(t, "gh-pages", c.Publish.Git.Branch)
	require.Equal(t, LogLevelInfo, c.Logging.Level)
	require.Equal(t, 16, c.Server.QueueSize)
	require.NoError(t, c.Validate())
}

func TestLoad_ResolvesPathsRelativeToConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "content:\n  dir: posts\npublish:\n  dir: /srv/www\n")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "posts"), c.Content.Dir)
	require.Equal(t, "/srv/www", c.Publish.Dir)
	require.Equal(t, filepath.Join(dir, ".blogbuilder/cache"), c.Cache.Dir)
	require.Equal(t, dir, c.BaseDir())
}

func TestLoad_ExpandsEnvironmentAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BLOG_TEST_TITLE", "From Process")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BLOG_TEST_TOKEN=from-dotenv\nBLOG_TEST_TITLE=ignored\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BLOG_TEST_TOKEN") })

	path := writeConfig(t, dir, "site:\n  title: \"${BLOG_TEST_TITLE}\"\npublish:\n  git:\n    token: \"${BLOG_TEST_TOKEN}\"\n")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "From Process", c.Site.Title)
	require.Equal(t, "from-dotenv", c.Publish.Git.Token)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoadOrDefault_MissingImplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := LoadOrDefault(DefaultFileName, false)
	require.NoError(t, err)
	require.Equal(t, "_posts", c.Content.Dir)

	_, err = LoadOrDefault(DefaultFileName, true)
	require.Error(t, err)
}

func TestParse_NormalizesEnums(t *testing.T) {
	c, err := Parse([]byte("logging:\n  level: WARNING\n  format: JSON\ncache:\n  backend: Filesystem\n  retry:\n    mode: Linear\npublish:\n  target: None\n"))
	require.NoError(t, err)
	require.Equal(t, LogLevelWarn, c.Logging.Level)
	require.Equal(t, LogFormatJSON, c.Logging.Format)
	require.Equal(t, CacheBackendFS, c.Cache.Backend)
	require.Equal(t, RetryBackoffLinear, c.Cache.Retry.Mode)
	require.Equal(t, PublishTargetNone, c.Publish.Target)
}

func TestParse_Durations(t *testing.T) {
	c, err := Parse([]byte("server:\n  schedule: 15m\ncache:\n  retry:\n    initial: 50ms\n    max: 1s\n"))
	require.NoError(t, err)
	require.Equal(t, 15*time.Minute, c.Server.Schedule)
	require.Equal(t, 50*time.Millisecond, c.Cache.Retry.Initial)
	require.Equal(t, time.Second, c.Cache.Retry.Max)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "cache:\n  backend: redis\n"},
		{"unknown publish target", "publish:\n  target: ftp\n"},
		{"permalink without slug", "site:\n  permalink: \"posts/:year/\"\n"},
		{"reserved permalink", "site:\n  permalink: \"tags/:slug/\"\n"},
		{"reserved permalink with leading slash", "site:\n  permalink: \"/tags/:slug/\"\n"},
		{"assets permalink with leading slashes", "site:\n  permalink: \"//assets/:slug/\"\n"},
		{"relative base url", "site:\n  base_url: \"example.com\"\n"},
		{"nats without url", "cache:\n  backend: nats\n"},
		{"git without url", "publish:\n  target: git\n"},
		{"full ref as main branch", "build:\n  main_branch: refs/heads/main\n"},
		{"retry max below initial", "cache:\n  retry:\n    initial: 2s\n    max: 1s\n"},
		{"malformed yaml", "site: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
			if !errors.IsClassified(err) {
				t.Errorf("expected classified error, got %T", err)
			}
		})
	}
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	require.NoError(t, WriteExample(path, false))
	require.Error(t, WriteExample(path, false))
	require.NoError(t, WriteExample(path, true))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", c.Site.Title)
	require.Equal(t, PublishTargetDir, c.Publish.Target)
	require.True(t, c.History.Enabled)
}
