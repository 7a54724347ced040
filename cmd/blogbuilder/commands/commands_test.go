package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

const testConfig = `site:
  title: "Test Blog"
  base_url: "https://blog.example.com/"
content:
  dir: "_posts"
cache:
  backend: "none"
publish:
  target: "dir"
  dir: "public"
history:
  enabled: true
  path: ".blogbuilder/history.db"
metrics:
  enabled: false
`

// run parses args and runs the selected command inside dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("blogbuilder"), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	g := &Global{
		Stdout: &out,
		Stderr: &out,
		Now:    func() time.Time { return time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC) },
	}
	err = kctx.Run(g, cli)
	return out.String(), err
}

func newSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFileName), []byte(testConfig), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_posts"), 0o755))
	return dir
}

func writePost(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_posts", name), []byte(body), 0o644))
}

func TestInit_WritesExampleAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "init")
	require.NoError(t, err)
	require.Contains(t, out, "Configuration file created")

	data, err := os.ReadFile(filepath.Join(dir, config.DefaultFileName))
	require.NoError(t, err)
	require.Equal(t, config.ExampleYAML, string(data))

	_, err = run(t, dir, "init")
	require.Error(t, err)

	_, err = run(t, dir, "init", "--force")
	require.NoError(t, err)
}

func TestNew_CreatesArticleThatParses(t *testing.T) {
	dir := newSite(t)

	out, err := run(t, dir, "new", "Unit testing an Actor", "--tags", "testing,actors")
	require.NoError(t, err)

	path := filepath.Join("_posts", "2025-03-09-unit-testing-an-actor.md")
	if !strings.Contains(out, path) {
		t.Errorf("output %q does not name %s", out, path)
	}
	data, err := os.ReadFile(filepath.Join(dir, path))
	require.NoError(t, err)
	require.Contains(t, string(data), "title: Unit testing an Actor")
	require.Contains(t, string(data), "- actors")

	out, err = run(t, dir, "check")
	require.NoError(t, err)
	require.Contains(t, out, "1 articles OK")

	_, err = run(t, dir, "new", "Unit testing an Actor", "--date", "2025-03-09")
	require.Error(t, err, "existing articles must not be overwritten")
}

func TestNew_RejectsBadInput(t *testing.T) {
	dir := newSite(t)

	_, err := run(t, dir, "new", "!!!")
	require.Error(t, err)

	_, err = run(t, dir, "new", "Fine title", "--date", "09/03/2025")
	require.Error(t, err)
}

func TestNew_DraftIsNotBuilt(t *testing.T) {
	dir := newSite(t)
	writePost(t, dir, "2024-01-01-hello.md", "---\ntitle: Hello\n---\nHi.\n")

	_, err := run(t, dir, "new", "Work in progress", "--draft")
	require.NoError(t, err)

	out, err := run(t, dir, "build", "--ref", "main")
	require.NoError(t, err)
	require.Contains(t, out, "from 1 articles")
	require.NoDirExists(t, filepath.Join(dir, "public", "posts", "work-in-progress"))
}

func TestCheck_ReportsEveryProblem(t *testing.T) {
	dir := newSite(t)
	writePost(t, dir, "2024-01-01-ok.md", "---\ntitle: OK\n---\nfine\n")
	writePost(t, dir, "2024-01-02-untitled.md", "---\ntags: [x]\n---\nno title\n")
	writePost(t, dir, "2024-01-03-fence.md", "---\ntitle: Fence\n---\n```go\nnever closed\n")

	out, err := run(t, dir, "check")
	require.Error(t, err)
	require.Equal(t, ferrors.ExitBuildError, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	require.Contains(t, out, "untitled")
	require.Contains(t, out, "fence")
}

func TestBuild_PublishesAndRecordsHistory(t *testing.T) {
	dir := newSite(t)
	writePost(t, dir, "2024-12-13-unit-testing-actor.md", "---\ntitle: Unit testing an actor\ntags: [testing]\n---\nBody.\n")

	out, err := run(t, dir, "build", "--ref", "main")
	require.NoError(t, err)
	require.Contains(t, out, "Built")
	require.FileExists(t, filepath.Join(dir, "public", "index.html"))
	require.FileExists(t, filepath.Join(dir, "public", "posts", "unit-testing-actor", "index.html"))

	out, err = run(t, dir, "history", "--json")
	require.NoError(t, err)
	var builds []eventstore.BuildSummary
	require.NoError(t, json.Unmarshal([]byte(out), &builds))
	require.Len(t, builds, 1)
	if builds[0].State != "Done" {
		t.Errorf("state = %q, want Done", builds[0].State)
	}
	require.Equal(t, "refs/heads/main", builds[0].Ref)

	out, err = run(t, dir, "history")
	require.NoError(t, err)
	require.Contains(t, out, "BUILD")
	require.Contains(t, out, "Done")
}

func TestBuild_OutputAndDryRun(t *testing.T) {
	dir := newSite(t)
	writePost(t, dir, "2024-12-13-hello.md", "---\ntitle: Hello\n---\nBody.\n")
	alt := filepath.Join(t.TempDir(), "site")

	_, err := run(t, dir, "build", "--ref", "main", "--output", alt)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(alt, "index.html"))
	require.NoDirExists(t, filepath.Join(dir, "public"))

	_, err = run(t, dir, "build", "--ref", "main", "--dry-run")
	require.NoError(t, err)
	require.NoDirExists(t, filepath.Join(dir, "public"))
}

func TestBuild_NonMainRefIsSkipped(t *testing.T) {
	dir := newSite(t)
	writePost(t, dir, "2024-12-13-hello.md", "---\ntitle: Hello\n---\nBody.\n")

	out, err := run(t, dir, "build", "--ref", "feature/x")
	require.NoError(t, err)
	require.Contains(t, out, "Skipped")
	require.NoDirExists(t, filepath.Join(dir, "public"))
}

func TestBuild_ContentErrorExitsOne(t *testing.T) {
	dir := newSite(t)
	writePost(t, dir, "2024-12-13-hello.md", "---\ntags: [a]\n---\nBody.\n")

	_, err := run(t, dir, "build", "--ref", "main")
	require.Error(t, err)
	require.Equal(t, ferrors.ExitBuildError, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	require.NoDirExists(t, filepath.Join(dir, "public"))
}

func TestBuild_PublishErrorExitsTwo(t *testing.T) {
	dir := newSite(t)
	writePost(t, dir, "2024-12-13-hello.md", "---\ntitle: Hello\n---\nBody.\n")
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))

	_, err := run(t, dir, "build", "--ref", "main", "--output", filepath.Join(blocker, "site"))
	require.Error(t, err)
	require.Equal(t, ferrors.ExitPublishError, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestHistory_DisabledIsAnError(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "history")
	require.Error(t, err)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "--config", "missing.yaml", "check")
	require.Error(t, err)
}

func TestResolveEvent(t *testing.T) {
	cfg := config.Default()
	none := func(string) (string, bool) { return "", false }

	tests := []struct {
		name   string
		ref    string
		env    map[string]string
		want   string
		source trigger.Source
	}{
		{name: "explicit ref wins", ref: "main", env: map[string]string{"GITHUB_REF": "refs/heads/dev"}, want: "refs/heads/main", source: trigger.SourceManual},
		{name: "github actions", env: map[string]string{"GITHUB_REF": "refs/heads/dev", "GITHUB_SHA": "abc"}, want: "refs/heads/dev", source: trigger.SourceCI},
		{name: "gitlab ci", env: map[string]string{"CI_COMMIT_BRANCH": "main"}, want: "refs/heads/main", source: trigger.SourceCI},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			}
			ev := ResolveEvent(tt.ref, cfg, lookup)
			if ev.Ref != tt.want || ev.Source != tt.source {
				t.Errorf("ResolveEvent() = %s from %s, want %s from %s", ev.Ref, ev.Source, tt.want, tt.source)
			}
		})
	}

	t.Run("falls back to main outside a repository", func(t *testing.T) {
		t.Chdir(t.TempDir())
		ev := ResolveEvent("", cfg, none)
		if ev.Source == trigger.SourceManual {
			require.Equal(t, "refs/heads/main", ev.Ref)
		}
	})
}
