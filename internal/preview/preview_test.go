package preview

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/pipeline"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

type fakeRebuilder struct {
	mu     sync.Mutex
	events []trigger.PushEvent
	err    error
}

func (f *fakeRebuilder) Handle(_ context.Context, ev trigger.PushEvent) (*pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return &pipeline.Result{BuildID: "b"}, f.err
}

func (f *fakeRebuilder) MainBranch() string { return "main" }

func (f *fakeRebuilder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShouldIgnore(t *testing.T) {
	tests := map[string]bool{
		"/site/_posts/2024-01-01-a.md":      false,
		"/site/templates/base.html":         false,
		"/site/_posts/.2024-01-01-a.md.swp": true,
		"/site/_posts/a.md~":                true,
		"/site/_posts/#a.md#":               true,
		"/site/_posts/.DS_Store":            true,
		"/site/_posts/a.md.tmp":             true,
		"/site/.git":                        true,
	}
	for path, want := range tests {
		if got := shouldIgnore(path); got != want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDebouncer_Coalesces(t *testing.T) {
	var calls atomic.Int32
	d := newDebouncer(50*time.Millisecond, func() { calls.Add(1) })
	for range 5 {
		d.trigger()
		time.Sleep(5 * time.Millisecond)
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestBuild_UsesWatchSource(t *testing.T) {
	b := &fakeRebuilder{}
	p := New(b, Options{Logger: quietLogger()})
	require.NoError(t, p.Build(t.Context()))
	require.Equal(t, trigger.SourceWatch, b.events[0].Source)
	require.Equal(t, "refs/heads/main", b.events[0].Ref)
}

func TestHandler_ServesSiteAndStatus(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("<h1>hi</h1>"), 0o644))

	b := &fakeRebuilder{err: errors.New("title is required")}
	p := New(b, Options{OutputDir: out, Logger: quietLogger()})
	require.Error(t, p.Build(t.Context()))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<h1>hi</h1>")
	require.Equal(t, "title is required", rec.Header().Get("X-Build-Error"))

	rec = httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_preview/status", nil))
	require.Contains(t, rec.Body.String(), `"builds":1`)
	require.Contains(t, rec.Body.String(), `"has_good_build":false`)
}

func TestRun_RebuildsOnChange(t *testing.T) {
	src := t.TempDir()
	b := &fakeRebuilder{}
	p := New(b, Options{
		Dirs:      []string{src, filepath.Join(src, "missing")},
		OutputDir: t.TempDir(),
		Addr:      "127.0.0.1:0",
		Debounce:  20 * time.Millisecond,
		Logger:    quietLogger(),
	})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return b.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(src, ".hidden.swp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "2024-01-01-new.md"), []byte("---\ntitle: x\n---\n"), 0o644))
	require.Eventually(t, func() bool { return b.count() == 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
