// Package preview implements watch mode: rebuild the site whenever content,
// templates or static files change and serve the result locally.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/pipeline"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
)

// DefaultDebounce is the quiet period after the last change before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// Rebuilder runs builds. *pipeline.Orchestrator implements it.
type Rebuilder interface {
	Handle(ctx context.Context, ev trigger.PushEvent) (*pipeline.Result, error)
	MainBranch() string
}

// Options configure a Preview.
type Options struct {
	// Dirs are watched recursively. Missing directories are skipped.
	Dirs []string
	// OutputDir is the published site served over HTTP.
	OutputDir string
	Addr      string
	Debounce  time.Duration
	Logger    *slog.Logger
}

// Preview watches sources and serves the rebuilt site.
type Preview struct {
	builder Rebuilder
	opts    Options
	logger  *slog.Logger
	status  buildStatus
	rebuild chan struct{}
}

// New returns a Preview.
func New(b Rebuilder, opts Options) *Preview {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Preview{builder: b, opts: opts, logger: opts.Logger, rebuild: make(chan struct{}, 1)}
}

// buildStatus tracks the current build state for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastBuild    string
	hasGoodBuild bool
	builds       int
}

func (bs *buildStatus) record(res *pipeline.Result, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	if res != nil {
		bs.lastBuild = res.BuildID
	}
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

type statusResponse struct {
	Builds       int    `json:"builds"`
	LastBuild    string `json:"last_build,omitempty"`
	Error        string `json:"error,omitempty"`
	HasGoodBuild bool   `json:"has_good_build"`
}

func (bs *buildStatus) snapshot() statusResponse {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	resp := statusResponse{Builds: bs.builds, LastBuild: bs.lastBuild, HasGoodBuild: bs.hasGoodBuild}
	if bs.lastError != nil {
		resp.Error = bs.lastError.Error()
	}
	return resp
}

// Build runs one rebuild and records its outcome.
func (p *Preview) Build(ctx context.Context) error {
	res, err := p.builder.Handle(ctx, trigger.Manual(p.builder.MainBranch(), trigger.SourceWatch))
	p.status.record(res, err)
	if err != nil {
		p.logger.Warn("Rebuild failed; serving the previous site", logfields.Error(err))
		return err
	}
	return nil
}

// Handler serves the output directory and a JSON build status at /_preview/status.
func (p *Preview) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /_preview/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p.status.snapshot())
	})
	files := http.FileServer(http.Dir(p.opts.OutputDir))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		if s := p.status.snapshot(); s.Error != "" {
			w.Header().Set("X-Build-Error", strings.ReplaceAll(s.Error, "\n", " "))
		}
		files.ServeHTTP(w, r)
	}))
	return mux
}

// Run builds once, then watches and serves until ctx is canceled.
func (p *Preview) Run(ctx context.Context) error {
	if err := p.Build(ctx); err != nil {
		p.logger.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := p.newWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	ln, err := net.Listen("tcp", p.opts.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to listen").
			WithContext("addr", p.opts.Addr).
			Build()
	}
	srv := &http.Server{Handler: p.Handler(), ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("Preview server failed", logfields.Error(err))
		}
	}()
	p.logger.Info("Preview server listening", logfields.URL(fmt.Sprintf("http://%s", ln.Addr())))

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		p.rebuildWorker(ctx)
	}()

	d := newDebouncer(p.opts.Debounce, p.requestRebuild)
	defer d.stop()
	p.watchLoop(ctx, watcher, d.trigger)

	p.logger.Info("Shutting down preview server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		p.logger.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	<-workerDone
	return nil
}

// requestRebuild coalesces requests: at most one rebuild is pending.
func (p *Preview) requestRebuild() {
	select {
	case p.rebuild <- struct{}{}:
	default:
	}
}

func (p *Preview) rebuildWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.rebuild:
			p.logger.Info("Change detected; rebuilding site")
			_ = p.Build(ctx)
		}
	}
}

func (p *Preview) newWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	for _, dir := range p.opts.Dirs {
		if dir == "" {
			continue
		}
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			p.logger.Debug("Not watching missing directory", logfields.Path(dir))
			continue
		}
		addDirsRecursive(watcher, dir, p.logger)
	}
	return watcher, nil
}

func (p *Preview) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, trigger func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if shouldIgnore(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirsRecursive(watcher, ev.Name, p.logger)
				}
			}
			p.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && shouldIgnore(path) {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnore reports whether a change to path should not trigger a rebuild:
// hidden files, editor swap and backup files, and OS metadata files.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db", base == "4913":
		return true
	}
	return false
}
