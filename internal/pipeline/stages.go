package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/cache"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/publish"
	"git.home.luguber.info/inful/blogbuilder/internal/render"
	"git.home.luguber.info/inful/blogbuilder/internal/workspace"
)

// build is the mutable state threaded through the stages of one build.
type build struct {
	res      *Result
	cacheKey string
	bundle   *cache.Bundle
	docs     []*content.Document
	tree     *render.Tree
	ws       *workspace.Workspace
}

func (b *build) cleanup(logger *slog.Logger) {
	if err := b.ws.Cleanup(); err != nil {
		logger.Warn("Failed to remove build workspace", logfields.BuildID(b.res.BuildID), logfields.Error(err))
	}
}

type stageDef struct {
	state State
	fn    func(ctx context.Context, b *build) error
}

func (o *Orchestrator) stages() []stageDef {
	return []stageDef{
		{StateCacheRestoring, o.stageRestoreCache},
		{StateRendering, o.stageRender},
		{StatePublishing, o.stagePublish},
	}
}

// runStages executes stages in order, recording timing and stopping on the first error.
func (o *Orchestrator) runStages(ctx context.Context, b *build, stages []stageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			err := ferrors.WrapError(ctx.Err(), ferrors.CategoryRuntime, "build canceled").
				WithContext("stage", st.state.String()).
				Build()
			o.deps.Metrics.IncStageResult(st.state.String(), metrics.ResultCanceled)
			o.fail(ctx, b, err)
			return err
		default:
		}

		o.transition(ctx, b, st.state)

		t0 := time.Now()
		err := st.fn(ctx, b)
		dur := time.Since(t0)

		b.res.StageDurations[st.state] = dur
		o.deps.Metrics.ObserveStageDuration(st.state.String(), dur)

		if err != nil {
			result := metrics.ResultFailed
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result = metrics.ResultCanceled
			}
			o.deps.Metrics.IncStageResult(st.state.String(), result)
			o.fail(ctx, b, err)
			return err
		}
		o.deps.Metrics.IncStageResult(st.state.String(), metrics.ResultSuccess)
	}
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, b *build, err error) {
	b.res.ErrorStage = b.res.State
	b.res.Err = err
	o.transition(ctx, b, StateFailed)
}

// stageRestoreCache never fails: a miss or unreachable store only costs latency.
func (o *Orchestrator) stageRestoreCache(ctx context.Context, b *build) error {
	b.cacheKey = cache.Key(o.readLockFile(), o.opts.CacheSalt...)
	if o.deps.Cache == nil {
		b.bundle = cache.NewBundle()
		return nil
	}
	var hit bool
	b.bundle, hit = o.deps.Cache.Restore(ctx, b.cacheKey)
	b.res.CacheHit = hit
	if hit {
		o.deps.Metrics.IncCacheResult("bundle", metrics.CacheHit, 1)
	} else {
		o.deps.Metrics.IncCacheResult("bundle", metrics.CacheMiss, 1)
	}
	return nil
}

func (o *Orchestrator) readLockFile() []byte {
	if o.opts.LockFile == "" {
		return nil
	}
	data, err := os.ReadFile(o.opts.LockFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			o.deps.Logger.Debug("Lock file not found, using empty cache key input", logfields.Path(o.opts.LockFile))
		} else {
			o.deps.Logger.Warn("Failed to read lock file", logfields.Path(o.opts.LockFile), logfields.Error(err))
		}
		return nil
	}
	return data
}

// stageRender loads every document, renders the site and writes it into a
// fresh workspace. Any error aborts the build before publishing.
func (o *Orchestrator) stageRender(ctx context.Context, b *build) error {
	docs, err := o.deps.Content.Load(ctx)
	if err != nil {
		return ferrors.WrapError(err, contentCategory(err), "content store rejected the article set").Build()
	}
	b.docs = docs
	b.res.Documents = len(docs)

	tree, err := o.deps.Renderer.Render(ctx, docs, b.bundle)
	if err != nil {
		return ferrors.WrapError(err, renderCategory(err), "failed to render site").Build()
	}
	b.tree = tree
	b.res.Pages = tree.Len()
	b.res.Digest = tree.Digest()

	hits, misses := b.bundle.Stats()
	o.deps.Metrics.IncCacheResult("body", metrics.CacheHit, hits)
	o.deps.Metrics.IncCacheResult("body", metrics.CacheMiss, misses)

	ws, err := o.deps.Workspaces.Create(b.res.BuildID)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create build workspace").Build()
	}
	b.ws = ws
	if err := tree.Write(ws.SiteDir); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write rendered site").
			WithContext("path", ws.SiteDir).
			Build()
	}
	o.deps.Logger.Info("Rendered site",
		logfields.BuildID(b.res.BuildID),
		logfields.Count(b.res.Pages),
		logfields.Path(ws.SiteDir))

	if err := o.deps.Cache.Save(ctx, b.cacheKey, b.bundle); err != nil {
		o.deps.Logger.Warn("Failed to save render cache", logfields.CacheKey(b.cacheKey), logfields.Error(err))
	}
	return nil
}

func (o *Orchestrator) stagePublish(ctx context.Context, b *build) error {
	name := o.deps.Publisher.Name()
	if err := o.deps.Publisher.Publish(ctx, b.ws.SiteDir); err != nil {
		category := ferrors.CategoryPublish
		if errors.Is(err, publish.ErrPublishAuth) {
			category = ferrors.CategoryAuth
		}
		return ferrors.WrapError(err, category, "failed to publish site").
			WithContext("publisher", name).
			Build()
	}
	o.deps.Logger.Info("Published site", logfields.BuildID(b.res.BuildID), logfields.Publisher(name))
	return nil
}

func contentCategory(err error) ferrors.ErrorCategory {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ferrors.CategoryRuntime
	}
	return ferrors.CategoryContent
}

func renderCategory(err error) ferrors.ErrorCategory {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return ferrors.CategoryRuntime
	case errors.Is(err, content.ErrMalformedMarkup):
		return ferrors.CategoryContent
	default:
		return ferrors.CategoryRender
	}
}
