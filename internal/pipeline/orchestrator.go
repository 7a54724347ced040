package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogbuilder/internal/cache"
	"git.home.luguber.info/inful/blogbuilder/internal/content"
	"git.home.luguber.info/inful/blogbuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/publish"
	"git.home.luguber.info/inful/blogbuilder/internal/render"
	"git.home.luguber.info/inful/blogbuilder/internal/trigger"
	"git.home.luguber.info/inful/blogbuilder/internal/workspace"
)

// ContentLoader returns the complete, validated document set.
type ContentLoader interface {
	Load(ctx context.Context) ([]*content.Document, error)
}

// SiteRenderer renders a document set into a page tree.
type SiteRenderer interface {
	Render(ctx context.Context, docs []*content.Document, cache render.BodyCache) (*render.Tree, error)
}

// Deps are the collaborators of an Orchestrator. Content, Renderer and
// Publisher are required; the rest default to disabled or no-op versions.
type Deps struct {
	Content    ContentLoader
	Renderer   SiteRenderer
	Publisher  publish.Publisher
	Cache      *cache.Cache
	Workspaces *workspace.Manager
	History    eventstore.Store
	Metrics    metrics.Recorder
	Observer   StateObserver
	Logger     *slog.Logger
}

// Options are per-orchestrator build settings.
type Options struct {
	// MainBranch is the only branch whose pushes are built.
	MainBranch string
	// LockFile is hashed into the cache key. A missing file hashes as empty.
	LockFile string
	// CacheSalt lists renderer settings that change body HTML.
	CacheSalt []string
	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs builds one at a time.
type Orchestrator struct {
	deps Deps
	opts Options

	mu   sync.Mutex
	last *Result
	lmu  sync.RWMutex
}

// New validates deps and returns an Orchestrator.
func New(deps Deps, opts Options) (*Orchestrator, error) {
	switch {
	case deps.Content == nil:
		return nil, ferrors.ConfigError("pipeline requires a content store").Build()
	case deps.Renderer == nil:
		return nil, ferrors.ConfigError("pipeline requires a renderer").Build()
	case deps.Publisher == nil:
		return nil, ferrors.ConfigError("pipeline requires a publisher").Build()
	}
	if deps.Workspaces == nil {
		deps.Workspaces = workspace.NewManager("")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Observer == nil {
		deps.Observer = LogObserver{Logger: deps.Logger}
	}
	if opts.MainBranch == "" {
		opts.MainBranch = "main"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{deps: deps, opts: opts}, nil
}

// MainBranch returns the branch this orchestrator builds.
func (o *Orchestrator) MainBranch() string { return o.opts.MainBranch }

// Last returns the result of the most recent Handle call, or nil.
func (o *Orchestrator) Last() *Result {
	o.lmu.RLock()
	defer o.lmu.RUnlock()
	return o.last
}

// Handle runs one build for ev. Pushes to any ref other than the main branch
// are skipped and reported as Idle. The returned error is Result.Err: a
// classified error whose category tells content, render and publish
// failures apart. Failed builds are not retried.
func (o *Orchestrator) Handle(ctx context.Context, ev trigger.PushEvent) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	b := o.newBuild(ev)
	o.record(ctx, b.res.BuildID, eventstore.TypeBuildStarted, eventstore.BuildStarted{
		Trigger:    string(ev.Source),
		Ref:        ev.Ref,
		Commit:     ev.After,
		Repository: ev.Repository,
	})
	if !ev.IsBranch(o.opts.MainBranch) {
		b.res.Skipped = true
		o.finish(ctx, b)
		return b.res, nil
	}
	defer b.cleanup(o.deps.Logger)

	if err := o.runStages(ctx, b, o.stages()); err != nil {
		b.res.Err = err
	} else {
		o.transition(ctx, b, StateDone)
	}
	o.finish(ctx, b)
	return b.res, b.res.Err
}

func (o *Orchestrator) newBuild(ev trigger.PushEvent) *build {
	id := ev.BuildID
	if id == "" {
		id = uuid.NewString()
	}
	return &build{
		res: &Result{
			BuildID:        id,
			Trigger:        ev.Source,
			Ref:            ev.Ref,
			Commit:         ev.After,
			State:          StateIdle,
			StartedAt:      o.opts.Now(),
			Transitions:    []State{StateIdle},
			StageDurations: make(map[State]time.Duration),
		},
	}
}

// transition moves the build to state to and reports it everywhere.
func (o *Orchestrator) transition(ctx context.Context, b *build, to State) {
	from := b.res.State
	if !CanTransition(from, to) {
		o.deps.Logger.Error("Illegal build state transition",
			logfields.BuildID(b.res.BuildID), logfields.FromState(from.String()), logfields.State(to.String()))
		return
	}
	b.res.State = to
	b.res.Transitions = append(b.res.Transitions, to)
	o.deps.Observer.OnTransition(b.res.BuildID, from, to)
	o.deps.Metrics.IncStateTransition(from.String(), to.String())
	o.record(ctx, b.res.BuildID, eventstore.TypeBuildTransition, eventstore.BuildTransition{
		From: from.String(),
		To:   to.String(),
	})
}

func (o *Orchestrator) finish(ctx context.Context, b *build) {
	res := b.res
	res.Duration = o.opts.Now().Sub(res.StartedAt)

	outcome := metrics.BuildOutcomeDone
	switch {
	case res.Skipped:
		outcome = metrics.BuildOutcomeSkipped
	case res.Err != nil:
		outcome = metrics.BuildOutcomeFailed
	default:
		o.deps.Metrics.SetRenderedPages(res.Pages)
	}
	o.deps.Metrics.IncBuildOutcome(outcome)
	o.deps.Metrics.ObserveBuildDuration(res.Duration)

	fin := eventstore.BuildFinished{
		State:      res.State.String(),
		Skipped:    res.Skipped,
		Documents:  res.Documents,
		Pages:      res.Pages,
		Digest:     res.Digest,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		fin.Error = res.Err.Error()
		fin.ErrorStage = res.ErrorStage.String()
	}
	o.record(ctx, res.BuildID, eventstore.TypeBuildFinished, fin)

	o.deps.Observer.OnBuildComplete(res)

	o.lmu.Lock()
	o.last = res
	o.lmu.Unlock()
}

// record appends a history event. History is best effort and outlives
// cancellation of the build context.
func (o *Orchestrator) record(ctx context.Context, buildID string, typ eventstore.EventType, payload any) {
	if o.deps.History == nil {
		return
	}
	ev, err := eventstore.NewEvent(buildID, typ, o.opts.Now(), payload)
	if err == nil {
		err = o.deps.History.Append(context.WithoutCancel(ctx), ev)
	}
	if err != nil {
		o.deps.Logger.Warn("Failed to record build history",
			logfields.BuildID(buildID), logfields.Event(string(typ)), logfields.Error(err))
	}
}
