// Package imagesrc turns image content descriptors into loadable URLs.
//
// Each image component owns one state machine,
//
//	Idle -> Resolving -> Resolved(url) | Failed
//
// driven by an ordered chain of candidate URLs (see [Chain.Candidates]).
// Attempts run in the background and commit their result only if no newer
// attempt for the same component has started since; a late result from a
// superseded or forgotten attempt is discarded.
package imagesrc

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-drift/bannerkit/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// State is a component's resolution state.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateResolved
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Status is a snapshot of one component's state machine.
type Status struct {
	State      State
	URL        string
	Strategy   Strategy
	Info       ImageInfo
	Err        error
	Generation uint64
}

// ErrExhausted reports that every candidate failed to load.
var ErrExhausted = stderrors.New("imagesrc: all image sources failed")

// Options configures a Resolver.
type Options struct {
	Chain  Chain
	Loader Loader
	// Concurrency bounds the loads in flight across Request and Prefetch;
	// 0 means 4.
	Concurrency int
	Reporter    errors.Reporter
	// OnChange is called after a background attempt commits. It runs on the
	// attempt's goroutine, outside the resolver lock.
	OnChange func(id string, st Status)
}

type entry struct {
	status Status
	key    string
	src    Source
	cancel context.CancelFunc
}

// Resolver owns the per-component state machines of one rendering session.
type Resolver struct {
	opts Options

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
	wg      sync.WaitGroup
	loads   *semaphore.Weighted
}

// NewResolver returns a resolver. A nil Loader fails every candidate.
func NewResolver(opts Options) *Resolver {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Resolver{
		opts:    opts,
		entries: make(map[string]*entry),
		loads:   semaphore.NewWeighted(int64(opts.Concurrency)),
	}
}

// Chain returns the candidate chain the resolver uses.
func (r *Resolver) Chain() *Chain { return &r.opts.Chain }

// Status returns the current status of id. Unknown ids are Idle.
func (r *Resolver) Status(id string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e.status
	}
	return Status{State: StateIdle}
}

// Request ensures an attempt exists for id and src and returns the current
// status. If a previous attempt for the same source is in progress or done,
// it is left alone; a changed source supersedes it.
//
// The attempt runs in the background and ignores ctx's cancellation; only
// Forget, Retain and Reset cancel it.
func (r *Resolver) Request(ctx context.Context, id string, src Source) Status {
	st, cands, gen, attemptCtx, started := r.begin(context.WithoutCancel(ctx), id, src)
	if !started {
		return st
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if st, ok := r.attempt(attemptCtx, id, gen, cands); ok && r.opts.OnChange != nil {
			r.opts.OnChange(id, st)
		}
	}()
	return st
}

// Request pairs a component id with its source for Prefetch.
type Request struct {
	ID     string
	Source Source
}

// Prefetch resolves a batch synchronously with bounded concurrency and
// returns once every attempt has settled. Only context cancellation is
// returned as an error; per-image failures are recorded as Failed states,
// and attempts cut short by cancellation go back to Idle.
func (r *Resolver) Prefetch(ctx context.Context, reqs []Request) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for _, req := range reqs {
		g.Go(func() error {
			_, cands, gen, attemptCtx, started := r.begin(gctx, req.ID, req.Source)
			if started {
				r.attempt(attemptCtx, req.ID, gen, cands)
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Wait blocks until every background attempt has finished.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

// Forget drops id. A pending attempt for it becomes a no-op.
func (r *Resolver) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forgetLocked(id)
}

// Retain forgets every id for which keep returns false.
func (r *Resolver) Retain(keep func(id string) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.entries {
		if !keep(id) {
			r.forgetLocked(id)
		}
	}
}

// ForgetBlob forgets every id whose source refers to the blob id, so the next
// pass resolves it again against the registry.
func (r *Resolver) ForgetBlob(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for eid, e := range r.entries {
		if e.src.NamesBlob(id) {
			r.forgetLocked(eid)
		}
	}
}

// Reset forgets every id.
func (r *Resolver) Reset() {
	r.Retain(func(string) bool { return false })
}

func (r *Resolver) forgetLocked(id string) {
	if e, ok := r.entries[id]; ok {
		if e.cancel != nil {
			e.cancel()
		}
		delete(r.entries, id)
	}
}

// begin moves id to Resolving for src, unless an attempt for the same
// source already exists. Sources without candidates resolve immediately to
// the placeholder.
func (r *Resolver) begin(ctx context.Context, id string, src Source) (Status, []Candidate, uint64, context.Context, bool) {
	key := src.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok && e.key == key && e.status.State != StateIdle {
		return e.status, nil, 0, nil, false
	}
	r.forgetLocked(id)
	r.gen++
	gen := r.gen

	cands := r.opts.Chain.Candidates(src)
	if len(cands) == 0 {
		st := Status{State: StateResolved, URL: PlaceholderURL, Strategy: StrategyPlaceholder, Generation: gen}
		r.entries[id] = &entry{status: st, key: key, src: src}
		return st, nil, gen, nil, false
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	st := Status{State: StateResolving, Generation: gen}
	r.entries[id] = &entry{status: st, key: key, src: src, cancel: cancel}
	return st, cands, gen, attemptCtx, true
}

// attempt runs a started attempt once a load slot is free. A panicking
// loader is reported through the resolver's reporter and fails the attempt.
func (r *Resolver) attempt(ctx context.Context, id string, gen uint64, cands []Candidate) (st Status, ok bool) {
	defer errors.RecoverNode(r.opts.Reporter, "imagesrc.attempt", id, func(v any) {
		st, ok = r.commit(id, gen, Status{
			State:      StateFailed,
			Err:        fmt.Errorf("%w: loader panic: %v", ErrExhausted, v),
			Generation: gen,
		})
	})
	if err := r.loads.Acquire(ctx, 1); err != nil {
		return r.abandon(id, gen)
	}
	defer r.loads.Release(1)
	return r.run(ctx, id, gen, cands)
}

// run tries each candidate in order and commits the outcome. Cancellation
// abandons the attempt instead of failing it.
func (r *Resolver) run(ctx context.Context, id string, gen uint64, cands []Candidate) (Status, bool) {
	var errs []error
	for _, c := range cands {
		if ctx.Err() != nil {
			return r.abandon(id, gen)
		}
		info, err := r.load(ctx, c.URL)
		if err == nil {
			return r.commit(id, gen, Status{State: StateResolved, URL: c.URL, Strategy: c.Strategy, Info: info, Generation: gen})
		}
		if ctx.Err() != nil {
			return r.abandon(id, gen)
		}
		errs = append(errs, fmt.Errorf("%s: %w", c.Strategy, err))
	}
	err := fmt.Errorf("%w: %w", ErrExhausted, stderrors.Join(errs...))
	st, ok := r.commit(id, gen, Status{State: StateFailed, Err: err, Generation: gen})
	if ok {
		r.opts.Reporter.Report(&errors.BannerError{
			Op:     "imagesrc.resolve",
			Kind:   errors.KindImageResolutionFailure,
			NodeID: id,
			Err:    err,
		})
	}
	return st, ok
}

func (r *Resolver) load(ctx context.Context, url string) (ImageInfo, error) {
	if r.opts.Loader == nil {
		return ImageInfo{}, ErrUnsupportedScheme
	}
	return r.opts.Loader.Load(ctx, url)
}

// abandon drops id back to Idle if gen is still its current attempt, so the
// next Request starts over. Nothing is reported.
func (r *Resolver) abandon(id string, gen uint64) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok && e.status.Generation == gen {
		r.forgetLocked(id)
	}
	return Status{State: StateIdle}, false
}

// commit stores st if gen is still the current attempt for id.
func (r *Resolver) commit(id string, gen uint64, st Status) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.status.Generation != gen {
		return st, false
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.status = st
	return st, true
}
