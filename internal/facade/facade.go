// Package facade fronts the orchestrator for interactive callers. It
// debounces bursts of calls into one downstream invocation and degrades
// to a local spelling dictionary when the network is gone.
package facade

import (
	"context"
	"sync"
	"time"

	"github.com/quillworks/quill-gateway/internal/config"
	"github.com/quillworks/quill-gateway/internal/types"
)

const (
	// DefaultDelay is the quiet period a burst must survive before the
	// last request in it is dispatched.
	DefaultDelay = 500 * time.Millisecond

	defaultCallTimeout = 60 * time.Second
)

// Processor is the downstream pipeline entry point.
type Processor interface {
	Process(ctx context.Context, req *types.Request) (*types.Response, error)
}

// Connectivity reports whether network providers are reachable. A nil
// signal means "assume online".
type Connectivity interface {
	Online() bool
}

// Options tunes a Facade. Zero values take defaults.
type Options struct {
	Delay        time.Duration
	CallTimeout  time.Duration
	Connectivity Connectivity
}

// Facade coalesces rapid repeated calls into a single downstream
// Process invocation. All callers that joined the same quiet period
// receive the result of the last request submitted before it elapsed;
// earlier requests in the burst are superseded, their timers cleared.
//
// One logical queue per instance: interleaved different requests to the
// same Facade also coalesce. Callers needing independent debouncing per
// request type use separate instances.
type Facade struct {
	processor    Processor
	delay        time.Duration
	callTimeout  time.Duration
	connectivity Connectivity

	mu      sync.Mutex
	pending *pendingCall
}

// pendingCall is one quiet period's shared outcome. resp and err are
// written once before done closes; waiters read them only after.
type pendingCall struct {
	timer *time.Timer
	req   *types.Request
	done  chan struct{}
	resp  *types.Response
	err   error
}

// New wraps a processor in a debounced facade.
func New(p Processor, opts Options) *Facade {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &Facade{
		processor:    p,
		delay:        opts.Delay,
		callTimeout:  opts.CallTimeout,
		connectivity: opts.Connectivity,
	}
}

// NewFromConfig builds a facade from the orchestrator section of the
// service config. Hosts embedding the pipeline in-process use this
// instead of the HTTP surface, which leaves debouncing to its clients.
func NewFromConfig(p Processor, cfg config.OrchestratorConfig, conn Connectivity) *Facade {
	return New(p, Options{Delay: cfg.DebounceDelay, Connectivity: conn})
}

// Process joins the current quiet period (starting one if none is
// open), resets its timer, and blocks until the period elapses and the
// downstream call completes. Every waiter of the same period gets the
// same Response.
//
// When the connectivity signal reports offline, the request is answered
// immediately from the local misspelling dictionary with no debounce
// and no network activity.
func (f *Facade) Process(ctx context.Context, req *types.Request) (*types.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.connectivity != nil && !f.connectivity.Online() {
		return offlineResponse(req), nil
	}

	f.mu.Lock()
	p := f.pending
	switch {
	case p == nil:
		p = f.startPending(req)
	case p.timer.Stop():
		// Supersede: the latest request wins the slot, the clock
		// starts over.
		p.req = req
		p.timer.Reset(f.delay)
	default:
		// The timer went off while we held the lock, so that period
		// is already dispatching its own request. Rearming its timer
		// would run fire twice; this request opens a new period.
		p = f.startPending(req)
	}
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		// The period keeps running for the other waiters; this caller
		// just stops waiting for it.
		return nil, ctx.Err()
	case <-p.done:
		return p.resp, p.err
	}
}

// startPending opens a new quiet period. Caller holds f.mu.
func (f *Facade) startPending(req *types.Request) *pendingCall {
	p := &pendingCall{req: req, done: make(chan struct{})}
	p.timer = time.AfterFunc(f.delay, func() { f.fire(p) })
	f.pending = p
	return p
}

func (f *Facade) fire(p *pendingCall) {
	f.mu.Lock()
	if f.pending == p {
		f.pending = nil
	}
	req := p.req
	f.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), f.callTimeout)
	defer cancel()

	p.resp, p.err = f.processor.Process(ctx, req)
	close(p.done)
}
