package dev

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/agreed/internal/build"
)

// DefaultDebounce is the quiet window before a rebuild starts.
const DefaultDebounce = 200 * time.Millisecond

// notifyBuffer bounds queued change notifications. When it is full a rebuild
// is already guaranteed, so further notifications are dropped.
const notifyBuffer = 64

// State is the coordinator state.
type State int

const (
	// StateIdle means no change is pending.
	StateIdle State = iota

	// StateDebouncing means a change arrived and the debounce timer runs.
	StateDebouncing

	// StateBuilding means a rebuild is in flight.
	StateBuilding

	// StatePendingRebuild means the timer fired during a rebuild; another
	// rebuild starts as soon as the current one finishes.
	StatePendingRebuild

	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateBuilding:
		return "building"
	case StatePendingRebuild:
		return "pending_rebuild"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RebuildFunc runs one build pass.
type RebuildFunc func(ctx context.Context) (*build.Result, error)

// RebuildEvent reports a finished rebuild.
type RebuildEvent struct {
	// Result is the build result. It may be nil when Err is set.
	Result *build.Result

	// Err is the build error. The previous artifact is still in place.
	Err error

	// Changes is the number of notifications coalesced into this rebuild.
	Changes int

	// Duration is the wall time of the rebuild.
	Duration time.Duration
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	// Debounce is the quiet window. Zero uses DefaultDebounce.
	Debounce time.Duration

	// Rebuild runs a build pass. Required.
	Rebuild RebuildFunc

	// OnRebuild is called from the coordinator goroutine after every rebuild.
	// It may call Stop; Stop then returns without waiting for the loop.
	OnRebuild func(RebuildEvent)

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *Metrics
}

type buildOutcome struct {
	result   *build.Result
	err      error
	changes  int
	duration time.Duration
}

// Coordinator debounces change notifications and runs at most one rebuild at
// a time. All state transitions happen on a single goroutine; Notify only
// enqueues.
type Coordinator struct {
	opts CoordinatorOptions

	events   chan string
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	// inCallback is set while OnRebuild runs on the run goroutine.
	inCallback atomic.Bool

	mu    sync.RWMutex
	state State
}

// NewCoordinator creates a coordinator. Call Start to begin processing.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Coordinator{
		opts:   opts,
		events: make(chan string, notifyBuffer),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the coordinator until Stop is called or ctx is done. Rebuilds
// receive a context that is not canceled by ctx so that a write in flight
// always completes.
func (c *Coordinator) Start(ctx context.Context) {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return
	}
	c.started = true

	go c.run(context.WithoutCancel(ctx))
	go func() {
		select {
		case <-ctx.Done():
			c.Stop()
		case <-c.done:
		}
	}()
}

// Notify reports a change to path. It never blocks.
func (c *Coordinator) Notify(path string) {
	select {
	case <-c.stopCh:
		return
	default:
	}

	select {
	case c.events <- path:
	default:
		c.opts.Metrics.dropped()
	}
}

// Stop stops the coordinator. It waits for an in-flight rebuild and drops
// any pending one. Stop is idempotent and safe to call concurrently. From
// inside OnRebuild it only signals the loop, which exits once the callback
// returns.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})

	c.startMu.Lock()
	started := c.started
	c.startMu.Unlock()
	if !started {
		c.setState(StateStopped)
		return
	}
	if c.inCallback.Load() {
		return
	}
	<-c.done
}

func (c *Coordinator) stopping() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.opts.Metrics.setState(s)
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)

	var (
		timer    *time.Timer
		timerC   <-chan time.Time
		building bool
		pending  bool
		changes  int
		results  = make(chan buildOutcome, 1)
	)

	startBuild := func() {
		building = true
		n := changes
		changes = 0
		c.setState(StateBuilding)
		go func() {
			start := time.Now()
			result, err := c.opts.Rebuild(ctx)
			results <- buildOutcome{result: result, err: err, changes: n, duration: time.Since(start)}
		}()
	}

	for {
		select {
		case <-c.stopCh:
			if timer != nil {
				timer.Stop()
			}
			if building {
				c.report(<-results)
			}
			if pending {
				c.opts.Logger.Debug("pending rebuild dropped on stop")
			}
			c.setState(StateStopped)
			return

		case path := <-c.events:
			changes++
			c.opts.Metrics.event()
			c.opts.Logger.Debug("change", "path", path)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(c.opts.Debounce)
			timerC = timer.C
			if !building {
				c.setState(StateDebouncing)
			}

		case <-timerC:
			timerC = nil
			if building {
				pending = true
				c.setState(StatePendingRebuild)
				continue
			}
			startBuild()

		case out := <-results:
			building = false
			c.report(out)

			switch {
			case c.stopping():
				// The stop case runs on the next iteration.
			case pending:
				pending = false
				startBuild()
			case timerC != nil:
				c.setState(StateDebouncing)
			default:
				c.setState(StateIdle)
			}
		}
	}
}

func (c *Coordinator) report(out buildOutcome) {
	c.opts.Metrics.rebuild(out.err, out.duration)
	if out.err != nil {
		c.opts.Logger.Warn("rebuild failed", "error", out.err, "changes", out.changes)
	} else {
		c.opts.Logger.Debug("rebuild complete", "changes", out.changes, "duration", out.duration)
	}
	if c.opts.OnRebuild != nil {
		c.inCallback.Store(true)
		defer c.inCallback.Store(false)
		c.opts.OnRebuild(RebuildEvent{
			Result:   out.result,
			Err:      out.err,
			Changes:  out.changes,
			Duration: out.duration,
		})
	}
}
