package dev

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vango-dev/agreed/internal/errors"
	"github.com/vango-dev/agreed/pkg/fstree"
)

// WatchMode names the change source of a session.
type WatchMode string

const (
	ModeNotify WatchMode = "fsnotify"
	ModePoll   WatchMode = "poll"
)

// WatchOptions configures a watch session.
type WatchOptions struct {
	// Roots are the directories to watch (views and models).
	Roots []string

	// Ignore patterns, added to fstree.DefaultIgnore.
	Ignore []string

	// Exclude lists artifact paths. Changes to them, their temp files and
	// their backups are ignored.
	Exclude []string

	// Debounce is the quiet window. Zero uses DefaultDebounce.
	Debounce time.Duration

	// Poll forces the polling watcher.
	Poll bool

	// PollInterval is the polling period. Zero uses DefaultPollInterval.
	PollInterval time.Duration

	// Rebuild runs a build pass. Required.
	Rebuild RebuildFunc

	// OnRebuild is called after every rebuild.
	OnRebuild func(RebuildEvent)

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics may be nil.
	Metrics *Metrics
}

// Session is a running watch session.
type Session struct {
	coord *Coordinator
	mode  WatchMode

	stopWatch func()
	stopOnce  sync.Once
}

// Watch starts watching opts.Roots and rebuilding on change. It uses OS
// notifications and falls back to polling when they cannot be set up. The
// session ends when ctx is done or Stop is called.
func Watch(ctx context.Context, opts WatchOptions) (*Session, error) {
	if opts.Rebuild == nil {
		return nil, fmt.Errorf("dev: WatchOptions.Rebuild is required")
	}
	if len(opts.Roots) == 0 {
		return nil, errors.New("E207").WithDetail("No directories to watch")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	roots := make([]string, 0, len(opts.Roots))
	for _, r := range opts.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, errors.New("E207").Wrap(err).WithLocation(r, 0)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.New("E207").Wrap(err).WithLocation(r, 0).WithDetail(err.Error())
		}
		if !info.IsDir() {
			return nil, errors.New("E207").WithLocation(r, 0).WithDetail("not a directory")
		}
		roots = append(roots, abs)
	}

	filter := pathFilter{matcher: fstree.NewIgnoreMatcher(fstree.DefaultIgnore, opts.Ignore)}
	for _, ex := range opts.Exclude {
		if abs, err := filepath.Abs(ex); err == nil {
			filter.exclude = append(filter.exclude, abs)
		}
	}

	coord := NewCoordinator(CoordinatorOptions{
		Debounce:  opts.Debounce,
		Rebuild:   opts.Rebuild,
		OnRebuild: opts.OnRebuild,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	})
	s := &Session{coord: coord}

	if !opts.Poll {
		fw, err := newFSWatcher(roots, filter, coord.Notify, opts.Logger)
		if err == nil {
			s.mode = ModeNotify
			s.stopWatch = fw.close
			go fw.run()
		} else {
			opts.Logger.Warn("file notifications unavailable, polling", "error", err)
		}
	}
	if s.stopWatch == nil {
		p := newPoller(roots, opts.PollInterval, filter, coord.Notify)
		s.mode = ModePoll
		s.stopWatch = p.Stop
		go p.Start(ctx)
	}

	coord.Start(ctx)
	go func() {
		select {
		case <-ctx.Done():
		case <-coord.done:
		}
		s.Stop()
	}()

	opts.Logger.Info("watching", "roots", roots, "mode", string(s.mode))
	return s, nil
}

// Mode returns the change source in use.
func (s *Session) Mode() WatchMode {
	return s.mode
}

// State returns the coordinator state.
func (s *Session) State() State {
	return s.coord.State()
}

// Notify injects a change notification, as if path had changed on disk.
func (s *Session) Notify(path string) {
	s.coord.Notify(path)
}

// Stop ends the session. It waits for an in-flight rebuild to finish and
// drops any pending one. Stop is idempotent.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.stopWatch()
	})
	s.coord.Stop()
}
