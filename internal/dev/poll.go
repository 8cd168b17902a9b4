package dev

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultPollInterval is how often the polling watcher rescans its roots.
const DefaultPollInterval = 250 * time.Millisecond

// Poller detects changes by comparing modification times on an interval. It
// is the fallback when OS notifications are unavailable.
type Poller struct {
	roots    []string
	interval time.Duration
	filter   pathFilter
	notify   func(string)

	stopCh   chan struct{}
	stopOnce sync.Once

	mu         sync.Mutex
	started    bool
	timestamps map[string]time.Time
}

// newPoller creates a polling watcher over roots.
func newPoller(roots []string, interval time.Duration, filter pathFilter, notify func(string)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		roots:      roots,
		interval:   interval,
		filter:     filter,
		notify:     notify,
		stopCh:     make(chan struct{}),
		timestamps: make(map[string]time.Time),
	}
}

// Start scans the roots once and then polls until ctx is done or Stop is
// called. A poller that was stopped before Start returns immediately, and a
// poller runs at most once.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	p.mu.Unlock()

	select {
	case <-p.stopCh:
		return nil
	default:
	}

	// Initialize timestamps
	p.snapshot(func(string) {})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.checkForChanges()
		}
	}
}

// Stop stops the poller. It is safe to call before Start and more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// snapshot walks the roots, recording each file and calling changed for
// files that are new or modified since the last walk.
func (p *Poller) snapshot(changed func(string)) map[string]bool {
	seen := make(map[string]bool)
	for _, root := range p.roots {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if path != root && p.filter.ignored(root, path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}

			seen[path] = true
			p.mu.Lock()
			lastMod, exists := p.timestamps[path]
			p.timestamps[path] = info.ModTime()
			p.mu.Unlock()

			if !exists || info.ModTime().After(lastMod) {
				changed(path)
			}
			return nil
		})
	}
	return seen
}

// checkForChanges reports modified, created and deleted files.
func (p *Poller) checkForChanges() {
	var changes []string
	seen := p.snapshot(func(path string) {
		changes = append(changes, path)
	})

	// Also check for deleted files
	p.mu.Lock()
	for path := range p.timestamps {
		if !seen[path] {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				delete(p.timestamps, path)
				changes = append(changes, path)
			}
		}
	}
	p.mu.Unlock()

	for _, path := range changes {
		p.notify(path)
	}
}
