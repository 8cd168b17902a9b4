package dev

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vango-dev/agreed/pkg/fstree"
)

// pathFilter decides which paths produce change notifications.
type pathFilter struct {
	matcher *fstree.IgnoreMatcher

	// exclude holds artifact paths. The artifact, its temp files and its
	// backups never trigger a rebuild.
	exclude []string
}

// ignored reports whether path, found under root, should be skipped.
func (f pathFilter) ignored(root, path string) bool {
	if f.excluded(path) {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return f.matcher.Match(filepath.ToSlash(rel))
}

func (f pathFilter) excluded(path string) bool {
	for _, artifact := range f.exclude {
		if isArtifactFile(path, artifact) {
			return true
		}
	}
	return false
}

// isArtifactFile reports whether path is artifact or one of its temp files
// or backups.
func isArtifactFile(path, artifact string) bool {
	if path == artifact {
		return true
	}
	if filepath.Dir(path) != filepath.Dir(artifact) {
		return false
	}
	base, name := filepath.Base(path), filepath.Base(artifact)
	return strings.HasPrefix(base, name+".bak") ||
		strings.HasPrefix(base, "."+name+".agreed-tmp-")
}

// fsWatcher forwards fsnotify events for a set of directory trees.
type fsWatcher struct {
	w      *fsnotify.Watcher
	roots  []string
	filter pathFilter
	notify func(string)
	logger *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// newFSWatcher watches every directory under roots. fsnotify is not
// recursive, so directories created later are added as they appear.
func newFSWatcher(roots []string, filter pathFilter, notify func(string), logger *slog.Logger) (*fsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fsWatcher{
		w:      w,
		roots:  roots,
		filter: filter,
		notify: notify,
		logger: logger,
		done:   make(chan struct{}),
	}
	for _, root := range roots {
		if err := fw.addTree(root, root); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

// addTree adds dir and every non-ignored directory below it.
func (fw *fsWatcher) addTree(root, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && fw.filter.ignored(root, path) {
			return filepath.SkipDir
		}
		return fw.w.Add(path)
	})
}

// rootOf returns the watched root containing path.
func (fw *fsWatcher) rootOf(path string) string {
	best := ""
	for _, root := range fw.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	return best
}

// run forwards events until close is called.
func (fw *fsWatcher) run() {
	for {
		select {
		case <-fw.done:
			return
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			fw.handle(ev)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", "error", err)
		}
	}
}

func (fw *fsWatcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}
	root := fw.rootOf(ev.Name)
	if root == "" || (ev.Name != root && fw.filter.ignored(root, ev.Name)) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if err := fw.addTree(root, ev.Name); err != nil {
			fw.logger.Debug("watch add failed", "path", ev.Name, "error", err)
		}
	}
	fw.notify(ev.Name)
}

func (fw *fsWatcher) close() {
	fw.stopOnce.Do(func() {
		close(fw.done)
		fw.w.Close()
	})
}
