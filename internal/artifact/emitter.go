package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Status is the outcome of an emit.
type Status int

const (
	// StatusWritten means the artifact was (re)written.
	StatusWritten Status = iota

	// StatusUnchanged means the generated text matched and nothing was written.
	StatusUnchanged
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// EmitResult describes a completed emit.
type EmitResult struct {
	Status Status
	Path   string
	Hash   string

	// Backup is the path a legacy file was copied to, if any.
	Backup string
}

// EmitIOError reports a failed filesystem operation. The target is left as it
// was before the emit.
type EmitIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *EmitIOError) Error() string {
	return fmt.Sprintf("artifact: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *EmitIOError) Unwrap() error {
	return e.Err
}

// Emitter writes artifacts. It performs no locking: callers must not emit to
// the same target concurrently.
type Emitter struct {
	opts   Options
	logger *slog.Logger
}

// NewEmitter creates an emitter. A nil logger uses slog.Default().
func NewEmitter(opts Options, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{opts: opts, logger: logger}
}

// Render returns the full artifact for target as Emit would write it, merged
// with the manual region of the existing file. It never writes.
func (e *Emitter) Render(target string, c Content) ([]byte, string, error) {
	generated, err := Render(target, c, e.opts)
	if err != nil {
		return nil, "", err
	}
	manual := ""
	if existing, err := os.ReadFile(target); err == nil {
		if doc, err := Parse(existing); err == nil {
			manual = doc.Manual
		}
	}
	return Compose(generated, manual), Hash(generated), nil
}

// Emit renders c and writes it to target, preserving the manual region of an
// existing artifact. The write is skipped when the existing generated text
// hashes to the same value. A non-empty existing file without well-formed
// markers is copied to a .bak sibling first.
func (e *Emitter) Emit(target string, c Content) (*EmitResult, error) {
	generated, err := Render(target, c, e.opts)
	if err != nil {
		return nil, err
	}
	hash := Hash(generated)
	result := &EmitResult{Path: target, Hash: hash}

	perm := fs.FileMode(0644)
	manual := ""

	existing, err := os.ReadFile(target)
	switch {
	case err == nil:
		if info, statErr := os.Stat(target); statErr == nil {
			perm = info.Mode().Perm()
		}
		if len(bytes.TrimSpace(existing)) == 0 {
			break
		}

		doc, parseErr := Parse(existing)
		if parseErr != nil {
			backup, err := writeBackup(target, existing, perm)
			if err != nil {
				return nil, err
			}
			result.Backup = backup
			e.logger.Warn("legacy artifact backed up",
				"path", target,
				"backup", backup,
				"reason", parseErr.Error(),
			)
			break
		}

		if doc.Hash == hash {
			result.Status = StatusUnchanged
			return result, nil
		}
		manual = doc.Manual
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, &EmitIOError{Op: "read", Path: target, Err: err}
	}

	if err := WriteAtomic(target, Compose(generated, manual), perm); err != nil {
		return nil, err
	}

	result.Status = StatusWritten
	e.logger.Debug("artifact written", "path", target, "hash", hash)
	return result, nil
}

// writeBackup copies data to target.bak, or target.bak.N for the first free N.
func writeBackup(target string, data []byte, perm fs.FileMode) (string, error) {
	for n := 0; ; n++ {
		name := target + ".bak"
		if n > 0 {
			name = fmt.Sprintf("%s.bak.%d", target, n)
		}

		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", &EmitIOError{Op: "backup", Path: name, Err: err}
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(name)
			return "", &EmitIOError{Op: "backup", Path: name, Err: err}
		}
		if err := f.Close(); err != nil {
			os.Remove(name)
			return "", &EmitIOError{Op: "backup", Path: name, Err: err}
		}
		return name, nil
	}
}

// TempPattern is the pattern of temporary files created next to artifacts.
const TempPattern = ".*.agreed-tmp-*"

// WriteAtomic writes data to a temporary file in path's directory, syncs it,
// and renames it over path. On failure the temporary file is removed and path
// is untouched.
func WriteAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &EmitIOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".agreed-tmp-*")
	if err != nil {
		return &EmitIOError{Op: "create temp", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &EmitIOError{Op: op, Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &EmitIOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &EmitIOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
