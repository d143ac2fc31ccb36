// Package watcher re-runs the provisioning pipeline when the entries
// file changes on disk. It watches the parent directory (atomic saves
// replace the inode) and gates callbacks on a checksum change so editor
// noise does not trigger redundant runs.
package watcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kazz187/repoguild/pkg/panicerr"
)

// DebounceInterval is the settling delay after a filesystem event before
// the checksum is recomputed.
const DebounceInterval = 100 * time.Millisecond

// Watcher invokes a callback whenever the watched file's content changes.
type Watcher struct {
	path     string
	lastHash [sha256.Size]byte
	onChange func(context.Context) error
}

// New creates a watcher for path. onChange runs on the watcher's
// goroutine; overlapping changes wait for the current run to finish.
func New(path string, onChange func(context.Context) error) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	hash, err := HashFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return &Watcher{
		path:     abs,
		lastHash: hash,
		onChange: panicerr.SafeContext(onChange),
	}, nil
}

// Watch blocks until the context is canceled, re-running the callback on
// every content change of the watched file.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the parent directory, not the file itself: atomic saves
	// (write temp, rename) change the inode and a file watch would be
	// lost after the first replacement.
	watchDir := filepath.Dir(w.path)
	fileName := filepath.Base(w.path)
	if err := fsw.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchDir, err)
	}
	slog.InfoContext(ctx, "watching for changes", slog.String("path", w.path))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(DebounceInterval)
			debounceCh = debounce.C

		case <-debounceCh:
			debounceCh = nil
			hash, err := HashFile(w.path)
			if err != nil {
				slog.WarnContext(ctx, "failed to hash changed file",
					slog.String("path", w.path), slog.Any("error", err))
				continue
			}
			if hash == w.lastHash {
				continue
			}
			w.lastHash = hash
			slog.InfoContext(ctx, "entries file changed, re-applying",
				slog.String("path", w.path))
			if err := w.onChange(ctx); err != nil {
				slog.ErrorContext(ctx, "re-apply failed", slog.Any("error", err))
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

// HashFile computes the SHA256 checksum of a file.
func HashFile(path string) ([sha256.Size]byte, error) {
	var zero [sha256.Size]byte
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return zero, err
	}
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
