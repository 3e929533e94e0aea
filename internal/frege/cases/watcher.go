package cases

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/pkg/core/logging"
)

// DefaultDebounce collapses the burst of events an editor produces on save
const DefaultDebounce = 500 * time.Millisecond

// Watcher reruns a callback whenever case files below a path change
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *logging.Logger
}

// NewWatcher creates a watcher for a case file or directory
func NewWatcher(path string) *Watcher {
	return &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		logger:   logging.New("cases"),
	}
}

// SetDebounce overrides the quiet period before onChange fires
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Watch blocks until ctx is done and calls onChange once per burst of
// changes to YAML files. The directory is watched rather than the file so
// editors that replace the file on save are still seen.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	dir, target, err := w.resolve()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create file watcher").
			WithCode(mdwerror.CodeInternal).
			WithOperation("cases.Watch")
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return mdwerror.Wrap(err, "failed to watch case path").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("cases.Watch").
			WithDetail("path", dir)
	}
	w.logger.Info("Watching case files", "path", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event, target) {
				continue
			}
			w.logger.Debug("Case file event", "file", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorWithErr("Watcher error", err)
		}
	}
}

// resolve returns the directory to watch and, for a single file, its name
func (w *Watcher) resolve() (dir, target string, err error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return "", "", mdwerror.Wrap(err, "case path not accessible").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("cases.Watch").
			WithDetail("path", w.path)
	}
	if info.IsDir() {
		return w.path, "", nil
	}
	return filepath.Dir(w.path), filepath.Clean(w.path), nil
}

func (w *Watcher) relevant(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if target != "" {
		return filepath.Clean(event.Name) == target
	}
	return isYAMLFile(event.Name)
}

// Watch is shorthand for NewWatcher(path).Watch(ctx, onChange)
func Watch(ctx context.Context, path string, onChange func()) error {
	return NewWatcher(path).Watch(ctx, onChange)
}
