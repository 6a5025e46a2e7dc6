package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/straja-ai/rakshak/internal/logging"
)

// DefaultDebounce coalesces the burst of events a model export produces.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a Registry when its model directory changes.
type Watcher struct {
	registry *Registry
	logger   logging.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher starts watching the registry's directory. Call Run to process
// events.
func NewWatcher(registry *Registry, logger logging.Logger, debounce time.Duration) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(registry.Dir()); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch model dir: %w", err)
	}
	return &Watcher{
		registry: registry,
		logger:   logger.With(logging.String("model_dir", registry.Dir())),
		debounce: debounce,
		watcher:  fw,
	}, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("model dir changed", logging.String("file", event.Name), logging.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("model dir watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	errs := w.registry.Reload()
	if len(errs) > 0 {
		w.logger.Warn("model reload finished with failures", logging.Int("failures", len(errs)))
	}
}
