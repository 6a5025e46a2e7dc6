package estimator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/straja-ai/rakshak/internal/logging"
)

// Registry publishes the current Set. Readers take a snapshot with Current
// and use it for the whole request; Reload swaps in a new generation
// atomically, so a request never sees a half-loaded set.
type Registry struct {
	dir     string
	opts    LoadOptions
	logger  logging.Logger
	current atomic.Pointer[Set]

	// retireAfter delays closing a replaced set so in-flight requests can
	// finish with it.
	retireAfter time.Duration

	reloadMu sync.Mutex
}

// NewRegistry returns a registry for dir. It holds an empty set until the
// first Reload.
func NewRegistry(dir string, opts LoadOptions) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	retire := opts.RetireAfter
	if retire <= 0 {
		retire = 30 * time.Second
	}
	r := &Registry{dir: dir, opts: opts, logger: logger, retireAfter: retire}
	empty := NewSet("")
	empty.Dir = dir
	r.current.Store(empty)
	return r
}

// NewStaticRegistry wraps a prebuilt set. Reload on it is a no-op.
func NewStaticRegistry(set *Set) *Registry {
	r := &Registry{logger: logging.NewNop()}
	r.current.Store(set)
	return r
}

// Dir is the watched model directory; empty for a static registry.
func (r *Registry) Dir() string { return r.dir }

// Current returns the active set. It is never nil.
func (r *Registry) Current() *Set {
	return r.current.Load()
}

// Reload loads a fresh set from disk and publishes it. The new set is
// published even when some artifacts fail; the returned errors describe
// them.
func (r *Registry) Reload() []error {
	if r.dir == "" {
		return nil
	}

	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	set, errs := Load(r.dir, r.opts)
	old := r.current.Swap(set)
	r.logger.Info("model set published",
		logging.String("version", set.Version),
		logging.Strings("loaded", set.Loaded()),
		logging.Int("failures", len(errs)),
	)

	if old != nil && old != set {
		r.retire(old)
	}
	return errs
}

func (r *Registry) retire(old *Set) {
	closeOld := func() {
		if err := old.Close(); err != nil {
			r.logger.Warn("close retired model set", logging.Error(err))
		}
	}
	if r.retireAfter <= 0 {
		closeOld()
		return
	}
	time.AfterFunc(r.retireAfter, closeOld)
}

// Close releases the active set.
func (r *Registry) Close() error {
	if set := r.current.Load(); set != nil {
		return set.Close()
	}
	return nil
}
