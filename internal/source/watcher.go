package source

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
)

const (
	// DefaultDebounce is how long the watcher waits for writes to settle.
	DefaultDebounce = 250 * time.Millisecond
	// DefaultPollInterval is the fallback stat interval for missed events.
	DefaultPollInterval = time.Second
)

// Change reports that the watched file settled after being modified.
type Change struct {
	Path string
	Size int64
	// Truncated is set when the file shrank since the last change.
	Truncated bool
	// Replaced is set when the path now refers to a different file, as
	// after log rotation.
	Replaced bool
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the fallback stat interval.
func WithPollInterval(d time.Duration) WatchOption {
	return func(w *Watcher) { w.poll = d }
}

// Watcher reports settled modifications of one file. It watches the
// containing directory so that rotation and re-creation are seen, and
// polls the file size as a fallback for missed events.
type Watcher struct {
	path     string
	debounce time.Duration
	poll     time.Duration

	changes chan Change
	errs    chan error
	cancel  context.CancelFunc
	once    sync.Once
	stopped chan struct{}
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		poll:     DefaultPollInterval,
		changes:  make(chan Change, 16),
		errs:     make(chan error, 32),
		stopped:  make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Changes returns the channel of settled changes.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Errors returns the channel of non-fatal watch errors.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Start begins watching. It returns once the watch is established; events
// are delivered until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return eris.Wrapf(err, "source: resolve %s", w.path)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return eris.Wrapf(ErrUnreadable, "%s: %v", abs, err)
	}
	w.path = abs

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "source: create watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return eris.Wrapf(err, "source: watch directory %s", filepath.Dir(abs))
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go func() {
		defer close(w.stopped)
		defer close(w.changes)
		defer close(w.errs)
		defer fw.Close()
		w.loop(ctx, fw, info)
	}()
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, last os.FileInfo) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	settle := time.NewTimer(w.debounce)
	settle.Stop()
	defer settle.Stop()

	pending := false
	arm := func() {
		pending = true
		settle.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if abs, _ := filepath.Abs(event.Name); abs != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				arm()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.sendError(eris.Wrapf(err, "source: watch %s", w.path))

		case <-ticker.C:
			stat, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			if stat.Size() != last.Size() || !stat.ModTime().Equal(last.ModTime()) || !os.SameFile(stat, last) {
				arm()
			}

		case <-settle.C:
			if !pending {
				continue
			}
			pending = false
			stat, err := os.Stat(w.path)
			if err != nil {
				// Removed and not yet re-created: wait for the next event.
				continue
			}
			c := Change{
				Path:      w.path,
				Size:      stat.Size(),
				Truncated: stat.Size() < last.Size(),
				Replaced:  !os.SameFile(stat, last),
			}
			last = stat
			select {
			case w.changes <- c:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop cancels watching and waits for the watch goroutine to finish.
func (w *Watcher) Stop() error {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
	})
	if w.cancel != nil {
		<-w.stopped
	}
	return nil
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errs <- err:
	default:
	}
}
