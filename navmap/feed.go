package navmap

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

var (
	// ErrFeedNotStarted is returned when the latest map is requested from a
	// feed that was never started.
	ErrFeedNotStarted = errors.New("nav map feed has not been started")

	// ErrFeedTerminated is returned when the latest map is requested after
	// the underlying update stream has ended and no snapshot was published.
	// The stream's failure reason, if any, is available from Err.
	ErrFeedTerminated = errors.New("nav map feed has terminated")
)

// UpdateStream delivers successive navigation map updates in receipt order.
// Recv blocks until the next message arrives, the stream's context is
// canceled, or the transport fails.
type UpdateStream interface {
	Recv() (*Update, error)
}

// UpdateSource is the transport-side boundary that opens a navigation map
// update stream. frequencyHz is the update rate requested of the robot; the
// robot is free to send updates less often when the map has not changed.
type UpdateSource interface {
	NavMapFeed(ctx context.Context, frequencyHz float32) (UpdateStream, error)
}

// Feed consumes a navigation map update stream, reconstructing a fresh Grid
// from each message. The newest complete Grid is always available from
// LatestMap, and each one is also published to subscribers. Grids are
// replaced whole, never patched, so a reader holding a Grid reference is
// never exposed to a partially built tree.
type Feed struct {
	source UpdateSource
	logger golog.Logger

	mu           sync.Mutex
	streamCancel context.CancelFunc
	running      bool
	started      bool
	streamErr    error
	ready        chan struct{} // per run, closed on the first published snapshot
	done         chan struct{} // per run, closed when the receive loop exits
	subscribers  map[chan *Grid]struct{}

	latest atomic.Pointer[Grid]

	activeBackgroundWorkers sync.WaitGroup
}

// NewFeed returns a stopped feed over the given update source.
func NewFeed(source UpdateSource, logger golog.Logger) *Feed {
	return &Feed{
		source:      source,
		logger:      logger,
		subscribers: map[chan *Grid]struct{}{},
	}
}

// Start opens the update stream and begins processing messages at the
// requested frequency. Starting an already running feed is a no-op. The
// stream lives until Stop is called or ctx is canceled.
func (f *Feed) Start(ctx context.Context, frequencyHz float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return nil
	}

	streamCtx, cancel := context.WithCancel(ctx)
	stream, err := f.source.NavMapFeed(streamCtx, frequencyHz)
	if err != nil {
		cancel()
		return errors.Wrap(err, "could not open nav map feed")
	}

	f.streamCancel = cancel
	f.running = true
	f.started = true
	f.streamErr = nil
	f.ready = make(chan struct{})
	done := make(chan struct{})
	f.done = done

	f.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		f.receiveFromStream(streamCtx, stream, done)
	}, f.activeBackgroundWorkers.Done)
	return nil
}

// Stop cancels the pending receive, waits for processing to wind down and
// leaves the last published snapshot in place. Stopping a feed that is not
// running is a no-op.
func (f *Feed) Stop() {
	f.mu.Lock()
	cancel := f.streamCancel
	f.streamCancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	f.activeBackgroundWorkers.Wait()
}

// Running reports whether the feed is actively consuming updates.
func (f *Feed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Err returns the reason the update stream failed, or nil if the feed is
// running, was stopped deliberately, or was never started.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streamErr
}

// LatestMap returns the newest complete map snapshot. While the feed is
// running but no update has arrived yet, it blocks until the first snapshot
// is published or ctx is done. A feed that was never started or that ended
// without ever publishing a snapshot fails fast instead of blocking, and a
// waiter is woken with ErrFeedTerminated when the stream ends first.
func (f *Feed) LatestMap(ctx context.Context) (*Grid, error) {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return nil, ErrFeedNotStarted
	}
	running := f.running
	ready := f.ready
	done := f.done
	f.mu.Unlock()

	if grid := f.latest.Load(); grid != nil {
		return grid, nil
	}
	if !running {
		return nil, ErrFeedTerminated
	}

	select {
	case <-ready:
		return f.latest.Load(), nil
	case <-done:
		// the run ended while we waited; a snapshot may still have been
		// published just before it did
		if grid := f.latest.Load(); grid != nil {
			return grid, nil
		}
		return nil, ErrFeedTerminated
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe registers for map update notifications. Each new Grid is sent
// on the returned channel; a subscriber that falls behind only ever sees
// the most recent snapshot, older pending notifications are displaced. The
// returned func unsubscribes and may be called more than once.
func (f *Feed) Subscribe() (<-chan *Grid, func()) {
	ch := make(chan *Grid, 1)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

func (f *Feed) receiveFromStream(ctx context.Context, stream UpdateStream, done chan struct{}) {
	var streamErr error
	defer func() {
		f.mu.Lock()
		f.running = false
		f.streamErr = streamErr
		f.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			f.logger.Debug(ctx.Err())
			return
		default:
		}
		update, err := stream.Recv()
		if err != nil {
			if goutils.FilterOutError(err, context.Canceled) == nil {
				// the feed was stopped; not a failure
				f.logger.Debug("nav map feed stopped")
				return
			}
			f.logger.Errorf("nav map stream failed: %s", err)
			streamErr = err
			return
		}
		f.ingest(update)
	}
}

// ingest builds a Grid from one update, publishes it as the latest snapshot
// and notifies subscribers. A message whose metadata cannot form a grid is
// dropped so that one corrupt update does not take down a long-running feed.
func (f *Feed) ingest(update *Update) {
	grid, err := BuildGrid(update, f.logger)
	if grid == nil {
		f.logger.Errorf("dropping unusable nav map update: %s", err)
		return
	}
	if err != nil {
		f.logger.Warnf("nav map update had malformed entries: %s", err)
	}

	f.latest.Store(grid)

	f.mu.Lock()
	select {
	case <-f.ready:
	default:
		close(f.ready)
	}
	subscribers := make([]chan *Grid, 0, len(f.subscribers))
	for ch := range f.subscribers {
		subscribers = append(subscribers, ch)
	}
	f.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- grid:
		default:
			// displace the stale pending snapshot; the feed goroutine is the
			// only sender, so room is guaranteed after the drain
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- grid:
			default:
			}
		}
	}
}
