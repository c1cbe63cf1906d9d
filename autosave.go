package insights

import (
	"context"
	"sync"
	"time"
)

// DefaultAutoSaveInterval is how long an AutoSaver waits after the last
// queued edit before flushing.
const DefaultAutoSaveInterval = 500 * time.Millisecond

// AutoSaver batches field edits to one document resource and writes them
// after a quiet period, resetting the timer on every new edit. It is the
// opt-in auto-save behavior of detail editors: queue edits as the user
// types, flush once they pause.
//
// Writes are last-write-wins per field; there is no conflict detection
// against edits from another session.
type AutoSaver[T any] struct {
	res      *DocumentResource[T]
	interval time.Duration
	refresh  Refresh
	onError  func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]any
}

// NewAutoSaver wraps res. interval <= 0 means DefaultAutoSaveInterval.
// onError receives flush failures (timer flushes have no caller to return
// to); nil means failures are dropped.
func NewAutoSaver[T any](res *DocumentResource[T], interval time.Duration, refresh Refresh, onError func(error)) *AutoSaver[T] {
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &AutoSaver[T]{
		res:      res,
		interval: interval,
		refresh:  refresh,
		onError:  onError,
		pending:  make(map[string]any),
	}
}

// Queue records a field edit and (re)arms the flush timer. A later Queue of
// the same field before the flush overwrites the earlier value.
func (a *AutoSaver[T]) Queue(field string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending[field] = value

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.interval*10)
		defer cancel()
		if err := a.Flush(ctx); err != nil {
			a.onError(err)
		}
	})
}

// Flush writes all pending edits immediately and cancels any armed timer.
// The refresh effect runs once, after the last field write. On a write
// failure the unwritten fields go back into the pending set, so they ride
// along with the next flush instead of being lost.
func (a *AutoSaver[T]) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	pending := a.pending
	a.pending = make(map[string]any)
	a.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	for field, value := range pending {
		if err := a.res.SetValue(ctx, field, value, RefreshNone); err != nil {
			a.requeue(pending)
			return err
		}
		delete(pending, field)
	}
	return a.refresh.apply(ctx, a.res)
}

// requeue restores fields an interrupted flush never wrote. Edits queued in
// the meantime win over the restored values.
func (a *AutoSaver[T]) requeue(unwritten map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for field, value := range unwritten {
		if _, ok := a.pending[field]; !ok {
			a.pending[field] = value
		}
	}
}

// Stop cancels any armed timer without flushing. Pending edits are
// discarded.
func (a *AutoSaver[T]) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = make(map[string]any)
}
