package tui

import (
	"strings"
	"sync"
	"time"
)

// ToastLevel selects the toast style.
type ToastLevel int

const (
	ToastSuccess ToastLevel = iota
	ToastError
	ToastInfo
)

// DefaultToastDuration is the auto-dismiss delay applied when Push is called
// with a zero duration.
const DefaultToastDuration = 5 * time.Second

type toast struct {
	id      uint64
	level   ToastLevel
	message string
}

// Notifier keeps the stack of visible toasts. Each pushed toast auto-dismisses
// after its duration; dismissing one by hand removes it immediately and the
// pending timer simply finds nothing to do when it fires.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	active []toast

	// onChange, when set, is invoked after every visible-set change so a
	// running program can schedule a redraw. Called without the lock held.
	onChange func()
}

var (
	notifierOnce sync.Once
	notifier     *Notifier
)

// Toasts returns the process-wide notifier, creating it on first use.
func Toasts() *Notifier {
	notifierOnce.Do(func() {
		notifier = &Notifier{}
	})
	return notifier
}

// SetOnChange registers the redraw hook. Pass nil to detach.
func (n *Notifier) SetOnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// Push shows a toast and returns its id. The toast disappears on its own
// after d, or earlier via Dismiss.
func (n *Notifier) Push(level ToastLevel, message string, d time.Duration) uint64 {
	if d <= 0 {
		d = DefaultToastDuration
	}
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.active = append(n.active, toast{id: id, level: level, message: message})
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn()
	}
	time.AfterFunc(d, func() { n.Dismiss(id) })
	return id
}

// Dismiss removes the toast with the given id. Unknown ids are ignored, so
// an auto-dismiss timer racing a manual dismissal is harmless.
func (n *Notifier) Dismiss(id uint64) {
	n.mu.Lock()
	removed := false
	for i, t := range n.active {
		if t.id == id {
			n.active = append(n.active[:i], n.active[i+1:]...)
			removed = true
			break
		}
	}
	fn := n.onChange
	n.mu.Unlock()

	if removed && fn != nil {
		fn()
	}
}

// Visible reports how many toasts are currently shown.
func (n *Notifier) Visible() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.active)
}

// View renders the active toasts newest last.
func (n *Notifier) View(theme Theme) string {
	n.mu.Lock()
	snapshot := make([]toast, len(n.active))
	copy(snapshot, n.active)
	n.mu.Unlock()

	if len(snapshot) == 0 {
		return ""
	}
	var b strings.Builder
	for i, t := range snapshot {
		if i > 0 {
			b.WriteByte('\n')
		}
		style := theme.Toast
		if t.level == ToastError {
			style = theme.ToastError
		}
		b.WriteString(style.Render(t.message))
	}
	return b.String()
}
