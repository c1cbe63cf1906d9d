package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToasts_SharedInstance(t *testing.T) {
	assert.Same(t, Toasts(), Toasts())
}

func TestNotifier_PushAutoDismisses(t *testing.T) {
	n := &Notifier{}

	n.Push(ToastSuccess, "saved", 30*time.Millisecond)
	require.Equal(t, 1, n.Visible())

	assert.Eventually(t, func() bool {
		return n.Visible() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestNotifier_ManualDismiss(t *testing.T) {
	n := &Notifier{}

	id := n.Push(ToastError, "boom", time.Minute)
	require.Equal(t, 1, n.Visible())

	n.Dismiss(id)
	assert.Equal(t, 0, n.Visible())

	// The auto-dismiss timer is still armed; firing on a gone toast must not
	// disturb anything pushed since.
	n.Dismiss(id)
	assert.Equal(t, 0, n.Visible())
}

func TestNotifier_TimerAfterManualDismissIsHarmless(t *testing.T) {
	n := &Notifier{}

	first := n.Push(ToastSuccess, "one", 30*time.Millisecond)
	n.Dismiss(first)
	second := n.Push(ToastSuccess, "two", time.Minute)

	// Let the first toast's timer fire.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, n.Visible())
	n.Dismiss(second)
}

func TestNotifier_OnChangeFires(t *testing.T) {
	n := &Notifier{}
	changes := make(chan struct{}, 8)
	n.SetOnChange(func() { changes <- struct{}{} })

	id := n.Push(ToastInfo, "hello", time.Minute)
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change notification after push")
	}

	n.Dismiss(id)
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change notification after dismiss")
	}
}

func TestNotifier_ViewRendersMessages(t *testing.T) {
	n := &Notifier{}
	theme := DefaultTheme()

	assert.Empty(t, n.View(theme))

	n.Push(ToastSuccess, "chart created", time.Minute)
	n.Push(ToastError, "delete failed", time.Minute)

	out := n.View(theme)
	assert.Contains(t, out, "chart created")
	assert.Contains(t, out, "delete failed")
}
