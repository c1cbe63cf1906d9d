package insights_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	insights "github.com/frappe/insights.go"
	"github.com/frappe/insights.go/internal/mock"
	"github.com/frappe/insights.go/pkg/models"
)

type setValueRecorder struct {
	mu     sync.Mutex
	values map[string]any
}

func (r *setValueRecorder) handle(method string, params map[string]any) (any, error) {
	if method != "frappe.client.set_value" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = make(map[string]any)
	}
	r.values[params["fieldname"].(string)] = params["value"]
	return nil, nil
}

func (r *setValueRecorder) get(field string) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[field]
}

func newChartSaver(t *testing.T, con *mock.Connection, interval time.Duration) *insights.AutoSaver[models.Chart] {
	t.Helper()
	client := newTestClient(t, con)
	doc := insights.NewDocumentResource[models.Chart](
		client, models.DoctypeChart, "CHT-1", models.WhitelistedMethods(models.DoctypeChart))
	return insights.NewAutoSaver(doc, interval, insights.RefreshNone, nil)
}

func TestAutoSaver_DebouncedFlush(t *testing.T) {
	recorder := &setValueRecorder{}
	con := mock.New()
	con.Handler = recorder.handle

	saver := newChartSaver(t, con, 30*time.Millisecond)

	// rapid successive edits: only the last value of a field survives
	saver.Queue("title", "draft")
	saver.Queue("chart_type", "Line")
	saver.Queue("title", "Revenue by Month")

	// nothing is written during the quiet period
	assert.Zero(t, con.CallCount("frappe.client.set_value"))

	require.Eventually(t, func() bool {
		return con.CallCount("frappe.client.set_value") == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "Revenue by Month", recorder.get("title"))
	assert.Equal(t, "Line", recorder.get("chart_type"))
}

func TestAutoSaver_QueueResetsTimer(t *testing.T) {
	recorder := &setValueRecorder{}
	con := mock.New()
	con.Handler = recorder.handle

	saver := newChartSaver(t, con, 50*time.Millisecond)

	saver.Queue("title", "a")
	time.Sleep(30 * time.Millisecond)
	saver.Queue("title", "ab")
	time.Sleep(30 * time.Millisecond)

	// 60ms elapsed but the timer was re-armed at 30ms; nothing flushed yet
	assert.Zero(t, con.CallCount("frappe.client.set_value"))

	require.Eventually(t, func() bool {
		return con.CallCount("frappe.client.set_value") == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "ab", recorder.get("title"))
}

func TestAutoSaver_ExplicitFlush(t *testing.T) {
	recorder := &setValueRecorder{}
	con := mock.New()
	con.Handler = recorder.handle

	saver := newChartSaver(t, con, time.Hour)

	saver.Queue("title", "Revenue")
	require.NoError(t, saver.Flush(context.Background()))
	assert.Equal(t, "Revenue", recorder.get("title"))

	// a second flush with nothing pending is a no-op
	require.NoError(t, saver.Flush(context.Background()))
	assert.Equal(t, 1, con.CallCount("frappe.client.set_value"))
}

func TestAutoSaver_FailedFlushKeepsUnwrittenEdits(t *testing.T) {
	recorder := &setValueRecorder{}
	con := mock.New()
	failing := true
	con.Handler = func(method string, params map[string]any) (any, error) {
		if failing && method == "frappe.client.set_value" {
			return nil, assert.AnError
		}
		return recorder.handle(method, params)
	}

	saver := newChartSaver(t, con, time.Hour)

	saver.Queue("title", "Revenue")
	saver.Queue("chart_type", "Line")
	require.Error(t, saver.Flush(context.Background()))

	// the server comes back; both edits survive to the next flush
	failing = false
	require.NoError(t, saver.Flush(context.Background()))
	assert.Equal(t, "Revenue", recorder.get("title"))
	assert.Equal(t, "Line", recorder.get("chart_type"))
}

func TestAutoSaver_RequeuedEditLosesToNewerEdit(t *testing.T) {
	recorder := &setValueRecorder{}
	con := mock.New()
	failing := true
	con.Handler = func(method string, params map[string]any) (any, error) {
		if failing && method == "frappe.client.set_value" {
			return nil, assert.AnError
		}
		return recorder.handle(method, params)
	}

	saver := newChartSaver(t, con, time.Hour)

	saver.Queue("title", "stale")
	require.Error(t, saver.Flush(context.Background()))

	failing = false
	saver.Queue("title", "fresh")
	require.NoError(t, saver.Flush(context.Background()))
	assert.Equal(t, "fresh", recorder.get("title"))
}

func TestAutoSaver_StopDiscardsPending(t *testing.T) {
	con := mock.New()

	saver := newChartSaver(t, con, 20*time.Millisecond)

	saver.Queue("title", "never written")
	saver.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, con.CallCount("frappe.client.set_value"))
}
