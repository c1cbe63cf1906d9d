// Package mock provides an in-memory connection.Connection for tests of the
// client and resource layers, so they can run without a server.
package mock

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/frappe/insights.go/internal/codec"
	"github.com/frappe/insights.go/pkg/connection"
)

// Call records one Send invocation.
type Call struct {
	Method string
	Params map[string]any
}

// Connection is a scripted transport. Handler decides each response; Gate,
// when non-nil, blocks every Send until the channel is closed (for
// in-flight deduplication tests).
type Connection struct {
	// Handler returns the result value for a method call. A returned error
	// is surfaced as the Send error. Nil Handler answers every call with a
	// nil result.
	Handler func(method string, params map[string]any) (any, error)

	// Gate blocks Send until closed.
	Gate chan struct{}

	mu            sync.Mutex
	calls         []Call
	notifications map[string]chan connection.Notification
}

var _ connection.Connection = (*Connection)(nil)

func New() *Connection {
	return &Connection{
		notifications: make(map[string]chan connection.Notification),
	}
}

func (c *Connection) Connect(ctx context.Context) error { return nil }
func (c *Connection) Close(ctx context.Context) error   { return nil }

func (c *Connection) Login(ctx context.Context, usr, pwd string) error {
	return c.Send(ctx, nil, "login", map[string]any{"usr": usr, "pwd": pwd})
}

func (c *Connection) Logout(ctx context.Context) error {
	return c.Send(ctx, nil, "logout", nil)
}

func (c *Connection) Send(ctx context.Context, dest any, method string, params map[string]any) error {
	if c.Gate != nil {
		select {
		case <-c.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	c.calls = append(c.calls, Call{Method: method, Params: params})
	handler := c.Handler
	c.mu.Unlock()

	if handler == nil {
		return nil
	}

	result, err := handler(method, params)
	if err != nil {
		return err
	}
	if dest == nil || result == nil {
		return nil
	}

	// Round-trip through JSON so the mock behaves like the wire: handlers
	// return convenient Go values, dest sees decoded projections.
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *Connection) Notifications(doctype string) (chan connection.Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.notifications[doctype]
	if !ok {
		ch = make(chan connection.Notification, 16)
		c.notifications[doctype] = ch
	}
	return ch, nil
}

func (c *Connection) Push(n connection.Notification) {
	ch, _ := c.Notifications(n.Doctype)
	ch <- n
}

func (c *Connection) GetUnmarshaler() codec.Unmarshaler { return codec.JSON{} }

// Calls returns a snapshot of recorded invocations.
func (c *Connection) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount counts recorded invocations of one method; empty method counts
// everything.
func (c *Connection) CallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if method == "" {
		return len(c.calls)
	}
	n := 0
	for _, call := range c.calls {
		if call.Method == method {
			n++
		}
	}
	return n
}
