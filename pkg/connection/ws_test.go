package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frappe/insights.go/pkg/constants"
)

var upgrader = gorilla.Upgrader{}

// fakeRPCServer upgrades /api/rpc and answers every request with handler's
// return value. A nil return means no response is written (for timeout
// tests).
func fakeRPCServer(t *testing.T, handler func(req RPCRequest) *RPCResponse[json.RawMessage]) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rpc" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req RPCRequest
			require.NoError(t, json.Unmarshal(data, &req))
			res := handler(req)
			if res == nil {
				continue
			}
			out, err := json.Marshal(res)
			require.NoError(t, err)
			if err := conn.WriteMessage(gorilla.TextMessage, out); err != nil {
				return
			}
		}
	}))
}

func dialWS(t *testing.T, srv *httptest.Server) *WebSocketConnection {
	t.Helper()
	u, err := url.Parse(strings.Replace(srv.URL, "http://", "ws://", 1))
	require.NoError(t, err)

	ws := NewWebSocketConnection(NewConfig(u))
	require.NoError(t, ws.Connect(context.Background()))
	t.Cleanup(func() {
		_ = ws.Close(context.Background())
	})
	return ws
}

func rawResult(t *testing.T, v any) *json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	raw := json.RawMessage(data)
	return &raw
}

func TestWebSocketConnection_Send(t *testing.T) {
	srv := fakeRPCServer(t, func(req RPCRequest) *RPCResponse[json.RawMessage] {
		assert.Equal(t, "insights.api.get_table_name", req.Method)
		assert.Equal(t, "tabSales Invoice", req.Params["table"])
		return &RPCResponse[json.RawMessage]{ID: req.ID, Result: rawResult(t, "Sales Invoice")}
	})
	defer srv.Close()

	ws := dialWS(t, srv)

	var name string
	err := ws.Send(context.Background(), &name, "insights.api.get_table_name", map[string]any{
		"table": "tabSales Invoice",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sales Invoice", name)
}

func TestWebSocketConnection_ServerError(t *testing.T) {
	srv := fakeRPCServer(t, func(req RPCRequest) *RPCResponse[json.RawMessage] {
		return &RPCResponse[json.RawMessage]{
			ID:    req.ID,
			Error: &RPCError{ExcType: "PermissionError", Message: "not permitted"},
		}
	})
	defer srv.Close()

	ws := dialWS(t, srv)

	err := ws.Send(context.Background(), nil, "insights.api.get_data_sources", nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "PermissionError", rpcErr.ExcType)
}

func TestWebSocketConnection_Timeout(t *testing.T) {
	srv := fakeRPCServer(t, func(req RPCRequest) *RPCResponse[json.RawMessage] {
		return nil // never answer
	})
	defer srv.Close()

	ws := dialWS(t, srv)
	ws.SetTimeout(50 * time.Millisecond)

	err := ws.Send(context.Background(), nil, "insights.api.get_data_sources", nil)
	require.ErrorIs(t, err, constants.ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebSocketConnection_CancelIsNotTimeout(t *testing.T) {
	srv := fakeRPCServer(t, func(req RPCRequest) *RPCResponse[json.RawMessage] {
		return nil // never answer
	})
	defer srv.Close()

	ws := dialWS(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := ws.Send(ctx, nil, "insights.api.get_data_sources", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, constants.ErrTimeout)
}

func TestWebSocketConnection_ConcurrentSends(t *testing.T) {
	srv := fakeRPCServer(t, func(req RPCRequest) *RPCResponse[json.RawMessage] {
		return &RPCResponse[json.RawMessage]{ID: req.ID, Result: rawResult(t, req.Params["n"])}
	})
	defer srv.Close()

	ws := dialWS(t, srv)

	errs := make(chan error, 10)
	for i := range 10 {
		go func() {
			var n float64
			err := ws.Send(context.Background(), &n, "echo", map[string]any{"n": i})
			if err == nil && int(n) != i {
				errs <- assert.AnError
				return
			}
			errs <- err
		}()
	}
	for range 10 {
		require.NoError(t, <-errs)
	}
}

func TestWebSocketConnection_Notifications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Push one document event, then hold the connection open.
		event := `{"event":"doc_update","doctype":"Insights Query","name":"QRY-0001"}`
		_ = conn.WriteMessage(gorilla.TextMessage, []byte(event))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ws := dialWS(t, srv)

	events, err := ws.Notifications("Insights Query")
	require.NoError(t, err)

	select {
	case n := <-events:
		assert.Equal(t, UpdateEvent, n.Event)
		assert.Equal(t, "QRY-0001", n.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}
