package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/goccy/go-json"

	"github.com/frappe/insights.go/internal/rand"
	"github.com/frappe/insights.go/pkg/constants"
)

// DefaultDialer is the gorilla dialer used by WebSocketConnection. It is the
// default gorilla dialer with compression enabled and the json subprotocol
// requested.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
	Subprotocols:      []string{"json"},
}

// WebSocketConnection is the realtime transport. Calls are correlated with
// responses through per-request ids; frames without an id are document
// events fanned out to per-doctype notification channels.
type WebSocketConnection struct {
	BaseConnection

	Conn     *gorilla.Conn
	connLock sync.Mutex

	// Timeout bounds the wait for an RPC response after the request has
	// been written. Zero disables the internal deadline, leaving the
	// caller's context in charge.
	Timeout time.Duration

	closeChan  chan int
	closeError error
}

func NewWebSocketConnection(p *Config) *WebSocketConnection {
	return &WebSocketConnection{
		BaseConnection: BaseConnection{
			baseURL:     p.BaseURL,
			marshaler:   p.Marshaler,
			unmarshaler: p.Unmarshaler,
			logger:      p.Logger,

			responseChannels:     make(map[string]chan RPCResponse[json.RawMessage]),
			notificationChannels: make(map[string]chan Notification),
		},
		Timeout:   constants.DefaultWSTimeout,
		closeChan: make(chan int),
	}
}

func (ws *WebSocketConnection) Connect(ctx context.Context) error {
	if err := ws.preConnectionChecks(); err != nil {
		return err
	}

	conn, res, err := DefaultDialer.DialContext(ctx, fmt.Sprintf("%s/api/rpc", ws.baseURL), nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	ws.Conn = conn

	go ws.readLoop()
	return nil
}

func (ws *WebSocketConnection) SetTimeout(timeout time.Duration) *WebSocketConnection {
	ws.Timeout = timeout
	return ws
}

// Close performs the websocket close handshake. The context bounds the wait
// for the close frame write; the underlying connection is torn down either
// way so local resources are not leaked.
func (ws *WebSocketConnection) Close(ctx context.Context) error {
	ws.connLock.Lock()
	defer ws.connLock.Unlock()

	select {
	case <-ws.closeChan:
		// already closed
		return nil
	default:
		close(ws.closeChan)
	}

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- ws.Conn.WriteMessage(
			gorilla.CloseMessage,
			gorilla.FormatCloseMessage(constants.CloseMessageCode, ""),
		)
	}()

	select {
	case err := <-writeErr:
		if err != nil {
			ws.logger.Error("failed to write close message", "error", err)
		}
	case <-ctx.Done():
	}

	return ws.Conn.Close()
}

func (ws *WebSocketConnection) Send(ctx context.Context, dest any, method string, params map[string]any) error {
	if ws.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ws.Timeout)
		defer cancel()
	}

	select {
	case <-ws.closeChan:
		if ws.closeError != nil {
			return ws.closeError
		}
		return constants.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	id := rand.NewRequestID(constants.RequestIDLength)
	request := &RPCRequest{
		ID:     id,
		Method: method,
		Params: params,
	}

	responseChan, err := ws.createResponseChannel(id)
	if err != nil {
		return err
	}
	defer ws.removeResponseChannel(id)

	if err := ws.write(request); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", constants.ErrTimeout, ctx.Err())
		}
		return ctx.Err()
	case res, open := <-responseChan:
		if !open {
			return errors.New("response channel closed")
		}
		if res.Error != nil {
			return res.Error
		}
		if dest == nil {
			return nil
		}
		if res.Result == nil {
			return constants.ErrNoResult
		}
		return ws.unmarshaler.Unmarshal(*res.Result, dest)
	}
}

func (ws *WebSocketConnection) Login(ctx context.Context, usr, pwd string) error {
	return ws.Send(ctx, nil, "login", map[string]any{"usr": usr, "pwd": pwd})
}

func (ws *WebSocketConnection) Logout(ctx context.Context) error {
	return ws.Send(ctx, nil, "logout", nil)
}

// Notifications returns the document event channel for a doctype, creating
// it on first use. The channel stays open for the connection's lifetime.
func (ws *WebSocketConnection) Notifications(doctype string) (chan Notification, error) {
	return ws.notificationChannel(doctype), nil
}

func (ws *WebSocketConnection) write(v any) error {
	data, err := ws.marshaler.Marshal(v)
	if err != nil {
		return err
	}

	ws.connLock.Lock()
	defer ws.connLock.Unlock()
	return ws.Conn.WriteMessage(gorilla.TextMessage, data)
}

func (ws *WebSocketConnection) readLoop() {
	for {
		select {
		case <-ws.closeChan:
			return
		default:
			_, data, err := ws.Conn.ReadMessage()
			if err != nil {
				if ws.handleError(err) {
					return
				}
				continue
			}
			go ws.handleFrame(data)
		}
	}
}

// handleError reports whether the read loop should exit.
func (ws *WebSocketConnection) handleError(err error) bool {
	if errors.Is(err, net.ErrClosed) {
		ws.closeError = net.ErrClosed
		return true
	}
	if gorilla.IsCloseError(err, constants.CloseMessageCode) || gorilla.IsUnexpectedCloseError(err) {
		ws.closeError = io.ErrClosedPipe
		return true
	}

	ws.logger.Error(err.Error())
	return false
}

func (ws *WebSocketConnection) handleFrame(data []byte) {
	var res RPCResponse[json.RawMessage]
	if err := ws.unmarshaler.Unmarshal(data, &res); err != nil {
		ws.logger.Error("unparseable frame", "error", err)
		return
	}

	if res.ID != "" {
		responseChan, ok := ws.getResponseChannel(res.ID)
		if !ok {
			// Response for a request that timed out or was cancelled.
			ws.logger.Debug("no waiter for response", "id", res.ID)
			return
		}
		responseChan <- res
		close(responseChan)
		return
	}

	// No id: this is a pushed document event.
	var notification Notification
	if err := ws.unmarshaler.Unmarshal(data, &notification); err != nil {
		ws.logger.Error("unparseable notification", "error", err)
		return
	}
	if notification.Doctype == "" {
		ws.logger.Error("notification without doctype", "event", string(notification.Event))
		return
	}

	select {
	case ws.notificationChannel(notification.Doctype) <- notification:
	default:
		// Nobody is draining this doctype's channel; drop rather than
		// block the frame handler.
		ws.logger.Warn("dropping notification", "doctype", notification.Doctype)
	}
}
