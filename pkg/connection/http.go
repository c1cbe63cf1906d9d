package connection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"

	"github.com/frappe/insights.go/pkg/constants"
)

// HTTPConnection speaks the server's REST RPC surface: every method call is
// a POST to /api/method/<dotted.name> with a JSON object of named
// parameters, and the result arrives under the "message" key.
//
// HTTP cannot push document events, so Notifications returns
// ErrMethodNotAvailable.
type HTTPConnection struct {
	BaseConnection

	httpClient *http.Client
	variables  sync.Map
}

func NewHTTPConnection(p *Config) *HTTPConnection {
	return &HTTPConnection{
		BaseConnection: BaseConnection{
			baseURL:     p.BaseURL,
			marshaler:   p.Marshaler,
			unmarshaler: p.Unmarshaler,
			logger:      p.Logger,
		},
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// SetTimeout overrides the default timeout of the underlying http.Client.
// Per-request deadlines via context take precedence when shorter.
func (h *HTTPConnection) SetTimeout(timeout time.Duration) *HTTPConnection {
	h.httpClient.Timeout = timeout
	return h
}

func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

// SetToken presets the API token, skipping the Login exchange. The token is
// sent as `Authorization: token <value>`; the server accepts both session
// tokens and `key:secret` API pairs in this position.
func (h *HTTPConnection) SetToken(token string) *HTTPConnection {
	h.variables.Store("token", token)
	return h
}

// Connect verifies that the server is reachable by calling the ping method.
func (h *HTTPConnection) Connect(ctx context.Context) error {
	if err := h.preConnectionChecks(); err != nil {
		return err
	}
	return h.Send(ctx, nil, "frappe.ping", nil)
}

func (h *HTTPConnection) Close(ctx context.Context) error {
	h.httpClient.CloseIdleConnections()
	return nil
}

func (h *HTTPConnection) Send(ctx context.Context, dest any, method string, params map[string]any) error {
	if h.baseURL == "" {
		return constants.ErrNoBaseURL
	}

	if params == nil {
		params = map[string]any{}
	}
	reqBody, err := h.marshaler.Marshal(params)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/method/%s", h.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	if token, ok := h.variables.Load("token"); ok {
		req.Header.Set("Authorization", fmt.Sprintf("token %s", token))
	}

	respData, err := h.makeRequest(req)
	if err != nil {
		return err
	}

	if dest == nil {
		return nil
	}

	// The result lives under the "message" key of the envelope. Decoding
	// into a RawMessage first avoids walking the payload twice.
	var envelope struct {
		Message json.RawMessage `json:"message"`
	}
	if err := h.unmarshaler.Unmarshal(respData, &envelope); err != nil {
		return fmt.Errorf("%w: %v", constants.ErrInvalidResponse, err)
	}
	if len(envelope.Message) == 0 || bytes.Equal(envelope.Message, []byte("null")) {
		return constants.ErrNoResult
	}

	return h.unmarshaler.Unmarshal(envelope.Message, dest)
}

func (h *HTTPConnection) makeRequest(req *http.Request) ([]byte, error) {
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBytes, nil
	}

	return nil, decodeServerError(resp.StatusCode, respBytes)
}

// decodeServerError extracts the error payload the server reports on a
// non-2xx response. Unknown payload shapes still produce an RPCError with
// the raw body as the message so nothing is swallowed.
func decodeServerError(status int, body []byte) error {
	rpcErr := &RPCError{Code: status}
	if excType, err := jsonparser.GetString(body, "exc_type"); err == nil {
		rpcErr.ExcType = excType
	}
	if msg, err := jsonparser.GetString(body, "message"); err == nil {
		rpcErr.Message = msg
	} else if msg, err := jsonparser.GetString(body, "exception"); err == nil {
		rpcErr.Message = msg
	} else {
		rpcErr.Message = string(body)
	}
	return rpcErr
}

// Login exchanges credentials for an API token attached to all later
// requests on this connection.
func (h *HTTPConnection) Login(ctx context.Context, usr, pwd string) error {
	var token string
	if err := h.Send(ctx, &token, "login", map[string]any{"usr": usr, "pwd": pwd}); err != nil {
		return err
	}
	h.variables.Store("token", token)
	return nil
}

func (h *HTTPConnection) Logout(ctx context.Context) error {
	if err := h.Send(ctx, nil, "logout", nil); err != nil {
		return err
	}
	h.variables.Delete("token")
	return nil
}

func (h *HTTPConnection) Notifications(doctype string) (chan Notification, error) {
	return nil, constants.ErrMethodNotAvailable
}
