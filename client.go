package insights

import (
	"context"
	"fmt"
	"net/url"

	"github.com/frappe/insights.go/pkg/connection"
	"github.com/frappe/insights.go/pkg/constants"
)

// Client is the high level handle to an Insights backend. It wraps a
// connection.Connection with typed document and list operations; the
// resource bindings in this package build on it.
type Client struct {
	con connection.Connection
}

// New connects to the server at connectionURL and returns a ready Client.
// The scheme selects the transport: ws/wss for the realtime websocket
// transport, http/https for plain request/response.
func New(connectionURL string) (*Client, error) {
	u, err := url.ParseRequestURI(connectionURL)
	if err != nil {
		return nil, err
	}

	conf := connection.NewConfig(u)

	var con connection.Connection
	switch u.Scheme {
	case constants.WebsocketScheme, constants.WebsocketSecureScheme:
		con = connection.NewWebSocketConnection(conf)
	case constants.HTTPScheme, constants.HTTPSecureScheme:
		con = connection.NewHTTPConnection(conf)
	default:
		return nil, fmt.Errorf("invalid connection url scheme: %s", u.Scheme)
	}

	return FromConnection(context.Background(), con)
}

// FromConnection connects con and wraps it. Use this over New when the
// connection needs non-default configuration (codec, logger, timeout).
func FromConnection(ctx context.Context, con connection.Connection) (*Client, error) {
	if err := con.Connect(ctx); err != nil {
		return nil, err
	}
	return &Client{con: con}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.con.Close(ctx)
}

func (c *Client) Login(ctx context.Context, usr, pwd string) error {
	return c.con.Login(ctx, usr, pwd)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.con.Logout(ctx)
}

// Call invokes an arbitrary server method by its dotted name with named
// parameters, decoding the result into dest when dest is non-nil.
func (c *Client) Call(ctx context.Context, dest any, method string, params map[string]any) error {
	return c.con.Send(ctx, dest, method, params)
}

// GetDoc fetches a single document of the given doctype by name into dest.
func (c *Client) GetDoc(ctx context.Context, dest any, doctype, name string) error {
	return c.con.Send(ctx, dest, "frappe.client.get", map[string]any{
		"doctype": doctype,
		"name":    name,
	})
}

// GetList fetches row projections of a doctype into dest, which must be a
// pointer to a slice.
func (c *Client) GetList(ctx context.Context, dest any, doctype string, opts ListOptions) error {
	return c.con.Send(ctx, dest, "frappe.client.get_list", opts.params(doctype))
}

// InsertDoc creates a document server-side and returns its assigned name.
// doc must marshal to an object containing at least a "doctype" field.
func (c *Client) InsertDoc(ctx context.Context, doc any) (string, error) {
	var created struct {
		Name string `json:"name"`
	}
	if err := c.con.Send(ctx, &created, "frappe.client.insert", map[string]any{"doc": doc}); err != nil {
		return "", err
	}
	if created.Name == "" {
		return "", ErrNoName
	}
	return created.Name, nil
}

// SetValue writes a single field of an existing document.
func (c *Client) SetValue(ctx context.Context, doctype, name, field string, value any) error {
	return c.con.Send(ctx, nil, "frappe.client.set_value", map[string]any{
		"doctype":   doctype,
		"name":      name,
		"fieldname": field,
		"value":     value,
	})
}

// DeleteDoc removes a document. The server rejects the call when the target
// does not exist or is still referenced elsewhere.
func (c *Client) DeleteDoc(ctx context.Context, doctype, name string) error {
	return c.con.Send(ctx, nil, "frappe.client.delete", map[string]any{
		"doctype": doctype,
		"name":    name,
	})
}

// RunDocMethod invokes a controller method on one document. Whitelist
// enforcement happens in DocumentResource.RunMethod; this is the raw call.
func (c *Client) RunDocMethod(ctx context.Context, dest any, doctype, name, method string, params map[string]any) error {
	callParams := map[string]any{
		"dt":     doctype,
		"dn":     name,
		"method": method,
	}
	for k, v := range params {
		callParams[k] = v
	}
	return c.con.Send(ctx, dest, "run_doc_method", callParams)
}

// Notifications exposes server-pushed document events for a doctype.
// Request/response-only transports return constants.ErrMethodNotAvailable.
func (c *Client) Notifications(doctype string) (chan connection.Notification, error) {
	return c.con.Notifications(doctype)
}
