package constants

import "time"

const (
	// RequestIDLength is the length of generated RPC request identifiers.
	RequestIDLength = 16

	// DefaultWSTimeout is the default amount of time a websocket Send waits
	// for the matching response before giving up.
	DefaultWSTimeout = 30 * time.Second

	// DefaultHTTPTimeout is the default timeout of the underlying http.Client.
	DefaultHTTPTimeout = 10 * time.Second

	// CloseMessageCode is the websocket close code sent during shutdown.
	CloseMessageCode = 1000
)

var (
	WebsocketScheme       = "ws"
	WebsocketSecureScheme = "wss"
	HTTPScheme            = "http"
	HTTPSecureScheme      = "https"
)
