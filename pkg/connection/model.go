package connection

import "fmt"

// RPCError is the error payload reported by the server for a failed call.
// The zero Code means the failure did not carry an HTTP status (websocket
// transport reports errors in-band).
type RPCError struct {
	Code    int    `json:"code,omitempty"`
	ExcType string `json:"exc_type,omitempty"`
	Message string `json:"message,omitempty"`
}

func (r *RPCError) Error() string {
	if r.ExcType != "" {
		return fmt.Sprintf("%s: %s", r.ExcType, r.Message)
	}
	return r.Message
}

func (r *RPCError) Is(target error) bool {
	if target == nil {
		return r == nil
	}
	_, ok := target.(*RPCError)
	return ok
}

// RPCRequest is a call to a server method identified by its dotted name
// (e.g. "insights.api.get_data_sources"), with named parameters.
type RPCRequest struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// RPCResponse carries the result of one request. ID correlates it with the
// originating request on the websocket transport; it is empty over HTTP.
type RPCResponse[T any] struct {
	ID     string    `json:"id,omitempty"`
	Error  *RPCError `json:"error,omitempty"`
	Result *T        `json:"result,omitempty"`
}

// Notification is a server-pushed document event delivered outside the
// request/response cycle. Only the websocket transport produces these.
type Notification struct {
	Event   Event  `json:"event"`
	Doctype string `json:"doctype"`
	Name    string `json:"name"`
}

type Event string

const (
	CreateEvent Event = "doc_create"
	UpdateEvent Event = "doc_update"
	DeleteEvent Event = "doc_delete"
)
