package connection

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"

	"github.com/frappe/insights.go/internal/codec"
	"github.com/frappe/insights.go/pkg/constants"
	"github.com/frappe/insights.go/pkg/logger"
)

// Connection is the transport under a Client. Implementations must be safe
// for concurrent use: the resource layer issues calls from multiple
// goroutines.
type Connection interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error

	// Send invokes the named server method with named parameters and, when
	// dest is non-nil, decodes the result into it. dest must be a pointer.
	Send(ctx context.Context, dest any, method string, params map[string]any) error

	// Login exchanges credentials for a session token held by the
	// connection and attached to subsequent requests.
	Login(ctx context.Context, usr, pwd string) error
	Logout(ctx context.Context) error

	// Notifications returns the channel of document events for a doctype.
	// Transports that cannot push events return ErrMethodNotAvailable.
	Notifications(doctype string) (chan Notification, error)

	GetUnmarshaler() codec.Unmarshaler
}

// Config collects everything a transport needs. Construct it with NewConfig
// and override fields before passing it to a transport constructor.
type Config struct {
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler
	Logger      logger.Logger
}

// BaseConnection holds the request/response correlation state shared by
// transports: one response channel per in-flight request id, and one
// notification channel per subscribed doctype.
type BaseConnection struct {
	baseURL     string
	marshaler   codec.Marshaler
	unmarshaler codec.Unmarshaler
	logger      logger.Logger

	responseChannels     map[string]chan RPCResponse[json.RawMessage]
	responseChannelsLock sync.RWMutex

	notificationChannels     map[string]chan Notification
	notificationChannelsLock sync.RWMutex
}

func (bc *BaseConnection) createResponseChannel(id string) (chan RPCResponse[json.RawMessage], error) {
	bc.responseChannelsLock.Lock()
	defer bc.responseChannelsLock.Unlock()

	if _, ok := bc.responseChannels[id]; ok {
		return nil, fmt.Errorf("%w: %v", constants.ErrIDInUse, id)
	}

	ch := make(chan RPCResponse[json.RawMessage], 1)
	bc.responseChannels[id] = ch

	return ch, nil
}

func (bc *BaseConnection) removeResponseChannel(id string) {
	bc.responseChannelsLock.Lock()
	defer bc.responseChannelsLock.Unlock()
	delete(bc.responseChannels, id)
}

func (bc *BaseConnection) getResponseChannel(id string) (chan RPCResponse[json.RawMessage], bool) {
	bc.responseChannelsLock.RLock()
	defer bc.responseChannelsLock.RUnlock()
	ch, ok := bc.responseChannels[id]
	return ch, ok
}

func (bc *BaseConnection) notificationChannel(doctype string) chan Notification {
	bc.notificationChannelsLock.Lock()
	defer bc.notificationChannelsLock.Unlock()

	if ch, ok := bc.notificationChannels[doctype]; ok {
		return ch
	}
	ch := make(chan Notification, 16)
	bc.notificationChannels[doctype] = ch
	return ch
}

func (bc *BaseConnection) preConnectionChecks() error {
	if bc.baseURL == "" {
		return constants.ErrNoBaseURL
	}
	if bc.marshaler == nil {
		return constants.ErrNoMarshaler
	}
	if bc.unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}
	return nil
}

func (bc *BaseConnection) GetUnmarshaler() codec.Unmarshaler {
	return bc.unmarshaler
}
