package codec

import (
	"github.com/goccy/go-json"
)

// JSON is the codec used by default for the Frappe wire protocol, which
// speaks JSON on both the HTTP and websocket transports.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}
