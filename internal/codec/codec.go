// Package codec abstracts the wire serialization used by connections, so the
// transport code does not hard-code a particular JSON implementation.
package codec

// Marshaler serializes RPC requests before they are written to the wire.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

// Unmarshaler deserializes RPC responses and result payloads.
type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
}
