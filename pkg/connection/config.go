package connection

import (
	"fmt"
	"net/url"
	"os"

	"github.com/frappe/insights.go/internal/codec"
	"github.com/frappe/insights.go/pkg/logger"
)

// NewConfig creates a Config for the server at u, such as
// "http://localhost:8000" or "ws://localhost:8000". The JSON codec and a
// stderr logger are installed by default; override the fields before handing
// the config to a transport constructor if you need something else.
func NewConfig(u *url.URL) *Config {
	jsonCodec := codec.JSON{}
	return &Config{
		BaseURL:     fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		Marshaler:   jsonCodec,
		Unmarshaler: jsonCodec,
		Logger:      logger.New(os.Stderr),
	}
}
