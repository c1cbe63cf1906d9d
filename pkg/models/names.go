package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewName generates a client-side document name with the conventional
// hyphenated prefix, e.g. NewName("QRY") -> "QRY-9f3c2a1b". The server
// accepts client-supplied names and enforces uniqueness on insert.
func NewName(prefix string) string {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%s", prefix, id)
}
