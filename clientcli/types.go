package clientcli

import (
	"time"

	"github.com/google/uuid"

	"github.com/openhrv/openhrv"
)

// Result is the outcome of a successful calculation request.
// Body holds the service's response bytes unparsed.
type Result struct {
	Endpoint    string        `json:"endpoint"`
	Mode        openhrv.Mode  `json:"mode"`
	StatusCode  int           `json:"status_code"`
	ContentType string        `json:"content_type,omitempty"`
	Body        []byte        `json:"-"`
	RequestID   uuid.UUID     `json:"request_id"`
	Duration    time.Duration `json:"-"`
}

// formField is a single non-file multipart field, sent in order.
type formField struct {
	name  string
	value string
}
