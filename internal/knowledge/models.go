// Package knowledge is the key/value system-knowledge store the autonomy
// engine writes remediation outcomes into, so later diagnostics can consult
// what was tried and how it went.
package knowledge

import (
	"encoding/json"
	"time"
)

// Record is one knowledge entry. Value is opaque JSON; callers own the shape.
type Record struct {
	Key       string
	Value     json.RawMessage
	UpdatedAt time.Time
}
