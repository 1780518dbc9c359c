// Package ids generates the identifiers used across the audience platform.
//
// Internal identifiers are ULIDs: globally unique and lexicographically
// sortable by creation time, which keeps bulk event inserts index-friendly
// and lets the event log sort by ID as a creation-order tiebreaker.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh ULID string.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
