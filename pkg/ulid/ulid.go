// Package ulid mints sortable ids for transitions and clients — unlike
// change ids (UUIDv4, per spec.md §3), these benefit from being ordered so
// a transition log sorts the way it was produced.
package ulid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy   = ulid.Monotonic(rand.Reader, 0)
	entropyMu sync.Mutex
)

// New mints a ULID for the current instant.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// At mints a ULID for a specific instant, useful in tests that need a
// fixed timestamp part; the random part still differs on every call.
func At(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Timestamp recovers the instant encoded in id, or the zero time if id is
// not a valid ULID.
func Timestamp(id string) time.Time {
	u, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

func Valid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}
