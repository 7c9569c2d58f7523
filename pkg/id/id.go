// Package id generates the time-sortable identifiers stamped on import audit
// records, so runs list in chronological order wherever they are stored.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = newEntropy()
)

// newEntropy seeds a PRNG from crypto/rand and wraps it in ulid.Monotonic,
// which keeps IDs generated within the same millisecond lexicographically
// increasing.
func newEntropy() io.Reader {
	var seed int64
	if err := binary.Read(cryptorand.Reader, binary.LittleEndian, &seed); err != nil || seed == 0 {
		seed = time.Now().UnixNano()
	}
	return ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a fresh ULID string. Safe for concurrent use.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		// Only reachable if the clock or entropy source fails.
		panic(err)
	}
	return id.String()
}
