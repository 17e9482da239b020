// Package filehook implements the lifecycle-hook-driven object
// synchronization engine: key generation, upload authorization, copy and
// delete mirroring, and lazy metadata resolution.
package filehook

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// segmentBytes is the size of one random key segment. Four bytes give each
// segment a space of 2^32 values, far above the collision floor needed for
// uncoordinated concurrent generation.
const segmentBytes = 4

// KeyGenerator mints opaque store-relative object keys. Keys are three
// independent random segments joined by "/", suffixed with a monotonically
// non-decreasing millisecond timestamp.
type KeyGenerator struct {
	mu     sync.Mutex
	lastMs int64
	now    func() time.Time
}

// NewKeyGenerator creates a new key generator.
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{now: time.Now}
}

// Generate mints a new object key. It never blocks and holds no state
// beyond the monotonic timestamp guard.
func (g *KeyGenerator) Generate() string {
	var buf [3 * segmentBytes]byte
	// crypto/rand.Read never fails on supported platforms as of Go 1.24.
	rand.Read(buf[:])

	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms < g.lastMs {
		ms = g.lastMs
	}
	g.lastMs = ms
	g.mu.Unlock()

	return fmt.Sprintf("%s/%s/%s-%d",
		hex.EncodeToString(buf[0:segmentBytes]),
		hex.EncodeToString(buf[segmentBytes:2*segmentBytes]),
		hex.EncodeToString(buf[2*segmentBytes:]),
		ms)
}
