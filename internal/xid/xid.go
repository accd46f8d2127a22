// Package xid issues fallback ledger identifiers. The normal path numbers
// transactions sequentially from the stored ledger; when that sequence cannot
// be derived, New produces an ID that still sorts by creation time and will
// not collide with the sequential form.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns "<prefix>-<unix-nanos>-<random hex>". The random suffix keeps
// two IDs minted in the same nanosecond distinct; if the system's entropy
// source fails, the timestamp alone is used.
func New(prefix string) string {
	now := time.Now().UnixNano()
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("%s-%d", prefix, now)
	}
	return fmt.Sprintf("%s-%d-%s", prefix, now, hex.EncodeToString(buf[:]))
}
