package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Run IDs are ULIDs: 48 bits of millisecond timestamp followed by 80
// random bits, Crockford base32 encoded, so they sort by start time.

var (
	ulidMu  sync.Mutex
	lastMs  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

func generateULID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	ulidMu.Lock()
	ms := uint64(now.UnixMilli())
	if ms == lastMs {
		lastSeq++
	} else {
		lastMs, lastSeq = ms, 0
	}
	seq := lastSeq
	ulidMu.Unlock()

	var b [16]byte
	b[0], b[1], b[2] = byte(ms>>40), byte(ms>>32), byte(ms>>24)
	b[3], b[4], b[5] = byte(ms>>16), byte(ms>>8), byte(ms)
	rand.Read(b[6:])
	// The sequence keeps IDs minted in the same millisecond distinct.
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeBase32(b)
}

// encodeBase32 writes the 128 bits of b as 26 characters, most significant
// first. The leading character carries only 3 bits.
func encodeBase32(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
