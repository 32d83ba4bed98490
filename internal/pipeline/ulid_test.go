package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULIDFormat(t *testing.T) {
	id := generateULID()
	require.Len(t, id, 26)
	for _, c := range id {
		assert.True(t, strings.ContainsRune(crockford, c), "unexpected character %q", c)
	}
}

func TestULIDSortsByTime(t *testing.T) {
	earlier := newULID(time.UnixMilli(1_000_000))
	later := newULID(time.UnixMilli(2_000_000))
	assert.Less(t, earlier[:10], later[:10])
}

func TestULIDUniqueWithinMillisecond(t *testing.T) {
	now := time.UnixMilli(3_000_000)
	seen := map[string]bool{}
	for range 100 {
		id := newULID(now)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestEncodeBase32(t *testing.T) {
	var zero [16]byte
	assert.Equal(t, strings.Repeat("0", 26), encodeBase32(zero))

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xff
	}
	assert.Equal(t, "7"+strings.Repeat("Z", 25), encodeBase32(ones))
}
