package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHashDeterministic(t *testing.T) {
	a := NewHash([]byte("payload"))
	b := NewHash([]byte("payload"))
	assert.True(t, a.Equal(b))

	c := NewHash([]byte("payload!"))
	assert.False(t, a.Equal(c))
}

func TestStringRoundTrip(t *testing.T) {
	h := NewHash([]byte("round trip"))
	parsed, err := FromString(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = FromString("zz")
	assert.Error(t, err)

	_, err = FromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestMeetsDifficulty(t *testing.T) {
	var h Hash
	h[0] = 0x0f // hex: 0f...

	assert.True(t, h.MeetsDifficulty(0))
	assert.True(t, h.MeetsDifficulty(1))
	assert.False(t, h.MeetsDifficulty(2))

	zero := NullHash()
	assert.True(t, zero.MeetsDifficulty(HashSize*2))
	assert.False(t, zero.MeetsDifficulty(HashSize*2+1))
}
