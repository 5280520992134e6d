package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPublicKeyBytes(t *testing.T) {
	addr, err := FromPublicKeyBytes([]byte("a public key"))
	require.NoError(t, err)

	encoded := addr.String()
	assert.True(t, strings.HasPrefix(encoded, AddressHRP+"1"))
	assert.True(t, Validate(encoded))

	// Same key bytes, same address.
	again, err := FromPublicKeyBytes([]byte("a public key"))
	require.NoError(t, err)
	assert.True(t, addr.Equal(*again))
}

func TestFromStringRoundTrip(t *testing.T) {
	addr, err := FromPublicKeyBytes([]byte("round trip key"))
	require.NoError(t, err)

	parsed, err := FromString(addr.String())
	require.NoError(t, err)
	assert.True(t, addr.Equal(*parsed))
}

func TestValidateRejectsMalformed(t *testing.T) {
	assert.False(t, Validate(""))
	assert.False(t, Validate("not-bech32"))
	assert.False(t, Validate("vd1"))

	// Valid bech32 with the wrong HRP must be rejected.
	other, err := FromPublicKeyBytes([]byte("foreign key"))
	require.NoError(t, err)
	foreign := strings.Replace(other.String(), AddressHRP+"1", "tl1", 1)
	assert.False(t, Validate(foreign))
}

func TestMarshalRoundTrip(t *testing.T) {
	addr, err := FromPublicKeyBytes([]byte("marshal me"))
	require.NoError(t, err)

	data, err := addr.Marshal()
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, decoded.Unmarshal(data))
	assert.True(t, addr.Equal(decoded))
}
