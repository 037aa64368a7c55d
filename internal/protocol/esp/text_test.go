package esp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	b, err := ParseHex(" 0xAA:d6-ea 61\r\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xD6, 0xEA, 0x61}, b)

	_, err = ParseHex("aa d")
	assert.Error(t, err)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "Version", KindOf(Version{Raw: "V4.1018"}))
	assert.Equal(t, "Unknown", KindOf(Unknown{Code: 0xFE}))
	assert.Equal(t, "DataReceived", KindOf(DataReceived{}))
	assert.Equal(t, "", KindOf(nil))
}
