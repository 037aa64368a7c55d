package esp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketTypeName(t *testing.T) {
	assert.Equal(t, "respVersion", PacketTypeName(RespVersion))
	assert.Equal(t, "reqSetSavvyUnmuteEnable", PacketTypeName(ReqSetSavvyUnmuteEnable))
	assert.Equal(t, "unknownPacketType", PacketTypeName(UnknownPacketType))
	assert.Equal(t, "unknownPacketType", PacketTypeName(0xFE))
	assert.Equal(t, "unknownPacketType", PacketTypeName(0x1234))
}

func TestPacketTypeFromByte(t *testing.T) {
	for _, code := range PacketTypes() {
		assert.Equal(t, code, PacketTypeFromByte(byte(code)))
	}
	assert.Equal(t, UnknownPacketType, PacketTypeFromByte(0x00))
	assert.Equal(t, UnknownPacketType, PacketTypeFromByte(0xFE))
}

func TestPacketTypes_DeclaredRange(t *testing.T) {
	codes := PacketTypes()
	require.Len(t, codes, len(packetTypeNames)-1)
	for i, c := range codes {
		assert.True(t, c >= 0x01 && c <= 0x76, "code 0x%02X", uint16(c))
		assert.True(t, c.Known())
		if i > 0 {
			assert.True(t, c > codes[i-1])
		}
	}
	assert.False(t, UnknownPacketType.Known())
}

func TestPacketType_MarshalText(t *testing.T) {
	b, err := json.Marshal(UnsupportedPacket{Packet: ReqVehicleSpeed})
	require.NoError(t, err)
	assert.JSONEq(t, `{"packet":"reqVehicleSpeed"}`, string(b))
	assert.Equal(t, "74", RespVehicleSpeed.Hex())
}
