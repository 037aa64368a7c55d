package esp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAdapter_ProcessBytes(t *testing.T) {
	a := NewAdapter()
	a.SetLogger(zaptest.NewLogger(t))

	var got []Value
	a.Register(RespVersion, func(_ *Envelope, v Value) error { got = append(got, v); return nil })
	a.Register(RespBatteryVoltage, func(_ *Envelope, v Value) error { got = append(got, v); return nil })

	var fallback []PacketType
	a.Fallback(func(env *Envelope, _ Value) error { fallback = append(fallback, env.Type); return nil })

	f1 := mustBuild(t, ValentineOneWithChecksum, V1Connection, RespVersion, []byte("V4.1032"))
	f2 := mustBuild(t, ValentineOneWithChecksum, V1Connection, RespBatteryVoltage, []byte{12, 6})
	f3 := mustBuild(t, ValentineOneWithChecksum, V1Connection, PacketType(0x7E), []byte{0xDE, 0xAD})

	raw := append([]byte{0x00}, f1...)
	raw = append(raw, f2...)
	raw = append(raw, f3...)
	require.NoError(t, a.ProcessBytes(raw))

	require.Len(t, got, 2)
	assert.InDelta(t, 4.1032, got[0].(Version).Number, 1e-9)
	assert.Equal(t, BatteryVoltage{Voltage: "12.6"}, got[1])
	assert.Equal(t, []PacketType{0x7E}, fallback)
}

func TestAdapter_DecodeErrorDoesNotStopStream(t *testing.T) {
	a := NewAdapter()
	var decodeErrs []error
	a.OnDecodeError(func(_ *Envelope, err error) { decodeErrs = append(decodeErrs, err) })
	var speeds []uint8
	a.Register(RespVehicleSpeed, func(_ *Envelope, v Value) error {
		speeds = append(speeds, v.(VehicleSpeed).Speed)
		return nil
	})

	short := mustBuild(t, ValentineOneWithChecksum, V1Connection, RespSavvyStatus, []byte{0x2D})
	ok := mustBuild(t, ValentineOneWithChecksum, V1Connection, RespVehicleSpeed, []byte{77})
	require.NoError(t, a.ProcessBytes(append(short, ok...)))

	require.Len(t, decodeErrs, 1)
	assert.True(t, errors.Is(decodeErrs[0], ErrShortPayload))
	assert.Equal(t, []uint8{77}, speeds)
}

func TestAdapter_HandlerErrorsJoined(t *testing.T) {
	a := NewAdapter()
	boom := errors.New("boom")
	calls := 0
	a.Register(RespVehicleSpeed, func(*Envelope, Value) error { calls++; return boom })

	f := mustBuild(t, ValentineOneWithChecksum, V1Connection, RespVehicleSpeed, []byte{1})
	err := a.ProcessBytes(append(append([]byte(nil), f...), f...))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 2, calls)
}

func TestAdapter_FrameRejectCallback(t *testing.T) {
	a := NewAdapter()
	var rejected int
	a.OnFrameReject(func(error) { rejected++ })
	f := mustBuild(t, ValentineOneWithChecksum, V1Connection, RespVehicleSpeed, []byte{1})
	f[len(f)-2]++
	require.NoError(t, a.ProcessBytes(f))
	assert.Equal(t, 1, rejected)
}

func TestAdapter_Sniff(t *testing.T) {
	a := NewAdapter()
	assert.True(t, a.Sniff([]byte{0xAA, 0xD6, 0xEA}))
	assert.False(t, a.Sniff([]byte{0xAA, 0x06}))
	assert.False(t, a.Sniff([]byte{0x44, 0x4E, 0x59}))
	assert.False(t, a.Sniff([]byte{0xAA}))
}
