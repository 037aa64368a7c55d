package devicestate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
)

func envFrom(t *testing.T, origin esp.Device, typ esp.PacketType, data []byte) *esp.Envelope {
	t.Helper()
	raw, err := esp.Build(origin, esp.V1Connection, typ, data)
	require.NoError(t, err)
	env, err := esp.Parse(raw)
	require.NoError(t, err)
	return env
}

func apply(t *testing.T, tr *Tracker, origin esp.Device, typ esp.PacketType, data []byte) {
	t.Helper()
	env := envFrom(t, origin, typ, data)
	v, err := esp.Decode(env)
	require.NoError(t, err)
	tr.Apply(env, v)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTracker_Apply(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	tr := New(WithClock(clk.Now))
	v1 := esp.ValentineOneWithChecksum

	apply(t, tr, v1, esp.RespVersion, []byte("V4.1018"))
	apply(t, tr, v1, esp.RespSerialNumber, []byte("ABC1234567"))
	apply(t, tr, v1, esp.RespBatteryVoltage, []byte{13, 8})
	apply(t, tr, v1, esp.RespAllVolume, []byte{5, 2, 6, 3})
	apply(t, tr, v1, esp.RespCurrentVolume, []byte{7, 1})
	apply(t, tr, v1, esp.RespMaxSweepIndex, []byte{5})
	clk.t = clk.t.Add(time.Second)
	apply(t, tr, v1, esp.InfV1Busy, []byte{0x17})

	s, ok := tr.Get(v1)
	require.True(t, ok)
	assert.Equal(t, uint64(7), s.Packets)
	require.NotNil(t, s.Version)
	assert.Equal(t, "V4.1018", s.Version.Raw)
	assert.Equal(t, "ABC1234567", s.SerialNumber)
	assert.Equal(t, "13.8", s.BatteryVoltage)
	assert.Equal(t, &esp.AllVolume{Main: 7, Muted: 1, SavedMain: 6, SavedMuted: 3}, s.Volume)
	require.NotNil(t, s.MaxSweepIndex)
	assert.Equal(t, uint8(5), *s.MaxSweepIndex)
	assert.Equal(t, []esp.PacketType{esp.ReqAllSweepDefinitions}, s.Busy)
	assert.True(t, s.LastSeen.After(s.FirstSeen))

	n, err := tr.FirmwareVersion()
	require.NoError(t, err)
	assert.InDelta(t, 4.1018, n, 1e-9)
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := New()
	v1 := esp.ValentineOneWithChecksum
	apply(t, tr, v1, esp.RespAllVolume, []byte{5, 2, 6, 3})
	before, _ := tr.Get(v1)
	apply(t, tr, v1, esp.RespCurrentVolume, []byte{9, 0})
	assert.Equal(t, uint8(5), before.Volume.Main)
}

func TestTracker_SweepSectionsAndAlerts(t *testing.T) {
	tr := New()
	v1 := esp.ValentineOneWithChecksum
	// 两段：1/2 与 2/2
	apply(t, tr, v1, esp.RespSweepSections, []byte{
		0x12, 0x62, 0x1F, 0x5A, 0xA0,
		0x22, 0x89, 0x00, 0x82, 0xA0,
	})
	s, _ := tr.Get(v1)
	require.Len(t, s.SweepSections, 2)
	assert.Equal(t, uint8(2), s.SweepSections[1].Index)

	apply(t, tr, v1, esp.RespAlertData, []byte{0x12, 0x5E, 0x2C, 0x80, 0x00, 0x24, 0x80})
	apply(t, tr, v1, esp.RespAlertData, []byte{0x22, 0x5C, 0x5A, 0x10, 0x00, 0x24, 0x00})
	s, _ = tr.Get(v1)
	require.Len(t, s.Alerts, 2)
	assert.True(t, s.Alerts[0].Priority())

	apply(t, tr, v1, esp.RespAlertData, []byte{0x00, 0, 0, 0, 0, 0, 0})
	s, _ = tr.Get(v1)
	assert.Empty(t, s.Alerts)
}

func TestTracker_ErrorsAndOnline(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	tr := New(WithClock(clk.Now))

	env := envFrom(t, esp.Savvy, esp.RespSavvyStatus, []byte{0x2D})
	tr.RecordError(env, errors.New("short"))
	tr.RecordError(nil, errors.New("ignored"))

	s, ok := tr.Get(esp.Savvy)
	require.True(t, ok)
	assert.Equal(t, uint64(1), s.DecodeErrors)
	assert.Equal(t, "short", s.LastError)

	clk.t = clk.t.Add(10 * time.Second)
	apply(t, tr, esp.ValentineOneWithChecksum, esp.RespVehicleSpeed, []byte{60})

	assert.Equal(t, 2, tr.Count())
	assert.Equal(t, 1, tr.Online(5*time.Second))
	assert.Equal(t, 2, tr.Online(0))

	list := tr.List()
	require.Len(t, list, 2)
	assert.Equal(t, esp.Savvy, list[0].Device)

	_, err := tr.FirmwareVersion()
	assert.ErrorIs(t, err, ErrNoVersion)

	tr.Reset()
	assert.Equal(t, 0, tr.Count())
}

func TestTracker_HandlerWithAdapter(t *testing.T) {
	tr := New()
	a := esp.NewAdapter()
	a.Fallback(tr.Handler())

	raw, err := esp.Build(esp.ValentineOneWithChecksum, esp.V1Connection, esp.RespSavvyStatus, []byte{0x2D, 0x03})
	require.NoError(t, err)
	require.NoError(t, a.ProcessBytes(raw))

	s, ok := tr.Get(esp.ValentineOneWithChecksum)
	require.True(t, ok)
	assert.Equal(t, &esp.SavvyStatus{ThresholdMph: 45, Overridden: true, UnmuteEnabled: true}, s.Savvy)
}
