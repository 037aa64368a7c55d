package gateway

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	cfgpkg "github.com/taoyao-code/esp-gateway/internal/config"
	"github.com/taoyao-code/esp-gateway/internal/devicestate"
	"github.com/taoyao-code/esp-gateway/internal/metrics"
	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
	"github.com/taoyao-code/esp-gateway/internal/serialport"
	"github.com/taoyao-code/esp-gateway/internal/tcpserver"
)

func build(t *testing.T, typ esp.PacketType, data []byte) []byte {
	t.Helper()
	raw, err := esp.Build(esp.ValentineOneWithChecksum, esp.V1Connection, typ, data)
	require.NoError(t, err)
	return raw
}

func newPipeline(t *testing.T, logger *zap.Logger) (*Pipeline, *devicestate.Tracker, *metrics.AppMetrics) {
	t.Helper()
	tr := devicestate.New()
	appm := metrics.NewAppMetrics(prometheus.NewRegistry())
	cfg := cfgpkg.ESPConfig{MaxFrameLength: esp.MaxFrameLength, RejectLogRate: 0.0001, RejectLogBurst: 1}
	return NewPipeline(cfg, tr, appm, logger), tr, appm
}

func TestPipeline_AdapterFeedsTrackerAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p, tr, appm := newPipeline(t, zap.New(core))
	a := p.NewAdapter(metrics.SourceSerial, "s-1")

	bad := build(t, esp.RespVehicleSpeed, []byte{1})
	bad[len(bad)-2]++
	stream := append([]byte{}, build(t, esp.RespVersion, []byte("V4.1027"))...)
	stream = append(stream, build(t, esp.RespSavvyStatus, []byte{0x2D})...) // 载荷不足
	stream = append(stream, bad...)
	stream = append(stream, bad...)
	stream = append(stream, build(t, esp.RespVehicleSpeed, []byte{65})...)

	require.NoError(t, a.ProcessBytes(stream))

	s, ok := tr.Get(esp.ValentineOneWithChecksum)
	require.True(t, ok)
	assert.Equal(t, "V4.1027", s.Version.Raw)
	assert.Equal(t, uint8(65), *s.VehicleSpeed)
	assert.Equal(t, uint64(1), s.DecodeErrors)

	assert.Equal(t, 3.0, testutil.ToFloat64(appm.FrameTotal.WithLabelValues(metrics.SourceSerial, metrics.ResultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(appm.FrameTotal.WithLabelValues(metrics.SourceSerial, metrics.ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(appm.DecodeTotal.WithLabelValues("respSavvyStatus", metrics.ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(appm.DecodeTotal.WithLabelValues("respVersion", metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(appm.DevicesSeen))

	// 告警被限流：三条告警只输出一条
	assert.Equal(t, 1, logs.Len())
}

func TestPipeline_AttachTCP(t *testing.T) {
	p, tr, appm := newPipeline(t, zap.NewNop())
	srv := tcpserver.New(cfgpkg.TCPConfig{Addr: "127.0.0.1:0", ReadTimeout: time.Second}, nil)
	p.AttachTCP(srv)
	require.NoError(t, srv.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	frame := build(t, esp.RespBatteryVoltage, []byte{12, 9})
	_, err = conn.Write(frame)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, ok := tr.Get(esp.ValentineOneWithChecksum)
		return ok && s.BatteryVoltage == "12.9"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(appm.TCPAccepted))
	assert.Equal(t, float64(len(frame)), testutil.ToFloat64(appm.BytesReceived.WithLabelValues(metrics.SourceTCP)))
	assert.Equal(t, 1.0, testutil.ToFloat64(appm.ActiveSources.WithLabelValues(metrics.SourceTCP)))

	// 串口未打开，不产生会话
	idle := serialport.NewReader(serialport.Config{Path: "/dev/ttyESP0"}, nil, nil)
	ss := Sessions{TCP: srv, Serial: idle}.Sessions()
	require.Len(t, ss, 1)
	assert.Equal(t, metrics.SourceTCP, ss[0].Source)
	assert.Equal(t, int64(len(frame)), ss[0].BytesIn)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(appm.ActiveSources.WithLabelValues(metrics.SourceTCP)) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSessions_Empty(t *testing.T) {
	ss := Sessions{}.Sessions()
	assert.NotNil(t, ss)
	assert.Empty(t, ss)
}
