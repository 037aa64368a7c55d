package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	cfgpkg "github.com/taoyao-code/esp-gateway/internal/config"
	"github.com/taoyao-code/esp-gateway/internal/health"
	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRun_TCPToHTTP(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := cfgpkg.Load("")
	require.NoError(t, err)
	cfg.HTTP.Addr = freeAddr(t)
	cfg.TCP.Addr = freeAddr(t)
	cfg.Logging.File.Filename = ""

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, zaptest.NewLogger(t)) }()

	base := fmt.Sprintf("http://%s", cfg.HTTP.Addr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/readyz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	conn, err := net.Dial("tcp", cfg.TCP.Addr)
	require.NoError(t, err)
	frame, err := esp.Build(esp.ValentineOneWithChecksum, esp.V1Connection, esp.RespVehicleSpeed, []byte{77})
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/v1/devices/0A")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	_ = conn.Close()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMarkReadyOnOpen(t *testing.T) {
	ready := health.New()
	ready.Expect("serial")
	opened := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		markReadyOnOpen(context.Background(), ready, "serial", opened)
	}()
	assert.False(t, ready.Ready())
	close(opened)
	<-done
	assert.True(t, ready.Ready())

	// ctx 取消时保持未就绪
	ready = health.New()
	ready.Expect("serial")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	markReadyOnOpen(ctx, ready, "serial", make(chan struct{}))
	assert.False(t, ready.Ready())
}

func TestRun_SerialNotOpenedIsNotReady(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := cfgpkg.Load("")
	require.NoError(t, err)
	cfg.HTTP.Addr = freeAddr(t)
	cfg.TCP.Enable = false
	cfg.Serial.Enable = true
	cfg.Serial.Port = "/dev/esp-gateway-missing-port"
	cfg.Serial.ReopenDelay = 10 * time.Millisecond
	cfg.Logging.File.Filename = ""

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, zaptest.NewLogger(t)) }()

	base := fmt.Sprintf("http://%s", cfg.HTTP.Addr)
	var code int
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/readyz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		code = resp.StatusCode
		return true
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
