package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "esp-gateway", cfg.App.Name)
	assert.Equal(t, ":7000", cfg.TCP.Addr)
	assert.Equal(t, 19200, cfg.Serial.BaudRate)
	assert.Equal(t, "none", cfg.Serial.Parity)
	assert.Equal(t, 261, cfg.ESP.MaxFrameLength)
	assert.Equal(t, 30*time.Second, cfg.ESP.StaleAfter)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: bench
serial:
  enable: true
  port: /dev/ttyUSB0
  baudRate: 57600
esp:
  staleAfter: 5s
`), 0o600))
	t.Setenv("ESPGW_TCP_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.App.Name)
	assert.True(t, cfg.Serial.Enable)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 5*time.Second, cfg.ESP.StaleAfter)
	assert.Equal(t, ":9100", cfg.TCP.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gw.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial:\n  enable: true\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
