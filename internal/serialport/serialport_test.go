package serialport

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/zap/zaptest"

	padapter "github.com/taoyao-code/esp-gateway/internal/protocol/adapter"
	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
)

func TestPortOptions_Normalize(t *testing.T) {
	opts, err := PortOptions{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, PortOptions{BaudRate: 19200, DataBits: 8, StopBits: 1, Parity: "N"}, opts)

	opts, err = PortOptions{BaudRate: 57600, Parity: "even", StopBits: 2}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "E", opts.Parity)

	_, err = PortOptions{DataBits: 9}.Normalize()
	assert.Error(t, err)
	_, err = PortOptions{StopBits: 3}.Normalize()
	assert.Error(t, err)
	_, err = PortOptions{Parity: "mark"}.Normalize()
	assert.Error(t, err)
}

func TestPortOptions_Mode(t *testing.T) {
	mode, err := PortOptions{Parity: "O", StopBits: 2}.Mode()
	require.NoError(t, err)
	assert.Equal(t, &serial.Mode{BaudRate: 19200, DataBits: 8, Parity: serial.OddParity, StopBits: serial.TwoStopBits}, mode)
}

// fakePort 按顺序返回预置的数据块，之后返回 io.EOF
type fakePort struct {
	mu     sync.Mutex
	chunks [][]byte
	closed bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, errors.New("port closed")
	}
	if len(p.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(b, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(time.Duration) error { return nil }

func TestReader_PumpsFramesAndReopens(t *testing.T) {
	frame, err := esp.Build(esp.ValentineOneWithChecksum, esp.V1Connection, esp.RespVehicleSpeed, []byte{55})
	require.NoError(t, err)

	var mu sync.Mutex
	opens := 0
	open := func(path string, mode *serial.Mode) (Port, error) {
		mu.Lock()
		defer mu.Unlock()
		opens++
		if opens == 2 {
			return nil, errors.New("busy")
		}
		return &fakePort{chunks: [][]byte{frame[:3], frame[3:]}}, nil
	}

	r := NewReader(Config{Path: "/dev/ttyFAKE", ReopenDelay: 5 * time.Millisecond}, open, zaptest.NewLogger(t))
	select {
	case <-r.Opened():
		t.Fatal("opened before Run")
	default:
	}
	var attached []bool
	r.SetCallbacks(nil, func(v bool) { mu.Lock(); attached = append(attached, v); mu.Unlock() })

	speeds := make(chan uint8, 8)
	sessions := make(chan string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, func(id string) padapter.Adapter {
			select {
			case sessions <- id:
			default:
			}
			a := esp.NewAdapter()
			a.Register(esp.RespVehicleSpeed, func(_ *esp.Envelope, v esp.Value) error {
				select {
				case speeds <- v.(esp.VehicleSpeed).Speed:
				default:
				}
				return nil
			})
			return a
		})
	}()

	// 第一次打开与第三次打开各产生一帧，中间一次打开失败
	for i := 0; i < 2; i++ {
		select {
		case s := <-speeds:
			assert.Equal(t, uint8(55), s)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for frame")
		}
	}
	cancel()
	require.NoError(t, <-done)

	select {
	case <-r.Opened():
	default:
		t.Fatal("Opened not closed after a successful open")
	}
	id1, id2 := <-sessions, <-sessions
	assert.NotEqual(t, id1, id2)
	assert.GreaterOrEqual(t, r.BytesIn(), int64(2*len(frame)))
	assert.False(t, r.LastData().IsZero())
	assert.False(t, r.Connected())

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, opens, 3)
	require.GreaterOrEqual(t, len(attached), 4)
	assert.Equal(t, []bool{true, false, true, false}, attached[:4])
}

func TestReader_BadOptions(t *testing.T) {
	r := NewReader(Config{Path: "x", Options: PortOptions{DataBits: 4}}, nil, nil)
	err := r.Run(context.Background(), nil)
	assert.Error(t, err)
}
