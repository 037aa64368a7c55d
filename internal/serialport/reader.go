package serialport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.bug.st/serial"
	"go.uber.org/zap"

	padapter "github.com/taoyao-code/esp-gateway/internal/protocol/adapter"
)

// Port 读循环所需的串口能力，go.bug.st/serial.Port 满足该接口
type Port interface {
	io.ReadCloser
	SetReadTimeout(t time.Duration) error
}

// Opener 打开串口
type Opener func(path string, mode *serial.Mode) (Port, error)

// OpenSerial 默认实现
func OpenSerial(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// Reader 将串口字节泵入协议适配器，断开后按间隔重新打开
type Reader struct {
	path        string
	opts        PortOptions
	readTimeout time.Duration
	reopenDelay time.Duration
	open        Opener
	logger      *zap.Logger

	sessionID  atomic.Value // string
	connected  atomic.Bool
	lastData   atomic.Int64 // unix nano
	openedAt   atomic.Int64 // unix nano
	bytesIn    atomic.Int64
	onRecv     func(n int)
	onAttached func(attached bool)

	openedOnce sync.Once
	openedC    chan struct{}
}

// Config Reader 参数
type Config struct {
	Path        string
	Options     PortOptions
	ReadTimeout time.Duration
	ReopenDelay time.Duration
}

// NewReader 创建串口读取器；open 为空时使用 go.bug.st/serial
func NewReader(cfg Config, open Opener, logger *zap.Logger) *Reader {
	if open == nil {
		open = OpenSerial
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	if cfg.ReopenDelay <= 0 {
		cfg.ReopenDelay = 2 * time.Second
	}
	r := &Reader{
		path:        cfg.Path,
		opts:        cfg.Options,
		readTimeout: cfg.ReadTimeout,
		reopenDelay: cfg.ReopenDelay,
		open:        open,
		logger:      logger.With(zap.String("port", cfg.Path)),
		openedC:     make(chan struct{}),
	}
	r.sessionID.Store("")
	return r
}

// SetCallbacks 设置指标回调
func (r *Reader) SetCallbacks(onRecv func(n int), onAttached func(attached bool)) {
	r.onRecv, r.onAttached = onRecv, onAttached
}

// Path 串口路径
func (r *Reader) Path() string { return r.path }

// Opened 首次成功打开串口后关闭，用于启动就绪判断
func (r *Reader) Opened() <-chan struct{} { return r.openedC }

// Connected 串口当前是否打开
func (r *Reader) Connected() bool { return r.connected.Load() }

// SessionID 当前打开周期的会话 ID，未打开时为空
func (r *Reader) SessionID() string {
	s, _ := r.sessionID.Load().(string)
	return s
}

// LastData 最近一次收到数据的时间，从未收到时为零值
func (r *Reader) LastData() time.Time {
	n := r.lastData.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// OpenedAt 当前打开周期的起始时间，未打开时为零值
func (r *Reader) OpenedAt() time.Time {
	n := r.openedAt.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// BytesIn 累计读取字节数
func (r *Reader) BytesIn() int64 { return r.bytesIn.Load() }

// Run 阻塞运行直至 ctx 取消。newAdapter 在每次打开串口时调用，
// 断线重连后流式解码从空缓冲开始
func (r *Reader) Run(ctx context.Context, newAdapter func(sessionID string) padapter.Adapter) error {
	mode, err := r.opts.Mode()
	if err != nil {
		return fmt.Errorf("serial options: %w", err)
	}
	for {
		if err := r.session(ctx, mode, newAdapter); err != nil && ctx.Err() == nil {
			r.logger.Warn("serial session ended", zap.Error(err), zap.Duration("reopen_in", r.reopenDelay))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.reopenDelay):
		}
	}
}

func (r *Reader) session(ctx context.Context, mode *serial.Mode, newAdapter func(string) padapter.Adapter) error {
	port, err := r.open(r.path, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	if err := port.SetReadTimeout(r.readTimeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("set read timeout: %w", err)
	}

	id := uuid.NewString()
	r.sessionID.Store(id)
	r.openedAt.Store(time.Now().UnixNano())
	r.setAttached(true)
	r.openedOnce.Do(func() { close(r.openedC) })
	defer func() {
		r.setAttached(false)
		r.sessionID.Store("")
		r.openedAt.Store(0)
	}()
	r.logger.Info("serial port opened", zap.String("session_id", id), zap.Int("baud", mode.BaudRate))

	// ctx 取消时关闭串口以打断阻塞读
	stop := context.AfterFunc(ctx, func() { _ = port.Close() })
	defer func() {
		if stop() {
			_ = port.Close()
		}
	}()

	a := newAdapter(id)
	buf := make([]byte, 512)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			r.bytesIn.Add(int64(n))
			r.lastData.Store(time.Now().UnixNano())
			if r.onRecv != nil {
				r.onRecv(n)
			}
			if perr := a.ProcessBytes(buf[:n]); perr != nil {
				r.logger.Debug("process bytes failed", zap.Error(perr))
			}
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		// n == 0 && err == nil：读超时，继续等待
	}
}

func (r *Reader) setAttached(v bool) {
	r.connected.Store(v)
	if r.onAttached != nil {
		r.onAttached(v)
	}
}
