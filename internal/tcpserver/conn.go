package tcpserver

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnContext 单个 TCP 连接的读循环与回调
type ConnContext struct {
	s         *Server
	c         net.Conn
	id        string
	startedAt time.Time
	bytesIn   atomic.Int64
	closeOnce sync.Once
	onRead    func([]byte)
	onClose   func()
	doneC     chan struct{}
	proto     atomic.Value // string: 协议标记，由 Mux 设置
}

func newConnContext(s *Server, c net.Conn) *ConnContext {
	cc := &ConnContext{
		s:         s,
		c:         c,
		id:        uuid.NewString(),
		startedAt: time.Now(),
		doneC:     make(chan struct{}),
	}
	cc.proto.Store("")
	return cc
}

// ID 会话 ID（uuid）
func (cc *ConnContext) ID() string { return cc.id }

// RemoteAddr 返回远端地址
func (cc *ConnContext) RemoteAddr() net.Addr { return cc.c.RemoteAddr() }

// SetOnRead 安装读取回调（收到上行原始字节时触发，回调返回后缓冲区会被复用）
func (cc *ConnContext) SetOnRead(h func([]byte)) { cc.onRead = h }

// SetOnClose 连接结束回调
func (cc *ConnContext) SetOnClose(h func()) { cc.onClose = h }

// SetProtocol 设置连接所使用的协议标记
func (cc *ConnContext) SetProtocol(p string) { cc.proto.Store(p) }

// Protocol 返回连接的协议标记
func (cc *ConnContext) Protocol() string {
	s, _ := cc.proto.Load().(string)
	return s
}

// Logger 带会话字段的日志器
func (cc *ConnContext) Logger() *zap.Logger {
	l := zap.NewNop()
	if cc.s != nil {
		l = cc.s.logger
	}
	return l.With(zap.String("session_id", cc.id))
}

// SessionInfo 会话概要
type SessionInfo struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	RemoteAddr string    `json:"remote_addr"`
	Protocol   string    `json:"protocol"`
	StartedAt  time.Time `json:"started_at"`
	BytesIn    int64     `json:"bytes_in"`
}

// Info 返回会话概要
func (cc *ConnContext) Info() SessionInfo {
	info := SessionInfo{ID: cc.id, Source: "tcp", Protocol: cc.Protocol(), StartedAt: cc.startedAt, BytesIn: cc.bytesIn.Load()}
	if cc.c != nil {
		info.RemoteAddr = cc.c.RemoteAddr().String()
	}
	return info
}

// Close 关闭连接
func (cc *ConnContext) Close() error {
	var err error
	cc.closeOnce.Do(func() { err = cc.c.Close() })
	return err
}

// run 启动读循环，阻塞直至连接结束
func (cc *ConnContext) run() {
	defer func() {
		_ = cc.Close()
		if cc.onClose != nil {
			cc.onClose()
		}
		close(cc.doneC)
	}()

	timeout := cc.s.cfg.ReadTimeout
	buf := make([]byte, 4096)
	for {
		if timeout > 0 {
			_ = cc.c.SetReadDeadline(time.Now().Add(timeout))
		}
		n, err := cc.c.Read(buf)
		if n > 0 {
			cc.bytesIn.Add(int64(n))
			if cc.s.onRecvBytes != nil {
				cc.s.onRecvBytes(n)
			}
			if cc.onRead != nil {
				cc.onRead(buf[:n])
			}
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				// 总线空闲，刷新 deadline 继续
				continue
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				cc.Logger().Debug("tcp read ended", zap.Error(err))
			}
			return
		}
	}
}

// Done 返回连接关闭通知通道
func (cc *ConnContext) Done() <-chan struct{} { return cc.doneC }
