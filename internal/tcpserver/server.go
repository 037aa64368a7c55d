package tcpserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/esp-gateway/internal/config"
)

// Server TCP 接入服务：每个连接对应一路 ESP 字节流（例如串口转 TCP 的桥接器）
type Server struct {
	cfg    cfgpkg.TCPConfig
	logger *zap.Logger

	ln    net.Listener
	wg    sync.WaitGroup
	stopC chan struct{}
	once  sync.Once

	mu    sync.Mutex
	conns map[string]*ConnContext

	connLimiter   *ConnectionLimiter
	acceptLimiter *AcceptLimiter

	connHandler func(*ConnContext)
	// 可选指标回调
	onAccept    func()
	onReject    func()
	onRecvBytes func(n int)
}

// New 创建 TCP 接入服务
func New(cfg cfgpkg.TCPConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:           cfg,
		logger:        logger,
		stopC:         make(chan struct{}),
		conns:         make(map[string]*ConnContext),
		connLimiter:   NewConnectionLimiter(cfg.MaxConnections),
		acceptLimiter: NewAcceptLimiter(cfg.AcceptRate, cfg.AcceptBurst),
	}
}

// SetConnHandler 设置新连接回调（在读循环启动前调用，用于安装 onRead）
func (s *Server) SetConnHandler(h func(*ConnContext)) { s.connHandler = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept, onReject func(), onRecvBytes func(int)) {
	s.onAccept, s.onReject, s.onRecvBytes = onAccept, onReject, onRecvBytes
}

// Logger 返回服务日志器
func (s *Server) Logger() *zap.Logger { return s.logger }

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("tcp ingest listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr 实际监听地址（Start 之后有效）
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopC:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// 短暂错误等待后重试
			s.logger.Warn("tcp accept failed", zap.Error(err))
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if !s.acceptLimiter.Allow() || !s.connLimiter.TryAcquire() {
			s.logger.Warn("tcp connection refused by limiter", zap.String("remote_addr", conn.RemoteAddr().String()))
			if s.onReject != nil {
				s.onReject()
			}
			_ = conn.Close()
			continue
		}
		if s.onAccept != nil {
			s.onAccept()
		}

		cc := newConnContext(s, conn)
		s.track(cc, true)
		if s.connHandler != nil {
			s.connHandler(cc)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.connLimiter.Release()
			defer s.track(cc, false)
			cc.run()
		}()
	}
}

func (s *Server) track(cc *ConnContext, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[cc.ID()] = cc
		return
	}
	delete(s.conns, cc.ID())
}

// ActiveConnections 当前连接数
func (s *Server) ActiveConnections() int { return s.connLimiter.Current() }

// MaxConnections 连接上限
func (s *Server) MaxConnections() int { return s.connLimiter.MaxConnections() }

// LimiterStats 连接限流统计
func (s *Server) LimiterStats() LimiterStats { return s.connLimiter.Stats() }

// Sessions 当前连接的会话信息
func (s *Server) Sessions() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionInfo, 0, len(s.conns))
	for _, cc := range s.conns {
		out = append(out, cc.Info())
	}
	return out
}

// Shutdown 优雅关闭监听并等待连接退出
func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() { close(s.stopC) })
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.mu.Lock()
	for _, cc := range s.conns {
		_ = cc.Close()
	}
	s.mu.Unlock()

	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
