package tcpserver

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

// ConnectionLimiter 并发连接数上限（基于信号量，非阻塞获取）
type ConnectionLimiter struct {
	sem           chan struct{}
	maxConn       int
	rejectedCount atomic.Int64
}

// NewConnectionLimiter maxConn<=0 时使用 64
func NewConnectionLimiter(maxConn int) *ConnectionLimiter {
	if maxConn <= 0 {
		maxConn = 64
	}
	return &ConnectionLimiter{sem: make(chan struct{}, maxConn), maxConn: maxConn}
}

// TryAcquire 获取连接许可，已满时立即返回 false
func (l *ConnectionLimiter) TryAcquire() bool {
	select {
	case l.sem <- struct{}{}:
		return true
	default:
		l.rejectedCount.Add(1)
		return false
	}
}

// Release 释放连接许可
func (l *ConnectionLimiter) Release() {
	select {
	case <-l.sem:
	default:
	}
}

// Current 当前活跃连接数
func (l *ConnectionLimiter) Current() int { return len(l.sem) }

// MaxConnections 最大连接数
func (l *ConnectionLimiter) MaxConnections() int { return l.maxConn }

// Stats 获取统计信息
func (l *ConnectionLimiter) Stats() LimiterStats {
	cur := l.Current()
	return LimiterStats{
		MaxConnections:    l.maxConn,
		ActiveConnections: cur,
		RejectedTotal:     l.rejectedCount.Load(),
		Utilization:       float64(cur) / float64(l.maxConn),
	}
}

// LimiterStats 限流器统计信息
type LimiterStats struct {
	MaxConnections    int     `json:"max_connections"`
	ActiveConnections int     `json:"active_connections"`
	RejectedTotal     int64   `json:"rejected_total"`
	Utilization       float64 `json:"utilization"` // 0.0 - 1.0
}

// AcceptLimiter 新连接接入速率限制（令牌桶）
type AcceptLimiter struct {
	limiter       *rate.Limiter
	allowedCount  atomic.Int64
	rejectedCount atomic.Int64
}

// NewAcceptLimiter perSec<=0 时不限速；burst<=0 时为速率的 2 倍
func NewAcceptLimiter(perSec float64, burst int) *AcceptLimiter {
	if perSec <= 0 {
		return &AcceptLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	if burst <= 0 {
		burst = max(1, int(perSec*2))
	}
	return &AcceptLimiter{limiter: rate.NewLimiter(rate.Limit(perSec), burst)}
}

// Allow 非阻塞检查
func (l *AcceptLimiter) Allow() bool {
	if l.limiter.Allow() {
		l.allowedCount.Add(1)
		return true
	}
	l.rejectedCount.Add(1)
	return false
}

// Stats 累计允许与拒绝数
func (l *AcceptLimiter) Stats() (allowed, rejected int64) {
	return l.allowedCount.Load(), l.rejectedCount.Load()
}
