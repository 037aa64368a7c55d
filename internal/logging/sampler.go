package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sampler 按令牌桶限制同类告警的输出频率，被抑制的条数随下一条日志带出
type Sampler struct {
	lim        *rate.Limiter
	suppressed atomic.Int64
}

// NewSampler perSec<=0 时不限流
func NewSampler(perSec float64, burst int) *Sampler {
	limit := rate.Inf
	if perSec > 0 {
		limit = rate.Limit(perSec)
	}
	if burst <= 0 {
		burst = 1
	}
	return &Sampler{lim: rate.NewLimiter(limit, burst)}
}

// Warn 在令牌允许时输出告警，否则只计数
func (s *Sampler) Warn(l *zap.Logger, msg string, fields ...zap.Field) bool {
	if l == nil {
		return false
	}
	if !s.lim.Allow() {
		s.suppressed.Add(1)
		return false
	}
	if n := s.suppressed.Swap(0); n > 0 {
		fields = append(fields, zap.Int64("suppressed", n))
	}
	l.Warn(msg, fields...)
	return true
}

// Suppressed 当前累计的未输出条数
func (s *Sampler) Suppressed() int64 { return s.suppressed.Load() }
