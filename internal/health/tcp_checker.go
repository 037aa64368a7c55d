package health

import (
	"context"
	"fmt"
	"time"

	"github.com/taoyao-code/esp-gateway/internal/tcpserver"
)

// TCPStats TCP 接入服务统计，*tcpserver.Server 满足该接口
type TCPStats interface {
	LimiterStats() tcpserver.LimiterStats
}

const degradedUtilization = 0.9

// TCPChecker 按连接利用率判断 TCP 接入健康度
type TCPChecker struct {
	server TCPStats
}

// NewTCPChecker 创建TCP健康检查器
func NewTCPChecker(server TCPStats) *TCPChecker {
	return &TCPChecker{server: server}
}

func (c *TCPChecker) Name() string { return "tcp" }

// Check 利用率达到 90% 降级，超过 95% 不健康
func (c *TCPChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	stats := c.server.LimiterStats()

	status, message := StatusHealthy, "ok"
	switch {
	case stats.Utilization > 0.95:
		status, message = StatusUnhealthy, "connection limit near exhausted"
	case stats.Utilization >= degradedUtilization:
		status, message = StatusDegraded, "high connection usage"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]any{
			"active_connections": stats.ActiveConnections,
			"max_connections":    stats.MaxConnections,
			"rejected_total":     stats.RejectedTotal,
			"utilization":        fmt.Sprintf("%.1f%%", stats.Utilization*100),
		},
		Latency: time.Since(start),
	}
}
