package health

import (
	"context"
	"time"
)

// OnlineCounter 设备在线计数，*devicestate.Tracker 满足该接口
type OnlineCounter interface {
	Count() int
	Online(staleAfter time.Duration) int
}

// BusChecker 总线上长时间没有任何设备发言时降级（不会判为 unhealthy）
type BusChecker struct {
	devices    OnlineCounter
	staleAfter time.Duration
}

func NewBusChecker(devices OnlineCounter, staleAfter time.Duration) *BusChecker {
	return &BusChecker{devices: devices, staleAfter: staleAfter}
}

func (c *BusChecker) Name() string { return "esp_bus" }

func (c *BusChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	online := c.devices.Online(c.staleAfter)
	res := CheckResult{
		Status:  StatusHealthy,
		Message: "ok",
		Details: map[string]any{"devices_seen": c.devices.Count(), "devices_online": online},
	}
	if online == 0 {
		res.Status, res.Message = StatusDegraded, "no esp device heard recently"
	}
	res.Latency = time.Since(start)
	return res
}
