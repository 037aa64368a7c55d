package health

import (
	"context"
	"time"
)

// SerialStatus 串口读取器状态，*serialport.Reader 满足该接口
type SerialStatus interface {
	Path() string
	Connected() bool
	LastData() time.Time
}

// SerialChecker 串口未打开为 unhealthy，打开但长时间无数据为 degraded
type SerialChecker struct {
	port    SerialStatus
	silence time.Duration
	now     func() time.Time
}

// NewSerialChecker silence<=0 时不检查静默
func NewSerialChecker(port SerialStatus, silence time.Duration) *SerialChecker {
	return &SerialChecker{port: port, silence: silence, now: time.Now}
}

func (c *SerialChecker) Name() string { return "serial" }

func (c *SerialChecker) Check(ctx context.Context) CheckResult {
	start := c.now()
	last := c.port.LastData()
	details := map[string]any{"port": c.port.Path(), "connected": c.port.Connected()}
	if !last.IsZero() {
		details["last_data"] = last
	}

	res := CheckResult{Status: StatusHealthy, Message: "ok", Details: details}
	switch {
	case !c.port.Connected():
		res.Status, res.Message = StatusUnhealthy, "serial port not open"
	case c.silence > 0 && (last.IsZero() || c.now().Sub(last) > c.silence):
		res.Status, res.Message = StatusDegraded, "no bus data received recently"
	}
	res.Latency = c.now().Sub(start)
	return res
}
