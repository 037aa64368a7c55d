package health

import (
	"context"
	"sync"
	"time"
)

// Aggregator 健康检查聚合器
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
}

// NewAggregator 创建聚合器，单项检查默认超时 2s
func NewAggregator(checkers ...Checker) *Aggregator {
	return &Aggregator{checkers: checkers, timeout: 2 * time.Second}
}

// SetTimeout 单项检查超时
func (a *Aggregator) SetTimeout(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d > 0 {
		a.timeout = d
	}
}

// AddChecker 添加检查器
func (a *Aggregator) AddChecker(checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checker)
}

// HealthReport 健康报告
type HealthReport struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Report 并发执行全部检查并汇总；任一项 unhealthy 则整体 unhealthy
func (a *Aggregator) Report(ctx context.Context) HealthReport {
	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	timeout := a.timeout
	a.mu.RUnlock()

	report := HealthReport{Status: StatusHealthy, Timestamp: time.Now(), Checks: make(map[string]CheckResult, len(checkers))}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			res := c.Check(cctx)

			mu.Lock()
			defer mu.Unlock()
			report.Checks[c.Name()] = res
			report.Status = worse(report.Status, res.Status)
		}(c)
	}
	wg.Wait()
	return report
}

// Ready 降级仍就绪，只有 unhealthy 才不就绪
func (a *Aggregator) Ready(ctx context.Context) bool {
	return a.Report(ctx).Status != StatusUnhealthy
}

// Alive 进程能响应即存活
func (a *Aggregator) Alive() bool { return true }
