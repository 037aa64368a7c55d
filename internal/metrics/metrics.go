package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// 标签取值
const (
	ResultOK    = "ok"
	ResultError = "error"

	SourceTCP    = "tcp"
	SourceSerial = "serial"
	SourceAPI    = "api"
)

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted   prometheus.Counter
	TCPRejected   prometheus.Counter
	BytesReceived *prometheus.CounterVec // labels: source
	FrameTotal    *prometheus.CounterVec // labels: source, result
	DecodeTotal   *prometheus.CounterVec // labels: type, result
	ActiveSources *prometheus.GaugeVec   // labels: source
	DevicesSeen   prometheus.Gauge       // 已观测到的总线设备数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_reject_total",
			Help: "TCP connections refused by the connection or accept-rate limiter.",
		}),
		BytesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esp_bytes_received_total",
			Help: "Raw ESP bus bytes received by source.",
		}, []string{"source"}),
		FrameTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esp_frame_total",
			Help: "ESP frames accepted or rejected by the framer.",
		}, []string{"source", "result"}),
		DecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esp_decode_total",
			Help: "ESP payload decodes by packet type.",
		}, []string{"type", "result"}),
		ActiveSources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "esp_active_sources",
			Help: "Currently attached ingest sources.",
		}, []string{"source"}),
		DevicesSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "esp_devices_seen",
			Help: "Distinct ESP devices observed since start.",
		}),
	}
	reg.MustRegister(m.TCPAccepted, m.TCPRejected, m.BytesReceived, m.FrameTotal, m.DecodeTotal, m.ActiveSources, m.DevicesSeen)
	return m
}
