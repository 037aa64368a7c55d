package gateway

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/esp-gateway/internal/config"
	"github.com/taoyao-code/esp-gateway/internal/devicestate"
	"github.com/taoyao-code/esp-gateway/internal/logging"
	"github.com/taoyao-code/esp-gateway/internal/metrics"
	padapter "github.com/taoyao-code/esp-gateway/internal/protocol/adapter"
	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
	"github.com/taoyao-code/esp-gateway/internal/serialport"
	"github.com/taoyao-code/esp-gateway/internal/tcpserver"
)

// Pipeline 将接入源的 ESP 适配器接到设备状态、指标与日志
type Pipeline struct {
	tracker     *devicestate.Tracker
	appm        *metrics.AppMetrics
	logger      *zap.Logger
	sampler     *logging.Sampler
	maxFrameLen int
}

// NewPipeline appm 可为空（关闭指标时）
func NewPipeline(cfg cfgpkg.ESPConfig, tracker *devicestate.Tracker, appm *metrics.AppMetrics, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		tracker:     tracker,
		appm:        appm,
		logger:      logger,
		sampler:     logging.NewSampler(cfg.RejectLogRate, cfg.RejectLogBurst),
		maxFrameLen: cfg.MaxFrameLength,
	}
}

// NewAdapter 为一个接入会话构建适配器（流式解码有状态，不能跨会话共享）
func (p *Pipeline) NewAdapter(source, sessionID string) *esp.Adapter {
	log := p.logger.With(zap.String("source", source), zap.String("session_id", sessionID))

	a := esp.NewAdapter()
	a.SetMaxFrameLength(p.maxFrameLen)
	a.SetLogger(log)

	a.OnFrameReject(func(err error) {
		if p.appm != nil {
			p.appm.FrameTotal.WithLabelValues(source, metrics.ResultError).Inc()
		}
		p.sampler.Warn(log, "esp frame rejected", zap.Error(err))
	})
	a.OnDecodeError(func(env *esp.Envelope, err error) {
		if p.appm != nil {
			p.appm.FrameTotal.WithLabelValues(source, metrics.ResultOK).Inc()
			p.appm.DecodeTotal.WithLabelValues(env.Type.String(), metrics.ResultError).Inc()
		}
		p.tracker.RecordError(env, err)
		p.sampler.Warn(log, "esp payload decode failed",
			zap.String("type", env.Type.String()),
			zap.String("origin", env.Origin.String()),
			zap.Error(err),
		)
	})
	a.Fallback(func(env *esp.Envelope, v esp.Value) error {
		p.tracker.Apply(env, v)
		if p.appm != nil {
			p.appm.FrameTotal.WithLabelValues(source, metrics.ResultOK).Inc()
			p.appm.DecodeTotal.WithLabelValues(env.Type.String(), metrics.ResultOK).Inc()
			p.appm.DevicesSeen.Set(float64(p.tracker.Count()))
		}
		if u, ok := v.(esp.Unknown); ok {
			log.Debug("unknown esp packet",
				zap.String("code", u.Code.Hex()),
				zap.Binary("payload", u.Payload),
			)
		}
		return nil
	})
	return a
}

// AttachTCP 为 TCP 接入服务安装连接处理与指标回调
func (p *Pipeline) AttachTCP(s *tcpserver.Server) {
	var onAccept, onReject func()
	var onRecv func(int)
	if p.appm != nil {
		onAccept = p.appm.TCPAccepted.Inc
		onReject = p.appm.TCPRejected.Inc
		bytes := p.appm.BytesReceived.WithLabelValues(metrics.SourceTCP)
		onRecv = func(n int) { bytes.Add(float64(n)) }
	}
	s.SetMetricsCallbacks(onAccept, onReject, onRecv)

	s.SetConnHandler(func(cc *tcpserver.ConnContext) {
		a := p.NewAdapter(metrics.SourceTCP, cc.ID())
		tcpserver.NewMux(padapter.Named{Name: "esp", Adapter: a}).BindToConn(cc)

		if p.appm != nil {
			active := p.appm.ActiveSources.WithLabelValues(metrics.SourceTCP)
			active.Inc()
			cc.SetOnClose(active.Dec)
		}
		cc.Logger().Info("esp source attached", zap.String("remote_addr", cc.RemoteAddr().String()))
	})
}

// AttachSerial 安装串口指标回调，返回 Reader.Run 所需的适配器工厂
func (p *Pipeline) AttachSerial(r *serialport.Reader) func(sessionID string) padapter.Adapter {
	if p.appm != nil {
		bytes := p.appm.BytesReceived.WithLabelValues(metrics.SourceSerial)
		active := p.appm.ActiveSources.WithLabelValues(metrics.SourceSerial)
		r.SetCallbacks(
			func(n int) { bytes.Add(float64(n)) },
			func(attached bool) {
				if attached {
					active.Inc()
					return
				}
				active.Dec()
			},
		)
	}
	return func(sessionID string) padapter.Adapter {
		return p.NewAdapter(metrics.SourceSerial, sessionID)
	}
}
