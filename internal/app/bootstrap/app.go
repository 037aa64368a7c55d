package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/esp-gateway/internal/api"
	"github.com/taoyao-code/esp-gateway/internal/api/middleware"
	cfgpkg "github.com/taoyao-code/esp-gateway/internal/config"
	"github.com/taoyao-code/esp-gateway/internal/devicestate"
	"github.com/taoyao-code/esp-gateway/internal/gateway"
	"github.com/taoyao-code/esp-gateway/internal/health"
	"github.com/taoyao-code/esp-gateway/internal/httpserver"
	"github.com/taoyao-code/esp-gateway/internal/metrics"
	"github.com/taoyao-code/esp-gateway/internal/serialport"
	"github.com/taoyao-code/esp-gateway/internal/tcpserver"
)

// Run 统一启动流程，阻塞直至 ctx 取消后完成优雅关闭
func Run(ctx context.Context, cfg *cfgpkg.Config, log *zap.Logger) error {
	log.Info("starting esp gateway", zap.String("name", cfg.App.Name), zap.String("env", cfg.App.Env))

	// ========== 阶段1: 基础组件 ==========
	reg := metrics.NewRegistry()
	appm := metrics.NewAppMetrics(reg)
	var metricsHandler http.Handler
	if cfg.Metrics.Enable {
		metricsHandler = metrics.Handler(reg)
	}
	tracker := devicestate.New()
	pipeline := gateway.NewPipeline(cfg.ESP, tracker, appm, log)
	ready := health.New()
	healthAgg := health.NewAggregator(health.NewBusChecker(tracker, cfg.ESP.StaleAfter))

	// ========== 阶段2: TCP 接入 ==========
	var tcpSrv *tcpserver.Server
	if cfg.TCP.Enable {
		ready.Expect("tcp")
		tcpSrv = tcpserver.New(cfg.TCP, log)
		pipeline.AttachTCP(tcpSrv)
		if err := tcpSrv.Start(); err != nil {
			log.Error("tcp server start failed", zap.Error(err))
			return err
		}
		ready.Set("tcp", true)
		healthAgg.AddChecker(health.NewTCPChecker(tcpSrv))
	}

	// ========== 阶段3: 串口接入（断线自动重连）==========
	serialDone := make(chan struct{})
	serialCtx, stopSerial := context.WithCancel(ctx)
	defer stopSerial()
	var reader *serialport.Reader
	if cfg.Serial.Enable {
		ready.Expect("serial")
		reader = serialport.NewReader(serialport.Config{
			Path:        cfg.Serial.Port,
			Options:     serialport.OptionsFromConfig(cfg.Serial),
			ReadTimeout: cfg.Serial.ReadTimeout,
			ReopenDelay: cfg.Serial.ReopenDelay,
		}, nil, log)
		newAdapter := pipeline.AttachSerial(reader)
		healthAgg.AddChecker(health.NewSerialChecker(reader, cfg.ESP.StaleAfter))
		go func() {
			defer close(serialDone)
			if err := reader.Run(serialCtx, newAdapter); err != nil {
				log.Error("serial reader stopped", zap.Error(err))
			}
		}()
		go markReadyOnOpen(serialCtx, ready, "serial", reader.Opened())
		log.Info("serial ingest started", zap.String("port", cfg.Serial.Port))
	} else {
		close(serialDone)
	}

	// ========== 阶段4: HTTP 服务 ==========
	handler := api.NewHandler(tracker, gateway.Sessions{TCP: tcpSrv, Serial: reader}, log)
	handler.SetMetrics(appm)
	httpSrv := httpserver.New(cfg.HTTP, log, cfg.Metrics.Path, metricsHandler, ready.Ready,
		func(r *gin.Engine) {
			api.RegisterRoutes(r, handler,
				middleware.AuthConfig{Enabled: cfg.HTTP.API.AuthEnabled, APIKeys: cfg.HTTP.API.APIKeys},
				middleware.RateLimitConfig{Enabled: cfg.HTTP.API.RequestsPerMin > 0, RequestsPerMin: cfg.HTTP.API.RequestsPerMin, BurstSize: cfg.HTTP.API.Burst},
				log)
		},
		func(r *gin.Engine) { health.RegisterHTTPRoutes(r, healthAgg) },
	)
	httpErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()
	log.Info("http server started", zap.String("addr", cfg.HTTP.Addr))

	// ========== 阶段5: 等待关闭 ==========
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown requested, gracefully shutting down...")
	case runErr = <-httpErr:
		log.Error("http server error", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	if tcpSrv != nil {
		_ = tcpSrv.Shutdown(shutdownCtx)
		log.Info("tcp server stopped")
	}

	stopSerial()
	select {
	case <-serialDone:
	case <-shutdownCtx.Done():
		log.Warn("serial reader did not stop in time")
	}

	log.Info("shutdown complete", zap.Int("devices_seen", tracker.Count()))
	return runErr
}

// markReadyOnOpen 接入源首次打开后标记就绪
func markReadyOnOpen(ctx context.Context, ready *health.Readiness, name string, opened <-chan struct{}) {
	select {
	case <-opened:
		ready.Set(name, true)
	case <-ctx.Done():
	}
}
