package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/esp-gateway/internal/api/middleware"
)

// RegisterRoutes 注册 /api/v1 路由组
func RegisterRoutes(r *gin.Engine, h *Handler, authCfg middleware.AuthConfig, rateCfg middleware.RateLimitConfig, logger *zap.Logger) {
	if r == nil || h == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rateCfg))
	if authCfg.Enabled {
		v1.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled")
	}

	v1.POST("/decode", h.Decode)
	v1.GET("/registry/devices", h.ListDeviceRegistry)
	v1.GET("/registry/packet-types", h.ListPacketTypes)
	v1.GET("/devices", h.ListDevices)
	v1.GET("/devices/:byte", h.GetDevice)
	v1.GET("/sessions", h.ListSessions)
}
