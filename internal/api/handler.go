package api

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/esp-gateway/internal/devicestate"
	"github.com/taoyao-code/esp-gateway/internal/metrics"
	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
	"github.com/taoyao-code/esp-gateway/internal/tcpserver"
)

// SessionSource 提供当前接入会话（TCP 服务实现）
type SessionSource interface {
	Sessions() []tcpserver.SessionInfo
}

// Handler ESP 解码与设备状态 API
type Handler struct {
	tracker  *devicestate.Tracker
	sessions SessionSource
	logger   *zap.Logger
	appm     *metrics.AppMetrics
}

// NewHandler tracker 与 sessions 可为空，对应接口返回空列表
func NewHandler(tracker *devicestate.Tracker, sessions SessionSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{tracker: tracker, sessions: sessions, logger: logger}
}

// SetMetrics 解码接口的流量按 source=api 计入业务指标
func (h *Handler) SetMetrics(appm *metrics.AppMetrics) { h.appm = appm }

func (h *Handler) countFrame(n int, ok bool) {
	if h.appm == nil {
		return
	}
	h.appm.BytesReceived.WithLabelValues(metrics.SourceAPI).Add(float64(n))
	result := metrics.ResultOK
	if !ok {
		result = metrics.ResultError
	}
	h.appm.FrameTotal.WithLabelValues(metrics.SourceAPI, result).Inc()
}

func (h *Handler) countDecode(typ esp.PacketType, err error) {
	if h.appm == nil {
		return
	}
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	h.appm.DecodeTotal.WithLabelValues(typ.String(), result).Inc()
}

// DecodeRequest POST /api/v1/decode
type DecodeRequest struct {
	Hex string `json:"hex" binding:"required"`
}

// FrameView 帧元数据
type FrameView struct {
	Origin         esp.Device     `json:"origin"`
	OriginByte     byte           `json:"origin_byte"`
	Destination    esp.Device     `json:"destination"`
	DestByte       byte           `json:"destination_byte"`
	Type           esp.PacketType `json:"type"`
	TypeCode       string         `json:"type_code"`
	DeclaredLength int            `json:"declared_length"`
	Payload        string         `json:"payload"`
	HasChecksum    bool           `json:"has_checksum"`
}

// DecodeResponse 解码结果
type DecodeResponse struct {
	Frame FrameView `json:"frame"`
	Kind  string    `json:"kind"`
	Value esp.Value `json:"value"`
}

// NewFrameView 由信封生成帧元数据视图
func NewFrameView(env *esp.Envelope) FrameView {
	return FrameView{
		Origin:         env.Origin,
		OriginByte:     env.OriginByte(),
		Destination:    env.Destination,
		DestByte:       env.DestinationByte(),
		Type:           env.Type,
		TypeCode:       fmt.Sprintf("%02X", byte(env.Type)),
		DeclaredLength: env.DeclaredLength(),
		Payload:        hex.EncodeToString(env.Payload()),
		HasChecksum:    env.HasChecksum(),
	}
}

// Decode 解析并解码单帧
func (h *Handler) Decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "detail": err.Error()})
		return
	}
	raw, err := esp.ParseHex(req.Hex)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hex", "detail": err.Error()})
		return
	}
	env, err := esp.Parse(raw)
	h.countFrame(len(raw), err == nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed frame", "detail": err.Error()})
		return
	}
	v, err := esp.Decode(env)
	h.countDecode(env.Type, err)
	if err != nil {
		body := gin.H{"error": "decode failed", "detail": err.Error(), "frame": NewFrameView(env)}
		var de *esp.DecodeError
		if errors.As(err, &de) {
			body["need"], body["got"] = de.Need, de.Got
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	c.JSON(http.StatusOK, DecodeResponse{Frame: NewFrameView(env), Kind: esp.KindOf(v), Value: v})
}

// DeviceEntry 设备注册表条目
type DeviceEntry struct {
	Byte     string     `json:"byte"`
	Name     esp.Device `json:"name"`
	Checksum bool       `json:"checksum"`
}

// PacketTypeEntry 包类型注册表条目
type PacketTypeEntry struct {
	Code       string         `json:"code"`
	Name       esp.PacketType `json:"name"`
	MinPayload int            `json:"min_payload"`
}

// DeviceRegistry 全部设备（含哨兵）
func DeviceRegistry() []DeviceEntry {
	devs := esp.Devices()
	out := make([]DeviceEntry, 0, len(devs))
	for _, d := range devs {
		out = append(out, DeviceEntry{Byte: fmt.Sprintf("%02X", d.Byte()), Name: d, Checksum: d.HasChecksum()})
	}
	return out
}

// PacketTypeRegistry 全部已声明包类型及最小载荷长度
func PacketTypeRegistry() []PacketTypeEntry {
	types := esp.PacketTypes()
	out := make([]PacketTypeEntry, 0, len(types))
	for _, t := range types {
		out = append(out, PacketTypeEntry{Code: t.Hex(), Name: t, MinPayload: esp.MinPayloadLength(t)})
	}
	return out
}

// ListDeviceRegistry GET /api/v1/registry/devices
func (h *Handler) ListDeviceRegistry(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"devices": DeviceRegistry()})
}

// ListPacketTypes GET /api/v1/registry/packet-types
func (h *Handler) ListPacketTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"packet_types": PacketTypeRegistry()})
}

// ListDevices GET /api/v1/devices
func (h *Handler) ListDevices(c *gin.Context) {
	list := []devicestate.Snapshot{}
	resp := gin.H{}
	if h.tracker != nil {
		list = h.tracker.List()
		// user bytes 的含义随固件版本变化，调用方据此解释
		if fw, err := h.tracker.FirmwareVersion(); err == nil {
			resp["firmware_version"] = fw
		}
	}
	resp["devices"], resp["total"] = list, len(list)
	c.JSON(http.StatusOK, resp)
}

// GetDevice GET /api/v1/devices/:byte （十六进制设备字节，如 0A）
func (h *Handler) GetDevice(c *gin.Context) {
	b, err := esp.ParseHex(c.Param("byte"))
	if err != nil || len(b) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid device byte"})
		return
	}
	dev := esp.DeviceFromByte(b[0])
	if h.tracker == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not seen"})
		return
	}
	s, ok := h.tracker.Get(dev)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "device not seen"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// ListSessions GET /api/v1/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	list := []tcpserver.SessionInfo{}
	if h.sessions != nil {
		list = h.sessions.Sessions()
	}
	c.JSON(http.StatusOK, gin.H{"sessions": list, "total": len(list)})
}
