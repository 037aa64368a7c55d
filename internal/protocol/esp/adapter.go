package esp

import (
	"errors"

	"go.uber.org/zap"
)

// Adapter ESP 协议适配器：流式解码 + 载荷解码 + 路由表
type Adapter struct {
	decoder       *StreamDecoder
	table         *Table
	logger        *zap.Logger
	onFrameReject func(err error)
	onDecodeError func(env *Envelope, err error)
}

func NewAdapter() *Adapter {
	a := &Adapter{table: NewTable(), logger: zap.NewNop()}
	a.SetMaxFrameLength(MaxFrameLength)
	return a
}

// SetMaxFrameLength 重建流式解码器并设置单帧上限（丢弃已缓存字节）
func (a *Adapter) SetMaxFrameLength(n int) {
	a.decoder = NewStreamDecoder(n)
	a.decoder.OnReject(func(err error) {
		if a.onFrameReject != nil {
			a.onFrameReject(err)
		}
	})
}

// SetLogger 设置日志器
func (a *Adapter) SetLogger(l *zap.Logger) {
	if l != nil {
		a.logger = l
	}
}

// Register 注册包类型处理器
func (a *Adapter) Register(typ PacketType, h Handler) { a.table.Register(typ, h) }

// Fallback 注册兜底处理器（未单独注册的包类型，含 Unknown）
func (a *Adapter) Fallback(h Handler) { a.table.SetFallback(h) }

// OnFrameReject 帧层丢弃回调
func (a *Adapter) OnFrameReject(fn func(err error)) { a.onFrameReject = fn }

// OnDecodeError 载荷解码失败回调
func (a *Adapter) OnDecodeError(fn func(env *Envelope, err error)) { a.onDecodeError = fn }

// ProcessBytes 处理原始字节流：切分帧、解码并路由。
// 单包解码或处理失败不影响后续包，所有处理器错误合并返回
func (a *Adapter) ProcessBytes(p []byte) error {
	envs, err := a.decoder.Feed(p)
	if err != nil {
		return err
	}
	var errs []error
	for _, env := range envs {
		v, derr := Decode(env)
		if derr != nil {
			a.logger.Debug("esp decode failed",
				zap.String("type", env.Type.String()),
				zap.String("origin", env.Origin.String()),
				zap.Int("payload_len", len(env.Payload())),
				zap.Error(derr),
			)
			if a.onDecodeError != nil {
				a.onDecodeError(env, derr)
			}
			continue
		}
		if rerr := a.table.Route(env, v); rerr != nil {
			errs = append(errs, rerr)
		}
	}
	return errors.Join(errs...)
}

// Sniff 粗略判断是否为 ESP 帧（SOF + 目的地址标记）
func (a *Adapter) Sniff(prefix []byte) bool {
	if len(prefix) < 2 {
		return false
	}
	return prefix[0] == StartOfFrame && prefix[1]&markerMask == destMarker
}
