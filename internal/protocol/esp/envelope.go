package esp

import "fmt"

// HeaderSize 固定包头长度：SOF | dest | origin | packetId | length
const HeaderSize = 5

// Envelope 一个完整 ESP 包的内存表示（构造后只读）
type Envelope struct {
	Origin      Device
	Destination Device
	Type        PacketType

	originByte     byte
	destByte       byte
	declaredLength int
	payload        []byte
}

// NewEnvelope 由帧层给出的元数据与原始缓冲构造信封。
// raw 从 SOF 开始；declaredLength 为包头加载荷（含校验字节）的总长度，raw 只允许多出尾部 EOF。
func NewEnvelope(originByte, destByte byte, typ PacketType, declaredLength int, raw []byte) (*Envelope, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: buffer %d bytes shorter than header", ErrMalformedEnvelope, len(raw))
	}
	if declaredLength < HeaderSize {
		return nil, fmt.Errorf("%w: declared length %d below header size", ErrMalformedEnvelope, declaredLength)
	}
	if declaredLength > len(raw) {
		return nil, fmt.Errorf("%w: declared length %d exceeds buffer %d", ErrMalformedEnvelope, declaredLength, len(raw))
	}
	// 缓冲之后至多跟一个 EOF
	if extra := len(raw) - declaredLength; extra > 1 || (extra == 1 && raw[declaredLength] != EndOfFrame) {
		return nil, fmt.Errorf("%w: declared length %d undershoots buffer %d", ErrMalformedEnvelope, declaredLength, len(raw))
	}
	return &Envelope{
		Origin:         DeviceFromByte(originByte),
		Destination:    DeviceFromByte(destByte),
		Type:           typ,
		originByte:     originByte,
		destByte:       destByte,
		declaredLength: declaredLength,
		payload:        raw[HeaderSize:declaredLength],
	}, nil
}

// OriginByte returns the origin id as it appeared on the wire.
func (e *Envelope) OriginByte() byte { return e.originByte }

// DestinationByte returns the destination id as it appeared on the wire.
func (e *Envelope) DestinationByte() byte { return e.destByte }

// DeclaredLength 包头加载荷的总长度
func (e *Envelope) DeclaredLength() int { return e.declaredLength }

// Payload 包头之后的全部字节（含可能存在的校验字节）
func (e *Envelope) Payload() []byte { return e.payload }

// HasChecksum 由发送方设备类别决定，而非检查字节内容
func (e *Envelope) HasChecksum() bool { return e.Origin.HasChecksum() }

// EffectivePayloadLength 去掉尾部校验字节后的载荷长度
func (e *Envelope) EffectivePayloadLength() int {
	n := len(e.payload)
	if e.HasChecksum() && n > 0 {
		n--
	}
	return n
}

// EffectivePayload 参与语义解码的载荷切片
func (e *Envelope) EffectivePayload() []byte { return e.payload[:e.EffectivePayloadLength()] }
