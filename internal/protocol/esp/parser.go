package esp

import "fmt"

// Parse 严格解析一帧（SOF/EOF、设备字节、长度、按发送方类别校验 checksum）
func Parse(raw []byte) (*Envelope, error) {
	if len(raw) < HeaderSize+1 {
		return nil, ErrShortPacket
	}
	if raw[0] != StartOfFrame {
		return nil, ErrInvalidSOF
	}
	if raw[1]&markerMask != destMarker || raw[2]&markerMask != originMarker {
		return nil, fmt.Errorf("%w: dest=0x%02X origin=0x%02X", ErrBadDeviceByte, raw[1], raw[2])
	}
	declared := HeaderSize + int(raw[4])
	if declared+1 != len(raw) {
		return nil, fmt.Errorf("%w: length byte %d, frame %d bytes", ErrBadLength, raw[4], len(raw))
	}
	if raw[declared] != EndOfFrame {
		return nil, ErrInvalidEOF
	}
	origin := raw[2] & idMask
	if DeviceFromByte(origin).HasChecksum() {
		if raw[4] == 0 {
			return nil, fmt.Errorf("%w: missing checksum byte", ErrBadLength)
		}
		got := raw[declared-1]
		want := checksum8(raw[:declared-1])
		if got != want {
			return nil, fmt.Errorf("%w: got 0x%02X want 0x%02X", ErrBadChecksum, got, want)
		}
	}
	return NewEnvelope(origin, raw[1]&idMask, PacketType(raw[3]), declared, raw)
}

// StreamDecoder 处理半包/粘包的流式解码器
type StreamDecoder struct {
	buf         []byte
	maxFrameLen int
	rejected    int
	onReject    func(err error)
}

// NewStreamDecoder 创建流式解码器；maxFrameLen<=0 时使用协议上限
func NewStreamDecoder(maxFrameLen int) *StreamDecoder {
	if maxFrameLen <= 0 || maxFrameLen > MaxFrameLength {
		maxFrameLen = MaxFrameLength
	}
	return &StreamDecoder{maxFrameLen: maxFrameLen}
}

// OnReject 设置候选帧被丢弃时的回调（用于日志与指标）
func (d *StreamDecoder) OnReject(fn func(err error)) { d.onReject = fn }

// Rejected 累计被丢弃的候选帧数
func (d *StreamDecoder) Rejected() int { return d.rejected }

// Buffered 当前缓存的未成帧字节数
func (d *StreamDecoder) Buffered() int { return len(d.buf) }

func (d *StreamDecoder) reject(err error) {
	d.rejected++
	if d.onReject != nil {
		d.onReject(err)
	}
	// 滑动 1 字节重新同步
	d.buf = d.buf[1:]
}

// Feed 追加数据并尽可能解出多帧
func (d *StreamDecoder) Feed(p []byte) ([]*Envelope, error) {
	if len(p) == 0 {
		return nil, nil
	}
	d.buf = append(d.buf, p...)
	out := make([]*Envelope, 0, 2)

	for {
		start := indexSOF(d.buf)
		if start < 0 {
			d.buf = d.buf[:0]
			return out, nil
		}
		if start > 0 {
			d.buf = d.buf[start:]
		}
		if len(d.buf) < HeaderSize {
			return out, nil
		}
		total := HeaderSize + int(d.buf[4]) + 1
		if total > d.maxFrameLen {
			d.reject(fmt.Errorf("%w: frame %d exceeds limit %d", ErrBadLength, total, d.maxFrameLen))
			continue
		}
		if len(d.buf) < total {
			return out, nil
		}
		// 拷贝一份，信封引用的缓冲不随 d.buf 复用而变化
		candidate := make([]byte, total)
		copy(candidate, d.buf[:total])
		env, err := Parse(candidate)
		if err != nil {
			d.reject(err)
			continue
		}
		out = append(out, env)
		d.buf = d.buf[total:]
		if len(d.buf) == 0 {
			return out, nil
		}
	}
}

func indexSOF(b []byte) int {
	for i, c := range b {
		if c == StartOfFrame {
			return i
		}
	}
	return -1
}
