package esp

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedEnvelope = errors.New("malformed envelope")
	ErrShortPayload      = errors.New("short payload")

	// 帧层错误
	ErrShortPacket   = errors.New("short packet")
	ErrInvalidSOF    = errors.New("invalid start of frame")
	ErrInvalidEOF    = errors.New("invalid end of frame")
	ErrBadLength     = errors.New("bad length")
	ErrBadChecksum   = errors.New("bad checksum")
	ErrBadDeviceByte = errors.New("bad device byte")
)

// DecodeError 载荷解码失败，携带失败的包类型
type DecodeError struct {
	Type PacketType
	Need int
	Got  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: short payload: need %d bytes, got %d", e.Type, e.Need, e.Got)
}

// Is 使 errors.Is(err, ErrShortPayload) 成立
func (e *DecodeError) Is(target error) bool { return target == ErrShortPayload }
