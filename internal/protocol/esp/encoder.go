package esp

import "fmt"

// Build 构造一帧 ESP 数据（与 Parse 对应）。origin 需要校验时自动追加 checksum
func Build(origin, dest Device, typ PacketType, data []byte) ([]byte, error) {
	if typ > 0xFF {
		return nil, fmt.Errorf("packet type 0x%X does not fit the wire", uint16(typ))
	}
	if origin.Byte() > idMask || dest.Byte() > idMask {
		return nil, fmt.Errorf("%w: origin=0x%02X dest=0x%02X", ErrBadDeviceByte, origin.Byte(), dest.Byte())
	}
	n := len(data)
	if origin.HasChecksum() {
		n++
	}
	if n > MaxPayloadLength {
		return nil, fmt.Errorf("%w: payload %d bytes", ErrBadLength, n)
	}
	buf := make([]byte, 0, HeaderSize+n+1)
	buf = append(buf, StartOfFrame, destMarker|dest.Byte(), originMarker|origin.Byte(), byte(typ), byte(n))
	buf = append(buf, data...)
	if origin.HasChecksum() {
		buf = append(buf, checksum8(buf))
	}
	buf = append(buf, EndOfFrame)
	return buf, nil
}
