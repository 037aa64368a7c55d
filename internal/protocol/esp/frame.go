package esp

// 线上帧格式：
// SOF[0xAA] | 0xD0|dest | 0xE0|origin | packetId | length | payload[length] | EOF[0xAB]
// 发送方需要校验时 payload 末字节为校验和：SOF 至最后一个数据字节的累加和低 8 位
const (
	StartOfFrame byte = 0xAA
	EndOfFrame   byte = 0xAB

	destMarker   byte = 0xD0
	originMarker byte = 0xE0
	markerMask   byte = 0xF0
	idMask       byte = 0x0F

	// MaxPayloadLength length 字段为单字节
	MaxPayloadLength = 0xFF
	// MaxFrameLength 单帧最大长度（包头 + 载荷 + EOF）
	MaxFrameLength = HeaderSize + MaxPayloadLength + 1
)

// checksum8 累加校验（低 8 位）
func checksum8(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}
	return sum
}
