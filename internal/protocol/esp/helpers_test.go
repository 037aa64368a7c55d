package esp

import "testing"

// makeEnvelope 构造以 origin 发出的信封，payload 原样（调用方负责是否包含校验字节）
func makeEnvelope(t *testing.T, origin Device, typ PacketType, payload []byte) *Envelope {
	t.Helper()
	raw := []byte{StartOfFrame, destMarker | ValentineOneWithChecksum.Byte(), originMarker | (origin.Byte() & idMask), byte(typ), byte(len(payload))}
	raw = append(raw, payload...)
	env, err := NewEnvelope(origin.Byte(), ValentineOneWithChecksum.Byte(), typ, HeaderSize+len(payload), raw)
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	return env
}

func decodeNoChecksum(t *testing.T, typ PacketType, payload []byte) (Value, error) {
	t.Helper()
	return Decode(makeEnvelope(t, ValentineOneWithoutChecksum, typ, payload))
}
