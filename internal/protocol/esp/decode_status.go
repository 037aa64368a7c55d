package esp

import (
	"encoding/binary"
	"fmt"
)

// UserBytesSize 用户配置字节固定 6 字节
const UserBytesSize = 6

// needPayload 取有效载荷并校验最小长度
func needPayload(env *Envelope, n int) ([]byte, error) {
	p := env.EffectivePayload()
	if len(p) < n {
		return nil, &DecodeError{Type: env.Type, Need: n, Got: len(p)}
	}
	return p, nil
}

// FormatBatteryVoltage 按原始字节值拼接 "b0.b1"，不是定点换算（[12,1] 得到 "12.1"）
func FormatBatteryVoltage(b0, b1 byte) string {
	return fmt.Sprintf("%d.%d", b0, b1)
}

func decodeBatteryVoltage(env *Envelope) (Value, error) {
	p, err := needPayload(env, 2)
	if err != nil {
		return nil, err
	}
	return BatteryVoltage{Voltage: FormatBatteryVoltage(p[0], p[1])}, nil
}

func decodeVehicleSpeed(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return VehicleSpeed{Speed: p[0]}, nil
}

func decodeCurrentVolume(env *Envelope) (Value, error) {
	p, err := needPayload(env, 2)
	if err != nil {
		return nil, err
	}
	return CurrentVolume{Main: p[0], Muted: p[1]}, nil
}

func decodeAllVolume(env *Envelope) (Value, error) {
	p, err := needPayload(env, 4)
	if err != nil {
		return nil, err
	}
	return AllVolume{Main: p[0], Muted: p[1], SavedMain: p[2], SavedMuted: p[3]}, nil
}

// savvy 状态第二字节
const (
	savvyOverridden    = 0x01
	savvyUnmuteEnabled = 0x02
)

func decodeSavvyStatus(env *Envelope) (Value, error) {
	p, err := needPayload(env, 2)
	if err != nil {
		return nil, err
	}
	return SavvyStatus{
		ThresholdMph:  p[0],
		Overridden:    p[1]&savvyOverridden != 0,
		UnmuteEnabled: p[1]&savvyUnmuteEnabled != 0,
	}, nil
}

func decodeUserBytes(env *Envelope) (Value, error) {
	p, err := needPayload(env, UserBytesSize)
	if err != nil {
		return nil, err
	}
	var v UserBytes
	copy(v.Raw[:], p)
	return v, nil
}

func decodeDisplayData(env *Envelope) (Value, error) {
	p, err := needPayload(env, 8)
	if err != nil {
		return nil, err
	}
	return DisplayData{
		BogeyCounter1: p[0],
		BogeyCounter2: p[1],
		SignalBar:     p[2],
		BandArrow1:    p[3],
		BandArrow2:    p[4],
		Aux0:          p[5],
		Aux1:          p[6],
		Aux2:          p[7],
	}, nil
}

// decodeAlertData b0 高 4 位序号、低 4 位总数 | b1-2 频率 | 前/后信号强度 | 频段箭头 | aux0
func decodeAlertData(env *Envelope) (Value, error) {
	p, err := needPayload(env, 7)
	if err != nil {
		return nil, err
	}
	return AlertData{
		Index:       p[0] >> 4,
		Count:       p[0] & 0x0F,
		Frequency:   binary.BigEndian.Uint16(p[1:3]),
		FrontSignal: p[3],
		RearSignal:  p[4],
		BandArrow:   p[5],
		Aux0:        p[6],
	}, nil
}

func decodeDataReceived(*Envelope) (Value, error) { return DataReceived{}, nil }

// 错误类响应：首字节为被拒绝的包 ID，不校验该 ID 是否可解码
func decodeUnsupportedPacket(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return UnsupportedPacket{Packet: PacketTypeFromByte(p[0])}, nil
}

func decodeRequestNotProcessed(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return RequestNotProcessed{Packet: PacketTypeFromByte(p[0])}, nil
}

func decodeDataError(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return DataError{Packet: PacketTypeFromByte(p[0])}, nil
}

func decodeV1Busy(env *Envelope) (Value, error) {
	p := env.EffectivePayload()
	v := V1Busy{Pending: make([]PacketType, 0, len(p))}
	for _, b := range p {
		v.Pending = append(v.Pending, PacketTypeFromByte(b))
	}
	return v, nil
}
