package esp

import "fmt"

// PacketType ESP 包类型（包 ID）。线上为单字节，0x100 为未知类型哨兵值
type PacketType uint16

const (
	ReqVersion                 PacketType = 0x01
	RespVersion                PacketType = 0x02
	ReqSerialNumber            PacketType = 0x03
	RespSerialNumber           PacketType = 0x04
	ReqUserBytes               PacketType = 0x11
	RespUserBytes              PacketType = 0x12
	ReqWriteUserBytes          PacketType = 0x13
	ReqFactoryDefault          PacketType = 0x14
	ReqWriteSweepDefinition    PacketType = 0x15
	RespSweepWriteResult       PacketType = 0x16
	ReqAllSweepDefinitions     PacketType = 0x17
	RespSweepDefinition        PacketType = 0x18
	ReqDefaultSweeps           PacketType = 0x19
	ReqMaxSweepIndex           PacketType = 0x20
	RespMaxSweepIndex          PacketType = 0x21
	ReqSweepSections           PacketType = 0x22
	RespSweepSections          PacketType = 0x23
	ReqDefaultSweepDefinitions PacketType = 0x24
	RespDefaultSweepDefinition PacketType = 0x25
	InfDisplayData             PacketType = 0x31
	ReqTurnOffMainDisplay      PacketType = 0x32
	ReqTurnOnMainDisplay       PacketType = 0x33
	ReqMuteOn                  PacketType = 0x34
	ReqMuteOff                 PacketType = 0x35
	ReqChangeMode              PacketType = 0x36
	ReqCurrentVolume           PacketType = 0x37
	RespCurrentVolume          PacketType = 0x38
	ReqWriteVolume             PacketType = 0x39
	ReqAbortAudioDelay         PacketType = 0x3A
	ReqDisplayCurrentVolume    PacketType = 0x3B
	ReqAllVolume               PacketType = 0x3C
	RespAllVolume              PacketType = 0x3D
	ReqStartAlertData          PacketType = 0x41
	ReqStopAlertData           PacketType = 0x42
	RespAlertData              PacketType = 0x43
	RespDataReceived           PacketType = 0x61
	ReqBatteryVoltage          PacketType = 0x62
	RespBatteryVoltage         PacketType = 0x63
	RespUnsupportedPacket      PacketType = 0x64
	RespRequestNotProcessed    PacketType = 0x65
	InfV1Busy                  PacketType = 0x66
	RespDataError              PacketType = 0x67
	ReqSavvyStatus             PacketType = 0x71
	RespSavvyStatus            PacketType = 0x72
	ReqVehicleSpeed            PacketType = 0x73
	RespVehicleSpeed           PacketType = 0x74
	ReqOverrideThumbwheel      PacketType = 0x75
	ReqSetSavvyUnmuteEnable    PacketType = 0x76

	UnknownPacketType PacketType = 0x100
)

var packetTypeNames = map[PacketType]string{
	ReqVersion:                 "reqVersion",
	RespVersion:                "respVersion",
	ReqSerialNumber:            "reqSerialNumber",
	RespSerialNumber:           "respSerialNumber",
	ReqUserBytes:               "reqUserBytes",
	RespUserBytes:              "respUserBytes",
	ReqWriteUserBytes:          "reqWriteUserBytes",
	ReqFactoryDefault:          "reqFactoryDefault",
	ReqWriteSweepDefinition:    "reqWriteSweepDefinition",
	RespSweepWriteResult:       "respSweepWriteResult",
	ReqAllSweepDefinitions:     "reqAllSweepDefinitions",
	RespSweepDefinition:        "respSweepDefinition",
	ReqDefaultSweeps:           "reqDefaultSweeps",
	ReqMaxSweepIndex:           "reqMaxSweepIndex",
	RespMaxSweepIndex:          "respMaxSweepIndex",
	ReqSweepSections:           "reqSweepSections",
	RespSweepSections:          "respSweepSections",
	ReqDefaultSweepDefinitions: "reqDefaultSweepDefinitions",
	RespDefaultSweepDefinition: "respDefaultSweepDefinition",
	InfDisplayData:             "infDisplayData",
	ReqTurnOffMainDisplay:      "reqTurnOffMainDisplay",
	ReqTurnOnMainDisplay:       "reqTurnOnMainDisplay",
	ReqMuteOn:                  "reqMuteOn",
	ReqMuteOff:                 "reqMuteOff",
	ReqChangeMode:              "reqChangeMode",
	ReqCurrentVolume:           "reqCurrentVolume",
	RespCurrentVolume:          "respCurrentVolume",
	ReqWriteVolume:             "reqWriteVolume",
	ReqAbortAudioDelay:         "reqAbortAudioDelay",
	ReqDisplayCurrentVolume:    "reqDisplayCurrentVolume",
	ReqAllVolume:               "reqAllVolume",
	RespAllVolume:              "respAllVolume",
	ReqStartAlertData:          "reqStartAlertData",
	ReqStopAlertData:           "reqStopAlertData",
	RespAlertData:              "respAlertData",
	RespDataReceived:           "respDataReceived",
	ReqBatteryVoltage:          "reqBatteryVoltage",
	RespBatteryVoltage:         "respBatteryVoltage",
	RespUnsupportedPacket:      "respUnsupportedPacket",
	RespRequestNotProcessed:    "respRequestNotProcessed",
	InfV1Busy:                  "infV1Busy",
	RespDataError:              "respDataError",
	ReqSavvyStatus:             "reqSavvyStatus",
	RespSavvyStatus:            "respSavvyStatus",
	ReqVehicleSpeed:            "reqVehicleSpeed",
	RespVehicleSpeed:           "respVehicleSpeed",
	ReqOverrideThumbwheel:      "reqOverrideThumbwheel",
	ReqSetSavvyUnmuteEnable:    "reqSetSavvyUnmuteEnable",
	UnknownPacketType:          "unknownPacketType",
}

// PacketTypeFromByte 将包 ID 字节映射为包类型；未定义返回 UnknownPacketType
func PacketTypeFromByte(b byte) PacketType {
	t := PacketType(b)
	if _, ok := packetTypeNames[t]; !ok {
		return UnknownPacketType
	}
	return t
}

// PacketTypeName 返回规范名称，未定义的编码返回 unknownPacketType
func PacketTypeName(code PacketType) string {
	if n, ok := packetTypeNames[code]; ok {
		return n
	}
	return packetTypeNames[UnknownPacketType]
}

func (t PacketType) String() string { return PacketTypeName(t) }

// Known reports whether t is a declared code other than the sentinel.
func (t PacketType) Known() bool {
	if t == UnknownPacketType {
		return false
	}
	_, ok := packetTypeNames[t]
	return ok
}

// Hex 返回两位十六进制表示，用于日志与指标标签
func (t PacketType) Hex() string { return fmt.Sprintf("%02X", uint16(t)) }

// PacketTypes 返回全部已声明的包类型（不含哨兵），按编码升序
func PacketTypes() []PacketType {
	out := make([]PacketType, 0, len(packetTypeNames))
	for code := PacketType(0x01); code <= 0xFF; code++ {
		if _, ok := packetTypeNames[code]; ok {
			out = append(out, code)
		}
	}
	return out
}

// MarshalText 序列化为规范名称
func (t PacketType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
