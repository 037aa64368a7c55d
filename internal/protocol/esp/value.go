package esp

// Value 解码结果：每种包类型对应一个变体，集合封闭（仅本包可实现）
type Value interface {
	PacketType() PacketType
	isValue()
}

// Request 无载荷请求（reqVersion、reqMuteOn 等）
type Request struct {
	Type PacketType `json:"type"`
}

// Version respVersion
type Version struct {
	Raw string `json:"raw"`
	// Number 为 Raw 去掉首字母后的数值，格式不符时为 0
	Number float64 `json:"number"`
}

// SerialNumber respSerialNumber
type SerialNumber struct {
	Text string `json:"text"`
}

// UserBytes respUserBytes；按固件版本解释各位的工作不在此层
type UserBytes struct {
	Raw [UserBytesSize]byte `json:"raw"`
}

// WriteUserBytes reqWriteUserBytes
type WriteUserBytes struct {
	Raw [UserBytesSize]byte `json:"raw"`
}

// SweepDefinition 单条自定义扫频定义
type SweepDefinition struct {
	Index     uint8  `json:"index"`
	Commit    bool   `json:"commit"`
	UpperEdge uint16 `json:"upper_edge_mhz"`
	LowerEdge uint16 `json:"lower_edge_mhz"`
}

// SweepDefinitionPacket respSweepDefinition / respDefaultSweepDefinition
type SweepDefinitionPacket struct {
	Type       PacketType      `json:"type"`
	Definition SweepDefinition `json:"definition"`
}

// WriteSweepDefinition reqWriteSweepDefinition
type WriteSweepDefinition struct {
	Definition SweepDefinition `json:"definition"`
}

// SweepWriteResult respSweepWriteResult：0 表示成功，否则为首个失败定义的编号
type SweepWriteResult struct {
	Code uint8 `json:"code"`
}

// Success reports whether every written definition was accepted.
func (r SweepWriteResult) Success() bool { return r.Code == 0 }

// MaxSweepIndex respMaxSweepIndex
type MaxSweepIndex struct {
	Index uint8 `json:"index"`
}

// SweepSection 扫频段记录（5 字节）
type SweepSection struct {
	Index     uint8                 `json:"index"`
	Count     uint8                 `json:"count"`
	UpperEdge uint16                `json:"upper_edge_mhz"`
	LowerEdge uint16                `json:"lower_edge_mhz"`
	Raw       [SweepRecordSize]byte `json:"-"`
}

// SweepSections respSweepSections
type SweepSections struct {
	// ReportedCount 设备在首字节低 4 位上报的段数，可能与 Sections 数量不一致
	ReportedCount int            `json:"reported_count"`
	Sections      []SweepSection `json:"sections"`
}

// DisplayData infDisplayData
type DisplayData struct {
	BogeyCounter1 byte `json:"bogey_counter_1"`
	BogeyCounter2 byte `json:"bogey_counter_2"`
	SignalBar     byte `json:"signal_bar"`
	BandArrow1    byte `json:"band_arrow_1"`
	BandArrow2    byte `json:"band_arrow_2"`
	Aux0          byte `json:"aux0"`
	Aux1          byte `json:"aux1"`
	Aux2          byte `json:"aux2"`
}

func (d DisplayData) SoftMuted() bool    { return d.Aux0&0x01 != 0 }
func (d DisplayData) TSHoldOff() bool    { return d.Aux0&0x02 != 0 }
func (d DisplayData) SystemStatus() bool { return d.Aux0&0x04 != 0 }
func (d DisplayData) DisplayOn() bool    { return d.Aux0&0x08 != 0 }
func (d DisplayData) EuroMode() bool     { return d.Aux0&0x10 != 0 }
func (d DisplayData) CustomSweep() bool  { return d.Aux0&0x20 != 0 }
func (d DisplayData) Legacy() bool       { return d.Aux0&0x40 != 0 }

// AlertData respAlertData
type AlertData struct {
	Index       uint8  `json:"index"`
	Count       uint8  `json:"count"`
	Frequency   uint16 `json:"frequency_mhz"`
	FrontSignal byte   `json:"front_signal"`
	RearSignal  byte   `json:"rear_signal"`
	BandArrow   byte   `json:"band_arrow"`
	Aux0        byte   `json:"aux0"`
}

// Priority reports whether this alert is the one shown on the main display.
func (a AlertData) Priority() bool { return a.Aux0&0x80 != 0 }

// ChangeMode reqChangeMode
type ChangeMode struct {
	Mode uint8 `json:"mode"`
}

// CurrentVolume respCurrentVolume
type CurrentVolume struct {
	Main  uint8 `json:"main"`
	Muted uint8 `json:"muted"`
}

// WriteVolume reqWriteVolume
type WriteVolume struct {
	Main  uint8 `json:"main"`
	Muted uint8 `json:"muted"`
}

// AllVolume respAllVolume（值域 0–9，不做校验）
type AllVolume struct {
	Main       uint8 `json:"main"`
	Muted      uint8 `json:"muted"`
	SavedMain  uint8 `json:"saved_main"`
	SavedMuted uint8 `json:"saved_muted"`
}

// DataReceived respDataReceived
type DataReceived struct{}

// BatteryVoltage respBatteryVoltage
type BatteryVoltage struct {
	Voltage string `json:"voltage"`
}

// UnsupportedPacket respUnsupportedPacket：远端不支持的包类型
type UnsupportedPacket struct {
	Packet PacketType `json:"packet"`
}

// RequestNotProcessed respRequestNotProcessed
type RequestNotProcessed struct {
	Packet PacketType `json:"packet"`
}

// DataError respDataError
type DataError struct {
	Packet PacketType `json:"packet"`
}

// V1Busy infV1Busy：V1 仍在处理的请求列表
type V1Busy struct {
	Pending []PacketType `json:"pending"`
}

// SavvyStatus respSavvyStatus
type SavvyStatus struct {
	ThresholdMph  uint8 `json:"threshold_mph"`
	Overridden    bool  `json:"overridden"`
	UnmuteEnabled bool  `json:"unmute_enabled"`
}

// VehicleSpeed respVehicleSpeed（不做单位换算）
type VehicleSpeed struct {
	Speed uint8 `json:"speed"`
}

// OverrideThumbwheel reqOverrideThumbwheel：0 表示取消覆盖，0xFF 表示自动
type OverrideThumbwheel struct {
	Speed uint8 `json:"speed"`
}

// SetSavvyUnmute reqSetSavvyUnmuteEnable
type SetSavvyUnmute struct {
	Enabled bool `json:"enabled"`
}

// Unknown 未识别的包类型：原样保留载荷供调用方记录
type Unknown struct {
	Code    PacketType `json:"code"`
	Payload []byte     `json:"payload"`
}

func (v Request) PacketType() PacketType               { return v.Type }
func (Version) PacketType() PacketType                 { return RespVersion }
func (SerialNumber) PacketType() PacketType            { return RespSerialNumber }
func (UserBytes) PacketType() PacketType               { return RespUserBytes }
func (WriteUserBytes) PacketType() PacketType          { return ReqWriteUserBytes }
func (v SweepDefinitionPacket) PacketType() PacketType { return v.Type }
func (WriteSweepDefinition) PacketType() PacketType    { return ReqWriteSweepDefinition }
func (SweepWriteResult) PacketType() PacketType        { return RespSweepWriteResult }
func (MaxSweepIndex) PacketType() PacketType           { return RespMaxSweepIndex }
func (SweepSections) PacketType() PacketType           { return RespSweepSections }
func (DisplayData) PacketType() PacketType             { return InfDisplayData }
func (AlertData) PacketType() PacketType               { return RespAlertData }
func (ChangeMode) PacketType() PacketType              { return ReqChangeMode }
func (CurrentVolume) PacketType() PacketType           { return RespCurrentVolume }
func (WriteVolume) PacketType() PacketType             { return ReqWriteVolume }
func (AllVolume) PacketType() PacketType               { return RespAllVolume }
func (DataReceived) PacketType() PacketType            { return RespDataReceived }
func (BatteryVoltage) PacketType() PacketType          { return RespBatteryVoltage }
func (UnsupportedPacket) PacketType() PacketType       { return RespUnsupportedPacket }
func (RequestNotProcessed) PacketType() PacketType     { return RespRequestNotProcessed }
func (DataError) PacketType() PacketType               { return RespDataError }
func (V1Busy) PacketType() PacketType                  { return InfV1Busy }
func (SavvyStatus) PacketType() PacketType             { return RespSavvyStatus }
func (VehicleSpeed) PacketType() PacketType            { return RespVehicleSpeed }
func (OverrideThumbwheel) PacketType() PacketType      { return ReqOverrideThumbwheel }
func (SetSavvyUnmute) PacketType() PacketType          { return ReqSetSavvyUnmuteEnable }
func (Unknown) PacketType() PacketType                 { return UnknownPacketType }

func (Request) isValue()               {}
func (Version) isValue()               {}
func (SerialNumber) isValue()          {}
func (UserBytes) isValue()             {}
func (WriteUserBytes) isValue()        {}
func (SweepDefinitionPacket) isValue() {}
func (WriteSweepDefinition) isValue()  {}
func (SweepWriteResult) isValue()      {}
func (MaxSweepIndex) isValue()         {}
func (SweepSections) isValue()         {}
func (DisplayData) isValue()           {}
func (AlertData) isValue()             {}
func (ChangeMode) isValue()            {}
func (CurrentVolume) isValue()         {}
func (WriteVolume) isValue()           {}
func (AllVolume) isValue()             {}
func (DataReceived) isValue()          {}
func (BatteryVoltage) isValue()        {}
func (UnsupportedPacket) isValue()     {}
func (RequestNotProcessed) isValue()   {}
func (DataError) isValue()             {}
func (V1Busy) isValue()                {}
func (SavvyStatus) isValue()           {}
func (VehicleSpeed) isValue()          {}
func (OverrideThumbwheel) isValue()    {}
func (SetSavvyUnmute) isValue()        {}
func (Unknown) isValue()               {}
