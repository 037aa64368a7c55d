package esp

// Decoder 载荷解码函数
type Decoder func(env *Envelope) (Value, error)

type decoderEntry struct {
	decode     Decoder
	minPayload int
}

// decoders 包类型 -> 解码器，进程内只读
var decoders = map[PacketType]decoderEntry{
	ReqVersion:                 {decodeRequest, 0},
	RespVersion:                {decodeVersion, 0},
	ReqSerialNumber:            {decodeRequest, 0},
	RespSerialNumber:           {decodeSerialNumber, 0},
	ReqUserBytes:               {decodeRequest, 0},
	RespUserBytes:              {decodeUserBytes, UserBytesSize},
	ReqWriteUserBytes:          {decodeWriteUserBytes, UserBytesSize},
	ReqFactoryDefault:          {decodeRequest, 0},
	ReqWriteSweepDefinition:    {decodeWriteSweepDefinition, SweepRecordSize},
	RespSweepWriteResult:       {decodeSweepWriteResult, 1},
	ReqAllSweepDefinitions:     {decodeRequest, 0},
	RespSweepDefinition:        {decodeSweepDefinition, SweepRecordSize},
	ReqDefaultSweeps:           {decodeRequest, 0},
	ReqMaxSweepIndex:           {decodeRequest, 0},
	RespMaxSweepIndex:          {decodeMaxSweepIndex, 1},
	ReqSweepSections:           {decodeRequest, 0},
	RespSweepSections:          {decodeSweepSections, 0},
	ReqDefaultSweepDefinitions: {decodeRequest, 0},
	RespDefaultSweepDefinition: {decodeSweepDefinition, SweepRecordSize},
	InfDisplayData:             {decodeDisplayData, 8},
	ReqTurnOffMainDisplay:      {decodeRequest, 0},
	ReqTurnOnMainDisplay:       {decodeRequest, 0},
	ReqMuteOn:                  {decodeRequest, 0},
	ReqMuteOff:                 {decodeRequest, 0},
	ReqChangeMode:              {decodeChangeMode, 1},
	ReqCurrentVolume:           {decodeRequest, 0},
	RespCurrentVolume:          {decodeCurrentVolume, 2},
	ReqWriteVolume:             {decodeWriteVolume, 2},
	ReqAbortAudioDelay:         {decodeRequest, 0},
	ReqDisplayCurrentVolume:    {decodeRequest, 0},
	ReqAllVolume:               {decodeRequest, 0},
	RespAllVolume:              {decodeAllVolume, 4},
	ReqStartAlertData:          {decodeRequest, 0},
	ReqStopAlertData:           {decodeRequest, 0},
	RespAlertData:              {decodeAlertData, 7},
	RespDataReceived:           {decodeDataReceived, 0},
	ReqBatteryVoltage:          {decodeRequest, 0},
	RespBatteryVoltage:         {decodeBatteryVoltage, 2},
	RespUnsupportedPacket:      {decodeUnsupportedPacket, 1},
	RespRequestNotProcessed:    {decodeRequestNotProcessed, 1},
	InfV1Busy:                  {decodeV1Busy, 0},
	RespDataError:              {decodeDataError, 1},
	ReqSavvyStatus:             {decodeRequest, 0},
	RespSavvyStatus:            {decodeSavvyStatus, 2},
	ReqVehicleSpeed:            {decodeRequest, 0},
	RespVehicleSpeed:           {decodeVehicleSpeed, 1},
	ReqOverrideThumbwheel:      {decodeOverrideThumbwheel, 1},
	ReqSetSavvyUnmuteEnable:    {decodeSetSavvyUnmute, 1},
}

// DecoderFor 返回包类型对应的解码器；未登记的编码返回保留原始载荷的 unknown 解码器
func DecoderFor(code PacketType) Decoder {
	if e, ok := decoders[code]; ok {
		return e.decode
	}
	return decodeUnknown
}

// Supported reports whether code has a dedicated decoder.
func Supported(code PacketType) bool {
	_, ok := decoders[code]
	return ok
}

// MinPayloadLength 解码所需的最小有效载荷长度；未登记返回 0
func MinPayloadLength(code PacketType) int {
	return decoders[code].minPayload
}

// Decode 按信封的包类型分发解码
func Decode(env *Envelope) (Value, error) {
	return DecoderFor(env.Type)(env)
}
