package esp

import "encoding/binary"

// SweepRecordSize 每条扫频记录（定义或段）占 5 字节
const SweepRecordSize = 5

// MaxSweepSectionsPerPacket 单个 respSweepSections 最多携带的段数
const MaxSweepSectionsPerPacket = 3

// ReportedSweepSectionCount 设备在首字节低 4 位上报的段总数
func ReportedSweepSectionCount(payload []byte) int {
	if len(payload) == 0 {
		return 0
	}
	return int(payload[0] & 0x0F)
}

// ContainedSweepSections 按有效载荷长度推断包内记录数，与上报段数相互独立
func ContainedSweepSections(effectiveLength int) int {
	switch {
	case effectiveLength >= 3*SweepRecordSize:
		return 3
	case effectiveLength >= 2*SweepRecordSize:
		return 2
	case effectiveLength >= SweepRecordSize:
		return 1
	}
	return 0
}

func isZeroRecord(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// ParseSweepDefinition 解析 5 字节扫频定义：
// b0 bit0-5 编号、bit6 提交标志 | b1-2 上沿 | b3-4 下沿（大端，MHz）
func ParseSweepDefinition(b []byte) SweepDefinition {
	return SweepDefinition{
		Index:     b[0] & 0x3F,
		Commit:    b[0]&0x40 != 0,
		UpperEdge: binary.BigEndian.Uint16(b[1:3]),
		LowerEdge: binary.BigEndian.Uint16(b[3:5]),
	}
}

// Bytes 编码为 5 字节线上格式
func (d SweepDefinition) Bytes() []byte {
	b := make([]byte, SweepRecordSize)
	b[0] = d.Index & 0x3F
	if d.Commit {
		b[0] |= 0x40
	}
	binary.BigEndian.PutUint16(b[1:3], d.UpperEdge)
	binary.BigEndian.PutUint16(b[3:5], d.LowerEdge)
	return b
}

func parseSweepSection(b []byte) SweepSection {
	s := SweepSection{
		Index:     b[0] >> 4,
		Count:     b[0] & 0x0F,
		UpperEdge: binary.BigEndian.Uint16(b[1:3]),
		LowerEdge: binary.BigEndian.Uint16(b[3:5]),
	}
	copy(s.Raw[:], b[:SweepRecordSize])
	return s
}

func decodeSweepSections(env *Envelope) (Value, error) {
	p := env.EffectivePayload()
	n := ContainedSweepSections(len(p))
	out := SweepSections{
		ReportedCount: ReportedSweepSectionCount(p),
		Sections:      make([]SweepSection, 0, n),
	}
	for i := 0; i < n; i++ {
		rec := p[i*SweepRecordSize : (i+1)*SweepRecordSize]
		if isZeroRecord(rec) {
			continue
		}
		out.Sections = append(out.Sections, parseSweepSection(rec))
	}
	return out, nil
}

func decodeSweepDefinition(env *Envelope) (Value, error) {
	p, err := needPayload(env, SweepRecordSize)
	if err != nil {
		return nil, err
	}
	return SweepDefinitionPacket{Type: env.Type, Definition: ParseSweepDefinition(p)}, nil
}

func decodeWriteSweepDefinition(env *Envelope) (Value, error) {
	p, err := needPayload(env, SweepRecordSize)
	if err != nil {
		return nil, err
	}
	return WriteSweepDefinition{Definition: ParseSweepDefinition(p)}, nil
}

func decodeSweepWriteResult(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return SweepWriteResult{Code: p[0]}, nil
}

func decodeMaxSweepIndex(env *Envelope) (Value, error) {
	p, err := needPayload(env, 1)
	if err != nil {
		return nil, err
	}
	return MaxSweepIndex{Index: p[0]}, nil
}
