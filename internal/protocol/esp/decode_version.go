package esp

import (
	"strconv"
	"unicode"
)

// VersionLength 版本串固定长度：1 位设备类别字母 + 6 位版本号（如 V4.1018）
const VersionLength = 7

// ParseVersionNumber 从版本串解析数值版本；长度不为 7 或首字符非字母时返回 0
func ParseVersionNumber(raw string) float64 {
	if len(raw) != VersionLength || !unicode.IsLetter(rune(raw[0])) {
		return 0
	}
	n, err := strconv.ParseFloat(raw[1:], 64)
	if err != nil {
		return 0
	}
	return n
}

// cString 读取到第一个 0 字节或末尾为止
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func decodeVersion(env *Envelope) (Value, error) {
	raw := cString(env.EffectivePayload())
	return Version{Raw: raw, Number: ParseVersionNumber(raw)}, nil
}

func decodeSerialNumber(env *Envelope) (Value, error) {
	return SerialNumber{Text: cString(env.EffectivePayload())}, nil
}
