package esp

import (
	"encoding/hex"
	"reflect"
	"strings"
)

var hexSeparators = strings.NewReplacer(" ", "", ":", "", "-", "", "\n", "", "\r", "", "\t", "")

// ParseHex 解析抓包文本：允许 0x 前缀以及空白、冒号、连字符分隔
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(hexSeparators.Replace(s))
}

// KindOf 返回解码结果的变体名（如 "Version"），nil 返回空串
func KindOf(v Value) string {
	if v == nil {
		return ""
	}
	return reflect.TypeOf(v).Name()
}
