package gateway

import (
	"github.com/taoyao-code/esp-gateway/internal/metrics"
	"github.com/taoyao-code/esp-gateway/internal/serialport"
	"github.com/taoyao-code/esp-gateway/internal/tcpserver"
)

// Sessions 汇总 TCP 与串口的当前接入会话，任一来源可为空
type Sessions struct {
	TCP    *tcpserver.Server
	Serial *serialport.Reader
}

func (s Sessions) Sessions() []tcpserver.SessionInfo {
	out := []tcpserver.SessionInfo{}
	if s.TCP != nil {
		out = append(out, s.TCP.Sessions()...)
	}
	if s.Serial != nil {
		// 串口未打开时没有会话
		if id := s.Serial.SessionID(); id != "" {
			out = append(out, tcpserver.SessionInfo{
				ID:         id,
				Source:     metrics.SourceSerial,
				RemoteAddr: s.Serial.Path(),
				Protocol:   "esp",
				StartedAt:  s.Serial.OpenedAt(),
				BytesIn:    s.Serial.BytesIn(),
			})
		}
	}
	return out
}
