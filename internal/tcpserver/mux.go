package tcpserver

import (
	"go.uber.org/zap"

	padapter "github.com/taoyao-code/esp-gateway/internal/protocol/adapter"
)

// Mux 首帧初判 -> 绑定协议 -> 直通处理
type Mux struct {
	adapters []padapter.Named
}

func NewMux(adapters ...padapter.Named) *Mux { return &Mux{adapters: adapters} }

// BindToConn 为连接安装 onRead，根据首包前缀判断协议后固定处理路径。
// 未识别前数据会投递给全部适配器，流式解码器自行丢弃噪声并重新同步
func (m *Mux) BindToConn(cc *ConnContext) {
	var bound padapter.Adapter

	cc.SetOnRead(func(p []byte) {
		if bound != nil {
			m.deliver(cc, bound, p)
			return
		}
		pref := p
		if len(pref) > 8 {
			pref = pref[:8]
		}
		for _, a := range m.adapters {
			if a.Sniff(pref) {
				bound = a.Adapter
				cc.SetProtocol(a.Name)
				cc.Logger().Info("protocol identified", zap.String("protocol", a.Name))
				m.deliver(cc, bound, p)
				return
			}
		}
		for _, a := range m.adapters {
			m.deliver(cc, a.Adapter, p)
		}
	})
}

func (m *Mux) deliver(cc *ConnContext, a padapter.Adapter, p []byte) {
	if err := a.ProcessBytes(p); err != nil {
		cc.Logger().Debug("process bytes failed", zap.Error(err))
	}
}
