package tcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	padapter "github.com/taoyao-code/esp-gateway/internal/protocol/adapter"
)

type recordingAdapter struct {
	prefix byte
	got    [][]byte
}

func (r *recordingAdapter) Sniff(p []byte) bool { return len(p) > 0 && p[0] == r.prefix }

func (r *recordingAdapter) ProcessBytes(p []byte) error {
	r.got = append(r.got, append([]byte(nil), p...))
	return nil
}

func TestMux_SniffAndDispatch(t *testing.T) {
	espA := &recordingAdapter{prefix: 0xAA}
	other := &recordingAdapter{prefix: 0x44}
	mux := NewMux(padapter.Named{Name: "esp", Adapter: espA}, padapter.Named{Name: "other", Adapter: other})

	// 构造一个假的连接上下文，仅测试回调链路
	cc := newConnContext(nil, nil)
	mux.BindToConn(cc)
	if cc.onRead == nil {
		t.Fatalf("onRead not set")
	}

	// 未识别的噪声投递给全部适配器
	cc.onRead([]byte{0x00, 0x01})
	assert.Len(t, espA.got, 1)
	assert.Len(t, other.got, 1)
	assert.Equal(t, "", cc.Protocol())

	cc.onRead([]byte{0xAA, 0xD6, 0xEA})
	cc.onRead([]byte{0x44})
	assert.Equal(t, "esp", cc.Protocol())
	assert.Len(t, espA.got, 3)
	assert.Len(t, other.got, 1)
}
