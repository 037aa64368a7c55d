package esp

import "sync"

// Handler 解码结果处理器
type Handler func(env *Envelope, v Value) error

// Table 路由表（包类型 -> handler），未登记类型交给 fallback
type Table struct {
	mu       sync.RWMutex
	handlers map[PacketType]Handler
	fallback Handler
}

func NewTable() *Table { return &Table{handlers: make(map[PacketType]Handler)} }

func (t *Table) Register(typ PacketType, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[typ] = h
}

// SetFallback 设置兜底处理器
func (t *Table) SetFallback(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fallback = h
}

func (t *Table) Route(env *Envelope, v Value) error {
	t.mu.RLock()
	h, ok := t.handlers[env.Type]
	if !ok {
		h = t.fallback
	}
	t.mu.RUnlock()
	if h == nil {
		return nil
	}
	return h(env, v)
}
