package health

import "sync"

// Readiness 接入组件的启动就绪标记（/readyz 使用）
type Readiness struct {
	mu         sync.RWMutex
	components map[string]bool
}

func New() *Readiness { return &Readiness{components: make(map[string]bool)} }

// Expect 登记一个需要就绪的组件，初始为未就绪
func (r *Readiness) Expect(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[name]; !ok {
		r.components[name] = false
	}
}

// Set 设置组件就绪状态
func (r *Readiness) Set(name string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = ready
}

// Ready 全部已登记组件就绪
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ok := range r.components {
		if !ok {
			return false
		}
	}
	return true
}
