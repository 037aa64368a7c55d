package devicestate

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
)

// Snapshot 单个总线设备最近一次观测到的状态（仅内存，不持久化）
type Snapshot struct {
	Device    esp.Device `json:"device"`
	FirstSeen time.Time  `json:"first_seen"`
	LastSeen  time.Time  `json:"last_seen"`

	Packets      uint64 `json:"packets"`
	DecodeErrors uint64 `json:"decode_errors"`
	LastError    string `json:"last_error,omitempty"`

	Version        *esp.Version          `json:"version,omitempty"`
	SerialNumber   string                `json:"serial_number,omitempty"`
	BatteryVoltage string                `json:"battery_voltage,omitempty"`
	Volume         *esp.AllVolume        `json:"volume,omitempty"`
	Savvy          *esp.SavvyStatus      `json:"savvy,omitempty"`
	VehicleSpeed   *uint8                `json:"vehicle_speed,omitempty"`
	MaxSweepIndex  *uint8                `json:"max_sweep_index,omitempty"`
	SweepSections  []esp.SweepSection    `json:"sweep_sections,omitempty"`
	Sweeps         []esp.SweepDefinition `json:"sweeps,omitempty"`
	UserBytes      *esp.UserBytes        `json:"user_bytes,omitempty"`
	Display        *esp.DisplayData      `json:"display,omitempty"`
	Alerts         []esp.AlertData       `json:"alerts,omitempty"`
	Busy           []esp.PacketType      `json:"busy,omitempty"`
	Rejected       []esp.PacketType      `json:"rejected,omitempty"`
}

func (s *Snapshot) clone() Snapshot {
	out := *s
	out.SweepSections = slices.Clone(s.SweepSections)
	out.Sweeps = slices.Clone(s.Sweeps)
	out.Alerts = slices.Clone(s.Alerts)
	out.Busy = slices.Clone(s.Busy)
	out.Rejected = slices.Clone(s.Rejected)
	return out
}

// Tracker 按发送方设备聚合解码结果
type Tracker struct {
	mu      sync.RWMutex
	devices map[esp.Device]*Snapshot
	now     func() time.Time
}

// Option 构造选项
type Option func(*Tracker)

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(opts ...Option) *Tracker {
	t := &Tracker{devices: make(map[esp.Device]*Snapshot), now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tracker) touch(dev esp.Device) *Snapshot {
	now := t.now()
	s, ok := t.devices[dev]
	if !ok {
		s = &Snapshot{Device: dev, FirstSeen: now}
		t.devices[dev] = s
	}
	s.LastSeen = now
	return s
}

// Apply 记录一个解码成功的包，状态归属于包的发送方
func (t *Tracker) Apply(env *esp.Envelope, v esp.Value) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.touch(env.Origin)
	s.Packets++

	switch x := v.(type) {
	case esp.Version:
		s.Version = &x
	case esp.SerialNumber:
		s.SerialNumber = x.Text
	case esp.BatteryVoltage:
		s.BatteryVoltage = x.Voltage
	case esp.AllVolume:
		s.Volume = &x
	case esp.CurrentVolume:
		var vol esp.AllVolume
		if s.Volume != nil {
			vol = *s.Volume
		}
		vol.Main, vol.Muted = x.Main, x.Muted
		s.Volume = &vol
	case esp.SavvyStatus:
		s.Savvy = &x
	case esp.VehicleSpeed:
		speed := x.Speed
		s.VehicleSpeed = &speed
	case esp.MaxSweepIndex:
		idx := x.Index
		s.MaxSweepIndex = &idx
	case esp.SweepSections:
		s.SweepSections = mergeSections(s.SweepSections, x.Sections)
	case esp.SweepDefinitionPacket:
		s.Sweeps = mergeSweep(s.Sweeps, x.Definition)
	case esp.UserBytes:
		s.UserBytes = &x
	case esp.DisplayData:
		s.Display = &x
	case esp.AlertData:
		s.Alerts = applyAlert(s.Alerts, x)
	case esp.V1Busy:
		s.Busy = x.Pending
	case esp.UnsupportedPacket:
		s.Rejected = appendCapped(s.Rejected, x.Packet)
	case esp.RequestNotProcessed:
		s.Rejected = appendCapped(s.Rejected, x.Packet)
	case esp.DataError:
		s.Rejected = appendCapped(s.Rejected, x.Packet)
	}
}

// RecordError 记录解码失败；信封为空时忽略
func (t *Tracker) RecordError(env *esp.Envelope, err error) {
	if env == nil || err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.touch(env.Origin)
	s.DecodeErrors++
	s.LastError = err.Error()
}

// Handler 返回可注册到适配器路由表的处理器
func (t *Tracker) Handler() esp.Handler {
	return func(env *esp.Envelope, v esp.Value) error {
		t.Apply(env, v)
		return nil
	}
}

// Get 返回设备状态副本
func (t *Tracker) Get(dev esp.Device) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.devices[dev]
	if !ok {
		return Snapshot{}, false
	}
	return s.clone(), true
}

// List 返回全部设备状态副本，按设备字节排序
func (t *Tracker) List() []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Snapshot, 0, len(t.devices))
	for _, s := range t.devices {
		out = append(out, s.clone())
	}
	slices.SortFunc(out, func(a, b Snapshot) int { return int(a.Device) - int(b.Device) })
	return out
}

// Count 已观测的设备数
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.devices)
}

// Online 在 staleAfter 内出现过的设备数；staleAfter<=0 时等同 Count
func (t *Tracker) Online(staleAfter time.Duration) int {
	if staleAfter <= 0 {
		return t.Count()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	cutoff := t.now().Add(-staleAfter)
	n := 0
	for _, s := range t.devices {
		if s.LastSeen.After(cutoff) {
			n++
		}
	}
	return n
}

// ErrNoVersion V1 尚未应答 reqVersion
var ErrNoVersion = errors.New("devicestate: firmware version not yet reported")

// FirmwareVersion 返回 V1 上报的固件版本号，供按版本解释 user bytes 的调用方使用
func (t *Tracker) FirmwareVersion() (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, dev := range []esp.Device{esp.ValentineOneWithChecksum, esp.ValentineOneWithoutChecksum, esp.ValentineOneLegacy} {
		if s, ok := t.devices[dev]; ok && s.Version != nil {
			return s.Version.Number, nil
		}
	}
	return 0, ErrNoVersion
}

// Reset 清空全部状态
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.devices)
}
