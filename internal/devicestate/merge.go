package devicestate

import (
	"slices"

	"github.com/taoyao-code/esp-gateway/internal/protocol/esp"
)

const maxRejected = 16

// mergeSections 以段编号覆盖旧记录；编号 1 表示新一轮应答开始
func mergeSections(cur, in []esp.SweepSection) []esp.SweepSection {
	for _, sec := range in {
		if sec.Index <= 1 {
			cur = cur[:0]
		}
		i := slices.IndexFunc(cur, func(c esp.SweepSection) bool { return c.Index == sec.Index })
		if i >= 0 {
			cur[i] = sec
			continue
		}
		cur = append(cur, sec)
	}
	return cur
}

func mergeSweep(cur []esp.SweepDefinition, d esp.SweepDefinition) []esp.SweepDefinition {
	i := slices.IndexFunc(cur, func(c esp.SweepDefinition) bool { return c.Index == d.Index })
	if i >= 0 {
		cur[i] = d
		return cur
	}
	cur = append(cur, d)
	slices.SortFunc(cur, func(a, b esp.SweepDefinition) int { return int(a.Index) - int(b.Index) })
	return cur
}

// applyAlert 告警表按轮次刷新：count 为 0 表示无告警，编号 1 开启新一轮
func applyAlert(cur []esp.AlertData, a esp.AlertData) []esp.AlertData {
	if a.Count == 0 {
		return nil
	}
	if a.Index <= 1 {
		cur = cur[:0]
	}
	if len(cur) >= int(a.Count) {
		return cur
	}
	return append(cur, a)
}

func appendCapped(cur []esp.PacketType, p esp.PacketType) []esp.PacketType {
	cur = append(cur, p)
	if len(cur) > maxRejected {
		cur = cur[len(cur)-maxRejected:]
	}
	return cur
}
