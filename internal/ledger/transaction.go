package ledger

import "bike-factory/internal/types"

// refKind 标记一条需求绑定的来源台账
type refKind int

const (
	partRef    refKind = iota // 从零件库存扣减
	stationRef                // 从上游工站的完工计数扣减
)

// binding 是解析后的需求：一个带类型标签的 (资源, 数量) 对
// 归属在构造时确定一次，事务执行期不再做成员探测
type binding struct {
	id     string
	kind   refKind
	amount int
}

// resolveRequirements 把配置里的需求行解析为绑定
// 零件优先于工站：ID 同时存在时按零件处理，与历史行为保持一致
func (l *Ledger) resolveRequirements(reqs []types.RequirementSpec) ([]binding, error) {
	bindings := make([]binding, 0, len(reqs))
	for _, r := range reqs {
		switch {
		case l.hasPart(types.PartID(r.Resource)):
			bindings = append(bindings, binding{id: r.Resource, kind: partRef, amount: r.Amount})
		case l.hasStation(types.StationID(r.Resource)):
			bindings = append(bindings, binding{id: r.Resource, kind: stationRef, amount: r.Amount})
		default:
			return nil, errUnknownResource(r.Resource)
		}
	}
	return bindings, nil
}

func (l *Ledger) hasPart(id types.PartID) bool {
	_, ok := l.parts[id]
	return ok
}

func (l *Ledger) hasStation(id types.StationID) bool {
	_, ok := l.production[id]
	return ok
}

// available 读取绑定当前的可用量，调用方必须持有台账锁
func (l *Ledger) available(b binding) int {
	if b.kind == stationRef {
		return l.production[types.StationID(b.id)]
	}
	return l.parts[types.PartID(b.id)]
}

// checkAll 在不改动任何台账的前提下校验全部绑定
// 先整体校验再整体扣减，失败时外部看不到任何中间状态
func (l *Ledger) checkAll(bindings []binding, insufficient Code) *Error {
	for _, b := range bindings {
		if avail := l.available(b); avail < b.amount {
			return errInsufficient(insufficient, b.id, b.amount, avail)
		}
	}
	return nil
}

// deductAll 扣减全部绑定，只能在 checkAll 通过后调用
func (l *Ledger) deductAll(bindings []binding) {
	for _, b := range bindings {
		if b.kind == stationRef {
			l.production[types.StationID(b.id)] -= b.amount
		} else {
			l.parts[types.PartID(b.id)] -= b.amount
		}
	}
}
