package ledger

import "bike-factory/internal/types"

// capabilities 是角色到操作的能力表
// 能力在核心集中校验，而不是依赖边界层隐藏入口：
// 即使调用方绕过了 UI/API 的限制，无权的操作也会在这里被拒绝
var capabilities = map[types.Role]map[types.OpCode]bool{
	types.RoleAdmin: {
		types.OpAddStock:        true,
		types.OpCompleteStation: true,
		types.OpAssemble:        true,
		types.OpSubmitOrder:     true,
		types.OpFulfill:         true,
	},
	types.RoleProductionWorker: {
		types.OpCompleteStation: true,
		types.OpAssemble:        true,
		types.OpFulfill:         true,
	},
	types.RoleInventoryManager: {
		types.OpAddStock: true,
	},
	types.RoleSales: {
		types.OpSubmitOrder: true,
	},
}

// authorize 校验角色能力，校验发生在读取任何台账状态之前
func (l *Ledger) authorize(actor types.Actor, op types.OpCode) error {
	if capabilities[actor.Role][op] {
		return nil
	}
	return l.reject(actor, op, errPermissionDenied(actor, op))
}
