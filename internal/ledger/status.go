package ledger

import (
	"fmt"

	"bike-factory/internal/types"
)

// orderEvent 定义订单状态机上的事件
type orderEvent string

const orderEventFulfill orderEvent = "FULFILL"

// orderTransitions 是订单状态迁移表: 当前状态 -> 事件 -> 下一状态
// 当前设计只有 Pending -> Completed 一条边；没有取消态，
// 这是有意保留的已知缺口，不在此处悄悄补上
var orderTransitions = map[types.OrderStatus]map[orderEvent]types.OrderStatus{
	types.OrderPending: {
		orderEventFulfill: types.OrderCompleted,
	},
}

// nextOrderStatus 查表执行一次状态迁移，非法迁移返回错误
func nextOrderStatus(current types.OrderStatus, ev orderEvent) (types.OrderStatus, error) {
	next, ok := orderTransitions[current][ev]
	if !ok {
		return current, fmt.Errorf("invalid transition: cannot fire event %s from status %s", ev, current)
	}
	return next, nil
}
