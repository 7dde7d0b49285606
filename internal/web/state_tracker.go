package web

import (
	"sync"

	"bike-factory/internal/ledger"
	"bike-factory/internal/rules"
	"bike-factory/internal/types"
)

// OrderSummary 是订单簿的统计视图
type OrderSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// FactoryView 是供前端展示的车间状态
// 这是一个简化的视图：库存数字、工站计数、订单统计和当前告警
type FactoryView struct {
	Parts      map[types.PartID]int    `json:"inventory"`
	Production map[types.StationID]int `json:"production"`
	Bikes      map[types.BikeModel]int `json:"bike_inventory"`
	Orders     OrderSummary            `json:"orders"`
	Alerts     []rules.Alert           `json:"alerts,omitempty"`
}

// StateTracker 维护车间状态的最新视图，并在每次变更后通知前端
type StateTracker struct {
	mu   sync.RWMutex
	view FactoryView
	hub  *Hub
}

// NewStateTracker 创建一个新的 StateTracker 实例
func NewStateTracker(hub *Hub) *StateTracker {
	return &StateTracker{
		view: FactoryView{
			Parts:      make(map[types.PartID]int),
			Production: make(map[types.StationID]int),
			Bikes:      make(map[types.BikeModel]int),
		},
		hub: hub,
	}
}

// Update 用最新的台账快照替换视图，并向所有客户端广播
func (st *StateTracker) Update(snap ledger.Snapshot, alerts []rules.Alert) {
	view := FactoryView{
		Parts:      snap.Parts,
		Production: snap.Production,
		Bikes:      snap.Bikes,
		Orders: OrderSummary{
			Total:   len(snap.Orders),
			Pending: snap.PendingOrders(),
		},
		Alerts: alerts,
	}
	view.Orders.Completed = view.Orders.Total - view.Orders.Pending

	st.mu.Lock()
	st.view = view
	st.mu.Unlock()

	if st.hub != nil {
		st.hub.BroadcastState(view)
	}
}

// GetStateSnapshot 返回当前视图的副本
// 用于新客户端连接时获取一次全量数据
func (st *StateTracker) GetStateSnapshot() FactoryView {
	st.mu.RLock()
	defer st.mu.RUnlock()

	view := st.view
	view.Parts = copyMap(st.view.Parts)
	view.Production = copyMap(st.view.Production)
	view.Bikes = copyMap(st.view.Bikes)
	view.Alerts = append([]rules.Alert(nil), st.view.Alerts...)
	return view
}

func copyMap[K comparable](m map[K]int) map[K]int {
	out := make(map[K]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
