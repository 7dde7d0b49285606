package ledger

import (
	"log/slog"
	"sync"

	"bike-factory/internal/event"
	"bike-factory/internal/types"
)

// Journal 抽象操作日志的追加端，持久化实现见 internal/persistence
// 为 nil 时表示不落盘（测试场景）
type Journal interface {
	Append(op types.Operation) error
}

// Ledger 持有工厂的全部共享台账：零件库存、工站完工计数、
// 成品整车库存和订单簿。所有修改型操作都在同一把锁内完成
// 读取-校验-写入的全过程，失败的调用不留下任何中间状态
//
// 工站完工计数和成品整车库存是两条互不对账的成品轨道：
// 订单交付只消耗整车库存，从不消耗工站产出
type Ledger struct {
	mu sync.Mutex

	parts      map[types.PartID]int
	production map[types.StationID]int
	bikes      map[types.BikeModel]int
	orders     []*types.Order
	byRef      map[string]*types.Order

	// 需求表在构造时解析为带类型标签的绑定，调用期不再做归属探测
	stations map[types.StationID][]binding
	recipes  map[types.BikeModel][]binding

	logger  *slog.Logger
	bus     *event.Bus
	journal Journal
}

// New 依据配置表构造台账
// 需求引用在此处一次性解析；引用了未知资源的配置直接报错
func New(
	stock []types.StockSpec,
	stations []types.StationSpec,
	recipes []types.RecipeSpec,
	logger *slog.Logger,
	bus *event.Bus,
	journal Journal,
) (*Ledger, error) {
	l := &Ledger{
		parts:      make(map[types.PartID]int),
		production: make(map[types.StationID]int),
		bikes:      make(map[types.BikeModel]int),
		byRef:      make(map[string]*types.Order),
		stations:   make(map[types.StationID][]binding),
		recipes:    make(map[types.BikeModel][]binding),
		logger:     logger.With("component", "ledger"),
		bus:        bus,
		journal:    journal,
	}

	for _, s := range stock {
		l.parts[s.Part] = s.Quantity
	}

	// 工站集合要先于需求解析建立，站与站之间允许任意引用
	for _, s := range stations {
		l.production[s.ID] = 0
	}
	for _, s := range stations {
		bindings, err := l.resolveRequirements(s.Requires)
		if err != nil {
			return nil, err
		}
		l.stations[s.ID] = bindings
	}

	// 配方行只允许引用零件，数量未入册的零件按库存 0 处理
	for _, r := range recipes {
		lines := make([]binding, 0, len(r.Parts))
		for _, p := range r.Parts {
			lines = append(lines, binding{id: p.Resource, kind: partRef, amount: p.Amount})
		}
		l.recipes[r.Model] = lines
		l.bikes[r.Model] = 0
	}

	return l, nil
}

// Get 返回某零件的当前库存，未知零件返回 0
func (l *Ledger) Get(part types.PartID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.parts[part]
}

// AddStock 补充零件库存
// 这是唯一的非事务性修改：补货没有前置条件，数量合法即入账
func (l *Ledger) AddStock(actor types.Actor, part types.PartID, amount int) error {
	if err := l.authorize(actor, types.OpAddStock); err != nil {
		return err
	}
	if part == "" {
		return l.reject(actor, types.OpAddStock, errValidation("part id must not be empty"))
	}
	if amount <= 0 {
		return l.reject(actor, types.OpAddStock, errValidation("restock amount must be positive"))
	}

	l.mu.Lock()
	l.parts[part] += amount
	l.append(types.Operation{Op: types.OpAddStock, Actor: actor.Name, Part: part, Amount: amount})
	l.mu.Unlock()

	l.publish(event.Event{Type: event.StockAdded, Actor: actor.Name, Part: part, Amount: amount})
	return nil
}

// Snapshot 返回四个台账的深拷贝，供渲染和上报使用
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Snapshot 是某一时刻台账的不可变副本
// JSON 字段名与持久化快照的顶层字段保持一致
type Snapshot struct {
	Parts      map[types.PartID]int    `json:"inventory"`
	Production map[types.StationID]int `json:"production"`
	Bikes      map[types.BikeModel]int `json:"bike_inventory"`
	Orders     []types.Order           `json:"orders"`
}

// PendingOrders 统计快照中处于 Pending 状态的订单数
func (s Snapshot) PendingOrders() int {
	n := 0
	for _, o := range s.Orders {
		if o.Status == types.OrderPending {
			n++
		}
	}
	return n
}

func (l *Ledger) snapshotLocked() Snapshot {
	snap := Snapshot{
		Parts:      make(map[types.PartID]int, len(l.parts)),
		Production: make(map[types.StationID]int, len(l.production)),
		Bikes:      make(map[types.BikeModel]int, len(l.bikes)),
		Orders:     make([]types.Order, 0, len(l.orders)),
	}
	for id, qty := range l.parts {
		snap.Parts[id] = qty
	}
	for id, count := range l.production {
		snap.Production[id] = count
	}
	for model, qty := range l.bikes {
		snap.Bikes[model] = qty
	}
	for _, o := range l.orders {
		snap.Orders = append(snap.Orders, *o)
	}
	return snap
}

// Restore 用一份快照整体替换台账状态，加载存档时使用
// 配置中已知的工站和型号即使不在快照里也保留为 0
func (l *Ledger) Restore(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.parts = make(map[types.PartID]int, len(snap.Parts))
	for id, qty := range snap.Parts {
		l.parts[id] = qty
	}

	l.production = make(map[types.StationID]int, len(l.stations))
	for id := range l.stations {
		l.production[id] = 0
	}
	for id, count := range snap.Production {
		l.production[id] = count
	}

	l.bikes = make(map[types.BikeModel]int, len(l.recipes))
	for model := range l.recipes {
		l.bikes[model] = 0
	}
	for model, qty := range snap.Bikes {
		l.bikes[model] = qty
	}

	l.orders = l.orders[:0]
	l.byRef = make(map[string]*types.Order, len(snap.Orders))
	for i := range snap.Orders {
		o := snap.Orders[i]
		l.insertLocked(&o)
	}
}

// Apply 重新施加一条日志记录，系统恢复时使用
// 不做能力校验，不再写日志，也不发布业务事件
func (l *Ledger) Apply(op types.Operation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch op.Op {
	case types.OpAddStock:
		l.parts[op.Part] += op.Amount
		return nil
	case types.OpCompleteStation:
		return l.completeStationLocked(op.Station)
	case types.OpAssemble:
		return l.assembleLocked(op.Model)
	case types.OpSubmitOrder:
		if op.Order == nil {
			return errValidation("journal entry has no order payload")
		}
		o := *op.Order
		l.insertLocked(&o)
		return nil
	case types.OpFulfill:
		_, err := l.fulfillLocked(op.Ref)
		return err
	default:
		return errValidation("unknown journal operation " + string(op.Op))
	}
}

// append 把成功落账的操作写入 journal，调用方必须持有台账锁：
// 日志顺序必须与落账顺序一致，重放才能重建出相同的状态
// 写入失败只记日志：内存状态已经生效，丢的是重启后的可恢复性
func (l *Ledger) append(op types.Operation) {
	if l.journal == nil {
		return
	}
	if err := l.journal.Append(op); err != nil {
		l.logger.Error("写入操作日志失败", "op", op.Op, "error", err)
	}
}

func (l *Ledger) publish(e event.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}

// reject 发布拒绝事件并原样返回错误，保证调用方拿到的消息可直接透出
func (l *Ledger) reject(actor types.Actor, op types.OpCode, err *Error) error {
	l.publish(event.Event{
		Type:  event.TransactionRejected,
		Actor: actor.Name,
		Op:    op,
		Code:  string(err.Code),
		Err:   err,
	})
	return err
}
