package event

import (
	"sync"

	"bike-factory/internal/types"
)

// EventType 定义事件的类型
type EventType string

// 定义所有业务事件类型
const (
	StockAdded          EventType = "StockAdded"          // 零件补货入库
	StationCompleted    EventType = "StationCompleted"    // 工站完成一个单位
	BikeAssembled       EventType = "BikeAssembled"       // 一辆整车装配下线
	OrderSubmitted      EventType = "OrderSubmitted"      // 新订单提交
	OrderFulfilled      EventType = "OrderFulfilled"      // 订单交付完成
	TransactionRejected EventType = "TransactionRejected" // 事务被前置条件校验拒绝
)

// Event 结构体定义了事件的数据负载
// 各字段按事件类型选用，未涉及的字段保持零值
type Event struct {
	Type    EventType
	Actor   string          // 发起操作的用户名
	Op      types.OpCode    // 被拒绝的操作 (仅 TransactionRejected)
	Part    types.PartID    // 关联的零件 (仅 StockAdded)
	Amount  int             // 入库数量 (仅 StockAdded)
	Station types.StationID // 关联的工站 (仅 StationCompleted)
	Model   types.BikeModel // 关联的型号 (装配与交付事件)
	Order   *types.Order    // 订单副本 (订单相关事件)
	Code    string          // 拒绝原因码 (仅 TransactionRejected)
	Err     error           // 错误信息 (仅 TransactionRejected)
}

// Handler 是事件处理函数的签名
type Handler func(e Event)

// Bus 是一个简单的内存事件总线
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler // 存储事件类型到多个处理函数的映射
}

// NewBus 创建一个新的事件总线实例
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe 订阅一个特定类型的事件
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish 发布一个事件，所有订阅了该事件类型的处理器都将被调用
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if handlers, ok := b.handlers[e.Type]; ok {
		// 遍历所有处理器并异步执行
		// 使用 goroutine 避免单个处理器的阻塞影响其他处理器
		for _, handler := range handlers {
			go handler(e)
		}
	}
}
