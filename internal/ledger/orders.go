package ledger

import (
	"time"

	"bike-factory/internal/event"
	"bike-factory/internal/types"

	"github.com/google/uuid"
)

// SubmitOrder 向订单簿追加一条新订单
// 除了四个必填字段非空外没有其它前置条件；引用和状态由台账生成，
// 调用方传入的同名字段会被覆盖。返回落账后的订单副本
func (l *Ledger) SubmitOrder(actor types.Actor, draft types.Order) (types.Order, error) {
	if err := l.authorize(actor, types.OpSubmitOrder); err != nil {
		return types.Order{}, err
	}
	if err := validateDraft(draft); err != nil {
		return types.Order{}, l.reject(actor, types.OpSubmitOrder, err)
	}

	o := draft
	o.Ref = "ORD-" + uuid.NewString()
	o.Status = types.OrderPending
	o.SubmittedAt = time.Now().UTC().Format(time.RFC3339)

	stored := o
	l.mu.Lock()
	l.insertLocked(&o)
	l.append(types.Operation{Op: types.OpSubmitOrder, Actor: actor.Name, Order: &stored})
	l.mu.Unlock()

	l.publish(event.Event{Type: event.OrderSubmitted, Actor: actor.Name, Model: o.BikeModel, Order: &stored})
	return o, nil
}

// Fulfill 交付一条待处理订单
// 从整车库存扣减一辆对应型号的成品，并把订单置为 Completed。
// 该迁移不可逆：已完成的订单永久留在订单簿里，没有撤销操作
func (l *Ledger) Fulfill(actor types.Actor, ref string) (types.Order, error) {
	if err := l.authorize(actor, types.OpFulfill); err != nil {
		return types.Order{}, err
	}

	l.mu.Lock()
	o, err := l.fulfillLocked(ref)
	if err == nil {
		l.append(types.Operation{Op: types.OpFulfill, Actor: actor.Name, Ref: ref})
	}
	l.mu.Unlock()

	if err != nil {
		var le *Error
		if asLedgerError(err, &le) {
			return types.Order{}, l.reject(actor, types.OpFulfill, le)
		}
		return types.Order{}, err
	}

	done := o
	l.publish(event.Event{Type: event.OrderFulfilled, Actor: actor.Name, Model: o.BikeModel, Order: &done})
	return o, nil
}

// insertLocked 追加订单并建立引用索引，调用方必须持有台账锁
func (l *Ledger) insertLocked(o *types.Order) {
	l.orders = append(l.orders, o)
	l.byRef[o.Ref] = o
}

func (l *Ledger) fulfillLocked(ref string) (types.Order, error) {
	o, ok := l.byRef[ref]
	// 已完成的订单对交付而言等同于不存在，只在待处理订单中解析引用
	if !ok || o.Status != types.OrderPending {
		return types.Order{}, errOrderNotFound(ref)
	}
	if l.bikes[o.BikeModel] < 1 {
		return types.Order{}, errNoBikeAvailable(o.BikeModel)
	}

	next, err := nextOrderStatus(o.Status, orderEventFulfill)
	if err != nil {
		return types.Order{}, err
	}
	l.bikes[o.BikeModel]--
	o.Status = next
	return *o, nil
}

func validateDraft(draft types.Order) *Error {
	switch {
	case draft.CustomerName == "":
		return errValidation("customer_name is required")
	case draft.ContactInfo == "":
		return errValidation("contact_info is required")
	case draft.DeliveryAddress == "":
		return errValidation("delivery_address is required")
	case draft.BikeModel == "":
		return errValidation("bike_model is required")
	}
	return nil
}
