package ledger

import (
	"bike-factory/internal/event"
	"bike-factory/internal/types"
)

// Assemble 按配方装配一辆整车
// 校验配方里的每一行零件，全部满足后原子扣减并把该型号的
// 成品库存加一。只读写零件库存和整车库存，不触碰工站计数
func (l *Ledger) Assemble(actor types.Actor, model types.BikeModel) error {
	if err := l.authorize(actor, types.OpAssemble); err != nil {
		return err
	}

	l.mu.Lock()
	err := l.assembleLocked(model)
	if err == nil {
		l.append(types.Operation{Op: types.OpAssemble, Actor: actor.Name, Model: model})
	}
	l.mu.Unlock()

	if err != nil {
		var le *Error
		if asLedgerError(err, &le) {
			return l.reject(actor, types.OpAssemble, le)
		}
		return err
	}

	l.publish(event.Event{Type: event.BikeAssembled, Actor: actor.Name, Model: model})
	return nil
}

func (l *Ledger) assembleLocked(model types.BikeModel) error {
	recipe, ok := l.recipes[model]
	if !ok {
		return errUnknownRecipe(model)
	}
	if err := l.checkAll(recipe, CodeInsufficientParts); err != nil {
		return err
	}
	l.deductAll(recipe)
	l.bikes[model]++
	return nil
}
