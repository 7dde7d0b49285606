package ledger

import (
	"bike-factory/internal/event"
	"bike-factory/internal/types"
)

// CompleteStation 记录一次工站完工
// 校验并扣减该工站需求表里的全部资源（零件或上游工站的完工数），
// 然后把该工站自己的完工计数加一。整个序列是一个原子单元
//
// 工站之间的先后顺序由调用方驱动，引擎只执行需求表里的数值约束：
// 默认配置看起来是一条链，只是因为每站恰好需要上一站的产出
func (l *Ledger) CompleteStation(actor types.Actor, id types.StationID) error {
	if err := l.authorize(actor, types.OpCompleteStation); err != nil {
		return err
	}

	l.mu.Lock()
	err := l.completeStationLocked(id)
	if err == nil {
		l.append(types.Operation{Op: types.OpCompleteStation, Actor: actor.Name, Station: id})
	}
	l.mu.Unlock()

	if err != nil {
		var le *Error
		if asLedgerError(err, &le) {
			return l.reject(actor, types.OpCompleteStation, le)
		}
		return err
	}

	l.publish(event.Event{Type: event.StationCompleted, Actor: actor.Name, Station: id})
	return nil
}

func (l *Ledger) completeStationLocked(id types.StationID) error {
	bindings, ok := l.stations[id]
	if !ok {
		return errUnknownStation(id)
	}
	if err := l.checkAll(bindings, CodeInsufficientResource); err != nil {
		return err
	}
	l.deductAll(bindings)
	l.production[id]++
	return nil
}
