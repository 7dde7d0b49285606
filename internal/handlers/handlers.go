package handlers

import (
	"log/slog"

	"bike-factory/internal/event"
	"bike-factory/internal/ledger"
	"bike-factory/internal/metrics"
	"bike-factory/internal/rules"
	"bike-factory/internal/web"
)

// RegisterEventHandlers 将所有事件处理器注册到事件总线
// 这是事件驱动架构的核心，将不同的业务关注点（监控、UI、告警、审计）解耦
func RegisterEventHandlers(
	bus *event.Bus,
	led *ledger.Ledger,
	st *web.StateTracker,
	eng *rules.Engine,
	logger *slog.Logger,
) {
	// refresh 在每次成功落账后取一份新快照：
	// 刷新库存仪表、求值告警规则、更新前端视图
	refresh := func(e event.Event) {
		snap := led.Snapshot()
		for part, qty := range snap.Parts {
			metrics.PartsStock.WithLabelValues(string(part)).Set(float64(qty))
		}
		for model, qty := range snap.Bikes {
			metrics.FinishedBikes.WithLabelValues(string(model)).Set(float64(qty))
		}

		var alerts []rules.Alert
		if eng != nil {
			alerts = eng.Evaluate(snap)
			for _, alert := range alerts {
				metrics.AlertsFiredTotal.WithLabelValues(alert.Name).Inc()
				logger.Warn("库存告警命中", "rule", alert.Name, "expr", alert.Rule)
			}
		}
		if st != nil {
			st.Update(snap, alerts)
		}
	}
	for _, t := range []event.EventType{
		event.StockAdded, event.StationCompleted, event.BikeAssembled,
		event.OrderSubmitted, event.OrderFulfilled,
	} {
		bus.Subscribe(t, refresh)
	}

	// --- 指标处理器 (Metrics Handler) ---
	bus.Subscribe(event.StationCompleted, func(e event.Event) {
		metrics.StationCompletionsTotal.WithLabelValues(string(e.Station)).Inc()
	})
	bus.Subscribe(event.OrderSubmitted, func(e event.Event) {
		metrics.OrdersTotal.WithLabelValues("submitted", string(e.Model)).Inc()
	})
	bus.Subscribe(event.OrderFulfilled, func(e event.Event) {
		metrics.OrdersTotal.WithLabelValues("fulfilled", string(e.Model)).Inc()
	})
	bus.Subscribe(event.TransactionRejected, func(e event.Event) {
		metrics.TransactionsRejectedTotal.WithLabelValues(string(e.Op), e.Code).Inc()
	})

	// --- 日志处理器 (Logging Handler) ---
	// 订阅关键业务事件，记录审计日志
	bus.Subscribe(event.StockAdded, func(e event.Event) {
		logger.Info("零件补货入库", "actor", e.Actor, "part", e.Part, "amount", e.Amount)
	})
	bus.Subscribe(event.StationCompleted, func(e event.Event) {
		logger.Info("工站完工", "actor", e.Actor, "station", e.Station)
	})
	bus.Subscribe(event.BikeAssembled, func(e event.Event) {
		logger.Info("整车下线", "actor", e.Actor, "model", e.Model)
	})
	bus.Subscribe(event.OrderSubmitted, func(e event.Event) {
		logger.Info("订单已提交", "actor", e.Actor, "ref", e.Order.Ref, "model", e.Model)
	})
	bus.Subscribe(event.OrderFulfilled, func(e event.Event) {
		logger.Info("订单已交付", "actor", e.Actor, "ref", e.Order.Ref, "model", e.Model)
	})
	bus.Subscribe(event.TransactionRejected, func(e event.Event) {
		logger.Warn("事务被拒绝", "actor", e.Actor, "op", e.Op, "code", e.Code, "error", e.Err)
	})
}
