package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 定义 Prometheus 监控指标
var (
	// PartsStock 仪表盘：各零件的当前库存量
	PartsStock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "factory_parts_stock",
		Help: "Current raw part stock by part id",
	}, []string{"part"})

	// FinishedBikes 仪表盘：各型号的成品整车库存
	FinishedBikes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "factory_finished_bikes",
		Help: "Assembled bikes on hand by model",
	}, []string{"model"})

	// StationCompletionsTotal 计数器：各工站累计完工次数
	StationCompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_station_completions_total",
		Help: "The total number of completed station runs",
	}, []string{"station"})

	// OrdersTotal 计数器：订单事件总数，按事件 (submitted/fulfilled) 分类
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_orders_total",
		Help: "The total number of order events",
	}, []string{"event", "model"})

	// TransactionsRejectedTotal 计数器：被拒绝的事务总数
	// 按操作和错误码分类，用于观察哪类前置条件最常失败
	TransactionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_transactions_rejected_total",
		Help: "The total number of rejected ledger transactions",
	}, []string{"op", "code"})

	// AlertsFiredTotal 计数器：库存告警规则命中次数
	AlertsFiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "factory_alerts_fired_total",
		Help: "The total number of fired stock alert rules",
	}, []string{"rule"})
)
