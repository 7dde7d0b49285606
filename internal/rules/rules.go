package rules

import (
	"fmt"
	"log/slog"

	"bike-factory/internal/ledger"
	"bike-factory/internal/types"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
)

// Alert 表示一条命中的告警
type Alert struct {
	Name string `json:"name"`
	Rule string `json:"rule"`
}

// compiledRule 是一条编译完成的告警规则
type compiledRule struct {
	name    string
	src     string
	program *vm.Program
}

// Engine 在每次台账变更后对最新快照求值一组 expr 规则
// 规则在构造时编译一次，求值路径上没有解析开销
type Engine struct {
	rules  []compiledRule
	logger *slog.Logger
}

// New 编译配置中的全部告警规则
// 任何一条编译失败都让构造失败，坏规则不应该带病上线
func New(specs []types.AlertRule, logger *slog.Logger) (*Engine, error) {
	e := &Engine{logger: logger.With("component", "rules")}
	for _, spec := range specs {
		program, err := expr.Compile(spec.Rule, expr.Env(envFor(ledger.Snapshot{})))
		if err != nil {
			return nil, fmt.Errorf("rule %q compilation failed: %w", spec.Name, err)
		}
		e.rules = append(e.rules, compiledRule{name: spec.Name, src: spec.Rule, program: program})
	}
	return e, nil
}

// Evaluate 对一份快照求值全部规则，返回命中的告警
// 求值失败的规则记日志后跳过，不影响其余规则
func (e *Engine) Evaluate(snap ledger.Snapshot) []Alert {
	env := envFor(snap)
	var fired []Alert
	for _, r := range e.rules {
		result, err := expr.Run(r.program, env)
		if err != nil {
			e.logger.Error("告警规则求值失败", "rule", r.name, "error", err)
			continue
		}
		hit, ok := result.(bool)
		if !ok {
			e.logger.Error("告警规则结果不是布尔值", "rule", r.name)
			continue
		}
		if hit {
			fired = append(fired, Alert{Name: r.name, Rule: r.src})
		}
	}
	return fired
}

// envFor 把快照铺平成规则表达式可见的变量环境
func envFor(snap ledger.Snapshot) map[string]interface{} {
	parts := make(map[string]int, len(snap.Parts))
	for id, qty := range snap.Parts {
		parts[string(id)] = qty
	}
	bikes := make(map[string]int, len(snap.Bikes))
	for model, qty := range snap.Bikes {
		bikes[string(model)] = qty
	}
	production := make(map[string]int, len(snap.Production))
	for id, count := range snap.Production {
		production[string(id)] = count
	}
	return map[string]interface{}{
		"parts":          parts,
		"bikes":          bikes,
		"production":     production,
		"pending_orders": snap.PendingOrders(),
		"total_orders":   len(snap.Orders),
	}
}
