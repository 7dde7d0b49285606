package rules

import (
	"io"
	"log/slog"
	"testing"

	"bike-factory/internal/config"
	"bike-factory/internal/ledger"
	"bike-factory/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, specs []types.AlertRule) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := New(specs, logger)
	require.NoError(t, err)
	return engine
}

// fullSnapshot 构造一份包含全部目录零件的快照，缺 key 的快照不进入求值路径
func fullSnapshot() ledger.Snapshot {
	parts := make(map[types.PartID]int)
	for _, spec := range config.DefaultOpeningStock() {
		parts[spec.Part] = spec.Quantity
	}
	return ledger.Snapshot{
		Parts:      parts,
		Bikes:      map[types.BikeModel]int{types.ModelSport: 0},
		Production: map[types.StationID]int{types.StationPainting: 0},
	}
}

func TestDefaultRulesCompile(t *testing.T) {
	newEngine(t, config.DefaultAlertRules())
}

func TestDefaultRulesStaySilentOnOpeningStock(t *testing.T) {
	engine := newEngine(t, config.DefaultAlertRules())

	assert.Empty(t, engine.Evaluate(fullSnapshot()))
}

func TestNoMotorsLeftFires(t *testing.T) {
	engine := newEngine(t, config.DefaultAlertRules())

	snap := fullSnapshot()
	snap.Parts["Motors"] = 0

	fired := engine.Evaluate(snap)
	require.Len(t, fired, 1)
	assert.Equal(t, "no_motors_left", fired[0].Name)
	assert.Equal(t, `parts["Motors"] == 0`, fired[0].Rule)
}

func TestLowTubularSteelFiresBelowThreshold(t *testing.T) {
	engine := newEngine(t, config.DefaultAlertRules())

	snap := fullSnapshot()
	snap.Parts["Tubular Steel"] = 4

	fired := engine.Evaluate(snap)
	require.Len(t, fired, 1)
	assert.Equal(t, "low_tubular_steel", fired[0].Name)
}

func TestOrderBacklogUsesPendingOrders(t *testing.T) {
	engine := newEngine(t, config.DefaultAlertRules())

	snap := fullSnapshot()
	for i := 0; i < 11; i++ {
		snap.Orders = append(snap.Orders, types.Order{Status: types.OrderPending})
	}

	fired := engine.Evaluate(snap)
	require.Len(t, fired, 1)
	assert.Equal(t, "order_backlog", fired[0].Name)
}

func TestBadRuleFailsConstruction(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := New([]types.AlertRule{
		{Name: "broken", Rule: `parts[`},
	}, logger)
	assert.Error(t, err)
}

func TestNonBoolRuleIsSkipped(t *testing.T) {
	engine := newEngine(t, []types.AlertRule{
		{Name: "not_a_predicate", Rule: `pending_orders + 1`},
		{Name: "always", Rule: `total_orders >= 0`},
	})

	fired := engine.Evaluate(fullSnapshot())
	require.Len(t, fired, 1)
	assert.Equal(t, "always", fired[0].Name)
}
