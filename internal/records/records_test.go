package records

import (
	"testing"

	"bike-factory/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceRecords(t *testing.T) {
	b := NewBook()

	rec := types.MaintenanceRecord{
		Station: "Painting", Timestamp: "2024-01-02 10:00", Description: "nozzle cleaned",
	}
	require.NoError(t, b.AddMaintenance(rec))
	assert.Equal(t, []types.MaintenanceRecord{rec}, b.Maintenance())

	assert.ErrorIs(t, b.AddMaintenance(types.MaintenanceRecord{Station: "Painting"}), ErrMissingField)
	assert.Len(t, b.Maintenance(), 1)
}

func TestShifts(t *testing.T) {
	b := NewBook()

	s := types.Shift{Employee: "worker1", Start: "08:00", End: "16:00", Role: types.RoleProductionWorker}
	require.NoError(t, b.AddShift(s))
	assert.Equal(t, []types.Shift{s}, b.Shifts())

	assert.ErrorIs(t, b.AddShift(types.Shift{Employee: "worker1"}), ErrMissingField)
}

func TestSchedule(t *testing.T) {
	b := NewBook()

	// notes 允许为空
	e := types.ScheduleEntry{Datetime: "2024-01-03 09:00", Task: "frame batch"}
	require.NoError(t, b.AddScheduleEntry(e))
	assert.Equal(t, []types.ScheduleEntry{e}, b.Schedule())

	assert.ErrorIs(t, b.AddScheduleEntry(types.ScheduleEntry{Task: "x"}), ErrMissingField)
}

func TestRestore(t *testing.T) {
	b := NewBook()
	require.NoError(t, b.AddShift(types.Shift{Employee: "old", Start: "a", End: "b", Role: types.RoleSales}))

	maintenance := []types.MaintenanceRecord{{Station: "ChainGear", Timestamp: "t", Description: "d"}}
	b.Restore(maintenance, nil, nil)

	assert.Equal(t, maintenance, b.Maintenance())
	assert.Empty(t, b.Shifts())
	assert.Empty(t, b.Schedule())
}

func TestListsAreCopies(t *testing.T) {
	b := NewBook()
	require.NoError(t, b.AddShift(types.Shift{Employee: "worker1", Start: "a", End: "b", Role: types.RoleSales}))

	got := b.Shifts()
	got[0].Employee = "tampered"
	assert.Equal(t, "worker1", b.Shifts()[0].Employee)
}
