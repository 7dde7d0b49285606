package persistence

import (
	"path/filepath"
	"testing"

	"bike-factory/internal/types"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleState 构造一份确定性的全量存档
func sampleState() *FactoryState {
	return &FactoryState{
		Users: map[string]types.Credentials{
			"admin": {Password: "password", Role: types.RoleAdmin},
		},
		Inventory: map[types.PartID]int{
			"Brakes":        15,
			"Tubular Steel": 20,
		},
		BikeInventory: map[types.BikeModel]int{
			"Sport": 1,
		},
		Orders: []types.Order{{
			Ref:             "ORD-0001",
			CustomerName:    "Ada",
			ContactInfo:     "ada@example.com",
			DeliveryAddress: "1 Factory Way",
			BikeModel:       types.ModelSport,
			Status:          types.OrderPending,
			SubmittedAt:     "2024-01-02T03:04:05Z",
		}},
		Production: map[types.StationID]int{
			"ForkWelded":  1,
			"FrameWelded": 2,
		},
		Maintenance: []types.MaintenanceRecord{{
			Station: "Painting", Timestamp: "2024-01-02 10:00", Description: "nozzle cleaned",
		}},
		Shifts: []types.Shift{{
			Employee: "worker1", Start: "2024-01-02 08:00", End: "2024-01-02 16:00",
			Role: types.RoleProductionWorker,
		}},
		Schedule: []types.ScheduleEntry{{
			Datetime: "2024-01-03 09:00", Task: "frame batch", Notes: "rush",
		}},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "factory.json"))

	state := sampleState()
	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestLoadMissingFileMeansColdStart(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "absent.json"))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "factory.json"))

	require.NoError(t, store.Save(sampleState()))

	next := sampleState()
	next.Inventory["Brakes"] = 0
	next.Orders[0].Status = types.OrderCompleted
	require.NoError(t, store.Save(next))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, next, loaded)
}

// 存档的编码格式是对外契约，用 golden 文件钉住
func TestSnapshotEncodingGolden(t *testing.T) {
	data, err := sampleState().Encode()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "factory_state", append(data, '\n'))
}
