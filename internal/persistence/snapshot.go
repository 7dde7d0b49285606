package persistence

import (
	"encoding/json"
	"os"
	"sync"

	"bike-factory/internal/types"
)

// FactoryState 是一次全量存档的顶层结构
// 八个字段缺一不可，往返加载后必须得到相同的工厂状态
type FactoryState struct {
	Users         map[string]types.Credentials `json:"users"`
	Inventory     map[types.PartID]int         `json:"inventory"`
	BikeInventory map[types.BikeModel]int      `json:"bike_inventory"`
	Orders        []types.Order                `json:"orders"`
	Production    map[types.StationID]int      `json:"production"`
	Maintenance   []types.MaintenanceRecord    `json:"maintenance"`
	Shifts        []types.Shift                `json:"shifts"`
	Schedule      []types.ScheduleEntry        `json:"schedule"`
}

// Encode 以稳定的缩进格式序列化存档
func (s *FactoryState) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// SnapshotStore 负责全量存档文件的读写
type SnapshotStore struct {
	path string
	mu   sync.Mutex
}

// NewSnapshotStore 创建指向指定路径的存档仓库
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save 写出一份全量存档
// 先写临时文件再原子替换，避免宕机留下半个存档
func (st *SnapshotStore) Save(state *FactoryState) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := state.Encode()
	if err != nil {
		return err
	}
	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, st.path)
}

// Load 读取存档，文件不存在时返回 (nil, nil) 表示冷启动
func (st *SnapshotStore) Load() (*FactoryState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var state FactoryState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
