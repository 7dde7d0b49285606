package records

import (
	"errors"
	"sync"

	"bike-factory/internal/types"
)

// ErrMissingField 表示一条透传记录缺少必填字段
var ErrMissingField = errors.New("record is missing a required field")

// Book 存放没有业务不变式的透传记录：维护日志、排班和生产日程
// 核心对它们只做"字段非空"校验，其余内容原样保存并参与快照往返
type Book struct {
	mu          sync.RWMutex
	maintenance []types.MaintenanceRecord
	shifts      []types.Shift
	schedule    []types.ScheduleEntry
}

// NewBook 创建空的记录簿
func NewBook() *Book {
	return &Book{}
}

// AddMaintenance 追加一条维护记录
func (b *Book) AddMaintenance(rec types.MaintenanceRecord) error {
	if rec.Station == "" || rec.Timestamp == "" || rec.Description == "" {
		return ErrMissingField
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maintenance = append(b.maintenance, rec)
	return nil
}

// AddShift 追加一条排班记录
func (b *Book) AddShift(s types.Shift) error {
	if s.Employee == "" || s.Start == "" || s.End == "" || s.Role == "" {
		return ErrMissingField
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shifts = append(b.shifts, s)
	return nil
}

// AddScheduleEntry 追加一条日程条目，notes 允许为空
func (b *Book) AddScheduleEntry(e types.ScheduleEntry) error {
	if e.Datetime == "" || e.Task == "" {
		return ErrMissingField
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.schedule = append(b.schedule, e)
	return nil
}

// Maintenance 返回维护记录的副本
func (b *Book) Maintenance() []types.MaintenanceRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]types.MaintenanceRecord(nil), b.maintenance...)
}

// Shifts 返回排班记录的副本
func (b *Book) Shifts() []types.Shift {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]types.Shift(nil), b.shifts...)
}

// Schedule 返回日程的副本
func (b *Book) Schedule() []types.ScheduleEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]types.ScheduleEntry(nil), b.schedule...)
}

// Restore 用快照整体替换三类记录
func (b *Book) Restore(
	maintenance []types.MaintenanceRecord,
	shifts []types.Shift,
	schedule []types.ScheduleEntry,
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maintenance = append([]types.MaintenanceRecord(nil), maintenance...)
	b.shifts = append([]types.Shift(nil), shifts...)
	b.schedule = append([]types.ScheduleEntry(nil), schedule...)
}
