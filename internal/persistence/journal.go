package persistence

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"

	"bike-factory/internal/types"
)

// Journal 以 JSON-lines 形式追加记录已落账的台账操作
// 启动时按原顺序重放，配合全量快照构成 检查点+日志 的恢复模型
type Journal struct {
	file *os.File   // 日志文件句柄
	mu   sync.Mutex // 互斥锁，保证文件写入的原子性
}

// NewJournal 创建或打开一个操作日志文件
func NewJournal(path string) (*Journal, error) {
	// O_APPEND: 追加写入, O_CREATE: 文件不存在则创建, O_RDWR: 读写模式
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &Journal{file: file}, nil
}

// Append 将一条已成功施加的操作写入日志
func (j *Journal) Append(op types.Operation) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := json.Marshal(op)
	if err != nil {
		return err
	}

	// 写入数据并在末尾添加换行符
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return err
	}
	// 确保数据被刷新到磁盘，防止数据丢失
	return j.file.Sync()
}

// Recover 按写入顺序读出全部日志记录
// 在系统启动、加载完快照之后调用
func (j *Journal) Recover() ([]types.Operation, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	// 将文件指针移动到开头以进行读取
	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var ops []types.Operation
	scanner := bufio.NewScanner(j.file)
	for scanner.Scan() {
		var op types.Operation
		if err := json.Unmarshal(scanner.Bytes(), &op); err != nil {
			// 忽略损坏的行（通常是宕机时写了一半的末行）
			continue
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// 恢复文件指针到末尾，以便后续追加写入
	if _, err := j.file.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}
	return ops, nil
}

// Reset 清空日志，在成功写出全量快照（检查点）之后调用
func (j *Journal) Reset() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.file.Truncate(0); err != nil {
		return err
	}
	if _, err := j.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return j.file.Sync()
}

// Close 关闭日志文件
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
