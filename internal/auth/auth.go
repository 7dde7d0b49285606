package auth

import (
	"errors"
	"log/slog"
	"sync"

	"bike-factory/internal/types"
)

// 用户目录的操作错误
// 认证失败统一返回 ErrInvalidCredentials，不区分用户不存在和密码错误
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrDuplicateUser      = errors.New("that username already exists")
	ErrUserNotFound       = errors.New("no such user")
	ErrBuiltinAdmin       = errors.New("the built-in admin cannot be removed")
)

// builtinAdmin 是不可删除的内置管理员账号
const builtinAdmin = "admin"

// Store 是内存用户目录: 用户名 -> (密码, 角色)
// 密码以明文保存并参与快照往返，与历史数据格式保持兼容
type Store struct {
	mu     sync.RWMutex
	users  map[string]types.Credentials
	logger *slog.Logger
}

// NewStore 创建带默认账号的用户目录
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		users: map[string]types.Credentials{
			builtinAdmin: {Password: "password", Role: types.RoleAdmin},
			"worker1":    {Password: "w123", Role: types.RoleProductionWorker},
			"manager1":   {Password: "m123", Role: types.RoleInventoryManager},
			"sales1":     {Password: "s123", Role: types.RoleSales},
		},
		logger: logger.With("component", "auth"),
	}
}

// Authenticate 校验用户名密码，成功时返回携带角色的 Actor
func (s *Store) Authenticate(username, password string) (types.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.users[username]
	if !ok || cred.Password != password {
		return types.Actor{}, ErrInvalidCredentials
	}
	return types.Actor{Name: username, Role: cred.Role}, nil
}

// Create 新建用户，空用户名和重名都会被拒绝
func (s *Store) Create(username, password string, role types.Role) error {
	if username == "" {
		return ErrEmptyUsername
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return ErrDuplicateUser
	}
	s.users[username] = types.Credentials{Password: password, Role: role}
	s.logger.Info("用户已创建", "username", username, "role", role)
	return nil
}

// Delete 删除用户，内置管理员受保护
func (s *Store) Delete(username string) error {
	if username == builtinAdmin {
		return ErrBuiltinAdmin
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; !exists {
		return ErrUserNotFound
	}
	delete(s.users, username)
	s.logger.Info("用户已删除", "username", username)
	return nil
}

// Snapshot 返回目录的副本，持久化时使用
func (s *Store) Snapshot() map[string]types.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]types.Credentials, len(s.users))
	for name, cred := range s.users {
		out[name] = cred
	}
	return out
}

// Restore 用快照整体替换目录内容
func (s *Store) Restore(users map[string]types.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]types.Credentials, len(users))
	for name, cred := range users {
		s.users[name] = cred
	}
}
