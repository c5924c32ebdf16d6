// Package chat 实现陌生人匹配与信令转发的核心服务层
// presence.go
// 核心职责：在线状态登记表
// 连接注册、替换、注销的唯一入口，内存表与数据库在线标志保持同步
package chat

import (
	"sync"

	"stranger_chat_server/internal/dao/mysql/repository"

	"go.uber.org/zap"
)

// Presence 在线用户登记表
// 同一用户多次注册时后注册的连接获胜，旧连接被踢下线
type Presence struct {
	mu       sync.RWMutex
	conns    map[uint64]*UserConn
	userRepo repository.UserRepository
}

// NewPresence 创建在线登记表
func NewPresence(userRepo repository.UserRepository) *Presence {
	return &Presence{
		conns:    make(map[uint64]*UserConn),
		userRepo: userRepo,
	}
}

// Register 登记连接并标记用户在线
// 返回被替换的旧连接，没有则返回 nil
func (p *Presence) Register(client *UserConn) *UserConn {
	p.mu.Lock()
	old := p.conns[client.UserId]
	p.conns[client.UserId] = client
	p.mu.Unlock()

	if err := p.userRepo.SetOnline(client.UserId, client.ConnId); err != nil {
		zap.L().Error("标记用户在线失败", zap.Uint64("user_id", client.UserId), zap.Error(err))
	}
	return old
}

// Unregister 注销连接并标记用户离线
// 只有当前登记的连接可以注销自己，旧连接的迟到注销被忽略
// 返回是否真正发生了注销
func (p *Presence) Unregister(client *UserConn) bool {
	p.mu.Lock()
	cur, ok := p.conns[client.UserId]
	if !ok || cur.ConnId != client.ConnId {
		p.mu.Unlock()
		return false
	}
	delete(p.conns, client.UserId)
	p.mu.Unlock()

	if err := p.userRepo.SetOffline(client.UserId); err != nil {
		zap.L().Error("标记用户离线失败", zap.Uint64("user_id", client.UserId), zap.Error(err))
	}
	return true
}

// Get 获取用户当前连接，离线返回 nil
func (p *Presence) Get(userId uint64) *UserConn {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conns[userId]
}

// IsOnline 判断用户是否在线
func (p *Presence) IsOnline(userId uint64) bool {
	return p.Get(userId) != nil
}

// OnlineCount 当前在线连接数
func (p *Presence) OnlineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}
