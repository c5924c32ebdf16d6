// Package chat 实现陌生人匹配与信令转发的核心服务层
// rooms.go
// 核心职责：活跃房间索引
// 数据库中的匹配记录是权威数据，该索引只是内存快路径
package chat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// roomEntry 房间内的两名参与者
type roomEntry struct {
	User1 uint64
	User2 uint64
}

// RoomIndex 活跃房间内存索引
type RoomIndex struct {
	mu     sync.RWMutex
	byRoom map[string]roomEntry
	byUser map[uint64]string
}

// NewRoomIndex 创建空的房间索引
func NewRoomIndex() *RoomIndex {
	return &RoomIndex{
		byRoom: make(map[string]roomEntry),
		byUser: make(map[uint64]string),
	}
}

// NewRoomId 生成房间 id
// 格式: match_<小ID>_<大ID>_<随机token>，token 保证同一对用户多次匹配的房间互不相同
func NewRoomId(user1Id, user2Id uint64) string {
	if user1Id > user2Id {
		user1Id, user2Id = user2Id, user1Id
	}
	return fmt.Sprintf("match_%d_%d_%s", user1Id, user2Id, uuid.New().String())
}

// Add 登记房间
func (r *RoomIndex) Add(roomId string, user1Id, user2Id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRoom[roomId] = roomEntry{User1: user1Id, User2: user2Id}
	r.byUser[user1Id] = roomId
	r.byUser[user2Id] = roomId
}

// Remove 移除房间，重复移除无副作用
func (r *RoomIndex) Remove(roomId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.byRoom[roomId]
	if !ok {
		return
	}
	delete(r.byRoom, roomId)
	// 用户可能已经进入了新房间，只清理仍然指向本房间的索引
	if r.byUser[entry.User1] == roomId {
		delete(r.byUser, entry.User1)
	}
	if r.byUser[entry.User2] == roomId {
		delete(r.byUser, entry.User2)
	}
}

// Members 返回房间的两名参与者
func (r *RoomIndex) Members(roomId string) (uint64, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byRoom[roomId]
	return entry.User1, entry.User2, ok
}

// RoomOf 返回用户当前所在房间
func (r *RoomIndex) RoomOf(userId uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomId, ok := r.byUser[userId]
	return roomId, ok
}

// OtherParty 返回房间内 userId 的对端
// 房间不存在或 userId 不在房间内时返回 false
func (r *RoomIndex) OtherParty(roomId string, userId uint64) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byRoom[roomId]
	if !ok {
		return 0, false
	}
	switch userId {
	case entry.User1:
		return entry.User2, true
	case entry.User2:
		return entry.User1, true
	}
	return 0, false
}
