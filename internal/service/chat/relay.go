// Package chat 实现陌生人匹配与信令转发的核心服务层
// relay.go
// 核心职责：WebRTC 信令转发
// Payload 对服务端完全不透明，只校验房间有效性后原样转发给对端
package chat

import (
	"stranger_chat_server/internal/dao/mysql/repository"
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Relay 信令转发器
type Relay struct {
	repos    *repository.Repositories
	presence *Presence
	rooms    *RoomIndex
}

// NewRelay 创建信令转发器
func NewRelay(repos *repository.Repositories, presence *Presence, rooms *RoomIndex) *Relay {
	return &Relay{
		repos:    repos,
		presence: presence,
		rooms:    rooms,
	}
}

// RelaySignal 转发一条信令
// 规则：
//  1. 房间必须仍然有效且发送者是参与者，否则静默丢弃
//  2. 只发给对端，绝不回显给发送者
//  3. 对端离线时丢弃，信令没有补发语义
func (r *Relay) RelaySignal(senderId uint64, event string, req request.SignalRequest) {
	otherId, ok := r.rooms.OtherParty(req.Room, senderId)
	if !ok {
		// 内存索引未命中时回源数据库，进程刚重启过的场景
		match, err := r.repos.Match.FindActiveByRoom(req.Room)
		if err != nil {
			if !errorx.IsNotFound(err) {
				zap.L().Error("信令房间查询失败", zap.String("room_id", req.Room), zap.Error(err))
			}
			// 房间已结束或不存在，丢弃
			zap.L().Debug("丢弃无效房间信令",
				zap.String("room_id", req.Room),
				zap.Uint64("sender_id", senderId),
				zap.String("event", event))
			return
		}
		if otherId = match.OtherUser(senderId); otherId == 0 {
			return
		}
		r.rooms.Add(match.RoomId, match.User1Id, match.User2Id)
	}

	pushEvent(r.presence.Get(otherId), event, respond.SignalRespond{
		Room:    req.Room,
		From:    senderId,
		Payload: req.Payload,
	})
}
