// Package chat 实现陌生人匹配与信令转发的核心服务层
// dispatcher.go
// 核心职责：上行事件分发
// 解析事件信封并路由到匹配、信令、好友、私信各处理入口
package chat

import (
	"encoding/json"
	"errors"

	"stranger_chat_server/internal/dao/mysql/repository"
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// ContactOps 好友操作接口，由 contact service 实现
// 在此定义接口避免 chat 包依赖具体 service
type ContactOps interface {
	// AddFriendDuringMatch 在匹配中直接建立双向好友关系
	AddFriendDuringMatch(userId, peerId uint64) error
}

// MessageOps 私信操作接口，由 message service 实现
type MessageOps interface {
	// SendDirectMessage 保存并返回一条好友私信
	SendDirectMessage(sendId uint64, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// MarkAsRead 将 peer 发给 userId 的未读消息置为已读
	MarkAsRead(userId, peerId uint64) error
}

// Dispatcher 上行事件分发器
type Dispatcher struct {
	repos      *repository.Repositories
	presence   *Presence
	rooms      *RoomIndex
	matcher    *Matcher
	relay      *Relay
	contactOps ContactOps
	messageOps MessageOps
}

// NewDispatcher 创建事件分发器
func NewDispatcher(
	repos *repository.Repositories,
	presence *Presence,
	rooms *RoomIndex,
	matcher *Matcher,
	relay *Relay,
	contactOps ContactOps,
	messageOps MessageOps,
) *Dispatcher {
	return &Dispatcher{
		repos:      repos,
		presence:   presence,
		rooms:      rooms,
		matcher:    matcher,
		relay:      relay,
		contactOps: contactOps,
		messageOps: messageOps,
	}
}

// Dispatch 处理一条上行事件
func (d *Dispatcher) Dispatch(userId uint64, raw []byte) {
	var env request.ChatEventRequest
	if err := json.Unmarshal(raw, &env); err != nil {
		d.pushError(userId, "事件格式错误")
		return
	}

	switch env.Event {
	case EventStartSearch:
		d.handleStartSearch(userId)
	case EventSkipStranger:
		d.handleSkip(userId)
	case EventEndChat:
		d.handleEndChat(userId, env.Data)
	case EventWebrtcOffer, EventWebrtcAnswer, EventWebrtcIce:
		d.handleSignal(userId, env.Event, env.Data)
	case EventSendFriendRequest:
		d.handleAddFriend(userId, env.Data)
	case EventSendMessage:
		d.handleSendMessage(userId, env.Data)
	case EventMarkAsRead:
		d.handleMarkAsRead(userId, env.Data)
	default:
		zap.L().Warn("未知事件", zap.Uint64("user_id", userId), zap.String("event", env.Event))
		d.pushError(userId, "未知事件: "+env.Event)
	}
}

// HandleDisconnect 连接断开入口，broker 的 Logout 分支调用
func (d *Dispatcher) HandleDisconnect(client *UserConn) {
	d.matcher.HandleDisconnect(client)
}

func (d *Dispatcher) handleStartSearch(userId uint64) {
	if err := d.matcher.StartSearch(userId); err != nil {
		d.pushServiceError(userId, err)
	}
}

func (d *Dispatcher) handleSkip(userId uint64) {
	if err := d.matcher.Skip(userId); err != nil {
		d.pushServiceError(userId, err)
	}
}

func (d *Dispatcher) handleEndChat(userId uint64, data json.RawMessage) {
	var req request.EndChatRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			d.pushError(userId, "事件格式错误")
			return
		}
	}
	err := d.matcher.EndChat(userId, req.Room, EventStrangerDisconnected)
	// 重复结束静默成功
	if err != nil && !errors.Is(err, errorx.ErrNoActiveMatch) {
		d.pushServiceError(userId, err)
	}
}

func (d *Dispatcher) handleSignal(userId uint64, event string, data json.RawMessage) {
	var req request.SignalRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Room == "" {
		d.pushError(userId, "信令格式错误")
		return
	}
	d.relay.RelaySignal(userId, event, req)
}

// handleAddFriend 匹配中添加好友
// 对端身份由服务端从匹配记录解析，客户端无法指定任意用户
func (d *Dispatcher) handleAddFriend(userId uint64, data json.RawMessage) {
	var req request.AddFriendInMatchRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Room == "" {
		d.pushError(userId, "事件格式错误")
		return
	}

	peerId, ok := d.rooms.OtherParty(req.Room, userId)
	if !ok {
		match, err := d.repos.Match.FindActiveByRoom(req.Room)
		if err != nil {
			d.pushError(userId, "房间不存在或已结束")
			return
		}
		if peerId = match.OtherUser(userId); peerId == 0 {
			d.pushError(userId, "不在该房间内")
			return
		}
	}

	if err := d.contactOps.AddFriendDuringMatch(userId, peerId); err != nil {
		d.pushServiceError(userId, err)
		return
	}

	// 成功后双方都收到通知
	users, err := d.repos.User.FindByIds([]uint64{userId, peerId})
	if err != nil {
		zap.L().Error("查询好友通知用户失败", zap.Error(err))
		return
	}
	nicknames := make(map[uint64]string, len(users))
	for _, u := range users {
		nicknames[uint64(u.ID)] = u.Nickname
	}
	pushEvent(d.presence.Get(userId), EventFriendAdded, respond.FriendAddedNotificationRespond{
		FriendId: peerId,
		Nickname: nicknames[peerId],
	})
	pushEvent(d.presence.Get(peerId), EventFriendAdded, respond.FriendAddedNotificationRespond{
		FriendId: userId,
		Nickname: nicknames[userId],
	})
}

func (d *Dispatcher) handleSendMessage(userId uint64, data json.RawMessage) {
	var req request.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ReceiveId == 0 || req.Content == "" {
		d.pushError(userId, "消息格式错误")
		return
	}

	messageRsp, err := d.messageOps.SendDirectMessage(userId, req)
	if err != nil {
		d.pushServiceError(userId, err)
		return
	}

	// 接收方在线则实时推送
	if receiver := d.presence.Get(req.ReceiveId); receiver != nil {
		pushEvent(receiver, EventReceiveMessage, messageRsp)
		sender, err := d.repos.User.FindById(userId)
		if err == nil {
			pushEvent(receiver, EventMessageNotification, respond.MessageNotificationRespond{
				FromId:   userId,
				Nickname: sender.Nickname,
			})
		}
	}
	// 回显给发送者，客户端据此确认落库
	pushEvent(d.presence.Get(userId), EventReceiveMessage, messageRsp)
}

func (d *Dispatcher) handleMarkAsRead(userId uint64, data json.RawMessage) {
	var req request.MarkAsReadRequest
	if err := json.Unmarshal(data, &req); err != nil || req.PeerId == 0 {
		d.pushError(userId, "事件格式错误")
		return
	}
	if err := d.messageOps.MarkAsRead(userId, req.PeerId); err != nil {
		d.pushServiceError(userId, err)
	}
}

// pushError 向用户推送错误事件
func (d *Dispatcher) pushError(userId uint64, message string) {
	pushEvent(d.presence.Get(userId), EventError, respond.ErrorRespond{Message: message})
}

// pushServiceError 将业务错误转成错误事件
// CodeError 的对外文案直接可用，其余错误不向客户端泄露细节
func (d *Dispatcher) pushServiceError(userId uint64, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		d.pushError(userId, codeErr.Msg)
		return
	}
	zap.L().Error("事件处理失败", zap.Uint64("user_id", userId), zap.Error(err))
	d.pushError(userId, "服务器繁忙，请稍后重试")
}
