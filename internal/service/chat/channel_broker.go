// Package chat 实现陌生人匹配与信令转发的核心服务层
// channel_broker.go
// 核心职责：单机模式下的事件代理实现
// 1. 通过 Login/Logout/Transmit 三个通道串行处理连接事件和上行事件
// 2. 不依赖外部消息队列，适合小规模或开发环境
package chat

import (
	"context"

	"stranger_chat_server/pkg/constants"

	"go.uber.org/zap"
)

// inboundEvent 带发送者标识的上行事件
type inboundEvent struct {
	UserId uint64
	Raw    []byte
}

// ChannelBroker 单机事件代理
// 一个 Start 协程消费全部通道，事件处理天然串行
type ChannelBroker struct {
	// Transmit 上行事件通道
	Transmit chan *inboundEvent
	// Login 客户端登录通道，当有新连接建立时写入此通道
	Login chan *UserConn
	// Logout 客户端登出通道，当连接断开时写入此通道
	Logout chan *UserConn

	presence   *Presence
	dispatcher *Dispatcher
}

// NewChannelBroker 创建 ChannelBroker 实例（依赖注入）
func NewChannelBroker(presence *Presence, dispatcher *Dispatcher) *ChannelBroker {
	return &ChannelBroker{
		Transmit:   make(chan *inboundEvent, constants.CHANNEL_SIZE),
		Login:      make(chan *UserConn, constants.CHANNEL_SIZE),
		Logout:     make(chan *UserConn, constants.CHANNEL_SIZE),
		presence:   presence,
		dispatcher: dispatcher,
	}
}

// Publish 发布上行事件到转发通道
func (s *ChannelBroker) Publish(ctx context.Context, userId uint64, msg []byte) error {
	select {
	case s.Transmit <- &inboundEvent{UserId: userId, Raw: msg}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterClient 注册客户端连接
func (s *ChannelBroker) RegisterClient(client *UserConn) {
	s.Login <- client
}

// UnregisterClient 注销客户端连接
func (s *ChannelBroker) UnregisterClient(client *UserConn) {
	s.Logout <- client
}

// GetClient 获取指定用户的连接
func (s *ChannelBroker) GetClient(userId uint64) *UserConn {
	return s.presence.Get(userId)
}

// PushToUser 向在线用户推送一条下行事件，离线用户静默忽略
func (s *ChannelBroker) PushToUser(userId uint64, event string, data interface{}) {
	pushEvent(s.presence.Get(userId), event, data)
}

// Start 启动主循环
// 从死循环中处理各种 channel 事件：
// 1. Login/Logout: 维护在线登记表并触发断线清理
// 2. Transmit: 上行事件交给 Dispatcher 路由
func (s *ChannelBroker) Start() {
	for {
		select {
		// 处理客户端登录事件
		case client, ok := <-s.Login:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			// 后注册的连接获胜，旧连接被关闭
			if old := s.presence.Register(client); old != nil {
				zap.L().Info("同一用户重复连接，关闭旧连接", zap.Uint64("user_id", client.UserId))
				_ = old.Conn.Close()
			}
			zap.L().Info("用户上线", zap.Uint64("user_id", client.UserId))

		// 处理客户端登出事件
		case client, ok := <-s.Logout:
			if !ok {
				return
			}
			if client == nil {
				continue
			}
			s.dispatcher.HandleDisconnect(client)
			zap.L().Info("用户下线", zap.Uint64("user_id", client.UserId))

		// 处理上行事件（核心的事件处理循环）
		case event, ok := <-s.Transmit:
			if !ok {
				return
			}
			s.dispatcher.Dispatch(event.UserId, event.Raw)
		}
	}
}

// Close 关闭代理资源
func (s *ChannelBroker) Close() {
	close(s.Login)
	close(s.Logout)
	close(s.Transmit)
}
