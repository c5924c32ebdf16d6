// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
// 遵循依赖倒置原则，通过构造函数注入 Service 依赖
package handler

import (
	"stranger_chat_server/internal/service"
	"stranger_chat_server/internal/service/chat"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Contact *ContactHandler
	Message *MessageHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// svc: Service 层聚合实例
// broker: 聊天事件代理，WebSocket 连接注册使用
func NewHandlers(svc *service.Services, broker chat.MatchBroker) *Handlers {
	return &Handlers{
		Auth:    NewAuthHandler(svc.User),
		User:    NewUserHandler(svc.User),
		Contact: NewContactHandler(svc.Contact, broker),
		Message: NewMessageHandler(svc.Message),
		Ws:      NewWsHandler(broker),
	}
}
