// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"stranger_chat_server/internal/service/chat"
	"stranger_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// WsHandler WebSocket 连接处理器
type WsHandler struct {
	broker chat.MatchBroker
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(broker chat.MatchBroker) *WsHandler {
	return &WsHandler{broker: broker}
}

// Connect 建立 WebSocket 连接
// GET /wss
// 身份由 JWT 中间件解析，客户端不能伪造用户 id
// 功能:
//   - 将 HTTP 连接升级为 WebSocket 连接
//   - 注册客户端到在线登记表（后注册者获胜）
//   - 开始监听事件收发
func (h *WsHandler) Connect(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	chat.NewClientInit(c, userId, h.broker)
}
