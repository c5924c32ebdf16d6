// Package handler 提供 HTTP 请求处理器
// 本文件处理好友私信相关的 API 请求
package handler

import (
	"strconv"

	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/service"
	"stranger_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// MessageHandler 私信请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建私信处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// SendMessage 发送好友私信
// POST /message/sendMessage
// 实时推送走 WebSocket 的 send_message 事件，此接口是 HTTP 备用通道
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendDirectMessage(userId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMessageList 获取与好友的历史消息
// GET /message/getMessageList?peer_id=123
func (h *MessageHandler) GetMessageList(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	peerId, err := strconv.ParseUint(c.Query("peer_id"), 10, 64)
	if err != nil || peerId == 0 {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.messageSvc.GetMessageList(userId, peerId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkAsRead 标记好友消息已读
// POST /message/markAsRead
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.MarkAsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.messageSvc.MarkAsRead(userId, req.PeerId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
