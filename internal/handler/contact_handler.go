// Package handler 提供 HTTP 请求处理器
// 本文件处理好友关系相关的 API 请求
package handler

import (
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
	"stranger_chat_server/internal/service"
	"stranger_chat_server/internal/service/chat"
	"stranger_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ContactHandler 好友请求处理器
type ContactHandler struct {
	contactSvc service.ContactService
	broker     chat.MatchBroker
}

// NewContactHandler 创建好友处理器实例
// broker 用于向在线用户实时推送好友申请相关事件
func NewContactHandler(contactSvc service.ContactService, broker chat.MatchBroker) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc, broker: broker}
}

// GetFriendList 获取好友列表
// GET /contact/getFriendList
func (h *ContactHandler) GetFriendList(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	data, err := h.contactSvc.GetFriendList(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetNewFriendRequests 获取待处理好友申请
// GET /contact/getNewFriendRequests
func (h *ContactHandler) GetNewFriendRequests(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	data, err := h.contactSvc.GetNewFriendRequests(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ApplyFriend 发起好友申请
// POST /contact/applyFriend
func (h *ContactHandler) ApplyFriend(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.ApplyFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.contactSvc.ApplyFriend(userId, req); err != nil {
		HandleError(c, err)
		return
	}
	// 被申请人在线时实时提醒
	h.broker.PushToUser(req.TargetId, chat.EventFriendRequestReceived, respond.FriendRequestNotifyRespond{
		ApplicantId: userId,
		Message:     req.Message,
	})
	HandleSuccess(c, nil)
}

// PassFriendApply 通过好友申请
// POST /contact/passFriendApply
func (h *ContactHandler) PassFriendApply(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.HandleFriendApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.contactSvc.PassFriendApply(userId, req.ApplicantId); err != nil {
		HandleError(c, err)
		return
	}
	// 申请人在线时实时告知申请已通过
	h.broker.PushToUser(req.ApplicantId, chat.EventFriendRequestAccepted, respond.FriendRequestAcceptedRespond{
		FriendId: userId,
	})
	HandleSuccess(c, nil)
}

// RefuseFriendApply 拒绝好友申请
// POST /contact/refuseFriendApply
func (h *ContactHandler) RefuseFriendApply(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.HandleFriendApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.contactSvc.RefuseFriendApply(userId, req.ApplicantId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// BlackContact 拉黑好友
// POST /contact/blackContact
func (h *ContactHandler) BlackContact(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.BlackContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.contactSvc.BlackContact(userId, req.ContactId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteContact 删除好友
// POST /contact/deleteContact
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.DeleteContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.contactSvc.DeleteContact(userId, req.ContactId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
