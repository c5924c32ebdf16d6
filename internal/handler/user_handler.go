// Package handler 提供 HTTP 请求处理器
// 本文件处理用户资料相关的 API 请求
package handler

import (
	"strconv"

	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/service"
	"stranger_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetMyInfo 获取当前用户信息
// GET /user/me
func (h *UserHandler) GetMyInfo(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	data, err := h.userSvc.GetUserInfo(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetUserInfo 获取指定用户信息
// GET /user/getUserInfo?user_id=123
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	targetId, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || targetId == 0 {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.userSvc.GetUserInfo(targetId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateUserInfo 更新当前用户资料与匹配偏好
// POST /user/updateUserInfo
// 请求体: request.UpdateUserInfoRequest
func (h *UserHandler) UpdateUserInfo(c *gin.Context) {
	userId, ok := currentUserId(c)
	if !ok {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "未登录"))
		return
	}
	var req request.UpdateUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.userSvc.UpdateUserInfo(userId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
