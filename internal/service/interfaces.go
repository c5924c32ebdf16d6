// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"stranger_chat_server/internal/dto/request"
	"stranger_chat_server/internal/dto/respond"
)

// UserService 用户业务接口
// 处理用户注册、登录、信息管理等功能
type UserService interface {
	// Register 用户注册
	Register(req request.RegisterRequest) (*respond.RegisterRespond, error)
	// Login 密码登录
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 刷新访问令牌
	RefreshToken(refreshToken string) (*respond.LoginRespond, error)
	// GetUserInfo 获取单个用户信息
	GetUserInfo(userId uint64) (*respond.GetUserInfoRespond, error)
	// UpdateUserInfo 更新用户资料与匹配偏好
	UpdateUserInfo(userId uint64, req request.UpdateUserInfoRequest) error
}

// ContactService 好友业务接口
// 处理好友申请、好友列表、拉黑等功能
type ContactService interface {
	// GetFriendList 获取好友列表
	GetFriendList(userId uint64) ([]respond.MyFriendListRespond, error)
	// GetNewFriendRequests 获取待处理好友申请
	GetNewFriendRequests(userId uint64) ([]respond.NewFriendRequestRespond, error)
	// ApplyFriend 发起好友申请
	ApplyFriend(userId uint64, req request.ApplyFriendRequest) error
	// PassFriendApply 通过好友申请
	PassFriendApply(userId, applicantId uint64) error
	// RefuseFriendApply 拒绝好友申请
	RefuseFriendApply(userId, applicantId uint64) error
	// BlackContact 拉黑好友
	BlackContact(userId, contactId uint64) error
	// DeleteContact 删除好友
	DeleteContact(userId, contactId uint64) error
	// AddFriendDuringMatch 匹配中直接建立双向好友关系
	AddFriendDuringMatch(userId, peerId uint64) error
}

// MessageService 私信业务接口
type MessageService interface {
	// SendDirectMessage 发送好友私信
	SendDirectMessage(sendId uint64, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// GetMessageList 获取与好友的历史消息
	GetMessageList(userId, peerId uint64) ([]respond.MessageRespond, error)
	// MarkAsRead 将 peer 发来的未读消息置为已读
	MarkAsRead(userId, peerId uint64) error
}
