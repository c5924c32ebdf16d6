// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"stranger_chat_server/internal/dao/mysql/repository"
	"stranger_chat_server/internal/service/contact"
	"stranger_chat_server/internal/service/message"
	"stranger_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	User    UserService    // 用户 Service
	Contact ContactService // 好友 Service
	Message MessageService // 私信 Service
}

// NewServices 创建并注入所有 Service 实例
// repos: Repository 层聚合实例
func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		User:    user.NewUserService(repos),
		Contact: contact.NewContactService(repos),
		Message: message.NewMessageService(repos),
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.User.Login() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository 初始化之后
func InitServices(repos *repository.Repositories) {
	Svc = NewServices(repos)
}
