// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"stranger_chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用，按模块分别注册各个路由组
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r)      // 认证路由（注册/登录/刷新令牌）
	rt.RegisterUserRoutes(r)      // 用户路由
	rt.RegisterContactRoutes(r)   // 好友路由
	rt.RegisterMessageRoutes(r)   // 私信路由
	rt.RegisterWebSocketRoutes(r) // WebSocket 路由
}
