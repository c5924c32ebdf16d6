// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"stranger_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由（需要认证）
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	// WebSocket 连接入口
	// 请求示例: ws://host:port/wss （Authorization: Bearer <token>）
	wsGroup := r.Group("/wss")
	wsGroup.Use(middleware.JWTAuth())
	{
		wsGroup.GET("", rt.handlers.Ws.Connect)
	}
}
