package router

import (
	"stranger_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册私信相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(r *gin.Engine) {
	messageGroup := r.Group("/message")
	messageGroup.Use(middleware.JWTAuth())
	{
		messageGroup.POST("/sendMessage", rt.handlers.Message.SendMessage)
		messageGroup.GET("/getMessageList", rt.handlers.Message.GetMessageList)
		messageGroup.POST("/markAsRead", rt.handlers.Message.MarkAsRead)
	}
}
