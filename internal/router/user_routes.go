package router

import (
	"stranger_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(r *gin.Engine) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.JWTAuth())
	{
		userGroup.GET("/me", rt.handlers.User.GetMyInfo)
		userGroup.GET("/getUserInfo", rt.handlers.User.GetUserInfo)
		userGroup.POST("/updateUserInfo", rt.handlers.User.UpdateUserInfo)
	}
}
