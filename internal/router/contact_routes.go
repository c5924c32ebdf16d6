package router

import (
	"stranger_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterContactRoutes 注册好友相关路由（需要认证）
func (rt *Router) RegisterContactRoutes(r *gin.Engine) {
	contactGroup := r.Group("/contact")
	contactGroup.Use(middleware.JWTAuth())
	{
		contactGroup.GET("/getFriendList", rt.handlers.Contact.GetFriendList)
		contactGroup.GET("/getNewFriendRequests", rt.handlers.Contact.GetNewFriendRequests)
		contactGroup.POST("/applyFriend", rt.handlers.Contact.ApplyFriend)
		contactGroup.POST("/passFriendApply", rt.handlers.Contact.PassFriendApply)
		contactGroup.POST("/refuseFriendApply", rt.handlers.Contact.RefuseFriendApply)
		contactGroup.POST("/blackContact", rt.handlers.Contact.BlackContact)
		contactGroup.POST("/deleteContact", rt.handlers.Contact.DeleteContact)
	}
}
