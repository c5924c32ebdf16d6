package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由（无需认证）
func (rt *Router) RegisterAuthRoutes(r *gin.Engine) {
	r.POST("/register", rt.handlers.Auth.Register)
	r.POST("/login", rt.handlers.Auth.Login)
	r.POST("/auth/refreshToken", rt.handlers.Auth.RefreshToken)
}
