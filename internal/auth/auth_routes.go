package auth

import (
	"github.com/Corose/dashboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	group := r.Group("/auth")
	{
		group.POST("/login", middleware.RateLimitByIP(rate.Limit(1), 5), handler.Login)
		group.POST("/refresh", handler.Refresh)
		group.GET("/me", middleware.AuthMiddleware(), handler.Me)
		group.POST("/register", middleware.AuthMiddleware(), middleware.RoleMiddleware("admin"), handler.Register)
	}
}
