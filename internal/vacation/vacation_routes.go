package vacation

import (
	"github.com/Corose/dashboard/internal/middleware"
	"github.com/Corose/dashboard/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, enforcer *casbin.Enforcer) {
	vacations := r.Group("/vacations")
	vacations.Use(middleware.AuthMiddleware())
	{
		vacations.GET("", rbac.RequireAccess(enforcer, "vacation", "read"), handler.GetAll)
		vacations.GET("/overview", rbac.RequireAccess(enforcer, "vacation", "read"), handler.Overview)
		vacations.GET("/:id", rbac.RequireAccess(enforcer, "vacation", "read"), handler.GetByID)
		vacations.POST("", rbac.RequireAccess(enforcer, "vacation", "create"), handler.Register)
		vacations.PUT("/:id", rbac.RequireAccess(enforcer, "vacation", "update"), handler.Update)
		vacations.DELETE("/:id", rbac.RequireAccess(enforcer, "vacation", "delete"), handler.Delete)
	}
}
