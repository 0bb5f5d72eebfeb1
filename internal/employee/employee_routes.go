package employee

import (
	"github.com/Corose/dashboard/internal/middleware"
	"github.com/Corose/dashboard/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
	rdb *redis.Client,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", rbac.RequireAccess(enforcer, "roster", "read"), handler.GetAll)
		employees.GET("/stats", rbac.RequireAccess(enforcer, "roster", "read"), handler.Stats)
		employees.GET("/:id", rbac.RequireAccess(enforcer, "roster", "read"), handler.GetByID)
		employees.POST("", rbac.RequireAccess(enforcer, "roster", "create"), handler.Create)
		employees.PUT("/:id", rbac.RequireAccess(enforcer, "roster", "update"), handler.Update)
		employees.DELETE("/:id", rbac.RequireAccess(enforcer, "roster", "delete"), handler.Delete)

		employees.GET("/export", rbac.RequireAccess(enforcer, "roster", "export"), handler.Export)
		employees.POST("/import",
			rbac.RequireAccess(enforcer, "roster", "import"),
			middleware.Idempotency(rdb),
			handler.Import,
		)
	}
}
