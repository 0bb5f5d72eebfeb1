package app

import (
	"database/sql"
	"os"

	"github.com/Corose/dashboard/internal/auth"
	"github.com/Corose/dashboard/internal/employee"
	"github.com/Corose/dashboard/internal/messaging/kafka"
	"github.com/Corose/dashboard/internal/middleware"
	"github.com/Corose/dashboard/internal/rbac"
	"github.com/Corose/dashboard/internal/vacation"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	router.Use(middleware.ContextLogger(zap.L()))

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	vacationRepo := vacation.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(authRepo)
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, outboxRepo, rdb)
	vacationService := vacation.NewServiceWithOutbox(db, vacationRepo, outboxRepo, vacation.Config{
		EditAdjustsBalance: os.Getenv("VACATION_EDIT_ADJUSTS_BALANCE") == "true",
	})

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandlerWithRedis(employeeService, rdb)
	vacationHandler := vacation.NewHandler(vacationService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, enforcer, rdb)
		vacation.RegisterRoutes(api, vacationHandler, enforcer)
	}

	return nil
}
