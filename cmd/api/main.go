package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Ramez-krichen/office-supplies-management-sub002/api/swagger" // swagger docs
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/database"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/event"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/handler"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/middleware"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/service"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/websocket"
)

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// @title           Office Supplies Management API
// @version         1.0
// @description     Procurement and inventory API: supply requests with approval workflow, purchase orders, stock tracking, dashboards and audit trail.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found, using environment")
	}

	db, err := database.Connect(database.Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envOr("DB_PORT", "5432"),
		User:     envOr("DB_USER", "postgres"),
		Password: envOr("DB_PASSWORD", "postgres"),
		DBName:   envOr("DB_NAME", "supplies"),
		SSLMode:  envOr("DB_SSLMODE", "disable"),
	})
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("connected to postgres")

	// WebSocket hub for live notification pushes
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	itemRepo := repository.NewItemRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	orderRepo := repository.NewPurchaseOrderRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Post-commit side effect emitter (audit + notifications + ws push)
	emitter := event.NewEmitter(auditRepo, notificationRepo, wsHub, logger)

	// Services
	userService := service.NewUserService(userRepo, emitter)
	requestService := service.NewRequestService(requestRepo, approvalRepo, userRepo, txManager, emitter)
	orderService := service.NewPurchaseOrderService(orderRepo, itemRepo, supplierRepo, txManager, emitter)
	itemService := service.NewItemService(itemRepo, txManager, emitter)
	supplierService := service.NewSupplierService(supplierRepo, emitter)
	departmentService := service.NewDepartmentService(departmentRepo, userRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	auditService := service.NewAuditService(auditRepo)
	dashboardService := service.NewDashboardService(dashboardRepo)
	reportService := service.NewReportService(requestRepo, orderRepo)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	requestHandler := handler.NewRequestHandler(requestService)
	orderHandler := handler.NewPurchaseOrderHandler(orderService)
	itemHandler := handler.NewItemHandler(itemService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	auditHandler := handler.NewAuditHandler(auditService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, reportService)

	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Auth routes at the root, everything else under /api
	userHandler.RegisterRoutes(router.Group(""))

	api := router.Group("/api")
	userHandler.RegisterAdminRoutes(api)
	requestHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	itemHandler.RegisterRoutes(api)
	supplierHandler.RegisterRoutes(api)
	departmentHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)
	dashboardHandler.RegisterRoutes(api)

	port := envOr("PORT", "8080")
	logger.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
