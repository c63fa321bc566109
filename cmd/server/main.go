package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/ridloal/pc-store-commerce/internal/auth"
	cartAPI "github.com/ridloal/pc-store-commerce/internal/cart/api"
	cartRepo "github.com/ridloal/pc-store-commerce/internal/cart/repository"
	compatAPI "github.com/ridloal/pc-store-commerce/internal/compat/api"
	compatRepo "github.com/ridloal/pc-store-commerce/internal/compat/repository"
	compatSvc "github.com/ridloal/pc-store-commerce/internal/compat/service"
	inventoryAPI "github.com/ridloal/pc-store-commerce/internal/inventory/api"
	inventoryRepo "github.com/ridloal/pc-store-commerce/internal/inventory/repository"
	inventorySvc "github.com/ridloal/pc-store-commerce/internal/inventory/service"
	notifAPI "github.com/ridloal/pc-store-commerce/internal/notification/api"
	notifRepo "github.com/ridloal/pc-store-commerce/internal/notification/repository"
	notifSvc "github.com/ridloal/pc-store-commerce/internal/notification/service"
	orderAPI "github.com/ridloal/pc-store-commerce/internal/order/api"
	orderRepo "github.com/ridloal/pc-store-commerce/internal/order/repository"
	orderSvc "github.com/ridloal/pc-store-commerce/internal/order/service"
	"github.com/ridloal/pc-store-commerce/internal/platform/config"
	"github.com/ridloal/pc-store-commerce/internal/platform/database"
	"github.com/ridloal/pc-store-commerce/internal/platform/httpx"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	productRepo "github.com/ridloal/pc-store-commerce/internal/product/repository"
)

func main() {
	config.Load()
	dbCfg := config.LoadDBConfig()
	serverCfg := config.LoadServerConfig("8080")
	authCfg := config.LoadAuthConfig()

	logger.Info("Starting PC Store Commerce...")

	db, err := database.Connect(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to connect to database", err, nil)
		return
	}
	defer db.Close()

	buildFee := decimal.NewFromInt(int64(config.GetEnvAsInt("CUSTOM_PC_BUILD_FEE", 150000)))
	reminderHours := config.GetEnvAsInt("PAYMENT_REMINDER_HOURS", 24)

	// Repositories
	products := productRepo.NewPostgresProductRepository(db)
	stock := inventoryRepo.NewPostgresStockRepository(db)
	compat := compatRepo.NewPostgresCompatRepository(db)
	carts := cartRepo.NewPostgresCartRepository(db)
	orders := orderRepo.NewPostgresOrderRepository(db)
	notifications := notifRepo.NewPostgresNotificationRepository(db)

	// Services
	notificationService := notifSvc.NewNotificationService(notifications)
	inventoryService := inventorySvc.NewInventoryService(stock, products)
	compatService := compatSvc.NewCompatService(compat, products)
	checkoutService := orderSvc.NewCheckoutService(orders, carts, products, inventoryService, compatService, notificationService, buildFee)
	statusService := orderSvc.NewOrderStatusService(orders, inventoryService, notificationService)
	paymentService := orderSvc.NewPaymentService(orders, notificationService)

	// Handlers
	stockHandler := inventoryAPI.NewStockHandler(inventoryService)
	compatHandler := compatAPI.NewCompatHandler(compatService)
	cartHandler := cartAPI.NewCartHandler(carts)
	orderHandler := orderAPI.NewOrderHandler(checkoutService, statusService, paymentService)
	notificationHandler := notifAPI.NewNotificationHandler(notificationService)

	router := gin.New()
	router.Use(gin.Recovery(), httpx.RequestID(), httpx.RequestLogger())

	apiV1 := router.Group("/api/v1", auth.Authenticate(authCfg.JWTSecret))
	stockHandler.RegisterRoutes(apiV1)
	compatHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	notificationHandler.RegisterRoutes(apiV1)

	// Scheduler: pengingat pembayaran untuk order yang menggantung.
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := statusService.ProcessPaymentReminders(ctx, time.Duration(reminderHours)*time.Hour); err != nil {
			logger.Error("Payment reminder job failed", err, nil)
		}
	})
	if err != nil {
		logger.Error("Failed to register payment reminder job", err, nil)
		return
	}
	scheduler.Start()
	defer scheduler.Stop()

	logger.Info("PC Store Commerce running on port " + serverCfg.Port)
	if errSrv := router.Run(serverCfg.Port); errSrv != nil {
		logger.Error("Failed to run server", errSrv, nil)
	}
}
