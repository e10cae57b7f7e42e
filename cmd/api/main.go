package main

import (
	"os"

	_ "stickerops/api/swagger" // swagger docs
	"stickerops/internal/database"
	"stickerops/internal/handler"
	"stickerops/internal/middleware"
	"stickerops/internal/repository"
	"stickerops/internal/service"
	"stickerops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           StickerOps Job Costing API
// @version         1.0
// @description     Financial tracking, cost estimation and weekly profit distribution for a stickers manufacturing shop.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Info("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	statusRepo := repository.NewFinancialStatusRepository(db)
	weekRepo := repository.NewFinancialWeekRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	distRepo := repository.NewDistributionRepository(db)
	costingRepo := repository.NewCostingRepository(db)
	configRepo := repository.NewConfigRepository(db)

	userService := service.NewUserService(userRepo)
	ledgerService := service.NewLedgerService(ledgerRepo, accountRepo, txManager)
	stateService := service.NewFinancialStateService(statusRepo, orderRepo, txManager, wsHub)
	profitService := service.NewProfitService(costingRepo, orderRepo)
	overheadService := service.NewOverheadService(weekRepo, statusRepo, ledgerRepo, snapshotRepo, profitService)
	closingService := service.NewClosingService(
		weekRepo, statusRepo, snapshotRepo, partnerRepo, distRepo, configRepo, ledgerRepo,
		overheadService, profitService, ledgerService, txManager, wsHub, log,
	)
	costingService := service.NewCostingService(costingRepo, orderRepo, configRepo, ledgerRepo, ledgerService, txManager, wsHub, log)
	orderService := service.NewOrderService(orderRepo, statusRepo, stateService, txManager)
	partnerService := service.NewPartnerService(partnerRepo, log)
	configService := service.NewConfigService(configRepo, accountRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	orderHandler := handler.NewOrderHandler(orderService)
	financialHandler := handler.NewFinancialHandler(stateService)
	weekHandler := handler.NewWeekHandler(overheadService, closingService)
	costingHandler := handler.NewCostingHandler(costingService)
	partnerHandler := handler.NewPartnerHandler(partnerService)
	configHandler := handler.NewConfigHandler(configService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
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

	// Register API Routes
	api := router.Group("")
	authHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	financialHandler.RegisterRoutes(api)
	weekHandler.RegisterRoutes(api)
	costingHandler.RegisterRoutes(api)
	partnerHandler.RegisterRoutes(api)
	configHandler.RegisterRoutes(api)
	ledgerHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Infof("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
