package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/table-reservation/config"
	"github.com/yeremiapane/table-reservation/metrics"
	"github.com/yeremiapane/table-reservation/queue"
	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/router"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

func main() {
	utils.InitLogger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Fatal("JWT_SECRET must be set")
	}
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)

	// Set gin mode
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	metrics.Register()

	// Slot lock: redis kalau tersedia (multi instance), selain itu in-process
	var locker services.SlotLocker = services.NewLocalSlotLocker()
	if client := config.NewRedisClient(cfg); client != nil {
		locker = services.NewRedisSlotLocker(client, 10*time.Second)
		utils.InfoLogger.Printf("Using redis slot lock at %s", cfg.RedisAddr)
	} else if cfg.RedisAddr != "" {
		utils.ErrorLogger.Printf("Redis at %s unreachable, falling back to local slot lock", cfg.RedisAddr)
	}

	policy, err := config.LoadDepositPolicy(cfg.DepositPolicyFile)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load deposit policy: %v", err)
	}

	gateway := services.NewDepositGateway(cfg.PaymentServerKey)
	if !gateway.Configured() {
		utils.InfoLogger.Println("Warning: PAYMENT_SERVER_KEY not set, deposit callbacks will be rejected")
	}

	deps := router.Deps{
		DB:       db,
		Config:   cfg,
		Hub:      realtime.NewHub(),
		Locker:   locker,
		Deposits: policy,
		Gateway:  gateway,
	}
	if cfg.RabbitMQURL != "" {
		deps.Publisher = queue.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		utils.InfoLogger.Printf("Publishing reservation events to queue %s", cfg.RabbitMQQueue)
	}

	r := router.SetupRouter(deps)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
