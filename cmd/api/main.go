package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-packet-inventory/internal/config"
	"go-packet-inventory/internal/events"
	"go-packet-inventory/internal/handler"
	"go-packet-inventory/internal/idempotency"
	"go-packet-inventory/internal/middleware"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/internal/service"
	"go-packet-inventory/internal/ws"
	"go-packet-inventory/pkg/database"
	applog "go-packet-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()
	cfg := config.Load()

	log := applog.New(cfg.AppEnv)
	defer log.Sync()
	if envErr != nil {
		log.Info(".env file not found, relying on process environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}

	// 3. Event stream: websocket hub always, kafka when brokers are configured
	wsHub := ws.NewHub(log.Named("ws"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	go wsHub.Run(hubCtx)

	publishers := events.Multi{wsHub}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, 1024, log.Named("kafka"))
		kafkaPub.Start(context.Background())
		publishers = append(publishers, kafkaPub)
		log.Info("kafka event stream enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	// 4. Idempotency keys when redis is configured
	var idem handler.IdempotencyStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, idempotency keys disabled", zap.Error(err))
		} else {
			idem = idempotency.NewStore(rdb, idempotency.DefaultTTL)
		}
	}

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)
	userRepo := repository.NewUserRepo(db)
	store := repository.NewInventoryStore(db, productRepo, txRepo)

	invService := service.NewInventoryService(productRepo, txRepo, store, publishers, log.Named("inventory"))
	expService := service.NewExpenseService(expenseRepo, publishers, log.Named("expense"))
	finService := service.NewFinancialService(productRepo, txRepo, expenseRepo, cfg.LowStockPackets)
	authService := service.NewAuthService(userRepo, log.Named("auth"))
	profileService := service.NewProfileService(userRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Packet Inventory v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// 7. Routes
	routes := &handler.Routes{
		Auth:          handler.NewAuthHandler(authService),
		Inventory:     handler.NewInventoryHandler(invService, idem, log.Named("http")),
		Expense:       handler.NewExpenseHandler(expService),
		Financial:     handler.NewFinancialHandler(finService),
		Report:        handler.NewReportHandler(invService, expService),
		Profile:       handler.NewProfileHandler(profileService),
		RequireAuth:   middleware.RequireAuth(userRepo),
		RequireWSAuth: middleware.RequireWSAuth(userRepo),
		WS:            handler.ServeWS(wsHub),
	}
	routes.Mount(app)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	stopHub()
	if kafkaPub != nil {
		kafkaPub.Close()
		kafkaPub.WaitClosed()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server exited")
}
