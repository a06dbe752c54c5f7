package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"github.com/denly1/motoshop/internal/audit"
	auditDelivery "github.com/denly1/motoshop/internal/audit/delivery/http"
	auditdomain "github.com/denly1/motoshop/internal/audit/domain"
	auditrepo "github.com/denly1/motoshop/internal/audit/repository"
	"github.com/denly1/motoshop/internal/category"
	categorydomain "github.com/denly1/motoshop/internal/category/domain"
	"github.com/denly1/motoshop/internal/inventory"
	invdomain "github.com/denly1/motoshop/internal/inventory/domain"
	"github.com/denly1/motoshop/internal/order"
	orderdomain "github.com/denly1/motoshop/internal/order/domain"
	ordercommand "github.com/denly1/motoshop/internal/order/usecase/command"
	"github.com/denly1/motoshop/internal/product"
	productdomain "github.com/denly1/motoshop/internal/product/domain"
	"github.com/denly1/motoshop/internal/server/middleware"
	"github.com/denly1/motoshop/internal/user"
	userdomain "github.com/denly1/motoshop/internal/user/domain"
	"github.com/denly1/motoshop/kafka"
	"github.com/denly1/motoshop/pkg/database"
	"github.com/denly1/motoshop/pkg/logger"
	"github.com/denly1/motoshop/pkg/tracing"
)

func main() {
	// Initialize logger
	serviceName := getEnv("OTEL_SERVICE_NAME", "motoshop")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Msg("Starting motoshop server")

	// Initialize tracing
	_, shutdownTracer, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Tracing disabled, failed to initialize tracer")
	} else {
		defer shutdownTracer(context.Background())
	}

	// Load database configuration
	dbConfig := database.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "motoshop"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Connect to database
	db, err := database.NewGormConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Dedicated connection for liveness probes, kept off the gorm pool
	healthDB, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to open health check connection")
	}
	defer healthDB.Close()

	// Run migrations
	err = db.AutoMigrate(
		&userdomain.User{},
		&categorydomain.Category{},
		&productdomain.Product{},
		&invdomain.InventoryRecord{},
		&invdomain.StockReservation{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&auditdomain.Record{},
	)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Logger.Info().Msg("Database initialized successfully")

	// Audit recorder shared by every domain
	auditRepo := auditrepo.NewGormAuditRepository(db)
	recorder := audit.NewRecorder(auditRepo)

	// Optional Kafka event stream
	var publisher ordercommand.StatusPublisher
	var kafkaPublisher *kafka.Publisher
	brokers := getEnv("KAFKA_BROKERS", "")
	if brokers != "" {
		kafkaPublisher, err = kafka.NewPublisher(strings.Split(brokers, ","))
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka publisher disabled")
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
			logger.Logger.Info().Str("brokers", brokers).Msg("Kafka publisher connected")
		}
	}

	// Initialize handlers with Wire DI
	ledger := inventory.ProvideStockLedger(db)
	products := product.ProvideProductRepository(db)

	inventoryHandler, err := inventory.InitializeHTTPHandler(db, recorder)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize inventory handler")
	}
	productHandler, err := product.InitializeHTTPHandler(db, ledger, recorder)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize product handler")
	}
	categoryHandler, err := category.InitializeHTTPHandler(db, recorder)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize category handler")
	}
	userHandler, err := user.InitializeHTTPHandler(db, recorder)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize user handler")
	}
	orderHandler, err := order.InitializeHTTPHandler(db, products, ledger, recorder, publisher)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize order handler")
	}
	auditHandler := auditDelivery.NewAuditHandler(auditRepo)

	// Optional payment confirmation consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if brokers != "" {
		markPaid, err := order.InitializeMarkPaidHandler(db, ledger, recorder, publisher)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize payment handler")
		}
		consumer, err := kafka.NewConsumer(
			strings.Split(brokers, ","),
			getEnv("KAFKA_GROUP_ID", "motoshop-server"),
			func(ctx context.Context, event kafka.OrderPaidEvent) error {
				return markPaid.Handle(ctx, ordercommand.MarkOrderPaidCommand{OrderID: event.OrderID})
			},
		)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Kafka consumer disabled")
		} else {
			go consumer.Start(ctx)
			defer consumer.Close()
			logger.Logger.Info().Msg("Order-paid consumer started")
		}
	}

	// Optional Redis-backed checkout idempotency
	var redisClient *redis.Client
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Redis unreachable, checkout idempotency degraded")
		}
	}

	// Setup router
	router := mux.NewRouter()

	authed := middleware.AuthMiddleware
	admin := middleware.AdminMiddleware
	idempotent := middleware.IdempotencyMiddleware(redisClient)

	userHandler.RegisterRoutes(router, authed, admin)
	categoryHandler.RegisterRoutes(router, admin)
	productHandler.RegisterRoutes(router, admin)
	inventoryHandler.RegisterRoutes(router, authed, admin)
	orderHandler.RegisterRoutes(router, authed, admin, idempotent)
	auditHandler.RegisterRoutes(router, admin)

	router.HandleFunc("/health", healthCheck(healthDB)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	httpPort := getEnv("HTTP_PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + httpPort,
		Handler: c.Handler(middleware.TracingMiddleware("motoshop-http", middleware.LoggingMiddleware(router))),
	}

	go func() {
		logger.Logger.Info().
			Str("port", httpPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server shutdown failed")
	}
}

func healthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
