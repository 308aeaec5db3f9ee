package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/fekuna/omnipos-replenishment-service/config"
	"github.com/fekuna/omnipos-replenishment-service/internal/auth"
	"github.com/fekuna/omnipos-replenishment-service/internal/clock"
	"github.com/fekuna/omnipos-replenishment-service/internal/health"
	"github.com/fekuna/omnipos-replenishment-service/internal/order"
	"github.com/fekuna/omnipos-replenishment-service/internal/product"
	"github.com/fekuna/omnipos-replenishment-service/internal/replenishment"
	"github.com/fekuna/omnipos-replenishment-service/internal/response"
	"github.com/fekuna/omnipos-replenishment-service/migrations"
	"github.com/fekuna/omnipos-replenishment-service/pkg/broker"
	"github.com/fekuna/omnipos-replenishment-service/pkg/cache"
	"github.com/fekuna/omnipos-replenishment-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-replenishment-service/pkg/i18n"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
	"github.com/fekuna/omnipos-replenishment-service/pkg/search"

	invH "github.com/fekuna/omnipos-replenishment-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-replenishment-service/internal/inventory/listener"
	invUCPkg "github.com/fekuna/omnipos-replenishment-service/internal/inventory/usecase"

	orderRepoPkg "github.com/fekuna/omnipos-replenishment-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-replenishment-service/internal/order/usecase"

	prodIndexerPkg "github.com/fekuna/omnipos-replenishment-service/internal/product/indexer"
	prodRepoPkg "github.com/fekuna/omnipos-replenishment-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-replenishment-service/internal/product/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	i18n.Init()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		appLogger.Warn("Unknown timezone, using UTC", zap.String("timezone", cfg.Server.Timezone), zap.Error(err))
		loc = time.UTC
	}
	clk := clock.NewSystem(loc)

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.AutoMigrate {
		migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
		if err := migrations.Apply(migrateCtx, db); err != nil {
			cancelMigrate()
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
		cancelMigrate()
	}

	// 4. Initialize Repositories
	prodRepo := prodRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	var (
		locker     order.Locker
		tokenCache auth.TokenCache
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, draft locks and token cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			locker = redisClient
			tokenCache = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 6. Initialize Kafka
	var (
		publisher     order.EventPublisher
		kafkaConsumer *broker.KafkaConsumer
	)
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderTopic,
		})
		defer producer.Close()
		publisher = producer

		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.DeliveryTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Kafka enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("order_topic", cfg.Kafka.OrderTopic),
			zap.String("delivery_topic", cfg.Kafka.DeliveryTopic),
		)
	}

	// 7. Initialize Elasticsearch
	var indexer product.Indexer
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, search falls back to the database", zap.Error(err))
		} else {
			indexer = prodIndexerPkg.NewElasticIndexer(esClient, appLogger)
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize UseCases
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, indexer, clk, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, prodRepo, locker, publisher, clk, appLogger)
	trigger := replenishment.NewTrigger(prodRepo, orderUC, replenishment.Policy{
		Threshold:   cfg.Replenishment.LowStockThreshold,
		TargetLevel: cfg.Replenishment.TargetLevel,
	}, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(prodUC, orderUC, trigger, clk, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if kafkaConsumer != nil {
		go invListenerPkg.NewDeliveryListener(kafkaConsumer, invUC, appLogger).Start(ctx)
	}

	// 9. Initialize Handlers
	idp := auth.NewClient(&auth.Config{
		URL:     cfg.Auth.URL,
		AnonKey: cfg.Auth.AnonKey,
		Timeout: cfg.Auth.Timeout,
	})
	var verifier auth.TokenVerifier = idp
	if tokenCache != nil {
		verifier = auth.NewCachingVerifier(idp, tokenCache, cfg.Auth.TokenCacheTTL, appLogger)
	}
	protect := func(next http.Handler) http.Handler {
		return auth.Middleware(verifier, next)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /health", health.Handler(db))
	auth.NewHandler(idp, appLogger).RegisterRoutes(mux)
	invH.NewInventoryHandler(invUC, appLogger).RegisterRoutes(mux, protect)
	mux.Handle("/", response.NotFoundHandler())

	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           response.CORS(cfg.Server.AllowedOrigins, response.RequestLogger(mux, appLogger)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// 10. Start gRPC health server
	lis, err := net.Listen("tcp", normalizePort(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	healthServer := grpchealth.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	go health.NewChecker(db, healthServer, 10*time.Second, appLogger).Run(ctx)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
