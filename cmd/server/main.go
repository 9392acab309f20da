package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/internal/cache"
	"storefront-service/internal/config"
	httpctl "storefront-service/internal/controllers/http"
	"storefront-service/internal/infra"
	"storefront-service/internal/infra/logging"
	mongoinfra "storefront-service/internal/infra/mongodb"
	mmysql "storefront-service/internal/infra/mysql"
	"storefront-service/internal/infra/rabbitmq"
	"storefront-service/internal/repository"
	"storefront-service/internal/repository/memory"
	mongorepo "storefront-service/internal/repository/mongodb"
	mysqlrepo "storefront-service/internal/repository/mysql"
	"storefront-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var (
		cartRepo  repository.CartRepository
		orderRepo repository.OrderRepository
		cleanup   []func()
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		cartRepo = memory.NewCartStore()
		orderRepo = memory.NewOrderStore()
		logger.Warn("using in-memory storage, data is lost on restart")
	default:
		mongoDB, err := mongoinfra.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			logger.Fatal("mongodb connect", zap.Error(err))
		}
		cleanup = append(cleanup, func() { _ = mongoDB.Client().Disconnect(context.Background()) })
		if err := mongorepo.CreateIndexes(ctx, mongoDB); err != nil {
			logger.Fatal("mongodb indexes", zap.Error(err))
		}
		cartRepo = mongorepo.NewCartRepository(mongoDB)
		logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDBName))

		db, err := mmysql.NewMySQL(cfg.MySQL)
		if err != nil {
			logger.Fatal("mysql connect", zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			cleanup = append(cleanup, func() { _ = sqlDB.Close() })
		}
		orderRepo = mysqlrepo.NewOrderRepository(db, logger)
		logger.Info("connected to MySQL", zap.String("host", cfg.MySQL.Host))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// the cart cache is optional; reads fall through to storage
		logger.Warn("redis ping failed", zap.Error(err))
	}

	productClient := infra.NewProductClient(cfg.ProductServiceURL, cfg.ProductTimeout)

	var publisher rabbitmq.PublisherInterface
	if cfg.RabbitMQURL == "" {
		publisher = rabbitmq.NewLogPublisher(logger)
	} else {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.OrderExchange, logger)
		if err != nil {
			logger.Fatal("rabbitmq publisher", zap.Error(err))
		}
		defer p.Close()
		publisher = p
	}

	carts := services.NewCartService(cartRepo, cache.NewRedisCache(redisClient, cfg.CartCacheTTL), productClient, logger)
	orders := services.NewOrderService(orderRepo, carts, productClient, publisher, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	httpctl.NewHandler(carts, orders, logger).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("storefront service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server run", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	orders.Wait()
	for _, fn := range cleanup {
		fn()
	}
	logger.Info("storefront service stopped")
}
