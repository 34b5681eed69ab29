package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robfig/cron/v3"

	"ecomcatalog/internal/app/catalog/config"
	"ecomcatalog/internal/app/catalog/handler"
	"ecomcatalog/internal/app/catalog/repository"
	"ecomcatalog/internal/app/catalog/service"
	"ecomcatalog/internal/app/catalog/util"
	"ecomcatalog/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("catalog-service", "info")
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init("catalog-service", cfg.Log.Level)

	// === ПОДКЛЮЧЕНИЕ К MONGODB ===
	mongoClient, err := connectMongo(context.Background(), cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()
	logger.Info().Msg("Successfully connected to MongoDB")

	db := mongoClient.Database(cfg.Mongo.Database)

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis кеширует список категорий для листинга
	redisClient, err := util.NewRedisClient(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("Successfully connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	// События о товарах уходят в топик product.events
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")

	// === СЛОЙ РЕПОЗИТОРИЕВ И БИЗНЕС-ЛОГИКА ===
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	catalogService := service.NewCatalogService(
		categoryRepo,
		productRepo,
		redisClient,
		kafkaProducer,
	)

	// === ПРОГРЕВ КЕША КАТЕГОРИЙ ПО РАСПИСАНИЮ ===
	cronScheduler := cron.New()
	if _, err := cronScheduler.AddFunc(cfg.Cron.CategoriesRefresh, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := catalogService.RefreshCategoriesCache(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to refresh categories cache")
		}
	}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to schedule categories cache refresh")
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// === HTTP HANDLERS И МАРШРУТЫ ===
	catalogHandler := handler.NewCatalogHandler(catalogService)
	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	router := handler.SetupRoutes(catalogHandler, authMiddleware, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине для graceful shutdown
	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

// connectMongo устанавливает соединение с MongoDB с повторными попытками
// При запуске в Docker база может быть еще не готова
func connectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(25).
		SetMinPoolSize(5).
		SetConnectTimeout(10 * time.Second)

	var client *mongo.Client
	var err error
	for i := 0; i < 10; i++ {
		client, err = mongo.Connect(ctx, opts)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to MongoDB, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
