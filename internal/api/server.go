package api

import (
	"context"
	"log"

	"eventmarket-backend/internal/app/cache"
	"eventmarket-backend/internal/app/config"
	"eventmarket-backend/internal/app/dsn"
	"eventmarket-backend/internal/app/handler"
	"eventmarket-backend/internal/app/middleware"
	"eventmarket-backend/internal/app/redis"
	"eventmarket-backend/internal/app/repository"
	"eventmarket-backend/internal/app/storage"
	"eventmarket-backend/internal/pkg"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// StartServer собирает все зависимости и запускает HTTP-сервер
func StartServer() {
	log.Println("Starting server")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("ошибка загрузки конфигурации: %v", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		logrus.Fatalf("ошибка инициализации репозитория: %v", err)
	}

	// Redis не обязателен для работы: без него каталог ходит напрямую в БД,
	// а logout перестаёт блокировать токены
	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logrus.Warnf("Redis недоступен, кеширование отключено: %v", err)
		redisClient = nil
	}

	var minioClient *storage.MinIOClient
	if cfg.Minio.Endpoint != "" {
		minioClient, err = storage.NewMinIOClient(
			cfg.Minio.Endpoint,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.Bucket,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logrus.Warnf("MinIO недоступен, загрузка изображений отключена: %v", err)
			minioClient = nil
		}
	}

	cacheGateway := cache.New(redisClient)
	h := handler.New(repo, cacheGateway, redisClient, minioClient, cfg)
	authMiddleware := middleware.NewAuthMiddleware(redisClient, cfg)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	h.RegisterAPIRoutes(r, authMiddleware)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	app := pkg.NewApp(cfg, r, h, authMiddleware)
	app.RunApp()

	log.Println("Server down")
}
