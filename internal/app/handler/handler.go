package handler

import (
	"fmt"
	"net/http"

	"eventmarket-backend/internal/app/cache"
	"eventmarket-backend/internal/app/config"
	"eventmarket-backend/internal/app/dto"
	"eventmarket-backend/internal/app/redis"
	"eventmarket-backend/internal/app/repository"
	"eventmarket-backend/internal/app/role"
	"eventmarket-backend/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler содержит обработчики REST API каталога
type Handler struct {
	Repository  *repository.Repository
	Cache       *cache.Gateway
	RedisClient *redis.Client
	MinIOClient *storage.MinIOClient
	Config      *config.Config
}

func New(r *repository.Repository, gw *cache.Gateway, redisClient *redis.Client, minioClient *storage.MinIOClient, cfg *config.Config) *Handler {
	return &Handler{
		Repository:  r,
		Cache:       gw,
		RedisClient: redisClient,
		MinIOClient: minioClient,
		Config:      cfg,
	}
}

// errorResponse единый конверт ошибки; детали остаются в логах
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Success: false,
		Message: message,
	})
}

func (h *Handler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Success: true,
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// getUserFromContext возвращает пользователя, установленного middleware
func (h *Handler) getUserFromContext(c *gin.Context) (uint, role.Role, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, role.Buyer, fmt.Errorf("user not authenticated")
	}

	userRole, _ := c.Get("userRole")
	r, _ := userRole.(role.Role)

	id, ok := userID.(uint)
	if !ok {
		logrus.Errorf("getUserFromContext: invalid userID type: %T", userID)
		return 0, r, fmt.Errorf("invalid user ID")
	}

	return id, r, nil
}

// optionalUserFromContext то же для публичных маршрутов: nil если гость
func (h *Handler) optionalUserFromContext(c *gin.Context) (*uint, role.Role) {
	userID, exists := c.Get("userID")
	if !exists {
		return nil, role.Buyer
	}
	id, ok := userID.(uint)
	if !ok {
		return nil, role.Buyer
	}
	userRole, _ := c.Get("userRole")
	r, _ := userRole.(role.Role)
	return &id, r
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *Handler) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
}
