package handler

import (
	"eventmarket-backend/internal/app/middleware"
	"eventmarket-backend/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *Handler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api")

	// ============ Каталог поставщиков (Vendors) ============
	vendors := api.Group("/vendors")
	{
		// Публичные чтения; необязательная авторизация даёт is_favorited
		// в карточке и привязывает просмотр к пользователю
		vendors.GET("", h.GetVendors)                                         // GET каталог с фильтрацией
		vendors.GET("/:lookup", authMiddleware.WithOptionalAuth(), h.GetVendor) // GET карточка по id или slug

		// Для авторизованных пользователей. Мутации принимают только
		// числовой id; деревья маршрутов gin раздельны по HTTP-методам,
		// поэтому разные имена параметров в GET и PUT/DELETE допустимы
		vendors.POST("", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.CreateVendor)
		vendors.PUT("/:id", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.UpdateVendor)
		vendors.DELETE("/:id", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.DeleteVendor)
		vendors.POST("/:id/images", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.UploadVendorImage)
		vendors.POST("/:id/reviews", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.CreateReview)
		vendors.POST("/:id/favorite", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.ToggleFavorite)
	}

	// ============ Аутентификация ============
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser) // POST регистрация
		auth.POST("/login", h.LoginUser)       // POST аутентификация JWT

		auth.GET("/profile", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.GetUserProfile)
		auth.PUT("/profile", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.UpdateUserProfile)
		auth.POST("/logout", authMiddleware.WithAuthCheck(role.Buyer, role.Manager, role.Admin), h.LogoutUser)
	}

	// Ping эндпоинт для проверки
	router.GET("/ping", h.Ping)
}
