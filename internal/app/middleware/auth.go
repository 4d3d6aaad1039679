package middleware

import (
	"eventmarket-backend/internal/app/config"
	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/redis"
	"eventmarket-backend/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

type AuthMiddleware struct {
	RedisClient *redis.Client
	Config      *config.Config
}

func NewAuthMiddleware(redisClient *redis.Client, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		RedisClient: redisClient,
		Config:      cfg,
	}
}

// WithAuthCheck middleware для проверки авторизации с ролями
func (am *AuthMiddleware) WithAuthCheck(assignedRoles ...role.Role) gin.HandlerFunc {
	return gin.HandlerFunc(func(gCtx *gin.Context) {
		claims, ok := am.extractClaims(gCtx)
		if !ok {
			gCtx.AbortWithStatus(401) // Unauthorized
			return
		}

		// Проверяем роли пользователя
		if len(assignedRoles) > 0 && !am.hasRequiredRole(claims.Role, assignedRoles) {
			gCtx.AbortWithStatus(403) // Forbidden
			return
		}

		gCtx.Set("userID", claims.UserID)
		gCtx.Set("userRole", claims.Role)

		gCtx.Next()
	})
}

// WithOptionalAuth заполняет контекст, если токен есть и валиден,
// но никогда не прерывает запрос. Нужен публичным чтениям каталога,
// где авторизованный пользователь получает is_favorited и учёт просмотров.
func (am *AuthMiddleware) WithOptionalAuth() gin.HandlerFunc {
	return gin.HandlerFunc(func(gCtx *gin.Context) {
		if claims, ok := am.extractClaims(gCtx); ok {
			gCtx.Set("userID", claims.UserID)
			gCtx.Set("userRole", claims.Role)
		}
		gCtx.Next()
	})
}

// extractClaims достаёт и проверяет JWT из заголовка Authorization
func (am *AuthMiddleware) extractClaims(gCtx *gin.Context) (*ds.JWTClaims, bool) {
	jwtStr := gCtx.GetHeader("Authorization")
	if jwtStr == "" {
		return nil, false
	}

	// Убираем префикс "Bearer " если он есть
	if len(jwtStr) > 7 && jwtStr[:7] == "Bearer " {
		jwtStr = jwtStr[7:]
	}

	// Проверяем токен в blacklist Redis
	err := am.RedisClient.CheckJWTInBlacklist(gCtx.Request.Context(), jwtStr)
	if err == nil {
		// Токен в blacklist
		return nil, false
	}

	token, err := am.parseJWTToken(jwtStr)
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*ds.JWTClaims)
	if !ok || !token.Valid {
		return nil, false
	}

	return claims, true
}

// parseJWTToken парсит и валидирует JWT токен
func (am *AuthMiddleware) parseJWTToken(tokenString string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(tokenString, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(am.Config.JWT.Token), nil
	})
}

// hasRequiredRole проверяет, есть ли у пользователя необходимая роль
func (am *AuthMiddleware) hasRequiredRole(userRole role.Role, requiredRoles []role.Role) bool {
	for _, requiredRole := range requiredRoles {
		if userRole == requiredRole {
			return true
		}
	}
	return false
}
