package handler

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"time"

	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/dto"
	"eventmarket-backend/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
)

// generateHashString генерирует SHA-1 хеш из строки
func generateHashString(s string) string {
	h := sha1.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// issueToken подписывает JWT для пользователя
func (h *Handler) issueToken(userID uint, userRole role.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(h.Config.JWT.ExpiresIn).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    "eventmarket",
		},
		UserID: userID,
		Role:   userRole,
	})
	return token.SignedString([]byte(h.Config.JWT.Token))
}

// RegisterUser регистрация нового пользователя
// @Summary Регистрация пользователя
// @Description Создание нового пользователя; роль всегда покупатель
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Данные для регистрации"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *Handler) RegisterUser(c *gin.Context) {
	var request dto.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	exists, _ := h.Repository.UserExistsByLogin(request.Login)
	if exists {
		h.errorResponse(c, http.StatusBadRequest, "Пользователь с таким логином уже существует")
		return
	}

	hashedPassword := generateHashString(request.Password)

	user, err := h.Repository.CreateUser(request.Login, hashedPassword, request.FullName, request.Email, int(role.Buyer))
	if err != nil {
		logrus.Error("Error creating user: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка регистрации пользователя")
		return
	}

	accessToken, err := h.issueToken(user.ID, role.Role(user.Role))
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания токена")
		return
	}

	h.successResponse(c, http.StatusCreated, "Пользователь успешно зарегистрирован", gin.H{
		"user": dto.UserResponse{
			ID:       user.ID,
			Login:    user.Login,
			FullName: user.FullName,
			Role:     user.Role,
		},
		"token": accessToken,
	})
}

// LoginUser аутентификация пользователя
// @Summary Вход в систему
// @Description Аутентификация пользователя с возвратом JWT токена
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Данные для входа"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) LoginUser(c *gin.Context) {
	var request dto.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	hashedPassword := generateHashString(request.Password)

	user, err := h.Repository.GetUserByLogin(request.Login)
	if err != nil || user.Password != hashedPassword {
		h.errorResponse(c, http.StatusUnauthorized, "Неверный логин или пароль")
		return
	}

	accessToken, err := h.issueToken(user.ID, role.Role(user.Role))
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания токена")
		return
	}

	h.successResponse(c, http.StatusOK, "Пользователь успешно авторизован", gin.H{
		"user_id":    user.ID,
		"login":      user.Login,
		"role":       user.Role,
		"token":      accessToken,
		"expires_in": int(h.Config.JWT.ExpiresIn.Seconds()),
		"token_type": "Bearer",
	})
}

// LogoutUser выход пользователя из системы
// @Summary Выход из системы
// @Description Добавляет токен в blacklist до истечения его срока
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/logout [post]
func (h *Handler) LogoutUser(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		h.errorResponse(c, http.StatusUnauthorized, "Отсутствует заголовок Authorization")
		return
	}

	if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
		tokenString = tokenString[7:]
	}

	// Парсим токен, чтобы вычислить остаток TTL
	token, err := jwt.ParseWithClaims(tokenString, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.Config.JWT.Token), nil
	})
	if err != nil {
		h.errorResponse(c, http.StatusUnauthorized, "Неверный токен")
		return
	}

	claims, ok := token.Claims.(*ds.JWTClaims)
	if !ok {
		h.errorResponse(c, http.StatusUnauthorized, "Неверный токен")
		return
	}

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl <= 0 {
		// Токен уже истёк, блокировать нечего
		h.successResponse(c, http.StatusOK, "Пользователь успешно вышел из системы", nil)
		return
	}

	if err := h.RedisClient.WriteJWTToBlacklist(context.Background(), tokenString, ttl); err != nil {
		logrus.Error("Error writing JWT to blacklist: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка выхода из системы")
		return
	}

	h.successResponse(c, http.StatusOK, "Пользователь успешно вышел из системы", nil)
}

// GetUserProfile получение профиля пользователя
// @Summary Профиль пользователя
// @Description Возвращает информацию о текущем пользователе
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *Handler) GetUserProfile(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	user, err := h.Repository.GetUserByID(userID)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Пользователь не найден")
		return
	}

	h.successResponse(c, http.StatusOK, "", gin.H{
		"user": dto.UserResponse{
			ID:       user.ID,
			Login:    user.Login,
			FullName: user.FullName,
			Role:     user.Role,
		},
	})
}

// UpdateUserProfile обновление профиля пользователя
// @Summary Обновление профиля
// @Description Меняет имя и/или пароль текущего пользователя
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/profile [put]
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var request struct {
		FullName *string `json:"full_name"`
		Password *string `json:"password" binding:"omitempty,min=6"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	var hashedPassword *string
	if request.Password != nil {
		hashed := generateHashString(*request.Password)
		hashedPassword = &hashed
	}

	if err := h.Repository.UpdateUser(userID, request.FullName, hashedPassword); err != nil {
		logrus.Error("Error updating user: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления профиля")
		return
	}

	h.successResponse(c, http.StatusOK, "Профиль обновлён", nil)
}
