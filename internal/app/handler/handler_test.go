package handler_test

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"eventmarket-backend/internal/app/cache"
	"eventmarket-backend/internal/app/config"
	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/handler"
	"eventmarket-backend/internal/app/middleware"
	appredis "eventmarket-backend/internal/app/redis"
	"eventmarket-backend/internal/app/repository"
	"eventmarket-backend/internal/app/role"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testServer полный стек обработчиков на sqlite и miniredis
type testServer struct {
	router *gin.Engine
	repo   *repository.Repository
	mr     *miniredis.Miniredis
	cfg    *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&ds.User{}, &ds.Vendor{}, &ds.Address{}, &ds.PriceRange{},
		&ds.Feature{}, &ds.Specialty{}, &ds.Service{}, &ds.ServiceInclude{},
		&ds.VendorImage{}, &ds.Review{}, &ds.Favorite{}, &ds.VendorAnalytics{},
	))
	repo := repository.NewWithDB(db)

	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	redisClient, err := appredis.New(t.Context(), config.RedisConfig{
		Host:        host,
		Port:        port,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Token:         "test",
			ExpiresIn:     time.Hour,
			SigningMethod: jwt.SigningMethodHS256,
		},
	}

	h := handler.New(repo, cache.New(redisClient), redisClient, nil, cfg)
	am := middleware.NewAuthMiddleware(redisClient, cfg)

	router := gin.New()
	h.RegisterAPIRoutes(router, am)

	return &testServer{router: router, repo: repo, mr: mr, cfg: cfg}
}

// token подписывает JWT тем же секретом, что и сервер
func (s *testServer) token(t *testing.T, userID uint, userRole role.Role) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.cfg.JWT.ExpiresIn).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    "eventmarket",
		},
		UserID: userID,
		Role:   userRole,
	})
	signed, err := tok.SignedString([]byte(s.cfg.JWT.Token))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// createUser добавляет пользователя напрямую через репозиторий
func (s *testServer) createUser(t *testing.T, login string, userRole role.Role) *ds.User {
	t.Helper()
	user, err := s.repo.CreateUser(login, "hash", "Тестовый пользователь", login+"@test.ru", int(userRole))
	require.NoError(t, err)
	return user
}

// createVendor добавляет поставщика напрямую через репозиторий
func (s *testServer) createVendor(t *testing.T, ownerID uint, name, category string) *ds.Vendor {
	t.Helper()
	v, err := s.repo.CreateVendor(t.Context(), ownerID, role.Buyer, repository.CreateVendorInput{
		Name:     name,
		Category: category,
	})
	require.NoError(t, err)
	return v
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
