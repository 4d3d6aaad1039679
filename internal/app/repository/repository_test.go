package repository_test

import (
	"fmt"
	"testing"

	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/repository"
	"eventmarket-backend/internal/app/role"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo поднимает репозиторий на sqlite in-memory.
// Одно соединение, иначе каждый коннект получит свою пустую базу.
func newTestRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&ds.User{},
		&ds.Vendor{},
		&ds.Address{},
		&ds.PriceRange{},
		&ds.Feature{},
		&ds.Specialty{},
		&ds.Service{},
		&ds.ServiceInclude{},
		&ds.VendorImage{},
		&ds.Review{},
		&ds.Favorite{},
		&ds.VendorAnalytics{},
	))

	return repository.NewWithDB(db), db
}

// createTestUser создаёт пользователя; у каждого поставщика свой владелец
func createTestUser(t *testing.T, repo *repository.Repository, login string) *ds.User {
	t.Helper()
	user, err := repo.CreateUser(login, "hash", "Тестовый пользователь", login+"@test.ru", int(role.Buyer))
	require.NoError(t, err)
	return user
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

// vendorInput минимально валидный вход создания поставщика
func vendorInput(name, category string) repository.CreateVendorInput {
	return repository.CreateVendorInput{
		Name:     name,
		Category: category,
	}
}

// seedVendors создаёт n поставщиков с разными владельцами
func seedVendors(t *testing.T, repo *repository.Repository, n int, category string) []*ds.Vendor {
	t.Helper()
	vendors := make([]*ds.Vendor, n)
	for i := 0; i < n; i++ {
		owner := createTestUser(t, repo, fmt.Sprintf("owner_%s_%d", category, i))
		v, err := repo.CreateVendor(t.Context(), owner.ID, role.Buyer, vendorInput(fmt.Sprintf("Vendor %s %d", category, i), category))
		require.NoError(t, err)
		vendors[i] = v
	}
	return vendors
}
