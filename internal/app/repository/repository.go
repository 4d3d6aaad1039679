package repository

import (
	"errors"
	"fmt"

	"eventmarket-backend/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Ошибки уровня хранилища; обработчики переводят их в HTTP-статусы
var (
	ErrNotFound          = errors.New("запись не найдена")
	ErrVendorExists      = errors.New("у пользователя уже есть профиль поставщика")
	ErrSlugExhausted     = errors.New("не удалось подобрать свободный slug")
	ErrAccessDenied      = errors.New("доступ запрещён")
	ErrInvalidPriceRange = errors.New("минимальная цена не может быть больше максимальной")
	ErrReviewExists      = errors.New("отзыв для этого поставщика уже оставлен")
)

type Repository struct {
	db *gorm.DB
}

func New(dsnStr string) (*Repository, error) {
	// TranslateError нужен, чтобы нарушение уникального индекса по slug
	// приходило как gorm.ErrDuplicatedKey (см. CreateVendor)
	db, err := gorm.Open(postgres.Open(dsnStr), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Автоматическая миграция всех таблиц
	err = db.AutoMigrate(
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
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{
		db: db,
	}, nil
}

// NewWithDB оборачивает готовое подключение (используется в тестах)
func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}
