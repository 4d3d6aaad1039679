package main

import (
	"log"

	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/dsn"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Загрузка переменных окружения из .env файла
	_ = godotenv.Load()

	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		log.Fatal("DSN string is empty. Check your .env file")
	}

	db, err := gorm.Open(postgres.Open(dsnStr), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database successfully")

	// Миграция всех моделей
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
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migration completed successfully")
}
