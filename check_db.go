package main

import (
	"fmt"
	"log"

	"eventmarket-backend/internal/app/ds"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := "host=localhost user=postgres password=password dbname=eventmarket_db port=5432 sslmode=disable TimeZone=Europe/Moscow"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var vendors []ds.Vendor
	err = db.Where("active = ?", true).Find(&vendors).Error
	if err != nil {
		log.Fatal("Failed to get vendors:", err)
	}

	fmt.Println("Vendors in database:")
	for _, vendor := range vendors {
		fmt.Printf("ID: %d, Slug: %s, Name: %s, Category: %s, Verified: %t\n",
			vendor.ID, vendor.Slug, vendor.Name, vendor.Category, vendor.Verified)
	}
}
