package ds

import "time"

// 9. Отзыв о поставщике. Агрегированный рейтинг нигде не хранится -
// он всегда пересчитывается из этих строк при чтении.
type Review struct {
	ID       uint `gorm:"primaryKey"`
	VendorID uint `gorm:"not null;index;uniqueIndex:idx_vendor_reviewer"`
	UserID   uint `gorm:"not null;index;uniqueIndex:idx_vendor_reviewer"`
	// Общая оценка и четыре под-оценки, все по шкале 1-5
	Rating          int `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Quality         int `gorm:"not null"`
	Communication   int `gorm:"not null"`
	Value           int `gorm:"not null"`
	Professionalism int `gorm:"not null"`

	Comment   string `gorm:"type:text"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID"`
}

// 10. Закладка пользователь-поставщик (не больше одной на пару)
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	VendorID  uint `gorm:"not null;index;uniqueIndex:idx_user_vendor_favorite"`
	UserID    uint `gorm:"not null;index;uniqueIndex:idx_user_vendor_favorite"`
	CreatedAt time.Time
}
