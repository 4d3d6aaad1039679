package ds

import "time"

// 11. Дневной счётчик просмотров: одна строка на (поставщик, дата).
// Дата нормализована к полуночи UTC.
type VendorAnalytics struct {
	ID        uint      `gorm:"primaryKey"`
	VendorID  uint      `gorm:"not null;uniqueIndex:idx_vendor_day"`
	Date      time.Time `gorm:"not null;uniqueIndex:idx_vendor_day"`
	ViewCount int       `gorm:"not null;default:0"`
}
