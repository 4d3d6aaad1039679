package repository

import (
	"context"
	"time"

	"eventmarket-backend/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordView инкрементирует дневной счётчик просмотров поставщика.
// Без идентификатора зрителя просмотр не учитывается.
// Вызывается fire-and-forget: ошибку логирует вызывающая сторона.
func (r *Repository) RecordView(ctx context.Context, vendorID uint, userID *uint) error {
	if userID == nil {
		return nil
	}

	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	row := ds.VendorAnalytics{
		VendorID:  vendorID,
		Date:      day,
		ViewCount: 1,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"view_count": gorm.Expr("view_count + 1"),
		}),
	}).Create(&row).Error
}

// GetViewCount возвращает счётчик просмотров за конкретный день
func (r *Repository) GetViewCount(ctx context.Context, vendorID uint, day time.Time) (int, error) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var row ds.VendorAnalytics
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND date = ?", vendorID, day).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return row.ViewCount, nil
}
