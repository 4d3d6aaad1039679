package repository

import (
	"context"
	"errors"
	"fmt"

	"eventmarket-backend/internal/app/ds"

	"gorm.io/gorm"
)

// ReviewInput оценки по шкале 1-5 плюс комментарий
type ReviewInput struct {
	Rating          int
	Quality         int
	Communication   int
	Value           int
	Professionalism int
	Comment         string
}

// CreateReview добавляет отзыв; не больше одного на пару (пользователь, поставщик)
func (r *Repository) CreateReview(ctx context.Context, vendorID, userID uint, in ReviewInput) (*ds.Review, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ds.Vendor{}).Where("id = ? AND active = ?", vendorID, true).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("ошибка проверки поставщика: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	review := ds.Review{
		VendorID:        vendorID,
		UserID:          userID,
		Rating:          in.Rating,
		Quality:         in.Quality,
		Communication:   in.Communication,
		Value:           in.Value,
		Professionalism: in.Professionalism,
		Comment:         in.Comment,
	}
	if err := r.db.WithContext(ctx).Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReviewExists
		}
		return nil, fmt.Errorf("ошибка создания отзыва: %w", err)
	}

	return &review, nil
}

// favoriteCountRow строка результата группировки по vendor_id
type favoriteCountRow struct {
	VendorID uint
	Cnt      int64
}

// FavoriteCounts возвращает количество закладок для набора поставщиков
func (r *Repository) FavoriteCounts(ctx context.Context, vendorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(vendorIDs))
	if len(vendorIDs) == 0 {
		return counts, nil
	}

	var rows []favoriteCountRow
	err := r.db.WithContext(ctx).
		Model(&ds.Favorite{}).
		Select("vendor_id, COUNT(*) as cnt").
		Where("vendor_id IN ?", vendorIDs).
		Group("vendor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта закладок: %w", err)
	}

	for _, row := range rows {
		counts[row.VendorID] = row.Cnt
	}
	return counts, nil
}

// IsFavorited проверяет, добавил ли пользователь поставщика в закладки
func (r *Repository) IsFavorited(ctx context.Context, vendorID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ds.Favorite{}).
		Where("vendor_id = ? AND user_id = ?", vendorID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("ошибка проверки закладки: %w", err)
	}
	return count > 0, nil
}

// ToggleFavorite переключает закладку; возвращает итоговое состояние
func (r *Repository) ToggleFavorite(ctx context.Context, vendorID, userID uint) (bool, error) {
	var existing ds.Favorite
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND user_id = ?", vendorID, userID).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		var count int64
		if err := r.db.WithContext(ctx).Model(&ds.Vendor{}).Where("id = ? AND active = ?", vendorID, true).Count(&count).Error; err != nil {
			return false, fmt.Errorf("ошибка проверки поставщика: %w", err)
		}
		if count == 0 {
			return false, ErrNotFound
		}
		favorite := ds.Favorite{VendorID: vendorID, UserID: userID}
		if err := r.db.WithContext(ctx).Create(&favorite).Error; err != nil {
			// Гонка двух параллельных добавлений: закладка уже есть
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return true, nil
			}
			return false, fmt.Errorf("ошибка добавления закладки: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("ошибка чтения закладки: %w", err)
	default:
		if err := r.db.WithContext(ctx).Delete(&existing).Error; err != nil {
			return false, fmt.Errorf("ошибка удаления закладки: %w", err)
		}
		return false, nil
	}
}
