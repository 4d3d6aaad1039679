package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/role"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100

	// В ответ каталога попадает не больше этого числа изображений портфолио
	maxPortfolioImages = 10

	// Предел перебора суффиксов при генерации slug
	maxSlugAttempts = 50
)

// errSlugTaken сигнал повторить вставку со следующим суффиксом:
// проверка существования идёт до транзакции и не защищена от гонки,
// поэтому решает уникальный индекс в БД
var errSlugTaken = errors.New("slug уже занят")

// VendorFilter неизменяемое описание запроса каталога.
// Все фильтры соединяются через AND, поиск - OR по трём текстовым полям.
type VendorFilter struct {
	Category  string
	City      string
	Region    string
	MinPrice  *float64
	MaxPrice  *float64
	Verified  *bool
	Featured  *bool
	Search    string
	SortBy    string // created_at | name | rating
	SortOrder string // asc | desc
	Page      int
	Limit     int
}

// Normalize приводит параметры к допустимым значениям:
// page/limit вне диапазона заменяются значениями по умолчанию,
// limit ограничен сверху, сортировка сводится к допустимым вариантам.
func (f VendorFilter) Normalize() VendorFilter {
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
	switch f.SortBy {
	case "name", "rating":
	default:
		f.SortBy = "created_at"
	}
	return f
}

// applyFilter компилирует фильтр в запрос. Чистая функция от (db, f):
// вызывается отдельно для выборки и для подсчёта общего количества.
func applyFilter(db *gorm.DB, f VendorFilter) *gorm.DB {
	q := db.Model(&ds.Vendor{}).Where("vendors.active = ?", true)

	if f.Category != "" {
		q = q.Where("vendors.category = ?", f.Category)
	}
	if f.City != "" || f.Region != "" {
		q = q.Joins("LEFT JOIN addresses ON addresses.vendor_id = vendors.id")
		if f.City != "" {
			q = q.Where("LOWER(addresses.city) LIKE ?", "%"+strings.ToLower(f.City)+"%")
		}
		if f.Region != "" {
			q = q.Where("LOWER(addresses.region) LIKE ?", "%"+strings.ToLower(f.Region)+"%")
		}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		q = q.Joins("LEFT JOIN price_ranges ON price_ranges.vendor_id = vendors.id")
		if f.MinPrice != nil {
			q = q.Where("price_ranges.min_price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("price_ranges.max_price <= ?", *f.MaxPrice)
		}
	}
	if f.Verified != nil {
		q = q.Where("vendors.verified = ?", *f.Verified)
	}
	if f.Featured != nil {
		q = q.Where("vendors.featured = ?", *f.Featured)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where(
			"LOWER(vendors.name) LIKE ? OR LOWER(vendors.description) LIKE ? OR LOWER(vendors.legal_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	return q
}

// orderClause выбирает колонку сортировки из белого списка
func orderClause(f VendorFilter) string {
	column := "vendors.created_at"
	switch f.SortBy {
	case "name":
		column = "vendors.name"
	case "rating":
		// TODO: сортировка по рейтингу требует джойна с агрегатом по отзывам;
		// пока, как и раньше, сортируем по дате создания
		column = "vendors.created_at"
	}
	dir := "DESC"
	if f.SortOrder == "asc" {
		dir = "ASC"
	}
	return column + " " + dir
}

// ListVendors возвращает страницу каталога и общее число совпадений.
// Вторичная сортировка по id гарантирует стабильные страницы.
func (r *Repository) ListVendors(ctx context.Context, f VendorFilter) ([]ds.Vendor, int64, error) {
	f = f.Normalize()

	var total int64
	if err := applyFilter(r.db.WithContext(ctx), f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта поставщиков: %w", err)
	}

	var vendors []ds.Vendor
	err := applyFilter(r.db.WithContext(ctx), f).
		Preload("Address").
		Preload("PriceRange").
		Preload("Features").
		Preload("Specialties").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("vendor_images.position ASC")
		}).
		Preload("Reviews").
		Order(orderClause(f)).
		Order("vendors.id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&vendors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки поставщиков: %w", err)
	}

	for i := range vendors {
		if len(vendors[i].Images) > maxPortfolioImages {
			vendors[i].Images = vendors[i].Images[:maxPortfolioImages]
		}
	}

	return vendors, total, nil
}

// GetVendorByLookup ищет активного поставщика по id или slug (взаимозаменяемы)
func (r *Repository) GetVendorByLookup(ctx context.Context, lookup string) (*ds.Vendor, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if id, err := strconv.ParseUint(lookup, 10, 32); err == nil {
		q = q.Where("id = ?", uint(id))
	} else {
		q = q.Where("slug = ?", lookup)
	}

	var vendor ds.Vendor
	err := q.
		Preload("Address").
		Preload("PriceRange").
		Preload("Features").
		Preload("Specialties").
		Preload("Services", func(db *gorm.DB) *gorm.DB {
			return db.Order("services.id ASC")
		}).
		Preload("Services.Includes", func(db *gorm.DB) *gorm.DB {
			return db.Order("service_includes.position ASC")
		}).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("vendor_images.position ASC")
		}).
		Preload("Reviews").
		Preload("Reviews.User").
		First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения поставщика: %w", err)
	}

	if len(vendor.Images) > maxPortfolioImages {
		vendor.Images = vendor.Images[:maxPortfolioImages]
	}

	return &vendor, nil
}

// Входные структуры создания поставщика

type AddressInput struct {
	Street     string
	City       string
	PostalCode string
	Region     string
	Country    string
}

type PriceRangeInput struct {
	MinPrice float64
	MaxPrice float64
	Currency string
	Unit     string
}

type ServiceInput struct {
	Name        string
	Description string
	Price       *float64
	Includes    []string
}

type CreateVendorInput struct {
	Name             string
	Category         string
	Description      string
	ShortDescription string
	LegalName        string
	RegistrationID   string
	Website          string
	Email            string
	Phone            string
	WorkingRadius    float64
	Address          *AddressInput
	PriceRange       *PriceRangeInput
	Features         []string
	Specialties      []string
	Services         []ServiceInput
}

// CreateVendor создаёт поставщика со всеми вложенными сущностями
// в одной транзакции. Slug выводится из имени; занятые значения
// получают числовой суффикс -1, -2, ...
func (r *Repository) CreateVendor(ctx context.Context, ownerID uint, callerRole role.Role, in CreateVendorInput) (*ds.Vendor, error) {
	if in.PriceRange != nil && in.PriceRange.MinPrice > in.PriceRange.MaxPrice {
		return nil, ErrInvalidPriceRange
	}

	// Один профиль на пользователя (учитываются и скрытые профили)
	var count int64
	if err := r.db.WithContext(ctx).Model(&ds.Vendor{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("ошибка проверки профиля: %w", err)
	}
	if count > 0 {
		return nil, ErrVendorExists
	}

	base := slug.Make(in.Name)
	if base == "" {
		base = "vendor"
	}

	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}

		var taken int64
		if err := r.db.WithContext(ctx).Model(&ds.Vendor{}).Where("slug = ?", candidate).Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("ошибка проверки slug: %w", err)
		}
		if taken > 0 {
			continue
		}

		vendor, err := r.insertVendorTx(ctx, ownerID, callerRole, candidate, in)
		if errors.Is(err, errSlugTaken) {
			// Конкурентное создание успело занять slug между проверкой
			// и вставкой - пробуем следующий суффикс
			continue
		}
		return vendor, err
	}

	return nil, ErrSlugExhausted
}

// insertVendorTx вставляет поставщика и вложенные строки атомарно.
// Любая ошибка откатывает транзакцию целиком.
func (r *Repository) insertVendorTx(ctx context.Context, ownerID uint, callerRole role.Role, slugValue string, in CreateVendorInput) (*ds.Vendor, error) {
	var created ds.Vendor

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor := ds.Vendor{
			Slug:             slugValue,
			Name:             in.Name,
			Category:         in.Category,
			Description:      in.Description,
			ShortDescription: in.ShortDescription,
			LegalName:        in.LegalName,
			RegistrationID:   in.RegistrationID,
			Website:          in.Website,
			Email:            in.Email,
			Phone:            in.Phone,
			WorkingRadius:    in.WorkingRadius,
			Verified:         callerRole == role.Admin, // администраторы создают сразу проверенных
			Active:           true,
			OwnerID:          ownerID,
		}
		if err := tx.Create(&vendor).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errSlugTaken
			}
			return err
		}

		if in.Address != nil {
			address := ds.Address{
				VendorID:   vendor.ID,
				Street:     in.Address.Street,
				City:       in.Address.City,
				PostalCode: in.Address.PostalCode,
				Region:     in.Address.Region,
				Country:    in.Address.Country,
			}
			if err := tx.Create(&address).Error; err != nil {
				return err
			}
		}

		if in.PriceRange != nil {
			priceRange := ds.PriceRange{
				VendorID: vendor.ID,
				MinPrice: in.PriceRange.MinPrice,
				MaxPrice: in.PriceRange.MaxPrice,
				Currency: in.PriceRange.Currency,
				Unit:     in.PriceRange.Unit,
			}
			if err := tx.Create(&priceRange).Error; err != nil {
				return err
			}
		}

		for _, name := range in.Features {
			if err := tx.Create(&ds.Feature{VendorID: vendor.ID, Name: name}).Error; err != nil {
				return err
			}
		}

		for _, name := range in.Specialties {
			if err := tx.Create(&ds.Specialty{VendorID: vendor.ID, Name: name}).Error; err != nil {
				return err
			}
		}

		for _, s := range in.Services {
			service := ds.Service{
				VendorID:    vendor.ID,
				Name:        s.Name,
				Description: s.Description,
				Price:       s.Price,
			}
			if err := tx.Create(&service).Error; err != nil {
				return err
			}
			for i, label := range s.Includes {
				include := ds.ServiceInclude{
					ServiceID: service.ID,
					Label:     label,
					Position:  i, // порядок задаётся индексом во входном массиве
				}
				if err := tx.Create(&include).Error; err != nil {
					return err
				}
			}
		}

		created = vendor
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetVendorByLookup(ctx, strconv.FormatUint(uint64(created.ID), 10))
}

// UpdateVendorInput частичное обновление: nil-поля не трогаются.
// Slug намеренно не обновляется - он стабилен после создания.
type UpdateVendorInput struct {
	Name             *string
	Description      *string
	ShortDescription *string
	LegalName        *string
	RegistrationID   *string
	Website          *string
	Email            *string
	Phone            *string
	WorkingRadius    *float64
	Address          *AddressInput
	PriceRange       *PriceRangeInput
}

// UpdateVendor обновляет атрибуты, адрес и ценовой диапазон одной
// транзакцией. Разрешено только владельцу или администратору.
func (r *Repository) UpdateVendor(ctx context.Context, vendorID, callerID uint, callerRole role.Role, in UpdateVendorInput) (*ds.Vendor, error) {
	var vendor ds.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения поставщика: %w", err)
	}

	if vendor.OwnerID != callerID && callerRole != role.Admin {
		return nil, ErrAccessDenied
	}

	if in.PriceRange != nil && in.PriceRange.MinPrice > in.PriceRange.MaxPrice {
		return nil, ErrInvalidPriceRange
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.ShortDescription != nil {
		updates["short_description"] = *in.ShortDescription
	}
	if in.LegalName != nil {
		updates["legal_name"] = *in.LegalName
	}
	if in.RegistrationID != nil {
		updates["registration_id"] = *in.RegistrationID
	}
	if in.Website != nil {
		updates["website"] = *in.Website
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.WorkingRadius != nil {
		updates["working_radius"] = *in.WorkingRadius
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&ds.Vendor{}).Where("id = ?", vendorID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.Address != nil {
			var address ds.Address
			err := tx.Where("vendor_id = ?", vendorID).First(&address).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				address = ds.Address{
					VendorID:   vendorID,
					Street:     in.Address.Street,
					City:       in.Address.City,
					PostalCode: in.Address.PostalCode,
					Region:     in.Address.Region,
					Country:    in.Address.Country,
				}
				if err := tx.Create(&address).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&address).Updates(map[string]interface{}{
					"street":      in.Address.Street,
					"city":        in.Address.City,
					"postal_code": in.Address.PostalCode,
					"region":      in.Address.Region,
					"country":     in.Address.Country,
				}).Error; err != nil {
					return err
				}
			}
		}

		if in.PriceRange != nil {
			var priceRange ds.PriceRange
			err := tx.Where("vendor_id = ?", vendorID).First(&priceRange).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				priceRange = ds.PriceRange{
					VendorID: vendorID,
					MinPrice: in.PriceRange.MinPrice,
					MaxPrice: in.PriceRange.MaxPrice,
					Currency: in.PriceRange.Currency,
					Unit:     in.PriceRange.Unit,
				}
				if err := tx.Create(&priceRange).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				if err := tx.Model(&priceRange).Updates(map[string]interface{}{
					"min_price": in.PriceRange.MinPrice,
					"max_price": in.PriceRange.MaxPrice,
					"currency":  in.PriceRange.Currency,
					"unit":      in.PriceRange.Unit,
				}).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления поставщика: %w", err)
	}

	return r.GetVendorByLookup(ctx, strconv.FormatUint(uint64(vendorID), 10))
}

// SoftDeleteVendor логически удаляет поставщика (active=false).
// Строка остаётся в БД, из каталога поставщик пропадает.
func (r *Repository) SoftDeleteVendor(ctx context.Context, vendorID, callerID uint, callerRole role.Role) error {
	var vendor ds.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка чтения поставщика: %w", err)
	}

	if vendor.OwnerID != callerID && callerRole != role.Admin {
		return ErrAccessDenied
	}

	return r.db.WithContext(ctx).Model(&ds.Vendor{}).Where("id = ?", vendorID).Update("active", false).Error
}

// AddVendorImage добавляет изображение портфолио в конец списка
func (r *Repository) AddVendorImage(ctx context.Context, vendorID, callerID uint, callerRole role.Role, url string) error {
	var vendor ds.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка чтения поставщика: %w", err)
	}

	if vendor.OwnerID != callerID && callerRole != role.Admin {
		return ErrAccessDenied
	}

	var maxPos int64
	r.db.WithContext(ctx).Model(&ds.VendorImage{}).Where("vendor_id = ?", vendorID).Count(&maxPos)

	image := ds.VendorImage{
		VendorID: vendorID,
		URL:      url,
		Position: int(maxPos),
	}
	return r.db.WithContext(ctx).Create(&image).Error
}
