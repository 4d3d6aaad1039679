package ds

import "time"

// Категории поставщиков услуг
const (
	CategoryPhotographer = "photographer"
	CategoryVenue        = "venue"
	CategoryCaterer      = "caterer"
	CategoryFlorist      = "florist"
	CategoryMusician     = "musician"
	CategoryDecorator    = "decorator"
	CategoryTransport    = "transport"
	CategoryOther        = "other"
)

// 1. Таблица поставщиков услуг - центральная сущность каталога
type Vendor struct {
	ID               uint   `gorm:"primaryKey"`
	Slug             string `gorm:"type:varchar(120);uniqueIndex;not null"` // уникальный, не меняется после создания
	Name             string `gorm:"type:varchar(150);not null"`
	Category         string `gorm:"type:varchar(50);not null;index"`
	Description      string `gorm:"type:text"`
	ShortDescription string `gorm:"type:varchar(300)"`
	// Бизнес-данные
	LegalName      string  `gorm:"type:varchar(150)"`
	RegistrationID string  `gorm:"type:varchar(50)"`
	Website        string  `gorm:"type:varchar(255)"`
	Email          string  `gorm:"type:varchar(100)"`
	Phone          string  `gorm:"type:varchar(30)"`
	WorkingRadius  float64 `gorm:"type:decimal(6,1);default:0"` // радиус выезда в км
	// Флаги
	Verified bool `gorm:"default:false;not null"`
	Featured bool `gorm:"default:false;not null"`
	Premium  bool `gorm:"default:false;not null"`
	Active   bool `gorm:"default:true;not null;index"` // логическое удаление: false скрывает из каталога

	OwnerID   uint `gorm:"not null;uniqueIndex"` // один профиль на пользователя
	CreatedAt time.Time
	UpdatedAt time.Time

	Owner       User          `gorm:"foreignKey:OwnerID"`
	Address     *Address      `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	PriceRange  *PriceRange   `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Features    []Feature     `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Specialties []Specialty   `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Services    []Service     `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Images      []VendorImage `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE"`
	Reviews     []Review      `gorm:"foreignKey:VendorID"`
}

// 2. Адрес поставщика (один-к-одному)
type Address struct {
	ID         uint   `gorm:"primaryKey"`
	VendorID   uint   `gorm:"not null;uniqueIndex"`
	Street     string `gorm:"type:varchar(150)"`
	City       string `gorm:"type:varchar(100);index"`
	PostalCode string `gorm:"type:varchar(20)"`
	Region     string `gorm:"type:varchar(100)"`
	Country    string `gorm:"type:varchar(100)"`
}

// 3. Ценовой диапазон поставщика (один-к-одному)
type PriceRange struct {
	ID       uint    `gorm:"primaryKey"`
	VendorID uint    `gorm:"not null;uniqueIndex"`
	MinPrice float64 `gorm:"type:decimal(12,2);not null"`
	MaxPrice float64 `gorm:"type:decimal(12,2);not null"`
	Currency string  `gorm:"type:varchar(3);default:'RUB'"`
	Unit     string  `gorm:"type:varchar(20);default:'per_event'"` // per_hour, per_event, per_person
}

// 4. Особенности поставщика (простые теги)
type Feature struct {
	ID       uint   `gorm:"primaryKey"`
	VendorID uint   `gorm:"not null;index;uniqueIndex:idx_vendor_feature"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex:idx_vendor_feature"`
}

// 5. Специализации поставщика (простые теги)
type Specialty struct {
	ID       uint   `gorm:"primaryKey"`
	VendorID uint   `gorm:"not null;index;uniqueIndex:idx_vendor_specialty"`
	Name     string `gorm:"type:varchar(100);not null;uniqueIndex:idx_vendor_specialty"`
}

// 6. Услуга поставщика
type Service struct {
	ID          uint     `gorm:"primaryKey"`
	VendorID    uint     `gorm:"not null;index"`
	Name        string   `gorm:"type:varchar(150);not null"`
	Description string   `gorm:"type:text"`
	Price       *float64 `gorm:"type:decimal(12,2)"`

	Includes []ServiceInclude `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
}

// 7. Пункт состава услуги (упорядочен по Position)
type ServiceInclude struct {
	ID        uint   `gorm:"primaryKey"`
	ServiceID uint   `gorm:"not null;index;uniqueIndex:idx_service_include"`
	Label     string `gorm:"type:varchar(150);not null;uniqueIndex:idx_service_include"`
	Position  int    `gorm:"not null"` // порядок = индекс во входном массиве
}

// 8. Изображение портфолио поставщика
type VendorImage struct {
	ID       uint   `gorm:"primaryKey"`
	VendorID uint   `gorm:"not null;index"`
	URL      string `gorm:"type:varchar(255);not null"`
	Position int    `gorm:"default:0"`
}
