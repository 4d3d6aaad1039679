package dto

import (
	"time"

	"eventmarket-backend/internal/app/rating"
)

// ============ Общие структуры ============

// Единый конверт ошибки: {success:false, message}
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ============ Поставщики (Vendors) ============

type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Region     string `json:"region"`
	Country    string `json:"country"`
}

type PriceRangeResponse struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	Currency string  `json:"currency"`
	Unit     string  `json:"unit"`
}

type ServiceResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Includes    []string `json:"includes"` // в порядке Position
}

type ReviewResponse struct {
	ID              uint      `json:"id"`
	Author          string    `json:"author"`
	Rating          int       `json:"rating"`
	Quality         int       `json:"quality"`
	Communication   int       `json:"communication"`
	Value           int       `json:"value"`
	Professionalism int       `json:"professionalism"`
	Comment         string    `json:"comment,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Элемент каталога
type VendorResponse struct {
	ID               uint                `json:"id"`
	Slug             string              `json:"slug"`
	Name             string              `json:"name"`
	Category         string              `json:"category"`
	ShortDescription string              `json:"short_description,omitempty"`
	WorkingRadius    float64             `json:"working_radius"`
	Verified         bool                `json:"verified"`
	Featured         bool                `json:"featured"`
	Premium          bool                `json:"premium"`
	Address          *AddressResponse    `json:"address,omitempty"`
	PriceRange       *PriceRangeResponse `json:"price_range,omitempty"`
	Features         []string            `json:"features"`
	Specialties      []string            `json:"specialties"`
	Images           []string            `json:"images"`
	Rating           rating.Summary      `json:"rating"`
	FavoriteCount    int64               `json:"favorite_count"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Карточка поставщика. IsFavorited зависит от пользователя,
// поэтому в кеш не попадает и выставляется после чтения кеша.
type VendorDetailResponse struct {
	VendorResponse
	Description    string            `json:"description,omitempty"`
	LegalName      string            `json:"legal_name,omitempty"`
	RegistrationID string            `json:"registration_id,omitempty"`
	Website        string            `json:"website,omitempty"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Services       []ServiceResponse `json:"services"`
	Reviews        []ReviewResponse  `json:"reviews"`
	IsFavorited    *bool             `json:"is_favorited,omitempty"`
}

type VendorListResponse struct {
	Success    bool             `json:"success"`
	Vendors    []VendorResponse `json:"vendors"`
	Pagination Pagination       `json:"pagination"`
}

type VendorDetailEnvelope struct {
	Success bool                 `json:"success"`
	Vendor  VendorDetailResponse `json:"vendor"`
}

type AddressRequest struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Region     string `json:"region"`
	Country    string `json:"country"`
}

type PriceRangeRequest struct {
	MinPrice float64 `json:"min_price" binding:"gte=0"`
	MaxPrice float64 `json:"max_price" binding:"gte=0"`
	Currency string  `json:"currency" binding:"omitempty,len=3"`
	Unit     string  `json:"unit" binding:"omitempty,oneof=per_hour per_event per_person"`
}

type ServiceRequest struct {
	Name        string   `json:"name" binding:"required,max=150"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	Includes    []string `json:"includes"`
}

type CreateVendorRequest struct {
	Name             string             `json:"name" binding:"required,min=2,max=150"`
	Category         string             `json:"category" binding:"required,oneof=photographer venue caterer florist musician decorator transport other"`
	Description      string             `json:"description"`
	ShortDescription string             `json:"short_description" binding:"max=300"`
	LegalName        string             `json:"legal_name"`
	RegistrationID   string             `json:"registration_id"`
	Website          string             `json:"website"`
	Email            string             `json:"email" binding:"omitempty,email"`
	Phone            string             `json:"phone"`
	WorkingRadius    float64            `json:"working_radius" binding:"gte=0"`
	Address          *AddressRequest    `json:"address"`
	PriceRange       *PriceRangeRequest `json:"price_range"`
	Features         []string           `json:"features"`
	Specialties      []string           `json:"specialties"`
	Services         []ServiceRequest   `json:"services"`
}

type UpdateVendorRequest struct {
	Name             *string            `json:"name" binding:"omitempty,min=2,max=150"`
	Description      *string            `json:"description"`
	ShortDescription *string            `json:"short_description" binding:"omitempty,max=300"`
	LegalName        *string            `json:"legal_name"`
	RegistrationID   *string            `json:"registration_id"`
	Website          *string            `json:"website"`
	Email            *string            `json:"email" binding:"omitempty,email"`
	Phone            *string            `json:"phone"`
	WorkingRadius    *float64           `json:"working_radius" binding:"omitempty,gte=0"`
	Address          *AddressRequest    `json:"address"`
	PriceRange       *PriceRangeRequest `json:"price_range"`
}

// ============ Отзывы и закладки ============

type CreateReviewRequest struct {
	Rating          int    `json:"rating" binding:"required,gte=1,lte=5"`
	Quality         int    `json:"quality" binding:"required,gte=1,lte=5"`
	Communication   int    `json:"communication" binding:"required,gte=1,lte=5"`
	Value           int    `json:"value" binding:"required,gte=1,lte=5"`
	Professionalism int    `json:"professionalism" binding:"required,gte=1,lte=5"`
	Comment         string `json:"comment" binding:"max=2000"`
}

type FavoriteResponse struct {
	Success     bool `json:"success"`
	IsFavorited bool `json:"is_favorited"`
}

// ============ Пользователи (Users) ============

type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Role     int    `json:"role"`
}

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}
