package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"eventmarket-backend/internal/app/cache"
	"eventmarket-backend/internal/app/ds"
	"eventmarket-backend/internal/app/dto"
	"eventmarket-backend/internal/app/rating"
	"eventmarket-backend/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// parseVendorFilter собирает типизированный фильтр из query-параметров.
// Нечисловые и выходящие за диапазон page/limit приводятся к значениям
// по умолчанию (1/20), limit ограничен сотней - см. VendorFilter.Normalize.
func parseVendorFilter(c *gin.Context) repository.VendorFilter {
	f := repository.VendorFilter{
		Category:  c.Query("category"),
		City:      c.Query("city"),
		Region:    c.Query("region"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.ParseBool(c.Query("verified")); err == nil {
		f.Verified = &v
	}
	if v, err := strconv.ParseBool(c.Query("featured")); err == nil {
		f.Featured = &v
	}

	// createdAt в API соответствует created_at в хранилище
	if f.SortBy == "createdAt" {
		f.SortBy = "created_at"
	}

	return f.Normalize()
}

// GetVendors возвращает страницу каталога поставщиков
// @Summary Список поставщиков
// @Description Возвращает страницу каталога с фильтрацией, сортировкой и пагинацией
// @Tags Vendors
// @Produce json
// @Param page query int false "Номер страницы (с 1)"
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param category query string false "Категория поставщика"
// @Param city query string false "Подстрока города"
// @Param region query string false "Подстрока региона"
// @Param minPrice query number false "Нижняя граница цены"
// @Param maxPrice query number false "Верхняя граница цены"
// @Param verified query bool false "Только проверенные"
// @Param featured query bool false "Только рекомендуемые"
// @Param search query string false "Поиск по имени, описанию и юр. названию"
// @Param sortBy query string false "createdAt | name | rating"
// @Param sortOrder query string false "asc | desc"
// @Success 200 {object} dto.VendorListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/vendors [get]
func (h *Handler) GetVendors(c *gin.Context) {
	ctx := c.Request.Context()
	filter := parseVendorFilter(c)
	key := cache.ListKey(filter)

	// Попадание в кеш: отдаём сохранённый ответ как есть
	var cached dto.VendorListResponse
	if h.Cache.Get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	vendors, total, err := h.Repository.ListVendors(ctx, filter)
	if err != nil {
		logrus.Error("Error listing vendors: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения каталога")
		return
	}

	vendorIDs := make([]uint, len(vendors))
	for i, v := range vendors {
		vendorIDs[i] = v.ID
	}
	favoriteCounts, err := h.Repository.FavoriteCounts(ctx, vendorIDs)
	if err != nil {
		logrus.Error("Error counting favorites: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения каталога")
		return
	}

	items := make([]dto.VendorResponse, len(vendors))
	for i, v := range vendors {
		items[i] = buildVendorResponse(v, favoriteCounts[v.ID])
	}

	response := dto.VendorListResponse{
		Success: true,
		Vendors: items,
		Pagination: dto.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		},
	}

	h.Cache.Set(ctx, key, response, cache.ListTTL)
	c.JSON(http.StatusOK, response)
}

// GetVendor возвращает карточку поставщика по id или slug
// @Summary Карточка поставщика
// @Description Возвращает поставщика со всеми вложенными данными; lookup - id или slug
// @Tags Vendors
// @Produce json
// @Param lookup path string true "ID или slug поставщика"
// @Success 200 {object} dto.VendorDetailEnvelope
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/vendors/{lookup} [get]
func (h *Handler) GetVendor(c *gin.Context) {
	ctx := c.Request.Context()
	lookup := c.Param("lookup")
	userID, _ := h.optionalUserFromContext(c)
	key := cache.DetailKey(lookup)

	var detail dto.VendorDetailResponse
	if h.Cache.Get(ctx, key, &detail) {
		// Просмотр учитывается и при попадании в кеш
		go h.trackView(detail.ID, userID)
		h.attachIsFavorited(ctx, &detail, userID)
		c.JSON(http.StatusOK, dto.VendorDetailEnvelope{Success: true, Vendor: detail})
		return
	}

	vendor, err := h.Repository.GetVendorByLookup(ctx, lookup)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Поставщик не найден")
			return
		}
		logrus.Error("Error getting vendor: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения поставщика")
		return
	}

	favoriteCounts, err := h.Repository.FavoriteCounts(ctx, []uint{vendor.ID})
	if err != nil {
		logrus.Error("Error counting favorites: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения поставщика")
		return
	}

	detail = buildVendorDetail(vendor, favoriteCounts[vendor.ID])

	// В кеш уходит пользовательски-нейтральный ответ (без is_favorited)
	h.Cache.Set(ctx, key, detail, cache.DetailTTL)

	go h.trackView(vendor.ID, userID)
	h.attachIsFavorited(ctx, &detail, userID)
	c.JSON(http.StatusOK, dto.VendorDetailEnvelope{Success: true, Vendor: detail})
}

// trackView fire-and-forget учёт просмотра: ответ клиенту не ждёт
// записи счётчика, ошибка логируется и проглатывается
func (h *Handler) trackView(vendorID uint, userID *uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := h.Repository.RecordView(ctx, vendorID, userID); err != nil {
		logrus.Warnf("view tracking failed for vendor %d: %v", vendorID, err)
	}
}

func (h *Handler) attachIsFavorited(ctx context.Context, detail *dto.VendorDetailResponse, userID *uint) {
	if userID == nil {
		return
	}
	favorited, err := h.Repository.IsFavorited(ctx, detail.ID, *userID)
	if err != nil {
		logrus.Warnf("favorite lookup failed for vendor %d: %v", detail.ID, err)
		return
	}
	detail.IsFavorited = &favorited
}

// CreateVendor создаёт профиль поставщика
// @Summary Создание поставщика
// @Description Создаёт поставщика с вложенными сущностями одной транзакцией; один профиль на пользователя
// @Tags Vendors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateVendorRequest true "Данные поставщика"
// @Success 201 {object} dto.VendorDetailEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/vendors [post]
func (h *Handler) CreateVendor(c *gin.Context) {
	userID, userRole, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var req dto.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	vendor, err := h.Repository.CreateVendor(c.Request.Context(), userID, userRole, createInputFromRequest(req))
	if err != nil {
		status, message := vendorErrorStatus(err)
		if status == http.StatusInternalServerError {
			logrus.Error("Error creating vendor: ", err)
		}
		h.errorResponse(c, status, message)
		return
	}

	h.Cache.InvalidateVendor(c.Request.Context(), vendor.ID, vendor.Slug, vendor.Category)

	c.JSON(http.StatusCreated, dto.VendorDetailEnvelope{
		Success: true,
		Vendor:  buildVendorDetail(vendor, 0),
	})
}

// UpdateVendor обновляет атрибуты, адрес и ценовой диапазон
// @Summary Обновление поставщика
// @Description Частичное обновление; доступно владельцу и администратору
// @Tags Vendors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID поставщика"
// @Param request body dto.UpdateVendorRequest true "Изменяемые поля"
// @Success 200 {object} dto.VendorDetailEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/vendors/{id} [put]
func (h *Handler) UpdateVendor(c *gin.Context) {
	userID, userRole, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставщика")
		return
	}

	var req dto.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	vendor, err := h.Repository.UpdateVendor(c.Request.Context(), uint(id), userID, userRole, updateInputFromRequest(req))
	if err != nil {
		status, message := vendorErrorStatus(err)
		if status == http.StatusInternalServerError {
			logrus.Error("Error updating vendor: ", err)
		}
		h.errorResponse(c, status, message)
		return
	}

	h.Cache.InvalidateVendor(c.Request.Context(), vendor.ID, vendor.Slug, vendor.Category)

	favoriteCounts, _ := h.Repository.FavoriteCounts(c.Request.Context(), []uint{vendor.ID})
	c.JSON(http.StatusOK, dto.VendorDetailEnvelope{
		Success: true,
		Vendor:  buildVendorDetail(vendor, favoriteCounts[vendor.ID]),
	})
}

// DeleteVendor логически удаляет поставщика
// @Summary Удаление поставщика
// @Description Логическое удаление (active=false); доступно владельцу и администратору
// @Tags Vendors
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID поставщика"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/vendors/{id} [delete]
func (h *Handler) DeleteVendor(c *gin.Context) {
	userID, userRole, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставщика")
		return
	}

	// Slug и категория нужны для чистки кеша до скрытия записи
	vendor, lookupErr := h.Repository.GetVendorByLookup(c.Request.Context(), c.Param("id"))

	if err := h.Repository.SoftDeleteVendor(c.Request.Context(), uint(id), userID, userRole); err != nil {
		status, message := vendorErrorStatus(err)
		if status == http.StatusInternalServerError {
			logrus.Error("Error deleting vendor: ", err)
		}
		h.errorResponse(c, status, message)
		return
	}

	if lookupErr == nil {
		h.Cache.InvalidateVendor(c.Request.Context(), vendor.ID, vendor.Slug, vendor.Category)
	}

	h.successResponse(c, http.StatusOK, "Поставщик удалён из каталога", nil)
}

// UploadVendorImage загружает изображение портфолио
// @Summary Загрузка изображения портфолио
// @Description Загружает изображение в MinIO и добавляет его в портфолио поставщика
// @Tags Vendors
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID поставщика"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/vendors/{id}/images [post]
func (h *Handler) UploadVendorImage(c *gin.Context) {
	userID, userRole, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставщика")
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Файл не найден в запросе")
		return
	}

	openedFile, err := file.Open()
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}
	defer openedFile.Close()

	fileData, err := io.ReadAll(openedFile)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}

	var imageURL string
	if h.MinIOClient != nil {
		imageURL, err = h.MinIOClient.UploadPortfolioImage(fileData, file.Filename)
		if err != nil {
			logrus.Error("Error uploading to MinIO: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки изображения")
			return
		}
	} else {
		// Fallback если MinIO не настроен
		imageURL = "uploaded_" + file.Filename
	}

	if err := h.Repository.AddVendorImage(c.Request.Context(), uint(id), userID, userRole, imageURL); err != nil {
		status, message := vendorErrorStatus(err)
		if status == http.StatusInternalServerError {
			logrus.Error("Error saving vendor image: ", err)
		}
		h.errorResponse(c, status, message)
		return
	}

	if vendor, err := h.Repository.GetVendorByLookup(c.Request.Context(), c.Param("id")); err == nil {
		h.Cache.InvalidateVendor(c.Request.Context(), vendor.ID, vendor.Slug, vendor.Category)
	}

	h.successResponse(c, http.StatusOK, "Изображение добавлено в портфолио", gin.H{
		"image_url": imageURL,
	})
}

// vendorErrorStatus переводит ошибки хранилища в HTTP-статусы
func vendorErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Поставщик не найден"
	case errors.Is(err, repository.ErrAccessDenied):
		return http.StatusForbidden, "Нет прав на изменение этого поставщика"
	case errors.Is(err, repository.ErrVendorExists):
		return http.StatusConflict, "У пользователя уже есть профиль поставщика"
	case errors.Is(err, repository.ErrInvalidPriceRange):
		return http.StatusBadRequest, "Минимальная цена не может быть больше максимальной"
	case errors.Is(err, repository.ErrSlugExhausted):
		return http.StatusConflict, "Не удалось подобрать свободный адрес страницы"
	default:
		return http.StatusInternalServerError, "Внутренняя ошибка сервера"
	}
}

// ============ Преобразование моделей в DTO ============

func buildVendorResponse(v ds.Vendor, favoriteCount int64) dto.VendorResponse {
	resp := dto.VendorResponse{
		ID:               v.ID,
		Slug:             v.Slug,
		Name:             v.Name,
		Category:         v.Category,
		ShortDescription: v.ShortDescription,
		WorkingRadius:    v.WorkingRadius,
		Verified:         v.Verified,
		Featured:         v.Featured,
		Premium:          v.Premium,
		Features:         make([]string, len(v.Features)),
		Specialties:      make([]string, len(v.Specialties)),
		Images:           make([]string, len(v.Images)),
		Rating:           rating.Aggregate(v.Reviews),
		FavoriteCount:    favoriteCount,
		CreatedAt:        v.CreatedAt,
	}

	for i, f := range v.Features {
		resp.Features[i] = f.Name
	}
	for i, s := range v.Specialties {
		resp.Specialties[i] = s.Name
	}
	for i, img := range v.Images {
		resp.Images[i] = img.URL
	}

	if v.Address != nil {
		resp.Address = &dto.AddressResponse{
			Street:     v.Address.Street,
			City:       v.Address.City,
			PostalCode: v.Address.PostalCode,
			Region:     v.Address.Region,
			Country:    v.Address.Country,
		}
	}
	if v.PriceRange != nil {
		resp.PriceRange = &dto.PriceRangeResponse{
			MinPrice: v.PriceRange.MinPrice,
			MaxPrice: v.PriceRange.MaxPrice,
			Currency: v.PriceRange.Currency,
			Unit:     v.PriceRange.Unit,
		}
	}

	return resp
}

func buildVendorDetail(v *ds.Vendor, favoriteCount int64) dto.VendorDetailResponse {
	detail := dto.VendorDetailResponse{
		VendorResponse: buildVendorResponse(*v, favoriteCount),
		Description:    v.Description,
		LegalName:      v.LegalName,
		RegistrationID: v.RegistrationID,
		Website:        v.Website,
		Email:          v.Email,
		Phone:          v.Phone,
		Services:       make([]dto.ServiceResponse, len(v.Services)),
		Reviews:        make([]dto.ReviewResponse, len(v.Reviews)),
	}

	for i, s := range v.Services {
		includes := make([]string, len(s.Includes))
		for j, inc := range s.Includes {
			includes[j] = inc.Label
		}
		detail.Services[i] = dto.ServiceResponse{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Price:       s.Price,
			Includes:    includes,
		}
	}

	for i, r := range v.Reviews {
		author := "unknown"
		if r.User.Login != "" {
			author = r.User.Login
		}
		detail.Reviews[i] = dto.ReviewResponse{
			ID:              r.ID,
			Author:          author,
			Rating:          r.Rating,
			Quality:         r.Quality,
			Communication:   r.Communication,
			Value:           r.Value,
			Professionalism: r.Professionalism,
			Comment:         r.Comment,
			CreatedAt:       r.CreatedAt,
		}
	}

	return detail
}

func createInputFromRequest(req dto.CreateVendorRequest) repository.CreateVendorInput {
	in := repository.CreateVendorInput{
		Name:             req.Name,
		Category:         req.Category,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		LegalName:        req.LegalName,
		RegistrationID:   req.RegistrationID,
		Website:          req.Website,
		Email:            req.Email,
		Phone:            req.Phone,
		WorkingRadius:    req.WorkingRadius,
		Features:         req.Features,
		Specialties:      req.Specialties,
	}

	if req.Address != nil {
		in.Address = &repository.AddressInput{
			Street:     req.Address.Street,
			City:       req.Address.City,
			PostalCode: req.Address.PostalCode,
			Region:     req.Address.Region,
			Country:    req.Address.Country,
		}
	}
	if req.PriceRange != nil {
		in.PriceRange = &repository.PriceRangeInput{
			MinPrice: req.PriceRange.MinPrice,
			MaxPrice: req.PriceRange.MaxPrice,
			Currency: req.PriceRange.Currency,
			Unit:     req.PriceRange.Unit,
		}
	}
	for _, s := range req.Services {
		in.Services = append(in.Services, repository.ServiceInput{
			Name:        s.Name,
			Description: s.Description,
			Price:       s.Price,
			Includes:    s.Includes,
		})
	}

	return in
}

func updateInputFromRequest(req dto.UpdateVendorRequest) repository.UpdateVendorInput {
	in := repository.UpdateVendorInput{
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		LegalName:        req.LegalName,
		RegistrationID:   req.RegistrationID,
		Website:          req.Website,
		Email:            req.Email,
		Phone:            req.Phone,
		WorkingRadius:    req.WorkingRadius,
	}

	if req.Address != nil {
		in.Address = &repository.AddressInput{
			Street:     req.Address.Street,
			City:       req.Address.City,
			PostalCode: req.Address.PostalCode,
			Region:     req.Address.Region,
			Country:    req.Address.Country,
		}
	}
	if req.PriceRange != nil {
		in.PriceRange = &repository.PriceRangeInput{
			MinPrice: req.PriceRange.MinPrice,
			MaxPrice: req.PriceRange.MaxPrice,
			Currency: req.PriceRange.Currency,
			Unit:     req.PriceRange.Unit,
		}
	}

	return in
}
