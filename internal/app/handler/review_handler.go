package handler

import (
	"errors"
	"net/http"
	"strconv"

	"eventmarket-backend/internal/app/dto"
	"eventmarket-backend/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CreateReview добавляет отзыв о поставщике
// @Summary Создание отзыва
// @Description Добавляет отзыв с оценками по пяти шкалам; один отзыв на пользователя
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID поставщика"
// @Param request body dto.CreateReviewRequest true "Оценки и комментарий"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/vendors/{id}/reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	vendorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || vendorID == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставщика")
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	review, err := h.Repository.CreateReview(c.Request.Context(), uint(vendorID), userID, repository.ReviewInput{
		Rating:          req.Rating,
		Quality:         req.Quality,
		Communication:   req.Communication,
		Value:           req.Value,
		Professionalism: req.Professionalism,
		Comment:         req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.errorResponse(c, http.StatusNotFound, "Поставщик не найден")
		case errors.Is(err, repository.ErrReviewExists):
			h.errorResponse(c, http.StatusConflict, "Вы уже оставили отзыв этому поставщику")
		default:
			logrus.Error("Error creating review: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка создания отзыва")
		}
		return
	}

	// Рейтинг в кешированных ответах изменился
	if vendor, err := h.Repository.GetVendorByLookup(c.Request.Context(), c.Param("id")); err == nil {
		h.Cache.InvalidateVendor(c.Request.Context(), vendor.ID, vendor.Slug, vendor.Category)
	}

	h.successResponse(c, http.StatusCreated, "Отзыв добавлен", gin.H{
		"review_id": review.ID,
	})
}

// ToggleFavorite переключает закладку поставщика
// @Summary Закладка поставщика
// @Description Добавляет поставщика в закладки или убирает из них
// @Tags Favorites
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID поставщика"
// @Success 200 {object} dto.FavoriteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/vendors/{id}/favorite [post]
func (h *Handler) ToggleFavorite(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	vendorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || vendorID == 0 {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID поставщика")
		return
	}

	favorited, err := h.Repository.ToggleFavorite(c.Request.Context(), uint(vendorID), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errorResponse(c, http.StatusNotFound, "Поставщик не найден")
			return
		}
		logrus.Error("Error toggling favorite: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка изменения закладки")
		return
	}

	c.JSON(http.StatusOK, dto.FavoriteResponse{
		Success:     true,
		IsFavorited: favorited,
	})
}
