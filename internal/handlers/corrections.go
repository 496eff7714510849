package handlers

import (
	"net/http"
	"time"

	"schedule_api/internal/auth"
	"schedule_api/internal/models"
	"schedule_api/internal/response"
	"schedule_api/internal/serialize"
	"schedule_api/internal/storage"

	"github.com/gin-gonic/gin"
)

type OverrideRequest struct {
	DaySource      string `json:"day_source" binding:"required"`
	DayDestination string `json:"day_destination" binding:"required"`
}

// @Summary		Список переносов дней
// @Description	Возвращает действующие корректировки расписания: переносы занятий одного дня на другую дату
// @Tags			corrections
// @Produce		json
// @Success		200	{object}	response.ListResponse
// @Router			/api/corrections/overrides [get]
func ListOverrides(c *gin.Context) {
	admin := auth.IsAdmin(c)

	query := storage.DB.Model(&models.DayDateOverride{}).Order("day_source")
	if admin {
		query = query.Preload("Author")
	}
	var overrides []models.DayDateOverride
	if err := query.Find(&overrides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении переносов"))
		return
	}

	items := make([]map[string]interface{}, 0, len(overrides))
	for i := range overrides {
		items = append(items, serialize.DayDateOverride(&overrides[i], admin))
	}
	c.JSON(http.StatusOK, response.List(items))
}

// @Summary		Создание переноса дня
// @Tags			corrections
// @Accept			json
// @Produce		json
// @Param			override	body		OverrideRequest	true	"Даты переноса"
// @Security		BearerAuth
// @Success		201			{object}	response.ListResponse
// @Failure		400			{object}	response.ErrorResponse
// @Router			/api/corrections/overrides [post]
func CreateOverride(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	source, err := time.Parse("2006-01-02", req.DaySource)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Неверный формат даты day_source"))
		return
	}
	destination, err := time.Parse("2006-01-02", req.DayDestination)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Неверный формат даты day_destination"))
		return
	}

	userID := c.GetUint("userID")
	override := models.DayDateOverride{
		DaySource:      source,
		DayDestination: destination,
	}
	override.AuthorID = &userID
	override.StampCreated(time.Now())

	if err := storage.DB.Create(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании переноса"))
		return
	}

	c.JSON(http.StatusCreated, response.Single(serialize.DayDateOverride(&override, true)))
}

// @Summary		Удаление переноса дня
// @Tags			corrections
// @Produce		json
// @Param			id	path	int	true	"ID переноса"
// @Security		BearerAuth
// @Success		200	{object}	response.ResultResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/corrections/overrides/{id} [delete]
func DeleteOverride(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var override models.DayDateOverride
	if err := storage.DB.First(&override, id).Error; err != nil {
		notFound(c, "Перенос")
		return
	}

	if err := storage.DB.Delete(&override).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении переноса"))
		return
	}
	c.JSON(http.StatusOK, response.Result())
}
