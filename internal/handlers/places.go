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

type PlaceRequest struct {
	Building string `json:"building" binding:"required"`
	Room     string `json:"room" binding:"required"`
}

// @Summary		Список мест проведения
// @Description	Возвращает список мест проведения, поддерживается поиск по корпусу и аудитории
// @Tags			lessonrooms
// @Produce		json
// @Param			search	query		string	false	"Поиск по корпусу или аудитории"
// @Success		200		{object}	response.ListResponse
// @Router			/api/lessonrooms [get]
func ListPlaces(c *gin.Context) {
	admin := auth.IsAdmin(c)

	query := storage.DB.Model(&models.EventPlace{})
	if admin {
		query = query.Preload("Author")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("building ILIKE ? OR room ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var places []models.EventPlace
	if err := query.Find(&places).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении мест проведения"))
		return
	}

	items := make([]map[string]interface{}, 0, len(places))
	for i := range places {
		items = append(items, serialize.EventPlace(&places[i], admin))
	}
	c.JSON(http.StatusOK, response.List(items))
}

// @Summary		Место проведения по ID
// @Tags			lessonrooms
// @Produce		json
// @Param			id	path		int	true	"ID места проведения"
// @Success		200	{object}	response.ListResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/lessonrooms/{id} [get]
func GetPlace(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	admin := auth.IsAdmin(c)

	query := storage.DB
	if admin {
		query = query.Preload("Author")
	}
	var place models.EventPlace
	if err := query.First(&place, id).Error; err != nil {
		notFound(c, "Место проведения")
		return
	}
	storage.TouchAccess(&place)

	c.JSON(http.StatusOK, response.Single(serialize.EventPlace(&place, admin)))
}

// @Summary		Создание места проведения
// @Tags			lessonrooms
// @Accept			json
// @Produce		json
// @Param			place	body		PlaceRequest	true	"Данные места проведения"
// @Security		BearerAuth
// @Success		201		{object}	response.ListResponse
// @Failure		400		{object}	response.ErrorResponse
// @Router			/api/lessonrooms [post]
func CreatePlace(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	userID := c.GetUint("userID")
	place := models.EventPlace{Building: req.Building, Room: req.Room}
	place.AuthorID = &userID
	place.StampCreated(time.Now())

	if err := storage.DB.Create(&place).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании места проведения"))
		return
	}

	c.JSON(http.StatusCreated, response.Single(serialize.EventPlace(&place, true)))
}

// @Summary		Обновление места проведения
// @Tags			lessonrooms
// @Accept			json
// @Produce		json
// @Param			id		path		int				true	"ID места проведения"
// @Param			place	body		PlaceRequest	true	"Данные места проведения"
// @Security		BearerAuth
// @Success		200		{object}	response.ListResponse
// @Failure		404		{object}	response.ErrorResponse
// @Router			/api/lessonrooms/{id} [put]
func UpdatePlace(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var place models.EventPlace
	if err := storage.DB.First(&place, id).Error; err != nil {
		notFound(c, "Место проведения")
		return
	}

	next := place
	next.Building = req.Building
	next.Room = req.Room
	if !next.ContentEquals(&place) {
		next.StampModified(time.Now())
		if err := storage.DB.Save(&next).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(
				response.CodeUnknown, "Ошибка при обновлении места проведения"))
			return
		}
	}

	c.JSON(http.StatusOK, response.Single(serialize.EventPlace(&next, true)))
}

// @Summary		Удаление места проведения
// @Description	У исторических проведений занятий ссылка на удалённое место обнуляется
// @Tags			lessonrooms
// @Produce		json
// @Param			id	path	int	true	"ID места проведения"
// @Security		BearerAuth
// @Success		200	{object}	response.ResultResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/lessonrooms/{id} [delete]
func DeletePlace(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var place models.EventPlace
	if err := storage.DB.First(&place, id).Error; err != nil {
		notFound(c, "Место проведения")
		return
	}

	if err := storage.DB.Delete(&place).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении места проведения"))
		return
	}

	c.JSON(http.StatusOK, response.Result())
}
