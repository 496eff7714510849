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

type SubjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary		Список предметов
// @Description	Возвращает список предметов, поддерживается поиск по названию
// @Tags			subjects
// @Produce		json
// @Param			search	query		string	false	"Поиск по названию"
// @Success		200		{object}	response.ListResponse
// @Router			/api/subjects [get]
func ListSubjects(c *gin.Context) {
	admin := auth.IsAdmin(c)

	query := storage.DB.Model(&models.Subject{})
	if admin {
		query = query.Preload("Author")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var subjects []models.Subject
	if err := query.Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении предметов"))
		return
	}

	items := make([]map[string]interface{}, 0, len(subjects))
	for i := range subjects {
		items = append(items, serialize.Subject(&subjects[i], admin))
	}
	c.JSON(http.StatusOK, response.List(items))
}

// @Summary		Предмет по ID
// @Tags			subjects
// @Produce		json
// @Param			id	path		int	true	"ID предмета"
// @Success		200	{object}	response.ListResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/subjects/{id} [get]
func GetSubject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	admin := auth.IsAdmin(c)

	query := storage.DB
	if admin {
		query = query.Preload("Author")
	}
	var subject models.Subject
	if err := query.First(&subject, id).Error; err != nil {
		notFound(c, "Предмет")
		return
	}
	storage.TouchAccess(&subject)

	c.JSON(http.StatusOK, response.Single(serialize.Subject(&subject, admin)))
}

// @Summary		Создание предмета
// @Tags			subjects
// @Accept			json
// @Produce		json
// @Param			subject	body		SubjectRequest	true	"Данные предмета"
// @Security		BearerAuth
// @Success		201		{object}	response.ListResponse
// @Failure		400		{object}	response.ErrorResponse
// @Router			/api/subjects [post]
func CreateSubject(c *gin.Context) {
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	userID := c.GetUint("userID")
	subject := models.Subject{Name: req.Name}
	subject.AuthorID = &userID
	subject.StampCreated(time.Now())

	if err := storage.DB.Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании предмета"))
		return
	}

	c.JSON(http.StatusCreated, response.Single(serialize.Subject(&subject, true)))
}

// @Summary		Обновление предмета
// @Tags			subjects
// @Accept			json
// @Produce		json
// @Param			id		path		int				true	"ID предмета"
// @Param			subject	body		SubjectRequest	true	"Данные предмета"
// @Security		BearerAuth
// @Success		200		{object}	response.ListResponse
// @Failure		404		{object}	response.ErrorResponse
// @Router			/api/subjects/{id} [put]
func UpdateSubject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var subject models.Subject
	if err := storage.DB.First(&subject, id).Error; err != nil {
		notFound(c, "Предмет")
		return
	}

	// Дата изменения сдвигается только при реальном изменении полей.
	next := subject
	next.Name = req.Name
	if !next.ContentEquals(&subject) {
		next.StampModified(time.Now())
		if err := storage.DB.Save(&next).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(
				response.CodeUnknown, "Ошибка при обновлении предмета"))
			return
		}
	}

	c.JSON(http.StatusOK, response.Single(serialize.Subject(&next, true)))
}

// @Summary		Удаление предмета
// @Description	Предмет нельзя удалить, пока на него ссылаются занятия
// @Tags			subjects
// @Produce		json
// @Param			id	path	int	true	"ID предмета"
// @Security		BearerAuth
// @Success		200	{object}	response.ResultResponse
// @Failure		400	{object}	response.ErrorResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/subjects/{id} [delete]
func DeleteSubject(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var subject models.Subject
	if err := storage.DB.First(&subject, id).Error; err != nil {
		notFound(c, "Предмет")
		return
	}

	if err := storage.DB.Delete(&subject).Error; err != nil {
		if isFKViolation(err) {
			c.JSON(http.StatusBadRequest, response.Error(
				response.CodeValidation, "Предмет используется занятиями и не может быть удалён"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении предмета"))
		return
	}

	c.JSON(http.StatusOK, response.Result())
}
