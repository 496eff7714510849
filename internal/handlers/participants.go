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

type ParticipantRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required,oneof=student teacher assistant"`
}

// listParticipants отдаёт участников с перечисленными ролями.
// Группы и преподаватели — это одна сущность с разными ролями.
func listParticipants(c *gin.Context, roles []models.Role) {
	admin := auth.IsAdmin(c)

	query := storage.DB.Model(&models.EventParticipant{}).Where("role IN ?", roles)
	if admin {
		query = query.Preload("Author")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var participants []models.EventParticipant
	if err := query.Find(&participants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении участников"))
		return
	}

	items := make([]map[string]interface{}, 0, len(participants))
	for i := range participants {
		items = append(items, serialize.EventParticipant(&participants[i], admin))
	}
	c.JSON(http.StatusOK, response.List(items))
}

// @Summary		Список групп
// @Description	Участники занятий в роли студентов, поддерживается поиск по названию
// @Tags			groups
// @Produce		json
// @Param			search	query		string	false	"Поиск по названию"
// @Success		200		{object}	response.ListResponse
// @Router			/api/groups [get]
func ListGroups(c *gin.Context) {
	listParticipants(c, []models.Role{models.RoleStudent})
}

// @Summary		Список преподавателей
// @Description	Участники занятий в ролях teacher и assistant, поддерживается поиск по имени
// @Tags			teachers
// @Produce		json
// @Param			search	query		string	false	"Поиск по имени"
// @Success		200		{object}	response.ListResponse
// @Router			/api/teachers [get]
func ListTeachers(c *gin.Context) {
	listParticipants(c, []models.Role{models.RoleTeacher, models.RoleAssistant})
}

// @Summary		Участник по ID
// @Tags			groups
// @Produce		json
// @Param			id	path		int	true	"ID участника"
// @Success		200	{object}	response.ListResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/participants/{id} [get]
func GetParticipant(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	admin := auth.IsAdmin(c)

	query := storage.DB
	if admin {
		query = query.Preload("Author")
	}
	var participant models.EventParticipant
	if err := query.First(&participant, id).Error; err != nil {
		notFound(c, "Участник")
		return
	}
	storage.TouchAccess(&participant)

	c.JSON(http.StatusOK, response.Single(serialize.EventParticipant(&participant, admin)))
}

// @Summary		Создание участника
// @Tags			groups
// @Accept			json
// @Produce		json
// @Param			participant	body		ParticipantRequest	true	"Данные участника"
// @Security		BearerAuth
// @Success		201			{object}	response.ListResponse
// @Failure		400			{object}	response.ErrorResponse
// @Router			/api/participants [post]
func CreateParticipant(c *gin.Context) {
	var req ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	userID := c.GetUint("userID")
	participant := models.EventParticipant{Name: req.Name, Role: models.Role(req.Role)}
	participant.AuthorID = &userID
	participant.StampCreated(time.Now())

	if err := storage.DB.Create(&participant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании участника"))
		return
	}

	c.JSON(http.StatusCreated, response.Single(serialize.EventParticipant(&participant, true)))
}

// @Summary		Обновление участника
// @Tags			groups
// @Accept			json
// @Produce		json
// @Param			id			path		int					true	"ID участника"
// @Param			participant	body		ParticipantRequest	true	"Данные участника"
// @Security		BearerAuth
// @Success		200			{object}	response.ListResponse
// @Failure		404			{object}	response.ErrorResponse
// @Router			/api/participants/{id} [put]
func UpdateParticipant(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var participant models.EventParticipant
	if err := storage.DB.First(&participant, id).Error; err != nil {
		notFound(c, "Участник")
		return
	}

	next := participant
	next.Name = req.Name
	next.Role = models.Role(req.Role)
	if !next.ContentEquals(&participant) {
		next.StampModified(time.Now())
		if err := storage.DB.Save(&next).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(
				response.CodeUnknown, "Ошибка при обновлении участника"))
			return
		}
	}

	c.JSON(http.StatusOK, response.Single(serialize.EventParticipant(&next, true)))
}

// @Summary		Удаление участника
// @Description	Связи занятий с удалённым участником снимаются, занятия сохраняются
// @Tags			groups
// @Produce		json
// @Param			id	path	int	true	"ID участника"
// @Security		BearerAuth
// @Success		200	{object}	response.ResultResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/participants/{id} [delete]
func DeleteParticipant(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var participant models.EventParticipant
	if err := storage.DB.First(&participant, id).Error; err != nil {
		notFound(c, "Участник")
		return
	}

	// Сначала снимаем связи many2many, затем удаляем саму запись.
	if err := storage.DB.Exec(
		"DELETE FROM event_members WHERE event_participant_id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении участника"))
		return
	}
	if err := storage.DB.Delete(&participant).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении участника"))
		return
	}

	c.JSON(http.StatusOK, response.Result())
}
