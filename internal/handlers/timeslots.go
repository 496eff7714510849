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

// TimeSlotRequest принимает времена массивами [часы, минуты].
type TimeSlotRequest struct {
	StartTime []int `json:"start_time" binding:"required,len=2"`
	EndTime   []int `json:"end_time" binding:"omitempty,len=2"`
}

func (req *TimeSlotRequest) toModel() (models.TimeSlot, error) {
	slot := models.TimeSlot{
		StartTime: models.FormatClock(req.StartTime[0], req.StartTime[1]),
	}
	if len(req.EndTime) == 2 {
		end := models.FormatClock(req.EndTime[0], req.EndTime[1])
		slot.EndTime = &end
	}
	return slot, slot.Validate()
}

// @Summary		Список временных слотов
// @Tags			timeslots
// @Produce		json
// @Success		200	{object}	response.ListResponse
// @Router			/api/timeslots [get]
func ListTimeSlots(c *gin.Context) {
	admin := auth.IsAdmin(c)

	query := storage.DB.Model(&models.TimeSlot{})
	if admin {
		query = query.Preload("Author")
	}

	var slots []models.TimeSlot
	if err := query.Order("start_time").Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении временных слотов"))
		return
	}

	items := make([]map[string]interface{}, 0, len(slots))
	for i := range slots {
		items = append(items, serialize.TimeSlot(&slots[i], admin))
	}
	c.JSON(http.StatusOK, response.List(items))
}

// @Summary		Временной слот по ID
// @Tags			timeslots
// @Produce		json
// @Param			id	path		int	true	"ID слота"
// @Success		200	{object}	response.ListResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/timeslots/{id} [get]
func GetTimeSlot(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	admin := auth.IsAdmin(c)

	query := storage.DB
	if admin {
		query = query.Preload("Author")
	}
	var slot models.TimeSlot
	if err := query.First(&slot, id).Error; err != nil {
		notFound(c, "Временной слот")
		return
	}
	storage.TouchAccess(&slot)

	c.JSON(http.StatusOK, response.Single(serialize.TimeSlot(&slot, admin)))
}

// @Summary		Создание временного слота
// @Description	Время окончания, если задано, должно быть строго позже времени начала
// @Tags			timeslots
// @Accept			json
// @Produce		json
// @Param			slot	body		TimeSlotRequest	true	"Времена [часы, минуты]"
// @Security		BearerAuth
// @Success		201		{object}	response.ListResponse
// @Failure		400		{object}	response.ErrorResponse
// @Router			/api/timeslots [post]
func CreateTimeSlot(c *gin.Context) {
	var req TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	slot, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, err.Error()))
		return
	}

	userID := c.GetUint("userID")
	slot.AuthorID = &userID
	slot.StampCreated(time.Now())

	if err := storage.DB.Create(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании временного слота"))
		return
	}

	c.JSON(http.StatusCreated, response.Single(serialize.TimeSlot(&slot, true)))
}

// @Summary		Обновление временного слота
// @Tags			timeslots
// @Accept			json
// @Produce		json
// @Param			id		path		int				true	"ID слота"
// @Param			slot	body		TimeSlotRequest	true	"Времена [часы, минуты]"
// @Security		BearerAuth
// @Success		200		{object}	response.ListResponse
// @Failure		404		{object}	response.ErrorResponse
// @Router			/api/timeslots/{id} [put]
func UpdateTimeSlot(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	candidate, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, err.Error()))
		return
	}

	var slot models.TimeSlot
	if err := storage.DB.First(&slot, id).Error; err != nil {
		notFound(c, "Временной слот")
		return
	}

	next := slot
	next.StartTime = candidate.StartTime
	next.EndTime = candidate.EndTime
	if !next.ContentEquals(&slot) {
		next.StampModified(time.Now())
		if err := storage.DB.Save(&next).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(
				response.CodeUnknown, "Ошибка при обновлении временного слота"))
			return
		}
	}

	c.JSON(http.StatusOK, response.Single(serialize.TimeSlot(&next, true)))
}

// @Summary		Удаление временного слота
// @Tags			timeslots
// @Produce		json
// @Param			id	path	int	true	"ID слота"
// @Security		BearerAuth
// @Success		200	{object}	response.ResultResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/timeslots/{id} [delete]
func DeleteTimeSlot(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var slot models.TimeSlot
	if err := storage.DB.First(&slot, id).Error; err != nil {
		notFound(c, "Временной слот")
		return
	}

	if err := storage.DB.Delete(&slot).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении временного слота"))
		return
	}

	c.JSON(http.StatusOK, response.Result())
}
