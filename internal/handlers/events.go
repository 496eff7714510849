package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"schedule_api/internal/auth"
	"schedule_api/internal/models"
	"schedule_api/internal/response"
	"schedule_api/internal/serialize"
	"schedule_api/internal/storage"
	"schedule_api/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HoldingRequest struct {
	PlaceID *uint  `json:"place_id"`
	SlotID  *uint  `json:"slot_id"`
	Date    string `json:"date" binding:"required"`
}

type EventRequest struct {
	ScheduleID   uint             `json:"schedule_id" binding:"required"`
	SubjectID    uint             `json:"subject_id" binding:"required"`
	KindID       uint             `json:"kind_id" binding:"required"`
	Participants []uint           `json:"participants"`
	HoldingInfo  []HoldingRequest `json:"holding_info"`
}

// buildHoldings валидирует и конвертирует переданную информацию о проведении.
func buildHoldings(c *gin.Context, reqs []HoldingRequest, authorID uint, now time.Time) ([]models.EventHolding, bool) {
	holdings := make([]models.EventHolding, 0, len(reqs))
	for _, hr := range reqs {
		date, err := time.Parse("2006-01-02", hr.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(
				response.CodeValidation, "Неверный формат даты проведения: "+hr.Date))
			return nil, false
		}
		if hr.PlaceID != nil {
			var count int64
			storage.DB.Model(&models.EventPlace{}).Where("id = ?", *hr.PlaceID).Count(&count)
			if count == 0 {
				c.JSON(http.StatusBadRequest, response.Error(
					response.CodeValidation, "Указанная аудитория не найдена"))
				return nil, false
			}
		}
		if hr.SlotID != nil {
			var count int64
			storage.DB.Model(&models.TimeSlot{}).Where("id = ?", *hr.SlotID).Count(&count)
			if count == 0 {
				c.JSON(http.StatusBadRequest, response.Error(
					response.CodeValidation, "Указанный временной слот не найден"))
				return nil, false
			}
		}
		holding := models.EventHolding{
			PlaceID: hr.PlaceID,
			SlotID:  hr.SlotID,
			Date:    date,
		}
		holding.AuthorID = &authorID
		holding.StampCreated(now)
		holdings = append(holdings, holding)
	}
	return holdings, true
}

// loadParticipants проверяет, что все переданные участники существуют.
func loadParticipants(c *gin.Context, ids []uint) ([]models.EventParticipant, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	var participants []models.EventParticipant
	if err := storage.DB.Where("id IN ?", ids).Find(&participants).Error; err != nil ||
		len(participants) != len(ids) {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Часть указанных участников не найдена"))
		return nil, false
	}
	return participants, true
}

func eventQuery(admin bool) *gorm.DB {
	query := storage.DB.Model(&models.Event{}).
		Preload("Subject").Preload("Kind").
		Preload("Participants").
		Preload("Holdings").Preload("Holdings.Place").Preload("Holdings.Slot")
	if admin {
		query = query.Preload("Author").
			Preload("Subject.Author").Preload("Kind.Author").
			Preload("Participants.Author").
			Preload("Holdings.Author").Preload("Holdings.Place.Author").Preload("Holdings.Slot.Author")
	}
	return query
}

// applyEventFilters накладывает параметры фильтрации списка занятий.
// Фильтры по датам, временам и аудиториям идут через подзапросы к holdings.
func applyEventFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	if v := c.Query("search"); v != "" {
		query = query.Where(
			"subject_id IN (SELECT id FROM subjects WHERE name ILIKE ?)", "%"+v+"%")
	}
	if v := c.Query("schedule"); v != "" {
		query = query.Where("schedule_id = ?", v)
	}
	if v := c.Query("date_from"); v != "" {
		query = query.Where(
			"id IN (SELECT event_id FROM event_holdings WHERE date >= ?)", v)
	}
	if v := c.Query("date_to"); v != "" {
		query = query.Where(
			"id IN (SELECT event_id FROM event_holdings WHERE date <= ?)", v)
	}
	if v := c.Query("time_from"); v != "" {
		query = query.Where(
			"id IN (SELECT event_id FROM event_holdings JOIN time_slots ON time_slots.id = event_holdings.slot_id WHERE time_slots.start_time >= ?)", v)
	}
	if v := c.Query("time_to"); v != "" {
		query = query.Where(
			"id IN (SELECT event_id FROM event_holdings JOIN time_slots ON time_slots.id = event_holdings.slot_id WHERE time_slots.start_time <= ?)", v)
	}
	if ids := c.QueryArray("participants"); len(ids) > 0 {
		query = query.Where(
			"id IN (SELECT event_id FROM event_members WHERE event_participant_id IN ?)", ids)
	}
	if ids := c.QueryArray("can_have_kind"); len(ids) > 0 {
		query = query.Where("kind_id IN ?", ids)
	}
	if ids := c.QueryArray("possible_rooms"); len(ids) > 0 {
		query = query.Where(
			"id IN (SELECT event_id FROM event_holdings WHERE place_id IN ?)", ids)
	}
	return query
}

// @Summary		Список занятий
// @Description	Возвращает занятия с вложенными предметом, типом, участниками и информацией о проведении
// @Tags			events
// @Produce		json
// @Param			search			query		string		false	"Поиск по названию предмета"
// @Param			schedule		query		int			false	"ID расписания"
// @Param			date_from		query		string		false	"Дата проведения не раньше (YYYY-MM-DD)"
// @Param			date_to			query		string		false	"Дата проведения не позже (YYYY-MM-DD)"
// @Param			time_from		query		string		false	"Начало не раньше (HH:MM)"
// @Param			time_to			query		string		false	"Начало не позже (HH:MM)"
// @Param			participants	query		[]int		false	"ID участников занятия"
// @Param			can_have_kind	query		[]int		false	"Допустимые типы занятия"
// @Param			possible_rooms	query		[]int		false	"Допустимые аудитории проведения"
// @Success		200				{object}	response.ListResponse
// @Router			/api/events [get]
func ListEvents(c *gin.Context) {
	admin := auth.IsAdmin(c)
	cacheable := !admin && len(c.Request.URL.Query()) == 0

	if cacheable && storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(ctx, cacheKeyEvents).Result(); err == nil && cached != "" {
			var envelope response.ListResponse
			if err := json.Unmarshal([]byte(cached), &envelope); err == nil {
				c.JSON(http.StatusOK, envelope)
				return
			}
		}
	}

	query := applyEventFilters(c, eventQuery(admin))

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении занятий"))
		return
	}

	items := make([]map[string]interface{}, 0, len(events))
	for i := range events {
		items = append(items, serialize.Event(&events[i], admin))
	}
	envelope := response.List(items)

	if cacheable && storage.RedisClient != nil {
		if raw, err := json.Marshal(envelope); err == nil {
			storage.RedisClient.Set(ctx, cacheKeyEvents, string(raw), time.Hour)
		}
	}

	c.JSON(http.StatusOK, envelope)
}

// @Summary		Занятие по ID
// @Tags			events
// @Produce		json
// @Param			id	path		int	true	"ID занятия"
// @Success		200	{object}	response.ListResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/events/{id} [get]
func GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	admin := auth.IsAdmin(c)

	var event models.Event
	if err := eventQuery(admin).First(&event, id).Error; err != nil {
		notFound(c, "Занятие")
		return
	}
	storage.TouchAccess(&event)

	c.JSON(http.StatusOK, response.Single(serialize.Event(&event, admin)))
}

// @Summary		Создание занятия
// @Description	Создает занятие вместе с участниками и информацией о проведении
// @Tags			events
// @Accept			json
// @Produce		json
// @Param			event	body		EventRequest	true	"Данные занятия"
// @Security		BearerAuth
// @Success		201		{object}	response.ListResponse
// @Failure		400		{object}	response.ErrorResponse
// @Router			/api/events [post]
func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var schedule models.Schedule
	if err := storage.DB.First(&schedule, req.ScheduleID).Error; err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Указанное расписание не найдено"))
		return
	}
	var subject models.Subject
	if err := storage.DB.First(&subject, req.SubjectID).Error; err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Указанный предмет не найден"))
		return
	}
	var kind models.EventKind
	if err := storage.DB.First(&kind, req.KindID).Error; err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Указанный тип занятия не найден"))
		return
	}

	participants, ok := loadParticipants(c, req.Participants)
	if !ok {
		return
	}
	userID := c.GetUint("userID")
	now := time.Now()
	holdings, ok := buildHoldings(c, req.HoldingInfo, userID, now)
	if !ok {
		return
	}

	event := models.Event{
		ScheduleID:   req.ScheduleID,
		SubjectID:    req.SubjectID,
		KindID:       req.KindID,
		Participants: participants,
		Holdings:     holdings,
	}
	event.AuthorID = &userID
	event.StampCreated(now)

	if err := storage.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании занятия"))
		return
	}

	storage.InvalidateCache(cacheKeyEvents, cacheKeySchedules)
	ws.HubInstance.NotifySchedule(event.ScheduleID, "event_created",
		map[string]interface{}{"event_id": event.ID})

	var created models.Event
	if err := eventQuery(true).First(&created, event.ID).Error; err != nil {
		created = event
	}
	c.JSON(http.StatusCreated, response.Single(serialize.Event(&created, true)))
}

// @Summary		Обновление занятия
// @Description	Полностью заменяет участников и информацию о проведении занятия
// @Tags			events
// @Accept			json
// @Produce		json
// @Param			id		path		int				true	"ID занятия"
// @Param			event	body		EventRequest	true	"Данные занятия"
// @Security		BearerAuth
// @Success		200		{object}	response.ListResponse
// @Failure		404		{object}	response.ErrorResponse
// @Router			/api/events/{id} [put]
func UpdateEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var event models.Event
	if err := storage.DB.First(&event, id).Error; err != nil {
		notFound(c, "Занятие")
		return
	}

	participants, ok := loadParticipants(c, req.Participants)
	if !ok {
		return
	}
	userID := c.GetUint("userID")
	now := time.Now()
	holdings, ok := buildHoldings(c, req.HoldingInfo, userID, now)
	if !ok {
		return
	}

	next := event
	next.ScheduleID = req.ScheduleID
	next.SubjectID = req.SubjectID
	next.KindID = req.KindID
	changed := !next.ContentEquals(&event)

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if changed {
			next.StampModified(now)
			if err := tx.Model(&next).Select(
				"schedule_id", "subject_id", "kind_id", "datemodified").
				Updates(&next).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&next).Association("Participants").Replace(participants); err != nil {
			return err
		}
		// Информация о проведении заменяется целиком.
		if err := tx.Where("event_id = ?", next.ID).
			Delete(&models.EventHolding{}).Error; err != nil {
			return err
		}
		for i := range holdings {
			holdings[i].EventID = next.ID
		}
		if len(holdings) > 0 {
			if err := tx.Create(&holdings).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при обновлении занятия"))
		return
	}

	storage.InvalidateCache(cacheKeyEvents, cacheKeySchedules)
	ws.HubInstance.NotifySchedule(next.ScheduleID, "event_updated",
		map[string]interface{}{"event_id": next.ID})

	var updated models.Event
	if err := eventQuery(true).First(&updated, next.ID).Error; err != nil {
		notFound(c, "Занятие")
		return
	}
	c.JSON(http.StatusOK, response.Single(serialize.Event(&updated, true)))
}

// @Summary		Удаление занятия
// @Tags			events
// @Produce		json
// @Param			id	path	int	true	"ID занятия"
// @Security		BearerAuth
// @Success		200	{object}	response.ResultResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/events/{id} [delete]
func DeleteEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var event models.Event
	if err := storage.DB.First(&event, id).Error; err != nil {
		notFound(c, "Занятие")
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM event_members WHERE event_id = ?", event.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении занятия"))
		return
	}

	storage.InvalidateCache(cacheKeyEvents, cacheKeySchedules)
	ws.HubInstance.NotifySchedule(event.ScheduleID, "event_deleted",
		map[string]interface{}{"event_id": event.ID})
	c.JSON(http.StatusOK, response.Result())
}
