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

type ScheduleRequest struct {
	Faculty  string `json:"faculty" binding:"required"`
	Scope    string `json:"scope" binding:"required,oneof=bachelor master postgraduate consultation"`
	Course   int    `json:"course" binding:"required,min=1"`
	Semester int    `json:"semester" binding:"required,min=1"`
	Years    string `json:"years" binding:"required"`
}

// scheduleDateRange — вычисленные даты первого и последнего занятия.
type scheduleDateRange struct {
	ScheduleID uint
	MinDate    *time.Time
	MaxDate    *time.Time
}

// scheduleDateRanges собирает диапазоны дат проведения занятий одним
// сгруппированным запросом по всем расписаниям.
func scheduleDateRanges(db *gorm.DB) map[uint]scheduleDateRange {
	var ranges []scheduleDateRange
	db.Table("event_holdings").
		Select("events.schedule_id AS schedule_id, MIN(event_holdings.date) AS min_date, MAX(event_holdings.date) AS max_date").
		Joins("JOIN events ON events.id = event_holdings.event_id").
		Group("events.schedule_id").
		Scan(&ranges)

	out := make(map[uint]scheduleDateRange, len(ranges))
	for _, r := range ranges {
		out[r.ScheduleID] = r
	}
	return out
}

func scheduleItem(s *models.Schedule, ranges map[uint]scheduleDateRange, admin bool) map[string]interface{} {
	var start, finish *string
	if r, ok := ranges[s.ID]; ok {
		if r.MinDate != nil {
			v := r.MinDate.Format("2006-01-02")
			start = &v
		}
		if r.MaxDate != nil {
			v := r.MaxDate.Format("2006-01-02")
			finish = &v
		}
	}
	return serialize.Schedule(s, start, finish, admin)
}

// applyScheduleFilters накладывает параметры фильтрации списка расписаний.
func applyScheduleFilters(c *gin.Context, query *gorm.DB) *gorm.DB {
	if v := c.Query("search"); v != "" {
		query = query.Where("faculty ILIKE ? OR years ILIKE ?", "%"+v+"%", "%"+v+"%")
	}
	if v := c.Query("faculty"); v != "" {
		query = query.Where("faculty ILIKE ?", "%"+v+"%")
	}
	if v := c.Query("scope"); v != "" {
		query = query.Where("scope = ?", v)
	}
	if v := c.Query("course"); v != "" {
		query = query.Where("course = ?", v)
	}
	if v := c.Query("semester"); v != "" {
		query = query.Where("semester = ?", v)
	}
	if v := c.Query("years"); v != "" {
		query = query.Where("years = ?", v)
	}
	if ids := c.QueryArray("has_events"); len(ids) > 0 {
		query = query.Where("id IN (SELECT schedule_id FROM events WHERE id IN ?)", ids)
	}
	return query
}

// @Summary		Список расписаний
// @Description	Возвращает список расписаний с вычисленными датами первого и последнего занятия. Поддерживаются поиск и фильтры
// @Tags			schedules
// @Produce		json
// @Param			search		query		string	false	"Поиск по факультету и учебному году"
// @Param			faculty		query		string	false	"Фильтр по факультету"
// @Param			scope		query		string	false	"bachelor, master, postgraduate или consultation"
// @Param			course		query		int		false	"Номер курса"
// @Param			semester	query		int		false	"Номер семестра"
// @Param			has_events	query		[]int	false	"ID занятий, содержащихся в расписаниях"
// @Success		200			{object}	response.ListResponse
// @Router			/api/schedules [get]
func ListSchedules(c *gin.Context) {
	admin := auth.IsAdmin(c)
	cacheable := !admin && len(c.Request.URL.Query()) == 0

	// Полный нефильтрованный список кэшируется в Redis.
	if cacheable && storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(ctx, cacheKeySchedules).Result(); err == nil && cached != "" {
			var envelope response.ListResponse
			if err := json.Unmarshal([]byte(cached), &envelope); err == nil {
				c.JSON(http.StatusOK, envelope)
				return
			}
		}
	}

	query := storage.DB.Model(&models.Schedule{})
	if admin {
		query = query.Preload("Author")
	}
	query = applyScheduleFilters(c, query)

	var schedules []models.Schedule
	if err := query.Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении расписаний"))
		return
	}

	ranges := scheduleDateRanges(storage.DB)
	items := make([]map[string]interface{}, 0, len(schedules))
	for i := range schedules {
		items = append(items, scheduleItem(&schedules[i], ranges, admin))
	}
	envelope := response.List(items)

	if cacheable && storage.RedisClient != nil {
		if raw, err := json.Marshal(envelope); err == nil {
			storage.RedisClient.Set(ctx, cacheKeySchedules, string(raw), time.Hour)
		}
	}

	c.JSON(http.StatusOK, envelope)
}

// @Summary		Расписание по ID
// @Tags			schedules
// @Produce		json
// @Param			id	path		int	true	"ID расписания"
// @Success		200	{object}	response.ListResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/schedules/{id} [get]
func GetSchedule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	admin := auth.IsAdmin(c)

	query := storage.DB
	if admin {
		query = query.Preload("Author")
	}
	var schedule models.Schedule
	if err := query.First(&schedule, id).Error; err != nil {
		notFound(c, "Расписание")
		return
	}
	storage.TouchAccess(&schedule)

	ranges := scheduleDateRanges(storage.DB)
	c.JSON(http.StatusOK, response.Single(scheduleItem(&schedule, ranges, admin)))
}

// @Summary		Создание расписания
// @Tags			schedules
// @Accept			json
// @Produce		json
// @Param			schedule	body		ScheduleRequest	true	"Данные расписания"
// @Security		BearerAuth
// @Success		201			{object}	response.ListResponse
// @Failure		400			{object}	response.ErrorResponse
// @Router			/api/schedules [post]
func CreateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	userID := c.GetUint("userID")
	schedule := models.Schedule{
		Faculty:  req.Faculty,
		Scope:    models.Scope(req.Scope),
		Course:   req.Course,
		Semester: req.Semester,
		Years:    req.Years,
	}
	schedule.AuthorID = &userID
	schedule.StampCreated(time.Now())

	if err := storage.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании расписания"))
		return
	}

	storage.InvalidateCache(cacheKeySchedules)
	c.JSON(http.StatusCreated, response.Single(scheduleItem(&schedule, nil, true)))
}

// @Summary		Обновление расписания
// @Tags			schedules
// @Accept			json
// @Produce		json
// @Param			id			path		int				true	"ID расписания"
// @Param			schedule	body		ScheduleRequest	true	"Данные расписания"
// @Security		BearerAuth
// @Success		200			{object}	response.ListResponse
// @Failure		404			{object}	response.ErrorResponse
// @Router			/api/schedules/{id} [put]
func UpdateSchedule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var schedule models.Schedule
	if err := storage.DB.First(&schedule, id).Error; err != nil {
		notFound(c, "Расписание")
		return
	}

	next := schedule
	next.Faculty = req.Faculty
	next.Scope = models.Scope(req.Scope)
	next.Course = req.Course
	next.Semester = req.Semester
	next.Years = req.Years
	if !next.ContentEquals(&schedule) {
		next.StampModified(time.Now())
		if err := storage.DB.Save(&next).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(
				response.CodeUnknown, "Ошибка при обновлении расписания"))
			return
		}
		storage.InvalidateCache(cacheKeySchedules)
		ws.HubInstance.NotifySchedule(next.ID, "schedule_updated", nil)
	}

	ranges := scheduleDateRanges(storage.DB)
	c.JSON(http.StatusOK, response.Single(scheduleItem(&next, ranges, true)))
}

// @Summary		Удаление расписания
// @Description	Вместе с расписанием удаляются принадлежащие ему занятия
// @Tags			schedules
// @Produce		json
// @Param			id	path	int	true	"ID расписания"
// @Security		BearerAuth
// @Success		200	{object}	response.ResultResponse
// @Failure		404	{object}	response.ErrorResponse
// @Router			/api/schedules/{id} [delete]
func DeleteSchedule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var schedule models.Schedule
	if err := storage.DB.First(&schedule, id).Error; err != nil {
		notFound(c, "Расписание")
		return
	}

	if err := storage.DB.Delete(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при удалении расписания"))
		return
	}

	storage.InvalidateCache(cacheKeySchedules, cacheKeyEvents)
	ws.HubInstance.NotifySchedule(schedule.ID, "schedule_deleted", nil)
	c.JSON(http.StatusOK, response.Result())
}
