package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"schedule_api/internal/auth"
	"schedule_api/internal/importer"
	"schedule_api/internal/models"
	"schedule_api/internal/response"
	"schedule_api/internal/storage"
	"schedule_api/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// writeImportLog фиксирует результат импорта в журнале. Ошибка записи журнала
// не влияет на ответ: сам импорт уже зафиксирован в базе.
func writeImportLog(raw []byte, rep *importer.Report, authorID *uint, errMsg string) {
	logEntry := models.ImportLog{
		BatchID:  rep.BatchID,
		State:    string(rep.State),
		Message:  errMsg,
		Payload:  datatypes.JSON(raw),
		AuthorID: authorID,
	}
	if counts, err := json.Marshal(rep.Counts); err == nil {
		logEntry.Counts = datatypes.JSON(counts)
	}
	storage.DB.Create(&logEntry)
}

// @Summary		Импорт данных из JSON
// @Description	Идемпотентный массовый импорт: записи сопоставляются по idnumber, существующие обновляются, новые создаются. Доступно только администраторам
// @Tags			import
// @Accept			json
// @Produce		json
// @Param			payload	body		importer.Payload	true	"Партия импорта"
// @Security		BearerAuth
// @Success		200		{object}	response.ResultResponse
// @Failure		400		{object}	response.ErrorResponse
// @Failure		403		{object}	response.ErrorResponse
// @Router			/api/import/json [post]
func ImportJSON(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Не удалось прочитать тело запроса"))
		return
	}

	var payload importer.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Некорректный JSON: "+err.Error()))
		return
	}

	// Автором импортированных записей становится сервисный аккаунт,
	// а не администратор, запустивший импорт.
	svc, err := auth.ServiceAccount("schedule-importer")
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при подготовке сервисного аккаунта"))
		return
	}

	rep, runErr := importer.New(storage.DB, &svc.ID).Run(&payload)
	if runErr != nil {
		writeImportLog(raw, rep, &svc.ID, runErr.Error())

		var impErr *importer.ImportError
		if errors.As(runErr, &impErr) {
			c.JSON(http.StatusBadRequest, response.Error(impErr.Code, impErr.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при выполнении импорта"))
		return
	}

	writeImportLog(raw, rep, &svc.ID, "")
	storage.InvalidateCache(cacheKeySchedules, cacheKeyEvents)

	// Подписчики затронутых расписаний узнают об изменении.
	var scheduleIDs []uint
	storage.DB.Model(&models.Schedule{}).Pluck("id", &scheduleIDs)
	for _, id := range scheduleIDs {
		ws.HubInstance.NotifySchedule(id, "import_completed",
			map[string]interface{}{"batch_id": rep.BatchID})
	}

	c.JSON(http.StatusOK, response.Result())
}

// @Summary		Импорт данных из внешней базы
// @Description	Зарезервировано: импорт напрямую из внешней базы данных не реализован
// @Tags			import
// @Produce		json
// @Security		BearerAuth
// @Failure		501	{object}	response.ErrorResponse
// @Router			/api/import/db [post]
func ImportDB(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, response.Error(
		response.CodeNotImplemented, "Not implemented"))
}
