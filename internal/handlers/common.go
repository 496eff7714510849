package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"schedule_api/internal/response"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

// Фиксированные ключи кэша списков в Redis.
const (
	cacheKeySchedules = "schedules_all"
	cacheKeyEvents    = "events_all"
)

// pgSQLErr — интерфейс ошибок драйвера Postgres, несущих SQLSTATE.
type pgSQLErr interface {
	SQLState() string
	Error() string
}

// isFKViolation распознаёт нарушение внешнего ключа (SQLSTATE 23503):
// попытку удалить запись, на которую ещё ссылаются занятия.
func isFKViolation(err error) bool {
	var pgErr pgSQLErr
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23503"
	}
	return false
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Неверный идентификатор записи"))
		return 0, false
	}
	return uint(id), true
}

// notFound отвечает стандартной ошибкой для отсутствующей записи.
func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, response.Error(
		response.CodeValidation, what+" не найдено"))
}
