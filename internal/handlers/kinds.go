package handlers

import (
	"net/http"

	"schedule_api/internal/models"
	"schedule_api/internal/response"
	"schedule_api/internal/storage"

	"github.com/gin-gonic/gin"
)

// @Summary		Типы событий
// @Description	Возвращает список известных типов событий. Типы нельзя изменить из API, они создаются импортом
// @Tags			events
// @Produce		json
// @Success		200	{object}	response.ListResponse
// @Router			/api/events/kind [get]
func ListEventKinds(c *gin.Context) {
	var kinds []models.EventKind
	if err := storage.DB.Find(&kinds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при получении типов событий"))
		return
	}

	items := make([]map[string]interface{}, 0, len(kinds))
	for _, kind := range kinds {
		items = append(items, map[string]interface{}{"name": kind.Name})
	}
	c.JSON(http.StatusOK, response.List(items))
}
