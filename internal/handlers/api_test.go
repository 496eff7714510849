package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"schedule_api/internal/models"
	"schedule_api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authMiddlewareTest подставляет userID из заголовка X-Test-UserID
// вместо разбора настоящего JWT.
func authMiddlewareTest() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.Request.Header.Get("X-Test-UserID")
		if userIDStr != "" {
			if id, err := strconv.Atoi(userIDStr); err == nil {
				c.Set("userID", uint(id))
			}
		}
		c.Next()
	}
}

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		if err := godotenv.Load("../../.env"); err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectTestingDatabase()

	if err := storage.DB.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.EventKind{},
		&models.TimeSlot{},
		&models.EventPlace{},
		&models.EventParticipant{},
		&models.Schedule{},
		&models.Event{},
		&models.EventHolding{},
	); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.DB.Exec("TRUNCATE TABLE event_members, event_holdings, events, schedules, event_participants, event_places, time_slots, event_kinds, subjects, users RESTART IDENTITY CASCADE;")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(authMiddlewareTest())

	r.GET("/api/subjects", ListSubjects)
	r.GET("/api/subjects/:id", GetSubject)
	r.POST("/api/subjects", CreateSubject)
	r.PUT("/api/subjects/:id", UpdateSubject)
	r.DELETE("/api/subjects/:id", DeleteSubject)
	r.POST("/api/timeslots", CreateTimeSlot)
	r.POST("/api/import/db", ImportDB)

	return httptest.NewServer(r)
}

func createAdmin(t *testing.T) uint {
	t.Helper()
	admin := models.User{
		Name: "Админ", Surname: "Тестовый",
		Email: "admin@test.local", PasswordHash: "x", IsAdmin: true,
	}
	require.NoError(t, storage.DB.Create(&admin).Error)
	return admin.ID
}

func doJSON(t *testing.T, method, url string, body any, userID uint) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-UserID", strconv.FormatUint(uint64(userID), 10))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSubjectLifecycle(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	adminID := createAdmin(t)

	// Создание.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/subjects",
		map[string]string{"name": "Математика"}, adminID)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "response", body["type"])

	// Список в конверте {"type":"response","items":[...]}.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/subjects", nil, 0)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	items, ok := body["items"].([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)

	item := items[0].(map[string]interface{})
	assert.Equal(t, "Математика", item["name"])
	// Анонимный запрос не видит полей аудита.
	assert.NotContains(t, item, "datecreated")

	// Администратору отдается расширенная проекция с unix-таймстемпами.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/subjects", nil, adminID)
	body = decodeBody(t, resp)
	item = body["items"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, item, "datecreated")
	assert.Contains(t, item, "datemodified")

	// Обновление меняет дату изменения только при реальном изменении.
	var before models.Subject
	require.NoError(t, storage.DB.First(&before).Error)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/subjects/1",
		map[string]string{"name": "Математика"}, adminID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var unchanged models.Subject
	require.NoError(t, storage.DB.First(&unchanged).Error)
	assert.True(t, before.DateModified.Equal(unchanged.DateModified))

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/subjects/1",
		map[string]string{"name": "Физика"}, adminID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var changed models.Subject
	require.NoError(t, storage.DB.First(&changed).Error)
	assert.Equal(t, "Физика", changed.Name)
	assert.True(t, changed.DateModified.After(before.DateModified))

	// Удаление.
	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/subjects/1", nil, adminID)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, true, body["result"])
}

func TestSubjectSearch(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()

	for _, name := range []string{"Математический анализ", "Физика", "Дискретная математика"} {
		subject := models.Subject{Name: name}
		subject.StampCreated(time.Now())
		require.NoError(t, storage.DB.Create(&subject).Error)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/subjects?search=математи", nil, 0)
	body := decodeBody(t, resp)
	items := body["items"].([]interface{})
	assert.Len(t, items, 2)
}

func TestDeleteSubjectInUse(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	adminID := createAdmin(t)

	subject := models.Subject{Name: "Математика"}
	subject.StampCreated(time.Now())
	require.NoError(t, storage.DB.Create(&subject).Error)
	kind := models.EventKind{Name: "лекция"}
	kind.StampCreated(time.Now())
	require.NoError(t, storage.DB.Create(&kind).Error)
	schedule := models.Schedule{Faculty: "ФЭВТ", Scope: models.ScopeBachelor, Course: 1, Semester: 1, Years: "2026-2027"}
	schedule.StampCreated(time.Now())
	require.NoError(t, storage.DB.Create(&schedule).Error)

	event := models.Event{ScheduleID: schedule.ID, SubjectID: subject.ID, KindID: kind.ID}
	event.StampCreated(time.Now())
	require.NoError(t, storage.DB.Create(&event).Error)

	// Предмет, на который ссылается занятие, защищен от удаления.
	resp := doJSON(t, http.MethodDelete,
		fmt.Sprintf("%s/api/subjects/%d", srv.URL, subject.ID), nil, adminID)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "error", body["type"])
	assert.Equal(t, float64(1), body["error_code"])

	var count int64
	storage.DB.Model(&models.Subject{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateTimeSlotRejectsBadRange(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	adminID := createAdmin(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/timeslots",
		map[string]interface{}{"start_time": []int{9, 30}, "end_time": []int{8, 0}}, adminID)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(1), body["error_code"])
}

func TestImportDBNotImplemented(t *testing.T) {
	srv := setupTestServer(t)
	defer srv.Close()
	adminID := createAdmin(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/import/db", nil, adminID)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "error", body["type"])
	assert.Equal(t, float64(4), body["error_code"])
}
