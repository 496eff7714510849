package importer

import (
	"fmt"
	"log"
	"os"
	"testing"

	"schedule_api/internal/models"
	"schedule_api/internal/storage"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
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
}

func strPtr(s string) *string { return &s }

func testAuthor(t *testing.T) uint {
	t.Helper()
	user := models.User{Name: "Импорт", Surname: "Сервис", Email: "importer@service.local", PasswordHash: "!", IsService: true}
	require.NoError(t, storage.DB.Create(&user).Error)
	return user.ID
}

func fullPayload() *Payload {
	end := "09:30"
	return &Payload{
		Subjects: []SubjectItem{
			{IDNumber: strPtr("subj-math"), Name: "Математика"},
		},
		EventKinds: []EventKindItem{
			{IDNumber: strPtr("kind-lecture"), Name: "лекция"},
		},
		TimeSlots: []TimeSlotItem{
			{IDNumber: strPtr("slot-1"), StartTime: "08:00", EndTime: &end},
		},
		EventPlaces: []EventPlaceItem{
			{IDNumber: strPtr("room-305"), Building: "ГУК", Room: "305"},
		},
		EventParticipants: []EventParticipantItem{
			{IDNumber: strPtr("group-266"), Name: "ПрИн-266", Role: "student"},
		},
		Schedules: []ScheduleItem{
			{IDNumber: strPtr("sched-fevt-2"), Faculty: "ФЭВТ", Scope: "bachelor", Course: 2, Semester: 3, Years: "2026-2027"},
		},
		Events: []EventItem{
			{IDNumber: strPtr("ev-1"), SubjectID: "subj-math", KindID: "kind-lecture", ScheduleID: "sched-fevt-2"},
		},
	}
}

func TestImportCreatesAndIsIdempotent(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	rep, err := im.Run(fullPayload())
	require.NoError(t, err)
	assert.Equal(t, StateDone, rep.State)
	assert.NotEmpty(t, rep.BatchID)
	assert.Equal(t, 1, rep.Counts[KindSubjects])
	assert.Equal(t, 1, rep.Counts[KindEvents])

	var subject models.Subject
	require.NoError(t, storage.DB.Where("idnumber = ?", "subj-math").First(&subject).Error)
	assert.Equal(t, "Математика", subject.Name)
	require.NotNil(t, subject.AuthorID)
	assert.Equal(t, authorID, *subject.AuthorID)

	var event models.Event
	require.NoError(t, storage.DB.Where("idnumber = ?", "ev-1").First(&event).Error)
	assert.Equal(t, subject.ID, event.SubjectID)

	firstModified := subject.DateModified

	// Повторный импорт той же партии: новых записей нет,
	// неизменившиеся записи не трогаются.
	rep2, err := im.Run(fullPayload())
	require.NoError(t, err)
	assert.Equal(t, StateDone, rep2.State)
	assert.NotEqual(t, rep.BatchID, rep2.BatchID)

	var subjectCount, eventCount int64
	storage.DB.Model(&models.Subject{}).Count(&subjectCount)
	storage.DB.Model(&models.Event{}).Count(&eventCount)
	assert.Equal(t, int64(1), subjectCount)
	assert.Equal(t, int64(1), eventCount)

	var again models.Subject
	require.NoError(t, storage.DB.Where("idnumber = ?", "subj-math").First(&again).Error)
	assert.True(t, firstModified.Equal(again.DateModified))
}

func TestImportUpdatesChangedRows(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	_, err := im.Run(fullPayload())
	require.NoError(t, err)

	var before models.Subject
	require.NoError(t, storage.DB.Where("idnumber = ?", "subj-math").First(&before).Error)

	changed := fullPayload()
	changed.Subjects[0].Name = "Высшая математика"
	_, err = im.Run(changed)
	require.NoError(t, err)

	var after models.Subject
	require.NoError(t, storage.DB.Where("idnumber = ?", "subj-math").First(&after).Error)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, "Высшая математика", after.Name)
	assert.True(t, before.DateCreated.Equal(after.DateCreated))
	assert.True(t, after.DateModified.After(before.DateModified))
}

func TestImportMissingIDNumber(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	payload := &Payload{
		Subjects: []SubjectItem{{Name: "Без идентификатора"}},
	}
	rep, err := im.Run(payload)
	require.Error(t, err)
	assert.Equal(t, StateFailed, rep.State)
	assert.Equal(t, KindSubjects, rep.Kind)

	impErr, ok := err.(*ImportError)
	require.True(t, ok)
	assert.Equal(t, "idnumber", impErr.Field)

	var count int64
	storage.DB.Model(&models.Subject{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestImportMissingReference(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	payload := fullPayload()
	payload.Events[0].SubjectID = "subj-unknown"

	rep, err := im.Run(payload)
	require.Error(t, err)
	assert.Equal(t, StateFailed, rep.State)
	assert.Equal(t, KindEvents, rep.Kind)

	impErr, ok := err.(*ImportError)
	require.True(t, ok)
	assert.Equal(t, "subject_id", impErr.Field)

	// Занятия не созданы, но ранние виды уже зафиксированы:
	// каждый вид пишется в собственной транзакции.
	var eventCount, subjectCount int64
	storage.DB.Model(&models.Event{}).Count(&eventCount)
	storage.DB.Model(&models.Subject{}).Count(&subjectCount)
	assert.Equal(t, int64(0), eventCount)
	assert.Equal(t, int64(1), subjectCount)
}

func TestImportCrossBatchReferences(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	// Первая партия объявляет справочники, вторая ссылается на них по idnumber.
	first := fullPayload()
	first.Events = nil
	_, err := im.Run(first)
	require.NoError(t, err)

	second := &Payload{
		Events: []EventItem{
			{IDNumber: strPtr("ev-2"), SubjectID: "subj-math", KindID: "kind-lecture", ScheduleID: "sched-fevt-2"},
		},
	}
	rep, err := New(storage.DB, &authorID).Run(second)
	require.NoError(t, err)
	assert.Equal(t, StateDone, rep.State)

	var event models.Event
	require.NoError(t, storage.DB.Where("idnumber = ?", "ev-2").First(&event).Error)
}

func TestImportRejectsBadTimeSlot(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	end := "08:00"
	payload := &Payload{
		TimeSlots: []TimeSlotItem{
			{IDNumber: strPtr("slot-bad"), StartTime: "08:00", EndTime: &end},
		},
	}
	rep, err := im.Run(payload)
	require.Error(t, err)
	assert.Equal(t, StateFailed, rep.State)
	assert.Equal(t, KindTimeSlots, rep.Kind)

	var count int64
	storage.DB.Model(&models.TimeSlot{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestImportValidationNamesJSONField(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	payload := &Payload{
		EventParticipants: []EventParticipantItem{
			{IDNumber: strPtr("p-1"), Name: "Иванов И.И.", Role: "director"},
		},
	}
	_, err := im.Run(payload)
	require.Error(t, err)

	impErr, ok := err.(*ImportError)
	require.True(t, ok)
	assert.Equal(t, "role", impErr.Field)
}

func TestImportDeduplicatesWithinBatch(t *testing.T) {
	setupTestDB(t)
	authorID := testAuthor(t)
	im := New(storage.DB, &authorID)

	// При повторе idnumber внутри партии выигрывает последний элемент.
	payload := &Payload{
		Subjects: []SubjectItem{
			{IDNumber: strPtr("subj-dup"), Name: "Черновик"},
			{IDNumber: strPtr("subj-dup"), Name: "Итог"},
		},
	}
	rep, err := im.Run(payload)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Counts[KindSubjects])

	var subject models.Subject
	require.NoError(t, storage.DB.Where("idnumber = ?", "subj-dup").First(&subject).Error)
	assert.Equal(t, "Итог", subject.Name)
}
