package serialize

import (
	"testing"
	"time"

	"schedule_api/internal/models"

	"github.com/stretchr/testify/assert"
)

func testSubject() *models.Subject {
	idnumber := "subj-phys-01"
	authorID := uint(7)
	s := &models.Subject{Name: "Физика"}
	s.ID = 3
	s.IDNumber = &idnumber
	s.Note = "импортировано из деканата"
	s.AuthorID = &authorID
	s.Author = &models.User{Email: "importer@service.local"}
	s.StampCreated(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	return s
}

func TestSubjectPublicProjection(t *testing.T) {
	out := Subject(testSubject(), false)

	assert.Equal(t, uint(3), out["id"])
	assert.Equal(t, "Физика", out["name"])

	// Отладочные поля не утекают обычным пользователям.
	assert.NotContains(t, out, "idnumber")
	assert.NotContains(t, out, "note")
	assert.NotContains(t, out, "author")
	assert.NotContains(t, out, "datecreated")
	assert.NotContains(t, out, "datemodified")
	assert.NotContains(t, out, "dateaccessed")
}

func TestSubjectAdminProjection(t *testing.T) {
	s := testSubject()
	out := Subject(s, true)

	assert.Equal(t, "subj-phys-01", out["idnumber"])
	assert.Equal(t, "импортировано из деканата", out["note"])
	assert.Equal(t, "importer@service.local", out["author"])
	assert.Equal(t, s.DateCreated.Unix(), out["datecreated"])
	assert.Equal(t, s.DateModified.Unix(), out["datemodified"])
	// dateaccessed не выставлен и потому опущен.
	assert.NotContains(t, out, "dateaccessed")

	accessed := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	s.MarkAccessed(accessed)
	out = Subject(s, true)
	assert.Equal(t, accessed.Unix(), out["dateaccessed"])
}

func TestAdminProjectionSkipsEmptyOptional(t *testing.T) {
	s := &models.Subject{Name: "История"}
	s.StampCreated(time.Now())
	out := Subject(s, true)

	assert.NotContains(t, out, "idnumber")
	assert.NotContains(t, out, "note")
	assert.NotContains(t, out, "author")
	assert.Contains(t, out, "datecreated")
}

func TestTimeSlotArrays(t *testing.T) {
	end := "09:30"
	slot := &models.TimeSlot{StartTime: "08:00", EndTime: &end}
	slot.ID = 2

	out := TimeSlot(slot, false)
	assert.Equal(t, []int{8, 0}, out["start_time"])
	assert.Equal(t, []int{9, 30}, out["end_time"])

	open := &models.TimeSlot{StartTime: "18:10"}
	out = TimeSlot(open, false)
	assert.Equal(t, []int{18, 10}, out["start_time"])
	assert.NotContains(t, out, "end_time")
}

func TestEventNesting(t *testing.T) {
	end := "09:30"
	place := &models.EventPlace{Building: "ГУК", Room: "305"}
	slot := &models.TimeSlot{StartTime: "08:00", EndTime: &end}

	event := &models.Event{
		ScheduleID: 12,
		Subject:    models.Subject{Name: "Математика"},
		Kind:       models.EventKind{Name: "лекция"},
		Participants: []models.EventParticipant{
			{Name: "ПрИн-266", Role: models.RoleStudent},
		},
		Holdings: []models.EventHolding{
			{
				Place: place,
				Slot:  slot,
				Date:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	event.ID = 40

	out := Event(event, false)
	assert.Equal(t, uint(12), out["schedule_id"])
	assert.Equal(t, "лекция", out["kind"])

	subject, ok := out["subject"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "Математика", subject["name"])

	participants, ok := out["participants"].([]map[string]interface{})
	assert.True(t, ok)
	assert.Len(t, participants, 1)
	assert.Equal(t, "ПрИн-266", participants[0]["name"])

	holdings, ok := out["holding_info"].([]map[string]interface{})
	assert.True(t, ok)
	assert.Len(t, holdings, 1)
	assert.Equal(t, "2026-09-01", holdings[0]["date"])

	holdingPlace, ok := holdings[0]["place"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "ГУК", holdingPlace["building"])

	timeSlot, ok := holdings[0]["time_slot"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, []int{8, 0}, timeSlot["start"])
	assert.Equal(t, []int{9, 30}, timeSlot["end"])
}

func TestScheduleComputedDates(t *testing.T) {
	s := &models.Schedule{
		Faculty:  "ФЭВТ",
		Scope:    models.ScopeBachelor,
		Course:   2,
		Semester: 3,
		Years:    "2026-2027",
	}
	s.ID = 5

	out := Schedule(s, nil, nil, false)
	assert.NotContains(t, out, "start_date")
	assert.NotContains(t, out, "finish_date")

	start := "2026-09-01"
	finish := "2026-12-26"
	out = Schedule(s, &start, &finish, false)
	assert.Equal(t, "2026-09-01", out["start_date"])
	assert.Equal(t, "2026-12-26", out["finish_date"])
}
