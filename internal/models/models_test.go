package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("08:30")
	assert.NoError(t, err)
	assert.Equal(t, 8*60+30, minutes)

	minutes, err = ParseClock("00:00")
	assert.NoError(t, err)
	assert.Equal(t, 0, minutes)

	minutes, err = ParseClock("23:59")
	assert.NoError(t, err)
	assert.Equal(t, 23*60+59, minutes)

	_, err = ParseClock("24:00")
	assert.Error(t, err)

	_, err = ParseClock("10:60")
	assert.Error(t, err)

	_, err = ParseClock("abc")
	assert.Error(t, err)
}

func TestClockArray(t *testing.T) {
	assert.Equal(t, []int{9, 5}, ClockArray("09:05"))
	assert.Nil(t, ClockArray("мусор"))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:05", FormatClock(8, 5))
	assert.Equal(t, "23:59", FormatClock(23, 59))
}

func TestTimeSlotValidate(t *testing.T) {
	end := "09:30"
	slot := TimeSlot{StartTime: "08:00", EndTime: &end}
	assert.NoError(t, slot.Validate())

	// Слот без конца допустим.
	open := TimeSlot{StartTime: "08:00"}
	assert.NoError(t, open.Validate())

	// Конец должен быть строго позже начала.
	same := "08:00"
	bad := TimeSlot{StartTime: "08:00", EndTime: &same}
	assert.Error(t, bad.Validate())

	before := "07:00"
	bad = TimeSlot{StartTime: "08:00", EndTime: &before}
	assert.Error(t, bad.Validate())

	bad = TimeSlot{StartTime: "25:00"}
	assert.Error(t, bad.Validate())
}

func TestContentEquals(t *testing.T) {
	a := Subject{Name: "Математика"}
	b := Subject{Name: "Математика"}
	assert.True(t, a.ContentEquals(&b))

	// Поля аудита не участвуют в сравнении содержимого.
	b.StampModified(time.Now())
	assert.True(t, a.ContentEquals(&b))

	b.Name = "Физика"
	assert.False(t, a.ContentEquals(&b))

	s1 := Schedule{Faculty: "ФЭВТ", Scope: ScopeBachelor, Course: 2, Semester: 3, Years: "2025-2026"}
	s2 := s1
	assert.True(t, s1.ContentEquals(&s2))
	s2.Semester = 4
	assert.False(t, s1.ContentEquals(&s2))

	end1 := "09:30"
	end2 := "09:40"
	t1 := TimeSlot{StartTime: "08:00", EndTime: &end1}
	t2 := TimeSlot{StartTime: "08:00", EndTime: &end1}
	assert.True(t, t1.ContentEquals(&t2))
	t2.EndTime = &end2
	assert.False(t, t1.ContentEquals(&t2))
	t2.EndTime = nil
	assert.False(t, t1.ContentEquals(&t2))
}

func TestStamps(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	var m CommonModel

	m.StampCreated(now)
	assert.Equal(t, now, m.DateCreated)
	assert.Equal(t, now, m.DateModified)

	later := now.Add(time.Hour)
	m.StampModified(later)
	assert.Equal(t, now, m.DateCreated)
	assert.Equal(t, later, m.DateModified)

	assert.Nil(t, m.DateAccessed)
	m.MarkAccessed(later)
	assert.NotNil(t, m.DateAccessed)
	assert.Equal(t, later, *m.DateAccessed)
}
