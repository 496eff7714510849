package models

import (
	"time"
)

// DayDateOverride — перенос дня на другую дату (корректировка расписания).
// Занятия исходного дня считаются проходящими в день назначения.
type DayDateOverride struct {
	CommonModel
	DaySource      time.Time `gorm:"type:date;not null" json:"day_source"`      // Перенести дату из
	DayDestination time.Time `gorm:"type:date;not null" json:"day_destination"` // Перенести дату в
}

func (o *DayDateOverride) ContentEquals(other *DayDateOverride) bool {
	return o.DaySource.Equal(other.DaySource) && o.DayDestination.Equal(other.DayDestination)
}
