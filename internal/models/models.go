package models

import (
	"errors"
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Surname      string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsAdmin      bool   `gorm:"default:false"` // Администраторам доступны изменения и импорт
	IsService    bool   `gorm:"default:false"` // Сервисный аккаунт для автоматического импорта
	CreatedAt    time.Time
}

// Role — роль участника события.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTeacher   Role = "teacher"
	RoleAssistant Role = "assistant"
)

// Scope — принадлежность расписания к виду обучения.
type Scope string

const (
	ScopeBachelor     Scope = "bachelor"
	ScopeMaster       Scope = "master"
	ScopePostgraduate Scope = "postgraduate"
	ScopeConsultation Scope = "consultation"
)

type Subject struct {
	CommonModel
	Name string `gorm:"size:256;not null" json:"name"`
}

// ContentEquals сравнивает содержательные поля (без аудитных).
func (s *Subject) ContentEquals(other *Subject) bool {
	return s.Name == other.Name
}

type EventKind struct {
	CommonModel
	Name string `gorm:"size:256;not null" json:"name"`
}

func (k *EventKind) ContentEquals(other *EventKind) bool {
	return k.Name == other.Name
}

// TimeSlot — время проведения события. Времена хранятся строками "ЧЧ:ММ".
type TimeSlot struct {
	CommonModel
	StartTime string  `gorm:"size:5;not null" json:"start_time"` // Время начала
	EndTime   *string `gorm:"size:5" json:"end_time,omitempty"`  // Время окончания (опционально)
}

var ErrBadTimeSlot = errors.New("время проведения не корректно")

// Validate проверяет формат времени и что окончание строго позже начала.
func (t *TimeSlot) Validate() error {
	start, err := ParseClock(t.StartTime)
	if err != nil {
		return err
	}
	if t.EndTime != nil {
		end, err := ParseClock(*t.EndTime)
		if err != nil {
			return err
		}
		if end <= start {
			return ErrBadTimeSlot
		}
	}
	return nil
}

func (t *TimeSlot) ContentEquals(other *TimeSlot) bool {
	if t.StartTime != other.StartTime {
		return false
	}
	if (t.EndTime == nil) != (other.EndTime == nil) {
		return false
	}
	return t.EndTime == nil || *t.EndTime == *other.EndTime
}

type EventPlace struct {
	CommonModel
	Building string `gorm:"size:128;not null" json:"building"` // Корпус
	Room     string `gorm:"size:64;not null" json:"room"`      // Аудитория
}

func (p *EventPlace) ContentEquals(other *EventPlace) bool {
	return p.Building == other.Building && p.Room == other.Room
}

type EventParticipant struct {
	CommonModel
	Name string `gorm:"size:255;not null" json:"name"`
	Role Role   `gorm:"size:48;not null" json:"role"`
}

func (p *EventParticipant) ContentEquals(other *EventParticipant) bool {
	return p.Name == other.Name && p.Role == other.Role
}

type Schedule struct {
	CommonModel
	Faculty       string           `gorm:"size:32;not null" json:"faculty"`
	Scope         Scope            `gorm:"size:32;not null" json:"scope"`
	Course        int              `gorm:"not null" json:"course"`
	Semester      int              `gorm:"not null" json:"semester"`
	Years         string           `gorm:"size:16" json:"years"` // Учебный год, например "2024-2025"
	DayOverrideID *uint            `json:"-"`                    // Действующий перенос дня
	DayOverride   *DayDateOverride `gorm:"foreignKey:DayOverrideID;constraint:OnDelete:SET NULL" json:"day_override,omitempty"`
	Events        []Event          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Schedule) ContentEquals(other *Schedule) bool {
	return s.Faculty == other.Faculty && s.Scope == other.Scope &&
		s.Course == other.Course && s.Semester == other.Semester && s.Years == other.Years
}

// Event — занятие, привязанное ровно к одному расписанию.
// Предмет и тип события защищены от удаления, пока на них ссылаются занятия.
type Event struct {
	CommonModel
	ScheduleID   uint               `gorm:"index;not null" json:"schedule_id"`
	SubjectID    uint               `gorm:"index;not null" json:"-"`
	Subject      Subject            `gorm:"constraint:OnDelete:RESTRICT" json:"subject"`
	KindID       uint               `gorm:"index;not null" json:"-"`
	Kind         EventKind          `gorm:"foreignKey:KindID;constraint:OnDelete:RESTRICT" json:"kind"`
	Participants []EventParticipant `gorm:"many2many:event_members" json:"participants"`
	Holdings     []EventHolding     `gorm:"constraint:OnDelete:CASCADE" json:"holdings"`
}

func (e *Event) ContentEquals(other *Event) bool {
	return e.ScheduleID == other.ScheduleID && e.SubjectID == other.SubjectID && e.KindID == other.KindID
}

// EventHolding — информация о проведении события: конкретная дата,
// место и временной слот. При удалении места или слота ссылка обнуляется.
type EventHolding struct {
	CommonModel
	EventID uint        `gorm:"index;not null" json:"-"`
	PlaceID *uint       `json:"-"`
	Place   *EventPlace `gorm:"foreignKey:PlaceID;constraint:OnDelete:SET NULL" json:"place,omitempty"`
	Date    time.Time   `gorm:"type:date;not null" json:"date"`
	SlotID  *uint       `json:"-"`
	Slot    *TimeSlot   `gorm:"foreignKey:SlotID;constraint:OnDelete:SET NULL" json:"time_slot,omitempty"`
}
