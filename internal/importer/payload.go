package importer

// Payload — формат массового JSON-импорта. Все ключи опциональны,
// каждый элемент каждого списка обязан содержать idnumber.
// Поля *_id у событий — это idnumber ранее объявленных или ранее
// импортированных сущностей, а не внутренние id.
type Payload struct {
	Subjects          []SubjectItem          `json:"subjects"`
	EventKinds        []EventKindItem        `json:"event_kinds"`
	TimeSlots         []TimeSlotItem         `json:"time_slots"`
	EventPlaces       []EventPlaceItem       `json:"event_places"`
	EventParticipants []EventParticipantItem `json:"event_participants"`
	Schedules         []ScheduleItem         `json:"schedules"`
	Events            []EventItem            `json:"events"`
}

type SubjectItem struct {
	IDNumber *string `json:"idnumber,omitempty"`
	Name     string  `json:"name" validate:"required"`
}

type EventKindItem struct {
	IDNumber *string `json:"idnumber,omitempty"`
	Name     string  `json:"name" validate:"required"`
}

type TimeSlotItem struct {
	IDNumber  *string `json:"idnumber,omitempty"`
	StartTime string  `json:"start_time" validate:"required"` // "ЧЧ:ММ"
	EndTime   *string `json:"end_time,omitempty"`             // "ЧЧ:ММ", опционально
}

type EventPlaceItem struct {
	IDNumber *string `json:"idnumber,omitempty"`
	Building string  `json:"building" validate:"required"`
	Room     string  `json:"room" validate:"required"`
}

type EventParticipantItem struct {
	IDNumber *string `json:"idnumber,omitempty"`
	Name     string  `json:"name" validate:"required"`
	Role     string  `json:"role" validate:"required,oneof=student teacher assistant"`
}

type ScheduleItem struct {
	IDNumber *string `json:"idnumber,omitempty"`
	Faculty  string  `json:"faculty" validate:"required"`
	Scope    string  `json:"scope" validate:"required,oneof=bachelor master postgraduate consultation"`
	Course   int     `json:"course" validate:"required,min=1"`
	Semester int     `json:"semester" validate:"required,min=1"`
	Years    string  `json:"years" validate:"required"`
}

type EventItem struct {
	IDNumber   *string `json:"idnumber,omitempty"`
	SubjectID  string  `json:"subject_id" validate:"required"`
	KindID     string  `json:"kind_id" validate:"required"`
	ScheduleID string  `json:"schedule_id" validate:"required"`
}
