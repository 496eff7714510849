package importer

import (
	"errors"

	"gorm.io/gorm"
)

// Виды сущностей импорта в порядке обработки. Порядок фиксирован:
// поздние виды ссылаются на ранние по idnumber.
const (
	KindSubjects          = "subjects"
	KindEventKinds        = "event_kinds"
	KindTimeSlots         = "time_slots"
	KindEventPlaces       = "event_places"
	KindEventParticipants = "event_participants"
	KindSchedules         = "schedules"
	KindEvents            = "events"
)

// Имена таблиц хранилища по видам сущностей.
var kindTables = map[string]string{
	KindSubjects:          "subjects",
	KindEventKinds:        "event_kinds",
	KindTimeSlots:         "time_slots",
	KindEventPlaces:       "event_places",
	KindEventParticipants: "event_participants",
	KindSchedules:         "schedules",
	KindEvents:            "events",
}

// Resolver сопоставляет внешний idnumber с внутренним id записи нужного вида.
// Таблица соответствий каждого вида заполняется сразу после его upsert'а;
// при разрешении ссылок поздних видов используется только она и хранилище,
// исходные данные партии повторно не читаются.
type Resolver struct {
	db    *gorm.DB
	known map[string]map[string]uint
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db, known: make(map[string]map[string]uint)}
}

type idRow struct {
	ID       uint
	IDNumber string
}

// Remember загружает в таблицу соответствий внутренние id записей вида
// по списку idnumber, только что прошедших upsert.
func (r *Resolver) Remember(kind string, idnumbers []string) error {
	if len(idnumbers) == 0 {
		return nil
	}
	var rows []idRow
	if err := r.db.Table(kindTables[kind]).
		Select("id, idnumber").
		Where("idnumber IN ?", idnumbers).
		Find(&rows).Error; err != nil {
		return err
	}
	if r.known[kind] == nil {
		r.known[kind] = make(map[string]uint, len(rows))
	}
	for _, row := range rows {
		r.known[kind][row.IDNumber] = row.ID
	}
	return nil
}

// Resolve возвращает внутренний id записи вида kind по её idnumber.
// Идентификаторы, не созданные текущей партией, ищутся в хранилище.
// Неизвестный идентификатор — ошибка восстановления ссылки с именем поля
// и искомым идентификатором, а не общий сбой.
func (r *Resolver) Resolve(kind, field, idnumber string, item any) (uint, error) {
	if ids, ok := r.known[kind]; ok {
		if id, ok := ids[idnumber]; ok {
			return id, nil
		}
	}

	var row idRow
	err := r.db.Table(kindTables[kind]).
		Select("id, idnumber").
		Where("idnumber = ?", idnumber).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, newMissingReference(field, idnumber, item)
		}
		return 0, err
	}

	if r.known[kind] == nil {
		r.known[kind] = make(map[string]uint)
	}
	r.known[kind][idnumber] = row.ID
	return row.ID, nil
}
