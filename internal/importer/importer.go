// Package importer реализует массовый JSON-импорт данных расписаний.
// Импорт идемпотентен: ключом служит внешний идентификатор idnumber,
// повторная загрузка той же партии не создаёт дубликатов. Каждый вид
// сущностей записывается атомарно в своей транзакции; виды, успешно
// записанные до сбоя, не откатываются — повтор импорта безопасно
// доделывает оставшееся.
package importer

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"schedule_api/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// State — состояние конечного автомата импорта.
type State string

const (
	StatePending    State = "PENDING"
	StateValidating State = "VALIDATING"
	StateUpserting  State = "UPSERTING"
	StateResolving  State = "RESOLVING_REFERENCES"
	StateDone       State = "DONE"
	StateFailed     State = "FAILED"
)

// Report — результат выполнения импорта: конечное состояние, вид сущностей,
// на котором автомат остановился, и счётчики обработанных элементов.
type Report struct {
	BatchID string         `json:"batch_id"`
	State   State          `json:"state"`
	Kind    string         `json:"kind,omitempty"`
	Counts  map[string]int `json:"counts"`
	Err     error          `json:"-"`
}

func (r *Report) enter(state State, kind string) {
	r.State = state
	r.Kind = kind
}

func (r *Report) fail(err error) (*Report, error) {
	r.State = StateFailed
	r.Err = err
	return r, err
}

// Importer выполняет импорт партии. Автором созданных записей становится
// переданный аккаунт (для автоматического импорта — сервисный).
type Importer struct {
	db       *gorm.DB
	validate *validator.Validate
	authorID *uint
}

func New(db *gorm.DB, authorID *uint) *Importer {
	v := validator.New()
	// В ошибках валидации поля называются как в JSON-партии,
	// а не как в Go-структурах.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Importer{db: db, validate: v, authorID: authorID}
}

type step struct {
	kind      string
	validate  func() error
	upsert    func(tx *gorm.DB) error
	idnumbers []string
	count     int
}

// Run прогоняет партию через конечный автомат импорта. Виды сущностей
// обрабатываются в фиксированном порядке: поздние виды ссылаются на ранние
// по idnumber, поэтому к моменту разрешения ссылок таблица соответствий
// уже заполнена.
func (im *Importer) Run(p *Payload) (*Report, error) {
	rep := &Report{
		BatchID: uuid.NewString(),
		State:   StatePending,
		Counts:  make(map[string]int),
	}

	res := NewResolver(im.db)
	now := time.Now()

	subjects := dedupe(p.Subjects, func(it SubjectItem) *string { return it.IDNumber })
	eventKinds := dedupe(p.EventKinds, func(it EventKindItem) *string { return it.IDNumber })
	timeSlots := dedupe(p.TimeSlots, func(it TimeSlotItem) *string { return it.IDNumber })
	eventPlaces := dedupe(p.EventPlaces, func(it EventPlaceItem) *string { return it.IDNumber })
	participants := dedupe(p.EventParticipants, func(it EventParticipantItem) *string { return it.IDNumber })
	schedules := dedupe(p.Schedules, func(it ScheduleItem) *string { return it.IDNumber })
	events := dedupe(p.Events, func(it EventItem) *string { return it.IDNumber })

	steps := []step{
		{
			kind: KindSubjects,
			validate: func() error {
				return validateItems(im.validate, subjects, func(it SubjectItem) *string { return it.IDNumber }, nil)
			},
			upsert:    func(tx *gorm.DB) error { return im.upsertSubjects(tx, subjects, now) },
			idnumbers: idnumbersOf(subjects, func(it SubjectItem) *string { return it.IDNumber }),
			count:     len(subjects),
		},
		{
			kind: KindEventKinds,
			validate: func() error {
				return validateItems(im.validate, eventKinds, func(it EventKindItem) *string { return it.IDNumber }, nil)
			},
			upsert:    func(tx *gorm.DB) error { return im.upsertEventKinds(tx, eventKinds, now) },
			idnumbers: idnumbersOf(eventKinds, func(it EventKindItem) *string { return it.IDNumber }),
			count:     len(eventKinds),
		},
		{
			kind: KindTimeSlots,
			validate: func() error {
				return validateItems(im.validate, timeSlots,
					func(it TimeSlotItem) *string { return it.IDNumber },
					func(it TimeSlotItem) error {
						slot := models.TimeSlot{StartTime: it.StartTime, EndTime: it.EndTime}
						if err := slot.Validate(); err != nil {
							return newValidationError("start_time", err.Error(), it)
						}
						return nil
					})
			},
			upsert:    func(tx *gorm.DB) error { return im.upsertTimeSlots(tx, timeSlots, now) },
			idnumbers: idnumbersOf(timeSlots, func(it TimeSlotItem) *string { return it.IDNumber }),
			count:     len(timeSlots),
		},
		{
			kind: KindEventPlaces,
			validate: func() error {
				return validateItems(im.validate, eventPlaces, func(it EventPlaceItem) *string { return it.IDNumber }, nil)
			},
			upsert:    func(tx *gorm.DB) error { return im.upsertEventPlaces(tx, eventPlaces, now) },
			idnumbers: idnumbersOf(eventPlaces, func(it EventPlaceItem) *string { return it.IDNumber }),
			count:     len(eventPlaces),
		},
		{
			kind: KindEventParticipants,
			validate: func() error {
				return validateItems(im.validate, participants, func(it EventParticipantItem) *string { return it.IDNumber }, nil)
			},
			upsert:    func(tx *gorm.DB) error { return im.upsertEventParticipants(tx, participants, now) },
			idnumbers: idnumbersOf(participants, func(it EventParticipantItem) *string { return it.IDNumber }),
			count:     len(participants),
		},
		{
			kind: KindSchedules,
			validate: func() error {
				return validateItems(im.validate, schedules, func(it ScheduleItem) *string { return it.IDNumber }, nil)
			},
			upsert:    func(tx *gorm.DB) error { return im.upsertSchedules(tx, schedules, now) },
			idnumbers: idnumbersOf(schedules, func(it ScheduleItem) *string { return it.IDNumber }),
			count:     len(schedules),
		},
		{
			kind: KindEvents,
			validate: func() error {
				return validateItems(im.validate, events, func(it EventItem) *string { return it.IDNumber }, nil)
			},
			upsert:    func(tx *gorm.DB) error { return im.upsertEvents(tx, events, res, now) },
			idnumbers: idnumbersOf(events, func(it EventItem) *string { return it.IDNumber }),
			count:     len(events),
		},
	}

	for _, st := range steps {
		rep.enter(StateValidating, st.kind)
		if err := st.validate(); err != nil {
			return rep.fail(err)
		}

		rep.enter(StateUpserting, st.kind)
		if err := im.db.Transaction(st.upsert); err != nil {
			return rep.fail(err)
		}

		rep.enter(StateResolving, st.kind)
		if err := res.Remember(st.kind, st.idnumbers); err != nil {
			return rep.fail(err)
		}

		rep.Counts[st.kind] = st.count
	}

	rep.enter(StateDone, "")
	return rep, nil
}

// validateItems проверяет каждый элемент: наличие idnumber, обязательные
// поля и дополнительное правило вида. Первый некорректный элемент
// останавливает импорт до какой-либо записи в хранилище.
func validateItems[T any](v *validator.Validate, items []T, id func(T) *string, extra func(T) error) error {
	for _, it := range items {
		idnum := id(it)
		if idnum == nil || *idnum == "" {
			return newMissingIDNumber(it)
		}
		if err := v.Struct(it); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return newValidationError(verrs[0].Field(), "обязательное поле отсутствует или некорректно", it)
			}
			return err
		}
		if extra != nil {
			if err := extra(it); err != nil {
				return err
			}
		}
	}
	return nil
}

// dedupe схлопывает элементы с одинаковым idnumber, оставляя последний:
// после upsert'а в хранилище всё равно осталась бы ровно одна запись
// на идентификатор, а одна команда INSERT .. ON CONFLICT не может
// затронуть строку дважды.
func dedupe[T any](items []T, id func(T) *string) []T {
	seen := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		idnum := id(it)
		if idnum == nil || *idnum == "" {
			// Элемент без идентификатора оставляем — его отклонит валидация.
			out = append(out, it)
			continue
		}
		if at, ok := seen[*idnum]; ok {
			out[at] = it
			continue
		}
		seen[*idnum] = len(out)
		out = append(out, it)
	}
	return out
}

func idnumbersOf[T any](items []T, id func(T) *string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if idnum := id(it); idnum != nil && *idnum != "" {
			out = append(out, *idnum)
		}
	}
	return out
}
