package importer

import (
	"time"

	"schedule_api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// writeRows выполняет один bulk insert-or-update по уникальному idnumber.
// Обновляются только перечисленные изменяемые колонки и datemodified:
// сам идентификатор, datecreated и автор записи никогда не перезаписываются.
// Записи, чей idnumber отсутствует в партии, не затрагиваются.
func writeRows[M any](tx *gorm.DB, rows []M, updateCols []string) error {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(updateCols)+1)
	cols = append(cols, updateCols...)
	cols = append(cols, "datemodified")
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idnumber"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&rows).Error
}

// У обновляемых строк внутренний id обнуляется перед записью: конфликт
// разрешается по idnumber, вставка с чужим первичным ключом недопустима.
// Кандидаты, совпавшие с существующей записью по содержанию, пропускаются,
// чтобы повторный импорт не сдвигал дату изменения.

func (im *Importer) upsertSubjects(tx *gorm.DB, items []SubjectItem, now time.Time) error {
	ids := idnumbersOf(items, func(it SubjectItem) *string { return it.IDNumber })
	var existing []models.Subject
	if err := tx.Where("idnumber IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]models.Subject, len(existing))
	for _, row := range existing {
		current[*row.IDNumber] = row
	}

	rows := make([]models.Subject, 0, len(items))
	for _, it := range items {
		if old, ok := current[*it.IDNumber]; ok {
			next := old
			next.Name = it.Name
			if next.ContentEquals(&old) {
				continue
			}
			next.ID = 0
			next.StampModified(now)
			rows = append(rows, next)
			continue
		}
		row := models.Subject{Name: it.Name}
		row.IDNumber = it.IDNumber
		row.AuthorID = im.authorID
		row.StampCreated(now)
		rows = append(rows, row)
	}
	return writeRows(tx, rows, []string{"name"})
}

func (im *Importer) upsertEventKinds(tx *gorm.DB, items []EventKindItem, now time.Time) error {
	ids := idnumbersOf(items, func(it EventKindItem) *string { return it.IDNumber })
	var existing []models.EventKind
	if err := tx.Where("idnumber IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]models.EventKind, len(existing))
	for _, row := range existing {
		current[*row.IDNumber] = row
	}

	rows := make([]models.EventKind, 0, len(items))
	for _, it := range items {
		if old, ok := current[*it.IDNumber]; ok {
			next := old
			next.Name = it.Name
			if next.ContentEquals(&old) {
				continue
			}
			next.ID = 0
			next.StampModified(now)
			rows = append(rows, next)
			continue
		}
		row := models.EventKind{Name: it.Name}
		row.IDNumber = it.IDNumber
		row.AuthorID = im.authorID
		row.StampCreated(now)
		rows = append(rows, row)
	}
	return writeRows(tx, rows, []string{"name"})
}

func (im *Importer) upsertTimeSlots(tx *gorm.DB, items []TimeSlotItem, now time.Time) error {
	ids := idnumbersOf(items, func(it TimeSlotItem) *string { return it.IDNumber })
	var existing []models.TimeSlot
	if err := tx.Where("idnumber IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]models.TimeSlot, len(existing))
	for _, row := range existing {
		current[*row.IDNumber] = row
	}

	rows := make([]models.TimeSlot, 0, len(items))
	for _, it := range items {
		if old, ok := current[*it.IDNumber]; ok {
			next := old
			next.StartTime = it.StartTime
			next.EndTime = it.EndTime
			if next.ContentEquals(&old) {
				continue
			}
			next.ID = 0
			next.StampModified(now)
			rows = append(rows, next)
			continue
		}
		row := models.TimeSlot{StartTime: it.StartTime, EndTime: it.EndTime}
		row.IDNumber = it.IDNumber
		row.AuthorID = im.authorID
		row.StampCreated(now)
		rows = append(rows, row)
	}
	return writeRows(tx, rows, []string{"start_time", "end_time"})
}

func (im *Importer) upsertEventPlaces(tx *gorm.DB, items []EventPlaceItem, now time.Time) error {
	ids := idnumbersOf(items, func(it EventPlaceItem) *string { return it.IDNumber })
	var existing []models.EventPlace
	if err := tx.Where("idnumber IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]models.EventPlace, len(existing))
	for _, row := range existing {
		current[*row.IDNumber] = row
	}

	rows := make([]models.EventPlace, 0, len(items))
	for _, it := range items {
		if old, ok := current[*it.IDNumber]; ok {
			next := old
			next.Building = it.Building
			next.Room = it.Room
			if next.ContentEquals(&old) {
				continue
			}
			next.ID = 0
			next.StampModified(now)
			rows = append(rows, next)
			continue
		}
		row := models.EventPlace{Building: it.Building, Room: it.Room}
		row.IDNumber = it.IDNumber
		row.AuthorID = im.authorID
		row.StampCreated(now)
		rows = append(rows, row)
	}
	return writeRows(tx, rows, []string{"building", "room"})
}

func (im *Importer) upsertEventParticipants(tx *gorm.DB, items []EventParticipantItem, now time.Time) error {
	ids := idnumbersOf(items, func(it EventParticipantItem) *string { return it.IDNumber })
	var existing []models.EventParticipant
	if err := tx.Where("idnumber IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]models.EventParticipant, len(existing))
	for _, row := range existing {
		current[*row.IDNumber] = row
	}

	rows := make([]models.EventParticipant, 0, len(items))
	for _, it := range items {
		if old, ok := current[*it.IDNumber]; ok {
			next := old
			next.Name = it.Name
			next.Role = models.Role(it.Role)
			if next.ContentEquals(&old) {
				continue
			}
			next.ID = 0
			next.StampModified(now)
			rows = append(rows, next)
			continue
		}
		row := models.EventParticipant{Name: it.Name, Role: models.Role(it.Role)}
		row.IDNumber = it.IDNumber
		row.AuthorID = im.authorID
		row.StampCreated(now)
		rows = append(rows, row)
	}
	return writeRows(tx, rows, []string{"name", "role"})
}

func (im *Importer) upsertSchedules(tx *gorm.DB, items []ScheduleItem, now time.Time) error {
	ids := idnumbersOf(items, func(it ScheduleItem) *string { return it.IDNumber })
	var existing []models.Schedule
	if err := tx.Where("idnumber IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]models.Schedule, len(existing))
	for _, row := range existing {
		current[*row.IDNumber] = row
	}

	rows := make([]models.Schedule, 0, len(items))
	for _, it := range items {
		if old, ok := current[*it.IDNumber]; ok {
			next := old
			next.Faculty = it.Faculty
			next.Scope = models.Scope(it.Scope)
			next.Course = it.Course
			next.Semester = it.Semester
			next.Years = it.Years
			if next.ContentEquals(&old) {
				continue
			}
			next.ID = 0
			next.StampModified(now)
			rows = append(rows, next)
			continue
		}
		row := models.Schedule{
			Faculty:  it.Faculty,
			Scope:    models.Scope(it.Scope),
			Course:   it.Course,
			Semester: it.Semester,
			Years:    it.Years,
		}
		row.IDNumber = it.IDNumber
		row.AuthorID = im.authorID
		row.StampCreated(now)
		rows = append(rows, row)
	}
	return writeRows(tx, rows, []string{"faculty", "scope", "course", "semester", "years"})
}

// upsertEvents сначала разрешает все ссылки кандидатов через Resolver.
// Неразрешённая ссылка прерывает транзакцию целиком: партия событий
// либо записывается вся, либо не записывается вовсе.
func (im *Importer) upsertEvents(tx *gorm.DB, items []EventItem, res *Resolver, now time.Time) error {
	type resolvedEvent struct {
		item     EventItem
		subject  uint
		kind     uint
		schedule uint
	}

	resolved := make([]resolvedEvent, 0, len(items))
	for _, it := range items {
		subjectID, err := res.Resolve(KindSubjects, "subject_id", it.SubjectID, it)
		if err != nil {
			return err
		}
		kindID, err := res.Resolve(KindEventKinds, "kind_id", it.KindID, it)
		if err != nil {
			return err
		}
		scheduleID, err := res.Resolve(KindSchedules, "schedule_id", it.ScheduleID, it)
		if err != nil {
			return err
		}
		resolved = append(resolved, resolvedEvent{item: it, subject: subjectID, kind: kindID, schedule: scheduleID})
	}

	ids := idnumbersOf(items, func(it EventItem) *string { return it.IDNumber })
	var existing []models.Event
	if err := tx.Where("idnumber IN ?", ids).Find(&existing).Error; err != nil {
		return err
	}
	current := make(map[string]models.Event, len(existing))
	for _, row := range existing {
		current[*row.IDNumber] = row
	}

	rows := make([]models.Event, 0, len(resolved))
	for _, re := range resolved {
		if old, ok := current[*re.item.IDNumber]; ok {
			next := old
			next.SubjectID = re.subject
			next.KindID = re.kind
			next.ScheduleID = re.schedule
			if next.ContentEquals(&old) {
				continue
			}
			next.ID = 0
			next.StampModified(now)
			rows = append(rows, next)
			continue
		}
		row := models.Event{SubjectID: re.subject, KindID: re.kind, ScheduleID: re.schedule}
		row.IDNumber = re.item.IDNumber
		row.AuthorID = im.authorID
		row.StampCreated(now)
		rows = append(rows, row)
	}
	return writeRows(tx, rows, []string{"subject_id", "kind_id", "schedule_id"})
}
