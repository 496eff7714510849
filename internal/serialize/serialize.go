// Package serialize строит представления записей для ответов API.
// Отладочные поля (idnumber, note, author, даты аудита) попадают в ответ
// только для администраторов: проекция выбирается явно по привилегии
// вызывающего, а не скрытой мутацией общего представления.
package serialize

import (
	"schedule_api/internal/models"
)

// appendAdmin добавляет отладочные поля записи для привилегированного
// вызывающего. Даты отдаются как unix-таймстемпы, null-значения опускаются.
func appendAdmin(out map[string]interface{}, m *models.CommonModel, admin bool) map[string]interface{} {
	if !admin {
		return out
	}
	if m.IDNumber != nil {
		out["idnumber"] = *m.IDNumber
	}
	if m.Note != "" {
		out["note"] = m.Note
	}
	if m.Author != nil {
		out["author"] = m.Author.Email
	}
	out["datecreated"] = m.DateCreated.Unix()
	out["datemodified"] = m.DateModified.Unix()
	if m.DateAccessed != nil {
		out["dateaccessed"] = m.DateAccessed.Unix()
	}
	return out
}

func Subject(s *models.Subject, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":   s.ID,
		"name": s.Name,
	}
	return appendAdmin(out, &s.CommonModel, admin)
}

func EventKind(k *models.EventKind, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":   k.ID,
		"name": k.Name,
	}
	return appendAdmin(out, &k.CommonModel, admin)
}

// TimeSlot представляет времена массивами [часы, минуты].
func TimeSlot(t *models.TimeSlot, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":         t.ID,
		"start_time": models.ClockArray(t.StartTime),
	}
	if t.EndTime != nil {
		out["end_time"] = models.ClockArray(*t.EndTime)
	}
	return appendAdmin(out, &t.CommonModel, admin)
}

func EventPlace(p *models.EventPlace, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":       p.ID,
		"building": p.Building,
		"room":     p.Room,
	}
	return appendAdmin(out, &p.CommonModel, admin)
}

func EventParticipant(p *models.EventParticipant, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":   p.ID,
		"name": p.Name,
		"role": p.Role,
	}
	return appendAdmin(out, &p.CommonModel, admin)
}

// EventHolding включает место и временной слот, если они ещё существуют.
func EventHolding(h *models.EventHolding, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"date": h.Date.Format("2006-01-02"),
	}
	if h.Place != nil {
		out["place"] = EventPlace(h.Place, admin)
	}
	if h.Slot != nil {
		slot := map[string]interface{}{
			"start": models.ClockArray(h.Slot.StartTime),
		}
		if h.Slot.EndTime != nil {
			slot["end"] = models.ClockArray(*h.Slot.EndTime)
		}
		out["time_slot"] = slot
	}
	return appendAdmin(out, &h.CommonModel, admin)
}

// Event собирает занятие с вложенными предметом, типом, участниками
// и информацией о проведении. Ожидает предзагруженные ассоциации.
func Event(e *models.Event, admin bool) map[string]interface{} {
	participants := make([]map[string]interface{}, 0, len(e.Participants))
	for i := range e.Participants {
		participants = append(participants, EventParticipant(&e.Participants[i], admin))
	}
	holdings := make([]map[string]interface{}, 0, len(e.Holdings))
	for i := range e.Holdings {
		holdings = append(holdings, EventHolding(&e.Holdings[i], admin))
	}
	out := map[string]interface{}{
		"id":           e.ID,
		"subject":      Subject(&e.Subject, admin),
		"kind":         e.Kind.Name,
		"schedule_id":  e.ScheduleID,
		"participants": participants,
		"holding_info": holdings,
	}
	return appendAdmin(out, &e.CommonModel, admin)
}

// Schedule дополняет запись вычисленными датами первого и последнего занятия.
// startDate и finishDate передаёт обработчик, nil-значения опускаются.
func Schedule(s *models.Schedule, startDate, finishDate *string, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":       s.ID,
		"faculty":  s.Faculty,
		"scope":    s.Scope,
		"course":   s.Course,
		"semester": s.Semester,
		"years":    s.Years,
	}
	if startDate != nil {
		out["start_date"] = *startDate
	}
	if finishDate != nil {
		out["finish_date"] = *finishDate
	}
	return appendAdmin(out, &s.CommonModel, admin)
}

func DayDateOverride(o *models.DayDateOverride, admin bool) map[string]interface{} {
	out := map[string]interface{}{
		"id":              o.ID,
		"day_source":      o.DaySource.Format("2006-01-02"),
		"day_destination": o.DayDestination.Format("2006-01-02"),
	}
	return appendAdmin(out, &o.CommonModel, admin)
}
