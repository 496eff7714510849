package importer

import (
	"encoding/json"
	"fmt"

	"schedule_api/internal/response"
)

// ImportError — структурированная ошибка импорта. Несёт внутренний код API,
// имя поля и элемент, на котором импорт остановился: партии импорта часто
// пишутся вручную, и пользователь должен видеть, что именно исправлять.
type ImportError struct {
	Code  int    // Внутренний код ошибки API (response.Code*)
	Field string // Имя поля, вызвавшего ошибку
	Msg   string // Человекочитаемое описание
	Item  any    // Элемент импорта, на котором произошла ошибка
}

func (e *ImportError) Error() string {
	if e.Item != nil {
		if raw, err := json.Marshal(e.Item); err == nil {
			return fmt.Sprintf("%s: %s (элемент: %s)", e.Field, e.Msg, raw)
		}
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// newValidationError — отсутствующее или некорректное обязательное поле.
func newValidationError(field, msg string, item any) *ImportError {
	return &ImportError{Code: response.CodeValidation, Field: field, Msg: msg, Item: item}
}

// newMissingIDNumber — у элемента нет уникального строкового идентификатора.
func newMissingIDNumber(item any) *ImportError {
	return newValidationError("idnumber", "требуется уникальный строковый идентификатор", item)
}

// newMissingReference — ссылка по idnumber не найдена среди известных записей.
func newMissingReference(field, idnumber string, item any) *ImportError {
	return &ImportError{
		Code:  response.CodeValidation,
		Field: field,
		Msg:   fmt.Sprintf("идентификатор %q не найден", idnumber),
		Item:  item,
	}
}
