package models

import (
	"time"

	"gorm.io/datatypes"
)

// ImportLog — журнал выполненных импортов. Хранит исходный payload
// и счётчики обработанных записей по каждому виду сущностей.
type ImportLog struct {
	ID        uint           `gorm:"primaryKey"`
	BatchID   string         `gorm:"size:36;uniqueIndex;not null"` // UUID партии импорта
	State     string         `gorm:"size:48;not null"`             // Конечное состояние: DONE или FAILED
	Message   string         `gorm:"size:1024"`                    // Сообщение об ошибке, если импорт не удался
	Payload   datatypes.JSON // Исходный JSON импорта
	Counts    datatypes.JSON // Счётчики обработанных записей по видам
	AuthorID  *uint
	CreatedAt time.Time
}
