package models

import (
	"time"
)

// CommonModel — общий набор полей для всех сущностей расписания.
// idnumber — уникальный строковый идентификатор из внешней системы,
// по нему работает идемпотентный импорт (upsert).
// Поля дат обслуживаются явно слоем хранения, а не глобальными хуками.
type CommonModel struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	IDNumber     *string    `gorm:"column:idnumber;size:260;uniqueIndex" json:"idnumber,omitempty"` // Уникальный строковый идентификатор
	DateCreated  time.Time  `gorm:"column:datecreated;not null" json:"-"`                           // Дата создания записи
	DateModified time.Time  `gorm:"column:datemodified;not null" json:"-"`                          // Дата изменения записи
	DateAccessed *time.Time `gorm:"column:dateaccessed" json:"-"`                                   // Дата последнего доступа к записи
	AuthorID     *uint      `gorm:"column:author_id" json:"-"`                                      // Автор записи (может быть сервисным аккаунтом)
	Author       *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
	Note         string     `gorm:"size:1024" json:"-"` // Комментарий для записи
}

// StampCreated проставляет даты создания и изменения при создании записи.
func (m *CommonModel) StampCreated(now time.Time) {
	m.DateCreated = now
	m.DateModified = now
}

// StampModified обновляет дату изменения. Вызывается слоем хранения
// только если хотя бы одно содержательное поле действительно изменилось.
func (m *CommonModel) StampModified(now time.Time) {
	m.DateModified = now
}

// MarkAccessed проставляет дату доступа к записи.
func (m *CommonModel) MarkAccessed(now time.Time) {
	m.DateAccessed = &now
}
