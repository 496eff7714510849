package tasks

import (
	"log"
	"os"
	"strconv"
	"time"

	"schedule_api/internal/models"
	"schedule_api/internal/storage"

	"github.com/robfig/cron/v3"
)

// importLogRetentionDays возвращает срок хранения журналов импорта в днях.
// Управляется переменной окружения IMPORT_LOG_RETENTION_DAYS, по умолчанию 30.
func importLogRetentionDays() int {
	if v := os.Getenv("IMPORT_LOG_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return days
		}
	}
	return 30
}

// CleanOldImportLogs удаляет журналы импорта старше срока хранения.
func CleanOldImportLogs() {
	threshold := time.Now().AddDate(0, 0, -importLogRetentionDays())
	result := storage.DB.Where("created_at < ?", threshold).Delete(&models.ImportLog{})
	if result.Error != nil {
		log.Println("Ошибка при удалении устаревших журналов импорта:", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Удалено устаревших журналов импорта: %d\n", result.RowsAffected)
	}
}

// CleanExpiredOverrides удаляет переносы дней, дата назначения которых уже прошла.
func CleanExpiredOverrides() {
	threshold := time.Now().Truncate(24 * time.Hour)
	result := storage.DB.Where("day_destination < ?", threshold).Delete(&models.DayDateOverride{})
	if result.Error != nil {
		log.Println("Ошибка при удалении устаревших переносов:", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Удалено устаревших переносов дней: %d\n", result.RowsAffected)
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Очистка журналов импорта каждый день в 03:00.
	_, err := c.AddFunc("0 0 3 * * *", CleanOldImportLogs)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldImportLogs:", err)
	}

	// Очистка прошедших переносов дней каждый день в 03:10.
	_, err = c.AddFunc("0 10 3 * * *", CleanExpiredOverrides)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanExpiredOverrides:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
