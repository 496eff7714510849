package storage

import (
	"time"
)

// TouchAccess проставляет дату последнего доступа к записи напрямую,
// не затрагивая дату изменения. Вызывается обработчиками детальных GET-запросов.
func TouchAccess(model interface{}) {
	DB.Model(model).UpdateColumn("dateaccessed", time.Now())
}

// InvalidateCache удаляет из Redis ключи закэшированных списков.
// Вызывается после импорта и административных изменений.
func InvalidateCache(keys ...string) {
	if RedisClient == nil || len(keys) == 0 {
		return
	}
	RedisClient.Del(ctx, keys...)
}
