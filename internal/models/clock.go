package models

import (
	"fmt"
)

// ParseClock разбирает строку времени "ЧЧ:ММ" и возвращает число минут от полуночи.
func ParseClock(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("неверный формат времени %q, ожидается ЧЧ:ММ", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("неверный формат времени %q, ожидается ЧЧ:ММ", value)
	}
	return hour*60 + minute, nil
}

// ClockArray представляет время "ЧЧ:ММ" массивом [часы, минуты] для ответов API.
func ClockArray(value string) []int {
	minutes, err := ParseClock(value)
	if err != nil {
		return nil
	}
	return []int{minutes / 60, minutes % 60}
}

// FormatClock собирает строку "ЧЧ:ММ" из массива [часы, минуты].
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
