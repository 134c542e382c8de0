// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: ограничение значений, календарные даты, относительное время.
package common

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// DateLayout — формат календарной даты (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Clamp ограничивает v отрезком [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LoadLocation возвращает часовой пояс по имени.
// Если загрузить не удалось — пишет предупреждение и возвращает UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.WithError(err).WithField("timezone", name).Warn("Не удалось загрузить часовой пояс, используем UTC")
		return time.UTC
	}
	return loc
}

// DateString возвращает календарную дату момента t в поясе loc.
// Формат: 2006-01-02
func DateString(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// DaysBetween возвращает число календарных дней от earlier до later.
// Обе даты — строки YYYY-MM-DD. Результат отрицательный, если later раньше earlier.
//
// Примеры:
//
//	DaysBetween("2025-03-02", "2025-03-01") → 1
//	DaysBetween("2025-03-01", "2025-03-04") → -3
func DaysBetween(later, earlier string) (int, error) {
	a, err := time.Parse(DateLayout, later)
	if err != nil {
		return 0, fmt.Errorf("некорректная дата %q: %w", later, err)
	}
	b, err := time.Parse(DateLayout, earlier)
	if err != nil {
		return 0, fmt.Errorf("некорректная дата %q: %w", earlier, err)
	}
	// Обе даты в UTC, поэтому сутки всегда ровно 24 часа
	return int(a.Sub(b).Hours() / 24), nil
}

// FormatRelative форматирует, как давно был момент at относительно now.
//
// Примеры:
//
//	30 секунд  → "только что"
//	5 минут    → "5 мин. назад"
//	3 часа     → "3 ч. назад"
//	2 суток    → "2 дн. назад"
func FormatRelative(now, at time.Time) string {
	diff := now.Sub(at)
	minutes := int(diff / time.Minute)
	if minutes < 1 {
		return "только что"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d мин. назад", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d ч. назад", hours)
	}
	return fmt.Sprintf("%d дн. назад", hours/24)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" в поясе loc.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
