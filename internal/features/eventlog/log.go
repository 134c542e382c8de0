// Package eventlog — ограниченный журнал событий питомца.
// Новые записи идут первыми, старые молча отбрасываются сверх лимита.
// Журнал используется и для ленты в интерфейсе, и для проверки поведения в тестах.
package eventlog

import (
	"time"

	"github.com/google/uuid"
)

// MaxEntries — сколько записей хранится в журнале.
const MaxEntries = 30

// Entry — одна запись журнала.
type Entry struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Log — журнал, индекс 0 всегда самая свежая запись.
type Log []Entry

// Push добавляет запись в начало и обрезает журнал до MaxEntries.
// Исходный срез не изменяется.
func Push(l Log, message string, at time.Time) Log {
	next := make(Log, 0, min(len(l)+1, MaxEntries))
	next = append(next, Entry{
		ID:      uuid.NewString(),
		Message: message,
		At:      at,
	})
	for _, e := range l {
		if len(next) == MaxEntries {
			break
		}
		next = append(next, e)
	}
	return next
}

// Latest возвращает не больше n самых свежих записей.
func (l Log) Latest(n int) Log {
	if n <= 0 {
		return nil
	}
	if n > len(l) {
		n = len(l)
	}
	out := make(Log, n)
	copy(out, l[:n])
	return out
}

// Clone возвращает независимую копию журнала.
func (l Log) Clone() Log {
	if l == nil {
		return nil
	}
	out := make(Log, len(l))
	copy(out, l)
	return out
}

// Truncate обрезает журнал до MaxEntries, сохраняя самые свежие записи.
func (l Log) Truncate() Log {
	if len(l) <= MaxEntries {
		return l
	}
	return l[:MaxEntries]
}
