package streak

import (
	"fmt"
	"time"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/pet"
)

// Reminder решает, пора ли напомнить о серии.
// Помнит дату последнего напоминания, чтобы слать не чаще раза в день.
// Не потокобезопасен: вызывается под блокировкой игры.
type Reminder struct {
	Threshold int // Минимальная серия, которую жалко потерять
	lastSent  string
}

// NewReminder создаёт напоминалку с порогом threshold (не меньше 1).
func NewReminder(threshold int) *Reminder {
	if threshold < 1 {
		threshold = 1
	}
	return &Reminder{Threshold: threshold}
}

// Check возвращает текст напоминания и true, если:
//   - сегодня питомца ещё не кормили
//   - серия не меньше порога
//   - сегодня напоминание ещё не отправлялось
//
// При положительном ответе день помечается как «напомнено».
func (r *Reminder) Check(s pet.PetState, now time.Time, loc *time.Location) (string, bool) {
	today := common.DateString(now, loc)
	if s.LastFedDate == today || s.LastFedDate == "" {
		return "", false
	}
	if s.FeedStreak < r.Threshold || r.lastSent == today {
		return "", false
	}

	// Серия переживёт только вчерашнее кормление
	if diff, err := common.DaysBetween(today, s.LastFedDate); err != nil || diff != 1 {
		return "", false
	}

	r.lastSent = today
	return fmt.Sprintf("⚠️ У %s серия %d %s! Покорми сегодня, чтобы не потерять прогресс.",
		s.Name, s.FeedStreak, common.PluralizeDays(s.FeedStreak)), true
}

// Reset забывает отправленное напоминание (после сброса питомца).
func (r *Reminder) Reset() {
	r.lastSent = ""
}
