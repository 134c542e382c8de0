// Package streak ведёт серию дней подряд, в которые питомца кормили.
// tracker.go сравнивает календарные даты и обновляет счётчики.
package streak

import (
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/pet"
)

// Outcome — что произошло с серией при кормлении.
type Outcome int

const (
	OutcomeSameDay   Outcome = iota // Уже кормили сегодня, серия не меняется
	OutcomeFirstFeed                // Первое кормление в истории
	OutcomeExtended                 // Кормили вчера, серия +1
	OutcomeBroken                   // Был пропуск, серия сброшена до 1
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFirstFeed:
		return "first"
	case OutcomeExtended:
		return "extended"
	case OutcomeBroken:
		return "broken"
	default:
		return "same_day"
	}
}

// Apply учитывает успешное кормление в момент now.
// Вызывается только из кормления и только после списания еды.
//
// Правила:
//   - та же дата, что lastFedDate → ничего не меняется
//   - lastFedDate не задана → серия не трогается, просто запоминаем дату
//   - разница ровно 1 день → серия +1
//   - иначе (пропуск или часы ушли назад) → серия = 1
func Apply(s *pet.PetState, now time.Time, loc *time.Location) Outcome {
	today := common.DateString(now, loc)
	if today == s.LastFedDate {
		return OutcomeSameDay
	}

	outcome := OutcomeFirstFeed
	if s.LastFedDate != "" {
		diff, err := common.DaysBetween(today, s.LastFedDate)
		switch {
		case err != nil:
			log.WithError(err).WithField("last_fed_date", s.LastFedDate).Warn("Некорректная дата последнего кормления, серия сброшена")
			s.FeedStreak = 1
			outcome = OutcomeBroken
		case diff == 1:
			s.FeedStreak++
			outcome = OutcomeExtended
		default:
			if diff < 0 {
				log.WithFields(log.Fields{
					"today":         today,
					"last_fed_date": s.LastFedDate,
					"diff_days":     diff,
				}).Warn("Дата кормления в будущем (часы сдвинуты назад), серия сброшена")
			}
			s.FeedStreak = 1
			outcome = OutcomeBroken
		}
	}

	if s.FeedStreak > s.BestFeedStreak {
		s.BestFeedStreak = s.FeedStreak
	}
	s.LastFedDate = today
	return outcome
}
