package decay

import (
	"math"
	"time"

	"serotonyl.ru/algopet/internal/common"
	"serotonyl.ru/algopet/internal/features/pet"
)

// CleanlinessPerHour — сколько чистоты теряется за час.
const CleanlinessPerHour = 3

// CleanlinessStage описывает состояние дома.
type CleanlinessStage struct {
	Label    string   `json:"label"`
	Detail   string   `json:"detail"`
	Percent  int      `json:"percent"`
	Severity Severity `json:"severity"`
}

// Cleanliness возвращает стадию для значения чистоты 0..100.
func Cleanliness(cleanliness int) CleanlinessStage {
	switch {
	case cleanliness >= 80:
		return CleanlinessStage{"Чисто", "Дом сияет!", cleanliness, SeverityGood}
	case cleanliness >= 60:
		return CleanlinessStage{"Слегка неубрано", "Начинает появляться пыль.", cleanliness, SeverityWarn}
	case cleanliness >= 40:
		return CleanlinessStage{"Пыльно", "Алгокот начал чихать!", cleanliness, SeverityDanger}
	default:
		return CleanlinessStage{"Хаос", "Если срочно не убраться, можно заболеть!", cleanliness, SeverityDanger}
	}
}

// ApplyCleanlinessDecay списывает чистоту за время с последней проверки.
// Меньше часа — ничего не делает, поэтому повторный вызов в пределах часа
// идемпотентен. Возвращает, сколько чистоты списано.
func ApplyCleanlinessDecay(s *pet.PetState, now time.Time) int {
	hours := now.Sub(s.LastCleanlinessCheckAt).Hours()
	if hours < 1 {
		return 0
	}
	amount := int(math.Floor(hours * CleanlinessPerHour))
	if amount <= 0 {
		return 0
	}

	before := s.Cleanliness
	s.Cleanliness = common.Clamp(s.Cleanliness-amount, pet.MinCleanliness, pet.MaxCleanliness)
	s.LastCleanlinessCheckAt = now
	return before - s.Cleanliness
}
