// Package decay — чистые функции, вычисляющие стадии голода и чистоты
// по прошедшему времени. Ничего не изменяют, кроме ApplyCleanlinessDecay,
// которая работает только с переданной записью.
package decay

import (
	"math"
	"time"
)

// Severity — тон отображения стадии.
type Severity string

const (
	SeverityGood   Severity = "good"
	SeverityWarn   Severity = "warn"
	SeverityDanger Severity = "danger"
)

// Границы стадий голода в часах с последнего кормления.
const (
	FullHours      = 6
	PeckishHours   = 12
	HungryHours    = 24
	ExhaustedFixed = 5.0
)

// HungerStage описывает текущую стадию голода.
// Percent — только для отображения, ни на что не влияет.
type HungerStage struct {
	Label    string   `json:"label"`
	Detail   string   `json:"detail"`
	Percent  float64  `json:"percent"`
	Severity Severity `json:"severity"`
	Debuff   bool     `json:"debuff"`
	Thought  string   `json:"thought"`
}

// Hunger вычисляет стадию голода на момент now.
//
// Стадии:
//
//	[0, 6)   ч → сытость, 100→60%
//	[6, 12)  ч → проголодался, 60→20%
//	[12, 24) ч → голоден, 20→0%, дебафф
//	[24, ∞)  ч → обессилел, 5%, дебафф
func Hunger(now, lastFedAt time.Time) HungerStage {
	hours := now.Sub(lastFedAt).Hours()
	if hours < 0 {
		// Часы перевели назад — считаем, что только что поели
		hours = 0
	}

	switch {
	case hours < FullHours:
		return HungerStage{
			Label:    "Сытость",
			Detail:   "Наелся досыта!",
			Percent:  lerp(100, 60, hours/FullHours),
			Severity: SeverityGood,
			Debuff:   false,
			Thought:  "Счастье! Наелся от души~",
		}
	case hours < PeckishHours:
		return HungerStage{
			Label:    "Проголодался",
			Detail:   "Понемногу хочется есть.",
			Percent:  lerp(60, 20, (hours-FullHours)/(PeckishHours-FullHours)),
			Severity: SeverityWarn,
			Debuff:   false,
			Thought:  "Может, пора перекусить?",
		}
	case hours < HungryHours:
		return HungerStage{
			Label:    "Голоден",
			Detail:   "Больше 12 часов без еды. Опыт уменьшается вдвое.",
			Percent:  lerp(20, 0, (hours-PeckishHours)/(HungryHours-PeckishHours)),
			Severity: SeverityDanger,
			Debuff:   true,
			Thought:  "Есть хочу... покормите...",
		}
	default:
		return HungerStage{
			Label:    "Обессилел",
			Detail:   "Больше суток без еды. Рост сильно замедлился.",
			Percent:  ExhaustedFixed,
			Severity: SeverityDanger,
			Debuff:   true,
			Thought:  "Совсем нет сил...",
		}
	}
}

// lerp интерполирует от from к to и не выходит за границы стадии.
func lerp(from, to, t float64) float64 {
	v := from + (to-from)*t
	lo, hi := math.Min(from, to), math.Max(from, to)
	return math.Min(math.Max(v, lo), hi)
}
