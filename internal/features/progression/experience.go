// Package progression — опыт, уровни и дебафф голода.
// experience.go начисляет опыт и прокручивает повышения уровня.
package progression

import (
	"fmt"
	"time"

	"serotonyl.ru/algopet/internal/features/pet"
)

// Параметры прокачки.
const (
	// LevelGrowthPercent — во сколько раз растёт порог уровня (×1.18).
	LevelGrowthPercent = 118
	// LevelUpCoins — награда за каждый новый уровень.
	LevelUpCoins = 50
)

// Gain — итог начисления опыта.
type Gain struct {
	Raw       int // Сколько опыта пришло
	Effective int // Сколько начислено после дебаффа
	LevelsUp  int // Сколько уровней получено
	Coins     int // Сколько монет выдано за уровни
}

// EffectiveExperience применяет дебафф: при голоде опыт делится пополам (с округлением вниз).
func EffectiveExperience(raw int, debuffed bool) int {
	if debuffed {
		return raw / 2
	}
	return raw
}

// NextThreshold возвращает порог следующего уровня: floor(prev × 1.18).
// Считаем в целых числах, чтобы не зависеть от округления float.
func NextThreshold(prev int) int {
	next := prev * LevelGrowthPercent / 100
	if next <= prev {
		// Для крошечных порогов рост всё равно должен быть
		next = prev + 1
	}
	return next
}

// GainExperience начисляет опыт и повышает уровень, пока опыт не станет
// меньше порога. За каждый уровень — LevelUpCoins и запись в журнал.
//
// Цикл конечен: порог только растёт, а опыт на каждой итерации уменьшается.
func GainExperience(s *pet.PetState, raw int, debuffed bool, at time.Time) Gain {
	g := Gain{Raw: raw}
	if raw <= 0 {
		return g
	}
	g.Effective = EffectiveExperience(raw, debuffed)
	s.Experience += g.Effective

	g.LevelsUp = Settle(s, at)
	g.Coins = g.LevelsUp * LevelUpCoins
	return g
}

// Settle повышает уровень, пока опыта хватает на следующий.
// Каждый уровень даёт LevelUpCoins и событие в журнал.
// Возвращает число полученных уровней.
func Settle(s *pet.PetState, at time.Time) int {
	if s.ExperienceToNext <= 0 {
		s.ExperienceToNext = pet.BaseExperienceToNext
	}
	levels := 0
	for s.Experience >= s.ExperienceToNext {
		s.Experience -= s.ExperienceToNext
		s.Level++
		s.ExperienceToNext = NextThreshold(s.ExperienceToNext)
		s.Coins += LevelUpCoins
		levels++
		s.AddEvent(fmt.Sprintf("Достигнут ур. %d! Поздравляем!", s.Level), at)
	}
	return levels
}

// Percent — заполненность полосы опыта в процентах (0..100).
func Percent(s pet.PetState) float64 {
	if s.ExperienceToNext <= 0 {
		return 0
	}
	p := float64(s.Experience) / float64(s.ExperienceToNext) * 100
	if p > 100 {
		return 100
	}
	return p
}
